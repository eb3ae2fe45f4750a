// Package media 定义跨层共享的本地媒体句柄类型。
// 草稿层持有句柄，基础设施层负责按句柄读取字节流。
package media

import (
	"fmt"
	"os"
)

// Kind 表示媒体句柄指向的资源类别。
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
)

// File 描述一份已落盘的本地媒体资源。
// Path 指向服务端暂存文件；上传完成或草稿取消后由持有方清理。
type File struct {
	Path        string
	Filename    string
	ContentType string
	SizeBytes   int64
	Kind        Kind
}

// Open 打开底层暂存文件供流式读取。
func (f File) Open() (*os.File, error) {
	if f.Path == "" {
		return nil, fmt.Errorf("media: empty file path")
	}
	return os.Open(f.Path)
}

// Discard 尽力删除暂存文件，失败时静默忽略。
func (f File) Discard() {
	if f.Path == "" {
		return
	}
	_ = os.Remove(f.Path)
}
