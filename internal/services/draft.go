package services

import (
	"strings"

	"github.com/storycut/services-edit/internal/models/media"
)

// MosaicImageLimit 限制一次提交可携带的人脸参考图数量，与客户端交互保持一致。
const MosaicImageLimit = 2

// VideoSourceKind 表示草稿视频来源的变体。
type VideoSourceKind string

const (
	VideoSourceNone     VideoSourceKind = ""
	VideoSourceUpload   VideoSourceKind = "upload"
	VideoSourceExisting VideoSourceKind = "existing"
)

// ExistingAsset 描述用户媒体库中已存在于服务端的视频。
type ExistingAsset struct {
	URL          string
	ThumbnailURL *string
}

// SubmissionDraft 聚合一次编辑提交的全部用户选择。
// 不变式：Upload 与 Existing 至多一个非空；MosaicImages 长度 ≤ MosaicImageLimit；
// MusicAuto 为 true 时 MusicPrompt 为空。
// 所有变更方法只改内存状态，被替换掉的暂存文件交由调用方清理。
type SubmissionDraft struct {
	Title      string
	PromptText string

	Upload    *media.File
	Thumbnail *media.File
	Existing  *ExistingAsset

	MosaicEnabled bool
	MosaicImages  []media.File

	SubtitleEnabled bool

	MusicEnabled bool
	MusicAuto    bool
	MusicPrompt  string
}

// SourceKind 返回当前视频来源变体。
func (d *SubmissionDraft) SourceKind() VideoSourceKind {
	switch {
	case d.Upload != nil:
		return VideoSourceUpload
	case d.Existing != nil:
		return VideoSourceExisting
	default:
		return VideoSourceNone
	}
}

// SetUpload 选择本地上传源，清除既有服务端来源，返回被替换的暂存文件。
func (d *SubmissionDraft) SetUpload(file media.File, thumbnail *media.File) []media.File {
	released := d.releaseUploadFiles()
	d.Upload = &file
	d.Thumbnail = thumbnail
	d.Existing = nil
	return released
}

// SetExisting 选择服务端已有视频，清除本地上传源，返回被替换的暂存文件。
func (d *SubmissionDraft) SetExisting(asset ExistingAsset) []media.File {
	released := d.releaseUploadFiles()
	d.Upload = nil
	d.Thumbnail = nil
	d.Existing = &asset
	return released
}

// SetTitle 更新标题。
func (d *SubmissionDraft) SetTitle(title string) {
	d.Title = title
}

// SetPromptText 更新编辑提示词。
func (d *SubmissionDraft) SetPromptText(text string) {
	d.PromptText = text
}

// ToggleMosaic 开关人脸马赛克；关闭时清空参考图并返回待清理的暂存文件。
func (d *SubmissionDraft) ToggleMosaic(enabled bool) []media.File {
	d.MosaicEnabled = enabled
	if enabled {
		return nil
	}
	released := d.MosaicImages
	d.MosaicImages = nil
	return released
}

// AddMosaicImage 追加人脸参考图。超出上限时静默忽略并返回 false，
// 调用方据此清理未被接收的暂存文件。
func (d *SubmissionDraft) AddMosaicImage(file media.File) bool {
	if len(d.MosaicImages) >= MosaicImageLimit {
		return false
	}
	d.MosaicImages = append(d.MosaicImages, file)
	return true
}

// RemoveMosaicImage 按下标移除参考图，返回被移除的文件。
func (d *SubmissionDraft) RemoveMosaicImage(index int) (*media.File, bool) {
	if index < 0 || index >= len(d.MosaicImages) {
		return nil, false
	}
	removed := d.MosaicImages[index]
	d.MosaicImages = append(d.MosaicImages[:index], d.MosaicImages[index+1:]...)
	return &removed, true
}

// ToggleSubtitle 开关自动字幕。
func (d *SubmissionDraft) ToggleSubtitle(enabled bool) {
	d.SubtitleEnabled = enabled
}

// ToggleMusic 开关背景音乐；关闭时同时清除自动模式与提示词。
func (d *SubmissionDraft) ToggleMusic(enabled bool) {
	d.MusicEnabled = enabled
	if !enabled {
		d.MusicAuto = false
		d.MusicPrompt = ""
	}
}

// SetMusicAuto 切换音乐生成模式。自动模式与提示词互斥：置 true 清空提示词；
// 置 false 保留既有提示词。
func (d *SubmissionDraft) SetMusicAuto(auto bool) {
	d.MusicAuto = auto
	if auto {
		d.MusicPrompt = ""
	}
}

// SetMusicPrompt 更新音乐提示词。不会自动退出自动模式，模式切换必须显式进行。
func (d *SubmissionDraft) SetMusicPrompt(prompt string) {
	d.MusicPrompt = prompt
}

// Validate 返回阻止提交的校验违规列表，无副作用。
func (d *SubmissionDraft) Validate() []string {
	var violations []string
	if d.SourceKind() == VideoSourceNone {
		violations = append(violations, "video source is required")
	}
	if strings.TrimSpace(d.Title) == "" {
		violations = append(violations, "title is required")
	}
	return violations
}

// Reset 清空草稿并返回全部待清理的暂存文件。
func (d *SubmissionDraft) Reset() []media.File {
	released := d.releaseUploadFiles()
	released = append(released, d.MosaicImages...)
	*d = SubmissionDraft{}
	return released
}

// Clone 返回草稿的浅拷贝快照，参考图切片另行复制。
func (d *SubmissionDraft) Clone() SubmissionDraft {
	snapshot := *d
	snapshot.MosaicImages = append([]media.File(nil), d.MosaicImages...)
	return snapshot
}

func (d *SubmissionDraft) releaseUploadFiles() []media.File {
	var released []media.File
	if d.Upload != nil {
		released = append(released, *d.Upload)
	}
	if d.Thumbnail != nil {
		released = append(released, *d.Thumbnail)
	}
	return released
}
