package services

import (
	"context"

	"github.com/storycut/services-edit/internal/models/media"
)

// PresignedTarget 描述一次预签名上传：UploadURL 接收字节流，
// AssetURL 是上传完成后资源的最终可寻址地址。
type PresignedTarget struct {
	UploadURL string
	AssetURL  string
}

// RegisterVideoInput 描述向后端登记视频元数据所需的字段。
type RegisterVideoInput struct {
	Title        string
	URL          string
	ThumbnailURL *string
}

// RegisteredVideo 是登记调用成功后服务端返回的资产引用，创建后不可变。
type RegisteredVideo struct {
	ID  int64
	URL string
}

// ProcessingRequest 是最终提交给处理端点的载荷。
// 字段命名与后端 API 对齐。
type ProcessingRequest struct {
	Prompt      string   `json:"prompt"`
	JobID       int64    `json:"videoId"`
	MosaicURLs  []string `json:"images"`
	Title       string   `json:"videoTitle"`
	Subtitle    bool     `json:"subtitle"`
	MusicPrompt string   `json:"musicPrompt"`
	AutoMusic   bool     `json:"autoMusic"`
}

// VideoGateway 抽象视频资产解析所需的后端调用，便于测试替换。
type VideoGateway interface {
	IssuePresignedURL(ctx context.Context, filename string) (*PresignedTarget, error)
	PutBlob(ctx context.Context, uploadURL string, file media.File) error
	RegisterVideo(ctx context.Context, token string, input RegisterVideoInput) (*RegisteredVideo, error)
}

// ImageGateway 抽象人脸参考图的批量上传调用。
type ImageGateway interface {
	UploadImages(ctx context.Context, files []media.File) ([]string, error)
}

// ProcessingGateway 抽象处理作业的提交调用。
type ProcessingGateway interface {
	SubmitProcessing(ctx context.Context, token, deviceToken string, request ProcessingRequest) error
}
