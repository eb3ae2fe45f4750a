package services

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/storycut/services-edit/internal/models/media"
)

// AssetService 负责把草稿中的视频来源解析为服务端已登记的资产引用。
// 两条路径：原始字节上传（预签名 → 直传 → 登记）与既有资产的纯元数据登记。
type AssetService struct {
	gateway VideoGateway
	log     *log.Helper
}

// NewAssetService 创建 AssetService。
func NewAssetService(gateway VideoGateway, logger log.Logger) *AssetService {
	return &AssetService{
		gateway: gateway,
		log:     log.NewHelper(log.With(logger, "module", "services/asset")),
	}
}

// UploadRaw 执行本地视频的完整上传链路并登记元数据。
// 封面图上传是尽力而为：失败只降级为无封面，不中断主流程。
func (s *AssetService) UploadRaw(ctx context.Context, token string, file media.File, thumbnail *media.File, title string) (*RegisteredVideo, error) {
	var thumbnailURL *string
	if thumbnail != nil {
		url, err := s.uploadBlob(ctx, *thumbnail)
		if err != nil {
			s.log.WithContext(ctx).Warnf("thumbnail upload failed, continuing without: %v", err)
		} else {
			thumbnailURL = &url
		}
	}

	assetURL, err := s.uploadBlob(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("upload video: %w", err)
	}

	registered, err := s.gateway.RegisterVideo(ctx, token, RegisterVideoInput{
		Title:        title,
		URL:          assetURL,
		ThumbnailURL: thumbnailURL,
	})
	if err != nil {
		return nil, fmt.Errorf("register video: %w", err)
	}

	s.log.WithContext(ctx).Infof("video asset registered: video_id=%d", registered.ID)
	return registered, nil
}

// RegisterExisting 为服务端已有视频登记元数据，不传输任何字节。
func (s *AssetService) RegisterExisting(ctx context.Context, token string, asset ExistingAsset, title string) (*RegisteredVideo, error) {
	registered, err := s.gateway.RegisterVideo(ctx, token, RegisterVideoInput{
		Title:        title,
		URL:          asset.URL,
		ThumbnailURL: asset.ThumbnailURL,
	})
	if err != nil {
		return nil, fmt.Errorf("register existing video: %w", err)
	}

	s.log.WithContext(ctx).Infof("existing video registered: video_id=%d", registered.ID)
	return registered, nil
}

func (s *AssetService) uploadBlob(ctx context.Context, file media.File) (string, error) {
	target, err := s.gateway.IssuePresignedURL(ctx, file.Filename)
	if err != nil {
		return "", fmt.Errorf("issue presigned url: %w", err)
	}
	if err := s.gateway.PutBlob(ctx, target.UploadURL, file); err != nil {
		return "", fmt.Errorf("put blob: %w", err)
	}
	return target.AssetURL, nil
}
