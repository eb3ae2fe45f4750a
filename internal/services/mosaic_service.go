package services

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/storycut/services-edit/internal/models/media"
)

// MosaicService 负责把人脸参考图批量暂存到服务端并换取可寻址地址。
// 暂存是整体成败：单次批量调用失败即视为本环节失败，由编排层决定降级。
type MosaicService struct {
	gateway ImageGateway
	log     *log.Helper
}

// NewMosaicService 创建 MosaicService。
func NewMosaicService(gateway ImageGateway, logger log.Logger) *MosaicService {
	return &MosaicService{
		gateway: gateway,
		log:     log.NewHelper(log.With(logger, "module", "services/mosaic")),
	}
}

// Stage 上传参考图并返回与入参等长的地址列表。
func (s *MosaicService) Stage(ctx context.Context, files []media.File) ([]string, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no mosaic images to stage")
	}

	urls, err := s.gateway.UploadImages(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("upload mosaic images: %w", err)
	}
	if len(urls) != len(files) {
		return nil, fmt.Errorf("staged %d urls for %d images", len(urls), len(files))
	}

	s.log.WithContext(ctx).Infof("mosaic images staged: count=%d", len(urls))
	return urls, nil
}
