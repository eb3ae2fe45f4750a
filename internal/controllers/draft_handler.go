package controllers

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/uuid"

	"github.com/storycut/services-edit/internal/controllers/dto"
	loader "github.com/storycut/services-edit/internal/infrastructure/config_loader"
	"github.com/storycut/services-edit/internal/models/media"
	"github.com/storycut/services-edit/internal/services"
)

const (
	formFieldVideo     = "video"
	formFieldThumbnail = "thumbnail"
	formFieldImage     = "image"

	multipartMemoryLimit = 32 << 20
)

// DraftHandler 暴露草稿会话的 HTTP 接口：开启、查询、部分更新、
// 媒体挂载与销毁。上传内容先落到本地暂存目录，提交时才向后端传输。
type DraftHandler struct {
	*BaseHandler

	drafts   *services.DraftService
	spoolDir string
	maxBytes int64
	log      *log.Helper
}

// NewDraftHandler 构造 DraftHandler 并确保暂存目录存在。
func NewDraftHandler(base *BaseHandler, drafts *services.DraftService, mediaCfg loader.MediaConfig, logger log.Logger) (*DraftHandler, error) {
	spoolDir := mediaCfg.SpoolDir
	if spoolDir == "" {
		spoolDir = filepath.Join(os.TempDir(), "services-edit-spool")
	}
	if err := os.MkdirAll(spoolDir, 0o755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}

	return &DraftHandler{
		BaseHandler: base,
		drafts:      drafts,
		spoolDir:    spoolDir,
		maxBytes:    mediaCfg.MaxUploadBytes,
		log:         log.NewHelper(log.With(logger, "module", "controllers/draft")),
	}, nil
}

// OpenDraft 创建空白草稿会话。
func (h *DraftHandler) OpenDraft(ctx khttp.Context) error {
	id, draft := h.drafts.Open()
	return ctx.Result(201, dto.NewDraftView(id, draft))
}

// GetDraft 返回草稿快照。
func (h *DraftHandler) GetDraft(ctx khttp.Context) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	draft, err := h.drafts.Get(id)
	if err != nil {
		return err
	}
	return ctx.Result(200, dto.NewDraftView(id, draft))
}

// UpdateDraft 对草稿执行部分更新。
func (h *DraftHandler) UpdateDraft(ctx khttp.Context) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateDraftRequest
	if err := ctx.Bind(&req); err != nil {
		return kerrors.BadRequest(services.ReasonDraftInvalid, "malformed update payload")
	}

	draft, err := h.drafts.Apply(id, req.ToMutation())
	if err != nil {
		return err
	}
	return ctx.Result(200, dto.NewDraftView(id, draft))
}

// CancelDraft 销毁草稿会话。
func (h *DraftHandler) CancelDraft(ctx khttp.Context) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	if err := h.drafts.Cancel(id); err != nil {
		return err
	}
	return ctx.Result(204, nil)
}

// AttachVideo 接收 multipart 本地视频（可选封面图）并挂到草稿上。
func (h *DraftHandler) AttachVideo(ctx khttp.Context) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	r := ctx.Request()
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return kerrors.BadRequest(services.ReasonDraftInvalid, "malformed multipart payload")
	}

	video, err := h.spoolForm(r.MultipartForm, formFieldVideo, media.KindVideo)
	if err != nil {
		return err
	}
	if video == nil {
		return kerrors.BadRequest(services.ReasonDraftInvalid, "video file part is required")
	}

	thumbnail, err := h.spoolForm(r.MultipartForm, formFieldThumbnail, media.KindImage)
	if err != nil {
		video.Discard()
		return err
	}

	draft, err := h.drafts.AttachUpload(id, *video, thumbnail)
	if err != nil {
		video.Discard()
		if thumbnail != nil {
			thumbnail.Discard()
		}
		return err
	}
	return ctx.Result(200, dto.NewDraftView(id, draft))
}

// AddMosaicImage 接收一张人脸参考图并追加到草稿。
func (h *DraftHandler) AddMosaicImage(ctx khttp.Context) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	r := ctx.Request()
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return kerrors.BadRequest(services.ReasonDraftInvalid, "malformed multipart payload")
	}

	image, err := h.spoolForm(r.MultipartForm, formFieldImage, media.KindImage)
	if err != nil {
		return err
	}
	if image == nil {
		return kerrors.BadRequest(services.ReasonDraftInvalid, "image file part is required")
	}

	draft, err := h.drafts.AddMosaicImage(id, *image)
	if err != nil {
		image.Discard()
		return err
	}
	return ctx.Result(200, dto.NewDraftView(id, draft))
}

// RemoveMosaicImage 按下标移除参考图。
func (h *DraftHandler) RemoveMosaicImage(ctx khttp.Context) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(ctx.Vars().Get("index"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonDraftInvalid, "mosaic image index must be an integer")
	}

	draft, err := h.drafts.RemoveMosaicImage(id, index)
	if err != nil {
		return err
	}
	return ctx.Result(200, dto.NewDraftView(id, draft))
}

// spoolForm 把表单中的首个同名文件落到暂存目录，字段缺失时返回 nil。
func (h *DraftHandler) spoolForm(form *multipart.Form, field string, kind media.Kind) (*media.File, error) {
	if form == nil || len(form.File[field]) == 0 {
		return nil, nil
	}
	header := form.File[field][0]

	part, err := header.Open()
	if err != nil {
		return nil, kerrors.BadRequest(services.ReasonDraftInvalid, "unreadable file part")
	}
	defer part.Close()

	tmp, err := os.CreateTemp(h.spoolDir, "spool-*")
	if err != nil {
		return nil, kerrors.InternalServer(services.ReasonDraftInvalid, "spool file create failed")
	}

	limit := h.maxBytes
	if limit <= 0 {
		limit = 512 << 20
	}
	size, err := io.Copy(tmp, io.LimitReader(part, limit+1))
	closeErr := tmp.Close()
	if err != nil || closeErr != nil {
		os.Remove(tmp.Name())
		return nil, kerrors.InternalServer(services.ReasonDraftInvalid, "spool file write failed")
	}
	if size > limit {
		os.Remove(tmp.Name())
		return nil, kerrors.BadRequest(services.ReasonDraftInvalid, "file exceeds upload size limit")
	}
	if size == 0 {
		os.Remove(tmp.Name())
		return nil, kerrors.BadRequest(services.ReasonDraftInvalid, "file part is empty")
	}

	h.log.Debugf("file spooled: field=%s filename=%s size=%d", field, header.Filename, size)
	return &media.File{
		Path:        tmp.Name(),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   size,
		Kind:        kind,
	}, nil
}

func sessionID(ctx khttp.Context) (uuid.UUID, error) {
	raw := ctx.Vars().Get("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, kerrors.BadRequest(services.ReasonDraftInvalid, "draft id must be a uuid")
	}
	return id, nil
}
