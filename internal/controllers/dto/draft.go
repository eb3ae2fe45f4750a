// Package dto 定义 HTTP 层的请求与响应载荷。
package dto

import (
	"github.com/google/uuid"
	"github.com/storycut/services-edit/internal/services"
)

// ExistingVideoPayload 描述服务端已有视频来源。
type ExistingVideoPayload struct {
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
}

// UpdateDraftRequest 是草稿部分更新请求，nil 字段表示不修改。
type UpdateDraftRequest struct {
	Title           *string               `json:"title,omitempty"`
	PromptText      *string               `json:"prompt_text,omitempty"`
	ExistingVideo   *ExistingVideoPayload `json:"existing_video,omitempty"`
	MosaicEnabled   *bool                 `json:"mosaic_enabled,omitempty"`
	SubtitleEnabled *bool                 `json:"subtitle_enabled,omitempty"`
	MusicEnabled    *bool                 `json:"music_enabled,omitempty"`
	MusicAuto       *bool                 `json:"music_auto,omitempty"`
	MusicPrompt     *string               `json:"music_prompt,omitempty"`
}

// ToMutation 转换为服务层变更描述。
func (r *UpdateDraftRequest) ToMutation() services.Mutation {
	m := services.Mutation{
		Title:           r.Title,
		PromptText:      r.PromptText,
		MosaicEnabled:   r.MosaicEnabled,
		SubtitleEnabled: r.SubtitleEnabled,
		MusicEnabled:    r.MusicEnabled,
		MusicAuto:       r.MusicAuto,
		MusicPrompt:     r.MusicPrompt,
	}
	if r.ExistingVideo != nil {
		m.ExistingVideo = &services.ExistingAsset{
			URL:          r.ExistingVideo.URL,
			ThumbnailURL: r.ExistingVideo.ThumbnailURL,
		}
	}
	return m
}

// DraftView 是草稿的对外快照。暂存文件只暴露文件名，不暴露路径。
type DraftView struct {
	SessionID       string                `json:"session_id"`
	Title           string                `json:"title"`
	PromptText      string                `json:"prompt_text"`
	VideoSource     string                `json:"video_source"`
	UploadFilename  string                `json:"upload_filename,omitempty"`
	HasThumbnail    bool                  `json:"has_thumbnail"`
	ExistingVideo   *ExistingVideoPayload `json:"existing_video,omitempty"`
	MosaicEnabled   bool                  `json:"mosaic_enabled"`
	MosaicFilenames []string              `json:"mosaic_filenames"`
	SubtitleEnabled bool                  `json:"subtitle_enabled"`
	MusicEnabled    bool                  `json:"music_enabled"`
	MusicAuto       bool                  `json:"music_auto"`
	MusicPrompt     string                `json:"music_prompt"`
}

// NewDraftView 从草稿快照构建对外视图。
func NewDraftView(sessionID uuid.UUID, draft services.SubmissionDraft) DraftView {
	view := DraftView{
		SessionID:       sessionID.String(),
		Title:           draft.Title,
		PromptText:      draft.PromptText,
		VideoSource:     string(draft.SourceKind()),
		HasThumbnail:    draft.Thumbnail != nil,
		MosaicEnabled:   draft.MosaicEnabled,
		MosaicFilenames: make([]string, 0, len(draft.MosaicImages)),
		SubtitleEnabled: draft.SubtitleEnabled,
		MusicEnabled:    draft.MusicEnabled,
		MusicAuto:       draft.MusicAuto,
		MusicPrompt:     draft.MusicPrompt,
	}
	if draft.Upload != nil {
		view.UploadFilename = draft.Upload.Filename
	}
	if draft.Existing != nil {
		view.ExistingVideo = &ExistingVideoPayload{
			URL:          draft.Existing.URL,
			ThumbnailURL: draft.Existing.ThumbnailURL,
		}
	}
	for _, img := range draft.MosaicImages {
		view.MosaicFilenames = append(view.MosaicFilenames, img.Filename)
	}
	return view
}
