package services

import (
	"context"
	"time"

	txmanager "github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/storycut/services-edit/internal/models/po"
	"github.com/storycut/services-edit/internal/models/vo"
	"github.com/storycut/services-edit/internal/repositories"
)

const defaultStepTimeout = 30 * time.Second

// JobRecorder 是提交被接受后登记待完成作业所需的最小依赖。
type JobRecorder interface {
	Create(ctx context.Context, sess txmanager.Session, input repositories.CreateJobInput) (*po.ProcessingJob, error)
}

// SubmissionOptions 控制编排运行参数。
type SubmissionOptions struct {
	// StepTimeout 是单个远程环节（解析、暂存、提交）的超时，零值使用默认 30s。
	StepTimeout time.Duration
}

// SubmitInput 是一次提交请求的入参。
type SubmitInput struct {
	SessionID   uuid.UUID
	AccessToken string
	DeviceToken string
}

// SubmissionService 按固定顺序编排一次提交：
// 校验 → 解析视频资产 → 暂存马赛克图 → 组装请求 → 提交。
// 同一草稿同时只允许一次运行；马赛克暂存失败降级为警告，其余环节失败即终止。
type SubmissionService struct {
	drafts     *DraftService
	assets     *AssetService
	mosaic     *MosaicService
	processing ProcessingGateway
	jobs       JobRecorder

	stepTimeout time.Duration
	log         *log.Helper
	now         func() time.Time
}

// NewSubmissionService 创建 SubmissionService。
func NewSubmissionService(
	drafts *DraftService,
	assets *AssetService,
	mosaic *MosaicService,
	processing ProcessingGateway,
	jobs JobRecorder,
	opts SubmissionOptions,
	logger log.Logger,
) *SubmissionService {
	timeout := opts.StepTimeout
	if timeout <= 0 {
		timeout = defaultStepTimeout
	}
	return &SubmissionService{
		drafts:      drafts,
		assets:      assets,
		mosaic:      mosaic,
		processing:  processing,
		jobs:        jobs,
		stepTimeout: timeout,
		log:         log.NewHelper(log.With(logger, "module", "services/submission")),
		now:         time.Now,
	}
}

// Submit 执行一次完整编排并返回结构化结果。
// 业务性失败（校验不过、某环节出错）表达为 Failed 结果而非 error；
// error 只用于会话不存在与重复提交这类调用层问题。
func (s *SubmissionService) Submit(ctx context.Context, input SubmitInput) (*vo.Outcome, error) {
	session, err := s.drafts.session(input.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.beginRun() {
		s.log.WithContext(ctx).Warnf("submission rejected, run in flight: session_id=%s", input.SessionID)
		return nil, ErrSubmissionInFlight
	}
	defer session.finishRun()

	draft := session.snapshot()

	if violations := draft.Validate(); len(violations) > 0 {
		return vo.NewFailedOutcome(vo.FailureValidation, "draft failed validation", violations), nil
	}

	session.setState(runResolvingAsset)
	registered, err := s.resolveAsset(ctx, input.AccessToken, draft)
	if err != nil {
		s.log.WithContext(ctx).Errorf("asset resolution failed: session_id=%s error=%v", input.SessionID, err)
		return vo.NewFailedOutcome(vo.FailureAssetResolution, err.Error(), nil), nil
	}

	session.setState(runStagingMosaic)
	mosaicURLs, warning := s.stageMosaic(ctx, input.SessionID, draft)

	request := BuildProcessingRequest(draft, registered.ID, mosaicURLs)

	session.setState(runSubmitting)
	stepCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
	err = s.processing.SubmitProcessing(stepCtx, input.AccessToken, input.DeviceToken, request)
	cancel()
	if err != nil {
		s.log.WithContext(ctx).Errorf("processing submit failed: session_id=%s job_id=%d error=%v", input.SessionID, registered.ID, err)
		return vo.NewFailedOutcome(vo.FailureSubmission, err.Error(), nil), nil
	}

	// 提交已被服务端接受，作业登记与草稿复位不再受请求取消影响。
	s.recordJob(context.WithoutCancel(ctx), registered.ID, draft, request)
	if err := s.drafts.Reset(input.SessionID); err != nil {
		s.log.Warnf("draft reset after accept failed: session_id=%s error=%v", input.SessionID, err)
	}

	s.log.WithContext(ctx).Infof("submission accepted: session_id=%s job_id=%d", input.SessionID, registered.ID)
	return vo.NewAcceptedOutcome(registered.ID, warning), nil
}

func (s *SubmissionService) resolveAsset(ctx context.Context, token string, draft SubmissionDraft) (*RegisteredVideo, error) {
	stepCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
	defer cancel()

	switch draft.SourceKind() {
	case VideoSourceUpload:
		return s.assets.UploadRaw(stepCtx, token, *draft.Upload, draft.Thumbnail, draft.Title)
	case VideoSourceExisting:
		return s.assets.RegisterExisting(stepCtx, token, *draft.Existing, draft.Title)
	default:
		// Validate 已拦截无来源的草稿。
		return nil, ErrDraftNotFound
	}
}

// stageMosaic 暂存参考图。失败不终止提交，降级为空地址列表加警告。
func (s *SubmissionService) stageMosaic(ctx context.Context, sessionID uuid.UUID, draft SubmissionDraft) ([]string, string) {
	if !draft.MosaicEnabled || len(draft.MosaicImages) == 0 {
		return nil, ""
	}

	stepCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
	defer cancel()

	urls, err := s.mosaic.Stage(stepCtx, draft.MosaicImages)
	if err != nil {
		s.log.WithContext(ctx).Warnf("mosaic staging failed, submitting without mosaic: session_id=%s error=%v", sessionID, err)
		return nil, "mosaic staging failed, submitted without face mosaic"
	}
	return urls, ""
}

// recordJob 尽力登记待完成作业；失败只记日志，完成事件侧对未知作业有兜底。
func (s *SubmissionService) recordJob(ctx context.Context, jobID int64, draft SubmissionDraft, request ProcessingRequest) {
	recordCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
	defer cancel()

	_, err := s.jobs.Create(recordCtx, nil, repositories.CreateJobInput{
		JobID:       jobID,
		Title:       draft.Title,
		Prompt:      draft.PromptText,
		Subtitle:    draft.SubtitleEnabled,
		MusicPrompt: request.MusicPrompt,
		MosaicCount: int32(len(request.MosaicURLs)),
	})
	if err != nil {
		s.log.Errorf("pending job record failed: job_id=%d error=%v", jobID, err)
	}
}
