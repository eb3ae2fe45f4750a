package services

import (
	"sync"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/storycut/services-edit/internal/models/media"
)

// runState 是单个草稿会话上编排运行的阶段标记。
// 非 idle 即视为运行中，期间再次提交会被拒绝。
type runState string

const (
	runIdle           runState = "idle"
	runValidating     runState = "validating"
	runResolvingAsset runState = "resolving_asset"
	runStagingMosaic  runState = "staging_mosaic"
	runSubmitting     runState = "submitting"
)

// draftSession 持有一份草稿与其运行状态，由会话级互斥锁保护。
type draftSession struct {
	mu    sync.Mutex
	draft SubmissionDraft
	state runState
}

// beginRun 尝试把会话从空闲切入运行态，失败表示已有提交在途。
func (s *draftSession) beginRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != runIdle {
		return false
	}
	s.state = runValidating
	return true
}

func (s *draftSession) setState(state runState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *draftSession) finishRun() {
	s.setState(runIdle)
}

func (s *draftSession) snapshot() SubmissionDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Mutation 描述一次对草稿的部分更新，nil 字段表示不修改。
type Mutation struct {
	Title           *string
	PromptText      *string
	ExistingVideo   *ExistingAsset
	MosaicEnabled   *bool
	SubtitleEnabled *bool
	MusicEnabled    *bool
	MusicAuto       *bool
	MusicPrompt     *string
}

// DraftService 管理草稿会话的生命周期与串行化变更。
// 每个会话由唯一 ID 标识，持有者独占；会话内的读写都在会话锁下进行。
type DraftService struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*draftSession

	log *log.Helper
}

// NewDraftService 创建 DraftService。
func NewDraftService(logger log.Logger) *DraftService {
	return &DraftService{
		sessions: make(map[uuid.UUID]*draftSession),
		log:      log.NewHelper(log.With(logger, "module", "services/draft")),
	}
}

// Open 创建一个空白草稿会话并返回其 ID 与初始快照。
func (d *DraftService) Open() (uuid.UUID, SubmissionDraft) {
	id := uuid.New()
	session := &draftSession{state: runIdle}

	d.mu.Lock()
	d.sessions[id] = session
	d.mu.Unlock()

	d.log.Infof("draft session opened: session_id=%s", id)
	return id, session.snapshot()
}

// Get 返回指定会话的草稿快照。
func (d *DraftService) Get(id uuid.UUID) (SubmissionDraft, error) {
	session, err := d.session(id)
	if err != nil {
		return SubmissionDraft{}, err
	}
	return session.snapshot(), nil
}

// Apply 对草稿执行一次部分更新并返回更新后的快照。
// 被替换或清空的暂存文件在锁外统一清理。
func (d *DraftService) Apply(id uuid.UUID, mutation Mutation) (SubmissionDraft, error) {
	session, err := d.session(id)
	if err != nil {
		return SubmissionDraft{}, err
	}

	session.mu.Lock()
	var released []media.File
	draft := &session.draft
	if mutation.ExistingVideo != nil {
		released = append(released, draft.SetExisting(*mutation.ExistingVideo)...)
	}
	if mutation.Title != nil {
		draft.SetTitle(*mutation.Title)
	}
	if mutation.PromptText != nil {
		draft.SetPromptText(*mutation.PromptText)
	}
	if mutation.MosaicEnabled != nil {
		released = append(released, draft.ToggleMosaic(*mutation.MosaicEnabled)...)
	}
	if mutation.SubtitleEnabled != nil {
		draft.ToggleSubtitle(*mutation.SubtitleEnabled)
	}
	if mutation.MusicEnabled != nil {
		draft.ToggleMusic(*mutation.MusicEnabled)
	}
	// 提示词先于自动开关落地：同一次变更同时携带两者时，
	// 开启自动模式要把刚写入的提示词一并清掉。
	if mutation.MusicPrompt != nil {
		draft.SetMusicPrompt(*mutation.MusicPrompt)
	}
	if mutation.MusicAuto != nil {
		draft.SetMusicAuto(*mutation.MusicAuto)
	}
	snapshot := draft.Clone()
	session.mu.Unlock()

	discardAll(released)
	return snapshot, nil
}

// AttachUpload 把已暂存的本地视频（及可选封面图）挂到草稿上，替换既有来源。
func (d *DraftService) AttachUpload(id uuid.UUID, file media.File, thumbnail *media.File) (SubmissionDraft, error) {
	session, err := d.session(id)
	if err != nil {
		return SubmissionDraft{}, err
	}

	session.mu.Lock()
	released := session.draft.SetUpload(file, thumbnail)
	snapshot := session.draft.Clone()
	session.mu.Unlock()

	discardAll(released)
	return snapshot, nil
}

// AddMosaicImage 追加人脸参考图。超过上限时文件被静默丢弃，不视为错误。
func (d *DraftService) AddMosaicImage(id uuid.UUID, file media.File) (SubmissionDraft, error) {
	session, err := d.session(id)
	if err != nil {
		return SubmissionDraft{}, err
	}

	session.mu.Lock()
	accepted := session.draft.AddMosaicImage(file)
	snapshot := session.draft.Clone()
	session.mu.Unlock()

	if !accepted {
		d.log.Debugf("mosaic image dropped, limit reached: session_id=%s", id)
		file.Discard()
	}
	return snapshot, nil
}

// RemoveMosaicImage 按下标移除参考图，越界静默忽略。
func (d *DraftService) RemoveMosaicImage(id uuid.UUID, index int) (SubmissionDraft, error) {
	session, err := d.session(id)
	if err != nil {
		return SubmissionDraft{}, err
	}

	session.mu.Lock()
	removed, ok := session.draft.RemoveMosaicImage(index)
	snapshot := session.draft.Clone()
	session.mu.Unlock()

	if ok {
		removed.Discard()
	}
	return snapshot, nil
}

// Reset 清空草稿内容但保留会话，提交被接受后调用。
func (d *DraftService) Reset(id uuid.UUID) error {
	session, err := d.session(id)
	if err != nil {
		return err
	}

	session.mu.Lock()
	released := session.draft.Reset()
	session.mu.Unlock()

	discardAll(released)
	return nil
}

// Cancel 销毁会话并清理其全部暂存文件。
func (d *DraftService) Cancel(id uuid.UUID) error {
	d.mu.Lock()
	session, ok := d.sessions[id]
	delete(d.sessions, id)
	d.mu.Unlock()
	if !ok {
		return ErrDraftNotFound
	}

	session.mu.Lock()
	released := session.draft.Reset()
	session.mu.Unlock()

	discardAll(released)
	d.log.Infof("draft session cancelled: session_id=%s", id)
	return nil
}

func (d *DraftService) session(id uuid.UUID) (*draftSession, error) {
	d.mu.RLock()
	session, ok := d.sessions[id]
	d.mu.RUnlock()
	if !ok {
		return nil, ErrDraftNotFound
	}
	return session, nil
}

func discardAll(files []media.File) {
	for _, f := range files {
		f.Discard()
	}
}
