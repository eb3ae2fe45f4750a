package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	txmanager "github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/storycut/services-edit/internal/models/media"
	"github.com/storycut/services-edit/internal/models/po"
	"github.com/storycut/services-edit/internal/models/vo"
	"github.com/storycut/services-edit/internal/repositories"
	"github.com/storycut/services-edit/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// stubBackend 同时充当视频、图片与处理三个网关。
type stubBackend struct {
	presignCalls  int
	presignErr    error
	putCalls      int
	putErr        error
	registered    services.RegisteredVideo
	registerCalls int
	registerInput services.RegisterVideoInput
	registerErr   error

	imageURLs    []string
	imageCalls   int
	uploadImgErr error

	submitCalls   int
	submitReq     services.ProcessingRequest
	submitToken   string
	submitDevice  string
	submitErr     error
	submitStarted chan struct{}
	submitRelease chan struct{}
}

func (b *stubBackend) IssuePresignedURL(_ context.Context, filename string) (*services.PresignedTarget, error) {
	b.presignCalls++
	if b.presignErr != nil {
		return nil, b.presignErr
	}
	return &services.PresignedTarget{
		UploadURL: "https://blob.example/upload/" + filename,
		AssetURL:  "https://blob.example/assets/" + filename,
	}, nil
}

func (b *stubBackend) PutBlob(_ context.Context, _ string, _ media.File) error {
	b.putCalls++
	return b.putErr
}

func (b *stubBackend) RegisterVideo(_ context.Context, _ string, input services.RegisterVideoInput) (*services.RegisteredVideo, error) {
	b.registerCalls++
	b.registerInput = input
	if b.registerErr != nil {
		return nil, b.registerErr
	}
	registered := b.registered
	return &registered, nil
}

func (b *stubBackend) UploadImages(_ context.Context, files []media.File) ([]string, error) {
	b.imageCalls++
	if b.uploadImgErr != nil {
		return nil, b.uploadImgErr
	}
	if b.imageURLs != nil {
		return b.imageURLs, nil
	}
	urls := make([]string, 0, len(files))
	for _, f := range files {
		urls = append(urls, "https://blob.example/images/"+f.Filename)
	}
	return urls, nil
}

func (b *stubBackend) SubmitProcessing(_ context.Context, token, deviceToken string, request services.ProcessingRequest) error {
	b.submitCalls++
	b.submitToken = token
	b.submitDevice = deviceToken
	b.submitReq = request
	if b.submitStarted != nil {
		close(b.submitStarted)
	}
	if b.submitRelease != nil {
		<-b.submitRelease
	}
	return b.submitErr
}

type stubJobRecorder struct {
	calls     int
	input     repositories.CreateJobInput
	createErr error
}

func (r *stubJobRecorder) Create(_ context.Context, _ txmanager.Session, input repositories.CreateJobInput) (*po.ProcessingJob, error) {
	r.calls++
	r.input = input
	if r.createErr != nil {
		return nil, r.createErr
	}
	return &po.ProcessingJob{JobID: input.JobID, Title: input.Title, Status: po.JobStatusSubmitted}, nil
}

func newSubmissionFixture(backend *stubBackend, jobs *stubJobRecorder) (*services.SubmissionService, *services.DraftService) {
	logger := log.NewStdLogger(nil)
	drafts := services.NewDraftService(logger)
	assets := services.NewAssetService(backend, logger)
	mosaic := services.NewMosaicService(backend, logger)
	svc := services.NewSubmissionService(drafts, assets, mosaic, backend, jobs, services.SubmissionOptions{StepTimeout: 2 * time.Second}, logger)
	return svc, drafts
}

func TestSubmit_ValidationFailureSkipsGateways(t *testing.T) {
	backend := &stubBackend{}
	svc, drafts := newSubmissionFixture(backend, &stubJobRecorder{})
	id, _ := drafts.Open()

	outcome, err := svc.Submit(context.Background(), services.SubmitInput{SessionID: id, AccessToken: "tok"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Kind != vo.OutcomeFailed || outcome.Failure != vo.FailureValidation {
		t.Fatalf("expected validation failure, got %+v", outcome)
	}
	if len(outcome.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %v", outcome.Violations)
	}
	if backend.presignCalls+backend.registerCalls+backend.imageCalls+backend.submitCalls != 0 {
		t.Fatalf("no gateway call expected on validation failure")
	}
}

func TestSubmit_ExistingAssetAccepted(t *testing.T) {
	backend := &stubBackend{registered: services.RegisteredVideo{ID: 42, URL: "https://cdn.example/v.mp4"}}
	jobs := &stubJobRecorder{}
	svc, drafts := newSubmissionFixture(backend, jobs)

	id, _ := drafts.Open()
	mustApply(t, drafts, id, services.Mutation{
		Title:         strPtr("Beach Day"),
		PromptText:    strPtr("keep the sunset"),
		ExistingVideo: &services.ExistingAsset{URL: "https://cdn.example/v.mp4"},
	})

	outcome, err := svc.Submit(context.Background(), services.SubmitInput{SessionID: id, AccessToken: "tok", DeviceToken: "dev"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !outcome.Accepted() || outcome.JobID != 42 {
		t.Fatalf("expected accepted job 42, got %+v", outcome)
	}
	if outcome.Warning != "" {
		t.Fatalf("unexpected warning: %q", outcome.Warning)
	}

	if backend.presignCalls != 0 || backend.putCalls != 0 {
		t.Fatalf("existing asset must not re-upload bytes")
	}
	if backend.submitReq.JobID != 42 || backend.submitReq.Title != "Beach Day" || backend.submitReq.Prompt != "keep the sunset" {
		t.Fatalf("unexpected processing request: %+v", backend.submitReq)
	}
	if backend.submitToken != "tok" || backend.submitDevice != "dev" {
		t.Fatalf("credentials not forwarded: token=%q device=%q", backend.submitToken, backend.submitDevice)
	}
	if jobs.calls != 1 || jobs.input.JobID != 42 {
		t.Fatalf("expected job record, got calls=%d input=%+v", jobs.calls, jobs.input)
	}

	// 受理后草稿被复位。
	draft, err := drafts.Get(id)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if draft.SourceKind() != services.VideoSourceNone || draft.Title != "" {
		t.Fatalf("draft should be reset after accept, got %+v", draft)
	}
}

func TestSubmit_UploadFlowResolvesThroughPresign(t *testing.T) {
	backend := &stubBackend{registered: services.RegisteredVideo{ID: 7, URL: "https://blob.example/assets/clip.mp4"}}
	svc, drafts := newSubmissionFixture(backend, &stubJobRecorder{})

	id, _ := drafts.Open()
	mustApply(t, drafts, id, services.Mutation{Title: strPtr("Clip")})
	if _, err := drafts.AttachUpload(id, media.File{Path: "/nonexistent/clip.mp4", Filename: "clip.mp4", Kind: media.KindVideo}, nil); err != nil {
		t.Fatalf("attach upload: %v", err)
	}

	outcome, err := svc.Submit(context.Background(), services.SubmitInput{SessionID: id, AccessToken: "tok"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !outcome.Accepted() || outcome.JobID != 7 {
		t.Fatalf("expected accepted job 7, got %+v", outcome)
	}
	if backend.presignCalls != 1 || backend.putCalls != 1 || backend.registerCalls != 1 {
		t.Fatalf("unexpected upload path calls: presign=%d put=%d register=%d",
			backend.presignCalls, backend.putCalls, backend.registerCalls)
	}
	if backend.registerInput.URL != "https://blob.example/assets/clip.mp4" {
		t.Fatalf("register must use presigned asset url, got %q", backend.registerInput.URL)
	}
}

func TestSubmit_MosaicFailureDegradesToWarning(t *testing.T) {
	backend := &stubBackend{
		registered:   services.RegisteredVideo{ID: 9},
		uploadImgErr: fmt.Errorf("image backend down"),
	}
	svc, drafts := newSubmissionFixture(backend, &stubJobRecorder{})

	id, _ := drafts.Open()
	mustApply(t, drafts, id, services.Mutation{
		Title:         strPtr("Clip"),
		ExistingVideo: &services.ExistingAsset{URL: "https://cdn.example/v.mp4"},
		MosaicEnabled: boolPtr(true),
	})
	if _, err := drafts.AddMosaicImage(id, imageFile("face.jpg")); err != nil {
		t.Fatalf("add image: %v", err)
	}

	outcome, err := svc.Submit(context.Background(), services.SubmitInput{SessionID: id, AccessToken: "tok"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !outcome.Accepted() {
		t.Fatalf("mosaic failure must not block submission, got %+v", outcome)
	}
	if outcome.Warning == "" {
		t.Fatalf("expected degradation warning")
	}
	if len(backend.submitReq.MosaicURLs) != 0 {
		t.Fatalf("expected empty mosaic urls, got %v", backend.submitReq.MosaicURLs)
	}
}

func TestSubmit_AssetResolutionFailure(t *testing.T) {
	backend := &stubBackend{registerErr: fmt.Errorf("backend unavailable")}
	jobs := &stubJobRecorder{}
	svc, drafts := newSubmissionFixture(backend, jobs)

	id, _ := drafts.Open()
	mustApply(t, drafts, id, services.Mutation{
		Title:         strPtr("Clip"),
		ExistingVideo: &services.ExistingAsset{URL: "https://cdn.example/v.mp4"},
	})

	outcome, err := svc.Submit(context.Background(), services.SubmitInput{SessionID: id, AccessToken: "tok"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Kind != vo.OutcomeFailed || outcome.Failure != vo.FailureAssetResolution {
		t.Fatalf("expected asset resolution failure, got %+v", outcome)
	}
	if backend.submitCalls != 0 || jobs.calls != 0 {
		t.Fatalf("no submit or job record expected after resolution failure")
	}

	// 失败不复位草稿，用户可以直接重试。
	draft, _ := drafts.Get(id)
	if draft.Title != "Clip" {
		t.Fatalf("draft must survive a failed run, got %+v", draft)
	}
}

func TestSubmit_SubmissionFailureKeepsDraft(t *testing.T) {
	backend := &stubBackend{
		registered: services.RegisteredVideo{ID: 5},
		submitErr:  fmt.Errorf("processing rejected"),
	}
	jobs := &stubJobRecorder{}
	svc, drafts := newSubmissionFixture(backend, jobs)

	id, _ := drafts.Open()
	mustApply(t, drafts, id, services.Mutation{
		Title:         strPtr("Clip"),
		ExistingVideo: &services.ExistingAsset{URL: "https://cdn.example/v.mp4"},
	})

	outcome, err := svc.Submit(context.Background(), services.SubmitInput{SessionID: id, AccessToken: "tok"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Kind != vo.OutcomeFailed || outcome.Failure != vo.FailureSubmission {
		t.Fatalf("expected submission failure, got %+v", outcome)
	}
	if jobs.calls != 0 {
		t.Fatalf("rejected submission must not record a job")
	}
	draft, _ := drafts.Get(id)
	if draft.Title != "Clip" {
		t.Fatalf("draft must survive a failed run")
	}
}

func TestSubmit_RejectsConcurrentRun(t *testing.T) {
	backend := &stubBackend{
		registered:    services.RegisteredVideo{ID: 3},
		submitStarted: make(chan struct{}),
		submitRelease: make(chan struct{}),
	}
	svc, drafts := newSubmissionFixture(backend, &stubJobRecorder{})

	id, _ := drafts.Open()
	mustApply(t, drafts, id, services.Mutation{
		Title:         strPtr("Clip"),
		ExistingVideo: &services.ExistingAsset{URL: "https://cdn.example/v.mp4"},
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := svc.Submit(context.Background(), services.SubmitInput{SessionID: id, AccessToken: "tok"}); err != nil {
			t.Errorf("first submit: %v", err)
		}
	}()

	<-backend.submitStarted
	_, err := svc.Submit(context.Background(), services.SubmitInput{SessionID: id, AccessToken: "tok"})
	if !kerrors.IsConflict(err) {
		t.Fatalf("expected conflict while run in flight, got %v", err)
	}

	close(backend.submitRelease)
	<-done
}

func TestSubmit_UnknownSession(t *testing.T) {
	svc, _ := newSubmissionFixture(&stubBackend{}, &stubJobRecorder{})

	_, err := svc.Submit(context.Background(), services.SubmitInput{SessionID: uuid.New(), AccessToken: "tok"})
	if !kerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func mustApply(t *testing.T, drafts *services.DraftService, id uuid.UUID, mutation services.Mutation) {
	t.Helper()
	if _, err := drafts.Apply(id, mutation); err != nil {
		t.Fatalf("apply mutation: %v", err)
	}
}
