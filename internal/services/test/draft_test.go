package services_test

import (
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/storycut/services-edit/internal/models/media"
	"github.com/storycut/services-edit/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
)

func newDraftService() *services.DraftService {
	return services.NewDraftService(log.NewStdLogger(nil))
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func imageFile(name string) media.File {
	return media.File{Path: "/nonexistent/" + name, Filename: name, Kind: media.KindImage}
}

func TestDraftService_MosaicImageCap(t *testing.T) {
	svc := newDraftService()
	id, _ := svc.Open()

	if _, err := svc.Apply(id, services.Mutation{MosaicEnabled: boolPtr(true)}); err != nil {
		t.Fatalf("enable mosaic: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.AddMosaicImage(id, imageFile("face.jpg")); err != nil {
			t.Fatalf("add image %d: %v", i, err)
		}
	}

	draft, err := svc.Get(id)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if len(draft.MosaicImages) != services.MosaicImageLimit {
		t.Fatalf("expected %d images, got %d", services.MosaicImageLimit, len(draft.MosaicImages))
	}
}

func TestDraftService_MosaicDisableClearsImages(t *testing.T) {
	svc := newDraftService()
	id, _ := svc.Open()

	if _, err := svc.Apply(id, services.Mutation{MosaicEnabled: boolPtr(true)}); err != nil {
		t.Fatalf("enable mosaic: %v", err)
	}
	if _, err := svc.AddMosaicImage(id, imageFile("face.jpg")); err != nil {
		t.Fatalf("add image: %v", err)
	}

	draft, err := svc.Apply(id, services.Mutation{MosaicEnabled: boolPtr(false)})
	if err != nil {
		t.Fatalf("disable mosaic: %v", err)
	}
	if len(draft.MosaicImages) != 0 {
		t.Fatalf("expected images cleared, got %d", len(draft.MosaicImages))
	}
}

func TestDraftService_MusicAutoClearsPrompt(t *testing.T) {
	svc := newDraftService()
	id, _ := svc.Open()

	draft, err := svc.Apply(id, services.Mutation{
		MusicEnabled: boolPtr(true),
		MusicPrompt:  strPtr("calm piano"),
	})
	if err != nil {
		t.Fatalf("set music prompt: %v", err)
	}
	if draft.MusicPrompt != "calm piano" {
		t.Fatalf("unexpected prompt: %q", draft.MusicPrompt)
	}

	draft, err = svc.Apply(id, services.Mutation{MusicAuto: boolPtr(true)})
	if err != nil {
		t.Fatalf("enable auto: %v", err)
	}
	if draft.MusicPrompt != "" {
		t.Fatalf("auto mode should clear prompt, got %q", draft.MusicPrompt)
	}

	// 自动模式下重新写入提示词不应隐式退出自动模式。
	draft, err = svc.Apply(id, services.Mutation{MusicPrompt: strPtr("epic drums")})
	if err != nil {
		t.Fatalf("set prompt again: %v", err)
	}
	if !draft.MusicAuto {
		t.Fatalf("setting a prompt must not clear auto mode")
	}
}

func TestDraftService_MusicAutoWinsWithinOneMutation(t *testing.T) {
	svc := newDraftService()
	id, _ := svc.Open()

	draft, err := svc.Apply(id, services.Mutation{
		MusicEnabled: boolPtr(true),
		MusicAuto:    boolPtr(true),
		MusicPrompt:  strPtr("calm piano"),
	})
	if err != nil {
		t.Fatalf("apply combined mutation: %v", err)
	}
	if !draft.MusicAuto {
		t.Fatalf("expected auto mode enabled")
	}
	if draft.MusicPrompt != "" {
		t.Fatalf("auto mode must clear the prompt from the same mutation, got %q", draft.MusicPrompt)
	}
}

func TestDraftService_SourceSwitchingIsExclusive(t *testing.T) {
	svc := newDraftService()
	id, _ := svc.Open()

	upload := media.File{Path: "/nonexistent/video.mp4", Filename: "video.mp4", Kind: media.KindVideo}
	draft, err := svc.AttachUpload(id, upload, nil)
	if err != nil {
		t.Fatalf("attach upload: %v", err)
	}
	if draft.SourceKind() != services.VideoSourceUpload {
		t.Fatalf("expected upload source, got %q", draft.SourceKind())
	}

	draft, err = svc.Apply(id, services.Mutation{
		ExistingVideo: &services.ExistingAsset{URL: "https://cdn.example/v.mp4"},
	})
	if err != nil {
		t.Fatalf("switch to existing: %v", err)
	}
	if draft.SourceKind() != services.VideoSourceExisting {
		t.Fatalf("expected existing source, got %q", draft.SourceKind())
	}
	if draft.Upload != nil {
		t.Fatalf("upload source should be cleared on switch")
	}
}

func TestSubmissionDraft_Validate(t *testing.T) {
	var draft services.SubmissionDraft
	violations := draft.Validate()
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %v", violations)
	}

	draft.SetTitle("My Clip")
	draft.SetExisting(services.ExistingAsset{URL: "https://cdn.example/v.mp4"})
	if violations := draft.Validate(); len(violations) != 0 {
		t.Fatalf("expected valid draft, got %v", violations)
	}
}

func TestDraftService_CancelUnknownSession(t *testing.T) {
	svc := newDraftService()
	err := svc.Cancel(uuid.New())
	if !kerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
