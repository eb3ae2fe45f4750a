package services_test

import (
	"testing"

	"github.com/storycut/services-edit/internal/services"
)

func TestBuildProcessingRequest_ManualMusicPrompt(t *testing.T) {
	draft := services.SubmissionDraft{
		Title:        "Trip",
		PromptText:   "cut the boring parts",
		MusicEnabled: true,
		MusicPrompt:  "lofi beats",
	}

	req := services.BuildProcessingRequest(draft, 7, []string{"https://img/1.jpg"})
	if req.JobID != 7 {
		t.Fatalf("unexpected job id: %d", req.JobID)
	}
	if req.MusicPrompt != "lofi beats" || req.AutoMusic {
		t.Fatalf("expected manual music prompt, got prompt=%q auto=%v", req.MusicPrompt, req.AutoMusic)
	}
	if len(req.MosaicURLs) != 1 {
		t.Fatalf("unexpected mosaic urls: %v", req.MosaicURLs)
	}
}

func TestBuildProcessingRequest_AutoMusicSuppressesPrompt(t *testing.T) {
	draft := services.SubmissionDraft{
		Title:        "Trip",
		MusicEnabled: true,
		MusicAuto:    true,
	}

	req := services.BuildProcessingRequest(draft, 7, nil)
	if req.MusicPrompt != "" || !req.AutoMusic {
		t.Fatalf("expected auto music, got prompt=%q auto=%v", req.MusicPrompt, req.AutoMusic)
	}
}

func TestBuildProcessingRequest_MusicDisabled(t *testing.T) {
	draft := services.SubmissionDraft{Title: "Trip", MusicPrompt: "ignored"}

	req := services.BuildProcessingRequest(draft, 7, nil)
	if req.MusicPrompt != "" || req.AutoMusic {
		t.Fatalf("disabled music must resolve empty, got prompt=%q auto=%v", req.MusicPrompt, req.AutoMusic)
	}
	if req.MosaicURLs == nil || len(req.MosaicURLs) != 0 {
		t.Fatalf("mosaic urls must be an empty list, got %#v", req.MosaicURLs)
	}
}
