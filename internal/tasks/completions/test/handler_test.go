package completions_test

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-utils/outbox/store"
	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/storycut/services-edit/internal/models/po"
	"github.com/storycut/services-edit/internal/repositories"
	"github.com/storycut/services-edit/internal/tasks/completions"
	"github.com/stretchr/testify/require"
)

const completedEventType = "video.processing.completed"

func TestHandlerFinalizesKnownJob(t *testing.T) {
	jobs := newFakeJobRepo(&po.ProcessingJob{JobID: 12, Title: "Trip", Status: po.JobStatusSubmitted})
	notifications := &fakeNotificationRepo{}
	handler := completions.NewHandler(jobs, notifications, log.NewStdLogger(io.Discard))

	evt := successEvent(t, 12, "Trip", "https://cdn/v.mp4")
	require.NoError(t, handler.Handle(context.Background(), fakeSession{}, evt, &store.InboxEvent{EventType: completedEventType}))

	require.Len(t, jobs.terminals, 1)
	mark := jobs.terminals[0]
	require.Equal(t, po.JobStatusCompleted, mark.Status)
	require.NotNil(t, mark.ResultURL)
	require.Equal(t, "https://cdn/v.mp4", *mark.ResultURL)
	require.Nil(t, mark.ErrorMessage)

	require.Len(t, notifications.inserted, 1)
	note := notifications.inserted[0]
	require.False(t, note.Generic)
	require.True(t, note.Success)
	require.Equal(t, "Trip", note.Title)
	require.Contains(t, note.Body, "finished processing")
	require.NotNil(t, note.JobID)
	require.Equal(t, int64(12), *note.JobID)
}

func TestHandlerRecordsFailureWithMessage(t *testing.T) {
	jobs := newFakeJobRepo(&po.ProcessingJob{JobID: 12, Title: "Trip", Status: po.JobStatusSubmitted})
	notifications := &fakeNotificationRepo{}
	handler := completions.NewHandler(jobs, notifications, log.NewStdLogger(io.Discard))

	evt := decodeEvent(t, `{"isSuccess":false,"code":500,"message":"gpu quota exceeded","result":{"videoId":12,"videoTitle":"Trip"}}`)
	require.NoError(t, handler.Handle(context.Background(), fakeSession{}, evt, &store.InboxEvent{EventType: completedEventType}))

	require.Len(t, jobs.terminals, 1)
	mark := jobs.terminals[0]
	require.Equal(t, po.JobStatusFailed, mark.Status)
	require.NotNil(t, mark.ErrorMessage)
	require.Equal(t, "gpu quota exceeded", *mark.ErrorMessage)

	require.Len(t, notifications.inserted, 1)
	note := notifications.inserted[0]
	require.False(t, note.Success)
	require.Contains(t, note.Body, "failed to process")
	require.Contains(t, note.Body, "gpu quota exceeded")
}

func TestHandlerFallsBackOnUnknownJob(t *testing.T) {
	jobs := newFakeJobRepo(nil)
	notifications := &fakeNotificationRepo{}
	handler := completions.NewHandler(jobs, notifications, log.NewStdLogger(io.Discard))

	evt := successEvent(t, 99, "Mystery", "https://cdn/v.mp4")
	require.NoError(t, handler.Handle(context.Background(), fakeSession{}, evt, &store.InboxEvent{EventType: completedEventType}))

	require.Empty(t, jobs.terminals)
	require.Len(t, notifications.inserted, 1)
	note := notifications.inserted[0]
	require.Equal(t, "Mystery", note.Title)
	require.False(t, note.Generic)
	require.NotNil(t, note.JobID)
	require.Equal(t, int64(99), *note.JobID)
}

func TestHandlerAcksCompletionBeforeJobRecord(t *testing.T) {
	jobs := newFakeJobRepo(nil)
	notifications := &fakeNotificationRepo{}
	handler := completions.NewHandler(jobs, notifications, log.NewStdLogger(io.Discard))

	// 完成事件先于作业落库到达：事件必须被消费而不是退回重试，
	// 通知仍携带事件中的作业 id 供客户端对账。
	evt := successEvent(t, 77, "", "https://cdn/early.mp4")
	require.NoError(t, handler.Handle(context.Background(), fakeSession{}, evt, &store.InboxEvent{EventType: completedEventType}))

	require.Empty(t, jobs.terminals)
	require.Len(t, notifications.inserted, 1)
	note := notifications.inserted[0]
	require.True(t, note.Generic)
	require.NotNil(t, note.JobID)
	require.Equal(t, int64(77), *note.JobID)
}

func TestHandlerFallsBackOnUnparseableResult(t *testing.T) {
	jobs := newFakeJobRepo(&po.ProcessingJob{JobID: 12, Status: po.JobStatusSubmitted})
	notifications := &fakeNotificationRepo{}
	handler := completions.NewHandler(jobs, notifications, log.NewStdLogger(io.Discard))

	evt := decodeEvent(t, `{"isSuccess":true,"code":200,"message":"","result":"oops"}`)
	require.NoError(t, handler.Handle(context.Background(), fakeSession{}, evt, &store.InboxEvent{EventType: completedEventType}))

	require.Zero(t, jobs.getCalls)
	require.Empty(t, jobs.terminals)
	require.Len(t, notifications.inserted, 1)
	note := notifications.inserted[0]
	require.True(t, note.Generic)
	require.Equal(t, "Video processing", note.Title)
	require.Equal(t, "Your video has finished processing", note.Body)
	require.Nil(t, note.JobID)
}

func TestHandlerSkipsTerminalJob(t *testing.T) {
	jobs := newFakeJobRepo(&po.ProcessingJob{JobID: 12, Title: "Trip", Status: po.JobStatusCompleted})
	notifications := &fakeNotificationRepo{}
	handler := completions.NewHandler(jobs, notifications, log.NewStdLogger(io.Discard))

	evt := successEvent(t, 12, "Trip", "https://cdn/v.mp4")
	require.NoError(t, handler.Handle(context.Background(), fakeSession{}, evt, &store.InboxEvent{EventType: completedEventType}))

	require.Empty(t, jobs.terminals)
	require.Empty(t, notifications.inserted)
}

func TestHandlerIgnoresForeignEventType(t *testing.T) {
	jobs := newFakeJobRepo(&po.ProcessingJob{JobID: 12, Status: po.JobStatusSubmitted})
	notifications := &fakeNotificationRepo{}
	handler := completions.NewHandler(jobs, notifications, log.NewStdLogger(io.Discard))

	evt := successEvent(t, 12, "Trip", "https://cdn/v.mp4")
	require.NoError(t, handler.Handle(context.Background(), fakeSession{}, evt, &store.InboxEvent{EventType: "video.asset.created"}))

	require.Zero(t, jobs.getCalls)
	require.Empty(t, notifications.inserted)
}

// ---- Test Doubles ----

type fakeJobRepo struct {
	mu        sync.Mutex
	job       *po.ProcessingJob
	getCalls  int
	terminals []repositories.MarkTerminalInput
}

func newFakeJobRepo(job *po.ProcessingJob) *fakeJobRepo {
	return &fakeJobRepo{job: job}
}

func (f *fakeJobRepo) GetByID(_ context.Context, _ txmanager.Session, jobID int64) (*po.ProcessingJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.job == nil || f.job.JobID != jobID {
		return nil, repositories.ErrJobNotFound
	}
	job := *f.job
	return &job, nil
}

func (f *fakeJobRepo) MarkTerminal(_ context.Context, _ txmanager.Session, input repositories.MarkTerminalInput) (*po.ProcessingJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminals = append(f.terminals, input)
	job := *f.job
	job.Status = input.Status
	return &job, nil
}

type fakeNotificationRepo struct {
	mu       sync.Mutex
	inserted []repositories.CreateNotificationInput
}

func (f *fakeNotificationRepo) Insert(_ context.Context, _ txmanager.Session, input repositories.CreateNotificationInput) (*po.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, input)
	return &po.Notification{Title: input.Title, Body: input.Body, Generic: input.Generic, Success: input.Success, JobID: input.JobID, CreatedAt: time.Now().UTC()}, nil
}

type fakeSession struct{}

func (fakeSession) Tx() pgx.Tx { return nil }

func (fakeSession) Context() context.Context { return context.Background() }

func successEvent(t *testing.T, jobID int64, title, videoURL string) *completions.Event {
	t.Helper()
	result, err := json.Marshal(map[string]any{
		"videoId":    jobID,
		"videoTitle": title,
		"videoUrl":   videoURL,
	})
	require.NoError(t, err)
	return &completions.Event{IsSuccess: true, Code: 200, Message: "ok", RawResult: result}
}

func decodeEvent(t *testing.T, payload string) *completions.Event {
	t.Helper()
	var envelope struct {
		IsSuccess bool            `json:"isSuccess"`
		Code      int             `json:"code"`
		Message   string          `json:"message"`
		Result    json.RawMessage `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(payload), &envelope))
	return &completions.Event{IsSuccess: envelope.IsSuccess, Code: envelope.Code, Message: envelope.Message, RawResult: envelope.Result}
}
