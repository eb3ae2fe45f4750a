package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storycut/services-edit/internal/models/po"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrJobNotFound 表示处理作业不存在。
var ErrJobNotFound = errors.New("processing job not found")

// JobRepository 封装 edit.processing_jobs 表的访问逻辑。
type JobRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewJobRepository 构造 JobRepository。
func NewJobRepository(db *pgxpool.Pool, logger log.Logger) *JobRepository {
	return &JobRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

// CreateJobInput 描述提交成功后登记待处理作业所需的字段。
type CreateJobInput struct {
	JobID       int64
	Title       string
	Prompt      string
	Subtitle    bool
	MusicPrompt string
	MosaicCount int32
}

const jobColumns = `job_id, title, prompt, subtitle, music_prompt, mosaic_count,
	status, result_url, error_message, event_at, submitted_at, completed_at,
	created_at, updated_at`

// Create 登记一条待处理作业。提交端点可能被重试，重复 job_id 复用既有记录。
func (r *JobRepository) Create(ctx context.Context, sess txmanager.Session, input CreateJobInput) (*po.ProcessingJob, error) {
	q := runnerFor(r.db, sess)

	row := q.QueryRow(ctx, `
		INSERT INTO edit.processing_jobs (job_id, title, prompt, subtitle, music_prompt, mosaic_count, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'submitted', now())
		ON CONFLICT (job_id) DO UPDATE SET updated_at = now()
		RETURNING `+jobColumns,
		input.JobID, input.Title, input.Prompt, input.Subtitle, input.MusicPrompt, input.MosaicCount,
	)
	job, err := scanJob(row)
	if err != nil {
		r.log.WithContext(ctx).Errorf("create processing job failed: job_id=%d err=%v", input.JobID, err)
		return nil, fmt.Errorf("create processing job: %w", err)
	}
	return job, nil
}

// GetByID 查询指定作业。
func (r *JobRepository) GetByID(ctx context.Context, sess txmanager.Session, jobID int64) (*po.ProcessingJob, error) {
	q := runnerFor(r.db, sess)

	row := q.QueryRow(ctx, `SELECT `+jobColumns+` FROM edit.processing_jobs WHERE job_id = $1`, jobID)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		r.log.WithContext(ctx).Errorf("get processing job failed: job_id=%d err=%v", jobID, err)
		return nil, fmt.Errorf("get processing job: %w", err)
	}
	return job, nil
}

// MarkTerminalInput 描述完成事件驱动的终态迁移字段。
type MarkTerminalInput struct {
	JobID        int64
	Status       po.JobStatus
	ResultURL    *string
	ErrorMessage *string
	EventAt      time.Time
}

// MarkTerminal 将作业迁移到 completed/failed 终态并记录事件时间。
func (r *JobRepository) MarkTerminal(ctx context.Context, sess txmanager.Session, input MarkTerminalInput) (*po.ProcessingJob, error) {
	if !input.Status.Terminal() {
		return nil, fmt.Errorf("mark terminal: status %q is not terminal", input.Status)
	}
	q := runnerFor(r.db, sess)

	row := q.QueryRow(ctx, `
		UPDATE edit.processing_jobs
		SET status = $2,
			result_url = COALESCE($3, result_url),
			error_message = $4,
			event_at = $5,
			completed_at = now(),
			updated_at = now()
		WHERE job_id = $1
		RETURNING `+jobColumns,
		input.JobID, string(input.Status), optionalString(input.ResultURL), input.ErrorMessage, input.EventAt.UTC(),
	)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		r.log.WithContext(ctx).Errorf("mark processing job terminal failed: job_id=%d err=%v", input.JobID, err)
		return nil, fmt.Errorf("mark processing job terminal: %w", err)
	}
	return job, nil
}

func scanJob(row pgx.Row) (*po.ProcessingJob, error) {
	var job po.ProcessingJob
	var status string
	if err := row.Scan(
		&job.JobID, &job.Title, &job.Prompt, &job.Subtitle, &job.MusicPrompt, &job.MosaicCount,
		&status, &job.ResultURL, &job.ErrorMessage, &job.EventAt, &job.SubmittedAt, &job.CompletedAt,
		&job.CreatedAt, &job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	job.Status = po.JobStatus(status)
	return &job, nil
}
