package po

import "time"

// JobStatus 表示处理作业的当前状态。
type JobStatus string

const (
	JobStatusSubmitted JobStatus = "submitted"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal 返回状态是否为终态。
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ProcessingJob 描述 edit.processing_jobs 表中的一条待处理作业记录。
// JobID 即后端为注册视频分配的资产 ID；作业在提交调用成功的瞬间创建，
// 状态只由完成事件（或提交失败）驱动迁移。
type ProcessingJob struct {
	JobID        int64
	Title        string
	Prompt       string
	Subtitle     bool
	MusicPrompt  string
	MosaicCount  int32
	Status       JobStatus
	ResultURL    *string
	ErrorMessage *string
	EventAt      *time.Time
	SubmittedAt  time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
