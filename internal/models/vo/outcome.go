// Package vo 定义视图对象（View Objects），用于向上层传递业务数据。
// VO 对象由 Service 层返回，经 Controllers 层转换为 API 响应，隔离内部数据结构。
package vo

// OutcomeKind 表示一次提交编排的终态类别。
type OutcomeKind string

const (
	OutcomeAccepted OutcomeKind = "accepted"
	OutcomeFailed   OutcomeKind = "failed"
)

// FailureKind 表示提交失败的具体阶段。
type FailureKind string

const (
	FailureValidation      FailureKind = "validation"
	FailureAssetResolution FailureKind = "asset_resolution"
	FailureSubmission      FailureKind = "submission"
)

// Outcome 封装一次提交编排运行的终态。
// Accepted 仅代表服务端已受理作业，最终成败由完成事件另行送达。
// Warning 携带非致命的降级说明（当前只有人脸参考图暂存失败一种）。
type Outcome struct {
	Kind       OutcomeKind `json:"kind"`
	JobID      int64       `json:"job_id,omitempty"`
	Failure    FailureKind `json:"failure,omitempty"`
	Message    string      `json:"message,omitempty"`
	Violations []string    `json:"violations,omitempty"`
	Warning    string      `json:"warning,omitempty"`
}

// Accepted 返回终态是否为受理成功。
func (o *Outcome) Accepted() bool {
	return o != nil && o.Kind == OutcomeAccepted
}

// NewAcceptedOutcome 构造受理成功的终态。
func NewAcceptedOutcome(jobID int64, warning string) *Outcome {
	return &Outcome{Kind: OutcomeAccepted, JobID: jobID, Warning: warning}
}

// NewFailedOutcome 构造失败终态。
func NewFailedOutcome(failure FailureKind, message string, violations []string) *Outcome {
	return &Outcome{
		Kind:       OutcomeFailed,
		Failure:    failure,
		Message:    message,
		Violations: append([]string(nil), violations...),
	}
}
