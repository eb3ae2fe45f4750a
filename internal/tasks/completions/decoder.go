// Package completions implements the processing-completion ingestion pipeline.
package completions

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Event 表示从完成推送消息中解析出的响应外壳。
// Result 保持原始字节，由处理器按需解码，畸形结果不阻塞整条消息。
type Event struct {
	IsSuccess bool
	Code      int
	Message   string
	RawResult json.RawMessage
}

// JobResult 是成功完成事件携带的作业结果。
type JobResult struct {
	JobID        int64  `json:"videoId"`
	Title        string `json:"videoTitle"`
	VideoURL     string `json:"videoUrl"`
	ThumbnailURL string `json:"thumbnail"`
}

type completionEnvelope struct {
	IsSuccess bool            `json:"isSuccess"`
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Result    json.RawMessage `json:"result"`
}

type eventDecoder struct{}

func newDecoder() *eventDecoder {
	return &eventDecoder{}
}

// Decode 将消息数据解析为 Event。外壳解析失败才算解码错误。
func (d *eventDecoder) Decode(data []byte) (*Event, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("completions: empty payload")
	}

	var msg completionEnvelope
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("completions: decode completion payload: %w", err)
	}

	return &Event{
		IsSuccess: msg.IsSuccess,
		Code:      msg.Code,
		Message:   msg.Message,
		RawResult: msg.Result,
	}, nil
}

// Succeeded 判断事件是否表示处理成功。
func (e *Event) Succeeded() bool {
	return e.IsSuccess && e.Code == 200
}

// JobResult 尝试解码结果体。缺失、null 或无法解析出作业 ID 时返回 false，
// 调用方据此走兜底通知路径。
func (e *Event) JobResult() (*JobResult, bool) {
	if len(e.RawResult) == 0 || bytes.Equal(bytes.TrimSpace(e.RawResult), []byte("null")) {
		return nil, false
	}

	var result JobResult
	if err := json.Unmarshal(e.RawResult, &result); err != nil {
		return nil, false
	}
	if result.JobID == 0 {
		return nil, false
	}
	return &result, true
}
