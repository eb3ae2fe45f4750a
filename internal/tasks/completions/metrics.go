package completions

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// taskMetrics 统计完成事件的处理结果分布。
type taskMetrics struct {
	processed metric.Int64Counter
	fallbacks metric.Int64Counter
}

func newTaskMetrics() *taskMetrics {
	meter := otel.Meter("services-edit/tasks/completions")

	processed, _ := meter.Int64Counter("edit_completions_processed_total",
		metric.WithDescription("Completion events that finalized a known job."))
	fallbacks, _ := meter.Int64Counter("edit_completions_fallback_total",
		metric.WithDescription("Completion events routed to a generic notification."))

	return &taskMetrics{processed: processed, fallbacks: fallbacks}
}

func (m *taskMetrics) recordProcessed(ctx context.Context) {
	if m == nil || m.processed == nil {
		return
	}
	m.processed.Add(ctx, 1)
}

func (m *taskMetrics) recordFallback(ctx context.Context) {
	if m == nil || m.fallbacks == nil {
		return
	}
	m.fallbacks.Add(ctx, 1)
}
