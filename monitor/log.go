package monitor

import (
	"context"
	"log/slog"

	"github.com/rushteam/feedkit/core"
)

// LogSink 将每次运行的指标写结构化日志，无状态。
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "monitor")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Record(ctx context.Context, m core.PipelineMetrics) {
	s.logger.InfoContext(ctx, "pipeline run metrics",
		"response_time", m.ResponseTime,
		"throughput", m.Throughput,
		"error_rate", m.ErrorRate,
		"articles_processed", m.ArticlesProcessed,
		"avg_relevance", m.AverageRelevanceScore,
	)
}

// MultiSink 把同一份指标扇出到多个下游。
type MultiSink []core.MonitoringSink

func (ms MultiSink) Name() string { return "multi" }

func (ms MultiSink) Record(ctx context.Context, m core.PipelineMetrics) {
	for _, s := range ms {
		if s != nil {
			s.Record(ctx, m)
		}
	}
}

var (
	_ core.MonitoringSink = (*LogSink)(nil)
	_ core.MonitoringSink = (MultiSink)(nil)
)
