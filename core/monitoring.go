package core

import (
	"context"
	"time"
)

// MonitoringSink 是指标上报的领域接口。
// 管线以 fire-and-forget 方式上报，上报失败不影响处理结果。
type MonitoringSink interface {
	// Name 返回 sink 名称
	Name() string

	// Record 记录一次管线运行的指标
	Record(ctx context.Context, metrics PipelineMetrics)
}

// PipelineMetrics 是单次管线运行的指标快照。
type PipelineMetrics struct {
	// ResponseTime 是整次运行的墙钟耗时。
	ResponseTime time.Duration

	// Throughput 为 OutputCount / ResponseTime（秒），单位 篇/秒。
	Throughput float64

	// ErrorRate 为 ErrorCount / InputCount。
	ErrorRate float64

	ArticlesProcessed int

	// AverageRelevanceScore 是本次排序结果 FinalScore 的均值。
	AverageRelevanceScore float64
}
