package core

import "time"

// PipelineResult 是一次 Process 调用的完整产出，每次调用全新创建。
// 不变式：OutputCount <= InputCount；ErrorCount 等于本次运行记录的全部错误数。
type PipelineResult struct {
	Articles      []*Article
	Clusters      []*ArticleCluster
	Rankings      []RankingResult
	Summaries     map[string]*SummaryResult
	Notifications []Notification
	SafetyResults map[string]*SafetyResult

	DuplicatesRemoved int
	ProcessingTime    time.Duration
	InputCount        int
	OutputCount       int
	ErrorCount        int

	// StageTimings 是各阶段的墙钟耗时。
	StageTimings map[Stage]time.Duration
}

// NewPipelineResult 构造空结果。
func NewPipelineResult(inputCount int) *PipelineResult {
	return &PipelineResult{
		Summaries:     make(map[string]*SummaryResult),
		SafetyResults: make(map[string]*SafetyResult),
		StageTimings:  make(map[Stage]time.Duration),
		InputCount:    inputCount,
	}
}

// PipelineStats 是跨多次运行的累计统计。
type PipelineStats struct {
	Runs              int
	ArticlesIn        int
	ArticlesOut       int
	TotalErrors       int
	TotalDuration     time.Duration
	LastRun           time.Time
	LastInputCount    int
	LastOutputCount   int
	LastErrorCount    int
	LastProcessingDur time.Duration
}

// HealthStatus 是 HealthCheck 的返回值（同步、不发起网络调用）。
type HealthStatus struct {
	Status  string // healthy / degraded / unhealthy
	Details map[string]string
}
