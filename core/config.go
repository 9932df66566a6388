package core

import "time"

// PipelineConfig 是管线的运行配置。一次 Process 内不可变；
// 通过 Pipeline.UpdateConfig 整体合并替换。
type PipelineConfig struct {
	// 七个阶段的开关。关闭的阶段是纯透传。
	EnableExtraction    bool `yaml:"enable_extraction" json:"enable_extraction"`
	EnableSafety        bool `yaml:"enable_safety" json:"enable_safety"`
	EnableEnrichment    bool `yaml:"enable_enrichment" json:"enable_enrichment"`
	EnableDeduplication bool `yaml:"enable_deduplication" json:"enable_deduplication"`
	EnableRanking       bool `yaml:"enable_ranking" json:"enable_ranking"`
	EnableSummarization bool `yaml:"enable_summarization" json:"enable_summarization"`
	EnableNotifications bool `yaml:"enable_notifications" json:"enable_notifications"`

	// GeminiAPIKey 为空时不启用 AI 相关性评估。
	GeminiAPIKey string `yaml:"gemini_api_key" json:"gemini_api_key"`

	UserID        string   `yaml:"user_id" json:"user_id"`
	UserInterests []string `yaml:"user_interests" json:"user_interests"`

	// BatchSize 是并发模式下每批任务数。
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// MaxProcessingTime 是共享时间预算：并发模式按批应用，顺序模式按任务应用。
	MaxProcessingTime time.Duration `yaml:"max_processing_time" json:"max_processing_time"`

	EnableParallel bool `yaml:"enable_parallel" json:"enable_parallel"`

	// MinContentQuality 是质量阈值，低于它的文章会被打上低质标签。
	MinContentQuality float64 `yaml:"min_content_quality" json:"min_content_quality"`

	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`

	// AIGateExpr 是 AI 评估准入的 CEL 表达式（变量：article / signals / user）。
	// 为空表示只要配置了 key 就对所有文章启用。
	AIGateExpr string `yaml:"ai_gate_expr" json:"ai_gate_expr"`
}

// DefaultPipelineConfig 返回全阶段开启的默认配置。
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		EnableExtraction:    true,
		EnableSafety:        true,
		EnableEnrichment:    true,
		EnableDeduplication: true,
		EnableRanking:       true,
		EnableSummarization: true,
		EnableNotifications: true,
		BatchSize:           10,
		MaxProcessingTime:   30 * time.Second,
		EnableParallel:      true,
		MinContentQuality:   0.3,
		EnableMetrics:       true,
	}
}

// ConfigPatch 是 UpdateConfig 的部分更新：nil 字段表示不修改。
// GeminiAPIKey 或 UserInterests 的变更会触发排序/AI 引擎整体重建。
type ConfigPatch struct {
	EnableExtraction    *bool
	EnableSafety        *bool
	EnableEnrichment    *bool
	EnableDeduplication *bool
	EnableRanking       *bool
	EnableSummarization *bool
	EnableNotifications *bool

	GeminiAPIKey  *string
	UserID        *string
	UserInterests *[]string

	BatchSize         *int
	MaxProcessingTime *time.Duration
	EnableParallel    *bool
	MinContentQuality *float64
	EnableMetrics     *bool
	AIGateExpr        *string
}

// Apply 将 patch 合并到配置副本并返回；同时报告是否需要重建引擎。
func (p ConfigPatch) Apply(cfg PipelineConfig) (PipelineConfig, bool) {
	rebuild := false

	if p.EnableExtraction != nil {
		cfg.EnableExtraction = *p.EnableExtraction
	}
	if p.EnableSafety != nil {
		cfg.EnableSafety = *p.EnableSafety
	}
	if p.EnableEnrichment != nil {
		cfg.EnableEnrichment = *p.EnableEnrichment
	}
	if p.EnableDeduplication != nil {
		cfg.EnableDeduplication = *p.EnableDeduplication
	}
	if p.EnableRanking != nil {
		cfg.EnableRanking = *p.EnableRanking
	}
	if p.EnableSummarization != nil {
		cfg.EnableSummarization = *p.EnableSummarization
	}
	if p.EnableNotifications != nil {
		cfg.EnableNotifications = *p.EnableNotifications
	}
	if p.GeminiAPIKey != nil && *p.GeminiAPIKey != cfg.GeminiAPIKey {
		cfg.GeminiAPIKey = *p.GeminiAPIKey
		rebuild = true
	}
	if p.UserID != nil {
		cfg.UserID = *p.UserID
	}
	if p.UserInterests != nil && !equalStrings(*p.UserInterests, cfg.UserInterests) {
		cfg.UserInterests = *p.UserInterests
		rebuild = true
	}
	if p.BatchSize != nil {
		cfg.BatchSize = *p.BatchSize
	}
	if p.MaxProcessingTime != nil {
		cfg.MaxProcessingTime = *p.MaxProcessingTime
	}
	if p.EnableParallel != nil {
		cfg.EnableParallel = *p.EnableParallel
	}
	if p.MinContentQuality != nil {
		cfg.MinContentQuality = *p.MinContentQuality
	}
	if p.EnableMetrics != nil {
		cfg.EnableMetrics = *p.EnableMetrics
	}
	if p.AIGateExpr != nil {
		cfg.AIGateExpr = *p.AIGateExpr
	}

	return cfg, rebuild
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
