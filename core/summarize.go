package core

import "context"

// SummarizationEngine 是摘要生成的领域接口。
// 管线只对排序后的 top-N 文章调用；单篇失败仅缺失该条摘要，不影响其余。
type SummarizationEngine interface {
	// Name 返回摘要引擎名称（用于日志/监控）
	Name() string

	// Summarize 为单篇文章生成摘要
	Summarize(ctx context.Context, article *Article, content *ExtractedContent, entities []string) (*SummaryResult, error)
}

// SummaryResult 是摘要产出。
type SummaryResult struct {
	Summary   string
	KeyPoints []string

	// Model 标记产出摘要的模型/算法名。
	Model string
}
