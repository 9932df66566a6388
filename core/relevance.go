package core

import "context"

// AIRelevanceClient 是外部相关性模型的领域接口。
//
// 设计原则：
//   - 显式构造并注入排序引擎，不使用包级单例（多 key / 测试友好）
//   - 返回 nil 判断结果表示模型侧无结论，调用方将信号记为缺失
//
// 实现：
//   - ai.GeminiClient（HTTP，多候选模型顺序回退）
type AIRelevanceClient interface {
	// Name 返回客户端名称（用于日志/监控）
	Name() string

	// Analyze 对标题+正文做一次相关性评估，返回 0-100 分与理由。
	// 返回 (nil, nil) 表示模型无结论。
	Analyze(ctx context.Context, title, text string, interests []string) (*RelevanceJudgement, error)
}
