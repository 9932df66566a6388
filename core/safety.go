package core

import "context"

// SafetyRecommendation 是安全检查的处置建议。
type SafetyRecommendation string

const (
	SafetyAllow SafetyRecommendation = "allow"
	SafetyFlag  SafetyRecommendation = "flag"
	SafetyBlock SafetyRecommendation = "block"
)

// SafetyEngine 是内容安全检查的领域接口。
// 检查失败时管线采用 fail-open 策略：放行并记录错误。
type SafetyEngine interface {
	// Name 返回安全引擎名称（用于日志/监控）
	Name() string

	// Check 对文章及其抽取内容做安全检查
	Check(ctx context.Context, article *Article, content *ExtractedContent) (*SafetyResult, error)
}

// SafetyResult 是单篇文章的安全检查结果。
type SafetyResult struct {
	Recommendation SafetyRecommendation

	// SafetyScore 为 0-1，越高越安全。
	SafetyScore float64

	Flags []string
}

// Allowed 判断该结果是否放行（allow 与 flag 均放行，仅 block 拦截）。
func (r *SafetyResult) Allowed() bool {
	return r == nil || r.Recommendation != SafetyBlock
}
