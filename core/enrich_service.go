package core

import "context"

// EnrichmentService 是文章富化的领域接口。
//
// 使用场景：
//   - 实体/话题抽取
//   - 辅助信号计算（来源声誉、时效性、传播度等）
//
// 实现：
//   - enrich.Heuristic（内置启发式实现，可选接 Feast 特征）
//   - 远程富化服务
type EnrichmentService interface {
	// Name 返回富化服务名称（用于日志/监控）
	Name() string

	// Enrich 对单篇文章做富化；userCtx 携带用户兴趣等个性化上下文
	Enrich(ctx context.Context, article *Article, content *ExtractedContent, userCtx *UserContext) (*EnrichmentResult, error)
}

// UserContext 是富化/排序阶段共享的用户上下文。
type UserContext struct {
	UserID    string
	Interests []string
	Profile   *UserProfile
}
