package core

import (
	"context"
	"time"
)

// NotificationProcessor 是通知生成的领域接口。
// 管线在全部阶段结束后对最终文章/簇/排序信号做一次调用；
// 失败时降级为空通知列表。
type NotificationProcessor interface {
	// Name 返回处理器名称（用于日志/监控）
	Name() string

	// Process 基于最终结果生成通知候选
	Process(ctx context.Context, articles []*Article, clusters []*ArticleCluster, rankings []RankingResult) ([]Notification, error)
}

// Notification 是一条通知候选。
type Notification struct {
	ArticleID string
	Title     string
	Body      string
	Priority  string
	CreatedAt time.Time
}
