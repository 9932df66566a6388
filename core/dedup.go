package core

import "context"

// DeduplicationService 是去重/聚簇的领域接口。
// 聚簇算法内部实现不在本模块范围内，管线只消费其结果。
type DeduplicationService interface {
	// Name 返回服务名称（用于日志/监控）
	Name() string

	// Cluster 对文章做去重聚簇；existing 为上一轮已知簇（可为 nil）
	Cluster(ctx context.Context, articles []*Article, existing []*ArticleCluster) (*ClusterResult, error)
}

// ClusterResult 是去重聚簇的产出。
type ClusterResult struct {
	Clusters    []*ArticleCluster
	Unclustered []*Article

	// DuplicatesRemoved 是被判定为重复而移除的文章数。
	DuplicatesRemoved int
}
