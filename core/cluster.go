package core

// ArticleCluster 是一组近似重复/同话题的文章，由去重服务产出，
// 排序与通知阶段只读消费。
type ArticleCluster struct {
	Topic string

	// Members 包含簇内全部文章（含代表文章）。
	Members []*Article

	// Representative 是簇的代表文章（通常为最早或质量最高的一篇）。
	Representative *Article

	// Velocity 是簇的增长速率（单位时间新增成员数），>3 视为爆发话题。
	Velocity float64
}

// Contains 判断文章是否属于该簇。
func (c *ArticleCluster) Contains(articleID string) bool {
	for _, m := range c.Members {
		if m != nil && m.ID == articleID {
			return true
		}
	}
	return false
}
