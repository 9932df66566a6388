package core

// RankingResult 是单篇文章的排序输出。
// Explanation 仅用于展示/调试，排序决策不消费它。
type RankingResult struct {
	Article *Article

	// FinalScore 是加权+加成后的最终分数，范围 [0,1]。
	FinalScore float64

	// Signals 是参与打分的信号集合（缺失信号不在其中）。
	Signals SignalSet

	// Explanation 是由阈值穿越与加成规则生成的人类可读说明。
	Explanation []string

	// Confidence 是对本次打分的置信度估计，范围 [0,1]。
	Confidence float64
}
