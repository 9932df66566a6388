package core

// SignalSet 是排序信号集合：key 为信号名，value 为归一化分数（约 0-1）。
// 缺失的 key 即表示该信号不可计算——加权求和时既不计入分子也不计入分母。
// 这一约定与可选指针字段等价，但更便于按名遍历与解释。
type SignalSet map[string]float64

// 信号名常量。基础信号 13 个，外加 AI / 簇 / 突发 / 权威度等可选信号。
const (
	SignalContentQuality   = "content_quality"
	SignalReadability      = "readability"
	SignalWordCount        = "word_count"
	SignalSourceReputation = "source_reputation"
	SignalAuthorCredit     = "author_credibility"
	SignalPopularity       = "popularity"
	SignalVirality         = "virality"
	SignalTopicRelevance   = "topic_relevance"
	SignalUserInterest     = "user_interest"
	SignalRecency          = "recency"
	SignalTimeliness       = "timeliness"
	SignalClickProb        = "click_probability"
	SignalDwellTime        = "dwell_time"

	// SignalAIRelevance 来自外部模型（0-100 归一化为 0-1）。
	SignalAIRelevance = "ai_relevance"

	// SignalClusterVelocity 存储归一化速率 velocity/10（截断到 1）。
	// 原始速率 >3 等价于归一化值 >0.3。
	SignalClusterVelocity = "cluster_velocity"

	SignalBreaking        = "is_breaking"
	SignalSourceAuthority = "source_authority"
)

// Has 判断信号是否存在。
func (s SignalSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Get 返回信号值；缺失时返回给定默认值。
func (s SignalSet) Get(name string, def float64) float64 {
	if v, ok := s[name]; ok {
		return v
	}
	return def
}

// Count 返回已存在的信号数量。
func (s SignalSet) Count() int { return len(s) }

// Clone 返回信号集合的浅拷贝。
func (s SignalSet) Clone() SignalSet {
	if s == nil {
		return nil
	}
	out := make(SignalSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
