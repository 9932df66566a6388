package rank

import (
	"fmt"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pkg/dsl"
)

// BoostRule 是排序后的乘法加成/惩罚规则。
// 规则按序应用、可叠乘（顺序相关），最终分数截断到 [0,1]。
// When 与 Gate 二选一：Gate 为 CEL 表达式规则（策略可配置）。
type BoostRule struct {
	Name       string
	Multiplier float64
	When       func(core.SignalSet) bool
	Gate       *dsl.Gate
}

// DefaultBoostRules 返回内置的四条加成/惩罚规则。
func DefaultBoostRules() []BoostRule {
	return []BoostRule{
		{
			Name:       "breaking_news",
			Multiplier: 1.20,
			When: func(s core.SignalSet) bool {
				return s.Get(core.SignalTimeliness, 0) > 0.9 && s.Get(core.SignalRecency, 0) > 0.8
			},
		},
		{
			Name:       "viral_cluster",
			Multiplier: 1.15,
			When: func(s core.SignalSet) bool {
				// cluster_velocity 为归一化速率，原始 velocity>3 即 >0.3
				return s.Get(core.SignalVirality, 0) > 0.8 && s.Get(core.SignalClusterVelocity, 0) > 0.3
			},
		},
		{
			Name:       "interest_click",
			Multiplier: 1.10,
			When: func(s core.SignalSet) bool {
				return s.Get(core.SignalUserInterest, 0) > 0.8 && s.Get(core.SignalClickProb, 0) > 0.7
			},
		},
		{
			Name:       "low_quality",
			Multiplier: 0.80,
			When: func(s core.SignalSet) bool {
				// 任一条件成立即惩罚；信号缺失时不触发
				lowQuality := s.Has(core.SignalContentQuality) && s[core.SignalContentQuality] < 0.3
				lowRep := s.Has(core.SignalSourceReputation) && s[core.SignalSourceReputation] < 0.4
				return lowQuality || lowRep
			},
		},
	}
}

// applyBoosts 按序应用规则并返回截断后的分数与命中说明。
func applyBoosts(
	score float64,
	rules []BoostRule,
	article *core.Article,
	signals core.SignalSet,
	user *core.UserContext,
) (float64, []string) {
	var applied []string
	for _, r := range rules {
		hit := false
		switch {
		case r.When != nil:
			hit = r.When(signals)
		case r.Gate != nil:
			ok, err := r.Gate.Eval(article, signals, user)
			// 表达式求值失败视为未命中，规则不应影响打分可用性
			hit = err == nil && ok
		}
		if !hit {
			continue
		}
		score *= r.Multiplier
		applied = append(applied, fmt.Sprintf("boost %s x%.2f", r.Name, r.Multiplier))
	}
	return clamp01(score), applied
}
