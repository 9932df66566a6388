package rank

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pkg/dsl"
	"github.com/rushteam/feedkit/pkg/utils"
)

// Engine 是多信号排序引擎：加权求和 + 顺序乘法加成 + 置信度估计，
// 并通过点击反馈在线更新用户画像。
//
// 设计要点：
//   - 信号缺失即不计入分子分母（见 core.SignalSet 约定）
//   - AI 客户端显式注入，不使用包级单例
//   - 单篇失败替换为中性兜底结果，不中断整批
type Engine struct {
	weights   map[string]float64
	boosts    []BoostRule
	interests []string
	client    core.AIRelevanceClient
	gate      *dsl.Gate

	mu      sync.Mutex
	profile *core.UserProfile

	// now 仅用于测试注入，默认 time.Now。
	now func() time.Time
}

// Options 是排序引擎的构造参数。
type Options struct {
	// Interests 是用户兴趣列表（子串匹配）。
	Interests []string

	// Client 为 nil 时不做 AI 相关性评估。
	Client core.AIRelevanceClient

	// GateExpr 是 AI 评估准入的 CEL 表达式；空串表示对所有文章启用。
	GateExpr string

	// Weights 为 nil 时使用 DefaultWeights。
	Weights map[string]float64

	// Boosts 为 nil 时使用 DefaultBoostRules。
	Boosts []BoostRule

	// Profile 为 nil 时按 UserID 新建空画像。
	Profile *core.UserProfile
	UserID  string
}

// NewEngine 构造排序引擎；GateExpr 编译失败时返回错误。
func NewEngine(opts Options) (*Engine, error) {
	gate, err := dsl.Compile(opts.GateExpr)
	if err != nil {
		return nil, fmt.Errorf("ai gate: %w", err)
	}

	weights := opts.Weights
	if weights == nil {
		weights = DefaultWeights()
	}
	boosts := opts.Boosts
	if boosts == nil {
		boosts = DefaultBoostRules()
	}
	profile := opts.Profile
	if profile == nil {
		profile = core.NewUserProfile(opts.UserID)
	}

	return &Engine{
		weights:   weights,
		boosts:    boosts,
		interests: opts.Interests,
		client:    opts.Client,
		gate:      gate,
		profile:   profile,
		now:       time.Now,
	}, nil
}

// DefaultWeights 返回各信号的默认权重。
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		core.SignalContentQuality:   1.2,
		core.SignalReadability:      0.8,
		core.SignalWordCount:        0.6,
		core.SignalSourceReputation: 1.0,
		core.SignalAuthorCredit:     0.7,
		core.SignalPopularity:       1.0,
		core.SignalVirality:         0.9,
		core.SignalTopicRelevance:   1.3,
		core.SignalUserInterest:     1.5,
		core.SignalRecency:          1.2,
		core.SignalTimeliness:       1.0,
		core.SignalClickProb:        1.1,
		core.SignalDwellTime:        0.8,
		core.SignalAIRelevance:      1.5,
		core.SignalClusterVelocity:  0.6,
		core.SignalBreaking:         0.7,
		core.SignalSourceAuthority:  0.8,
	}
}

// RankArticles 为每篇文章产出一个 RankingResult，
// 按 FinalScore 降序、相同分数保持输入顺序（稳定排序）。
// enrichments 以文章 ID 为 key；无富化结果的文章只用基础信号打分。
func (e *Engine) RankArticles(
	ctx context.Context,
	articles []*core.Article,
	enrichments map[string]*core.EnrichmentResult,
	clusters []*core.ArticleCluster,
) []core.RankingResult {
	now := e.now()
	clusterOf := indexClusters(clusters)

	results := make([]core.RankingResult, 0, len(articles))
	for _, a := range articles {
		if a == nil {
			continue
		}
		results = append(results, e.scoreArticle(ctx, a, enrichments[a.ID], clusterOf[a.ID], now))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
	return results
}

// scoreArticle 对单篇文章打分。任何内部异常被替换为中性兜底结果，
// 一篇坏文章不会中断整批。
func (e *Engine) scoreArticle(
	ctx context.Context,
	a *core.Article,
	enr *core.EnrichmentResult,
	cluster *core.ArticleCluster,
	now time.Time,
) (result core.RankingResult) {
	defer func() {
		if r := recover(); r != nil {
			result = e.fallbackResult(a)
		}
	}()

	signals := e.computeSignals(a, enr, cluster, now)
	e.enhanceWithAI(ctx, a, signals)

	score := weightedMean(signals, e.weights)

	userCtx := &core.UserContext{UserID: e.profile.UserID, Interests: e.interests}
	score, boostNotes := applyBoosts(score, e.boosts, a, signals, userCtx)

	explanation := explain(signals)
	explanation = append(explanation, boostNotes...)

	a.FinalScore = score
	a.PutLabel("rank_score", utils.Label{Value: fmt.Sprintf("%.3f", score), Source: "rank"})

	return core.RankingResult{
		Article:     a,
		FinalScore:  score,
		Signals:     signals,
		Explanation: explanation,
		Confidence:  e.confidence(signals),
	}
}

// enhanceWithAI 填充 AI 相关性信号：优先使用已有判断；
// 配置了客户端且通过准入门控时发起一次评估，失败则信号保持缺失。
func (e *Engine) enhanceWithAI(ctx context.Context, a *core.Article, signals core.SignalSet) {
	if a.AIRelevance != nil {
		signals[core.SignalAIRelevance] = clamp01(a.AIRelevance.Score / 100)
		return
	}
	if e.client == nil {
		return
	}

	userCtx := &core.UserContext{UserID: e.profile.UserID, Interests: e.interests}
	ok, err := e.gate.Eval(a, signals, userCtx)
	if err != nil || !ok {
		return
	}

	text := a.Summary
	if text == "" {
		text = a.Title
	}
	judgement, err := e.client.Analyze(ctx, a.Title, text, e.interests)
	if err != nil || judgement == nil {
		// 评估失败：信号缺失，流程继续
		return
	}
	a.AIRelevance = judgement
	signals[core.SignalAIRelevance] = clamp01(judgement.Score / 100)
}

// weightedMean 只对存在的信号做加权平均：
// 缺失信号既不计入分子也不计入分母；没有任何信号时返回 0.5。
func weightedMean(signals core.SignalSet, weights map[string]float64) float64 {
	var sum, wsum float64
	for name, v := range signals {
		w, ok := weights[name]
		if !ok {
			continue
		}
		sum += w * v
		wsum += w
	}
	if wsum == 0 {
		return 0.5
	}
	return clamp01(sum / wsum)
}

// confidence 采用"基准+增量"模型：固定从 0.5 起步，按条件累加，封顶 1.0。
// 无任何条件命中时自然得到 0.5。
func (e *Engine) confidence(signals core.SignalSet) float64 {
	c := 0.5
	if signals.Has(core.SignalAIRelevance) {
		c += 0.3
	}
	if e.profile.ClickCount() > 10 {
		c += 0.2
	}
	if signals.Count() > 8 {
		c += 0.2
	}
	if signals.Get(core.SignalContentQuality, 0) > 0.7 {
		c += 0.1
	}
	return clamp01(c)
}

// explain 从阈值穿越生成展示用说明，排序决策不消费它。
func explain(s core.SignalSet) []string {
	var out []string
	if s.Get(core.SignalRecency, 0) >= 0.9 {
		out = append(out, "published very recently")
	}
	if s.Get(core.SignalTimeliness, 0) > 0.9 {
		out = append(out, "breaking or highly timely story")
	}
	if s.Get(core.SignalUserInterest, 0) > 0.8 {
		out = append(out, "strong match with your interests")
	}
	if s.Get(core.SignalVirality, 0) > 0.8 {
		out = append(out, "trending across sources")
	}
	if v, ok := s[core.SignalAIRelevance]; ok {
		out = append(out, fmt.Sprintf("AI relevance %.0f/100", v*100))
	}
	if s.Has(core.SignalContentQuality) && s[core.SignalContentQuality] < 0.3 {
		out = append(out, "low content quality")
	}
	if s.Has(core.SignalSourceReputation) && s[core.SignalSourceReputation] < 0.4 {
		out = append(out, "low reputation source")
	}
	return out
}

// fallbackResult 是单篇打分失败时的中性兜底：
// 分数退化为热度分（缺失时 0.5），置信度 0.3。
func (e *Engine) fallbackResult(a *core.Article) core.RankingResult {
	score := a.PopularityScore
	if score <= 0 {
		score = 0.5
	}
	score = clamp01(score)
	a.FinalScore = score
	a.PutLabel("rank_fallback", utils.Label{Value: "neutral", Source: "rank"})
	return core.RankingResult{
		Article:    a,
		FinalScore: score,
		Signals:    core.SignalSet{core.SignalPopularity: clamp01(a.PopularityScore)},
		Confidence: 0.3,
	}
}

func indexClusters(clusters []*core.ArticleCluster) map[string]*core.ArticleCluster {
	if len(clusters) == 0 {
		return nil
	}
	out := make(map[string]*core.ArticleCluster)
	for _, c := range clusters {
		if c == nil {
			continue
		}
		for _, m := range c.Members {
			if m != nil {
				out[m.ID] = c
			}
		}
	}
	return out
}
