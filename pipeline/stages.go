package pipeline

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pkg/utils"
	"github.com/rushteam/feedkit/rank"
)

// run 是一次 Process 调用的私有状态：配置快照、结果、
// 中间产物（抽取内容/富化结果）以及并发安全的错误收集器。
type run struct {
	cfg     core.PipelineConfig
	res     *core.PipelineResult
	userCtx *core.UserContext

	mu          sync.Mutex
	errs        []*core.StageError
	contents    map[string]*core.ExtractedContent
	enrichments map[string]*core.EnrichmentResult
}

func newRun(cfg core.PipelineConfig, inputCount int) *run {
	return &run{
		cfg:         cfg,
		res:         core.NewPipelineResult(inputCount),
		contents:    make(map[string]*core.ExtractedContent),
		enrichments: make(map[string]*core.EnrichmentResult),
	}
}

func (r *run) record(e *core.StageError) {
	if e == nil {
		return
	}
	r.mu.Lock()
	r.errs = append(r.errs, e)
	r.mu.Unlock()
}

func (r *run) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func (r *run) takeErrors() []*core.StageError {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.errs
	r.errs = nil
	return out
}

func (r *run) setContent(id string, c *core.ExtractedContent) {
	r.mu.Lock()
	r.contents[id] = c
	r.mu.Unlock()
}

func (r *run) content(id string) *core.ExtractedContent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.contents[id]
}

// timeStage 记录阶段墙钟耗时，用法：defer r.timeStage(stage)()。
func (r *run) timeStage(stage core.Stage) func() {
	start := time.Now()
	return func() {
		r.res.StageTimings[stage] = time.Since(start)
	}
}

// --- 阶段 1：内容抽取 ---
//
// 单篇失败降级为标题兜底内容（记录错误 + degraded 标签），不淘汰文章。
// 抽取产出的干净摘要/关键词回填到文章，供后续阶段使用。
func (p *Pipeline) runExtraction(ctx context.Context, r *run, working []*core.Article) []*core.Article {
	if !r.cfg.EnableExtraction || p.deps.Extractor == nil || len(working) == 0 {
		return working
	}
	defer r.timeStage(core.StageExtraction)()

	type extractOut struct {
		article *core.Article
		outcome core.ExtractionOutcome
	}

	tasks := make([]Task[extractOut], len(working))
	for i, a := range working {
		i, a := i, a
		tasks[i] = Task[extractOut]{
			Index:     i,
			ArticleID: a.ID,
			Run: func(tctx context.Context) (extractOut, error) {
				content, err := p.deps.Extractor.Extract(tctx, a)
				if err != nil {
					r.record(core.NewStageError(core.StageExtraction, a.ID, err))
					p.logger.Warn("extraction degraded to title fallback", "article", a.ID, "err", err)
					return extractOut{article: a, outcome: core.DegradedExtraction(a)}, nil
				}
				return extractOut{article: a, outcome: core.ExtractionOutcome{Content: content}}, nil
			},
		}
	}

	results := runStage(ctx, core.StageExtraction, r.cfg, tasks, r.record)
	for _, item := range results {
		a := item.Value.article
		c := item.Value.outcome.Content
		if c == nil {
			continue
		}
		r.setContent(a.ID, c)
		if item.Value.outcome.Degraded {
			a.PutLabel("extraction", utils.Label{Value: "degraded", Source: "extraction"})
		}
		if c.CleanSummary != "" {
			a.Summary = c.CleanSummary
		}
		a.Tags = mergeTags(a.Tags, c.Keywords)
	}
	// 抽取只增补信息，不淘汰文章（超时批也不例外）
	return working
}

// --- 阶段 2：安全检查 ---
//
// 仅 block 淘汰；检查失败 fail-open 放行并记录。
// 超时批没有结果，同样视为放行。
func (p *Pipeline) runSafety(ctx context.Context, r *run, working []*core.Article) []*core.Article {
	if !r.cfg.EnableSafety || p.deps.Safety == nil || len(working) == 0 {
		return working
	}
	defer r.timeStage(core.StageSafety)()

	type safetyOut struct {
		article *core.Article
		result  *core.SafetyResult
	}

	tasks := make([]Task[safetyOut], len(working))
	for i, a := range working {
		i, a := i, a
		tasks[i] = Task[safetyOut]{
			Index:     i,
			ArticleID: a.ID,
			Run: func(tctx context.Context) (safetyOut, error) {
				res, err := p.deps.Safety.Check(tctx, a, r.content(a.ID))
				if err != nil {
					r.record(core.NewStageError(core.StageSafety, a.ID, err))
					p.logger.Warn("safety check failed, allowing (fail-open)", "article", a.ID, "err", err)
					res = &core.SafetyResult{
						Recommendation: core.SafetyAllow,
						SafetyScore:    0.5,
						Flags:          []string{"check_failed"},
					}
				}
				return safetyOut{article: a, result: res}, nil
			},
		}
	}

	results := runStage(ctx, core.StageSafety, r.cfg, tasks, r.record)
	byID := make(map[string]*core.SafetyResult, len(results))
	for _, item := range results {
		byID[item.Value.article.ID] = item.Value.result
		r.res.SafetyResults[item.Value.article.ID] = item.Value.result
	}

	kept := make([]*core.Article, 0, len(working))
	for _, a := range working {
		if byID[a.ID].Allowed() {
			kept = append(kept, a)
			continue
		}
		a.PutLabel("safety", utils.Label{Value: "blocked", Source: "safety"})
	}
	return kept
}

// --- 阶段 3：富化 ---
//
// 单篇失败降级为全 0.5 中性信号。超时批无富化结果，
// 排序阶段对无结果文章只用基础信号打分。
func (p *Pipeline) runEnrichment(ctx context.Context, r *run, working []*core.Article) {
	if !r.cfg.EnableEnrichment || p.deps.Enricher == nil || len(working) == 0 {
		return
	}
	defer r.timeStage(core.StageEnrichment)()

	type enrichOut struct {
		articleID string
		result    *core.EnrichmentResult
	}

	tasks := make([]Task[enrichOut], len(working))
	for i, a := range working {
		i, a := i, a
		tasks[i] = Task[enrichOut]{
			Index:     i,
			ArticleID: a.ID,
			Run: func(tctx context.Context) (enrichOut, error) {
				enr, err := p.deps.Enricher.Enrich(tctx, a, r.content(a.ID), r.userCtx)
				if err != nil {
					r.record(core.NewStageError(core.StageEnrichment, a.ID, err))
					p.logger.Warn("enrichment degraded to neutral signals", "article", a.ID, "err", err)
					enr = core.NeutralEnrichment()
				}
				return enrichOut{articleID: a.ID, result: enr}, nil
			},
		}
	}

	results := runStage(ctx, core.StageEnrichment, r.cfg, tasks, r.record)
	r.mu.Lock()
	for _, item := range results {
		r.enrichments[item.Value.articleID] = item.Value.result
	}
	r.mu.Unlock()
}

// --- 阶段 4：去重聚簇 ---
//
// 整体一次调用。失败时所有文章视为未聚簇原样保留，去重数为 0。
// 成功时工作集重建为「全部簇成员 + 未聚簇文章」，重复项即此处被移除。
func (p *Pipeline) runDedup(ctx context.Context, r *run, working []*core.Article) []*core.Article {
	if !r.cfg.EnableDeduplication || p.deps.Dedup == nil || len(working) == 0 {
		return working
	}
	defer r.timeStage(core.StageDeduplication)()

	dctx, cancel := context.WithTimeout(ctx, stageBudget(r.cfg))
	defer cancel()

	cr, err := p.deps.Dedup.Cluster(dctx, working, nil)
	if err != nil || cr == nil {
		if err != nil {
			r.record(core.NewStageError(core.StageDeduplication, "", err))
			p.logger.Warn("deduplication failed, keeping all articles", "err", err)
		}
		return working
	}

	r.res.Clusters = cr.Clusters
	r.res.DuplicatesRemoved = cr.DuplicatesRemoved

	out := make([]*core.Article, 0, len(working))
	for _, c := range cr.Clusters {
		out = append(out, c.Members...)
	}
	out = append(out, cr.Unclustered...)
	return out
}

// --- 阶段 5：排序 ---
//
// 引擎内部已有单篇兜底；此处再加阶段级守卫：
// 引擎整体失效时按热度降序生成低置信度兜底排名。
func (p *Pipeline) runRanking(ctx context.Context, r *run, ranker *rank.Engine, working []*core.Article) []*core.Article {
	if !r.cfg.EnableRanking || ranker == nil || len(working) == 0 {
		return working
	}
	defer r.timeStage(core.StageRanking)()

	rctx, cancel := context.WithTimeout(ctx, stageBudget(r.cfg))
	defer cancel()

	r.mu.Lock()
	enrichments := r.enrichments
	r.mu.Unlock()

	rankings, ok := safeRank(rctx, ranker, working, enrichments, r.res.Clusters)
	if !ok {
		r.record(&core.StageError{
			Stage:       core.StageRanking,
			Err:         core.ErrRankingUnavailable,
			Recoverable: true,
		})
		p.logger.Warn("ranking engine failed, using popularity order")
		rankings = fallbackRankings(working)
	}

	r.res.Rankings = rankings
	ordered := make([]*core.Article, 0, len(rankings))
	for _, rk := range rankings {
		ordered = append(ordered, rk.Article)
	}
	return ordered
}

func safeRank(
	ctx context.Context,
	ranker *rank.Engine,
	articles []*core.Article,
	enrichments map[string]*core.EnrichmentResult,
	clusters []*core.ArticleCluster,
) (rankings []core.RankingResult, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			rankings, ok = nil, false
		}
	}()
	return ranker.RankArticles(ctx, articles, enrichments, clusters), true
}

// fallbackRankings 按热度降序生成兜底排名，置信度统一 0.3。
func fallbackRankings(articles []*core.Article) []core.RankingResult {
	out := make([]core.RankingResult, 0, len(articles))
	for _, a := range articles {
		score := a.PopularityScore
		if score <= 0 {
			score = 0.5
		}
		if score > 1 {
			score = 1
		}
		a.FinalScore = score
		out = append(out, core.RankingResult{
			Article:     a,
			FinalScore:  score,
			Signals:     core.SignalSet{core.SignalPopularity: score},
			Explanation: []string{"fallback: popularity order"},
			Confidence:  0.3,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FinalScore > out[j].FinalScore })
	return out
}

// --- 阶段 6：摘要 ---
//
// 只对排序后的 top min(10, N) 调用；单篇失败仅缺失该条摘要。
func (p *Pipeline) runSummarization(ctx context.Context, r *run, working []*core.Article) {
	if !r.cfg.EnableSummarization || p.deps.Summarizer == nil || len(working) == 0 {
		return
	}
	defer r.timeStage(core.StageSummarization)()

	top := len(working)
	if top > 10 {
		top = 10
	}

	type summaryOut struct {
		articleID string
		summary   *core.SummaryResult
	}

	tasks := make([]Task[summaryOut], top)
	for i := 0; i < top; i++ {
		i, a := i, working[i]
		var entities []string
		if enr := r.enrichmentOf(a.ID); enr != nil {
			entities = enr.Entities
		}
		tasks[i] = Task[summaryOut]{
			Index:     i,
			ArticleID: a.ID,
			Run: func(tctx context.Context) (summaryOut, error) {
				sum, err := p.deps.Summarizer.Summarize(tctx, a, r.content(a.ID), entities)
				if err != nil {
					return summaryOut{}, err // 执行器记录错误，该条摘要缺失
				}
				return summaryOut{articleID: a.ID, summary: sum}, nil
			},
		}
	}

	results := runStage(ctx, core.StageSummarization, r.cfg, tasks, r.record)
	for _, item := range results {
		if item.Value.summary != nil {
			r.res.Summaries[item.Value.articleID] = item.Value.summary
		}
	}
}

// --- 阶段 7：通知 ---
//
// 整体一次调用，失败降级为空通知列表。
func (p *Pipeline) runNotifications(ctx context.Context, r *run, working []*core.Article) {
	if !r.cfg.EnableNotifications || p.deps.Notifier == nil {
		return
	}
	defer r.timeStage(core.StageNotification)()

	nctx, cancel := context.WithTimeout(ctx, stageBudget(r.cfg))
	defer cancel()

	notifications, err := p.deps.Notifier.Process(nctx, working, r.res.Clusters, r.res.Rankings)
	if err != nil {
		r.record(core.NewStageError(core.StageNotification, "", err))
		p.logger.Warn("notification generation failed, returning none", "err", err)
		notifications = nil
	}
	r.res.Notifications = notifications
}

func (r *run) enrichmentOf(id string) *core.EnrichmentResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enrichments[id]
}

func stageBudget(cfg core.PipelineConfig) time.Duration {
	if cfg.MaxProcessingTime > 0 {
		return cfg.MaxProcessingTime
	}
	return 30 * time.Second
}

// mergeTags 追加去重后的关键词（大小写不敏感判重，保留原有顺序）。
func mergeTags(tags, keywords []string) []string {
	if len(keywords) == 0 {
		return tags
	}
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		seen[strings.ToLower(t)] = struct{}{}
	}
	for _, k := range keywords {
		if k == "" {
			continue
		}
		lk := strings.ToLower(k)
		if _, ok := seen[lk]; ok {
			continue
		}
		seen[lk] = struct{}{}
		tags = append(tags, k)
	}
	return tags
}
