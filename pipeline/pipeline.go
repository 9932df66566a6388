// Package pipeline 实现新闻处理管线的阶段编排：
// 7 个可选阶段严格顺序执行，单阶段/单篇失败只降级不中断，
// 耗时与错误统一聚合，运行结束后以 fire-and-forget 方式上报指标。
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rushteam/feedkit/ai"
	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/rank"
)

// Collaborators 汇集管线依赖的外部协作者。
// 除 Relevance / Monitor / Logger 外，缺失的协作者等价于关闭对应阶段。
type Collaborators struct {
	Extractor  core.ContentExtractor
	Safety     core.SafetyEngine
	Enricher   core.EnrichmentService
	Dedup      core.DeduplicationService
	Summarizer core.SummarizationEngine
	Notifier   core.NotificationProcessor

	// Relevance 为 nil 且配置了 GeminiAPIKey 时，由管线自动构造 ai.GeminiClient。
	Relevance core.AIRelevanceClient

	Monitor core.MonitoringSink
	Logger  *slog.Logger
}

// Pipeline 是阶段编排器。配置与引擎受锁保护；
// 一次 Process 使用构造时的配置快照，运行中的配置更新对本次运行不可见。
type Pipeline struct {
	mu     sync.Mutex
	cfg    core.PipelineConfig
	deps   Collaborators
	ranker *rank.Engine
	errs   []*core.StageError
	stats  core.PipelineStats
	logger *slog.Logger
}

// New 构造管线并初始化排序/AI 引擎。
func New(cfg core.PipelineConfig, deps Collaborators) (*Pipeline, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		cfg:    cfg,
		deps:   deps,
		logger: logger.With("component", "pipeline"),
	}
	if err := p.buildEngines(nil); err != nil {
		return nil, err
	}
	return p, nil
}

// buildEngines 重建排序引擎（与其持有的 AI 客户端）。
// previous 非 nil 时沿用旧画像，点击反馈不因重建丢失。
func (p *Pipeline) buildEngines(previous *core.UserProfile) error {
	client := p.deps.Relevance
	if client == nil && p.cfg.GeminiAPIKey != "" {
		client = ai.NewGeminiClient(p.cfg.GeminiAPIKey)
	}
	ranker, err := rank.NewEngine(rank.Options{
		Interests: p.cfg.UserInterests,
		Client:    client,
		GateExpr:  p.cfg.AIGateExpr,
		Profile:   previous,
		UserID:    p.cfg.UserID,
	})
	if err != nil {
		return fmt.Errorf("build ranking engine: %w", err)
	}
	p.ranker = ranker
	return nil
}

// Process 执行完整管线并返回结果。保证不对外抛出任何异常：
// 逃逸出阶段守卫的 panic 被捕获为 stage=pipeline 的不可恢复错误，
// 返回已完成部分的结果并盖上耗时戳。
func (p *Pipeline) Process(ctx context.Context, articles []*core.Article) (result *core.PipelineResult) {
	start := time.Now()

	p.mu.Lock()
	cfg := p.cfg
	ranker := p.ranker
	p.mu.Unlock()

	r := newRun(cfg, len(articles))
	r.userCtx = &core.UserContext{
		UserID:    cfg.UserID,
		Interests: cfg.UserInterests,
		Profile:   ranker.Profile(),
	}
	result = r.res

	defer func() {
		if rec := recover(); rec != nil {
			r.record(&core.StageError{
				Stage:       core.StagePipeline,
				Err:         fmt.Errorf("panic: %v", rec),
				Recoverable: false,
			})
			p.logger.Error("pipeline run aborted, returning partial result", "panic", rec)
		}
		p.finish(ctx, r, start)
	}()

	working := compact(articles)
	r.res.Articles = working

	working = p.runExtraction(ctx, r, working)
	r.res.Articles = working

	working = p.runSafety(ctx, r, working)
	r.res.Articles = working

	p.runEnrichment(ctx, r, working)

	working = p.runDedup(ctx, r, working)
	r.res.Articles = working

	working = p.runRanking(ctx, r, ranker, working)
	r.res.Articles = working

	p.runSummarization(ctx, r, working)
	p.runNotifications(ctx, r, working)

	return result
}

// finish 盖上计数/耗时戳，合并本次运行的错误，按需上报指标。
func (p *Pipeline) finish(ctx context.Context, r *run, start time.Time) {
	res := r.res
	res.ProcessingTime = time.Since(start)
	res.OutputCount = len(res.Articles)
	res.ErrorCount = r.errorCount()

	if r.cfg.EnableMetrics && p.deps.Monitor != nil {
		m := buildMetrics(res)
		// fire-and-forget：上报不阻塞也不影响结果
		go p.deps.Monitor.Record(context.WithoutCancel(ctx), m)
	}

	p.mu.Lock()
	p.errs = append(p.errs, r.takeErrors()...)
	p.stats.Runs++
	p.stats.ArticlesIn += res.InputCount
	p.stats.ArticlesOut += res.OutputCount
	p.stats.TotalErrors += res.ErrorCount
	p.stats.TotalDuration += res.ProcessingTime
	p.stats.LastRun = time.Now()
	p.stats.LastInputCount = res.InputCount
	p.stats.LastOutputCount = res.OutputCount
	p.stats.LastErrorCount = res.ErrorCount
	p.stats.LastProcessingDur = res.ProcessingTime
	p.mu.Unlock()
}

func buildMetrics(res *core.PipelineResult) core.PipelineMetrics {
	m := core.PipelineMetrics{
		ResponseTime:      res.ProcessingTime,
		ArticlesProcessed: res.OutputCount,
	}
	if secs := res.ProcessingTime.Seconds(); secs > 0 {
		m.Throughput = float64(res.OutputCount) / secs
	}
	if res.InputCount > 0 {
		m.ErrorRate = float64(res.ErrorCount) / float64(res.InputCount)
	}
	if len(res.Rankings) > 0 {
		var sum float64
		for _, rk := range res.Rankings {
			sum += rk.FinalScore
		}
		m.AverageRelevanceScore = sum / float64(len(res.Rankings))
	}
	return m
}

// UpdateConfig 整体合并配置；GeminiAPIKey 或 UserInterests 变更时
// 重建排序/AI 引擎（沿用已学到的画像）。
func (p *Pipeline) UpdateConfig(patch core.ConfigPatch) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cfg, rebuild := patch.Apply(p.cfg)
	p.cfg = cfg
	if !rebuild {
		return nil
	}
	return p.buildEngines(p.ranker.Profile())
}

// Config 返回当前配置快照。
func (p *Pipeline) Config() core.PipelineConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// RecordClick 将点击反馈交给排序引擎做画像在线更新。
func (p *Pipeline) RecordClick(ev core.ClickEvent) {
	p.mu.Lock()
	ranker := p.ranker
	p.mu.Unlock()
	ranker.UpdateUserProfile(ev)
}

// Statistics 返回跨运行的累计统计。
func (p *Pipeline) Statistics() core.PipelineStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Errors 返回累计错误的副本。
func (p *Pipeline) Errors() []*core.StageError {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*core.StageError, len(p.errs))
	copy(out, p.errs)
	return out
}

// ClearErrors 清空累计错误。
func (p *Pipeline) ClearErrors() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs = nil
}

// HealthCheck 是同步的非网络检查：确认各启用阶段的协作者已就位。
func (p *Pipeline) HealthCheck() core.HealthStatus {
	p.mu.Lock()
	cfg := p.cfg
	ranker := p.ranker
	p.mu.Unlock()

	details := make(map[string]string)
	missing := 0

	check := func(stage core.Stage, enabled bool, present bool) {
		switch {
		case !enabled:
			details[string(stage)] = "disabled"
		case present:
			details[string(stage)] = "ok"
		default:
			details[string(stage)] = "missing collaborator"
			missing++
		}
	}
	check(core.StageExtraction, cfg.EnableExtraction, p.deps.Extractor != nil)
	check(core.StageSafety, cfg.EnableSafety, p.deps.Safety != nil)
	check(core.StageEnrichment, cfg.EnableEnrichment, p.deps.Enricher != nil)
	check(core.StageDeduplication, cfg.EnableDeduplication, p.deps.Dedup != nil)
	check(core.StageRanking, cfg.EnableRanking, ranker != nil)
	check(core.StageSummarization, cfg.EnableSummarization, p.deps.Summarizer != nil)
	check(core.StageNotification, cfg.EnableNotifications, p.deps.Notifier != nil)

	status := "healthy"
	switch {
	case ranker == nil:
		status = "unhealthy"
	case missing > 0:
		status = "degraded"
	}
	return core.HealthStatus{Status: status, Details: details}
}

func compact(articles []*core.Article) []*core.Article {
	out := make([]*core.Article, 0, len(articles))
	for _, a := range articles {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}
