// Package feedkit 是一个新闻处理管线工具包（Feed Kit）。
//
// 设计要点：
// - Pipeline-first: 文章经 7 个可选阶段顺序处理（抽取 → 安全 → 富化 → 去重 → 排序 → 摘要 → 通知）
// - Degrade-not-fail: 单阶段/单篇失败只降级不中断，Process 对外不抛任何异常
// - Labels-first: 降级/过滤/排序解释以标签全链路透传，支持 explain / 观测
// - 多信号排序: 17 维信号加权平均 + 乘法 boost，信号缺失按缺失处理而非补零
package feedkit

import (
	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
)

// 轻量 facade：便于用户直接 import "feedkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Collaborators = pipeline.Collaborators

type Article = core.Article
type PipelineConfig = core.PipelineConfig
type PipelineResult = core.PipelineResult
type RankingResult = core.RankingResult
type ClickEvent = core.ClickEvent

var (
	New                   = pipeline.New
	LoadConfig            = pipeline.LoadConfig
	DefaultPipelineConfig = core.DefaultPipelineConfig
	NewArticle            = core.NewArticle
)
