package core

import (
	"time"

	"github.com/rushteam/feedkit/pkg/utils"
)

// Article 是整条处理链路的统一承载结构：原始内容、打分结果、元信息、标签。
// Labels 用于解释与观测；FinalScore 由排序阶段写入，范围 [0,1]。
//
// 可变性约定：抽取阶段回写 Summary/Tags，排序阶段回写 FinalScore/AIRelevance，
// 其余字段在一次 Process 中视为只读。
type Article struct {
	ID          string
	Title       string
	Summary     string
	URL         string
	Author      string
	SourceName  string
	PublishedAt time.Time

	// PopularityScore 是来源侧的热度分（0-1），排序降级时作为兜底分数。
	PopularityScore float64

	// FinalScore 是排序阶段写入的最终分数，范围 [0,1]。
	FinalScore float64

	Tags     []string
	Metadata map[string]any

	// AIRelevance 是外部模型给出的相关性判断。
	// nil 表示该信号缺失（未调用或调用失败），而不是 0 分。
	AIRelevance *RelevanceJudgement

	// Labels 记录各阶段写入的可解释标签（降级、过滤原因、排序解释等）。
	Labels map[string]utils.Label
}

// RelevanceJudgement 是 AI 相关性评估结果。Score 为 0-100 原始分。
type RelevanceJudgement struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

func NewArticle(id string) *Article {
	return &Article{
		ID:       id,
		Metadata: make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (a *Article) PutLabel(key string, lbl utils.Label) {
	if a.Labels == nil {
		a.Labels = make(map[string]utils.Label)
	}
	if old, ok := a.Labels[key]; ok {
		a.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	a.Labels[key] = lbl
}

// Age 返回文章发布至今的时长，PublishedAt 为零值时返回 0。
func (a *Article) Age(now time.Time) time.Duration {
	if a.PublishedAt.IsZero() {
		return 0
	}
	return now.Sub(a.PublishedAt)
}

// ClickEvent 是用户点击反馈事件，驱动画像的在线更新。
type ClickEvent struct {
	ArticleID  string
	SourceName string
	Topics     []string
	ClickedAt  time.Time

	// DwellTime 是停留时长，0 表示未采集。
	DwellTime time.Duration
}
