package rank

import (
	"strings"
	"time"

	"github.com/rushteam/feedkit/core"
)

// computeSignals 为单篇文章计算全部可得信号。
// 不可计算的信号不写入集合（缺失即 undefined）。
func (e *Engine) computeSignals(
	a *core.Article,
	enr *core.EnrichmentResult,
	cluster *core.ArticleCluster,
	now time.Time,
) core.SignalSet {
	s := make(core.SignalSet, 16)

	// 热度信号始终可得
	s[core.SignalPopularity] = clamp01(a.PopularityScore)

	// 富化派生信号：仅在富化结果存在时计算
	if enr != nil {
		aux := enr.Signals
		s[core.SignalContentQuality] = clamp01(aux.ContentQuality)
		s[core.SignalReadability] = clamp01(aux.Readability)
		s[core.SignalSourceReputation] = clamp01(aux.SourceReputation)
		s[core.SignalSourceAuthority] = clamp01(aux.AuthorityScore)
		s[core.SignalVirality] = clamp01(aux.ViralityScore)

		if aux.WordCount > 0 {
			s[core.SignalWordCount] = wordCountScore(aux.WordCount)
		}
		if a.Author != "" {
			// 无独立作者数据源时以来源权威度为作者可信度代理
			s[core.SignalAuthorCredit] = clamp01(aux.AuthorityScore)
		}
	}

	// 时效性：突发标记（标题或富化判定）优先于富化的时效分
	breaking := isBreakingTitle(a.Title) || (enr != nil && enr.Signals.IsBreaking)
	switch {
	case breaking:
		s[core.SignalTimeliness] = 0.95
		s[core.SignalBreaking] = 1.0
	case enr != nil:
		s[core.SignalTimeliness] = clamp01(enr.Signals.TimelinessScore)
	}

	// 新鲜度：发布时间的固定阶梯函数
	if !a.PublishedAt.IsZero() {
		s[core.SignalRecency] = recencyScore(a.Age(now))
	}

	// 兴趣/话题相关性：大小写不敏感的子串包含
	if len(e.interests) > 0 {
		s[core.SignalUserInterest] = interestMatchScore(e.interests, a.Title, a.Summary, a.Tags)

		topics := a.Tags
		if enr != nil {
			topics = append(append([]string{}, enr.Topics...), a.Tags...)
		}
		s[core.SignalTopicRelevance] = topicRelevanceScore(e.interests, topics, a.Title)
	}

	// 点击概率：来源/话题偏好 + 时段活跃度（无任何历史时缺失）
	if p, ok := e.predictClick(a, enr, now); ok {
		s[core.SignalClickProb] = p
	}

	// 停留时长预估：字数档位 × 兴趣匹配
	if enr != nil && enr.Signals.WordCount > 0 {
		interest := s.Get(core.SignalUserInterest, 0.5)
		s[core.SignalDwellTime] = clamp01(0.3 + 0.4*wordCountScore(enr.Signals.WordCount) + 0.3*interest)
	}

	// 簇速率：归一化存储（velocity/10 截断），原始 >3 等价于 >0.3
	if cluster != nil {
		s[core.SignalClusterVelocity] = clamp01(cluster.Velocity / 10)
	}

	return s
}

// recencyScore 是文章年龄的固定阶梯函数。
func recencyScore(age time.Duration) float64 {
	switch {
	case age < time.Hour:
		return 1.0
	case age < 6*time.Hour:
		return 0.9
	case age < 12*time.Hour:
		return 0.8
	case age < 24*time.Hour:
		return 0.6
	case age < 48*time.Hour:
		return 0.4
	case age < 168*time.Hour:
		return 0.2
	default:
		return 0.1
	}
}

// wordCountScore 将字数映射到 0-1 档位：300-1500 词为最优区间。
func wordCountScore(wc int) float64 {
	switch {
	case wc < 100:
		return 0.3
	case wc < 300:
		return 0.6
	case wc <= 1500:
		return 1.0
	default:
		return 0.8
	}
}

func isBreakingTitle(title string) bool {
	return strings.Contains(strings.ToLower(title), "breaking")
}

// interestMatchScore 计算用户兴趣与文章文本的匹配度。
// 匹配规则仅为大小写不敏感的子串包含：完整兴趣串命中标题/标签 0.9、
// 命中摘要 0.8；多词兴趣的首字母缩写命中计 0.5；多个兴趣命中 +0.1（封顶 1.0）。
func interestMatchScore(interests []string, title, summary string, tags []string) float64 {
	lt := strings.ToLower(title)
	ls := strings.ToLower(summary)
	tagText := strings.ToLower(strings.Join(tags, " "))

	best := 0.0
	matched := 0
	for _, interest := range interests {
		li := strings.ToLower(strings.TrimSpace(interest))
		if li == "" {
			continue
		}
		score := 0.0
		switch {
		case strings.Contains(lt, li) || strings.Contains(tagText, li):
			score = 0.9
		case strings.Contains(ls, li):
			score = 0.8
		default:
			if acr := acronym(li); acr != "" &&
				(containsToken(lt, acr) || containsToken(ls, acr) || containsToken(tagText, acr)) {
				score = 0.5
			}
		}
		if score > 0 {
			matched++
			if score > best {
				best = score
			}
		}
	}
	if matched > 1 {
		best += 0.1
	}
	return clamp01(best)
}

// topicRelevanceScore 计算兴趣与话题列表的匹配度（子串包含，双向）。
func topicRelevanceScore(interests, topics []string, title string) float64 {
	lt := strings.ToLower(title)
	best := 0.0
	for _, interest := range interests {
		li := strings.ToLower(strings.TrimSpace(interest))
		if li == "" {
			continue
		}
		for _, topic := range topics {
			ltop := strings.ToLower(topic)
			if ltop == "" {
				continue
			}
			if strings.Contains(ltop, li) || strings.Contains(li, ltop) {
				if 0.9 > best {
					best = 0.9
				}
			}
		}
		if acr := acronym(li); acr != "" && containsToken(lt, acr) && best < 0.5 {
			best = 0.5
		}
	}
	return best
}

// acronym 返回多词短语的首字母缩写（单词短语返回空串）。
// "artificial intelligence" → "ai"
func acronym(phrase string) string {
	fields := strings.Fields(phrase)
	if len(fields) < 2 {
		return ""
	}
	var b strings.Builder
	for _, f := range fields {
		b.WriteByte(f[0])
	}
	return b.String()
}

// containsToken 判断文本的任一词内是否包含 tok 子串。
func containsToken(text, tok string) bool {
	if tok == "" {
		return false
	}
	for _, w := range strings.Fields(text) {
		if strings.Contains(w, tok) {
			return true
		}
	}
	return false
}

// predictClick 基于画像预估点击概率；画像无来源且无话题记录时返回 (0, false)。
func (e *Engine) predictClick(a *core.Article, enr *core.EnrichmentResult, now time.Time) (float64, bool) {
	if e.profile == nil {
		return 0, false
	}
	src, srcOK := e.profile.SourcePref(a.SourceName)

	topics := a.Tags
	if enr != nil {
		topics = append(append([]string{}, enr.Topics...), a.Tags...)
	}
	topic, topicOK := e.profile.TopicAffinity(topics)

	if !srcOK && !topicOK {
		return 0, false
	}
	hour := e.profile.HourOfDay[now.Hour()]
	return clamp01(0.2 + 0.4*src + 0.3*topic + 0.1*hour), true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
