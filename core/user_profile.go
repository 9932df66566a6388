package core

import (
	"strings"
	"time"
)

// DefaultEMAAlpha 是画像在线更新的指数滑动平均系数。
const DefaultEMAAlpha = 0.1

// MaxClickHistory 是点击历史的 FIFO 上限。
const MaxClickHistory = 1000

// UserProfile 是用户画像：点击反馈驱动的偏好信号源。
//
// 维度          作用
// 来源偏好      click_probability 信号
// 话题偏好      click_probability / dwell_time 信号
// 时段偏好      按小时桶微调
// 点击历史      置信度估计（>10 次点击 +0.2）
type UserProfile struct {
	UserID string `json:"user_id"`

	// SourcePrefs / TopicPrefs 为 0-1 偏好权重，EMA 在线更新。
	SourcePrefs map[string]float64 `json:"source_prefs"`
	TopicPrefs  map[string]float64 `json:"topic_prefs"`

	// HourOfDay 是 24 个时段桶的活跃度，点击命中桶 +0.1（截断到 1）。
	HourOfDay [24]float64 `json:"hour_of_day"`

	// Clicks 是点击历史，FIFO 截断到 MaxClickHistory。
	Clicks []ClickEvent `json:"clicks"`

	UpdateTime time.Time `json:"update_time"`
}

// NewUserProfile 创建一个新的用户画像。
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:      userID,
		SourcePrefs: make(map[string]float64),
		TopicPrefs:  make(map[string]float64),
		UpdateTime:  time.Now(),
	}
}

// RecordClick 用一次点击事件更新画像：
// 来源/话题偏好按 EMA（新值 1.0）上调，时段桶 +0.1，历史 FIFO 截断。
func (p *UserProfile) RecordClick(ev ClickEvent, alpha float64) {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultEMAAlpha
	}
	if p.SourcePrefs == nil {
		p.SourcePrefs = make(map[string]float64)
	}
	if p.TopicPrefs == nil {
		p.TopicPrefs = make(map[string]float64)
	}

	if ev.SourceName != "" {
		key := strings.ToLower(ev.SourceName)
		p.SourcePrefs[key] = ema(p.SourcePrefs[key], 1.0, alpha)
	}
	for _, topic := range ev.Topics {
		if topic == "" {
			continue
		}
		key := strings.ToLower(topic)
		p.TopicPrefs[key] = ema(p.TopicPrefs[key], 1.0, alpha)
	}

	ts := ev.ClickedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	hour := ts.Hour()
	p.HourOfDay[hour] += 0.1
	if p.HourOfDay[hour] > 1 {
		p.HourOfDay[hour] = 1
	}

	p.Clicks = append(p.Clicks, ev)
	if len(p.Clicks) > MaxClickHistory {
		p.Clicks = p.Clicks[len(p.Clicks)-MaxClickHistory:]
	}
	p.UpdateTime = time.Now()
}

// ClickCount 返回历史点击数。
func (p *UserProfile) ClickCount() int {
	if p == nil {
		return 0
	}
	return len(p.Clicks)
}

// SourcePref 返回来源偏好权重（大小写不敏感），无记录返回 (0, false)。
func (p *UserProfile) SourcePref(source string) (float64, bool) {
	if p == nil || p.SourcePrefs == nil {
		return 0, false
	}
	v, ok := p.SourcePrefs[strings.ToLower(source)]
	return v, ok
}

// TopicAffinity 返回文章话题与话题偏好的最大匹配权重。
// 匹配规则与排序一致：大小写不敏感的子串包含。
func (p *UserProfile) TopicAffinity(topics []string) (float64, bool) {
	if p == nil || len(p.TopicPrefs) == 0 {
		return 0, false
	}
	best := 0.0
	found := false
	for _, topic := range topics {
		lt := strings.ToLower(topic)
		for pref, w := range p.TopicPrefs {
			if strings.Contains(lt, pref) || strings.Contains(pref, lt) {
				found = true
				if w > best {
					best = w
				}
			}
		}
	}
	return best, found
}

func ema(old, observed, alpha float64) float64 {
	return old*(1-alpha) + observed*alpha
}
