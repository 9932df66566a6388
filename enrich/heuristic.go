// Package enrich 提供 core.EnrichmentService 的内置启发式实现：
// 从标题/抽取内容提取实体与话题，计算来源声誉、时效性、传播度等辅助信号。
// 可选注入 SignalProvider（如 feast 在线特征）覆盖来源级信号。
package enrich

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pkg/conv"
)

// SignalProvider 按来源名提供外部特征信号（声誉/权威度）。
// 查不到或出错时富化服务回退到内置声誉表。
type SignalProvider interface {
	SourceSignals(ctx context.Context, sourceName string) (reputation, authority float64, err error)
}

// Heuristic 是内置富化实现。无外部依赖即可工作；
// Provider 非 nil 时来源级信号优先取自外部特征。
type Heuristic struct {
	Provider SignalProvider

	// now 可注入，便于测试时效性计算。
	now func() time.Time
}

func NewHeuristic(provider SignalProvider) *Heuristic {
	return &Heuristic{Provider: provider, now: time.Now}
}

func (h *Heuristic) Name() string { return "heuristic" }

// 内置来源声誉表。未知来源取 0.5。
var sourceReputations = map[string]float64{
	"reuters":             0.95,
	"associated press":    0.95,
	"bbc news":            0.9,
	"the new york times":  0.88,
	"the washington post": 0.85,
	"the guardian":        0.85,
	"bloomberg":           0.85,
	"techcrunch":          0.75,
	"the verge":           0.72,
	"ars technica":        0.78,
	"wired":               0.75,
	"hacker news":         0.65,
}

var breakingMarkers = []string{"breaking", "just in", "urgent", "live:", "developing"}

var topicKeywords = map[string][]string{
	"technology": {"ai", "artificial intelligence", "software", "startup", "chip", "cloud", "app", "robot"},
	"business":   {"market", "stock", "economy", "earnings", "merger", "ipo", "inflation"},
	"science":    {"research", "study", "climate", "space", "nasa", "quantum", "gene"},
	"politics":   {"election", "senate", "congress", "parliament", "president", "policy"},
	"health":     {"health", "vaccine", "hospital", "disease", "drug", "fda"},
	"sports":     {"league", "championship", "tournament", "olympic", "match", "season"},
}

// Enrich 对单篇文章做启发式富化。
func (h *Heuristic) Enrich(ctx context.Context, article *core.Article, content *core.ExtractedContent, userCtx *core.UserContext) (*core.EnrichmentResult, error) {
	if article == nil {
		return core.NeutralEnrichment(), nil
	}

	text := article.Title
	if content != nil && content.ExtractedText != "" {
		text = content.ExtractedText
	}
	lowerText := strings.ToLower(text)
	lowerTitle := strings.ToLower(article.Title)

	reputation, authority := h.sourceSignals(ctx, article.SourceName)

	// 采集侧在 Metadata 带了原始分享数时优先用它估算传播度
	popularity := article.PopularityScore
	if raw, ok := conv.ToFloat64(article.Metadata["share_count"]); ok && raw > 0 {
		popularity = raw
	}

	// 无发布时间的文章时效性取中性值，而不是按零年龄算最新
	timeliness := 0.5
	if !article.PublishedAt.IsZero() {
		timeliness = timelinessScore(article.Age(h.nowTime()))
	}

	signals := core.AuxiliarySignals{
		SourceReputation: reputation,
		AuthorityScore:   authority,
		ContentType:      classifyContentType(lowerTitle),
		IsBreaking:       isBreaking(lowerTitle),
		ViralityScore:    viralityScore(popularity),
		TimelinessScore:  timeliness,
	}
	if content != nil {
		signals.WordCount = content.WordCount
		signals.ContentQuality = content.ContentQuality
		signals.Readability = content.ReadabilityScore
	}

	return &core.EnrichmentResult{
		Entities: extractEntities(article.Title, content),
		Topics:   detectTopics(lowerText, article.Tags),
		Signals:  signals,
	}, nil
}

func (h *Heuristic) nowTime() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

// sourceSignals 优先走外部特征提供方，失败回退内置表。
func (h *Heuristic) sourceSignals(ctx context.Context, sourceName string) (float64, float64) {
	if h.Provider != nil {
		rep, auth, err := h.Provider.SourceSignals(ctx, sourceName)
		if err == nil {
			return clamp01(rep), clamp01(auth)
		}
	}
	rep, ok := sourceReputations[strings.ToLower(sourceName)]
	if !ok {
		rep = 0.5
	}
	// 内置表没有独立权威度，用声誉略打折近似
	return rep, rep * 0.9
}

// extractEntities 提取候选实体：标题中的连续大写开头词组 + 抽取内容自带实体。
func extractEntities(title string, content *core.ExtractedContent) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(e string) {
		e = strings.TrimSpace(e)
		if len(e) < 2 {
			return
		}
		key := strings.ToLower(e)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}

	if content != nil {
		for _, e := range content.Entities {
			add(e)
		}
	}

	words := strings.Fields(title)
	var current []string
	flush := func() {
		// 单个首词大写不算实体（普通句首）
		if len(current) >= 2 || (len(current) == 1 && isAcronymWord(current[0])) {
			add(strings.Join(current, " "))
		}
		current = nil
	}
	for i, w := range words {
		trimmed := strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if trimmed == "" {
			flush()
			continue
		}
		r := []rune(trimmed)[0]
		if unicode.IsUpper(r) && i > 0 {
			current = append(current, trimmed)
			continue
		}
		if unicode.IsUpper(r) && i == 0 && isAcronymWord(trimmed) {
			current = append(current, trimmed)
			continue
		}
		flush()
	}
	flush()
	return out
}

func isAcronymWord(w string) bool {
	if len(w) < 2 {
		return false
	}
	for _, r := range w {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// detectTopics 用关键词表匹配话题，文章自带标签直接并入。
func detectTopics(lowerText string, tags []string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}

	for topic, keywords := range topicKeywords {
		for _, kw := range keywords {
			if containsWord(lowerText, kw) {
				add(topic)
				break
			}
		}
	}
	for _, t := range tags {
		if t != "" {
			add(strings.ToLower(t))
		}
	}
	return out
}

// containsWord 做词边界匹配，避免 "ai" 命中 "said" 这类子串。
func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		leftOK := start == 0 || !isWordRune(rune(text[start-1]))
		rightOK := end == len(text) || !isWordRune(rune(text[end]))
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func classifyContentType(lowerTitle string) string {
	switch {
	case strings.Contains(lowerTitle, "opinion") || strings.Contains(lowerTitle, "op-ed"):
		return "opinion"
	case strings.Contains(lowerTitle, "analysis") || strings.Contains(lowerTitle, "explainer"):
		return "analysis"
	case strings.Contains(lowerTitle, "interview"):
		return "interview"
	default:
		return "news"
	}
}

func isBreaking(lowerTitle string) bool {
	for _, m := range breakingMarkers {
		if strings.Contains(lowerTitle, m) {
			return true
		}
	}
	return false
}

// viralityScore 将热度映射到 0-1：热度本身已归一化时直接用，
// 超过 1 的原始计数按对数衰减近似。
func viralityScore(popularity float64) float64 {
	if popularity <= 1 {
		return clamp01(popularity)
	}
	// 1000+ 的原始热度趋近 1.0
	score := 0.5 + popularity/2000
	return clamp01(score)
}

// timelinessScore 按文章年龄分档：越新越高。
func timelinessScore(age time.Duration) float64 {
	switch {
	case age < time.Hour:
		return 1.0
	case age < 6*time.Hour:
		return 0.8
	case age < 24*time.Hour:
		return 0.6
	case age < 72*time.Hour:
		return 0.4
	default:
		return 0.2
	}
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

var _ core.EnrichmentService = (*Heuristic)(nil)
