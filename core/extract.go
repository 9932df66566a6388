package core

import "context"

// ContentExtractor 是内容抽取的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由外部采集/解析服务实现
//   - 领域层不关心 HTML 解析细节，只消费结构化结果
//
// 实现方（示例）：基于 readability/goquery 的抽取服务、远程抽取 API。
type ContentExtractor interface {
	// Name 返回抽取器名称（用于日志/监控）
	Name() string

	// Extract 对单篇文章做内容抽取与清洗
	Extract(ctx context.Context, article *Article) (*ExtractedContent, error)
}

// ExtractedContent 是抽取服务产出的结构化内容。
type ExtractedContent struct {
	CleanTitle    string
	CleanSummary  string
	ExtractedText string
	Language      string
	WordCount     int

	// ReadabilityScore / ContentQuality 为 0-1 归一化分数。
	ReadabilityScore float64
	ContentQuality   float64

	Entities []string
	Keywords []string
}

// ExtractionOutcome 区分真实抽取结果与降级产物：
// Degraded=true 表示抽取失败后用标题兜底生成的中等质量内容。
// 两者静态可区分，下游无需靠可选字段猜测来源。
type ExtractionOutcome struct {
	Content  *ExtractedContent
	Degraded bool
}

// DegradedExtraction 用标题兜底构造降级抽取结果（中等质量档）。
func DegradedExtraction(article *Article) ExtractionOutcome {
	text := article.Title
	if article.Summary != "" {
		text = article.Title + " " + article.Summary
	}
	return ExtractionOutcome{
		Content: &ExtractedContent{
			CleanTitle:       article.Title,
			CleanSummary:     article.Summary,
			ExtractedText:    text,
			WordCount:        countWords(text),
			ReadabilityScore: 0.5,
			ContentQuality:   0.5,
		},
		Degraded: true,
	}
}

func countWords(s string) int {
	n := 0
	inWord := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}
