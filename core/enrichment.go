package core

// EnrichmentResult 是富化阶段对单篇文章的产出，随一次 Process 生命周期，
// 不做持久化。
type EnrichmentResult struct {
	Entities []string
	Topics   []string
	Signals  AuxiliarySignals

	// AIInsights 是可选的模型侧补充信息（富化服务自定义）。
	AIInsights map[string]any

	// Degraded 标记该结果是否为降级产物（富化失败时的中性默认值）。
	Degraded bool
}

// AuxiliarySignals 是富化服务计算出的辅助信号，供排序阶段消费。
// 除 WordCount/ContentType/IsBreaking 外均为 0-1 归一化分数。
type AuxiliarySignals struct {
	WordCount        int
	SourceReputation float64
	AuthorityScore   float64
	ContentType      string
	IsBreaking       bool
	ViralityScore    float64
	TimelinessScore  float64

	// ContentQuality / Readability 由抽取内容衍生，随富化结果透传给排序。
	ContentQuality float64
	Readability    float64
}

// NeutralEnrichment 返回富化失败时的中性降级结果（0.5 档）。
func NeutralEnrichment() *EnrichmentResult {
	return &EnrichmentResult{
		Signals: AuxiliarySignals{
			SourceReputation: 0.5,
			AuthorityScore:   0.5,
			ViralityScore:    0.5,
			TimelinessScore:  0.5,
			ContentQuality:   0.5,
			Readability:      0.5,
		},
		Degraded: true,
	}
}
