// Package monitor 提供 core.MonitoringSink 的内置实现：
// 内存环形采样（带均值/分位统计）与结构化日志上报。
package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rushteam/feedkit/core"
)

const defaultMaxSamples = 1024

// MemorySink 在内存中保留最近 N 次运行的指标样本，
// 提供均值/P95 等聚合查询。适合进程内自检与测试。
type MemorySink struct {
	mu         sync.Mutex
	samples    []core.PipelineMetrics
	maxSamples int
}

func NewMemorySink(maxSamples int) *MemorySink {
	if maxSamples <= 0 {
		maxSamples = defaultMaxSamples
	}
	return &MemorySink{maxSamples: maxSamples}
}

func (s *MemorySink) Name() string { return "memory" }

// Record 追加一个指标样本，超出容量时淘汰最旧样本。
func (s *MemorySink) Record(ctx context.Context, m core.PipelineMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, m)
	if len(s.samples) > s.maxSamples {
		s.samples = s.samples[len(s.samples)-s.maxSamples:]
	}
}

// Snapshot 返回样本副本（按记录顺序）。
func (s *MemorySink) Snapshot() []core.PipelineMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.PipelineMetrics, len(s.samples))
	copy(out, s.samples)
	return out
}

// SinkStats 是内存采样的聚合视图。
type SinkStats struct {
	Samples          int
	MeanResponseTime time.Duration
	P95ResponseTime  time.Duration
	MeanThroughput   float64
	MeanErrorRate    float64
}

// Stats 计算当前样本的均值与 P95 响应时间。
func (s *MemorySink) Stats() SinkStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SinkStats{Samples: len(s.samples)}
	if len(s.samples) == 0 {
		return st
	}

	durations := make([]time.Duration, 0, len(s.samples))
	var sumDur time.Duration
	var sumThroughput, sumErrRate float64
	for _, m := range s.samples {
		durations = append(durations, m.ResponseTime)
		sumDur += m.ResponseTime
		sumThroughput += m.Throughput
		sumErrRate += m.ErrorRate
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	n := len(durations)
	st.MeanResponseTime = sumDur / time.Duration(n)
	st.MeanThroughput = sumThroughput / float64(n)
	st.MeanErrorRate = sumErrRate / float64(n)

	idx := (n*95 + 99) / 100 // ceil(n*0.95)
	if idx > 0 {
		idx--
	}
	st.P95ResponseTime = durations[idx]
	return st
}

var _ core.MonitoringSink = (*MemorySink)(nil)
