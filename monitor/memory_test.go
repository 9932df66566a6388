package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/feedkit/core"
)

func TestMemorySink_RecordAndStats(t *testing.T) {
	s := NewMemorySink(0)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		s.Record(ctx, core.PipelineMetrics{
			ResponseTime:      time.Duration(i) * time.Millisecond,
			Throughput:        float64(i),
			ErrorRate:         0.1,
			ArticlesProcessed: i,
		})
	}

	st := s.Stats()
	if st.Samples != 10 {
		t.Fatalf("samples = %d, want 10", st.Samples)
	}
	if st.MeanResponseTime != 5500*time.Microsecond {
		t.Errorf("mean response = %v, want 5.5ms", st.MeanResponseTime)
	}
	// ceil(10*0.95)=10 → 第 10 小 = 10ms
	if st.P95ResponseTime != 10*time.Millisecond {
		t.Errorf("p95 = %v, want 10ms", st.P95ResponseTime)
	}
	if st.MeanThroughput != 5.5 {
		t.Errorf("mean throughput = %v, want 5.5", st.MeanThroughput)
	}
}

func TestMemorySink_EvictsOldest(t *testing.T) {
	s := NewMemorySink(3)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		s.Record(ctx, core.PipelineMetrics{ArticlesProcessed: i})
	}
	snap := s.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot = %d samples, want 3", len(snap))
	}
	if snap[0].ArticlesProcessed != 3 || snap[2].ArticlesProcessed != 5 {
		t.Errorf("wrong samples kept: %v", snap)
	}
}

func TestMemorySink_EmptyStats(t *testing.T) {
	s := NewMemorySink(10)
	st := s.Stats()
	if st.Samples != 0 || st.MeanResponseTime != 0 {
		t.Errorf("empty stats = %+v, want zero", st)
	}
}

func TestMultiSink_FansOut(t *testing.T) {
	a := NewMemorySink(10)
	b := NewMemorySink(10)
	ms := MultiSink{a, nil, b}

	ms.Record(context.Background(), core.PipelineMetrics{ArticlesProcessed: 7})

	if len(a.Snapshot()) != 1 || len(b.Snapshot()) != 1 {
		t.Error("metrics should reach every non-nil sink")
	}
}
