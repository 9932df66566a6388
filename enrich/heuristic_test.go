package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rushteam/feedkit/core"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestHeuristic(provider SignalProvider) *Heuristic {
	h := NewHeuristic(provider)
	h.now = fixedNow
	return h
}

func TestEnrich_KnownSourceReputation(t *testing.T) {
	h := newTestHeuristic(nil)
	a := core.NewArticle("a1")
	a.Title = "Markets close higher"
	a.SourceName = "Reuters"
	a.PublishedAt = fixedNow().Add(-30 * time.Minute)

	res, err := h.Enrich(context.Background(), a, nil, nil)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if res.Signals.SourceReputation != 0.95 {
		t.Errorf("reputation = %v, want 0.95", res.Signals.SourceReputation)
	}
	if res.Signals.TimelinessScore != 1.0 {
		t.Errorf("timeliness = %v, want 1.0 for fresh article", res.Signals.TimelinessScore)
	}
}

func TestEnrich_UnknownSourceNeutral(t *testing.T) {
	h := newTestHeuristic(nil)
	a := core.NewArticle("a1")
	a.Title = "Something happened"
	a.SourceName = "Random Blog"

	res, err := h.Enrich(context.Background(), a, nil, nil)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if res.Signals.SourceReputation != 0.5 {
		t.Errorf("unknown source reputation = %v, want 0.5", res.Signals.SourceReputation)
	}
}

type stubProvider struct {
	rep, auth float64
	err       error
}

func (s stubProvider) SourceSignals(ctx context.Context, sourceName string) (float64, float64, error) {
	return s.rep, s.auth, s.err
}

func TestEnrich_ProviderOverridesBuiltin(t *testing.T) {
	h := newTestHeuristic(stubProvider{rep: 0.42, auth: 0.33})
	a := core.NewArticle("a1")
	a.Title = "t"
	a.SourceName = "Reuters" // 内置表 0.95，但外部特征优先

	res, _ := h.Enrich(context.Background(), a, nil, nil)
	if res.Signals.SourceReputation != 0.42 || res.Signals.AuthorityScore != 0.33 {
		t.Errorf("signals = %v/%v, want provider values 0.42/0.33",
			res.Signals.SourceReputation, res.Signals.AuthorityScore)
	}
}

func TestEnrich_ProviderFailureFallsBack(t *testing.T) {
	h := newTestHeuristic(stubProvider{err: errors.New("feast down")})
	a := core.NewArticle("a1")
	a.Title = "t"
	a.SourceName = "Reuters"

	res, err := h.Enrich(context.Background(), a, nil, nil)
	if err != nil {
		t.Fatalf("Enrich should not fail when provider errors: %v", err)
	}
	if res.Signals.SourceReputation != 0.95 {
		t.Errorf("reputation = %v, want builtin 0.95", res.Signals.SourceReputation)
	}
}

func TestEnrich_BreakingDetection(t *testing.T) {
	h := newTestHeuristic(nil)
	tests := []struct {
		title string
		want  bool
	}{
		{"Breaking: dam collapses", true},
		{"JUST IN: election results", true},
		{"Weekly market roundup", false},
	}
	for _, tt := range tests {
		a := core.NewArticle("a")
		a.Title = tt.title
		res, _ := h.Enrich(context.Background(), a, nil, nil)
		if res.Signals.IsBreaking != tt.want {
			t.Errorf("IsBreaking(%q) = %v, want %v", tt.title, res.Signals.IsBreaking, tt.want)
		}
	}
}

func TestDetectTopics(t *testing.T) {
	tests := []struct {
		name string
		text string
		tags []string
		want []string
	}{
		{
			name: "keyword hit",
			text: "the startup raised funding for its ai software",
			want: []string{"technology"},
		},
		{
			name: "word boundary respected",
			text: "he said it was fine", // "ai" 不应命中 "said"
			want: nil,
		},
		{
			name: "tags merged in",
			text: "nothing matches here",
			tags: []string{"Custom"},
			want: []string{"custom"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectTopics(tt.text, tt.tags)
			if len(got) != len(tt.want) {
				t.Fatalf("detectTopics = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("detectTopics = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestExtractEntities(t *testing.T) {
	a := "NASA and European Space Agency plan joint mission"
	got := extractEntities(a, nil)

	want := map[string]bool{"NASA": true, "European Space Agency": true}
	for _, e := range got {
		delete(want, e)
	}
	if len(want) != 0 {
		t.Errorf("extractEntities(%q) = %v, missing %v", a, got, want)
	}
}

func TestTimelinessScore(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want float64
	}{
		{30 * time.Minute, 1.0},
		{3 * time.Hour, 0.8},
		{12 * time.Hour, 0.6},
		{48 * time.Hour, 0.4},
		{100 * time.Hour, 0.2},
	}
	for _, tt := range tests {
		if got := timelinessScore(tt.age); got != tt.want {
			t.Errorf("timelinessScore(%v) = %v, want %v", tt.age, got, tt.want)
		}
	}
}

func TestEnrich_ShareCountDrivesVirality(t *testing.T) {
	h := newTestHeuristic(nil)
	a := core.NewArticle("a1")
	a.Title = "t"
	a.PopularityScore = 0.1
	a.Metadata["share_count"] = 1500

	res, _ := h.Enrich(context.Background(), a, nil, nil)
	if res.Signals.ViralityScore <= 0.5 {
		t.Errorf("virality = %v, want raw share count to dominate low popularity", res.Signals.ViralityScore)
	}
}

func TestEnrich_NoPublishTimeNeutralTimeliness(t *testing.T) {
	h := newTestHeuristic(nil)
	a := core.NewArticle("a1")
	a.Title = "t"

	res, _ := h.Enrich(context.Background(), a, nil, nil)
	if res.Signals.TimelinessScore != 0.5 {
		t.Errorf("timeliness = %v, want neutral 0.5 without publish time", res.Signals.TimelinessScore)
	}
}

func TestEnrich_NilArticle(t *testing.T) {
	h := newTestHeuristic(nil)
	res, err := h.Enrich(context.Background(), nil, nil, nil)
	if err != nil {
		t.Fatalf("Enrich(nil): %v", err)
	}
	if !res.Degraded {
		t.Error("nil article should yield degraded neutral result")
	}
}
