package dsl

import (
	"testing"

	"github.com/rushteam/feedkit/core"
)

func TestCompile_EmptyExprIsAlwaysTrue(t *testing.T) {
	g, err := Compile("")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if g != nil {
		t.Fatal("empty expr should compile to nil gate")
	}
	ok, err := g.Eval(nil, nil, nil)
	if err != nil || !ok {
		t.Errorf("nil gate Eval = %v, %v; want true, nil", ok, err)
	}
}

func TestCompile_InvalidExpr(t *testing.T) {
	if _, err := Compile("signals.popularity >"); err == nil {
		t.Error("invalid expression should fail to compile")
	}
}

func TestGate_Eval(t *testing.T) {
	a := core.NewArticle("a1")
	a.Title = "Breaking: markets rally"
	a.SourceName = "Reuters"
	a.PopularityScore = 0.7
	a.Tags = []string{"finance"}

	user := &core.UserContext{UserID: "u1", Interests: []string{"finance"}}

	tests := []struct {
		name    string
		expr    string
		signals core.SignalSet
		want    bool
	}{
		{
			name:    "signal threshold hit",
			expr:    `signals.popularity > 0.6`,
			signals: core.SignalSet{core.SignalPopularity: 0.7},
			want:    true,
		},
		{
			name:    "signal threshold miss",
			expr:    `signals.popularity > 0.6`,
			signals: core.SignalSet{core.SignalPopularity: 0.5},
			want:    false,
		},
		{
			name: "article field and logic",
			expr: `article.source_name == "Reuters" && article.popularity_score >= 0.5`,
			want: true,
		},
		{
			name: "tag membership",
			expr: `"finance" in article.tags`,
			want: true,
		},
		{
			name: "string contains",
			expr: `article.title.contains("Breaking")`,
			want: true,
		},
		{
			name: "user interests",
			expr: `"finance" in user.interests`,
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile(%q): %v", tt.expr, err)
			}
			got, err := g.Eval(a, tt.signals, user)
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}
			if got != tt.want {
				t.Errorf("Eval(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestGate_NonBooleanResult(t *testing.T) {
	g, err := Compile(`article.popularity_score`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	a := core.NewArticle("a1")
	if _, err := g.Eval(a, nil, nil); err == nil {
		t.Error("non-boolean expression should return error at eval")
	}
}

func TestGate_MissingKeyErrors(t *testing.T) {
	g, err := Compile(`signals.no_such_signal > 0.5`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := g.Eval(core.NewArticle("a1"), core.SignalSet{}, nil); err == nil {
		t.Error("missing key access should surface as eval error")
	}
}
