package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func geminiReply(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestAnalyze_ParsesJudgement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiReply(`{"score": 85, "reasoning": "matches interests"}`)))
	}))
	defer srv.Close()

	c := NewGeminiClient("test-key")
	c.BaseURL = srv.URL

	j, err := c.Analyze(context.Background(), "Title", "Body", []string{"technology"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if j.Score != 85 {
		t.Errorf("score = %v, want 85", j.Score)
	}
	if j.Reasoning != "matches interests" {
		t.Errorf("reasoning = %q", j.Reasoning)
	}
}

func TestAnalyze_FallsBackToNextModel(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		if len(calls) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(geminiReply(`{"score": 40, "reasoning": "ok"}`)))
	}))
	defer srv.Close()

	c := NewGeminiClient("test-key")
	c.BaseURL = srv.URL
	c.Models = []string{"model-a", "model-b"}

	j, err := c.Analyze(context.Background(), "t", "", nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if j.Score != 40 {
		t.Errorf("score = %v, want 40", j.Score)
	}
	if len(calls) != 2 {
		t.Errorf("calls = %v, want first model failed then second succeeded", calls)
	}
}

func TestAnalyze_AllModelsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewGeminiClient("test-key")
	c.BaseURL = srv.URL
	c.Models = []string{"model-a", "model-b"}

	if _, err := c.Analyze(context.Background(), "t", "", nil); err == nil {
		t.Error("want error when every model fails")
	}
}

func TestAnalyze_MissingKey(t *testing.T) {
	c := NewGeminiClient("")
	if _, err := c.Analyze(context.Background(), "t", "", nil); err == nil {
		t.Error("want error without api key")
	}
}

func TestParseJudgement(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{
			name: "plain json",
			raw:  `{"score": 72, "reasoning": "r"}`,
			want: 72,
		},
		{
			name: "markdown fenced",
			raw:  "```json\n{\"score\": 30, \"reasoning\": \"r\"}\n```",
			want: 30,
		},
		{
			name: "surrounding prose",
			raw:  `Here is my assessment: {"score": 55, "reasoning": "r"} hope it helps`,
			want: 55,
		},
		{
			name: "score clamped to 100",
			raw:  `{"score": 250, "reasoning": "r"}`,
			want: 100,
		},
		{
			name:    "no json at all",
			raw:     "I cannot help with that",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := parseJudgement(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Error("want parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseJudgement: %v", err)
			}
			if j.Score != tt.want {
				t.Errorf("score = %v, want %v", j.Score, tt.want)
			}
		})
	}
}
