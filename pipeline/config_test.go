package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	content := []byte(`
enable_summarization: false
batch_size: 5
max_processing_time: 10s
user_interests:
  - technology
  - science
ai_gate_expr: "signals.popularity > 0.6"
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.EnableSummarization {
		t.Error("enable_summarization should be overridden to false")
	}
	if !cfg.EnableExtraction {
		t.Error("unspecified flags should keep defaults (extraction on)")
	}
	if cfg.BatchSize != 5 {
		t.Errorf("batch_size = %d, want 5", cfg.BatchSize)
	}
	if cfg.MaxProcessingTime != 10*time.Second {
		t.Errorf("max_processing_time = %v, want 10s", cfg.MaxProcessingTime)
	}
	if len(cfg.UserInterests) != 2 || cfg.UserInterests[0] != "technology" {
		t.Errorf("user_interests = %v", cfg.UserInterests)
	}
	if cfg.AIGateExpr != "signals.popularity > 0.6" {
		t.Errorf("ai_gate_expr = %q", cfg.AIGateExpr)
	}
}

func TestLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.json")
	content := []byte(`{"enable_ranking": false, "user_id": "u42"}`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.EnableRanking {
		t.Error("enable_ranking should be false")
	}
	if cfg.UserID != "u42" {
		t.Errorf("user_id = %q, want u42", cfg.UserID)
	}
}

func TestLoadConfig_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.toml")
	os.WriteFile(path, []byte("x = 1"), 0o644)

	if _, err := LoadConfig(path); err == nil {
		t.Error("unsupported extension should error")
	}
}

func TestMergeTags(t *testing.T) {
	got := mergeTags([]string{"Tech", "news"}, []string{"tech", "AI", "", "news", "ai"})
	want := []string{"Tech", "news", "AI"}
	if len(got) != len(want) {
		t.Fatalf("mergeTags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("mergeTags = %v, want %v", got, want)
		}
	}
}
