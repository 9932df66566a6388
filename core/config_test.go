package core

import (
	"testing"
	"time"
)

func TestConfigPatch_Apply(t *testing.T) {
	cfg := DefaultPipelineConfig()

	off := false
	batch := 20
	timeout := 5 * time.Second
	got, rebuild := ConfigPatch{
		EnableSafety:      &off,
		BatchSize:         &batch,
		MaxProcessingTime: &timeout,
	}.Apply(cfg)

	if rebuild {
		t.Error("stage/batch changes should not trigger rebuild")
	}
	if got.EnableSafety {
		t.Error("EnableSafety should be off")
	}
	if got.BatchSize != 20 || got.MaxProcessingTime != 5*time.Second {
		t.Errorf("batch/timeout = %d/%v", got.BatchSize, got.MaxProcessingTime)
	}
	// 未指定字段保持不变
	if !got.EnableRanking || got.MinContentQuality != cfg.MinContentQuality {
		t.Error("unspecified fields must keep previous values")
	}
}

func TestConfigPatch_RebuildTriggers(t *testing.T) {
	cfg := DefaultPipelineConfig()

	key := "new-key"
	if _, rebuild := (ConfigPatch{GeminiAPIKey: &key}).Apply(cfg); !rebuild {
		t.Error("api key change must trigger rebuild")
	}

	interests := []string{"science"}
	if _, rebuild := (ConfigPatch{UserInterests: &interests}).Apply(cfg); !rebuild {
		t.Error("interests change must trigger rebuild")
	}

	// 相同值不触发重建
	cfg.GeminiAPIKey = "same"
	same := "same"
	if _, rebuild := (ConfigPatch{GeminiAPIKey: &same}).Apply(cfg); rebuild {
		t.Error("identical api key should not trigger rebuild")
	}

	cfg.UserInterests = []string{"a", "b"}
	sameInterests := []string{"a", "b"}
	if _, rebuild := (ConfigPatch{UserInterests: &sameInterests}).Apply(cfg); rebuild {
		t.Error("identical interests should not trigger rebuild")
	}
}
