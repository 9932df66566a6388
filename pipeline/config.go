package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/feedkit/core"
)

// LoadConfig 从文件加载管线配置，按扩展名识别 YAML/JSON。
// 文件里省略的字段保持默认值（在 DefaultPipelineConfig 基础上覆盖）。
func LoadConfig(path string) (core.PipelineConfig, error) {
	cfg := core.DefaultPipelineConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config format: %s", path)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfigYAML 从 YAML 字节加载配置（同样基于默认值覆盖）。
func ParseConfigYAML(data []byte) (core.PipelineConfig, error) {
	cfg := core.DefaultPipelineConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
