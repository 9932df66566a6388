// Package dsl 提供基于 CEL (Common Expression Language) 的规则表达式求值，
// 用于 AI 评估准入门控与自定义加成规则等策略配置。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/feedkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("article", cel.DynType),
			cel.Variable("signals", cel.DynType),
			cel.Variable("user", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Gate 是编译后的布尔规则。表达式在构造时编译一次，之后可并发复用。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：signals.popularity > 0.6 / article.popularity_score >= 0.5
//   - 逻辑：signals.recency > 0.8 && article.source_name != ""
//   - 包含："ai" in article.tags / article.title.contains("breaking")
//
// 示例：
//   - `signals.popularity > 0.6` → 只对热度 >0.6 的文章启用 AI 评估
//   - `signals.virality > 0.8 && signals.cluster_velocity > 0.3` → 爆发话题加成
type Gate struct {
	expr string
	prg  cel.Program
}

// Compile 编译一条规则表达式。空表达式返回 nil Gate（语义为恒真）。
func Compile(expr string) (*Gate, error) {
	if expr == "" {
		return nil, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Gate{expr: expr, prg: prg}, nil
}

// Expr 返回原始表达式文本。
func (g *Gate) Expr() string {
	if g == nil {
		return ""
	}
	return g.expr
}

// Eval 对单篇文章求值。nil Gate 恒为 true。
// 表达式返回非布尔值或求值出错时返回 error，调用方自行决定降级策略。
func (g *Gate) Eval(article *core.Article, signals core.SignalSet, user *core.UserContext) (bool, error) {
	if g == nil {
		return true, nil
	}

	out, _, err := g.prg.Eval(buildInput(article, signals, user))
	if err != nil {
		// 访问不存在的 key 时 CEL 会报错；表达式应使用 key != null 判断存在性
		return false, fmt.Errorf("eval %q: %w", g.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q must return boolean, got %T", g.expr, out.Value())
	}
	return result, nil
}

func buildInput(article *core.Article, signals core.SignalSet, user *core.UserContext) map[string]any {
	art := map[string]any{}
	if article != nil {
		art = map[string]any{
			"id":               article.ID,
			"title":            article.Title,
			"summary":          article.Summary,
			"url":              article.URL,
			"author":           article.Author,
			"source_name":      article.SourceName,
			"popularity_score": article.PopularityScore,
			"final_score":      article.FinalScore,
			"tags":             article.Tags,
		}
	}

	sig := map[string]any{}
	for k, v := range signals {
		sig[k] = v
	}

	usr := map[string]any{}
	if user != nil {
		usr = map[string]any{
			"user_id":   user.UserID,
			"interests": user.Interests,
		}
	}

	return map[string]any{
		"article": art,
		"signals": sig,
		"user":    usr,
	}
}
