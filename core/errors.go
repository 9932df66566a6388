package core

import (
	"errors"
	"fmt"
)

// Stage 标识管线的一个阶段，用于错误归属与耗时打点。
type Stage string

const (
	StageExtraction    Stage = "extraction"
	StageSafety        Stage = "safety"
	StageEnrichment    Stage = "enrichment"
	StageDeduplication Stage = "deduplication"
	StageRanking       Stage = "ranking"
	StageSummarization Stage = "summarization"
	StageNotification  Stage = "notification"

	// StagePipeline 表示逃逸出所有阶段守卫的错误（唯一的不可恢复来源）。
	StagePipeline Stage = "pipeline"
)

// StageError 是管线错误的统一形态。
// 约定：所有阶段内/单篇级错误 Recoverable=true；
// 仅逃逸出全部守卫的异常记为 Stage=StagePipeline、Recoverable=false。
// 错误只收集不上抛，调用方事后检查 ErrorCount / Errors()。
type StageError struct {
	Stage       Stage
	Err         error
	ArticleID   string // 可为空（阶段级错误）
	Recoverable bool
}

func (e *StageError) Error() string {
	if e.ArticleID != "" {
		return fmt.Sprintf("%s: article %s: %v", e.Stage, e.ArticleID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError 构造单篇级可恢复错误。
func NewStageError(stage Stage, articleID string, err error) *StageError {
	return &StageError{Stage: stage, Err: err, ArticleID: articleID, Recoverable: true}
}

// ErrBatchTimeout 表示一个并发批次在共享时间预算内未能完成，整批结果被丢弃。
var ErrBatchTimeout = errors.New("batch timed out, results discarded")

// ErrRankingUnavailable 表示排序引擎整体失效，本次运行降级为热度排序。
var ErrRankingUnavailable = errors.New("ranking engine unavailable, fell back to popularity order")

// DomainError 是存储等基础设施层的统一错误类型。
type DomainError struct {
	Code    string
	Message string
	Module  string
}

func (e *DomainError) Error() string { return e.Message }

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{Module: module, Code: code, Message: message}
}

// 错误代码常量
const (
	ErrorCodeNotFound     = "NOT_FOUND"
	ErrorCodeNotSupported = "NOT_SUPPORTED"
	ErrorCodeUnavailable  = "UNAVAILABLE"
)

// 模块名称常量
const (
	ModuleStore = "store"
	ModuleFeast = "feast"
)
