package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/feedkit/core"
)

// Task 是阶段执行器的最小工作单元。Index 贯穿并发执行，
// 用于在批次乱序完成后恢复原始文章顺序。
type Task[T any] struct {
	Index     int
	ArticleID string
	Run       func(ctx context.Context) (T, error)
}

// Indexed 是带原始下标的任务结果。
type Indexed[T any] struct {
	Index int
	Value T
}

// runStage 以批为单位执行 N 个独立任务，返回成功完成的结果（按 Index 升序）。
// 失败或未完成的任务被丢弃，不重试。
//
// 并发模式：任务按 BatchSize 分批；每批作为一个整体对着共享时间预算
// （MaxProcessingTime）竞速——预算耗尽时**整批结果丢弃**（批粒度取消，
// 通过显式的批级 deadline context 实现，而不是裸计时器竞速）。
// 顺序模式：逐任务应用同一预算，失败/超时的任务记录后跳过，循环继续。
func runStage[T any](
	ctx context.Context,
	stage core.Stage,
	cfg core.PipelineConfig,
	tasks []Task[T],
	record func(*core.StageError),
) []Indexed[T] {
	if len(tasks) == 0 {
		return nil
	}

	budget := cfg.MaxProcessingTime
	if budget <= 0 {
		budget = 30 * time.Second
	}

	var out []Indexed[T]
	if cfg.EnableParallel {
		out = runParallel(ctx, stage, cfg.BatchSize, budget, tasks, record)
	} else {
		out = runSequential(ctx, stage, budget, tasks, record)
	}

	// 批次完成顺序不保证，按携带的下标恢复输入顺序。
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func runParallel[T any](
	ctx context.Context,
	stage core.Stage,
	batchSize int,
	budget time.Duration,
	tasks []Task[T],
	record func(*core.StageError),
) []Indexed[T] {
	if batchSize <= 0 {
		batchSize = len(tasks)
	}

	out := make([]Indexed[T], 0, len(tasks))
	for start := 0; start < len(tasks); start += batchSize {
		end := start + batchSize
		if end > len(tasks) {
			end = len(tasks)
		}
		batch := tasks[start:end]

		bctx, cancel := context.WithTimeout(ctx, budget)

		var (
			mu  sync.Mutex
			buf []Indexed[T]
		)
		done := make(chan struct{})
		go func() {
			defer close(done)
			eg, gctx := errgroup.WithContext(bctx)
			for _, t := range batch {
				t := t
				eg.Go(func() error {
					v, err := t.Run(gctx)
					if err != nil {
						// 批超时引发的取消不重复记账，批级错误统一记录
						if bctx.Err() == nil {
							record(core.NewStageError(stage, t.ArticleID, err))
						}
						return nil // 单任务失败不中断同批其他任务
					}
					mu.Lock()
					buf = append(buf, Indexed[T]{Index: t.Index, Value: v})
					mu.Unlock()
					return nil
				})
			}
			_ = eg.Wait()
		}()

		select {
		case <-done:
			mu.Lock()
			out = append(out, buf...)
			mu.Unlock()
		case <-bctx.Done():
			// 整批丢弃：已完成的结果也不保留（批是竞速的最小单位）
			record(&core.StageError{Stage: stage, Err: core.ErrBatchTimeout, Recoverable: true})
		}
		cancel()
	}
	return out
}

func runSequential[T any](
	ctx context.Context,
	stage core.Stage,
	budget time.Duration,
	tasks []Task[T],
	record func(*core.StageError),
) []Indexed[T] {
	out := make([]Indexed[T], 0, len(tasks))
	for _, t := range tasks {
		tctx, cancel := context.WithTimeout(ctx, budget)
		v, err := t.Run(tctx)
		cancel()
		if err != nil {
			record(core.NewStageError(stage, t.ArticleID, err))
			continue
		}
		out = append(out, Indexed[T]{Index: t.Index, Value: v})
	}
	return out
}
