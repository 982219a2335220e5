package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/metronlab/metron/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Batch 每日批次：独占缓存、遍历用户执行分析、完成后清空缓存。
// 同一天重复触发是安全的：结果写入全部幂等。
type Batch struct {
	cache    *repository.CacheDB
	users    *repository.UserRepository
	runner   *AnalysisRunner
	notifier *Notifier

	maxConcurrent int
	loc           *time.Location
}

// NewBatch 创建每日批次
func NewBatch(cache *repository.CacheDB, runner *AnalysisRunner, notifier *Notifier,
	maxConcurrent int, loc *time.Location) *Batch {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Batch{
		cache:         cache,
		users:         repository.NewUserRepository(cache.DB),
		runner:        runner,
		notifier:      notifier,
		maxConcurrent: maxConcurrent,
		loc:           loc,
	}
}

// RunDaily 对指定日期（YYYY-MM-DD）执行全量用户分析。
// 单用户失败不中断其余用户；全部成功后重建缓存，为下一采集周期腾空间。
func (b *Batch) RunDaily(ctx context.Context, day string) error {
	if _, err := time.ParseInLocation("2006-01-02", day, b.loc); err != nil {
		return fmt.Errorf("非法日期 %q: %w", day, err)
	}

	release, err := b.cache.Acquire()
	if err != nil {
		return fmt.Errorf("批次启动被拒绝: %w", err)
	}
	defer release()

	users, err := b.users.List(ctx)
	if err != nil {
		return fmt.Errorf("读取用户列表失败: %w", err)
	}
	if len(users) == 0 {
		slog.Info("缓存内无用户，批次空转", "day", day)
		return nil
	}

	started := time.Now()
	slog.Info("每日批次开始", "day", day, "users", len(users), "concurrency", b.maxConcurrent)

	var failed int
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.maxConcurrent)
	results := make(chan error, len(users))
	for _, user := range users {
		user := user
		g.Go(func() error {
			err := b.runner.RunUserDay(gctx, user, day)
			if err != nil {
				slog.Error("用户分析失败", "user", user.UID, "day", day, "error", err)
			}
			results <- err
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	for err := range results {
		if err != nil {
			failed++
		}
	}

	slog.Info("每日批次完成",
		"day", day, "users", len(users), "failed", failed,
		"elapsed", time.Since(started).Round(time.Millisecond))

	b.notifier.AnalysisCompleted(ctx, CompletionMessage{
		Day:         day,
		UsersTotal:  len(users),
		UsersFailed: failed,
		FinishedAt:  time.Now().In(b.loc),
	})

	if failed > 0 {
		slog.Warn("存在失败用户，保留缓存以便重跑", "day", day, "failed", failed)
		return nil
	}
	if err := b.cache.Reset(); err != nil {
		return fmt.Errorf("重建缓存失败: %w", err)
	}
	return nil
}
