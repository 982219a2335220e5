package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Scheduler 每天固定时刻触发前一天的批次分析
type Scheduler struct {
	batch *Batch
	runAt string // HH:MM
	loc   *time.Location
}

// NewScheduler 创建调度器
func NewScheduler(batch *Batch, runAt string, loc *time.Location) (*Scheduler, error) {
	if _, err := time.Parse("15:04", runAt); err != nil {
		return nil, fmt.Errorf("非法触发时刻 %q: %w", runAt, err)
	}
	return &Scheduler{batch: batch, runAt: runAt, loc: loc}, nil
}

// Start 启动调度循环，ctx 取消时退出
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	for {
		next := s.nextRun(time.Now().In(s.loc))
		slog.Info("下一次批次已排期", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("调度器退出")
			return
		case now := <-timer.C:
			day := now.In(s.loc).AddDate(0, 0, -1).Format("2006-01-02")
			if err := s.batch.RunDaily(ctx, day); err != nil {
				slog.Error("排期批次失败", "day", day, "error", err)
			}
		}
	}
}

// nextRun 今天的触发时刻未过则今天跑，否则明天
func (s *Scheduler) nextRun(now time.Time) time.Time {
	at, _ := time.Parse("15:04", s.runAt)
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, s.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
