package baseline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/metronlab/metron/internal/schema"
)

// 基线生命周期参数
const (
	// minSpanDays 首次建立基线所需的数据点跨度
	minSpanDays = 14
	// minAgeDays 首个数据点的最小年龄；同时也是基线的过期年龄
	minAgeDays = 15
)

// Point 一个带时间的指标样本
type Point struct {
	Time  time.Time
	Value float64
}

// ValueSource 指标历史样本的读取端
type ValueSource interface {
	// MetricValues 返回 [start, end] 内某指标的全部样本，按时间升序。
	// start 为零值时表示不设下界。
	MetricValues(ctx context.Context, userUID, metric string, start, end time.Time) ([]Point, error)
}

// Record 基线记录的持久化端
type Record interface {
	LatestBaseline(ctx context.Context, userUID, metric string) (*schema.BaselineMetric, error)
	AppendBaselines(ctx context.Context, rows []schema.BaselineMetric) error
}

// Protocol 每用户每指标类别的基线状态机：
// NoBaseline → Created → Valid → Stale → Recreated(=Valid)。
// 记录只追加，created_at 最新者生效。
type Protocol struct {
	src ValueSource
	rec Record
	now func() time.Time
}

// NewProtocol 创建基线协议
func NewProtocol(src ValueSource, rec Record) *Protocol {
	return &Protocol{src: src, rec: rec, now: time.Now}
}

// Ensure 校验并按需建立/重算一组指标的基线。
// 返回 isFirstTime=true 表示发生了 NoBaseline→Created 迁移（触发回填扩展点）。
// 条件不满足（数据跨度不足）不是错误，直接保持 NoBaseline。
func (p *Protocol) Ensure(ctx context.Context, userUID, category string, metrics []string) (bool, error) {
	if len(metrics) == 0 {
		return false, nil
	}

	// 类别内各指标同进退，以首个指标的最新基线代表类别状态
	latest, err := p.rec.LatestBaseline(ctx, userUID, metrics[0])
	if err != nil {
		return false, fmt.Errorf("读取基线失败: %w", err)
	}

	now := p.now()

	if latest == nil {
		created, err := p.tryCreate(ctx, userUID, category, metrics, now)
		if err != nil {
			return false, err
		}
		return created, nil
	}

	if p.isStale(latest, now) {
		// 过期重算窗口：从上一条基线的样本末端到现在
		if err := p.recompute(ctx, userUID, category, metrics, latest.SessEnd, now); err != nil {
			return false, err
		}
	}
	return false, nil
}

// isStale 基线过期：年龄 ≥ 15 天，或 median/MAD 任一为空
func (p *Protocol) isStale(b *schema.BaselineMetric, now time.Time) bool {
	if now.Sub(b.CreatedAt) >= minAgeDays*24*time.Hour {
		return true
	}
	return b.Median == nil || b.MAD == nil
}

// tryCreate 首次建立：要求首末样本跨度 ≥ 14 天且首个样本年龄 ≥ 15 天
func (p *Protocol) tryCreate(ctx context.Context, userUID, category string, metrics []string, now time.Time) (bool, error) {
	points, err := p.src.MetricValues(ctx, userUID, metrics[0], time.Time{}, now)
	if err != nil {
		return false, fmt.Errorf("读取指标历史失败: %w", err)
	}
	if len(points) == 0 {
		return false, nil
	}

	first := points[0].Time
	last := points[len(points)-1].Time
	if last.Sub(first) < minSpanDays*24*time.Hour || now.Sub(first) < minAgeDays*24*time.Hour {
		slog.Info("数据跨度不足，暂不建立基线",
			"user", userUID, "category", category,
			"span_days", last.Sub(first).Hours()/24, "age_days", now.Sub(first).Hours()/24)
		return false, nil
	}

	if err := p.recompute(ctx, userUID, category, metrics, time.Time{}, now); err != nil {
		return false, err
	}
	slog.Info("首次建立基线", "user", userUID, "category", category)
	return true, nil
}

// recompute 对每个指标在 [start, now] 上计算均值/标准差/中位数/MAD 并追加记录
func (p *Protocol) recompute(ctx context.Context, userUID, category string, metrics []string, start, now time.Time) error {
	rows := make([]schema.BaselineMetric, 0, len(metrics))
	for _, metric := range metrics {
		points, err := p.src.MetricValues(ctx, userUID, metric, start, now)
		if err != nil {
			return fmt.Errorf("读取指标 %s 历史失败: %w", metric, err)
		}
		if len(points) == 0 {
			slog.Warn("指标窗口内无样本，跳过基线", "user", userUID, "metric", metric)
			continue
		}

		values := make([]float64, len(points))
		for i, pt := range points {
			values[i] = pt.Value
		}

		median := Median(values)
		mad := MAD(values)
		rows = append(rows, schema.BaselineMetric{
			UserUID:      userUID,
			MetricName:   metric,
			Mean:         Mean(values),
			Std:          SampleStd(values),
			Median:       &median,
			MAD:          &mad,
			SessStart:    points[0].Time,
			SessEnd:      points[len(points)-1].Time,
			DataCategory: category,
		})
	}

	if len(rows) == 0 {
		return nil
	}
	if err := p.rec.AppendBaselines(ctx, rows); err != nil {
		return fmt.Errorf("写入基线失败: %w", err)
	}
	return nil
}

// Score 对单个值计算相对当前基线的修正 z 分数。
// 无基线或基线字段为空时返回 0（BaselineUnavailable，不中断兄弟指标）。
func (p *Protocol) Score(ctx context.Context, userUID, metric string, value *float64) float64 {
	b, err := p.rec.LatestBaseline(ctx, userUID, metric)
	if err != nil {
		slog.Error("读取基线失败，z 分数按 0 处理", "user", userUID, "metric", metric, "error", err)
		return 0
	}
	if b == nil || b.Median == nil || b.MAD == nil {
		slog.Info("指标尚无可用基线，z 分数按 0 处理", "user", userUID, "metric", metric)
		return 0
	}
	return ModifiedZ(value, *b.Median, *b.MAD)
}

// Backfill 首次建立基线后的历史回填扩展点。
// 当前仅记录日志，保留给后续版本实现。
func (p *Protocol) Backfill(ctx context.Context, userUID, category string) error {
	slog.Info("基线回填扩展点（未实现）", "user", userUID, "category", category)
	return nil
}
