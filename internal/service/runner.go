package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/metronlab/metron/internal/analysis"
	"github.com/metronlab/metron/internal/analysis/spatial"
	"github.com/metronlab/metron/internal/baseline"
	"github.com/metronlab/metron/internal/repository"
	"github.com/metronlab/metron/internal/schema"
	"github.com/metronlab/metron/internal/store"
)

// 采集端来源
const (
	OriginSensors  = "LogMyself"
	OriginKeyboard = "LogBoard"
)

// 睡眠检测回看：主睡眠通常跨午夜，需要带上前一天下午起的采样
const sleepLookbackHours = 12

// AnalysisRunner 单用户单日的分析执行器：
// 从本地缓存取原始事件，跑各类分析器，结果与 z 分数落分析库。
type AnalysisRunner struct {
	motionRepo      *repository.MotionRepository
	interactionRepo *repository.InteractionRepository
	activityRepo    *repository.ActivityRepository
	callRepo        *repository.CallRepository
	gpsRepo         *repository.GPSRepository
	typingRepo      *repository.TypingRepository

	store    *store.Store
	protocol *baseline.Protocol
	loc      *time.Location

	minGPSEvents int
}

// NewAnalysisRunner 创建分析执行器
func NewAnalysisRunner(cache *repository.CacheDB, st *store.Store, loc *time.Location, minGPSEvents int) *AnalysisRunner {
	return &AnalysisRunner{
		motionRepo:      repository.NewMotionRepository(cache.DB),
		interactionRepo: repository.NewInteractionRepository(cache.DB),
		activityRepo:    repository.NewActivityRepository(cache.DB),
		callRepo:        repository.NewCallRepository(cache.DB),
		gpsRepo:         repository.NewGPSRepository(cache.DB),
		typingRepo:      repository.NewTypingRepository(cache.DB),
		store:           st,
		protocol:        baseline.NewProtocol(st, st),
		loc:             loc,
		minGPSEvents:    minGPSEvents,
	}
}

// RunUserDay 对单个用户执行某天的全部分析。
// 传感器端用户跑行为类五项分析，键盘端用户跑键盘会话分析。
// 单项数据不足不是错误：跳过该项，继续其余项。
func (r *AnalysisRunner) RunUserDay(ctx context.Context, user schema.User, day string) error {
	if err := r.store.EnsureUser(ctx, &user); err != nil {
		return err
	}
	if _, err := r.store.CreateDailyAnalysis(ctx, user.UID, day, time.Now().In(r.loc)); err != nil {
		return err
	}

	switch user.AppOrigin {
	case OriginKeyboard:
		return r.runTyping(ctx, user.UID, day)
	default:
		return r.runBehavioral(ctx, user.UID, day)
	}
}

func (r *AnalysisRunner) runBehavioral(ctx context.Context, userUID, day string) error {
	start, end, err := repository.DayRange(day, r.loc)
	if err != nil {
		return err
	}

	steps := []struct {
		name string
		run  func(context.Context, string, string, time.Time, time.Time) error
	}{
		{"sleep", r.runSleep},
		{"interaction", r.runInteraction},
		{"activity", r.runActivity},
		{"calls", r.runCalls},
		{"gps", r.runGPS},
	}

	for _, step := range steps {
		err := step.run(ctx, userUID, day, start, end)
		if errors.Is(err, analysis.ErrInsufficientData) {
			slog.Warn("分析数据不足，跳过", "user", userUID, "day", day, "step", step.name, "reason", err)
			continue
		}
		if err != nil {
			return fmt.Errorf("%s 分析失败: %w", step.name, err)
		}
	}
	return nil
}

// runSleep 睡眠窗口检测、合并、归属与质量评分
func (r *AnalysisRunner) runSleep(ctx context.Context, userUID, day string, start, end time.Time) error {
	samples, err := r.motionRepo.ListRange(ctx, userUID, start.Add(-sleepLookbackHours*time.Hour), end)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return analysis.WrapInsufficient("无睡眠采样")
	}

	windows := analysis.AssignSleepToDay(
		analysis.MergeSleepWindows(analysis.DetectSleepWindows(samples)), start)
	if len(windows) == 0 {
		return analysis.WrapInsufficient("当天无睡眠窗口")
	}

	screenIntervals := r.screenIntervals(ctx, userUID, start.Add(-sleepLookbackHours*time.Hour), end)

	rows := make([]schema.SleepAnalysis, 0, len(windows))
	for _, w := range windows {
		row := schema.SleepAnalysis{
			UserUID:        userUID,
			DayAnalyzed:    day,
			Type:           w.Type,
			EstimatedStart: w.Start,
			EstimatedEnd:   w.End,
			DurationMin:    w.DurationMin,
			ActualDuration: w.ActualMin,
		}

		if w.Type == analysis.SleepMain {
			screenMs := analysis.ScreenOnDuring(screenIntervals, w.Start, w.End) * 1000
			quality, err := analysis.ScoreSleepQuality(w, screenMs)
			if err != nil {
				return err
			}
			row.SleepScreenMs = screenMs
			row.NormTotalSleep = quality.NTS
			row.NormEfficiency = quality.NSE
			row.NormScreenTime = quality.NST
			row.NormAlignment = quality.NTA
			row.QualityScore = quality.SQS
		}
		rows = append(rows, row)
	}

	saved, err := r.store.SaveSleepAnalyses(ctx, rows)
	if err != nil {
		return err
	}

	for _, row := range saved {
		if row.Type != analysis.SleepMain {
			continue
		}
		if err := r.ensureBaseline(ctx, userUID, schema.CategoryBehavioral, baseline.SleepMetrics()); err != nil {
			return err
		}

		z := map[string]float64{
			baseline.MetricSleepTime:      r.score(ctx, userUID, baseline.MetricSleepTime, row.DurationMin),
			baseline.MetricSQS:            r.score(ctx, userUID, baseline.MetricSQS, row.QualityScore),
			baseline.MetricSleepStartTime: r.score(ctx, userUID, baseline.MetricSleepStartTime, fractionalHour(row.EstimatedStart)),
			baseline.MetricSleepEndTime:   r.score(ctx, userUID, baseline.MetricSleepEndTime, fractionalHour(row.EstimatedEnd)),
		}
		err = r.store.CreateSleepZScores(ctx, &schema.SleepZScores{
			SleepAnalysisID: row.ID,
			SleepTime:       z[baseline.MetricSleepTime],
			SQS:             z[baseline.MetricSQS],
			SleepStartTime:  z[baseline.MetricSleepStartTime],
			SleepEndTime:    z[baseline.MetricSleepEndTime],
		})
		if err != nil {
			return err
		}

		score := baseline.Composite(z, baseline.SleepDecisionMetrics())
		if err := r.store.UpdateDecision(ctx, schema.CategorySleep, row.ID, score, baseline.Decide(score)); err != nil {
			return err
		}
	}
	return nil
}

// screenIntervals 屏幕点亮区间的混合视图，睡中亮屏统计用。
// 对账失败（无数据）时按零亮屏处理。
func (r *AnalysisRunner) screenIntervals(ctx context.Context, userUID string, start, end time.Time) []analysis.Interval {
	sessions, err := r.interactionRepo.ListScreenSessions(ctx, userUID, start, end)
	if err != nil {
		slog.Error("查询屏幕会话失败", "user", userUID, "error", err)
		return nil
	}
	unlocks, err := r.interactionRepo.ListUnlocks(ctx, userUID, start, end)
	if err != nil {
		slog.Error("查询解锁事件失败", "user", userUID, "error", err)
		return nil
	}
	samples, err := r.motionRepo.ListRange(ctx, userUID, start, end)
	if err != nil {
		slog.Error("查询睡眠采样失败", "user", userUID, "error", err)
		return nil
	}

	_, intervals, err := analysis.ReconcileScreenTime(sessions, unlocks, samples)
	if err != nil {
		return nil
	}
	return intervals
}

// runInteraction 设备交互：屏幕时间对账、昼夜分桶、低光照、跌落与应用使用
func (r *AnalysisRunner) runInteraction(ctx context.Context, userUID, day string, start, end time.Time) error {
	sessions, err := r.interactionRepo.ListScreenSessions(ctx, userUID, start, end)
	if err != nil {
		return err
	}
	unlocks, err := r.interactionRepo.ListUnlocks(ctx, userUID, start, end)
	if err != nil {
		return err
	}
	samples, err := r.motionRepo.ListRange(ctx, userUID, start, end)
	if err != nil {
		return err
	}

	screenSec, intervals, err := analysis.ReconcileScreenTime(sessions, unlocks, samples)
	if err != nil {
		return err
	}

	lowLight, err := r.interactionRepo.ListLowLight(ctx, userUID, start, end)
	if err != nil {
		return err
	}
	drops, err := r.interactionRepo.ListDrops(ctx, userUID, start, end)
	if err != nil {
		return err
	}
	appTotals, err := r.motionRepo.AppUsageRange(ctx, userUID, start, end)
	if err != nil {
		return err
	}

	row := &schema.InteractionAnalysis{
		UserUID:       userUID,
		DayAnalyzed:   day,
		ScreenTimeSec: screenSec,
		LowLightSec:   analysis.LowLightSeconds(lowLight),
		DropEvents:    int64(len(drops)),
	}

	circadian := make([]schema.CircadianScreenTime, 0)
	for _, share := range analysis.CircadianScreenTime(intervals, screenSec) {
		circadian = append(circadian, schema.CircadianScreenTime{
			DaySection:  share.Section,
			DurationSec: share.DurationSec,
			Percentage:  share.Percentage,
		})
	}

	usages := make([]analysis.AppUsage, 0, len(appTotals))
	for _, t := range appTotals {
		usages = append(usages, analysis.AppUsage{AppName: t.AppName, TimeUsedSec: t.TimeUsedSec})
	}
	apps := make([]schema.AppUsage, 0, 3)
	for _, u := range analysis.TopApps(usages, 3) {
		apps = append(apps, schema.AppUsage{AppName: u.AppName, TimeUsedSec: u.TimeUsedSec})
	}

	id, err := r.store.SaveInteractionAnalysis(ctx, row, circadian, apps)
	if err != nil {
		return err
	}

	if err := r.ensureBaseline(ctx, userUID, schema.CategoryBehavioral, baseline.InteractionMetrics()); err != nil {
		return err
	}
	z := map[string]float64{
		baseline.MetricScreenTime:   r.score(ctx, userUID, baseline.MetricScreenTime, screenSec),
		baseline.MetricLowLightTime: r.score(ctx, userUID, baseline.MetricLowLightTime, row.LowLightSec),
		baseline.MetricDropEvents:   r.score(ctx, userUID, baseline.MetricDropEvents, float64(row.DropEvents)),
	}
	err = r.store.CreateInteractionZScores(ctx, &schema.InteractionZScores{
		AnalysisID: id,
		ScreenTime: z[baseline.MetricScreenTime],
		LowLight:   z[baseline.MetricLowLightTime],
		DropEvents: z[baseline.MetricDropEvents],
	})
	if err != nil {
		return err
	}

	score := baseline.Composite(z, baseline.InteractionMetrics())
	return r.store.UpdateDecision(ctx, schema.CategoryInteraction, id, score, baseline.Decide(score))
}

// runActivity 活动识别：类型占比、切换频率、活跃分钟、熵与静止占比
func (r *AnalysisRunner) runActivity(ctx context.Context, userUID, day string, start, end time.Time) error {
	events, err := r.activityRepo.ListRange(ctx, userUID, start, end)
	if err != nil {
		return err
	}

	stats, err := analysis.AnalyzeActivity(events)
	if err != nil {
		return err
	}

	row := &schema.ActivityAnalysis{
		UserUID:            userUID,
		DayAnalyzed:        day,
		SwitchingFrequency: int64(stats.SwitchingFrequency),
		DailyActiveMinutes: int64(stats.ActiveMinutes),
		Entropy:            stats.Entropy,
		InactivityPercent:  stats.InactivityPct,
	}

	sections := make([]schema.ActivityDaySection, 0, len(stats.SectionPercentages))
	for _, name := range analysis.DaySectionNames() {
		byType, ok := stats.SectionPercentages[name]
		if !ok {
			continue
		}
		sections = append(sections, schema.ActivityDaySection{
			DaySection: name,
			InVehicle:  byType["in_vehicle"],
			OnBicycle:  byType["on_bicycle"],
			OnFoot:     byType["on_foot"],
			Still:      byType["still"],
			Tilting:    byType["tilting"],
			Unknown:    byType["unknown"],
		})
	}

	id, err := r.store.SaveActivityAnalysis(ctx, row, sections)
	if err != nil {
		return err
	}

	if err := r.ensureBaseline(ctx, userUID, schema.CategoryBehavioral, baseline.ActivityMetrics()); err != nil {
		return err
	}
	z := map[string]float64{
		baseline.MetricActiveMinutes: r.score(ctx, userUID, baseline.MetricActiveMinutes, float64(row.DailyActiveMinutes)),
	}
	err = r.store.CreateActivityZScores(ctx, &schema.ActivityZScores{
		AnalysisID:         id,
		DailyActiveMinutes: z[baseline.MetricActiveMinutes],
	})
	if err != nil {
		return err
	}

	score := baseline.Composite(z, baseline.ActivityMetrics())
	return r.store.UpdateDecision(ctx, schema.CategoryActivity, id, score, baseline.Decide(score))
}

// runCalls 通话统计
func (r *AnalysisRunner) runCalls(ctx context.Context, userUID, day string, start, end time.Time) error {
	records, err := r.callRepo.ListRange(ctx, userUID, start, end)
	if err != nil {
		return err
	}

	stats, err := analysis.AnalyzeCalls(records)
	if err != nil {
		return err
	}

	row := &schema.CallAnalysis{
		UserUID:        userUID,
		DayAnalyzed:    day,
		MissedRatio:    stats.MissedRatio,
		NightRatio:     stats.NightRatio,
		DayRatio:       stats.DayRatio,
		AvgDurationSec: stats.AvgDurationSec,
		TotalCalls:     int64(stats.TotalCalls),
	}

	id, err := r.store.SaveCallAnalysis(ctx, row)
	if err != nil {
		return err
	}

	if err := r.ensureBaseline(ctx, userUID, schema.CategoryBehavioral, baseline.CallMetrics()); err != nil {
		return err
	}
	z := map[string]float64{
		baseline.MetricMissedRatio: r.score(ctx, userUID, baseline.MetricMissedRatio, stats.MissedRatio),
		baseline.MetricAvgCallDur:  r.score(ctx, userUID, baseline.MetricAvgCallDur, stats.AvgDurationSec),
		baseline.MetricTotalCalls:  r.score(ctx, userUID, baseline.MetricTotalCalls, float64(stats.TotalCalls)),
	}
	err = r.store.CreateCallZScores(ctx, &schema.CallZScores{
		AnalysisID:  id,
		MissedRatio: z[baseline.MetricMissedRatio],
		AvgDuration: z[baseline.MetricAvgCallDur],
		TotalCalls:  z[baseline.MetricTotalCalls],
	})
	if err != nil {
		return err
	}

	score := baseline.Composite(z, baseline.CallDecisionMetrics())
	return r.store.UpdateDecision(ctx, schema.CategoryCalls, id, score, baseline.Decide(score))
}

// runGPS 移动性分析：清洗、关键位置、驻留/移动与空间特征
func (r *AnalysisRunner) runGPS(ctx context.Context, userUID, day string, start, end time.Time) error {
	fixes, err := r.gpsRepo.ListRange(ctx, userUID, start, end)
	if err != nil {
		return err
	}
	if len(fixes) < r.minGPSEvents {
		return analysis.WrapInsufficient("GPS 事件数 %d 低于阈值 %d", len(fixes), r.minGPSEvents)
	}

	points := make([]spatial.Point, len(fixes))
	for i, f := range fixes {
		points[i] = spatial.Point{
			ID:            f.EventID,
			Lat:           f.Latitude,
			Lon:           f.Longitude,
			Accuracy:      f.Accuracy,
			Bearing:       f.Bearing,
			Speed:         f.Speed,
			SpeedAccuracy: f.SpeedAccuracy,
			Time:          f.Timestamp,
		}
	}

	res, err := spatial.Analyze(points)
	if err != nil {
		return err
	}

	var firstMove int64
	if res.FirstMove != nil {
		firstMove = res.FirstMove.Unix()
	}
	row := &schema.GPSAnalysis{
		UserUID:          userUID,
		DayAnalyzed:      day,
		TimeInHomeSec:    res.TimeInHomeSec,
		TimeTravelingSec: res.TimeTravelingSec,
		TimeOutOfHomeSec: res.TimeOutOfHomeSec,
		DistanceKm:       res.DistanceKm,
		AvgLocationHours: res.AvgLocationHours,
		UniqueLocations:  int64(res.UniqueLocations),
		TotalLocations:   int64(res.TotalLocations),
		FirstMoveAfter3:  firstMove,
		Entropy:          res.Entropy,
		ActivePeriod:     res.ActivePeriod,
	}

	keyLocs := make([]schema.GPSKeyLocation, 0, len(res.Stays))
	for _, s := range res.Stays {
		locType := spatial.LocTypeNotIdentified
		if s.Home {
			locType = spatial.LocTypeHome
		}
		keyLocs = append(keyLocs, schema.GPSKeyLocation{
			KeyLocID:     s.LocationID,
			Latitude:     s.Lat,
			Longitude:    s.Lon,
			TimeSpentSec: s.TotalSec,
			FixCount:     int64(s.Events),
			LocType:      locType,
		})
	}

	transitions := make([]schema.GPSTransition, 0, len(res.Transitions))
	for _, t := range res.Transitions {
		transitions = append(transitions, schema.GPSTransition{
			FromKeyLoc:  t.FromID,
			ToKeyLoc:    t.ToID,
			StartTime:   t.Start,
			EndTime:     t.End,
			TravelSec:   t.TravelSec,
			DistanceKm:  t.DistanceKm,
			FixesInPath: int64(t.Events),
		})
	}

	var maxDistTS int64
	if !res.MaxDist.At.IsZero() {
		maxDistTS = res.MaxDist.At.Unix()
	}
	features := &schema.GPSSpatialFeatures{
		HullAreaM2:       res.Hull.AreaM2,
		HullPerimeterM:   res.Hull.PerimeterM,
		Compactness:      res.Hull.Compactness,
		SDECenterLat:     res.SDE.CenterLat,
		SDECenterLon:     res.SDE.CenterLon,
		SDEWidthM:        res.SDE.WidthM,
		SDEHeightM:       res.SDE.HeightM,
		SDEAngleDeg:      res.SDE.AngleDeg,
		SDEAreaM2:        res.SDE.AreaM2,
		MaxDistHomeKm:    res.MaxDist.DistanceKm,
		MaxDistTimestamp: maxDistTS,
		MaxDistLat:       res.MaxDist.Lat,
		MaxDistLon:       res.MaxDist.Lon,
	}

	id, err := r.store.SaveGPSAnalysis(ctx, row, keyLocs, transitions, features)
	if err != nil {
		return err
	}

	if err := r.ensureBaseline(ctx, userUID, schema.CategoryBehavioral, baseline.GPSMetrics()); err != nil {
		return err
	}
	z := map[string]float64{
		baseline.MetricTimeInHome:       r.score(ctx, userUID, baseline.MetricTimeInHome, res.TimeInHomeSec),
		baseline.MetricTimeTraveling:    r.score(ctx, userUID, baseline.MetricTimeTraveling, res.TimeTravelingSec),
		baseline.MetricTimeOutOfHome:    r.score(ctx, userUID, baseline.MetricTimeOutOfHome, res.TimeOutOfHomeSec),
		baseline.MetricDistanceKm:       r.score(ctx, userUID, baseline.MetricDistanceKm, res.DistanceKm),
		baseline.MetricAvgLocationHours: r.score(ctx, userUID, baseline.MetricAvgLocationHours, res.AvgLocationHours),
		baseline.MetricUniqueLocations:  r.score(ctx, userUID, baseline.MetricUniqueLocations, float64(res.UniqueLocations)),
		baseline.MetricHullArea:         r.score(ctx, userUID, baseline.MetricHullArea, res.Hull.AreaM2),
		baseline.MetricSDEArea:          r.score(ctx, userUID, baseline.MetricSDEArea, res.SDE.AreaM2),
		baseline.MetricMaxDistTime:      r.score(ctx, userUID, baseline.MetricMaxDistTime, float64(maxDistTS)),
		baseline.MetricEntropy:          r.score(ctx, userUID, baseline.MetricEntropy, res.Entropy),
	}
	err = r.store.CreateGPSZScores(ctx, &schema.GPSZScores{
		AnalysisID:       id,
		TimeInHome:       z[baseline.MetricTimeInHome],
		TimeTraveling:    z[baseline.MetricTimeTraveling],
		TimeOutOfHome:    z[baseline.MetricTimeOutOfHome],
		DistanceKm:       z[baseline.MetricDistanceKm],
		AvgLocationHours: z[baseline.MetricAvgLocationHours],
		UniqueLocations:  z[baseline.MetricUniqueLocations],
		HullArea:         z[baseline.MetricHullArea],
		SDEArea:          z[baseline.MetricSDEArea],
		MaxDistTime:      z[baseline.MetricMaxDistTime],
		Entropy:          z[baseline.MetricEntropy],
	})
	if err != nil {
		return err
	}

	score := baseline.Composite(z, baseline.GPSDecisionMetrics())
	return r.store.UpdateDecision(ctx, schema.CategoryGPS, id, score, baseline.Decide(score))
}

// runTyping 键盘会话逐个评分，再汇总当天判定分布
func (r *AnalysisRunner) runTyping(ctx context.Context, userUID, day string) error {
	start, end, err := repository.DayRange(day, r.loc)
	if err != nil {
		return err
	}
	sessions, err := r.typingRepo.ListRange(ctx, userUID, start, end)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		slog.Warn("当天无键盘会话", "user", userUID, "day", day)
		return nil
	}

	if err := r.ensureBaseline(ctx, userUID, schema.CategoryTyping, baseline.TypingMetrics()); err != nil {
		return err
	}

	for _, s := range sessions {
		err := r.store.SaveTypingSessionResult(ctx, &schema.TypingSessionResult{
			SessionUID:  s.SessionUID,
			UserUID:     userUID,
			SessionDate: s.DateCreated,
		})
		if err != nil {
			return err
		}

		values := analysis.TypingSessionMetrics(s)
		z := make(map[string]float64, len(values))
		rows := make([]schema.TypingMetricValue, 0, len(values))
		for _, metric := range baseline.TypingMetrics() {
			v, ok := values[metric]
			if !ok {
				continue
			}
			zs := r.score(ctx, userUID, metric, v)
			z[metric] = zs
			rows = append(rows, schema.TypingMetricValue{
				SessionUID:  s.SessionUID,
				MetricName:  metric,
				UserUID:     userUID,
				SessionDate: s.DateCreated,
				Value:       v,
				ZScore:      zs,
			})
		}
		if err := r.store.SaveTypingMetricValues(ctx, rows); err != nil {
			return err
		}

		score := baseline.Composite(z, baseline.TypingMetrics())
		if err := r.store.UpdateTypingSessionDecision(ctx, s.SessionUID, score, baseline.Decide(score)); err != nil {
			return err
		}
	}

	decisions, err := r.store.TypingDecisionsOfDay(ctx, userUID, day)
	if err != nil {
		return err
	}
	labels := make([]string, 0, len(decisions))
	for _, d := range decisions {
		labels = append(labels, d.Decision)
	}
	stats, err := analysis.DailyTypingStats(labels)
	if err != nil {
		return err
	}
	_, err = r.store.SaveTypingDailyStats(ctx, &schema.TypingDailyStats{
		UserUID:       userUID,
		DayAnalyzed:   day,
		PctExcellent:  stats.PctExcellent,
		PctVeryGood:   stats.PctVeryGood,
		PctNormal:     stats.PctNormal,
		PctVeryBad:    stats.PctVeryBad,
		PctCritical:   stats.PctCritical,
		TotalScore:    stats.TotalScore,
		SessionsCount: int64(stats.Sessions),
	})
	if err != nil {
		return err
	}

	// 每指标的当日分布，供排查会话间波动
	for _, metric := range baseline.TypingMetrics() {
		values, err := r.store.TypingMetricValuesOfDay(ctx, userUID, metric, day)
		if err != nil {
			slog.Error("查询键盘指标值失败", "user", userUID, "day", day, "metric", metric, "error", err)
			continue
		}
		if len(values) == 0 {
			continue
		}
		slog.Info("键盘指标当日分布", "user", userUID, "day", day, "metric", metric,
			"sessions", len(values), "mean", baseline.Mean(values), "std", baseline.SampleStd(values))
	}
	return nil
}

// ensureBaseline 校验/建立类别基线，首次建立时触发回填扩展点
func (r *AnalysisRunner) ensureBaseline(ctx context.Context, userUID, category string, metrics []string) error {
	first, err := r.protocol.Ensure(ctx, userUID, category, metrics)
	if err != nil {
		return err
	}
	if first {
		if err := r.protocol.Backfill(ctx, userUID, category); err != nil {
			slog.Error("基线回填失败", "user", userUID, "category", category, "error", err)
		}
	}
	return nil
}

func (r *AnalysisRunner) score(ctx context.Context, userUID, metric string, value float64) float64 {
	return r.protocol.Score(ctx, userUID, metric, &value)
}

// fractionalHour 当天内的小数小时（0-24）
func fractionalHour(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}
