package baseline

// 指标名。基线表、z 分数与综合评分统一使用这组键。
const (
	// 睡眠
	MetricSleepTime      = "sleep_time"
	MetricSQS            = "sqs"
	MetricSleepStartTime = "sleep_start_time"
	MetricSleepEndTime   = "sleep_end_time"

	// 设备交互
	MetricScreenTime   = "screen_time"
	MetricLowLightTime = "low_light_day_time"
	MetricDropEvents   = "device_drop_events"

	// 活动
	MetricActiveMinutes = "daily_active_minutes"

	// 通话
	MetricMissedRatio = "missed_call_ratio"
	MetricAvgCallDur  = "avg_call_duration"
	MetricTotalCalls  = "total_calls_in_a_day"

	// 移动性
	MetricTimeInHome       = "total_time_spend_in_home_seconds"
	MetricTimeTraveling    = "total_time_spend_traveling_seconds"
	MetricTimeOutOfHome    = "total_time_spend_out_of_home_seconds"
	MetricDistanceKm       = "total_distance_traveled_km"
	MetricAvgLocationHours = "average_time_spend_in_locations_hours"
	MetricUniqueLocations  = "number_of_unique_locations"
	MetricHullArea         = "convex_hull_area_m2"
	MetricSDEArea          = "sde_area_m2"
	MetricMaxDistTime      = "max_distance_from_home_time"
	MetricEntropy          = "entropy"

	// 键盘（每会话）
	MetricPressureIntensity    = "pressure_intensity"
	MetricEffortToOutput       = "effort_to_output_ratio"
	MetricRhythmStability      = "typing_rhythm_stability"
	MetricCognitiveIndex       = "cognitive_processing_index"
	MetricPauseToProduction    = "pause_to_production_ratio"
	MetricCorrectionEfficiency = "correction_efficiency"
	MetricCognitiveEfficiency  = "cognitive_processing_efficiency"
	MetricNetProductionRate    = "net_production_rate"
)

// SleepMetrics 睡眠类别参与基线的指标
func SleepMetrics() []string {
	return []string{MetricSleepTime, MetricSQS, MetricSleepStartTime, MetricSleepEndTime}
}

// InteractionMetrics 设备交互类别参与基线的指标
func InteractionMetrics() []string {
	return []string{MetricScreenTime, MetricLowLightTime, MetricDropEvents}
}

// ActivityMetrics 活动类别参与基线的指标
func ActivityMetrics() []string {
	return []string{MetricActiveMinutes}
}

// CallMetrics 通话类别参与基线的指标
func CallMetrics() []string {
	return []string{MetricMissedRatio, MetricAvgCallDur, MetricTotalCalls}
}

// GPSMetrics 移动性类别参与基线的指标
func GPSMetrics() []string {
	return []string{
		MetricTimeInHome, MetricTimeTraveling, MetricTimeOutOfHome,
		MetricDistanceKm, MetricAvgLocationHours, MetricUniqueLocations,
		MetricHullArea, MetricSDEArea, MetricMaxDistTime, MetricEntropy,
	}
}

// SleepDecisionMetrics 参与睡眠综合评分的指标。
// 睡眠时长与入睡/起床时刻只做基线与 z 分数，不计入判定。
func SleepDecisionMetrics() []string {
	return []string{MetricSQS}
}

// CallDecisionMetrics 参与通话综合评分的指标，平均时长不计入判定
func CallDecisionMetrics() []string {
	return []string{MetricMissedRatio, MetricTotalCalls}
}

// GPSDecisionMetrics 参与移动性综合评分的指标。
// 平均驻留时长、最远点时刻与熵只做基线与 z 分数，不计入判定。
func GPSDecisionMetrics() []string {
	return []string{
		MetricTimeInHome, MetricTimeTraveling, MetricTimeOutOfHome,
		MetricDistanceKm, MetricUniqueLocations, MetricHullArea, MetricSDEArea,
	}
}

// TypingMetrics 八项键盘指标
func TypingMetrics() []string {
	return []string{
		MetricPressureIntensity, MetricEffortToOutput, MetricRhythmStability,
		MetricCognitiveIndex, MetricPauseToProduction, MetricCorrectionEfficiency,
		MetricCognitiveEfficiency, MetricNetProductionRate,
	}
}

// directions 每个指标的方向：+1 表示数值越高越好，-1 表示越高越差。
// 综合评分前按方向归一，使正分恒表示"好于基线"。
var directions = map[string]float64{
	MetricSleepTime:      1,
	MetricSQS:            1,
	MetricSleepStartTime: 1,
	MetricSleepEndTime:   1,

	MetricScreenTime:   -1,
	MetricLowLightTime: -1,
	MetricDropEvents:   -1,

	MetricActiveMinutes: 1,

	MetricMissedRatio: -1,
	MetricAvgCallDur:  1,
	MetricTotalCalls:  1,

	MetricTimeInHome:       -1,
	MetricTimeTraveling:    1,
	MetricTimeOutOfHome:    1,
	MetricDistanceKm:       1,
	MetricAvgLocationHours: -1,
	MetricUniqueLocations:  1,
	MetricHullArea:         1,
	MetricSDEArea:          1,
	MetricMaxDistTime:      1,
	MetricEntropy:          1,

	MetricPressureIntensity:    -1,
	MetricEffortToOutput:       -1,
	MetricRhythmStability:      1,
	MetricCognitiveIndex:       -1,
	MetricPauseToProduction:    -1,
	MetricCorrectionEfficiency: 1,
	MetricCognitiveEfficiency:  1,
	MetricNetProductionRate:    1,
}

// Direction 指标方向（未知指标按 +1 处理）
func Direction(metric string) float64 {
	if d, ok := directions[metric]; ok {
		return d
	}
	return 1
}
