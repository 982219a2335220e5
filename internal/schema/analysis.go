package schema

import "time"

// 分析结果表（落远端分析库；postgres，测试中用内存 sqlite）。
// 所有表以 (user_uid, day_analyzed) 为自然键，重复插入视为成功。

// 行为分析类别名，评分/判定回写时定位类别主表
const (
	CategorySleep       = "SLEEP_DATA"
	CategoryInteraction = "DAILY_DEVICE_INTERACTION"
	CategoryActivity    = "ACTIVITY_BEHAVIOR"
	CategoryCalls       = "CALL_METRICS"
	CategoryGPS         = "GPS_METRICS"
)

// DailyAnalysis 一次按天分析的顶层事件
type DailyAnalysis struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserUID      string    `gorm:"size:128;uniqueIndex:idx_daily_user_day" json:"user_uid"`
	DayAnalyzed  string    `gorm:"size:10;uniqueIndex:idx_daily_user_day" json:"day_analyzed"` // YYYY-MM-DD
	AnalysisDate time.Time `json:"analysis_date"`                                              // 分析执行时间
}

// TableName 指定表名
func (DailyAnalysis) TableName() string { return "daily_analyses" }

// SleepAnalysis 睡眠窗口分析结果（主睡眠 + 小睡，每窗口一行）
type SleepAnalysis struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserUID         string    `gorm:"size:128;index" json:"user_uid"`
	DayAnalyzed     string    `gorm:"size:10;index" json:"day_analyzed"`
	Type            string    `gorm:"size:16" json:"type"` // main_sleep / nap_sleep
	EstimatedStart  time.Time `json:"estimated_start"`
	EstimatedEnd    time.Time `json:"estimated_end"`
	DurationMin     float64   `json:"duration_min"`        // 合并后的墙钟时长
	ActualDuration  float64   `json:"actual_duration_min"` // 合并前各窗口时长之和
	SleepScreenMs   float64   `json:"sleep_screen_ms"`
	NormTotalSleep  float64   `json:"norm_total_sleep"`
	NormEfficiency  float64   `json:"norm_efficiency"`
	NormScreenTime  float64   `json:"norm_screen_time"`
	NormAlignment   float64   `json:"norm_alignment"`
	QualityScore    float64   `json:"quality_score"` // sqs
	CognitiveScore  *float64  `json:"cognitive_score"`
	CognitiveResult string    `gorm:"size:16" json:"cognitive_decision"`
}

// TableName 指定表名
func (SleepAnalysis) TableName() string { return "sleep_analyses" }

// SleepZScores 睡眠类指标的修正 z 分数
type SleepZScores struct {
	ID              int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	SleepAnalysisID int64   `gorm:"index" json:"sleep_analysis_id"`
	SleepTime       float64 `json:"sleep_time_z"`
	SQS             float64 `json:"sqs_z"`
	SleepStartTime  float64 `json:"sleep_start_time_z"`
	SleepEndTime    float64 `json:"sleep_end_time_z"`
}

// TableName 指定表名
func (SleepZScores) TableName() string { return "sleep_z_scores" }

// InteractionAnalysis 设备交互（屏幕时间 / 低光照 / 跌落）按天分析
type InteractionAnalysis struct {
	ID              int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserUID         string   `gorm:"size:128;uniqueIndex:idx_interaction_user_day" json:"user_uid"`
	DayAnalyzed     string   `gorm:"size:10;uniqueIndex:idx_interaction_user_day" json:"day_analyzed"`
	ScreenTimeSec   float64  `json:"screen_time_sec"`
	LowLightSec     float64  `json:"low_light_sec"`
	DropEvents      int64    `json:"drop_events"`
	CognitiveScore  *float64 `json:"cognitive_score"`
	CognitiveResult string   `gorm:"size:16" json:"cognitive_decision"`
}

// TableName 指定表名
func (InteractionAnalysis) TableName() string { return "interaction_analyses" }

// CircadianScreenTime 屏幕时间的昼夜节律分桶
type CircadianScreenTime struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	AnalysisID  int64   `gorm:"index" json:"analysis_id"` // InteractionAnalysis.ID
	DaySection  string  `gorm:"size:16" json:"day_section"`
	DurationSec float64 `json:"duration_sec"`
	Percentage  float64 `json:"percentage"`
}

// TableName 指定表名
func (CircadianScreenTime) TableName() string { return "circadian_screen_times" }

// AppUsage 按天应用使用（来自睡眠采样的应用归属）
type AppUsage struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	AnalysisID  int64   `gorm:"index" json:"analysis_id"` // InteractionAnalysis.ID
	AppName     string  `gorm:"size:255" json:"app_name"`
	TimeUsedSec float64 `json:"time_used_sec"`
}

// TableName 指定表名
func (AppUsage) TableName() string { return "app_usages" }

// InteractionZScores 设备交互指标 z 分数
type InteractionZScores struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	AnalysisID int64   `gorm:"index" json:"analysis_id"`
	ScreenTime float64 `json:"screen_time_z"`
	LowLight   float64 `json:"low_light_z"`
	DropEvents float64 `json:"drop_events_z"`
}

// TableName 指定表名
func (InteractionZScores) TableName() string { return "interaction_z_scores" }

// ActivityAnalysis 活动识别按天分析
type ActivityAnalysis struct {
	ID                 int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserUID            string   `gorm:"size:128;uniqueIndex:idx_activity_user_day" json:"user_uid"`
	DayAnalyzed        string   `gorm:"size:10;uniqueIndex:idx_activity_user_day" json:"day_analyzed"`
	SwitchingFrequency int64    `json:"switching_frequency"`
	DailyActiveMinutes int64    `json:"daily_active_minutes"`
	Entropy            float64  `json:"entropy"` // base-2
	InactivityPercent  float64  `json:"inactivity_percent"`
	CognitiveScore     *float64 `json:"cognitive_score"`
	CognitiveResult    string   `gorm:"size:16" json:"cognitive_decision"`
}

// TableName 指定表名
func (ActivityAnalysis) TableName() string { return "activity_analyses" }

// ActivityDaySection 各日段的活动类型占比
type ActivityDaySection struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	AnalysisID int64   `gorm:"index" json:"analysis_id"`
	DaySection string  `gorm:"size:16" json:"day_section"`
	InVehicle  float64 `json:"in_vehicle"`
	OnBicycle  float64 `json:"on_bicycle"`
	OnFoot     float64 `json:"on_foot"`
	Still      float64 `json:"still"`
	Tilting    float64 `json:"tilting"`
	Unknown    float64 `json:"unknown"`
}

// TableName 指定表名
func (ActivityDaySection) TableName() string { return "activity_day_sections" }

// ActivityZScores 活动指标 z 分数
type ActivityZScores struct {
	ID                 int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	AnalysisID         int64   `gorm:"index" json:"analysis_id"`
	DailyActiveMinutes float64 `json:"daily_active_minutes_z"`
}

// TableName 指定表名
func (ActivityZScores) TableName() string { return "activity_z_scores" }

// CallAnalysis 通话按天分析
type CallAnalysis struct {
	ID              int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserUID         string   `gorm:"size:128;uniqueIndex:idx_call_user_day" json:"user_uid"`
	DayAnalyzed     string   `gorm:"size:10;uniqueIndex:idx_call_user_day" json:"day_analyzed"`
	MissedRatio     float64  `json:"missed_ratio"` // 分数，不乘 100
	NightRatio      float64  `json:"night_ratio"`  // 百分比
	DayRatio        float64  `json:"day_ratio"`    // 百分比
	AvgDurationSec  float64  `json:"avg_duration_sec"`
	TotalCalls      int64    `json:"total_calls"`
	CognitiveScore  *float64 `json:"cognitive_score"`
	CognitiveResult string   `gorm:"size:16" json:"cognitive_decision"`
}

// TableName 指定表名
func (CallAnalysis) TableName() string { return "call_analyses" }

// CallZScores 通话指标 z 分数
type CallZScores struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	AnalysisID  int64   `gorm:"index" json:"analysis_id"`
	MissedRatio float64 `json:"missed_ratio_z"`
	AvgDuration float64 `json:"avg_duration_z"`
	TotalCalls  float64 `json:"total_calls_z"`
}

// TableName 指定表名
func (CallZScores) TableName() string { return "call_z_scores" }

// GPSAnalysis 移动性按天分析
type GPSAnalysis struct {
	ID               int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserUID          string   `gorm:"size:128;uniqueIndex:idx_gps_user_day" json:"user_uid"`
	DayAnalyzed      string   `gorm:"size:10;uniqueIndex:idx_gps_user_day" json:"day_analyzed"`
	TimeInHomeSec    float64  `json:"time_in_home_sec"`
	TimeTravelingSec float64  `json:"time_traveling_sec"`
	TimeOutOfHomeSec float64  `json:"time_out_of_home_sec"`
	DistanceKm       float64  `json:"distance_km"`
	AvgLocationHours float64  `json:"avg_location_hours"`
	UniqueLocations  int64    `json:"unique_locations"`
	TotalLocations   int64    `json:"total_locations"`
	FirstMoveAfter3  int64    `json:"first_move_after_3"` // Unix 秒，0 表示无
	Entropy          float64  `json:"entropy"`            // nats
	ActivePeriod     int      `json:"active_period"`      // 1 早 / 2 平 / 3 晚
	CognitiveScore   *float64 `json:"cognitive_score"`
	CognitiveResult  string   `gorm:"size:16" json:"cognitive_decision"`
}

// TableName 指定表名
func (GPSAnalysis) TableName() string { return "gps_analyses" }

// GPSKeyLocation 关键位置（按天重算，不跨天保留）
type GPSKeyLocation struct {
	ID           int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	AnalysisID   int64   `gorm:"index" json:"analysis_id"`
	KeyLocID     int     `json:"key_loc_id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	TimeSpentSec float64 `json:"time_spent_sec"`
	FixCount     int64   `json:"fix_count"`
	LocType      string  `gorm:"size:16" json:"loc_type"` // HOME / NOT_IDENTIFIED
}

// TableName 指定表名
func (GPSKeyLocation) TableName() string { return "gps_key_locations" }

// GPSTransition 关键位置之间的一次移动
type GPSTransition struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AnalysisID  int64     `gorm:"index" json:"analysis_id"`
	FromKeyLoc  int       `json:"from_key_loc"`
	ToKeyLoc    int       `json:"to_key_loc"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	TravelSec   float64   `json:"travel_sec"`
	DistanceKm  float64   `json:"distance_km"`
	FixesInPath int64     `json:"fixes_in_path"`
}

// TableName 指定表名
func (GPSTransition) TableName() string { return "gps_transitions" }

// GPSSpatialFeatures 凸包 / 标准差椭圆 / 离家最远点
type GPSSpatialFeatures struct {
	ID               int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	AnalysisID       int64   `gorm:"index" json:"analysis_id"`
	HullAreaM2       float64 `json:"hull_area_m2"`
	HullPerimeterM   float64 `json:"hull_perimeter_m"`
	Compactness      float64 `json:"compactness"`
	SDECenterLat     float64 `json:"sde_center_lat"`
	SDECenterLon     float64 `json:"sde_center_lon"`
	SDEWidthM        float64 `json:"sde_width_m"`
	SDEHeightM       float64 `json:"sde_height_m"`
	SDEAngleDeg      float64 `json:"sde_angle_deg"`
	SDEAreaM2        float64 `json:"sde_area_m2"`
	MaxDistHomeKm    float64 `json:"max_dist_home_km"`
	MaxDistTimestamp int64   `json:"max_dist_timestamp"` // Unix 秒，0 表示无 HOME
	MaxDistLat       float64 `json:"max_dist_lat"`
	MaxDistLon       float64 `json:"max_dist_lon"`
}

// TableName 指定表名
func (GPSSpatialFeatures) TableName() string { return "gps_spatial_features" }

// GPSZScores 移动性指标 z 分数
type GPSZScores struct {
	ID               int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	AnalysisID       int64   `gorm:"index" json:"analysis_id"`
	TimeInHome       float64 `json:"time_in_home_z"`
	TimeTraveling    float64 `json:"time_traveling_z"`
	TimeOutOfHome    float64 `json:"time_out_of_home_z"`
	DistanceKm       float64 `json:"distance_km_z"`
	AvgLocationHours float64 `json:"avg_location_hours_z"`
	UniqueLocations  float64 `json:"unique_locations_z"`
	HullArea         float64 `json:"hull_area_z"`
	SDEArea          float64 `json:"sde_area_z"`
	MaxDistTime      float64 `json:"max_dist_time_z"`
	Entropy          float64 `json:"entropy_z"`
}

// TableName 指定表名
func (GPSZScores) TableName() string { return "gps_z_scores" }
