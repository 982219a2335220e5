package schema

import "time"

// 基线类别
const (
	CategoryTyping     = "TYPING_METRIC"
	CategoryBehavioral = "BEHAVIORAL_METRIC"
)

// BaselineMetric 某用户某指标的一条基线记录。
// 只追加不修改：重算产生新行，created_at 最新者生效。
type BaselineMetric struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserUID      string    `gorm:"size:128;index:idx_baseline_user_metric" json:"user_uid"`
	MetricName   string    `gorm:"size:64;index:idx_baseline_user_metric" json:"metric_name"`
	Mean         float64   `json:"baseline_mean"`
	Std          float64   `json:"baseline_std"`
	Median       *float64  `json:"baseline_median"`
	MAD          *float64  `json:"baseline_mad"`
	SessStart    time.Time `json:"sess_start_date"` // 参与计算的首个数据点
	SessEnd      time.Time `json:"sess_end_date"`   // 参与计算的末个数据点
	DataCategory string    `gorm:"size:32" json:"data_category"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (BaselineMetric) TableName() string { return "baseline_metrics" }

// TypingSessionResult 每个键盘会话的最终评分与判定
type TypingSessionResult struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionUID      string    `gorm:"size:128;uniqueIndex" json:"session_uid"`
	UserUID         string    `gorm:"size:128;index" json:"user_uid"`
	SessionDate     time.Time `json:"session_date"`
	CognitiveScore  *float64  `json:"cognitive_score"`
	CognitiveResult string    `gorm:"size:16" json:"cognitive_decision"`
}

// TableName 指定表名
func (TypingSessionResult) TableName() string { return "typing_session_results" }

// TypingMetricValue 每会话每指标一行：原始值 + 修正 z 分数
type TypingMetricValue struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionUID  string    `gorm:"size:128;uniqueIndex:idx_typing_session_metric" json:"session_uid"`
	MetricName  string    `gorm:"size:64;uniqueIndex:idx_typing_session_metric" json:"metric_name"`
	UserUID     string    `gorm:"size:128;index" json:"user_uid"`
	SessionDate time.Time `gorm:"index" json:"session_date"` // 冗余字段，便于按窗口取基线样本
	Value       float64   `json:"value"`
	ZScore      float64   `json:"modified_z_score"`
}

// TableName 指定表名
func (TypingMetricValue) TableName() string { return "typing_metric_values" }

// TypingDailyStats 每用户每天的判定分布与总分
type TypingDailyStats struct {
	ID            int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserUID       string  `gorm:"size:128;uniqueIndex:idx_typing_daily_user_day" json:"user_uid"`
	DayAnalyzed   string  `gorm:"size:10;uniqueIndex:idx_typing_daily_user_day" json:"day_analyzed"`
	PctExcellent  float64 `json:"pct_excellent"`
	PctVeryGood   float64 `json:"pct_very_good"`
	PctNormal     float64 `json:"pct_normal"`
	PctVeryBad    float64 `json:"pct_very_bad"`
	PctCritical   float64 `json:"pct_critical"`
	TotalScore    float64 `json:"total_score"`
	SessionsCount int64   `json:"sessions_count"`
}

// TableName 指定表名
func (TypingDailyStats) TableName() string { return "typing_daily_stats" }
