package schema

import "time"

// User 采集端用户（LogMyself 传感器端 / LogBoard 键盘端）
type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UID       string `gorm:"size:128;uniqueIndex" json:"uid"`
	Email     string `gorm:"size:255;index" json:"email"`
	AppOrigin string `gorm:"size:32" json:"app_origin"` // LogMyself / LogBoard
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// GPSFix 单条 GPS 定位事件
// 数据量级：万级/天/用户（约 30s 采样）
type GPSFix struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID       string    `gorm:"size:128;uniqueIndex" json:"event_id"` // 采集端事件 ID（幂等键）
	UserUID       string    `gorm:"size:128;index" json:"user_uid"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Accuracy      float64   `json:"accuracy"` // 米
	Bearing       float64   `json:"bearing"`
	Speed         float64   `json:"speed"`
	SpeedAccuracy float64   `json:"speed_accuracy"`
	Timestamp     time.Time `gorm:"index" json:"timestamp"` // 已归一化到本地时区
}

// TableName 指定表名
func (GPSFix) TableName() string { return "gps_fixes" }

// MotionSample 睡眠检测采样（置信度 + 动作 + 光线 + 屏幕亮起时长）
type MotionSample struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID       string    `gorm:"size:128;uniqueIndex" json:"event_id"`
	UserUID       string    `gorm:"size:128;index" json:"user_uid"`
	Confidence    float64   `json:"confidence"` // 0-100
	Light         float64   `json:"light"`
	Motion        float64   `json:"motion"`
	ScreenOnMs    float64   `json:"screen_on_ms"` // 采样区间内屏幕亮起毫秒数
	TimestampPrev time.Time `json:"timestamp_prev"`
	Timestamp     time.Time `gorm:"index" json:"timestamp"`
}

// TableName 指定表名
func (MotionSample) TableName() string { return "motion_samples" }

// MotionAppUsage 睡眠采样期间的应用使用（挂在 MotionSample 下）
type MotionAppUsage struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	SampleID    string  `gorm:"size:128;index" json:"sample_id"` // MotionSample.EventID
	AppName     string  `gorm:"size:255" json:"app_name"`
	TimeUsedSec float64 `json:"time_used_sec"`
}

// TableName 指定表名
func (MotionAppUsage) TableName() string { return "motion_app_usages" }

// ScreenSession 屏幕点亮会话（起止 + 时长）
type ScreenSession struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID    string    `gorm:"size:128;uniqueIndex" json:"event_id"`
	UserUID    string    `gorm:"size:128;index" json:"user_uid"`
	StartTime  time.Time `gorm:"index" json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	DurationMs int64     `json:"duration_ms"`
}

// TableName 指定表名
func (ScreenSession) TableName() string { return "screen_sessions" }

// UnlockEvent 设备解锁事件
type UnlockEvent struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   string    `gorm:"size:128;uniqueIndex" json:"event_id"`
	UserUID   string    `gorm:"size:128;index" json:"user_uid"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

// TableName 指定表名
func (UnlockEvent) TableName() string { return "unlock_events" }

// ActivityEvent 活动识别事件（still / on_foot / in_vehicle ...）
type ActivityEvent struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID      string    `gorm:"size:128;uniqueIndex" json:"event_id"`
	UserUID      string    `gorm:"size:128;index" json:"user_uid"`
	Timestamp    time.Time `gorm:"index" json:"timestamp"`
	ActivityType string    `gorm:"size:32" json:"activity_type"`
	Confidence   float64   `json:"confidence"`
}

// TableName 指定表名
func (ActivityEvent) TableName() string { return "activity_events" }

// CallRecord 通话记录
type CallRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID     string    `gorm:"size:128;uniqueIndex" json:"event_id"`
	UserUID     string    `gorm:"size:128;index" json:"user_uid"`
	CallDate    time.Time `gorm:"index" json:"call_date"`
	CallType    string    `gorm:"size:32" json:"call_type"` // incoming / outgoing / missed
	Description string    `gorm:"size:128" json:"description"`
	DurationSec int64     `json:"duration_sec"`
}

// TableName 指定表名
func (CallRecord) TableName() string { return "call_records" }

// DropEvent 设备跌落事件
type DropEvent struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID        string    `gorm:"size:128;uniqueIndex" json:"event_id"`
	UserUID        string    `gorm:"size:128;index" json:"user_uid"`
	FallDurationMs int64     `json:"fall_duration_ms"`
	Magnitude      float64   `json:"magnitude"`
	Timestamp      time.Time `gorm:"index" json:"timestamp"`
}

// TableName 指定表名
func (DropEvent) TableName() string { return "drop_events" }

// LowLightInterval 低光照区间
type LowLightInterval struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID    string    `gorm:"size:128;uniqueIndex" json:"event_id"`
	UserUID    string    `gorm:"size:128;index" json:"user_uid"`
	StartTime  time.Time `gorm:"index" json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	DurationMs int64     `json:"duration_ms"`
	Threshold  float64   `json:"threshold"` // 判定低光照所用阈值
}

// TableName 指定表名
func (LowLightInterval) TableName() string { return "low_light_intervals" }

// TypingSession 键盘会话的聚合计数器（LogBoard 端）
type TypingSession struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionUID        string    `gorm:"size:128;uniqueIndex" json:"session_uid"`
	UserUID           string    `gorm:"size:128;index" json:"user_uid"`
	DateCreated       time.Time `gorm:"index" json:"date_created"`
	DurationSec       float64   `json:"duration_sec"`
	CharactersTyped   int64     `json:"characters_typed"`
	CharactersDeleted int64     `json:"characters_deleted"`
	WordsTyped        int64     `json:"words_typed"`
	MeanIKI           float64   `json:"mean_iki"` // 键间间隔均值（秒）
	StdDevIKI         float64   `json:"std_dev_iki"`
	IKICount          int64     `json:"iki_count"`
	AvgPauseWtW       float64   `json:"avg_pause_wtw"` // 词间停顿
	MaxPauseWtW       float64   `json:"max_pause_wtw"`
	AvgPauseCtC       float64   `json:"avg_pause_ctc"` // 字符间停顿
	MaxPauseCtC       float64   `json:"max_pause_ctc"`
	TotalBackspaces   int64     `json:"total_backspaces"`
	BackspaceBursts   int64     `json:"backspace_bursts"`
	WordDeletions     int64     `json:"word_deletions"`
	PressureSum       float64   `json:"pressure_sum"` // 按压力度累计
	TotalCPS          float64   `json:"total_cps"`
	TotalWPS          float64   `json:"total_wps"`
}

// TableName 指定表名
func (TypingSession) TableName() string { return "typing_sessions" }
