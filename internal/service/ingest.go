package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/metronlab/metron/internal/repository"
	"github.com/metronlab/metron/internal/schema"
)

// 采集端负载。时间戳统一为 Unix 毫秒，入库前归一化到分析时区。

// GPSPayload 单条定位事件
type GPSPayload struct {
	EventID       string  `json:"event_id"`
	UserUID       string  `json:"user_uid"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Accuracy      float64 `json:"accuracy"`
	Bearing       float64 `json:"bearing"`
	Speed         float64 `json:"speed"`
	SpeedAccuracy float64 `json:"speed_accuracy"`
	TimestampMs   int64   `json:"timestamp"`
}

// MotionAppPayload 采样期间的单个应用使用
type MotionAppPayload struct {
	AppName     string  `json:"app_name"`
	TimeUsedSec float64 `json:"time_used_sec"`
}

// MotionPayload 睡眠检测采样
type MotionPayload struct {
	EventID         string             `json:"event_id"`
	UserUID         string             `json:"user_uid"`
	Confidence      float64            `json:"confidence"`
	Light           float64            `json:"light"`
	Motion          float64            `json:"motion"`
	ScreenOnMs      float64            `json:"screen_on_ms"`
	TimestampPrevMs int64              `json:"timestamp_previous"`
	TimestampMs     int64              `json:"timestamp"`
	Apps            []MotionAppPayload `json:"apps"`
}

// ScreenSessionPayload 屏幕点亮会话
type ScreenSessionPayload struct {
	EventID     string `json:"event_id"`
	UserUID     string `json:"user_uid"`
	StartTimeMs int64  `json:"start_time"`
	EndTimeMs   int64  `json:"end_time"`
	DurationMs  int64  `json:"duration_ms"`
}

// UnlockPayload 设备解锁事件
type UnlockPayload struct {
	EventID     string `json:"event_id"`
	UserUID     string `json:"user_uid"`
	TimestampMs int64  `json:"timestamp"`
}

// ActivityPayload 活动识别事件
type ActivityPayload struct {
	EventID      string  `json:"event_id"`
	UserUID      string  `json:"user_uid"`
	ActivityType string  `json:"activity_type"`
	Confidence   float64 `json:"confidence"`
	TimestampMs  int64   `json:"timestamp"`
}

// CallPayload 通话记录
type CallPayload struct {
	EventID     string `json:"event_id"`
	UserUID     string `json:"user_uid"`
	CallDateMs  int64  `json:"call_date"`
	CallType    string `json:"call_type"`
	Description string `json:"description"`
	DurationSec int64  `json:"duration_sec"`
}

// DropPayload 设备跌落事件
type DropPayload struct {
	EventID        string  `json:"event_id"`
	UserUID        string  `json:"user_uid"`
	FallDurationMs int64   `json:"fall_duration_ms"`
	Magnitude      float64 `json:"magnitude"`
	TimestampMs    int64   `json:"timestamp"`
}

// LowLightPayload 低光照区间
type LowLightPayload struct {
	EventID     string  `json:"event_id"`
	UserUID     string  `json:"user_uid"`
	StartTimeMs int64   `json:"start_time"`
	EndTimeMs   int64   `json:"end_time"`
	DurationMs  int64   `json:"duration_ms"`
	Threshold   float64 `json:"threshold"`
}

// TypingSessionPayload 键盘会话聚合计数器
type TypingSessionPayload struct {
	SessionUID        string  `json:"session_uid"`
	UserUID           string  `json:"user_uid"`
	DateCreatedMs     int64   `json:"date_created"`
	DurationSec       float64 `json:"duration_sec"`
	CharactersTyped   int64   `json:"characters_typed"`
	CharactersDeleted int64   `json:"characters_deleted"`
	WordsTyped        int64   `json:"words_typed"`
	MeanIKI           float64 `json:"mean_iki"`
	StdDevIKI         float64 `json:"std_dev_iki"`
	IKICount          int64   `json:"iki_count"`
	AvgPauseWtW       float64 `json:"avg_pause_wtw"`
	MaxPauseWtW       float64 `json:"max_pause_wtw"`
	AvgPauseCtC       float64 `json:"avg_pause_ctc"`
	MaxPauseCtC       float64 `json:"max_pause_ctc"`
	TotalBackspaces   int64   `json:"total_backspaces"`
	BackspaceBursts   int64   `json:"backspace_bursts"`
	WordDeletions     int64   `json:"word_deletions"`
	PressureSum       float64 `json:"pressure_sum"`
	TotalCPS          float64 `json:"total_cps"`
}

// RegisterPayload 用户注册
type RegisterPayload struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	AppOrigin string `json:"app_origin"`
}

// Ingestor 把采集端负载写入本地缓存。
// 所有写入以 event_id 为幂等键，重放安全。
type Ingestor struct {
	users       *repository.UserRepository
	gps         *repository.GPSRepository
	motion      *repository.MotionRepository
	interaction *repository.InteractionRepository
	activity    *repository.ActivityRepository
	calls       *repository.CallRepository
	typing      *repository.TypingRepository
	loc         *time.Location
}

// NewIngestor 创建入库服务
func NewIngestor(cache *repository.CacheDB, loc *time.Location) *Ingestor {
	return &Ingestor{
		users:       repository.NewUserRepository(cache.DB),
		gps:         repository.NewGPSRepository(cache.DB),
		motion:      repository.NewMotionRepository(cache.DB),
		interaction: repository.NewInteractionRepository(cache.DB),
		activity:    repository.NewActivityRepository(cache.DB),
		calls:       repository.NewCallRepository(cache.DB),
		typing:      repository.NewTypingRepository(cache.DB),
		loc:         loc,
	}
}

// at 毫秒时间戳归一化到分析时区
func (s *Ingestor) at(ms int64) time.Time {
	return time.UnixMilli(ms).In(s.loc)
}

func eventID(id string) string {
	if strings.TrimSpace(id) == "" {
		return uuid.NewString()
	}
	return id
}

// Register 注册或更新采集端用户
func (s *Ingestor) Register(ctx context.Context, p RegisterPayload) error {
	if strings.TrimSpace(p.UID) == "" {
		return fmt.Errorf("uid 不能为空")
	}
	origin := p.AppOrigin
	if origin == "" {
		origin = OriginSensors
	}
	return s.users.Save(ctx, &schema.User{UID: p.UID, Email: p.Email, AppOrigin: origin})
}

// ensureUser 事件携带的用户未注册时按默认来源补建
func (s *Ingestor) ensureUser(ctx context.Context, uid, origin string) error {
	if strings.TrimSpace(uid) == "" {
		return fmt.Errorf("user_uid 不能为空")
	}
	exists, err := s.users.Exists(ctx, uid)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.users.Save(ctx, &schema.User{UID: uid, AppOrigin: origin})
}

// IngestGPS 批量写入定位事件
func (s *Ingestor) IngestGPS(ctx context.Context, payloads []GPSPayload) error {
	if len(payloads) == 0 {
		return nil
	}
	if err := s.ensureUser(ctx, payloads[0].UserUID, OriginSensors); err != nil {
		return err
	}
	fixes := make([]schema.GPSFix, len(payloads))
	for i, p := range payloads {
		fixes[i] = schema.GPSFix{
			EventID:       eventID(p.EventID),
			UserUID:       p.UserUID,
			Latitude:      p.Latitude,
			Longitude:     p.Longitude,
			Accuracy:      p.Accuracy,
			Bearing:       p.Bearing,
			Speed:         p.Speed,
			SpeedAccuracy: p.SpeedAccuracy,
			Timestamp:     s.at(p.TimestampMs),
		}
	}
	return s.gps.BatchSave(ctx, fixes)
}

// IngestMotion 写入睡眠检测采样及其应用使用
func (s *Ingestor) IngestMotion(ctx context.Context, p MotionPayload) error {
	if err := s.ensureUser(ctx, p.UserUID, OriginSensors); err != nil {
		return err
	}
	sample := &schema.MotionSample{
		EventID:       eventID(p.EventID),
		UserUID:       p.UserUID,
		Confidence:    p.Confidence,
		Light:         p.Light,
		Motion:        p.Motion,
		ScreenOnMs:    p.ScreenOnMs,
		TimestampPrev: s.at(p.TimestampPrevMs),
		Timestamp:     s.at(p.TimestampMs),
	}
	apps := make([]schema.MotionAppUsage, len(p.Apps))
	for i, a := range p.Apps {
		apps[i] = schema.MotionAppUsage{
			SampleID:    sample.EventID,
			AppName:     a.AppName,
			TimeUsedSec: a.TimeUsedSec,
		}
	}
	return s.motion.Save(ctx, sample, apps)
}

// IngestScreenSession 写入屏幕点亮会话
func (s *Ingestor) IngestScreenSession(ctx context.Context, p ScreenSessionPayload) error {
	if err := s.ensureUser(ctx, p.UserUID, OriginSensors); err != nil {
		return err
	}
	return s.interaction.SaveScreenSession(ctx, &schema.ScreenSession{
		EventID:    eventID(p.EventID),
		UserUID:    p.UserUID,
		StartTime:  s.at(p.StartTimeMs),
		EndTime:    s.at(p.EndTimeMs),
		DurationMs: p.DurationMs,
	})
}

// IngestUnlock 写入设备解锁事件
func (s *Ingestor) IngestUnlock(ctx context.Context, p UnlockPayload) error {
	if err := s.ensureUser(ctx, p.UserUID, OriginSensors); err != nil {
		return err
	}
	return s.interaction.SaveUnlock(ctx, &schema.UnlockEvent{
		EventID:   eventID(p.EventID),
		UserUID:   p.UserUID,
		Timestamp: s.at(p.TimestampMs),
	})
}

// IngestActivity 写入活动识别事件
func (s *Ingestor) IngestActivity(ctx context.Context, p ActivityPayload) error {
	if err := s.ensureUser(ctx, p.UserUID, OriginSensors); err != nil {
		return err
	}
	return s.activity.Save(ctx, &schema.ActivityEvent{
		EventID:      eventID(p.EventID),
		UserUID:      p.UserUID,
		Timestamp:    s.at(p.TimestampMs),
		ActivityType: p.ActivityType,
		Confidence:   p.Confidence,
	})
}

// IngestCall 写入通话记录
func (s *Ingestor) IngestCall(ctx context.Context, p CallPayload) error {
	if err := s.ensureUser(ctx, p.UserUID, OriginSensors); err != nil {
		return err
	}
	return s.calls.Save(ctx, &schema.CallRecord{
		EventID:     eventID(p.EventID),
		UserUID:     p.UserUID,
		CallDate:    s.at(p.CallDateMs),
		CallType:    p.CallType,
		Description: p.Description,
		DurationSec: p.DurationSec,
	})
}

// IngestDrop 写入设备跌落事件
func (s *Ingestor) IngestDrop(ctx context.Context, p DropPayload) error {
	if err := s.ensureUser(ctx, p.UserUID, OriginSensors); err != nil {
		return err
	}
	return s.interaction.SaveDrop(ctx, &schema.DropEvent{
		EventID:        eventID(p.EventID),
		UserUID:        p.UserUID,
		FallDurationMs: p.FallDurationMs,
		Magnitude:      p.Magnitude,
		Timestamp:      s.at(p.TimestampMs),
	})
}

// IngestLowLight 写入低光照区间
func (s *Ingestor) IngestLowLight(ctx context.Context, p LowLightPayload) error {
	if err := s.ensureUser(ctx, p.UserUID, OriginSensors); err != nil {
		return err
	}
	return s.interaction.SaveLowLight(ctx, &schema.LowLightInterval{
		EventID:    eventID(p.EventID),
		UserUID:    p.UserUID,
		StartTime:  s.at(p.StartTimeMs),
		EndTime:    s.at(p.EndTimeMs),
		DurationMs: p.DurationMs,
		Threshold:  p.Threshold,
	})
}

// IngestTypingSession 写入键盘会话
func (s *Ingestor) IngestTypingSession(ctx context.Context, p TypingSessionPayload) error {
	if strings.TrimSpace(p.SessionUID) == "" {
		return fmt.Errorf("session_uid 不能为空")
	}
	if err := s.ensureUser(ctx, p.UserUID, OriginKeyboard); err != nil {
		return err
	}
	return s.typing.Save(ctx, &schema.TypingSession{
		SessionUID:        p.SessionUID,
		UserUID:           p.UserUID,
		DateCreated:       s.at(p.DateCreatedMs),
		DurationSec:       p.DurationSec,
		CharactersTyped:   p.CharactersTyped,
		CharactersDeleted: p.CharactersDeleted,
		WordsTyped:        p.WordsTyped,
		MeanIKI:           p.MeanIKI,
		StdDevIKI:         p.StdDevIKI,
		IKICount:          p.IKICount,
		AvgPauseWtW:       p.AvgPauseWtW,
		MaxPauseWtW:       p.MaxPauseWtW,
		AvgPauseCtC:       p.AvgPauseCtC,
		MaxPauseCtC:       p.MaxPauseCtC,
		TotalBackspaces:   p.TotalBackspaces,
		BackspaceBursts:   p.BackspaceBursts,
		WordDeletions:     p.WordDeletions,
		PressureSum:       p.PressureSum,
		TotalCPS:          p.TotalCPS,
	})
}
