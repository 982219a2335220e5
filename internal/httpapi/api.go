package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/metronlab/metron/internal/pkg/buildinfo"
	"github.com/metronlab/metron/internal/pkg/config"
	"github.com/metronlab/metron/internal/service"
)

type apiServer struct {
	ingestor  *service.Ingestor
	batch     *service.Batch
	appName   string
	version   string
	loc       *time.Location
	startTime time.Time
}

func newAPI(ingestor *service.Ingestor, batch *service.Batch, cfg config.Config) *apiServer {
	return &apiServer{
		ingestor:  ingestor,
		batch:     batch,
		appName:   cfg.App.Name,
		version:   cfg.App.Version,
		loc:       cfg.Location(),
		startTime: time.Now(),
	}
}

func (a *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"name":       a.appName,
		"version":    a.version,
		"build":      buildinfo.Version,
		"commit":     buildinfo.Commit,
		"started_at": a.startTime.Format(time.RFC3339),
	})
}

func (a *apiServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var p service.RegisterPayload
	if err := readJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.ingestor.Register(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"uid": p.UID})
}

func (a *apiServer) handleGPS(w http.ResponseWriter, r *http.Request) {
	var payloads []service.GPSPayload
	if err := readJSON(r, &payloads); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.ingestor.IngestGPS(r.Context(), payloads); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"accepted": len(payloads)})
}

func (a *apiServer) handleMotion(w http.ResponseWriter, r *http.Request) {
	ingestOne(w, r, a.ingestor.IngestMotion)
}

func (a *apiServer) handleScreenSession(w http.ResponseWriter, r *http.Request) {
	ingestOne(w, r, a.ingestor.IngestScreenSession)
}

func (a *apiServer) handleUnlock(w http.ResponseWriter, r *http.Request) {
	ingestOne(w, r, a.ingestor.IngestUnlock)
}

func (a *apiServer) handleActivity(w http.ResponseWriter, r *http.Request) {
	ingestOne(w, r, a.ingestor.IngestActivity)
}

func (a *apiServer) handleCall(w http.ResponseWriter, r *http.Request) {
	ingestOne(w, r, a.ingestor.IngestCall)
}

func (a *apiServer) handleDrop(w http.ResponseWriter, r *http.Request) {
	ingestOne(w, r, a.ingestor.IngestDrop)
}

func (a *apiServer) handleLowLight(w http.ResponseWriter, r *http.Request) {
	ingestOne(w, r, a.ingestor.IngestLowLight)
}

func (a *apiServer) handleTypingSession(w http.ResponseWriter, r *http.Request) {
	ingestOne(w, r, a.ingestor.IngestTypingSession)
}

// ingestOne 单事件入库的通用处理
func ingestOne[T any](w http.ResponseWriter, r *http.Request, save func(context.Context, T) error) {
	var p T
	if err := readJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := save(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"accepted": 1})
}

type runDailyRequest struct {
	Date string `json:"date"` // YYYY-MM-DD，缺省为昨天
}

// handleRunDaily 手动触发某天的批次分析，异步执行
func (a *apiServer) handleRunDaily(w http.ResponseWriter, r *http.Request) {
	var req runDailyRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	day := req.Date
	if day == "" {
		day = time.Now().In(a.loc).AddDate(0, 0, -1).Format("2006-01-02")
	}
	if _, err := time.ParseInLocation("2006-01-02", day, a.loc); err != nil {
		writeError(w, http.StatusBadRequest, "非法日期: "+day)
		return
	}

	go func() {
		if err := a.batch.RunDaily(context.Background(), day); err != nil {
			slog.Error("手动批次失败", "day", day, "error", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]any{"day": day, "status": "scheduled"})
}
