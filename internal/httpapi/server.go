package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/metronlab/metron/internal/pkg/config"
	"github.com/metronlab/metron/internal/service"
)

// Server 采集端入库与分析触发的 HTTP 服务
type Server struct {
	cfg config.ServerConfig
	srv *http.Server
}

// NewServer 组装路由与中间件
func NewServer(cfg config.Config, ingestor *service.Ingestor, batch *service.Batch) *Server {
	api := newAPI(ingestor, batch, cfg)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", api.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/users", api.handleRegister).Methods(http.MethodPost)
	v1.HandleFunc("/events/gps", api.handleGPS).Methods(http.MethodPost)
	v1.HandleFunc("/events/motion", api.handleMotion).Methods(http.MethodPost)
	v1.HandleFunc("/events/screen-sessions", api.handleScreenSession).Methods(http.MethodPost)
	v1.HandleFunc("/events/unlocks", api.handleUnlock).Methods(http.MethodPost)
	v1.HandleFunc("/events/activity", api.handleActivity).Methods(http.MethodPost)
	v1.HandleFunc("/events/calls", api.handleCall).Methods(http.MethodPost)
	v1.HandleFunc("/events/drops", api.handleDrop).Methods(http.MethodPost)
	v1.HandleFunc("/events/low-light", api.handleLowLight).Methods(http.MethodPost)
	v1.HandleFunc("/events/typing-sessions", api.handleTypingSession).Methods(http.MethodPost)
	v1.HandleFunc("/analysis/daily", api.handleRunDaily).Methods(http.MethodPost)

	handler := handlers.RecoveryHandler()(handlers.CombinedLoggingHandler(os.Stdout, r))

	return &Server{
		cfg: cfg.Server,
		srv: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start 后台启动监听
func (s *Server) Start() {
	go func() {
		slog.Info("HTTP 服务已启动", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server 异常退出", "error", err)
		}
	}()
}

// Shutdown 按配置的超时优雅退出
func (s *Server) Shutdown() error {
	timeout := time.Duration(s.cfg.ShutdownTimeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
