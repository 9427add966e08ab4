package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docserver/database"
	"docserver/internal/config"
	"docserver/processor"
	"docserver/server/handlers"
	"docserver/server/middleware"
)

// Server HTTP сервер API документооборота должников
type Server struct {
	config     *config.Config
	db         *database.DB
	proc       *processor.Processor
	names      handlers.NameGenerator
	httpServer *http.Server
}

// NewServer создает сервер
func NewServer(cfg *config.Config, db *database.DB, proc *processor.Processor, names handlers.NameGenerator) *Server {
	return &Server{
		config: cfg,
		db:     db,
		proc:   proc,
		names:  names,
	}
}

// Router строит маршрутизатор API
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
		middleware.Gzip(),
		middleware.BodyLimit(s.config.MaxUploadSize),
	)

	debtorsHandler := handlers.NewDebtorsHandler(s.db, s.proc, s.names, s.config.UploadDir)
	uploadHandler := handlers.NewUploadHandler(s.db, s.config.UploadDir, s.config.MaxUploadSize)
	queueHandler := handlers.NewQueueHandler(s.db)
	downloadHandler := handlers.NewDownloadHandler(s.db)

	api := r.Group("/api")
	{
		api.POST("/upload", uploadHandler.Upload)
		api.GET("/queue/status", queueHandler.Status)
		api.GET("/download/:id", downloadHandler.Download)

		debtors := api.Group("/debtors")
		{
			debtors.GET("", debtorsHandler.List)
			debtors.GET("/:id", debtorsHandler.Get)
			debtors.DELETE("/:id", debtorsHandler.Delete)
			debtors.GET("/:id/deals", debtorsHandler.Deals)
			debtors.GET("/:id/data", debtorsHandler.GetData)
			debtors.PUT("/:id/data", debtorsHandler.UpdateData)
			debtors.POST("/:id/save-data", debtorsHandler.SaveData)
		}
	}

	return r
}

// Start запускает HTTP сервер и блокируется до его остановки.
// WriteTimeout с запасом: скачивание больших сгенерированных
// документов может занимать минуты на медленном канале.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	Logger.Info("HTTP server starting", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server on %s: %w", addr, err)
	}
	return nil
}

// Shutdown останавливает сервер, дожидаясь активных запросов
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	Logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
