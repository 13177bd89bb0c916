package daemon

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"rubox/internal/model"
	"rubox/internal/repository"
)

const (
	defaultHistoryN = 20
	shutdownTimeout = 5 * time.Second
)

type HistoryReader interface {
	GetRecent(limit int) ([]model.History, error)
	GetFailed(limit int) ([]model.History, error)
	GetStats() (repository.Stats, error)
}

// Server is the local control API the CLI talks to.
type Server struct {
	echo      *echo.Echo
	scheduler *Scheduler
	history   HistoryReader
	port      int
	log       *zap.Logger
	stopCh    chan struct{}
}

func NewServer(scheduler *Scheduler, history HistoryReader, port int, log *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:      e,
		scheduler: scheduler,
		history:   history,
		port:      port,
		log:       log,
		stopCh:    make(chan struct{}, 1),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/status", s.handleStatus)
	s.echo.POST("/stop", s.handleStop)
	s.echo.POST("/trigger", s.handleTrigger)

	g := s.echo.Group("/history")
	g.GET("", s.handleHistory)
	g.GET("/failed", s.handleFailed)
	g.GET("/stats", s.handleStats)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := "127.0.0.1:" + strconv.Itoa(s.port)
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("daemon server started",
			zap.String("addr", addr))

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) StopCh() <-chan struct{} {
	return s.stopCh
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.scheduler.State().Snapshot())
}

func (s *Server) handleStop(c echo.Context) error {
	select {
	case s.stopCh <- struct{}{}:
	default:
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "stopping"})
}

func (s *Server) handleTrigger(c echo.Context) error {
	if !s.scheduler.Trigger() {
		return c.JSON(http.StatusAccepted, map[string]string{"status": "already pending"})
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "triggered"})
}

func queryN(c echo.Context) int {
	n := defaultHistoryN
	if nStr := c.QueryParam("n"); nStr != "" {
		if parsed, err := strconv.Atoi(nStr); err == nil && parsed > 0 {
			n = parsed
		}
	}
	return n
}

func (s *Server) handleHistory(c echo.Context) error {
	histories, err := s.history.GetRecent(queryN(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, histories)
}

func (s *Server) handleFailed(c echo.Context) error {
	histories, err := s.history.GetFailed(queryN(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, histories)
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.history.GetStats()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, stats)
}
