package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Server exposes /metrics and /healthz.
type Server struct {
	http   *http.Server
	logger *logrus.Logger
}

// NewServer builds the gin router. It does not listen until Start.
func NewServer(addr string, m *Metrics, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           newRouter(m, logger),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

func newRouter(m *Metrics, logger *logrus.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))
	return r
}

// requestLogger logs each request at debug level.
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   path,
			"status": c.Writer.Status(),
			"ip":     c.ClientIP(),
			"cost":   time.Since(start),
		}).Debug("Metrics request")
	}
}

// Start listens in the background. Listen errors are logged.
func (s *Server) Start() {
	go func() {
		s.logger.WithField("addr", s.http.Addr).Info("Metrics server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Metrics server stopped")
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
