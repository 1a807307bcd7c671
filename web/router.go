package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/don/domain"
	"github.com/deemkeen/don/feed"
	"github.com/deemkeen/don/store"
	"github.com/deemkeen/don/util"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"golang.org/x/time/rate"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Archive keeps the activities relayed from the live feed
type Archive interface {
	SaveActivities(activities []domain.Activity) (int, error)
	ReadRecentActivities(limit int) ([]domain.Activity, error)
}

// Server is the web frontend: the rendered timeline, its RSS export and a
// same-origin relay of the live feed
type Server struct {
	conf    *util.AppConfig
	fetcher store.TimelineFetcher
	dialer  feed.Dialer
	archive Archive
	limiter *RateLimiter
	logger  *log.Logger
}

// NewServer creates the frontend. archive may be nil.
func NewServer(conf *util.AppConfig, fetcher store.TimelineFetcher, dialer feed.Dialer, archive Archive, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		conf:    conf,
		fetcher: fetcher,
		dialer:  dialer,
		archive: archive,
		// 10 requests per second per IP, burst of 20
		limiter: NewRateLimiter(rate.Limit(10), 20),
		logger:  logger.WithPrefix("web"),
	}
}

// Handler builds the gin engine with all routes
func (s *Server) Handler() *gin.Engine {
	g := gin.New()
	g.Use(gin.Recovery())
	g.Use(s.requestLogger())
	g.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/feed"})))
	g.Use(RateLimitMiddleware(s.limiter))

	g.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	g.GET("/", s.HandleIndex)

	g.GET("/feed.rss", func(c *gin.Context) {
		c.Header("Content-Type", "application/xml; charset=utf-8")

		rss, err := s.rss(c)
		if err != nil {
			s.logger.Warn("Could not render RSS", "err", err)
			c.Render(http.StatusBadGateway, render.String{Format: ""})
			return
		}
		c.Render(http.StatusOK, render.String{Format: rss})
	})

	g.GET("/api/feed", s.HandleFeed)

	return g
}

func (s *Server) rss(c *gin.Context) (string, error) {
	filter, err := domain.ParseFilter(c.Request.URL.Query())
	if err != nil {
		return "", err
	}

	activities, err := s.fetcher.FetchTimeline(c.Request.Context(), filter)
	if err != nil {
		if s.archive == nil {
			return "", err
		}
		s.logger.Info("Timeline unavailable, using archive", "err", err)
		activities, err = s.archive.ReadRecentActivities(s.conf.Conf.PageSize)
		if err != nil {
			return "", err
		}
	}

	return GetRSS(s.conf, filter, activities)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Router serves the frontend until ctx is done
func (s *Server) Router(ctx context.Context) error {
	s.logger.Info("Starting web frontend", "host", s.conf.Conf.Host, "port", s.conf.Conf.HttpPort)

	go s.limiter.cleanupOldLimiters(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.conf.Conf.Host, s.conf.Conf.HttpPort),
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
