package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
	"github.com/MinhaKim02/protest-crawling-database/internal/filter"
	"github.com/MinhaKim02/protest-crawling-database/internal/kakao"
	"github.com/MinhaKim02/protest-crawling-database/internal/logger"
	"github.com/MinhaKim02/protest-crawling-database/internal/storage"
)

// HealthMessage is returned by the root endpoint
const HealthMessage = "✅ protest-crawling-database API is running!"

// Server answers chatbot queries from the stored snapshots
type Server struct {
	Store *storage.Storage
	now   func() time.Time
}

// NewServer creates a server reading snapshots from store
func NewServer(store *storage.Storage) *Server {
	return &Server{
		Store: store,
		now:   time.Now,
	}
}

// NewRouter builds a gin engine with all routes registered
func NewRouter(s *Server) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	s.SetupRoutes(r)
	return r
}

// SetupRoutes configures all API routes
func (s *Server) SetupRoutes(r *gin.Engine) {
	r.GET("/", s.Health)
	r.POST("/today-protests", s.TodayProtests)
	r.GET("/assemblies/:date", s.Assemblies)
}

// Health reports that the service is up
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": HealthMessage})
}

// TodayProtests answers a Kakao skill request with today's Jongno assemblies.
// The request body is not needed and is not validated.
func (s *Server) TodayProtests(c *gin.Context) {
	today := assembly.DateOf(s.now())

	if !s.Store.Exists(today) {
		c.JSON(http.StatusOK, kakao.TextResponse(kakao.NoAssembliesText))
		return
	}

	batch, err := s.Store.LoadBatch(today)
	if err != nil {
		logger.Error("Failed to load today's snapshot", logger.Fields{"date": today.String()}, err)
		c.JSON(http.StatusOK, kakao.TextResponse(kakao.NoAssembliesText))
		return
	}

	c.JSON(http.StatusOK, kakao.TextResponse(kakao.FormatToday(batch)))
}

// Assemblies returns the stored records for a date as JSON.
// Query parameters place, district, between and jongno narrow the result.
func (s *Server) Assemblies(c *gin.Context) {
	date := assembly.ParseDate(c.Param("date"))
	if !date.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	f := filter.NewFilter()
	f.Places = c.QueryArray("place")
	f.Districts = c.QueryArray("district")
	f.JongnoOnly = c.Query("jongno") == "true"
	if between := c.Query("between"); between != "" {
		from, to, err := filter.ParseTimeWindow(between)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.From, f.To = from, to
	}

	batch, err := s.Store.LoadBatch(date)
	if err != nil {
		logger.Error("Failed to load snapshot", logger.Fields{"date": date.String()}, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load snapshot"})
		return
	}

	records := f.Apply(batch.Records)
	c.JSON(http.StatusOK, gin.H{
		"date":       date.String(),
		"count":      len(records),
		"assemblies": records,
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		logger.RecordTiming("http_request", elapsed)
		logger.Debug("Handled request", logger.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": elapsed.String(),
		})
	}
}
