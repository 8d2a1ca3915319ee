package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/AntonStoeckl/library-circulation/circulation/command"
	"github.com/AntonStoeckl/library-circulation/circulation/query"
	"github.com/AntonStoeckl/library-circulation/circulation/shell"
)

const (
	// HeaderRequestID carries the correlation id of a request.
	HeaderRequestID = "X-Request-ID"

	httpSpanName = "circulation.http"
	corsMaxAge   = 12 * time.Hour
)

// Config configures the HTTP surface.
type Config struct {
	CORSOrigins []string
	Tracing     bool
	Logger      *slog.Logger
	Now         func() time.Time
}

type server struct {
	commands command.Handlers
	queries  query.Handlers
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler builds the router for all circulation endpoints.
func NewHandler(cfg Config, commands command.Handlers, queries query.Handlers) http.Handler {
	s := &server{
		commands: commands,
		queries:  queries,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{"Content-Type", HeaderRequestID},
			ExposeHeaders: []string{HeaderRequestID},
			MaxAge:        corsMaxAge,
		}))
	}
	router.Use(correlation(), s.requestLog())

	s.routes(router)

	if !cfg.Tracing {
		return router
	}

	return otelhttp.NewHandler(router, httpSpanName,
		otelhttp.WithMessageEvents(otelhttp.ReadEvents, otelhttp.WriteEvents))
}

func (s *server) routes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	items := r.Group("/items")
	items.POST("", s.addItemToCirculation)
	items.GET("/:itemID", s.itemStatus)
	items.GET("/:itemID/history", s.itemHistory)
	items.POST("/:itemID/loans", s.loanItem)
	items.POST("/:itemID/loans/extend", s.extendLoan)
	items.POST("/:itemID/requests", s.requestItem)
	items.POST("/:itemID/requests/validate", s.validateItemRequest)
	items.DELETE("/:itemID/holds/:holdID", s.cancelHold)
	items.POST("/:itemID/return", s.returnItem)
	items.POST("/:itemID/receive", s.receiveItem)
	items.POST("/:itemID/lost", s.loseItem)
	items.POST("/:itemID/found", s.returnMissingItem)

	r.GET("/patrons/:patronID/holds", s.patronHolds)
}

// correlation puts the request id into the context, generating one when the client sent none.
func correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = shell.NewMessageID()
		}

		c.Request = c.Request.WithContext(shell.WithCorrelationID(c.Request.Context(), id))
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func (s *server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.DebugContext(c.Request.Context(), "http request complete",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"correlation_id", shell.CorrelationIDFrom(c.Request.Context()),
			"elapsed", time.Since(start),
		)
	}
}
