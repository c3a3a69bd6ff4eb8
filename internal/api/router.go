package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/memestream/memestream/internal/auth"
	"github.com/memestream/memestream/internal/cache"
	"github.com/memestream/memestream/internal/db"
	"github.com/memestream/memestream/internal/feed"
	"github.com/memestream/memestream/internal/reaction"
	"github.com/memestream/memestream/internal/relation"
	"github.com/memestream/memestream/pkg/config"
	"github.com/memestream/memestream/pkg/logging"
)

// Router wires stores, services, and operation handlers together.
type Router struct {
	dispatcher *Dispatcher
	verifier   auth.Verifier
	db         *db.DB
	cache      *cache.Cache
	logger     *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, cfg *config.Config) *Router {
	router := &Router{
		dispatcher: NewDispatcher(),
		db:         database,
		cache:      redisCache,
		logger:     logging.GetLogger().With(zap.String("component", "api-router")),
	}
	if cfg.Auth.JWTSecret != "" {
		router.verifier = auth.NewJWTVerifier(cfg.Auth.JWTSecret)
	}

	router.registerOperations(cfg)
	return router
}

// registerOperations constructs the services and registers every
// supported operation on the dispatcher.
func (r *Router) registerOperations(cfg *config.Config) {
	repo := db.NewRepository(r.db.DB)
	logger := logging.GetLogger()

	contentRepo := db.NewContentRepository(repo)
	viewRepo := db.NewViewRepository(repo, cfg.Feed.ViewRetention)
	relationshipRepo := db.NewRelationshipRepository(repo)
	reactionRepo := db.NewReactionRepository(repo)
	userRepo := db.NewUserRepository(repo)

	views := cache.NewSeenSetCache(r.cache, viewRepo, cfg.Feed.SeenCacheTTL, logger)
	resolver := relation.NewBatchResolver(relationshipRepo, r.cache, cfg.Feed.FollowStatusTTL, logger)
	assembler := feed.NewAssembler(contentRepo, views, resolver, userRepo, feed.Options{
		DefaultPageSize: cfg.Feed.DefaultPageSize,
		MaxPageSize:     cfg.Feed.MaxPageSize,
		ScanBatchSize:   cfg.Feed.ScanBatchSize,
		MaxScanBatches:  cfg.Feed.MaxScanBatches,
		RequestTimeout:  cfg.Feed.RequestTimeout,
		MediaBaseURL:    cfg.Media.BaseURL,
	}, logger)
	ledger := reaction.NewLedger(reactionRepo, cfg.Reaction.ConflictRetries, logger)

	feedAPI := NewFeedAPI(assembler)
	reactionAPI := NewReactionAPI(ledger)
	followAPI := NewFollowAPI(resolver)
	viewsAPI := NewViewsAPI(views)

	r.dispatcher.Register("fetchMemes", feedAPI.FetchMemes)
	r.dispatcher.Register("updateMemeReaction", reactionAPI.UpdateMemeReaction)
	r.dispatcher.Register("batchCheckStatus", followAPI.BatchCheckStatus)
	r.dispatcher.Register("recordMemeView", viewsAPI.RecordMemeView)
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.POST("/", requestLogger(), auth.Middleware(r.verifier), r.dispatcher.Handle)
}

// healthHandler reports process and dependency health
func (r *Router) healthHandler(c *gin.Context) {
	status := "OK"
	checks := gin.H{}

	ctx := c.Request.Context()
	if err := r.db.Health(ctx); err != nil {
		status = "DEGRADED"
		checks["database"] = err.Error()
	} else {
		checks["database"] = "OK"
	}
	if r.cache != nil {
		if err := r.cache.Health(ctx); err != nil {
			checks["redis"] = err.Error()
		} else {
			checks["redis"] = "OK"
		}
	}

	c.JSON(200, gin.H{
		"status":  status,
		"service": "memestream-api",
		"checks":  checks,
	})
}

// requestLogger logs one line per operation request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("request_id", requestID)

		c.Next()

		logging.WithRequestID(requestID).Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
