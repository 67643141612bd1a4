package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RouterOptions struct {
	AllowOrigins []string
	// AdminToken guards /api with a bearer token when set.
	AdminToken string
}

func SetupRouter(guildController *GuildController, opts RouterOptions, log *slog.Logger) *gin.Engine {
	if log == nil {
		log = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	config := cors.DefaultConfig()
	if len(opts.AllowOrigins) > 0 {
		config.AllowOrigins = opts.AllowOrigins
	} else {
		config.AllowAllOrigins = true
	}
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
	}
	config.AllowMethods = []string{"GET", "POST", "HEAD", "OPTIONS"}
	router.Use(cors.New(config))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	if opts.AdminToken != "" {
		api.Use(bearerAuth(opts.AdminToken))
	}

	if guildController != nil {
		guilds := api.Group("/guilds/:guildID")
		guilds.GET("/setup", guildController.GetSetup)
		guilds.GET("/rooms", guildController.ListRooms)
		guilds.POST("/sweep", guildController.Sweep)
	}

	return router
}

func bearerAuth(token string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		got, ok := strings.CutPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx.Next()
	}
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		requestID := ctx.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Header("X-Request-ID", requestID)

		ctx.Next()

		log.Info("http request",
			slog.String("request_id", requestID),
			slog.String("method", ctx.Request.Method),
			slog.String("path", ctx.FullPath()),
			slog.Int("status", ctx.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
