package app

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mira/internal/handler"
)

// BuildInfo is stamped at link time
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// NewRouter builds the HTTP surface: health, version, metrics and the
// rate-limited /api group
func NewRouter(a *App, limiter handler.RateLimiter, info BuildInfo) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), handler.RequestLogger())

	corsConfig := cors.DefaultConfig()
	if origins := splitList(a.Config.Server.AllowedOrigins); len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = splitList(a.Config.Server.AllowedMethods)
	corsConfig.AllowHeaders = splitList(a.Config.Server.AllowedHeaders)
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "mira",
			"provider":   providerName(a),
			"version":    info.Version,
			"build_time": info.BuildTime,
			"git_commit": info.GitCommit,
		})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    info.Version,
			"build_time": info.BuildTime,
			"git_commit": info.GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	chatHandler := handler.NewChatHandler(a.Chat)
	listingsHandler := handler.NewListingsHandler(a.Catalog)

	api := router.Group("/api")
	api.Use(handler.RateLimit(limiter))
	{
		api.POST("/chat", chatHandler.Chat)
		api.GET("/properties", listingsHandler.List)
		api.GET("/property/:id", listingsHandler.Get)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router
}

func providerName(a *App) string {
	if a.Provider == nil || !a.Provider.Available() {
		return "lexical"
	}
	return a.Provider.Name()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
