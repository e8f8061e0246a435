package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/fitlive/classroom/internal/adapters/signal"
	"github.com/fitlive/classroom/internal/app"
	"github.com/fitlive/classroom/internal/config"
	"github.com/fitlive/classroom/internal/core"
	"github.com/fitlive/classroom/internal/domain"
)

// AuthMiddleware verifies the credential before anything reaches a
// handler. Browsers cannot set headers on a WS upgrade, so the token is
// also accepted as a query parameter.
func AuthMiddleware(verifier core.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer"))
		if token == "" {
			token = c.Query("token")
		}
		identity, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set("identity", identity)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, verifier core.TokenVerifier, lc *app.Lifecycle, ctl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(AuthMiddleware(verifier))

	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Msg("ws endpoint hit")
		ctl.HandleSignal(ctx, c)
	})

	api.GET("/classes/:id/room", func(c *gin.Context) {
		info, err := lc.Info(domain.ClassID(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "class is not live"})
			return
		}
		c.JSON(http.StatusOK, info)
	})

	return r
}
