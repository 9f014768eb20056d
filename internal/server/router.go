package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KiranSurya-SU/alumniconnect/internal/auth"
	"github.com/KiranSurya-SU/alumniconnect/internal/config"
	"github.com/KiranSurya-SU/alumniconnect/internal/metrics"
	"github.com/KiranSurya-SU/alumniconnect/internal/models"
	"github.com/KiranSurya-SU/alumniconnect/internal/mw"
	"github.com/KiranSurya-SU/alumniconnect/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// SetupRouter 统一初始化 Gin 中间件、REST API 以及 WebSocket 端点。
func SetupRouter(cfg config.Config, db *gorm.DB, manager *ws.Manager, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())
	r.Use(mw.CORS(cfg.Env, cfg.ClientOrigin))
	// 控制单个 IP+路由的速率，避免接口被刷爆。
	r.Use(mw.RateLimit(rate.Every(time.Second/20), 40))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/refresh", h.RefreshToken)

	// 需要 Bearer Token 的业务接口。
	authed := api.Group("")
	authed.Use(auth.AuthMiddleware(cfg, db))

	authed.GET("/rooms/:roomId/messages", h.RoomMessages)

	authed.POST("/mentoring/schedule", auth.RequireRole(models.RoleAlumni), h.ScheduleMentoring)
	authed.GET("/mentoring/sessions", h.ListMentoringSessions)
	authed.PUT("/mentoring/sessions/:id/status", h.UpdateMentoringStatus)

	authed.GET("/jobs", h.ListJobs)
	authed.POST("/jobs", auth.RequireRole(models.RoleAlumni), h.CreateJob)
	authed.GET("/jobs/:id", h.GetJob)
	authed.POST("/jobs/:id/apply", auth.RequireRole(models.RoleStudent), h.ApplyJob)

	authed.GET("/events", h.ListEvents)
	authed.POST("/events", h.CreateEvent)
	authed.POST("/events/:id/register", h.RegisterEvent)

	authed.GET("/forum", h.ListForumPosts)
	authed.POST("/forum", h.CreateForumPost)
	authed.GET("/forum/:id", h.GetForumPost)
	authed.POST("/forum/:id/comments", h.CommentForumPost)
	authed.POST("/forum/:id/like", h.LikeForumPost)

	r.GET("/ws", manager.Serve())

	distDir := filepath.Join(".", "frontend", "dist")
	if _, err := os.Stat(filepath.Join(distDir, "index.html")); err == nil {
		r.GET("/*filepath", func(c *gin.Context) {
			path := c.Param("filepath")
			if path == "" || path == "/" {
				c.File(filepath.Join(distDir, "index.html"))
				return
			}
			clean := filepath.Clean(path)
			rel := strings.TrimPrefix(clean, "/")
			if rel == "" {
				c.File(filepath.Join(distDir, "index.html"))
				return
			}
			if strings.HasPrefix(rel, "api/") || rel == "metrics" || rel == "healthz" || strings.HasPrefix(rel, "ws") {
				c.Status(http.StatusNotFound)
				return
			}
			target := filepath.Join(distDir, rel)
			if fi, err := os.Stat(target); err == nil && !fi.IsDir() {
				c.File(target)
				return
			}
			if strings.Contains(rel, ".") {
				c.Status(http.StatusNotFound)
				return
			}
			c.File(filepath.Join(distDir, "index.html"))
		})
	}
	return r
}
