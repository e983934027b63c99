package router

import (
	"time"

	"github.com/blues/rewardcenter/internal/handler"
	"github.com/blues/rewardcenter/internal/logger"
	"github.com/blues/rewardcenter/internal/logic"
	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, center *rewards.Center, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(requestLogger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "reward-center",
			"center":  center.Address().Hex(),
		})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	planHandler := handler.NewPlanHandler(logic.NewPlanLogic(center))
	registryHandler := handler.NewRegistryHandler(logic.NewRegistryLogic(center))
	journalHandler := handler.NewJournalHandler(logic.NewEventLogic(db, center))

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 计划相关路由
		plans := v1.Group("/plans")
		{
			plans.POST("", planHandler.CreatePlan)
			plans.GET("/:address", planHandler.GetPlan)
			plans.GET("/:address/founders", planHandler.GetFounders)
			plans.POST("/:address/founders", planHandler.AddFounder)
			plans.DELETE("/:address/founders", planHandler.LeavePlan)
			plans.GET("/:address/rules", planHandler.GetRules)
			plans.POST("/:address/rules", planHandler.AddRule)
			plans.DELETE("/:address/rules/:index", planHandler.RemoveRule)
			plans.GET("/:address/notifiers", planHandler.GetNotifiers)
			plans.POST("/:address/notifiers", planHandler.AddNotifier)
			plans.DELETE("/:address/notifiers/:notifier", planHandler.RevokeNotifier)
			plans.POST("/:address/signing", planHandler.BeginSigning)
			plans.POST("/:address/sign", planHandler.Sign)
			plans.POST("/:address/refund", planHandler.Refund)
			plans.POST("/:address/clients", planHandler.SignUpClient)
			plans.GET("/:address/clients/:id", planHandler.GetClient)
			plans.POST("/:address/points", planHandler.NotifyPoints)
			plans.POST("/:address/awake", planHandler.Awake)
			plans.GET("/:address/roles/:caller", planHandler.GetRoles)

			plans.GET("/:address/stats", journalHandler.GetPlanStats)
			plans.GET("/:address/events", journalHandler.GetPlanEvents)
			plans.GET("/:address/payouts", journalHandler.GetPlanPayouts)
			plans.GET("/:address/refunds", journalHandler.GetPlanRefunds)
		}

		// 中心登记簿路由
		v1.GET("/entities/:address", registryHandler.GetEntity)
		v1.GET("/entities/:address/plans", registryHandler.GetRelatedPlans)
		v1.GET("/clients/:id", registryHandler.GetClient)
		v1.GET("/clients/address/:address", registryHandler.GetClientByAddress)
	}

	return r
}

// requestLogger 使用 zap 记录请求
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l := logger.With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("caller", c.GetHeader(handler.CallerHeader)),
		)
		status := c.Writer.Status()
		if status >= 500 {
			l.Error("request completed with %d in %s", status, time.Since(start))
			return
		}
		l.Debug("request completed with %d in %s", status, time.Since(start))
	}
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, "+handler.CallerHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
