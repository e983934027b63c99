package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blues/rewardcenter/internal/chain"
	"github.com/blues/rewardcenter/internal/config"
	"github.com/blues/rewardcenter/internal/database"
	"github.com/blues/rewardcenter/internal/event"
	"github.com/blues/rewardcenter/internal/logger"
	"github.com/blues/rewardcenter/internal/metrics"
	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/blues/rewardcenter/internal/router"
	"github.com/blues/rewardcenter/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 时间来源
	var clock rewards.Clock = rewards.SystemClock
	if cfg.Rewards.Clock == "chain" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := chain.Dial(ctx, cfg.Chain)
		cancel()
		if err != nil {
			logger.Fatal("Failed to initialize chain client: %v", err)
		}
		defer client.Close()
		clock = chain.NewBlockClock(client, 5*time.Second, rewards.SystemClock)
	}

	// 事件分发与指标
	m := metrics.Default()
	dispatcher := event.NewDispatcher(db)
	dispatcher.RegisterObserver(m)

	center := rewards.NewCenter(cfg.Rewards.Center(),
		rewards.WithLifecycle(cfg.Rewards.LifecycleMode()),
		rewards.WithClock(clock),
		rewards.WithSink(dispatcher),
	)
	logger.Info("Reward center %s started, lifecycle=%s clock=%s",
		center.Address().Hex(), center.Lifecycle(), cfg.Rewards.Clock)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, center, prometheus.DefaultGatherer)

	// 启动定时任务
	tasks, err := scheduler.NewManager(db, center, clock, m, cfg.Scheduler)
	if err != nil {
		logger.Fatal("Failed to create task manager: %v", err)
	}
	if err := tasks.Start(); err != nil {
		logger.Fatal("Failed to start task manager: %v", err)
	}
	defer tasks.Stop()

	// 启动服务器
	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: r}
	go func() {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
	}
}
