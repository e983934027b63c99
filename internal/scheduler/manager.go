package scheduler

import (
	"fmt"

	"github.com/blues/rewardcenter/internal/config"
	"github.com/blues/rewardcenter/internal/logger"
	"github.com/blues/rewardcenter/internal/logic"
	"github.com/blues/rewardcenter/internal/metrics"
	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Job 定时任务
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	jobs      []Job
}

// NewManager 创建新的任务管理器
func NewManager(db *gorm.DB, center *rewards.Center, clock rewards.Clock, m *metrics.RewardsMetrics, cfg config.SchedulerConfig) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("创建调度器失败: %w", err)
	}

	return &Manager{
		scheduler: s,
		jobs: []Job{
			NewSnapshotJob(center, logic.NewSnapshotLogic(db), m, clock, cfg),
			NewDeadlineWatchJob(center, clock, cfg),
		},
	}, nil
}

// Start 注册所有任务并启动调度器
func (m *Manager) Start() error {
	for _, job := range m.jobs {
		if err := m.register(job); err != nil {
			return err
		}
	}
	m.scheduler.Start()

	logger.Info("Task manager started with %d jobs", len(m.jobs))
	return nil
}

func (m *Manager) register(job Job) error {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("注册任务 %s 失败: %w", job.GetName(), err)
	}
	return nil
}

// Jobs 已注册的任务
func (m *Manager) Jobs() []Job {
	return m.jobs
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
