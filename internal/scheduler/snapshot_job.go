package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/blues/rewardcenter/internal/config"
	"github.com/blues/rewardcenter/internal/logger"
	"github.com/blues/rewardcenter/internal/logic"
	"github.com/blues/rewardcenter/internal/metrics"
	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
)

// SnapshotJob 将计划、实体、客户档案落库并刷新阶段指标
type SnapshotJob struct {
	center    *rewards.Center
	snapshots *logic.SnapshotLogic
	metrics   *metrics.RewardsMetrics
	clock     rewards.Clock
	config    config.SchedulerConfig
}

// NewSnapshotJob 创建快照任务
func NewSnapshotJob(center *rewards.Center, snapshots *logic.SnapshotLogic, m *metrics.RewardsMetrics, clock rewards.Clock, cfg config.SchedulerConfig) *SnapshotJob {
	if clock == nil {
		clock = rewards.SystemClock
	}
	return &SnapshotJob{
		center:    center,
		snapshots: snapshots,
		metrics:   m,
		clock:     clock,
		config:    cfg,
	}
}

// GetName 获取任务名称
func (j *SnapshotJob) GetName() string {
	return "profile_snapshot"
}

// GetSchedule 获取调度配置
func (j *SnapshotJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.config.IntervalDuration())
}

// Execute 执行任务
func (j *SnapshotJob) Execute() {
	saved, err := j.Run()
	if err != nil {
		logger.Error("Profile snapshot finished with errors, saved %d plans: %v", saved, err)
		return
	}
	logger.Info("Profile snapshot completed. Saved %d plans", saved)
}

// Run 并发保存计划快照，随后保存实体与客户档案
func (j *SnapshotJob) Run() (int, error) {
	at := j.clock.Now()
	plans := j.center.Plans()

	workers := j.config.SnapshotWorkers
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return 0, fmt.Errorf("创建协程池失败: %w", err)
	}
	defer pool.Release()

	var (
		wg     sync.WaitGroup
		saved  atomic.Int64
		failed atomic.Int64
		mu     sync.Mutex
		counts = make(map[rewards.Stage]int)
	)
	for _, plan := range plans {
		plan := plan // per-iteration copy (go 1.21 loop semantics)
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			snap := plan.Snapshot()
			mu.Lock()
			counts[snap.Stage]++
			mu.Unlock()

			profile, err := j.center.LookupPlan(snap.Address)
			if err == nil {
				err = j.snapshots.SavePlan(snap, profile, at)
			}
			if err != nil {
				logger.Error("Failed to snapshot plan %s: %v", snap.Address.Hex(), err)
				failed.Add(1)
				return
			}
			saved.Add(1)
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit snapshot task: %v", err)
			failed.Add(1)
		}
	}
	wg.Wait()
	j.metrics.SetPlansByStage(counts)

	for _, e := range j.center.Entities() {
		if err := j.snapshots.SaveEntity(e, at); err != nil {
			logger.Error("Failed to snapshot entity %s: %v", e.Address.Hex(), err)
			failed.Add(1)
		}
	}
	for _, c := range j.center.ClientProfiles() {
		if err := j.snapshots.SaveClient(c, at); err != nil {
			logger.Error("Failed to snapshot client %d: %v", c.ID, err)
			failed.Add(1)
		}
	}

	if n := failed.Load(); n > 0 {
		return int(saved.Load()), fmt.Errorf("%d 条快照保存失败", n)
	}
	return int(saved.Load()), nil
}
