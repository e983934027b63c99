package scheduler

import (
	"github.com/blues/rewardcenter/internal/config"
	"github.com/blues/rewardcenter/internal/logger"
	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-co-op/gocron/v2"
)

// DeadlineWatchJob 提示签署期已过、可申请退款的计划。只读，退款仍由创始人发起。
type DeadlineWatchJob struct {
	center *rewards.Center
	clock  rewards.Clock
	config config.SchedulerConfig
}

// NewDeadlineWatchJob 创建签署期巡检任务
func NewDeadlineWatchJob(center *rewards.Center, clock rewards.Clock, cfg config.SchedulerConfig) *DeadlineWatchJob {
	if clock == nil {
		clock = rewards.SystemClock
	}
	return &DeadlineWatchJob{center: center, clock: clock, config: cfg}
}

// GetName 获取任务名称
func (j *DeadlineWatchJob) GetName() string {
	return "signing_deadline_watch"
}

// GetSchedule 获取调度配置
func (j *DeadlineWatchJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.config.IntervalDuration())
}

// Execute 执行任务
func (j *DeadlineWatchJob) Execute() {
	expired := j.Expired()
	for _, addr := range expired {
		logger.Warn("Signing period of plan %s has expired, refund available", addr.Hex())
	}
	logger.Debug("Signing deadline watch completed. %d plans refundable", len(expired))
}

// Expired 处于签署阶段且已过截止时间的计划
func (j *DeadlineWatchJob) Expired() []common.Address {
	now := j.clock.Now()
	var out []common.Address
	for _, p := range j.center.Plans() {
		snap := p.Snapshot()
		if snap.Stage == rewards.StageSigning && !now.Before(snap.SignDeadline) {
			out = append(out, snap.Address)
		}
	}
	return out
}
