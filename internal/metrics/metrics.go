package metrics

import (
	"math/big"
	"sync"

	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/prometheus/client_golang/prometheus"
)

// RewardsMetrics 奖励平台指标，作为事件观察者接入分发器
type RewardsMetrics struct {
	events       *prometheus.CounterVec
	rewardsPaid  prometheus.Counter
	pointsScored prometheus.Counter
	refunded     prometheus.Counter
	plansByStage *prometheus.GaugeVec
	journalFails prometheus.Counter
}

var (
	defaultOnce    sync.Once
	defaultMetrics *RewardsMetrics
)

// New 创建指标并注册到 reg
func New(reg prometheus.Registerer) *RewardsMetrics {
	m := &RewardsMetrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rewardcenter_events_total",
			Help: "Count of committed plan events by kind.",
		}, []string{"kind"}),
		rewardsPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rewardcenter_rewards_paid_wei_total",
			Help: "Sum of rewards paid to clients, in wei.",
		}),
		pointsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rewardcenter_points_scored_total",
			Help: "Sum of points reported by notifiers.",
		}),
		refunded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rewardcenter_refunded_wei_total",
			Help: "Sum of founder deposits refunded after an expired signing period, in wei.",
		}),
		plansByStage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rewardcenter_plans",
			Help: "Number of plans per stage at the last snapshot.",
		}, []string{"stage"}),
		journalFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rewardcenter_journal_failures_total",
			Help: "Count of event batches whose journal transaction was rolled back.",
		}),
	}
	reg.MustRegister(m.events, m.rewardsPaid, m.pointsScored, m.refunded, m.plansByStage, m.journalFails)
	return m
}

// Default 注册到默认 registry 的单例
func Default() *RewardsMetrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// Observe 实现 event.Observer
func (m *RewardsMetrics) Observe(e rewards.Event) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(string(e.Kind)).Inc()
	switch e.Kind {
	case rewards.EventRewardPaid:
		m.rewardsPaid.Add(weiFloat(e.Amount))
	case rewards.EventPointsScored:
		m.pointsScored.Add(float64(e.Points))
	case rewards.EventFounderRefunded:
		m.refunded.Add(weiFloat(e.Amount))
	}
}

// JournalFailed 实现 event.FailureObserver，按批次计数
func (m *RewardsMetrics) JournalFailed(_ []rewards.Event, _ error) {
	if m == nil {
		return
	}
	m.journalFails.Inc()
}

// SetPlansByStage 用快照结果覆盖各阶段计划数
func (m *RewardsMetrics) SetPlansByStage(counts map[rewards.Stage]int) {
	if m == nil {
		return
	}
	for _, s := range []rewards.Stage{
		rewards.StageConstruction,
		rewards.StageSigning,
		rewards.StageActive,
		rewards.StageSleeping,
		rewards.StageDeprecated,
	} {
		m.plansByStage.WithLabelValues(s.String()).Set(float64(counts[s]))
	}
}

func weiFloat(v *big.Int) float64 {
	if v == nil || v.Sign() <= 0 {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
