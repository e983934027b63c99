package scheduler

import (
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/blues/rewardcenter/internal/config"
	"github.com/blues/rewardcenter/internal/database"
	"github.com/blues/rewardcenter/internal/logic"
	"github.com/blues/rewardcenter/internal/metrics"
	"github.com/blues/rewardcenter/internal/model"
	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	creator  = common.HexToAddress("0x1000000000000000000000000000000000000001")
	notifier = common.HexToAddress("0x2000000000000000000000000000000000000001")
	client   = common.HexToAddress("0x3000000000000000000000000000000000000001")
)

var schedulerCfg = config.SchedulerConfig{Interval: 60, SnapshotWorkers: 4}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	return db
}

// newCenter 创建三个计划：构建中、签署中、运行中
func newCenter(t *testing.T, clock rewards.Clock) (*rewards.Center, []*rewards.Plan) {
	t.Helper()
	center := rewards.NewCenter(common.HexToAddress("0xc0"), rewards.WithClock(clock))

	building, err := center.CreatePlan(creator, time.Minute, "building", big.NewInt(10))
	require.NoError(t, err)

	signing, err := center.CreatePlan(creator, time.Minute, "signing", big.NewInt(10))
	require.NoError(t, err)
	require.NoError(t, signing.BeginSigningStage(creator))

	active, err := center.CreatePlan(creator, time.Minute, "active", big.NewInt(10))
	require.NoError(t, err)
	_, err = active.AddRule(creator, 5, big.NewInt(2))
	require.NoError(t, err)
	require.NoError(t, active.AddNotifier(creator, notifier))
	require.NoError(t, active.BeginSigningStage(creator))
	_, err = active.Sign(creator, nil)
	require.NoError(t, err)
	require.NoError(t, active.SignUpClient(notifier, 1, client))
	_, err = active.NotifyPointsScored(notifier, 1, 5)
	require.NoError(t, err)

	return center, []*rewards.Plan{building, signing, active}
}

func TestSnapshotJobPersistsProfiles(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := rewards.ClockFunc(func() time.Time { return now })
	center, plans := newCenter(t, clock)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	snapshots := logic.NewSnapshotLogic(db)
	job := NewSnapshotJob(center, snapshots, m, clock, schedulerCfg)

	saved, err := job.Run()
	require.NoError(t, err)
	assert.Equal(t, 3, saved)

	// 再次执行只更新不新增
	job.Execute()
	var count int64
	require.NoError(t, db.Model(&model.PlanModel{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
	require.NoError(t, db.Model(&model.EntityModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&model.ClientModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	row, err := snapshots.GetPlanSnapshot(plans[2].Address().Hex())
	require.NoError(t, err)
	assert.Equal(t, "active", row.Stage)
	assert.Equal(t, "8", row.Balance)
	assert.Equal(t, "2", row.TotalRewarded)
	assert.True(t, row.SnapshotAt.Equal(now))

	var c model.ClientModel
	require.NoError(t, db.Where("client_id = ?", 1).First(&c).Error)
	assert.Equal(t, "2", c.Rewards)

	expected := `
# HELP rewardcenter_plans Number of plans per stage at the last snapshot.
# TYPE rewardcenter_plans gauge
rewardcenter_plans{stage="active"} 1
rewardcenter_plans{stage="construction"} 1
rewardcenter_plans{stage="deprecated"} 0
rewardcenter_plans{stage="signing"} 1
rewardcenter_plans{stage="sleeping"} 0
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "rewardcenter_plans"))
}

func TestDeadlineWatchJob(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := rewards.ClockFunc(func() time.Time { return now })
	center, plans := newCenter(t, clock)
	job := NewDeadlineWatchJob(center, clock, schedulerCfg)

	assert.Empty(t, job.Expired())

	now = now.Add(time.Minute)
	assert.Equal(t, []common.Address{plans[1].Address()}, job.Expired())
	job.Execute()

	_, err := plans[1].SignPeriodExpiredRefund(creator)
	require.NoError(t, err)
	assert.Empty(t, job.Expired())
}

func TestManagerLifecycle(t *testing.T) {
	db := newTestDB(t)
	center := rewards.NewCenter(common.HexToAddress("0xc0"))
	m, err := NewManager(db, center, nil, metrics.New(prometheus.NewRegistry()), schedulerCfg)
	require.NoError(t, err)

	names := make([]string, 0, len(m.Jobs()))
	for _, j := range m.Jobs() {
		names = append(names, j.GetName())
	}
	assert.Equal(t, []string{"profile_snapshot", "signing_deadline_watch"}, names)

	require.NoError(t, m.Start())
	m.Stop()
}
