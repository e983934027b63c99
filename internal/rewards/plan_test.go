package rewards

import (
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	centerAddr = common.HexToAddress("0xc0ffee0000000000000000000000000000000001")
	creator    = common.HexToAddress("0x1000000000000000000000000000000000000001")
	cofounder  = common.HexToAddress("0x1000000000000000000000000000000000000002")
	notifier   = common.HexToAddress("0x2000000000000000000000000000000000000001")
	clientAddr = common.HexToAddress("0x3000000000000000000000000000000000000001")
	stranger   = common.HexToAddress("0x9000000000000000000000000000000000000009")
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Emit(events []Event) {
	s.mu.Lock()
	s.events = append(s.events, events...)
	s.mu.Unlock()
}

func (s *recordingSink) Kinds() []EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EventKind, len(s.events))
	for i, e := range s.events {
		out[i] = e.Kind
	}
	return out
}

// switchRegistry 可按需拒绝上报
type switchRegistry struct {
	err   error
	calls int
}

func (r *switchRegistry) Record(common.Address, []Event) error {
	r.calls++
	return r.err
}

// activePlan 创建一个只有创建者、已激活的计划
func activePlan(t *testing.T, c *Center, pledge *big.Int, rules ...Rule) *Plan {
	t.Helper()
	p, err := c.CreatePlan(creator, time.Hour, "coffee", pledge)
	require.NoError(t, err)
	for _, r := range rules {
		_, err := p.AddRule(creator, r.Threshold, r.Reward)
		require.NoError(t, err)
	}
	require.NoError(t, p.AddNotifier(creator, notifier))
	require.NoError(t, p.BeginSigningStage(creator))
	all, err := p.Sign(creator, new(big.Int))
	require.NoError(t, err)
	require.True(t, all)
	require.Equal(t, StageActive, p.Stage())
	require.NoError(t, p.SignUpClient(notifier, 1, clientAddr))
	return p
}

func TestPlanSigningTransition(t *testing.T) {
	c := NewCenter(centerAddr)
	p, err := c.CreatePlan(creator, time.Hour, "coffee", big.NewInt(100))
	require.NoError(t, err)
	require.NoError(t, p.AddFounder(creator, cofounder, big.NewInt(50)))
	require.NoError(t, p.BeginSigningStage(cofounder))
	assert.Equal(t, StageSigning, p.Stage())

	_, err = p.Sign(cofounder, big.NewInt(40))
	assert.ErrorIs(t, err, ErrWrongPledgeAmount)

	// 创建者的初始出资已在创建时入账，签署只需补足差额
	founder, ok := p.founders.Get(creator)
	require.True(t, ok)
	assert.Equal(t, 0, founder.Due().Sign())
	_, err = p.Sign(creator, big.NewInt(100))
	assert.ErrorIs(t, err, ErrWrongPledgeAmount)
	assertAmount(t, big.NewInt(100), p.Balance())

	all, err := p.Sign(creator, new(big.Int))
	require.NoError(t, err)
	assert.False(t, all)
	assert.Equal(t, StageSigning, p.Stage())

	_, err = p.Sign(creator, new(big.Int))
	assert.ErrorIs(t, err, ErrAlreadySigned)

	all, err = p.Sign(cofounder, big.NewInt(50))
	require.NoError(t, err)
	assert.True(t, all)
	assert.Equal(t, StageActive, p.Stage())
	assertAmount(t, big.NewInt(150), p.Balance())

	for _, f := range p.Founders() {
		assert.True(t, f.Signed)
	}

	err = p.BeginSigningStage(creator)
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestPlanAuthorization(t *testing.T) {
	c := NewCenter(centerAddr)
	p, err := c.CreatePlan(creator, time.Hour, "coffee", nil)
	require.NoError(t, err)

	_, err = p.AddRule(stranger, 10, big.NewInt(1))
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = p.LeavePlan(creator)
	assert.ErrorIs(t, err, ErrCreatorCannotLeave)
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = p.LeavePlan(stranger)
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = p.SignUpClient(creator, 1, clientAddr)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// 授权先于阶段检查
	_, err = p.NotifyPointsScored(stranger, 1, 10)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, p.AddNotifier(creator, notifier))
	err = p.AddNotifier(creator, notifier)
	assert.ErrorIs(t, err, ErrDuplicateNotifier)

	err = p.SignUpClient(notifier, 1, clientAddr)
	assert.ErrorIs(t, err, ErrInvalidStage)

	require.NoError(t, p.AddFounder(creator, cofounder, big.NewInt(5)))
	err = p.AddFounder(cofounder, cofounder, big.NewInt(5))
	assert.ErrorIs(t, err, ErrDuplicateFounder)

	require.NoError(t, p.BeginSigningStage(creator))
	_, err = p.AddRule(creator, 10, big.NewInt(1))
	assert.ErrorIs(t, err, ErrInvalidStage)
	err = p.LeavePlan(cofounder)
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestPlanRuleManagement(t *testing.T) {
	c := NewCenter(centerAddr)
	p, err := c.CreatePlan(creator, time.Hour, "coffee", nil)
	require.NoError(t, err)

	idx, err := p.AddRule(creator, 1000, big.NewInt(35))
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	idx, err = p.AddRule(creator, 100, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	_, err = p.AddRule(creator, 100, big.NewInt(2))
	assert.ErrorIs(t, err, ErrDuplicateRule)

	err = p.RemoveRule(creator, 5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	require.NoError(t, p.RemoveRule(creator, 0))

	rules := p.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, uint64(1000), rules[0].Threshold)
}

func TestNotifyPointsTwoSmallScores(t *testing.T) {
	c := NewCenter(centerAddr)
	p := activePlan(t, c, wei("100000000000000000000"), sampleRules()...)

	res, err := p.NotifyPointsScored(notifier, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Paid.Sign())
	acc, err := p.Client(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), acc.Points)

	res, err = p.NotifyPointsScored(notifier, 1, 50)
	require.NoError(t, err)
	assertAmount(t, wei("10000000000000"), res.Paid)
	acc, err = p.Client(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), acc.Points)
}

func TestNotifyPointsCascade(t *testing.T) {
	sink := &recordingSink{}
	c := NewCenter(centerAddr, WithSink(sink))
	initial := wei("100000000000000000000")
	p := activePlan(t, c, initial, sampleRules()...)

	res, err := p.NotifyPointsScored(notifier, 1, 11250)
	require.NoError(t, err)
	assertAmount(t, wei("6055000000000000"), res.Paid)
	assertAmount(t, new(big.Int).Sub(initial, res.Paid), p.Balance())

	acc, err := p.Client(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), acc.Points)

	profile, err := c.LookupPlan(p.Address())
	require.NoError(t, err)
	assertAmount(t, res.Paid, profile.TotalRewarded)
	client, err := c.LookupClient(1)
	require.NoError(t, err)
	assertAmount(t, res.Paid, client.Rewards)

	kinds := sink.Kinds()
	assert.Equal(t, []EventKind{EventPointsScored, EventRewardPaid}, kinds[len(kinds)-2:])
}

func TestNotifyPointsExhaustsBalance(t *testing.T) {
	sink := &recordingSink{}
	c := NewCenter(centerAddr, WithSink(sink))
	p := activePlan(t, c, wei("90000000000000"), Rule{Threshold: 1000, Reward: wei("35000000000000")})

	res, err := p.NotifyPointsScored(notifier, 1, 3000)
	require.NoError(t, err)
	assertAmount(t, wei("90000000000000"), res.Paid)
	assert.Equal(t, uint64(2571), res.Consumed)
	assert.True(t, res.Exhausted)
	assert.Equal(t, StageSleeping, p.Stage())
	assert.Equal(t, 0, p.Balance().Sign())
	assert.Contains(t, sink.Kinds(), EventPlanSlept)

	_, err = p.NotifyPointsScored(notifier, 1, 10)
	assert.ErrorIs(t, err, ErrInvalidStage)

	err = p.Awake(creator, false, new(big.Int))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	require.NoError(t, p.Awake(creator, false, wei("1000000000000000")))
	assert.Equal(t, StageActive, p.Stage())
	acc, err := p.Client(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(429), acc.Points)

	profile, err := c.LookupPlan(p.Address())
	require.NoError(t, err)
	assert.True(t, profile.Active)
}

func TestAwakeResetsPoints(t *testing.T) {
	c := NewCenter(centerAddr)
	p := activePlan(t, c, big.NewInt(10), Rule{Threshold: 100, Reward: big.NewInt(10)})
	require.NoError(t, p.SignUpClient(notifier, 2, stranger))

	_, err := p.NotifyPointsScored(notifier, 2, 40)
	require.NoError(t, err)
	_, err = p.NotifyPointsScored(notifier, 1, 250)
	require.NoError(t, err)
	require.Equal(t, StageSleeping, p.Stage())

	err = p.Awake(stranger, true, big.NewInt(10))
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, p.Awake(creator, true, big.NewInt(10)))
	for _, acc := range p.Clients() {
		assert.Equal(t, uint64(0), acc.Points)
	}
	assertAmount(t, big.NewInt(10), p.Balance())
}

func TestNotifyPointsErrors(t *testing.T) {
	c := NewCenter(centerAddr)
	p := activePlan(t, c, big.NewInt(100), Rule{Threshold: 10, Reward: big.NewInt(1)})

	_, err := p.NotifyPointsScored(notifier, 7, 10)
	assert.ErrorIs(t, err, ErrUnknownClient)
	assert.ErrorIs(t, err, ErrUnknownEntry)

	_, err = p.NotifyPointsScored(notifier, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = p.SignUpClient(notifier, 1, clientAddr)
	assert.ErrorIs(t, err, ErrDuplicateClient)
	err = p.SignUpClient(notifier, 0, clientAddr)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	require.NoError(t, p.RevokeNotifier(creator, notifier))
	_, err = p.NotifyPointsScored(notifier, 1, 10)
	assert.ErrorIs(t, err, ErrUnauthorized)
	err = p.RevokeNotifier(creator, notifier)
	assert.ErrorIs(t, err, ErrUnknownNotifier)
}

func TestSignPeriodExpiredRefund(t *testing.T) {
	clock := newFakeClock()
	sink := &recordingSink{}
	c := NewCenter(centerAddr, WithClock(clock), WithSink(sink))
	p, err := c.CreatePlan(creator, time.Hour, "coffee", big.NewInt(100))
	require.NoError(t, err)
	require.NoError(t, p.AddFounder(creator, cofounder, big.NewInt(50)))
	require.NoError(t, p.AddFounder(creator, stranger, big.NewInt(70)))

	_, err = p.SignPeriodExpiredRefund(creator)
	assert.ErrorIs(t, err, ErrNotExpired)

	require.NoError(t, p.BeginSigningStage(creator))
	assert.Equal(t, clock.Now().Add(time.Hour), p.SignDeadline())
	_, err = p.Sign(cofounder, big.NewInt(50))
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	_, err = p.SignPeriodExpiredRefund(cofounder)
	assert.ErrorIs(t, err, ErrNotExpired)

	clock.Advance(30 * time.Minute)
	// 过期后也只有创始人可以发起退款
	_, err = p.SignPeriodExpiredRefund(notifier)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, StageSigning, p.Stage())

	refunds, err := p.SignPeriodExpiredRefund(cofounder)
	require.NoError(t, err)
	require.Len(t, refunds, 2)
	assert.Equal(t, creator, refunds[0].Address)
	assertAmount(t, big.NewInt(100), refunds[0].Amount)
	assert.Equal(t, cofounder, refunds[1].Address)
	assertAmount(t, big.NewInt(50), refunds[1].Amount)

	assert.Equal(t, StageConstruction, p.Stage())
	assert.Equal(t, 0, p.Balance().Sign())
	assert.True(t, p.SignDeadline().IsZero())
	for _, f := range p.Founders() {
		assert.False(t, f.Signed)
		assert.Equal(t, 0, f.Deposited.Sign())
	}
	assert.Contains(t, sink.Kinds(), EventSigningReset)

	// 重新签署时创建者需要补足出资
	require.NoError(t, p.BeginSigningStage(creator))
	_, err = p.Sign(creator, new(big.Int))
	assert.ErrorIs(t, err, ErrWrongPledgeAmount)
	_, err = p.Sign(creator, big.NewInt(100))
	require.NoError(t, err)
}

func TestLeavePlan(t *testing.T) {
	c := NewCenter(centerAddr)
	p, err := c.CreatePlan(creator, time.Hour, "coffee", nil)
	require.NoError(t, err)
	require.NoError(t, p.AddFounder(creator, cofounder, big.NewInt(5)))

	entity, err := c.LookupEntity(cofounder)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), entity.RunningPlans)
	assert.Equal(t, []common.Address{p.Address()}, c.RelatedPlans(cofounder))

	require.NoError(t, p.LeavePlan(cofounder))
	assert.Len(t, p.Founders(), 1)

	entity, err = c.LookupEntity(cofounder)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), entity.RunningPlans)
	assert.Empty(t, c.RelatedPlans(cofounder))
	roles, err := c.RolesInPlan(p.Address(), cofounder)
	require.NoError(t, err)
	assert.False(t, roles.Any())
}

func TestPlanRegistryRejectionLeavesNoTrace(t *testing.T) {
	reg := &switchRegistry{}
	p, err := NewPlan(PlanConfig{
		Address:               common.HexToAddress("0xabc"),
		Creator:               creator,
		Name:                  "isolated",
		NonRefundableDuration: time.Hour,
		InitialPledge:         big.NewInt(20),
	}, reg, newFakeClock())
	require.NoError(t, err)

	_, err = p.AddRule(creator, 100, big.NewInt(10))
	require.NoError(t, err)
	require.NoError(t, p.AddNotifier(creator, notifier))
	require.NoError(t, p.BeginSigningStage(creator))
	_, err = p.Sign(creator, new(big.Int))
	require.NoError(t, err)
	require.NoError(t, p.SignUpClient(notifier, 1, clientAddr))

	reg.err = errors.New("registry unavailable")
	before := p.Snapshot()

	_, err = p.NotifyPointsScored(notifier, 1, 500)
	assert.ErrorIs(t, err, reg.err)
	_, err = p.AddRule(creator, 5, big.NewInt(1))
	assert.Error(t, err)
	err = p.SignUpClient(notifier, 2, stranger)
	assert.ErrorIs(t, err, reg.err)

	after := p.Snapshot()
	assertAmount(t, before.Balance, after.Balance)
	assert.Equal(t, before.Stage, after.Stage)
	assert.Equal(t, before.Clients, after.Clients)
	assert.Len(t, after.Rules, 1)

	reg.err = nil
	res, err := p.NotifyPointsScored(notifier, 1, 500)
	require.NoError(t, err)
	assertAmount(t, big.NewInt(20), res.Paid)
	assert.Equal(t, StageSleeping, p.Stage())
}

func TestNewPlanValidation(t *testing.T) {
	_, err := NewPlan(PlanConfig{Creator: creator}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewPlan(PlanConfig{Creator: creator, NonRefundableDuration: time.Minute, InitialPledge: big.NewInt(-1)}, nil, nil)
	assert.ErrorIs(t, err, ErrNegativeAmount)

	p, err := NewPlan(PlanConfig{Creator: creator, NonRefundableDuration: time.Minute}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, creator, p.Creator())
	assert.Equal(t, StageConstruction, p.Stage())
}

func TestConcurrentNotifications(t *testing.T) {
	c := NewCenter(centerAddr)
	p := activePlan(t, c, big.NewInt(1_000_000), Rule{Threshold: 10, Reward: big.NewInt(1)})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := p.NotifyPointsScored(notifier, 1, 10)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assertAmount(t, big.NewInt(1_000_000-800), p.Balance())
	profile, err := c.LookupPlan(p.Address())
	require.NoError(t, err)
	assertAmount(t, big.NewInt(800), profile.TotalRewarded)
}
