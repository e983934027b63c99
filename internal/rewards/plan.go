package rewards

import (
	"fmt"
	"math"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// PlanConfig 创建计划所需参数
type PlanConfig struct {
	Address               common.Address
	Creator               common.Address
	Name                  string
	NonRefundableDuration time.Duration
	InitialPledge         *big.Int
	Lifecycle             Lifecycle
}

// Plan 奖励计划状态机。
// 每个操作按 校验 -> 计算 -> 上报注册中心 -> 应用 的顺序执行，
// 上报失败时本地状态保持不变。
type Plan struct {
	mu sync.Mutex

	address       common.Address
	name          string
	lifecycle     Lifecycle
	nonRefundable time.Duration
	createdAt     time.Time
	registry      Registry
	clock         Clock

	stage        Stage
	signDeadline time.Time
	founders     FounderRegistry
	rules        RuleTable
	notifiers    NotifierSet
	clients      ClientLedger
	ledger       *ValueLedger
}

// NewPlan 创建处于 CONSTRUCTION 阶段的计划，创建者成为第一位创始人
func NewPlan(cfg PlanConfig, registry Registry, clock Clock) (*Plan, error) {
	if cfg.NonRefundableDuration <= 0 {
		return nil, fmt.Errorf("%w: non-refundable duration must be positive", ErrInvalidArgument)
	}
	if cfg.Creator == (common.Address{}) {
		return nil, fmt.Errorf("%w: empty creator address", ErrInvalidArgument)
	}
	pledge := amountOrZero(cfg.InitialPledge)
	ledger, err := NewValueLedger(pledge)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock
	}
	p := &Plan{
		address:       cfg.Address,
		name:          cfg.Name,
		lifecycle:     cfg.Lifecycle,
		nonRefundable: cfg.NonRefundableDuration,
		createdAt:     clock.Now(),
		registry:      registry,
		clock:         clock,
		stage:         StageConstruction,
		notifiers:     newNotifierSet(),
		clients:       newClientLedger(),
		ledger:        ledger,
	}
	p.founders.add(cfg.Creator, pledge, pledge)
	return p, nil
}

// commit 将事件上报注册中心，成功后才应用本地修改
func (p *Plan) commit(caller common.Address, events []Event, stage Stage, apply func()) error {
	now := p.clock.Now()
	for i := range events {
		events[i].Plan = p.address
		events[i].Caller = caller
		events[i].Stage = stage
		events[i].Time = now
	}
	if p.registry != nil {
		if err := p.registry.Record(p.address, events); err != nil {
			return err
		}
	}
	apply()
	return nil
}

func (p *Plan) requireStage(op Operation, allowed ...Stage) error {
	for _, s := range allowed {
		if p.stage == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s not allowed in %s", ErrInvalidStage, op, p.stage)
}

// AddFounder 添加创始人
func (p *Plan) AddFounder(caller, founder common.Address, pledge *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.authorize(OpAddFounder, caller).Err(); err != nil {
		return err
	}
	if err := p.requireStage(OpAddFounder, StageConstruction); err != nil {
		return err
	}
	if founder == (common.Address{}) {
		return fmt.Errorf("%w: empty founder address", ErrInvalidArgument)
	}
	pledge = amountOrZero(pledge)
	if pledge.Sign() < 0 {
		return ErrNegativeAmount
	}
	if p.founders.Contains(founder) {
		return fmt.Errorf("%w: %s", ErrDuplicateFounder, founder.Hex())
	}

	events := []Event{{Kind: EventFounderAdded, Address: founder, Amount: pledge}}
	return p.commit(caller, events, p.stage, func() {
		p.founders.add(founder, pledge, new(big.Int))
	})
}

// LeavePlan 非创建者的创始人退出计划
func (p *Plan) LeavePlan(caller common.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.authorize(OpLeavePlan, caller).Err(); err != nil {
		return err
	}
	if err := p.requireStage(OpLeavePlan, StageConstruction); err != nil {
		return err
	}
	index := p.founders.Index(caller)
	f := p.founders.founders[index]

	events := []Event{{Kind: EventFounderLeft, Address: caller, Amount: new(big.Int).Set(f.Pledged)}}
	return p.commit(caller, events, p.stage, func() {
		p.founders.remove(index)
	})
}

// AddRule 添加兑换规则，保持阈值升序
func (p *Plan) AddRule(caller common.Address, threshold uint64, reward *big.Int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.authorize(OpAddRule, caller).Err(); err != nil {
		return 0, err
	}
	if err := p.requireStage(OpAddRule, StageConstruction); err != nil {
		return 0, err
	}
	rule := Rule{Threshold: threshold, Reward: reward}
	pos, err := p.rules.Position(rule)
	if err != nil {
		return 0, err
	}

	events := []Event{{Kind: EventRuleAdded, Points: threshold, Amount: new(big.Int).Set(reward), Index: pos}}
	err = p.commit(caller, events, p.stage, func() {
		p.rules.insertAt(pos, rule)
	})
	return pos, err
}

// RemoveRule 按下标删除兑换规则
func (p *Plan) RemoveRule(caller common.Address, index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.authorize(OpRemoveRule, caller).Err(); err != nil {
		return err
	}
	if err := p.requireStage(OpRemoveRule, StageConstruction); err != nil {
		return err
	}
	rule, err := p.rules.Get(index)
	if err != nil {
		return err
	}

	events := []Event{{Kind: EventRuleRemoved, Points: rule.Threshold, Amount: rule.Reward, Index: index}}
	return p.commit(caller, events, p.stage, func() {
		_, _ = p.rules.Remove(index)
	})
}

// AddNotifier 授权通知者
func (p *Plan) AddNotifier(caller, notifier common.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.authorize(OpAddNotifier, caller).Err(); err != nil {
		return err
	}
	if err := p.requireStage(OpAddNotifier, StageConstruction, StageSigning, StageActive, StageSleeping); err != nil {
		return err
	}
	if notifier == (common.Address{}) {
		return fmt.Errorf("%w: empty notifier address", ErrInvalidArgument)
	}
	if p.notifiers.IsActive(notifier) {
		return fmt.Errorf("%w: %s", ErrDuplicateNotifier, notifier.Hex())
	}

	events := []Event{{Kind: EventNotifierAdded, Address: notifier}}
	return p.commit(caller, events, p.stage, func() {
		p.notifiers.put(notifier, caller)
	})
}

// RevokeNotifier 撤销通知者，保留记录
func (p *Plan) RevokeNotifier(caller, notifier common.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.authorize(OpRevokeNotifier, caller).Err(); err != nil {
		return err
	}
	if err := p.requireStage(OpRevokeNotifier, StageConstruction, StageSigning, StageActive, StageSleeping); err != nil {
		return err
	}
	if !p.notifiers.IsActive(notifier) {
		return fmt.Errorf("%w: %s", ErrUnknownNotifier, notifier.Hex())
	}

	events := []Event{{Kind: EventNotifierRevoked, Address: notifier}}
	return p.commit(caller, events, p.stage, func() {
		p.notifiers.revoke(notifier)
	})
}

// BeginSigningStage 进入签署阶段并设置退款截止时间
func (p *Plan) BeginSigningStage(caller common.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.authorize(OpBeginSigning, caller).Err(); err != nil {
		return err
	}
	if err := p.requireStage(OpBeginSigning, StageConstruction); err != nil {
		return err
	}
	deadline := p.clock.Now().Add(p.nonRefundable)

	events := []Event{{Kind: EventSigningBegun}}
	return p.commit(caller, events, StageSigning, func() {
		p.stage = StageSigning
		p.signDeadline = deadline
	})
}

// Sign 创始人签署并支付尚未入账的出资（见 Founder.Due），全部签署后计划激活
func (p *Plan) Sign(caller common.Address, value *big.Int) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.authorize(OpSign, caller).Err(); err != nil {
		return false, err
	}
	if err := p.requireStage(OpSign, StageSigning); err != nil {
		return false, err
	}
	index := p.founders.Index(caller)
	f := p.founders.founders[index]
	if f.Signed {
		return false, fmt.Errorf("%w: %s", ErrAlreadySigned, caller.Hex())
	}
	value = amountOrZero(value)
	if due := f.Due(); value.Cmp(due) != 0 {
		return false, fmt.Errorf("%w: sent %s, expected %s", ErrWrongPledgeAmount, value, due)
	}

	allSigned := p.founders.SignedCount()+1 == p.founders.Len()
	next := p.stage
	if allSigned {
		next = StageActive
	}

	events := []Event{{Kind: EventFounderSigned, Address: caller, Amount: value, Flag: allSigned}}
	err := p.commit(caller, events, next, func() {
		p.founders.markSigned(index)
		_ = p.ledger.Credit(value)
		p.stage = next
	})
	if err != nil {
		return false, err
	}
	return allSigned, nil
}

// SignPeriodExpiredRefund 签署超时后退回全部出资并回到 CONSTRUCTION
func (p *Plan) SignPeriodExpiredRefund(caller common.Address) ([]Refund, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.authorize(OpExpiredRefund, caller).Err(); err != nil {
		return nil, err
	}
	if p.stage != StageSigning {
		return nil, fmt.Errorf("%w: plan is in %s", ErrNotExpired, p.stage)
	}
	if now := p.clock.Now(); now.Before(p.signDeadline) {
		return nil, fmt.Errorf("%w: deadline %s", ErrNotExpired, p.signDeadline.UTC().Format(time.RFC3339))
	}

	refunds := p.founders.refunds()
	total := new(big.Int)
	events := make([]Event, 0, len(refunds)+1)
	for _, r := range refunds {
		total.Add(total, r.Amount)
		events = append(events, Event{Kind: EventFounderRefunded, Address: r.Address, Amount: new(big.Int).Set(r.Amount)})
	}
	if p.ledger.Balance().Cmp(total) < 0 {
		return nil, fmt.Errorf("%w: refunds %s exceed balance", ErrInsufficientFunds, total)
	}
	events = append(events, Event{Kind: EventSigningReset, Amount: total})

	err := p.commit(caller, events, StageConstruction, func() {
		_ = p.ledger.Debit(total)
		p.founders.reset()
		p.stage = StageConstruction
		p.signDeadline = time.Time{}
	})
	if err != nil {
		return nil, err
	}
	return refunds, nil
}

// SignUpClient 通知者注册客户
func (p *Plan) SignUpClient(caller common.Address, id ClientID, addr common.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.authorize(OpSignUpClient, caller).Err(); err != nil {
		return err
	}
	if err := p.requireStage(OpSignUpClient, StageActive); err != nil {
		return err
	}
	if id == 0 {
		return fmt.Errorf("%w: client id must be positive", ErrInvalidArgument)
	}
	if addr == (common.Address{}) {
		return fmt.Errorf("%w: empty client address", ErrInvalidArgument)
	}
	if p.clients.Contains(id) {
		return fmt.Errorf("%w: %d", ErrDuplicateClient, id)
	}

	events := []Event{{Kind: EventClientSignedUp, ClientID: id, Address: addr}}
	return p.commit(caller, events, p.stage, func() {
		p.clients.add(id, addr)
	})
}

// NotifyPointsScored 通知者上报客户积分并执行兑换
func (p *Plan) NotifyPointsScored(caller common.Address, id ClientID, points uint64) (Redemption, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.authorize(OpNotifyPoints, caller).Err(); err != nil {
		return Redemption{}, err
	}
	if err := p.requireStage(OpNotifyPoints, StageActive); err != nil {
		return Redemption{}, err
	}
	if points == 0 {
		return Redemption{}, fmt.Errorf("%w: points must be positive", ErrInvalidArgument)
	}
	acc, ok := p.clients.Get(id)
	if !ok {
		return Redemption{}, fmt.Errorf("%w: %d", ErrUnknownClient, id)
	}
	if acc.Points > math.MaxUint64-points {
		return Redemption{}, ErrPointsOverflow
	}

	res := Redeem(p.rules.Rules(), acc.Points+points, p.ledger.Balance())

	next := p.stage
	events := []Event{{Kind: EventPointsScored, ClientID: id, Address: acc.Address, Points: points, Amount: new(big.Int).Set(res.Paid)}}
	if res.Paid.Sign() > 0 {
		events = append(events, Event{Kind: EventRewardPaid, ClientID: id, Address: acc.Address, Amount: new(big.Int).Set(res.Paid)})
	}
	if res.Exhausted {
		if p.lifecycle == LifecycleTerminal {
			next = StageDeprecated
			events = append(events, Event{Kind: EventPlanDeactivated})
		} else {
			next = StageSleeping
			events = append(events, Event{Kind: EventPlanSlept})
		}
	}

	err := p.commit(caller, events, next, func() {
		_ = p.ledger.Debit(res.Paid)
		p.clients.setPoints(id, res.Points)
		p.stage = next
	})
	if err != nil {
		return Redemption{}, err
	}
	return res, nil
}

// Awake 创始人为休眠计划注资并重新激活
func (p *Plan) Awake(caller common.Address, resetPoints bool, value *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.authorize(OpAwake, caller).Err(); err != nil {
		return err
	}
	if err := p.requireStage(OpAwake, StageSleeping); err != nil {
		return err
	}
	value = amountOrZero(value)
	if value.Sign() <= 0 {
		return fmt.Errorf("%w: awake value must be positive", ErrInvalidArgument)
	}

	events := []Event{{Kind: EventPlanAwoken, Amount: value, Flag: resetPoints}}
	return p.commit(caller, events, StageActive, func() {
		_ = p.ledger.Credit(value)
		if resetPoints {
			p.clients.resetPoints()
		}
		p.stage = StageActive
	})
}

// Address 计划地址
func (p *Plan) Address() common.Address {
	return p.address
}

// Name 计划名称
func (p *Plan) Name() string {
	return p.name
}

// Lifecycle 生命周期策略
func (p *Plan) Lifecycle() Lifecycle {
	return p.lifecycle
}

// NonRefundableDuration 签署阶段不可退款时长
func (p *Plan) NonRefundableDuration() time.Duration {
	return p.nonRefundable
}

// Creator 创建者地址
func (p *Plan) Creator() common.Address {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.founders.Creator()
}

// Stage 当前阶段
func (p *Plan) Stage() Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

// Balance 当前余额
func (p *Plan) Balance() *big.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.Balance()
}

// SignDeadline 签署截止时间，未进入签署阶段时为零值
func (p *Plan) SignDeadline() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signDeadline
}

// Founders 创始人列表
func (p *Plan) Founders() []Founder {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.founders.Founders()
}

// Rules 升序规则列表
func (p *Plan) Rules() []Rule {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rules.Rules()
}

// Notifiers 通知者列表
func (p *Plan) Notifiers() []Notifier {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notifiers.Notifiers()
}

// Client 获取客户账户
func (p *Plan) Client(id ClientID) (ClientAccount, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	acc, ok := p.clients.Get(id)
	if !ok {
		return ClientAccount{}, fmt.Errorf("%w: %d", ErrUnknownClient, id)
	}
	return acc, nil
}

// Clients 全部客户账户
func (p *Plan) Clients() []ClientAccount {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clients.Accounts()
}

// Roles 调用方角色
func (p *Plan) Roles(caller common.Address) Roles {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rolesLocked(caller)
}

// Snapshot 计划状态快照
type Snapshot struct {
	Address      common.Address
	Name         string
	Creator      common.Address
	Lifecycle    Lifecycle
	Stage        Stage
	Balance      *big.Int
	CreatedAt    time.Time
	SignDeadline time.Time
	Founders     []Founder
	Rules        []Rule
	Notifiers    []Notifier
	Clients      []ClientAccount
}

// Snapshot 返回一致的状态快照
func (p *Plan) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Address:      p.address,
		Name:         p.name,
		Creator:      p.founders.Creator(),
		Lifecycle:    p.lifecycle,
		Stage:        p.stage,
		Balance:      p.ledger.Balance(),
		CreatedAt:    p.createdAt,
		SignDeadline: p.signDeadline,
		Founders:     p.founders.Founders(),
		Rules:        p.rules.Rules(),
		Notifiers:    p.notifiers.Notifiers(),
		Clients:      p.clients.Accounts(),
	}
}
