package rewards

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// CenterOption 注册中心选项
type CenterOption func(*Center)

// WithLifecycle 设置新建计划的生命周期策略
func WithLifecycle(l Lifecycle) CenterOption {
	return func(c *Center) { c.lifecycle = l }
}

// WithClock 设置时间来源
func WithClock(clock Clock) CenterOption {
	return func(c *Center) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithSink 设置事件接收者
func WithSink(sink EventSink) CenterOption {
	return func(c *Center) { c.sink = sink }
}

// Center 奖励中心，维护跨计划的档案与索引。
// 只通过各计划的 planRegistry 接收事件，持锁期间从不回调计划。
type Center struct {
	mu sync.RWMutex

	address   common.Address
	nonce     uint64
	lifecycle Lifecycle
	clock     Clock
	sink      EventSink

	plans     map[common.Address]*Plan
	planOrder []common.Address

	planProfiles map[common.Address]*PlanProfile
	entities     map[common.Address]*EntityProfile
	clients      map[ClientID]*ClientProfile
	clientIDs    map[common.Address]ClientID

	roles   map[common.Address]map[common.Address]Roles
	related map[common.Address][]common.Address
}

// NewCenter 创建奖励中心，address 用于派生计划地址
func NewCenter(address common.Address, opts ...CenterOption) *Center {
	c := &Center{
		address:      address,
		clock:        SystemClock,
		plans:        make(map[common.Address]*Plan),
		planProfiles: make(map[common.Address]*PlanProfile),
		entities:     make(map[common.Address]*EntityProfile),
		clients:      make(map[ClientID]*ClientProfile),
		clientIDs:    make(map[common.Address]ClientID),
		roles:        make(map[common.Address]map[common.Address]Roles),
		related:      make(map[common.Address][]common.Address),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Address 中心地址
func (c *Center) Address() common.Address {
	return c.address
}

// Lifecycle 新建计划使用的生命周期策略
func (c *Center) Lifecycle() Lifecycle {
	return c.lifecycle
}

// CreatePlan 创建计划，调用方成为创建者，初始出资计入计划余额
func (c *Center) CreatePlan(caller common.Address, nonRefundable time.Duration, name string, initialPledge *big.Int) (*Plan, error) {
	if nonRefundable <= 0 {
		return nil, fmt.Errorf("%w: non-refundable duration must be positive", ErrInvalidArgument)
	}
	if caller == (common.Address{}) {
		return nil, fmt.Errorf("%w: empty creator address", ErrInvalidArgument)
	}
	pledge := amountOrZero(initialPledge)
	if pledge.Sign() < 0 {
		return nil, ErrNegativeAmount
	}

	c.mu.Lock()
	addr := crypto.CreateAddress(c.address, c.nonce)
	plan, err := NewPlan(PlanConfig{
		Address:               addr,
		Creator:               caller,
		Name:                  name,
		NonRefundableDuration: nonRefundable,
		InitialPledge:         pledge,
		Lifecycle:             c.lifecycle,
	}, planRegistry{center: c, plan: addr}, c.clock)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.nonce++
	c.plans[addr] = plan
	c.planOrder = append(c.planOrder, addr)
	c.planProfiles[addr] = &PlanProfile{
		Address:       addr,
		Creator:       caller,
		Name:          name,
		Active:        true,
		TotalRewarded: new(big.Int),
	}
	c.roles[addr] = make(map[common.Address]Roles)
	c.joinEntity(caller)
	c.grant(addr, caller, func(r *Roles) { r.IsFounder = true })
	c.mu.Unlock()

	c.emit([]Event{{
		Kind:    EventPlanCreated,
		Plan:    addr,
		Caller:  caller,
		Address: caller,
		Amount:  pledge,
		Name:    name,
		Stage:   StageConstruction,
		Time:    c.clock.Now(),
	}})
	return plan, nil
}

// planRegistry 计划持有的上报通道，只接受所属计划的事件。
// 中心不导出任何修改档案的方法，奖励与停用只能随计划自身的原子批次上报。
type planRegistry struct {
	center *Center
	plan   common.Address
}

// Record 实现 Registry
func (r planRegistry) Record(plan common.Address, events []Event) error {
	if plan != r.plan {
		return fmt.Errorf("%w: plan %s cannot report for %s", ErrUnauthorized, r.plan.Hex(), plan.Hex())
	}
	return r.center.record(plan, events)
}

// record 校验并原子应用一批事件，校验失败时不做任何修改
func (c *Center) record(plan common.Address, events []Event) error {
	c.mu.Lock()
	if err := c.validateLocked(plan, events); err != nil {
		c.mu.Unlock()
		return err
	}
	for _, e := range events {
		c.applyLocked(plan, e)
	}
	c.mu.Unlock()

	c.emit(events)
	return nil
}

func (c *Center) validateLocked(plan common.Address, events []Event) error {
	profile, ok := c.planProfiles[plan]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPlanNotFound, plan.Hex())
	}
	for _, e := range events {
		switch e.Kind {
		case EventClientSignedUp:
			if bound, ok := c.clients[e.ClientID]; ok && bound.Address != e.Address {
				return fmt.Errorf("%w: client %d is %s", ErrClientAddress, e.ClientID, bound.Address.Hex())
			}
			if id, ok := c.clientIDs[e.Address]; ok && id != e.ClientID {
				return fmt.Errorf("%w: %s is client %d", ErrClientAddress, e.Address.Hex(), id)
			}
		case EventRewardPaid:
			if e.Amount == nil || e.Amount.Sign() < 0 {
				return ErrNegativeAmount
			}
			if _, ok := c.clients[e.ClientID]; !ok {
				return fmt.Errorf("%w: %d", ErrUnknownClient, e.ClientID)
			}
		case EventPlanDeactivated:
			if !profile.Active {
				return fmt.Errorf("%w: plan %s already inactive", ErrInvalidStage, plan.Hex())
			}
		}
	}
	return nil
}

// applyLocked 应用单个已校验的事件，不会失败
func (c *Center) applyLocked(plan common.Address, e Event) {
	switch e.Kind {
	case EventFounderAdded:
		c.joinEntity(e.Address)
		c.grant(plan, e.Address, func(r *Roles) { r.IsFounder = true })
	case EventFounderLeft:
		c.leaveEntity(e.Address)
		c.revoke(plan, e.Address, func(r *Roles) { r.IsFounder = false })
	case EventNotifierAdded:
		c.grant(plan, e.Address, func(r *Roles) { r.IsNotifier = true })
	case EventNotifierRevoked:
		c.revoke(plan, e.Address, func(r *Roles) { r.IsNotifier = false })
	case EventClientSignedUp:
		if _, ok := c.clients[e.ClientID]; !ok {
			c.clients[e.ClientID] = &ClientProfile{
				ID:      e.ClientID,
				Address: e.Address,
				Active:  true,
				Rewards: new(big.Int),
			}
			c.clientIDs[e.Address] = e.ClientID
		}
		c.grant(plan, e.Address, func(r *Roles) { r.IsClient = true })
	case EventRewardPaid:
		profile := c.planProfiles[plan]
		profile.TotalRewarded.Add(profile.TotalRewarded, e.Amount)
		client := c.clients[e.ClientID]
		client.Rewards.Add(client.Rewards, e.Amount)
	case EventPlanDeactivated:
		c.planProfiles[plan].Active = false
		for addr, r := range c.roles[plan] {
			if r.IsFounder {
				c.leaveEntity(addr)
			}
		}
	}
}

func (c *Center) joinEntity(addr common.Address) {
	entity, ok := c.entities[addr]
	if !ok {
		entity = &EntityProfile{Address: addr, Active: true}
		c.entities[addr] = entity
	}
	entity.RunningPlans++
}

func (c *Center) leaveEntity(addr common.Address) {
	if entity, ok := c.entities[addr]; ok && entity.RunningPlans > 0 {
		entity.RunningPlans--
	}
}

// grant 赋予角色，首次关联时加入相关计划索引
func (c *Center) grant(plan, addr common.Address, set func(*Roles)) {
	roles := c.roles[plan]
	r := roles[addr]
	had := r.Any()
	set(&r)
	roles[addr] = r
	if !had {
		c.related[addr] = append(c.related[addr], plan)
	}
}

// revoke 收回角色，失去全部角色时移出相关计划索引
func (c *Center) revoke(plan, addr common.Address, unset func(*Roles)) {
	roles := c.roles[plan]
	r, ok := roles[addr]
	if !ok {
		return
	}
	unset(&r)
	if r.Any() {
		roles[addr] = r
		return
	}
	delete(roles, addr)
	list := c.related[addr]
	for i, p := range list {
		if p == plan {
			c.related[addr] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(c.related[addr]) == 0 {
		delete(c.related, addr)
	}
}

func (c *Center) emit(events []Event) {
	if c.sink != nil && len(events) > 0 {
		c.sink.Emit(events)
	}
}

// Plan 按地址获取计划
func (c *Center) Plan(addr common.Address) (*Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.plans[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, addr.Hex())
	}
	return p, nil
}

// Plans 按创建顺序返回所有计划
func (c *Center) Plans() []*Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Plan, 0, len(c.planOrder))
	for _, addr := range c.planOrder {
		out = append(out, c.plans[addr])
	}
	return out
}

// LookupPlan 查询计划档案
func (c *Center) LookupPlan(addr common.Address) (PlanProfile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.planProfiles[addr]
	if !ok {
		return PlanProfile{}, fmt.Errorf("%w: %s", ErrPlanNotFound, addr.Hex())
	}
	out := *p
	out.TotalRewarded = new(big.Int).Set(p.TotalRewarded)
	return out, nil
}

// LookupEntity 查询实体档案
func (c *Center) LookupEntity(addr common.Address) (EntityProfile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entities[addr]
	if !ok {
		return EntityProfile{}, fmt.Errorf("%w: %s", ErrUnknownEntity, addr.Hex())
	}
	return *e, nil
}

// LookupClient 查询客户档案
func (c *Center) LookupClient(id ClientID) (ClientProfile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.clients[id]
	if !ok {
		return ClientProfile{}, fmt.Errorf("%w: %d", ErrUnknownClient, id)
	}
	out := *p
	out.Rewards = new(big.Int).Set(p.Rewards)
	return out, nil
}

// ClientIDByAddress 按地址查询客户编号
func (c *Center) ClientIDByAddress(addr common.Address) (ClientID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.clientIDs[addr]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownClient, addr.Hex())
	}
	return id, nil
}

// RelatedPlans 调用方以任一角色参与的计划，按关联顺序
func (c *Center) RelatedPlans(caller common.Address) []common.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list := c.related[caller]
	out := make([]common.Address, len(list))
	copy(out, list)
	return out
}

// RolesInPlan 调用方在计划中的角色
func (c *Center) RolesInPlan(plan, caller common.Address) (Roles, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	roles, ok := c.roles[plan]
	if !ok {
		return Roles{}, fmt.Errorf("%w: %s", ErrPlanNotFound, plan.Hex())
	}
	return roles[caller], nil
}

// PlanStage 查询计划阶段
func (c *Center) PlanStage(addr common.Address) (Stage, error) {
	p, err := c.Plan(addr)
	if err != nil {
		return 0, err
	}
	return p.Stage(), nil
}

// PlanBalance 查询计划余额
func (c *Center) PlanBalance(addr common.Address) (*big.Int, error) {
	p, err := c.Plan(addr)
	if err != nil {
		return nil, err
	}
	return p.Balance(), nil
}

// Entities 所有实体档案
func (c *Center) Entities() []EntityProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]EntityProfile, 0, len(c.entities))
	for _, e := range c.entities {
		out = append(out, *e)
	}
	return out
}

// ClientProfiles 所有客户档案
func (c *Center) ClientProfiles() []ClientProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ClientProfile, 0, len(c.clients))
	for _, p := range c.clients {
		cp := *p
		cp.Rewards = new(big.Int).Set(p.Rewards)
		out = append(out, cp)
	}
	return out
}
