package rewards

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Stage 奖励计划阶段
type Stage uint8

const (
	StageConstruction Stage = iota // 构建中
	StageSigning                   // 签署中
	StageActive                    // 运行中
	StageSleeping                  // 余额耗尽，可唤醒
	StageDeprecated                // 余额耗尽，终止
)

func (s Stage) String() string {
	switch s {
	case StageConstruction:
		return "construction"
	case StageSigning:
		return "signing"
	case StageActive:
		return "active"
	case StageSleeping:
		return "sleeping"
	case StageDeprecated:
		return "deprecated"
	default:
		return "unknown"
	}
}

// Lifecycle 余额耗尽后的生命周期策略
type Lifecycle uint8

const (
	// LifecycleRenewable 耗尽后进入 SLEEPING，可通过 Awake 重新激活
	LifecycleRenewable Lifecycle = iota
	// LifecycleTerminal 耗尽后进入 DEPRECATED，并在注册中心停用
	LifecycleTerminal
)

// ParseLifecycle 解析配置中的生命周期名称
func ParseLifecycle(name string) (Lifecycle, bool) {
	switch name {
	case "", "renewable":
		return LifecycleRenewable, true
	case "terminal":
		return LifecycleTerminal, true
	default:
		return LifecycleRenewable, false
	}
}

func (l Lifecycle) String() string {
	if l == LifecycleTerminal {
		return "terminal"
	}
	return "renewable"
}

// ClientID 客户编号，0 为无效值
type ClientID uint64

// Founder 创始人
type Founder struct {
	Address   common.Address
	Pledged   *big.Int // 承诺出资
	Deposited *big.Int // 计划中已持有的出资
	Signed    bool
}

// Due 签署时仍需支付的金额，即 Pledged - Deposited。
// Sign 要求转入金额等于 Due 而不是 Pledged：创建者的初始出资在创建计划时已入账，
// 因此首次签署时应转入 0；签署超时退款后 Deposited 归零，再次签署需转入全部承诺出资。
func (f Founder) Due() *big.Int {
	return new(big.Int).Sub(f.Pledged, f.Deposited)
}

func (f Founder) clone() Founder {
	f.Pledged = new(big.Int).Set(f.Pledged)
	f.Deposited = new(big.Int).Set(f.Deposited)
	return f
}

// Rule 积分兑换规则
type Rule struct {
	Threshold uint64
	Reward    *big.Int
}

// Notifier 通知者
type Notifier struct {
	Address common.Address
	AddedBy common.Address
	Active  bool
}

// ClientAccount 计划内的客户账户
type ClientAccount struct {
	ID      ClientID
	Address common.Address
	Points  uint64
	Active  bool
}

// PlanProfile 注册中心的计划档案
type PlanProfile struct {
	Address       common.Address
	Creator       common.Address
	Name          string
	Active        bool
	TotalRewarded *big.Int
}

// EntityProfile 注册中心的实体档案
type EntityProfile struct {
	Address      common.Address
	Active       bool
	RunningPlans uint64
}

// ClientProfile 注册中心的客户档案
type ClientProfile struct {
	ID      ClientID
	Address common.Address
	Active  bool
	Rewards *big.Int
}

// Roles 调用方在计划中的角色
type Roles struct {
	IsClient   bool
	IsFounder  bool
	IsNotifier bool
}

// Any 是否拥有任一角色
func (r Roles) Any() bool {
	return r.IsClient || r.IsFounder || r.IsNotifier
}

// Refund 签署超时后的退款
type Refund struct {
	Address common.Address
	Amount  *big.Int
}

// Clock 时间来源
type Clock interface {
	Now() time.Time
}

// ClockFunc 函数形式的时间来源
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock 系统时钟
var SystemClock Clock = ClockFunc(time.Now)
