package rewards

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventKind 事件类型
type EventKind string

const (
	EventPlanCreated     EventKind = "PlanCreated"
	EventFounderAdded    EventKind = "FounderAdded"
	EventFounderLeft     EventKind = "FounderLeft"
	EventRuleAdded       EventKind = "RewardRuleAdded"
	EventRuleRemoved     EventKind = "RewardRuleRemoved"
	EventNotifierAdded   EventKind = "NotifierAdded"
	EventNotifierRevoked EventKind = "NotifierRevoked"
	EventSigningBegun    EventKind = "SigningStageBegun"
	EventFounderSigned   EventKind = "FounderSigned"
	EventFounderRefunded EventKind = "FounderRefunded"
	EventSigningReset    EventKind = "SigningReset"
	EventClientSignedUp  EventKind = "ClientSignedUp"
	EventPointsScored    EventKind = "PointsScored"
	EventRewardPaid      EventKind = "RewardPaid"
	EventPlanSlept       EventKind = "PlanSlept"
	EventPlanAwoken      EventKind = "PlanAwoken"
	EventPlanDeactivated EventKind = "PlanDeactivated"
)

// Event 已提交操作产生的领域事件。
// 字段按事件类型取用：
//   - FounderAdded/FounderLeft/FounderRefunded: Address, Amount
//   - RewardRuleAdded/RewardRuleRemoved: Points(阈值), Amount(奖励), Index
//   - NotifierAdded/NotifierRevoked: Address
//   - FounderSigned: Amount, Flag(是否全部签署)
//   - ClientSignedUp: ClientID, Address
//   - PointsScored: ClientID, Points(本次积分), Amount(本次奖励)
//   - RewardPaid: ClientID, Address, Amount
//   - PlanAwoken: Amount, Flag(是否清零积分)
type Event struct {
	Kind     EventKind
	Plan     common.Address
	Caller   common.Address
	Address  common.Address
	ClientID ClientID
	Amount   *big.Int
	Points   uint64
	Index    int
	Flag     bool
	Name     string
	Stage    Stage // 事件提交后的计划阶段
	Time     time.Time
}

// EventSink 接收已提交的事件
type EventSink interface {
	Emit(events []Event)
}

// Registry 计划向注册中心上报事件的回调接口。
// Record 要么完整应用整批事件，要么返回错误且不做任何修改。
type Registry interface {
	Record(plan common.Address, events []Event) error
}

func amountOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
