package rewards

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Operation 计划操作
type Operation string

const (
	OpAddFounder     Operation = "addFounder"
	OpLeavePlan      Operation = "leavePlan"
	OpAddRule        Operation = "addRule"
	OpRemoveRule     Operation = "removeRule"
	OpAddNotifier    Operation = "addNotifier"
	OpRevokeNotifier Operation = "revokeNotifier"
	OpBeginSigning   Operation = "beginSigningStage"
	OpSign           Operation = "sign"
	OpExpiredRefund  Operation = "signPeriodExpiredRefund"
	OpAwake          Operation = "awake"
	OpSignUpClient   Operation = "signUpClient"
	OpNotifyPoints   Operation = "notifyPointsScored"
)

// Requirement 操作要求的角色
type Requirement uint8

const (
	RequireFounder   Requirement = iota // 任一创始人
	RequireCoFounder                    // 非创建者的创始人
	RequireNotifier                     // 有效通知者
)

func (r Requirement) String() string {
	switch r {
	case RequireFounder:
		return "founder"
	case RequireCoFounder:
		return "non-creator founder"
	case RequireNotifier:
		return "active notifier"
	default:
		return "unknown"
	}
}

var requirements = map[Operation]Requirement{
	OpAddFounder:     RequireFounder,
	OpLeavePlan:      RequireCoFounder,
	OpAddRule:        RequireFounder,
	OpRemoveRule:     RequireFounder,
	OpAddNotifier:    RequireFounder,
	OpRevokeNotifier: RequireFounder,
	OpBeginSigning:   RequireFounder,
	OpSign:           RequireFounder,
	OpExpiredRefund:  RequireFounder,
	OpAwake:          RequireFounder,
	OpSignUpClient:   RequireNotifier,
	OpNotifyPoints:   RequireNotifier,
}

// Authorization 角色检查结果
type Authorization struct {
	Op        Operation
	Caller    common.Address
	Roles     Roles
	IsCreator bool
	Required  Requirement
	Granted   bool
}

// Err 未授权时返回错误
func (a Authorization) Err() error {
	if a.Granted {
		return nil
	}
	if a.Required == RequireCoFounder && a.IsCreator {
		return ErrCreatorCannotLeave
	}
	return fmt.Errorf("%w: %s requires %s, caller %s", ErrUnauthorized, a.Op, a.Required, a.Caller.Hex())
}

// authorize 在任何修改前检查调用方角色，调用方需持有 p.mu
func (p *Plan) authorize(op Operation, caller common.Address) Authorization {
	req, ok := requirements[op]
	auth := Authorization{
		Op:        op,
		Caller:    caller,
		Roles:     p.rolesLocked(caller),
		IsCreator: caller == p.founders.Creator(),
		Required:  req,
	}
	if !ok {
		return auth
	}
	switch req {
	case RequireFounder:
		auth.Granted = auth.Roles.IsFounder
	case RequireCoFounder:
		auth.Granted = auth.Roles.IsFounder && !auth.IsCreator
	case RequireNotifier:
		auth.Granted = auth.Roles.IsNotifier
	}
	return auth
}

func (p *Plan) rolesLocked(caller common.Address) Roles {
	return Roles{
		IsClient:   p.clients.HasAddress(caller),
		IsFounder:  p.founders.Contains(caller),
		IsNotifier: p.notifiers.IsActive(caller),
	}
}
