package rewards

import (
	"errors"
	"fmt"
)

// 错误类别，调用方可以用 errors.Is 判断类别
var (
	ErrUnauthorized      = errors.New("rewards: unauthorized")
	ErrInvalidStage      = errors.New("rewards: invalid stage")
	ErrDuplicateEntry    = errors.New("rewards: duplicate entry")
	ErrUnknownEntry      = errors.New("rewards: unknown entry")
	ErrWrongPledgeAmount = errors.New("rewards: wrong pledge amount")
	ErrNotExpired        = errors.New("rewards: signing period not expired")
	ErrIndexOutOfRange   = errors.New("rewards: index out of range")
	ErrInvalidArgument   = errors.New("rewards: invalid argument")
)

// 具体错误
var (
	ErrDuplicateFounder  = fmt.Errorf("%w: founder", ErrDuplicateEntry)
	ErrDuplicateRule     = fmt.Errorf("%w: rule threshold", ErrDuplicateEntry)
	ErrDuplicateNotifier = fmt.Errorf("%w: notifier", ErrDuplicateEntry)
	ErrDuplicateClient   = fmt.Errorf("%w: client", ErrDuplicateEntry)
	ErrAlreadySigned     = fmt.Errorf("%w: founder already signed", ErrDuplicateEntry)
	ErrClientAddress     = fmt.Errorf("%w: client id bound to another address", ErrDuplicateEntry)

	ErrPlanNotFound    = fmt.Errorf("%w: plan", ErrUnknownEntry)
	ErrUnknownFounder  = fmt.Errorf("%w: founder", ErrUnknownEntry)
	ErrUnknownNotifier = fmt.Errorf("%w: notifier", ErrUnknownEntry)
	ErrUnknownClient   = fmt.Errorf("%w: client", ErrUnknownEntry)
	ErrUnknownEntity   = fmt.Errorf("%w: entity", ErrUnknownEntry)

	ErrCreatorCannotLeave = fmt.Errorf("%w: creator cannot leave the plan", ErrUnauthorized)
	ErrPointsOverflow     = fmt.Errorf("%w: accumulated points overflow", ErrInvalidArgument)
	ErrNegativeAmount     = fmt.Errorf("%w: negative amount", ErrInvalidArgument)
	ErrInsufficientFunds  = fmt.Errorf("%w: insufficient balance", ErrInvalidArgument)
)
