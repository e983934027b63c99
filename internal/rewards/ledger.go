package rewards

import (
	"fmt"
	"math/big"
)

// ValueLedger 计划余额，永不为负
type ValueLedger struct {
	balance *big.Int
}

// NewValueLedger 创建余额账本
func NewValueLedger(initial *big.Int) (*ValueLedger, error) {
	if initial == nil {
		initial = new(big.Int)
	}
	if initial.Sign() < 0 {
		return nil, ErrNegativeAmount
	}
	return &ValueLedger{balance: new(big.Int).Set(initial)}, nil
}

// Balance 返回余额副本
func (l *ValueLedger) Balance() *big.Int {
	return new(big.Int).Set(l.balance)
}

// IsZero 余额是否为零
func (l *ValueLedger) IsZero() bool {
	return l.balance.Sign() == 0
}

// Credit 入账
func (l *ValueLedger) Credit(amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	l.balance.Add(l.balance, amount)
	return nil
}

// Debit 出账，余额不足时不做任何修改
func (l *ValueLedger) Debit(amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	if l.balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientFunds, l.balance, amount)
	}
	l.balance.Sub(l.balance, amount)
	return nil
}
