package rewards

import (
	"github.com/ethereum/go-ethereum/common"
)

// ClientLedger 计划内客户积分账本
type ClientLedger struct {
	accounts map[ClientID]*ClientAccount
	order    []ClientID
}

func newClientLedger() ClientLedger {
	return ClientLedger{accounts: make(map[ClientID]*ClientAccount)}
}

// Len 客户数量
func (l *ClientLedger) Len() int {
	return len(l.order)
}

// Get 获取客户账户副本
func (l *ClientLedger) Get(id ClientID) (ClientAccount, bool) {
	acc, ok := l.accounts[id]
	if !ok {
		return ClientAccount{}, false
	}
	return *acc, true
}

// Contains 是否已注册
func (l *ClientLedger) Contains(id ClientID) bool {
	_, ok := l.accounts[id]
	return ok
}

// HasAddress 地址是否属于某个已注册客户
func (l *ClientLedger) HasAddress(addr common.Address) bool {
	for _, acc := range l.accounts {
		if acc.Address == addr {
			return true
		}
	}
	return false
}

// Accounts 按注册顺序返回所有账户
func (l *ClientLedger) Accounts() []ClientAccount {
	out := make([]ClientAccount, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.accounts[id])
	}
	return out
}

func (l *ClientLedger) add(id ClientID, addr common.Address) {
	l.accounts[id] = &ClientAccount{ID: id, Address: addr, Active: true}
	l.order = append(l.order, id)
}

func (l *ClientLedger) setPoints(id ClientID, points uint64) {
	l.accounts[id].Points = points
}

func (l *ClientLedger) resetPoints() {
	for _, acc := range l.accounts {
		acc.Points = 0
	}
}

// NotifierSet 计划的通知者集合
type NotifierSet struct {
	notifiers map[common.Address]*Notifier
	order     []common.Address
}

func newNotifierSet() NotifierSet {
	return NotifierSet{notifiers: make(map[common.Address]*Notifier)}
}

// Get 获取通知者
func (s *NotifierSet) Get(addr common.Address) (Notifier, bool) {
	n, ok := s.notifiers[addr]
	if !ok {
		return Notifier{}, false
	}
	return *n, true
}

// IsActive 是否为有效通知者
func (s *NotifierSet) IsActive(addr common.Address) bool {
	n, ok := s.notifiers[addr]
	return ok && n.Active
}

// Notifiers 按添加顺序返回
func (s *NotifierSet) Notifiers() []Notifier {
	out := make([]Notifier, 0, len(s.order))
	for _, addr := range s.order {
		out = append(out, *s.notifiers[addr])
	}
	return out
}

func (s *NotifierSet) put(addr, addedBy common.Address) {
	if n, ok := s.notifiers[addr]; ok {
		n.AddedBy = addedBy
		n.Active = true
		return
	}
	s.notifiers[addr] = &Notifier{Address: addr, AddedBy: addedBy, Active: true}
	s.order = append(s.order, addr)
}

func (s *NotifierSet) revoke(addr common.Address) {
	if n, ok := s.notifiers[addr]; ok {
		n.Active = false
	}
}
