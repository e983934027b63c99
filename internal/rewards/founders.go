package rewards

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// FounderRegistry 有序的创始人列表，下标 0 为创建者
type FounderRegistry struct {
	founders []Founder
}

// Len 创始人数量
func (r *FounderRegistry) Len() int {
	return len(r.founders)
}

// Founders 返回副本
func (r *FounderRegistry) Founders() []Founder {
	out := make([]Founder, len(r.founders))
	for i, f := range r.founders {
		out[i] = f.clone()
	}
	return out
}

// Addresses 返回创始人地址
func (r *FounderRegistry) Addresses() []common.Address {
	out := make([]common.Address, len(r.founders))
	for i, f := range r.founders {
		out[i] = f.Address
	}
	return out
}

// Index 返回地址所在下标，不存在时返回 -1
func (r *FounderRegistry) Index(addr common.Address) int {
	for i := range r.founders {
		if r.founders[i].Address == addr {
			return i
		}
	}
	return -1
}

// Contains 是否为创始人
func (r *FounderRegistry) Contains(addr common.Address) bool {
	return r.Index(addr) >= 0
}

// Get 按地址获取创始人
func (r *FounderRegistry) Get(addr common.Address) (Founder, bool) {
	i := r.Index(addr)
	if i < 0 {
		return Founder{}, false
	}
	return r.founders[i].clone(), true
}

// Creator 创建者地址
func (r *FounderRegistry) Creator() common.Address {
	if len(r.founders) == 0 {
		return common.Address{}
	}
	return r.founders[0].Address
}

// AllSigned 是否全部签署
func (r *FounderRegistry) AllSigned() bool {
	for i := range r.founders {
		if !r.founders[i].Signed {
			return false
		}
	}
	return true
}

// SignedCount 已签署人数
func (r *FounderRegistry) SignedCount() int {
	n := 0
	for i := range r.founders {
		if r.founders[i].Signed {
			n++
		}
	}
	return n
}

func (r *FounderRegistry) add(addr common.Address, pledged, deposited *big.Int) {
	r.founders = append(r.founders, Founder{
		Address:   addr,
		Pledged:   new(big.Int).Set(pledged),
		Deposited: new(big.Int).Set(deposited),
	})
}

func (r *FounderRegistry) remove(index int) {
	r.founders = append(r.founders[:index], r.founders[index+1:]...)
}

func (r *FounderRegistry) markSigned(index int) {
	f := &r.founders[index]
	f.Deposited = new(big.Int).Set(f.Pledged)
	f.Signed = true
}

// refunds 计算每位创始人可退回的出资
func (r *FounderRegistry) refunds() []Refund {
	var out []Refund
	for _, f := range r.founders {
		if f.Deposited.Sign() > 0 {
			out = append(out, Refund{Address: f.Address, Amount: new(big.Int).Set(f.Deposited)})
		}
	}
	return out
}

// reset 清空签署状态与出资
func (r *FounderRegistry) reset() {
	for i := range r.founders {
		r.founders[i].Signed = false
		r.founders[i].Deposited = new(big.Int)
	}
}
