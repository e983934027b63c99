package rewards

import (
	"math/big"
	"sort"
)

// Payout 单条规则产生的兑付
type Payout struct {
	Threshold uint64
	Reward    *big.Int // 规则的单次奖励
	Count     uint64   // 完整兑付次数，部分兑付时为 0
	Amount    *big.Int // 实际支付金额
	Points    uint64   // 消耗积分
	Partial   bool
}

// Redemption 一次积分通知的兑换结果
type Redemption struct {
	Payouts   []Payout
	Paid      *big.Int // 本次支付总额
	Consumed  uint64   // 本次消耗积分
	Points    uint64   // 兑换后剩余积分
	Balance   *big.Int // 兑换后计划余额
	Exhausted bool     // 余额因本次兑付归零
}

// Redeem 按阈值从高到低依次兑换积分。
//
// 每条规则先重复完整兑付，直到积分或余额不足；若积分仍满足阈值但余额已不够一次完整奖励，
// 则把剩余余额作为一次按比例的部分奖励全部付出，消耗 floor(余额*阈值/奖励) 积分并结束。
// 入参不会被修改。
func Redeem(rules []Rule, accumulated uint64, balance *big.Int) Redemption {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Threshold > ordered[j].Threshold
	})

	res := Redemption{
		Paid:    new(big.Int),
		Points:  accumulated,
		Balance: new(big.Int).Set(balance),
	}

	for _, r := range ordered {
		if res.Balance.Sign() == 0 {
			break
		}
		if res.Points < r.Threshold {
			continue
		}

		// 完整兑付次数受积分与余额共同约束
		count := res.Points / r.Threshold
		affordable := new(big.Int).Quo(res.Balance, r.Reward)
		if affordable.IsUint64() && affordable.Uint64() < count {
			count = affordable.Uint64()
		}
		if count > 0 {
			amount := new(big.Int).Mul(r.Reward, new(big.Int).SetUint64(count))
			points := count * r.Threshold
			res.apply(Payout{
				Threshold: r.Threshold,
				Reward:    new(big.Int).Set(r.Reward),
				Count:     count,
				Amount:    amount,
				Points:    points,
			})
		}

		if res.Points >= r.Threshold && res.Balance.Sign() > 0 && res.Balance.Cmp(r.Reward) < 0 {
			amount := new(big.Int).Set(res.Balance)
			points := new(big.Int).Mul(amount, new(big.Int).SetUint64(r.Threshold))
			points.Quo(points, r.Reward)
			res.apply(Payout{
				Threshold: r.Threshold,
				Reward:    new(big.Int).Set(r.Reward),
				Amount:    amount,
				Points:    points.Uint64(),
				Partial:   true,
			})
			break
		}
	}

	res.Exhausted = res.Paid.Sign() > 0 && res.Balance.Sign() == 0
	return res
}

func (r *Redemption) apply(p Payout) {
	r.Payouts = append(r.Payouts, p)
	r.Paid.Add(r.Paid, p.Amount)
	r.Balance.Sub(r.Balance, p.Amount)
	r.Points -= p.Points
	r.Consumed += p.Points
}
