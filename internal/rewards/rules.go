package rewards

import (
	"fmt"
	"math/big"
	"sort"
)

// RuleTable 按阈值严格升序排列的规则表
type RuleTable struct {
	rules []Rule
}

// Len 规则数量
func (t *RuleTable) Len() int {
	return len(t.rules)
}

// Rules 返回升序副本
func (t *RuleTable) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	for i, r := range t.rules {
		out[i] = Rule{Threshold: r.Threshold, Reward: new(big.Int).Set(r.Reward)}
	}
	return out
}

// Get 按下标获取规则
func (t *RuleTable) Get(index int) (Rule, error) {
	if index < 0 || index >= len(t.rules) {
		return Rule{}, fmt.Errorf("%w: rule %d of %d", ErrIndexOutOfRange, index, len(t.rules))
	}
	r := t.rules[index]
	return Rule{Threshold: r.Threshold, Reward: new(big.Int).Set(r.Reward)}, nil
}

// Position 校验规则并返回有序插入位置
func (t *RuleTable) Position(rule Rule) (int, error) {
	if rule.Threshold == 0 {
		return 0, fmt.Errorf("%w: threshold must be positive", ErrInvalidArgument)
	}
	if rule.Reward == nil || rule.Reward.Sign() <= 0 {
		return 0, fmt.Errorf("%w: reward must be positive", ErrInvalidArgument)
	}
	pos := sort.Search(len(t.rules), func(i int) bool {
		return t.rules[i].Threshold >= rule.Threshold
	})
	if pos < len(t.rules) && t.rules[pos].Threshold == rule.Threshold {
		return 0, fmt.Errorf("%w: %d", ErrDuplicateRule, rule.Threshold)
	}
	return pos, nil
}

// Add 有序插入规则，返回插入下标
func (t *RuleTable) Add(rule Rule) (int, error) {
	pos, err := t.Position(rule)
	if err != nil {
		return 0, err
	}
	t.insertAt(pos, rule)
	return pos, nil
}

func (t *RuleTable) insertAt(pos int, rule Rule) {
	rule.Reward = new(big.Int).Set(rule.Reward)
	t.rules = append(t.rules, Rule{})
	copy(t.rules[pos+1:], t.rules[pos:])
	t.rules[pos] = rule
}

// Remove 按下标删除规则
func (t *RuleTable) Remove(index int) (Rule, error) {
	removed, err := t.Get(index)
	if err != nil {
		return Rule{}, err
	}
	t.rules = append(t.rules[:index], t.rules[index+1:]...)
	return removed, nil
}

// Descending 返回按阈值降序排列的副本，兑换时使用
func (t *RuleTable) Descending() []Rule {
	out := t.Rules()
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
