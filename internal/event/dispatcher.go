package event

import (
	"sync"

	"github.com/blues/rewardcenter/internal/logger"
	"github.com/blues/rewardcenter/internal/model"
	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventProcessor 在流水事务内处理指定类型的事件
type EventProcessor interface {
	Process(tx *gorm.DB, record *model.EventModel, event rewards.Event) error
	GetEventTypes() []rewards.EventKind
}

// Observer 在事务提交后接收事件，不能失败
type Observer interface {
	Observe(event rewards.Event)
}

// FailureObserver 观察者可选实现，整批流水回滚时调用
type FailureObserver interface {
	JournalFailed(events []rewards.Event, err error)
}

// Dispatcher 将已提交的领域事件写入流水并分发给处理器，实现 rewards.EventSink
type Dispatcher struct {
	db *gorm.DB

	mu         sync.RWMutex
	processors map[rewards.EventKind][]EventProcessor
	observers  []Observer
}

// NewDispatcher 创建事件分发器并注册内置处理器
func NewDispatcher(db *gorm.DB) *Dispatcher {
	d := &Dispatcher{
		db:         db,
		processors: make(map[rewards.EventKind][]EventProcessor),
	}
	d.RegisterProcessor(NewPayoutProcessor())
	d.RegisterProcessor(NewRefundProcessor())
	return d
}

// RegisterProcessor 注册事件处理器
func (d *Dispatcher) RegisterProcessor(p EventProcessor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, kind := range p.GetEventTypes() {
		d.processors[kind] = append(d.processors[kind], p)
		logger.Debug("Registered processor for event type: %s", kind)
	}
}

// RegisterObserver 注册提交后观察者
func (d *Dispatcher) RegisterObserver(o Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, o)
}

// Emit 在一个事务内写入整批事件，失败时只记录日志
func (d *Dispatcher) Emit(events []rewards.Event) {
	if len(events) == 0 {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	batchId := uuid.NewString()
	err := d.db.Transaction(func(tx *gorm.DB) error {
		for i, e := range events {
			record := toRecord(batchId, i, e)
			if err := tx.Create(record).Error; err != nil {
				return err
			}
			for _, p := range d.processors[e.Kind] {
				if err := p.Process(tx, record, e); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to journal %d events of batch %s for plan %s: %v",
			len(events), batchId, events[0].Plan.Hex(), err)
		for _, o := range d.observers {
			if f, ok := o.(FailureObserver); ok {
				f.JournalFailed(events, err)
			}
		}
		return
	}

	for _, e := range events {
		for _, o := range d.observers {
			o.Observe(e)
		}
	}
	logger.Debug("Journaled batch %s with %d events", batchId, len(events))
}

func toRecord(batchId string, seq int, e rewards.Event) *model.EventModel {
	record := &model.EventModel{
		EventId:     uuid.NewString(),
		BatchId:     batchId,
		Seq:         seq,
		PlanAddress: e.Plan.Hex(),
		EventType:   string(e.Kind),
		Caller:      e.Caller.Hex(),
		ClientId:    uint64(e.ClientID),
		Points:      e.Points,
		RuleIndex:   e.Index,
		Flag:        e.Flag,
		Name:        e.Name,
		Stage:       e.Stage.String(),
		OccurredAt:  e.Time,
	}
	if e.Address != (common.Address{}) {
		record.Address = e.Address.Hex()
	}
	if e.Amount != nil {
		record.Amount = e.Amount.String()
	}
	return record
}
