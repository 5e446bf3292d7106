package queue

import (
	"fmt"
	"sync"
	"time"

	"fee-desk/internal/model"
	"fee-desk/pkg/errors"

	"github.com/google/uuid"
)

// TimestampLayout is the human-readable creation time stored on each item.
const TimestampLayout = "1/2/2006, 3:04:05 PM"

type Option func(*Queue)

// WithMaxPending bounds the number of non-terminal items. Enqueue past the
// bound fails with ErrQueueFull; nothing is evicted. 0 means unbounded.
func WithMaxPending(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.maxPending = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		q.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(q *Queue) {
		q.newID = newID
	}
}

// Queue is the ordered, in-memory list of submissions. Items are only
// mutated through Enqueue and UpdateStatus.
type Queue struct {
	mu         sync.RWMutex
	items      []model.SubmissionItem
	index      map[string]int
	head       int // no pending item exists before head
	active     int // pending + loading
	maxPending int
	wake       chan struct{}
	now        func() time.Time
	newID      func() string
}

func New(opts ...Option) *Queue {
	q := &Queue{
		index: make(map[string]int),
		wake:  make(chan struct{}, 1),
		now:   time.Now,
		newID: newItemID,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func newItemID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Enqueue appends a pending snapshot of the payload. Fields are copied as
// given; presence checks belong to the caller.
func (q *Queue) Enqueue(payload model.SubmissionPayload) (model.SubmissionItem, error) {
	q.mu.Lock()

	if q.maxPending > 0 && q.active >= q.maxPending {
		q.mu.Unlock()
		return model.SubmissionItem{}, fmt.Errorf("%d items awaiting dispatch: %w", q.active, errors.ErrQueueFull)
	}

	id := q.newID()
	for {
		if _, taken := q.index[id]; !taken {
			break
		}
		id = q.newID()
	}

	item := model.SubmissionItem{
		ID:          id,
		AdmissionNo: payload.AdmissionNo,
		Name:        payload.Name,
		Class:       payload.Class,
		Amount:      payload.Amount,
		Status:      model.SubmissionStatusPending,
		Timestamp:   q.now().Format(TimestampLayout),
	}

	q.index[id] = len(q.items)
	q.items = append(q.items, item)
	q.active++
	q.mu.Unlock()

	q.signal()
	return item, nil
}

// UpdateStatus replaces the status of an item, and its message when one is
// given. Unknown ids and backward or skipped transitions are rejected
// without touching the item.
func (q *Queue) UpdateStatus(id string, status model.SubmissionStatus, message string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	pos, ok := q.index[id]
	if !ok {
		return fmt.Errorf("update %s: %w", id, errors.ErrItemNotFound)
	}

	item := &q.items[pos]
	if !item.Status.CanTransitionTo(status) {
		return fmt.Errorf("update %s from %s to %s: %w", id, item.Status, status, errors.ErrInvalidTransition)
	}

	item.Status = status
	if message != "" {
		item.Message = message
	}
	if status.IsTerminal() {
		q.active--
	}

	for q.head < len(q.items) && q.items[q.head].Status != model.SubmissionStatusPending {
		q.head++
	}
	return nil
}

// NextPending returns the earliest-inserted pending item.
func (q *Queue) NextPending() (model.SubmissionItem, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for i := q.head; i < len(q.items); i++ {
		if q.items[i].Status == model.SubmissionStatusPending {
			return q.items[i], true
		}
	}
	return model.SubmissionItem{}, false
}

// Snapshot returns a copy of all items in insertion order.
func (q *Queue) Snapshot() []model.SubmissionItem {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]model.SubmissionItem, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Queue) Get(id string) (model.SubmissionItem, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	pos, ok := q.index[id]
	if !ok {
		return model.SubmissionItem{}, false
	}
	return q.items[pos], true
}

func (q *Queue) Stats() model.QueueStats {
	q.mu.RLock()
	defer q.mu.RUnlock()

	stats := model.QueueStats{Total: len(q.items)}
	for _, item := range q.items {
		switch item.Status {
		case model.SubmissionStatusPending:
			stats.Pending++
		case model.SubmissionStatusLoading:
			stats.Loading++
		case model.SubmissionStatusSuccess:
			stats.Success++
		case model.SubmissionStatusError:
			stats.Error++
		}
	}
	return stats
}

// Wake fires after an enqueue. Signals coalesce: one receive may stand for
// several enqueues, so receivers must drain with NextPending.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
