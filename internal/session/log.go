package session

import (
	"sort"
	"time"
)

type UpdateKind string

const (
	UpdateManual UpdateKind = "manual"
	UpdateAdjust UpdateKind = "adjust"
	UpdateRebuy  UpdateKind = "rebuy"
)

// ChipUpdate records the absolute chip stack at a point in time. The amount
// is NOT a delta: an out-of-order or corrected entry never poisons later
// entries the way a running diff would.
type ChipUpdate struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"session_id"`
	AmountCents int64      `json:"amount_cents"`
	Note        string     `json:"note,omitempty"`
	Kind        UpdateKind `json:"kind"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Log is the ordered chip-update history of one session. Entries are kept
// sorted by (created_at, id) so the last entry is always the current stack.
type Log struct {
	updates []ChipUpdate
	seen    map[string]struct{}
}

func NewLog(updates []ChipUpdate) *Log {
	l := &Log{seen: make(map[string]struct{}, len(updates))}
	l.updates = append(l.updates, updates...)
	for _, u := range l.updates {
		l.seen[u.ID] = struct{}{}
	}
	sort.SliceStable(l.updates, func(i, j int) bool {
		if l.updates[i].CreatedAt.Equal(l.updates[j].CreatedAt) {
			return l.updates[i].ID < l.updates[j].ID
		}
		return l.updates[i].CreatedAt.Before(l.updates[j].CreatedAt)
	})
	return l
}

func (l *Log) Append(u ChipUpdate) error {
	if u.AmountCents < 0 {
		return ErrInvalidAmount
	}
	if _, ok := l.seen[u.ID]; ok {
		return ErrDuplicateEvent
	}
	if l.seen == nil {
		l.seen = map[string]struct{}{}
	}
	l.seen[u.ID] = struct{}{}

	// Appends arrive in time order in practice; a corrected backdated entry
	// is inserted at its timestamp position instead.
	n := len(l.updates)
	if n == 0 || !u.CreatedAt.Before(l.updates[n-1].CreatedAt) {
		l.updates = append(l.updates, u)
		return nil
	}
	i := sort.Search(n, func(i int) bool {
		return l.updates[i].CreatedAt.After(u.CreatedAt)
	})
	l.updates = append(l.updates, ChipUpdate{})
	copy(l.updates[i+1:], l.updates[i:])
	l.updates[i] = u
	return nil
}

func (l *Log) Last() *ChipUpdate {
	if len(l.updates) == 0 {
		return nil
	}
	return &l.updates[len(l.updates)-1]
}

func (l *Log) All() []ChipUpdate {
	out := make([]ChipUpdate, len(l.updates))
	copy(out, l.updates)
	return out
}

func (l *Log) Len() int {
	return len(l.updates)
}
