package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"crime-dashboard/internal/model"
)

const undoBufferSize = 64

// TargetSnapshot holds a unit's targets as they were before a clear.
type TargetSnapshot struct {
	Unit     string         `json:"unit"`
	Year     int            `json:"year"`
	Semester int            `json:"semester"`
	Targets  []model.Target `json:"targets"`
	TakenAt  time.Time      `json:"taken_at"`
}

// UndoBuffer keeps at most one snapshot per unit. Entries expire after ttl
// and the least recently used unit is evicted once the buffer is full.
type UndoBuffer struct {
	entries *expirable.LRU[string, TargetSnapshot]
}

func NewUndoBuffer(ttl time.Duration) *UndoBuffer {
	return &UndoBuffer{entries: expirable.NewLRU[string, TargetSnapshot](undoBufferSize, nil, ttl)}
}

func (b *UndoBuffer) Put(snapshot TargetSnapshot) {
	b.entries.Add(snapshot.Unit, snapshot)
}

func (b *UndoBuffer) Get(unit string) (TargetSnapshot, bool) {
	return b.entries.Get(unit)
}

func (b *UndoBuffer) Remove(unit string) {
	b.entries.Remove(unit)
}

func (b *UndoBuffer) Purge() {
	b.entries.Purge()
}

func (b *UndoBuffer) Has(unit string) bool {
	_, ok := b.entries.Peek(unit)
	return ok
}
