package core

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionReset  AuditAction = "reset"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// DefaultAuditLimit caps audit queries that do not set a limit.
const DefaultAuditLimit = 100

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID        string        `json:"id"`
	Action    AuditAction   `json:"action"`
	Severity  AuditSeverity `json:"severity"`
	Kind      string        `json:"kind"`
	RecordID  int64         `json:"recordId,omitempty"`
	Summary   string        `json:"summary,omitempty"`
	IPAddress string        `json:"ipAddress,omitempty"`
	UserAgent string        `json:"userAgent,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// AuditFilter narrows audit queries. Zero values match everything.
type AuditFilter struct {
	Kind   string
	Action AuditAction
	Limit  int
}

func (f AuditFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultAuditLimit
	}
	return f.Limit
}

func (f AuditFilter) matches(e AuditEntry) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	return true
}

// AuditStore persists audit entries.
type AuditStore interface {
	Record(ctx context.Context, entry AuditEntry) error
	Recent(ctx context.Context, filter AuditFilter) ([]AuditEntry, error)
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionDelete:
		return SeverityHigh
	case ActionReset:
		return SeverityCritical
	case ActionCreate:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// NewAuditEntry builds an entry stamped with a fresh id, the current time
// and the request metadata carried by ctx.
func NewAuditEntry(ctx context.Context, action AuditAction, kind string, recordID int64, summary string) AuditEntry {
	return AuditEntry{
		ID:        uuid.NewString(),
		Action:    action,
		Severity:  determineSeverity(action),
		Kind:      kind,
		RecordID:  recordID,
		Summary:   summary,
		IPAddress: GetIPAddressFromContext(ctx),
		UserAgent: GetUserAgentFromContext(ctx),
		CreatedAt: time.Now().UTC(),
	}
}

// MemoryAuditStore keeps the most recent entries in a bounded ring.
// Used when no database is configured.
type MemoryAuditStore struct {
	mu      sync.Mutex
	entries []AuditEntry
	next    int
	full    bool
}

// NewMemoryAuditStore creates a store holding at most capacity entries.
func NewMemoryAuditStore(capacity int) *MemoryAuditStore {
	if capacity <= 0 {
		capacity = DefaultAuditLimit
	}
	return &MemoryAuditStore{entries: make([]AuditEntry, capacity)}
}

// Record stores entry, overwriting the oldest one when the ring is full.
func (m *MemoryAuditStore) Record(_ context.Context, entry AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.next] = entry
	m.next = (m.next + 1) % len(m.entries)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

// Recent returns matching entries, newest first.
func (m *MemoryAuditStore) Recent(_ context.Context, filter AuditFilter) ([]AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]AuditEntry, 0, min(filter.limit(), m.lenLocked()))
	for i := range m.lenLocked() {
		idx := (m.next - 1 - i + len(m.entries)) % len(m.entries)
		e := m.entries[idx]
		if !filter.matches(e) {
			continue
		}
		out = append(out, e)
		if len(out) == filter.limit() {
			break
		}
	}
	return out, nil
}

// Purge drops entries created before the cutoff.
func (m *MemoryAuditStore) Purge(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := make([]AuditEntry, 0, m.lenLocked())
	for i := m.lenLocked() - 1; i >= 0; i-- {
		idx := (m.next - 1 - i + len(m.entries)) % len(m.entries)
		if !m.entries[idx].CreatedAt.Before(before) {
			kept = append(kept, m.entries[idx])
		}
	}
	purged := int64(m.lenLocked() - len(kept))

	capacity := len(m.entries)
	m.entries = slices.Grow(kept, capacity-len(kept))[:capacity]
	m.next = len(kept) % capacity
	m.full = len(kept) == capacity
	return purged, nil
}

func (m *MemoryAuditStore) lenLocked() int {
	if m.full {
		return len(m.entries)
	}
	return m.next
}
