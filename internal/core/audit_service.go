package core

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// PostgresAuditStore persists audit entries in dashboard_audit_log.
type PostgresAuditStore struct {
	db DBTX
}

// NewPostgresAuditStore creates a store over db (a pool, tx or mock).
func NewPostgresAuditStore(db DBTX) *PostgresAuditStore {
	return &PostgresAuditStore{db: db}
}

// AuditPool is a database handle the store owns and closes.
type AuditPool interface {
	DBTX
	Close()
}

// OpenPostgresAuditStore prepares the schema on pool and returns a store
// over it. On failure pool is closed before returning.
func OpenPostgresAuditStore(ctx context.Context, pool AuditPool) (*PostgresAuditStore, error) {
	store := NewPostgresAuditStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

const auditSchema = `CREATE TABLE IF NOT EXISTS dashboard_audit_log (
	id uuid PRIMARY KEY,
	action text NOT NULL,
	severity text NOT NULL,
	kind text NOT NULL,
	record_id bigint NOT NULL DEFAULT 0,
	summary text NOT NULL DEFAULT '',
	ip_address text NOT NULL DEFAULT '',
	user_agent text NOT NULL DEFAULT '',
	created_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS dashboard_audit_log_created_at_idx ON dashboard_audit_log (created_at DESC)`

// EnsureSchema creates the audit table when it does not exist.
func (p *PostgresAuditStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, auditSchema); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

const insertAuditEntry = `INSERT INTO dashboard_audit_log
	(id, action, severity, kind, record_id, summary, ip_address, user_agent, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// Record inserts one entry.
func (p *PostgresAuditStore) Record(ctx context.Context, e AuditEntry) error {
	_, err := p.db.Exec(ctx, insertAuditEntry,
		e.ID, string(e.Action), string(e.Severity), e.Kind, e.RecordID,
		e.Summary, normalizeIP(e.IPAddress), e.UserAgent, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Recent returns matching entries, newest first.
func (p *PostgresAuditStore) Recent(ctx context.Context, filter AuditFilter) ([]AuditEntry, error) {
	wb := whereBuilder{}
	wb.add("kind", filter.Kind)
	wb.add("action", string(filter.Action))
	where, args := wb.build()

	query := `SELECT id, action, severity, kind, record_id, summary, ip_address, user_agent, created_at
		FROM dashboard_audit_log` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)+1)
	args = append(args, filter.limit())

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	entries := make([]AuditEntry, 0)
	for rows.Next() {
		entry, err := scanAuditRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Purge deletes entries created before the cutoff.
func (p *PostgresAuditStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	tag, err := p.db.Exec(ctx, "DELETE FROM dashboard_audit_log WHERE created_at < $1", before)
	if err != nil {
		return 0, fmt.Errorf("purge audit log: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanAuditRow(rows pgx.Rows) (AuditEntry, error) {
	var (
		e                AuditEntry
		action, severity string
	)
	err := rows.Scan(
		&e.ID, &action, &severity, &e.Kind, &e.RecordID,
		&e.Summary, &e.IPAddress, &e.UserAgent, &e.CreatedAt,
	)
	if err != nil {
		return AuditEntry{}, fmt.Errorf("scan audit row: %w", err)
	}
	e.Action = AuditAction(action)
	e.Severity = AuditSeverity(severity)
	return e, nil
}

// normalizeIP strips a port and drops values that are not addresses.
func normalizeIP(raw string) string {
	if raw == "" {
		return ""
	}
	host := raw
	if h, _, err := net.SplitHostPort(raw); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return ""
	}
	return addr.String()
}

// whereBuilder assembles an AND-joined WHERE clause with positional args.
// Empty values are skipped.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(column, value string) {
	if value == "" {
		return
	}
	w.args = append(w.args, value)
	w.conds = append(w.conds, fmt.Sprintf("%s = $%d", column, len(w.args)))
}

func (w *whereBuilder) build() (string, []any) {
	if len(w.conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(w.conds, " AND "), w.args
}
