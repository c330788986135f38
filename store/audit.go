package store

import (
	"time"
)

type AuditEntry struct {
	ID         int64
	EntityType string
	EntityID   string
	Action     string
	OldValue   string
	NewValue   string
	Actor      string
	CreatedAt  time.Time
}

// AppendAudit records one console action. Failures are returned but callers
// on the event path only log them.
func (db *DB) AppendAudit(entityType, entityID, action, oldValue, newValue, actor string) error {
	_, err := db.Exec(db.Q(`INSERT INTO audit_log (entity_type, entity_id, action, old_value, new_value, actor) VALUES (?, ?, ?, ?, ?, ?)`),
		entityType, entityID, action, oldValue, newValue, actor)
	return err
}

func (db *DB) ListAuditLog(limit int) ([]*AuditEntry, error) {
	return db.queryAudit(`SELECT id, entity_type, entity_id, action, old_value, new_value, actor, created_at FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
}

func (db *DB) ListEntityAudit(entityType, entityID string, limit int) ([]*AuditEntry, error) {
	return db.queryAudit(`SELECT id, entity_type, entity_id, action, old_value, new_value, actor, created_at FROM audit_log WHERE entity_type = ? AND entity_id = ? ORDER BY id DESC LIMIT ?`, entityType, entityID, limit)
}

func (db *DB) queryAudit(query string, args ...any) ([]*AuditEntry, error) {
	rows, err := db.Query(db.Q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []*AuditEntry
	for rows.Next() {
		var a AuditEntry
		var createdAt any
		if err := rows.Scan(&a.ID, &a.EntityType, &a.EntityID, &a.Action, &a.OldValue, &a.NewValue, &a.Actor, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt = scanTime(createdAt)
		entries = append(entries, &a)
	}
	return entries, rows.Err()
}

// scanTime accepts both the SQLite text column and a native PostgreSQL timestamp.
func scanTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, _ := time.ParseInLocation("2006-01-02 15:04:05", t, time.Local)
		return parsed
	case []byte:
		parsed, _ := time.ParseInLocation("2006-01-02 15:04:05", string(t), time.Local)
		return parsed
	}
	return time.Time{}
}
