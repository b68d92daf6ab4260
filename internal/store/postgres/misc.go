package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/closebooks-dev/closebooks/internal/audit"
)

type seqRepo struct{ s *pgStore }

// Next bumps the durable counter atomically; the upsert takes the row lock,
// so concurrent callers get distinct values.
func (r seqRepo) Next(ctx context.Context, companyID uuid.UUID, key string) (int, error) {
	var value int
	err := r.s.q.QueryRow(ctx, `
		INSERT INTO sequences (company_id, key, value) VALUES ($1, $2, 1)
		ON CONFLICT (company_id, key) DO UPDATE SET value = sequences.value + 1
		RETURNING value`,
		companyID, key).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("advancing sequence %s: %w", key, err)
	}
	return value, nil
}

type auditRepo struct{ s *pgStore }

func (r auditRepo) Append(ctx context.Context, entries ...audit.Entry) error {
	for _, e := range entries {
		if _, err := r.s.q.Exec(ctx, `
			INSERT INTO audit_entries (id, ts, actor, action, entity, entity_id, detail)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			e.ID, e.Timestamp, e.Actor, e.Action, e.Entity, e.EntityID, e.Detail); err != nil {
			return fmt.Errorf("appending audit entry: %w", err)
		}
	}
	return nil
}

func (r auditRepo) List(ctx context.Context, entityID uuid.UUID) ([]audit.Entry, error) {
	rows, err := r.s.q.Query(ctx, `
		SELECT id, ts, actor, action, entity, entity_id, detail
		FROM audit_entries WHERE entity_id = $1 ORDER BY ts, id`,
		entityID)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var out []audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Actor, &e.Action, &e.Entity,
			&e.EntityID, &e.Detail); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
