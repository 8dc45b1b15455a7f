package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/interview-coach/internal/interview"
)

// PostgresStore keeps sessions in the interview_sessions table so several
// server replicas can share them. The table is created by db.EnsureSchema.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Load(ctx context.Context, id string) (*interview.State, error) {
	return p.scan(p.pool.QueryRow(ctx, `SELECT state FROM interview_sessions WHERE id = $1`, id))
}

func (p *PostgresStore) LoadByUser(ctx context.Context, userID string) (*interview.State, error) {
	return p.scan(p.pool.QueryRow(ctx, `
		SELECT state FROM interview_sessions
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`, userID))
}

func (p *PostgresStore) Save(ctx context.Context, st *interview.State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO interview_sessions (id, user_id, stage, state, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			stage = EXCLUDED.stage,
			state = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at
	`, st.ID, st.UserID, string(st.Stage), b, st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM interview_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (p *PostgresStore) scan(row pgx.Row) (*interview.State, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var st interview.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &st, nil
}
