package message

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists messages.
type Repository interface {
	Insert(ctx context.Context, msg Message) (Message, error)
	// ListByHandle returns the handle's messages, most recent first.
	ListByHandle(ctx context.Context, handle string) ([]Message, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed message repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores msg and returns it with its assigned identifier.
func (r *PostgresRepository) Insert(ctx context.Context, msg Message) (Message, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO messages (handle, ciphertext, nonce, epk, nickname, created_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		msg.Handle, msg.Ciphertext, msg.Nonce, msg.EphemeralKey, msg.Nickname, msg.CreatedAt.UTC())
	if err := row.Scan(&msg.ID); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// ListByHandle fetches every message addressed to handle, newest first.
func (r *PostgresRepository) ListByHandle(ctx context.Context, handle string) ([]Message, error) {
	rows, err := r.db.Query(ctx, `SELECT id, handle, ciphertext, nonce, epk, nickname, created_at
        FROM messages WHERE handle = $1 ORDER BY id DESC`, handle)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			m         Message
			createdAt time.Time
		)
		if err := rows.Scan(&m.ID, &m.Handle, &m.Ciphertext, &m.Nonce, &m.EphemeralKey, &m.Nickname, &createdAt); err != nil {
			return nil, err
		}
		m.CreatedAt = createdAt.UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}
