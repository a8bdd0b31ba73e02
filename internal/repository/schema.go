package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaStatements create the rental tables and the slices of the listing and
// chat tables the rental flow reads. Statements are idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS listings (
		id BIGSERIAL PRIMARY KEY,
		seller_id BIGINT NOT NULL,
		title TEXT NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('sell', 'rent')),
		status TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'sold', 'rented'))
	)`,
	`CREATE TABLE IF NOT EXISTS chats (
		id BIGSERIAL PRIMARY KEY,
		listing_id BIGINT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		buyer_id BIGINT NOT NULL,
		seller_id BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGSERIAL PRIMARY KEY,
		chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		sender_id BIGINT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS rental_agreements (
		id UUID PRIMARY KEY,
		chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		listing_id BIGINT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		return_date TIMESTAMPTZ NOT NULL,
		buyer_agreed_date BOOLEAN NOT NULL DEFAULT FALSE,
		seller_agreed_date BOOLEAN NOT NULL DEFAULT FALSE,
		handover_otp CHAR(4) NOT NULL,
		return_otp CHAR(4) NOT NULL,
		handover_otp_verified BOOLEAN NOT NULL DEFAULT FALSE,
		return_otp_verified BOOLEAN NOT NULL DEFAULT FALSE,
		buyer_started BOOLEAN NOT NULL DEFAULT FALSE,
		seller_started BOOLEAN NOT NULL DEFAULT FALSE,
		buyer_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		seller_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		is_late BOOLEAN NOT NULL DEFAULT FALSE,
		penalty NUMERIC(12, 2) NOT NULL DEFAULT 0,
		late_charged BOOLEAN NOT NULL DEFAULT FALSE,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'active', 'completed')),
		created_at TIMESTAMPTZ NOT NULL,
		start_date TIMESTAMPTZ,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS rental_agreements_one_open_per_chat
		ON rental_agreements (chat_id) WHERE status <> 'completed'`,
	`CREATE INDEX IF NOT EXISTS rental_agreements_chat_created
		ON rental_agreements (chat_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS rental_events (
		seq BIGSERIAL PRIMARY KEY,
		id UUID NOT NULL UNIQUE,
		agreement_id UUID NOT NULL REFERENCES rental_agreements(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		party TEXT NOT NULL DEFAULT '',
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS rental_events_agreement ON rental_events (agreement_id, seq)`,
}

// InitSchema creates any missing tables and indexes.
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
