package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/segyhp/rental-engine/internal/domain"
)

const uniqueViolation = "23505"

const agreementColumns = `id, chat_id, listing_id, return_date, buyer_agreed_date, seller_agreed_date,
		handover_otp, return_otp, handover_otp_verified, return_otp_verified,
		buyer_started, seller_started, buyer_confirmed, seller_confirmed,
		is_late, penalty, late_charged, status, created_at, start_date, updated_at`

type agreementRepository struct {
	db *sqlx.DB
}

func NewAgreementRepository(db *sqlx.DB) AgreementRepository {
	return &agreementRepository{db: db}
}

func (r *agreementRepository) Create(ctx context.Context, agreement *domain.RentalAgreement) error {
	query := `
		INSERT INTO rental_agreements (` + agreementColumns + `)
		VALUES (:id, :chat_id, :listing_id, :return_date, :buyer_agreed_date, :seller_agreed_date,
			:handover_otp, :return_otp, :handover_otp_verified, :return_otp_verified,
			:buyer_started, :seller_started, :buyer_confirmed, :seller_confirmed,
			:is_late, :penalty, :late_charged, :status, :created_at, :start_date, :updated_at)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.NamedExecContext(ctx, query, agreement); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrActiveAgreementExists
		}
		return err
	}

	created := domain.AgreementCreated{ReturnDate: agreement.ReturnDate}
	if err = insertEvents(ctx, tx, agreement.ID, []domain.Event{created}, agreement.CreatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *agreementRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RentalAgreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM rental_agreements WHERE id = $1`

	var agreement domain.RentalAgreement
	if err := r.db.GetContext(ctx, &agreement, query, id); err != nil {
		return nil, err
	}

	return &agreement, nil
}

func (r *agreementRepository) GetLatestByChatID(ctx context.Context, chatID int64) (*domain.RentalAgreement, error) {
	query := `
		SELECT ` + agreementColumns + `
		FROM rental_agreements
		WHERE chat_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var agreement domain.RentalAgreement
	if err := r.db.GetContext(ctx, &agreement, query, chatID); err != nil {
		return nil, err
	}

	return &agreement, nil
}

func (r *agreementRepository) Mutate(ctx context.Context, id uuid.UUID, fn MutateFunc) (*domain.RentalAgreement, []domain.Event, error) {
	selectQuery := `SELECT ` + agreementColumns + ` FROM rental_agreements WHERE id = $1 FOR UPDATE`
	updateQuery := `
		UPDATE rental_agreements
		SET return_date = :return_date, buyer_agreed_date = :buyer_agreed_date, seller_agreed_date = :seller_agreed_date,
			handover_otp_verified = :handover_otp_verified, return_otp_verified = :return_otp_verified,
			buyer_started = :buyer_started, seller_started = :seller_started,
			buyer_confirmed = :buyer_confirmed, seller_confirmed = :seller_confirmed,
			is_late = :is_late, penalty = :penalty, late_charged = :late_charged, status = :status, start_date = :start_date, updated_at = :updated_at
		WHERE id = :id
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var agreement domain.RentalAgreement
	if err = tx.GetContext(ctx, &agreement, selectQuery, id); err != nil {
		return nil, nil, err
	}

	events, err := fn(ctx, &agreement, &txListingWriter{tx: tx})
	if err != nil {
		return nil, nil, err
	}
	if len(events) == 0 {
		return &agreement, nil, nil
	}

	if _, err = tx.NamedExecContext(ctx, updateQuery, &agreement); err != nil {
		return nil, nil, err
	}

	if err = insertEvents(ctx, tx, agreement.ID, events, agreement.UpdatedAt); err != nil {
		return nil, nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, err
	}

	return &agreement, events, nil
}

func (r *agreementRepository) ListEvents(ctx context.Context, agreementID uuid.UUID) ([]*domain.EventRecord, error) {
	query := `
		SELECT id, agreement_id, kind, party, payload, created_at
		FROM rental_events
		WHERE agreement_id = $1
		ORDER BY seq
	`

	var records []*domain.EventRecord
	if err := r.db.SelectContext(ctx, &records, query, agreementID); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *agreementRepository) ListOverdue(ctx context.Context, now time.Time) ([]*domain.RentalAgreement, error) {
	query := `
		SELECT ` + agreementColumns + `
		FROM rental_agreements
		WHERE status <> 'completed' AND return_date < $1
		ORDER BY return_date
	`

	var agreements []*domain.RentalAgreement
	if err := r.db.SelectContext(ctx, &agreements, query, now); err != nil {
		return nil, err
	}

	return agreements, nil
}

func insertEvents(ctx context.Context, tx *sqlx.Tx, agreementID uuid.UUID, events []domain.Event, at time.Time) error {
	query := `
		INSERT INTO rental_events (id, agreement_id, kind, party, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, ev := range events {
		record, err := domain.NewEventRecord(agreementID, ev, at)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, query,
			record.ID,
			record.AgreementID,
			string(record.Kind),
			string(record.Party),
			string(record.Payload),
			record.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

type txListingWriter struct {
	tx *sqlx.Tx
}

func (w *txListingWriter) UpdateStatus(ctx context.Context, listingID int64, status string) error {
	return updateListingStatus(ctx, w.tx, listingID, status)
}
