package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/segyhp/rental-engine/internal/domain"
)

type chatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) GetByID(ctx context.Context, id int64) (*domain.Chat, error) {
	query := `
		SELECT id, listing_id, buyer_id, seller_id, created_at
		FROM chats
		WHERE id = $1
	`

	var chat domain.Chat
	if err := r.db.GetContext(ctx, &chat, query, id); err != nil {
		return nil, err
	}

	return &chat, nil
}

func (r *chatRepository) PostSystemMessage(ctx context.Context, chatID int64, content string) (*domain.Message, error) {
	query := `
		INSERT INTO messages (chat_id, sender_id, content, created_at)
		SELECT id, seller_id, $2, $3 FROM chats WHERE id = $1
		RETURNING id, chat_id, sender_id, content, created_at
	`

	var message domain.Message
	if err := r.db.GetContext(ctx, &message, query, chatID, content, time.Now().UTC()); err != nil {
		return nil, err
	}

	return &message, nil
}
