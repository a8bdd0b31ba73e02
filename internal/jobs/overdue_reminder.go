package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/internal/logger"
	"github.com/segyhp/rental-engine/internal/repository"
	"github.com/segyhp/rental-engine/pkg/utils"
)

// OverdueReminder posts a reminder into the chat of every rental that is past
// its return date. It only writes chat messages; lateness itself is recorded
// when the agreement is next read.
type OverdueReminder struct {
	agreements repository.AgreementRepository
	chats      repository.ChatRepository
	penalty    domain.LatePenalty
	now        func() time.Time
	log        *slog.Logger
}

func NewOverdueReminder(agreements repository.AgreementRepository, chats repository.ChatRepository, penalty domain.LatePenalty) *OverdueReminder {
	return &OverdueReminder{
		agreements: agreements,
		chats:      chats,
		penalty:    penalty,
		now:        func() time.Time { return time.Now().UTC() },
		log:        logger.WithService("overdue-reminder"),
	}
}

// Run sends one round of reminders and returns how many were posted.
func (j *OverdueReminder) Run(ctx context.Context) (int, error) {
	now := j.now()

	overdue, err := j.agreements.ListOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue rentals: %w", err)
	}

	sent := 0
	for _, agreement := range overdue {
		content := reminderText(agreement, now, j.penalty)
		if _, err := j.chats.PostSystemMessage(ctx, agreement.ChatID, content); err != nil {
			j.log.WarnContext(ctx, "failed to post overdue reminder", "rental_id", agreement.ID, "chat_id", agreement.ChatID, "error", err)
			continue
		}
		sent++
	}

	j.log.InfoContext(ctx, "overdue reminders sent", "overdue", len(overdue), "sent", sent)
	return sent, nil
}

func reminderText(agreement *domain.RentalAgreement, now time.Time, penalty domain.LatePenalty) string {
	fee := penalty.Amount
	if agreement.LateCharged {
		fee = agreement.Penalty
	}
	return fmt.Sprintf("[System] Reminder: this item was due back on %s and is %d day(s) overdue. A late return fee of %s %s applies.",
		agreement.ReturnDate.Format("2 Jan 2006"),
		utils.DaysOverdue(agreement.ReturnDate, now),
		penalty.Currency,
		fee.StringFixed(2),
	)
}
