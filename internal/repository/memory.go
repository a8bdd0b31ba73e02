package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/rental-engine/internal/domain"
)

// MemoryStore keeps agreements, listings and chats in process. It backs local
// runs and tests and follows the same contracts as the Postgres repositories.
type MemoryStore struct {
	mu         sync.Mutex
	agreements map[uuid.UUID]*domain.RentalAgreement
	order      []uuid.UUID
	locks      map[uuid.UUID]*sync.Mutex
	events     map[uuid.UUID][]*domain.EventRecord
	listings   map[int64]*domain.Listing
	chats      map[int64]*domain.Chat
	messages   []*domain.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		agreements: make(map[uuid.UUID]*domain.RentalAgreement),
		locks:      make(map[uuid.UUID]*sync.Mutex),
		events:     make(map[uuid.UUID][]*domain.EventRecord),
		listings:   make(map[int64]*domain.Listing),
		chats:      make(map[int64]*domain.Chat),
	}
}

// SeedListing stores a copy of listing.
func (s *MemoryStore) SeedListing(listing domain.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[listing.ID] = &listing
}

// SeedChat stores a copy of chat.
func (s *MemoryStore) SeedChat(chat domain.Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[chat.ID] = &chat
}

// Messages returns the messages posted to a chat.
func (s *MemoryStore) Messages(chatID int64) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Message
	for _, m := range s.messages {
		if m.ChatID == chatID {
			out = append(out, *m)
		}
	}
	return out
}

func (s *MemoryStore) Agreements() AgreementRepository { return memoryAgreements{s} }
func (s *MemoryStore) Listings() ListingRepository     { return memoryListings{s} }
func (s *MemoryStore) Chats() ChatRepository           { return memoryChats{s} }

type memoryAgreements struct{ s *MemoryStore }

func (r memoryAgreements) Create(_ context.Context, agreement *domain.RentalAgreement) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.agreements {
		if existing.ChatID == agreement.ChatID && !existing.IsCompleted() {
			return ErrActiveAgreementExists
		}
	}

	s.agreements[agreement.ID] = agreement.Clone()
	s.order = append(s.order, agreement.ID)
	s.locks[agreement.ID] = &sync.Mutex{}
	return s.appendEventsLocked(agreement.ID, []domain.Event{domain.AgreementCreated{ReturnDate: agreement.ReturnDate}}, agreement.CreatedAt)
}

func (r memoryAgreements) GetByID(_ context.Context, id uuid.UUID) (*domain.RentalAgreement, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	agreement, ok := s.agreements[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return agreement.Clone(), nil
}

func (r memoryAgreements) GetLatestByChatID(_ context.Context, chatID int64) (*domain.RentalAgreement, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *domain.RentalAgreement
	for _, id := range s.order {
		a := s.agreements[id]
		if a.ChatID != chatID {
			continue
		}
		if latest == nil || !a.CreatedAt.Before(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, sql.ErrNoRows
	}
	return latest.Clone(), nil
}

func (r memoryAgreements) Mutate(ctx context.Context, id uuid.UUID, fn MutateFunc) (*domain.RentalAgreement, []domain.Event, error) {
	s := r.s

	s.mu.Lock()
	lock, ok := s.locks[id]
	s.mu.Unlock()
	if !ok {
		return nil, nil, sql.ErrNoRows
	}

	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	working := s.agreements[id].Clone()
	s.mu.Unlock()

	staged := &stagedListings{s: s, updates: map[int64]string{}}
	events, err := fn(ctx, working, staged)
	if err != nil {
		return nil, nil, err
	}
	if len(events) == 0 {
		return working, nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for listingID, status := range staged.updates {
		s.listings[listingID].Status = status
	}
	s.agreements[id] = working.Clone()
	if err := s.appendEventsLocked(id, events, working.UpdatedAt); err != nil {
		return nil, nil, err
	}
	return working, events, nil
}

func (r memoryAgreements) ListEvents(_ context.Context, agreementID uuid.UUID) ([]*domain.EventRecord, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*domain.EventRecord, len(s.events[agreementID]))
	copy(records, s.events[agreementID])
	return records, nil
}

func (r memoryAgreements) ListOverdue(_ context.Context, now time.Time) ([]*domain.RentalAgreement, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.RentalAgreement
	for _, id := range s.order {
		if a := s.agreements[id]; a.Overdue(now) {
			out = append(out, a.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReturnDate.Before(out[j].ReturnDate) })
	return out, nil
}

func (s *MemoryStore) appendEventsLocked(id uuid.UUID, events []domain.Event, at time.Time) error {
	for _, ev := range events {
		record, err := domain.NewEventRecord(id, ev, at)
		if err != nil {
			return err
		}
		s.events[id] = append(s.events[id], record)
	}
	return nil
}

// stagedListings holds listing writes until the agreement change commits.
type stagedListings struct {
	s       *MemoryStore
	updates map[int64]string
}

func (l *stagedListings) UpdateStatus(_ context.Context, listingID int64, status string) error {
	l.s.mu.Lock()
	_, ok := l.s.listings[listingID]
	l.s.mu.Unlock()
	if !ok {
		return sql.ErrNoRows
	}
	l.updates[listingID] = status
	return nil
}

type memoryListings struct{ s *MemoryStore }

func (r memoryListings) GetByID(_ context.Context, id int64) (*domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	listing, ok := r.s.listings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *listing
	return &c, nil
}

func (r memoryListings) UpdateStatus(_ context.Context, listingID int64, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	listing, ok := r.s.listings[listingID]
	if !ok {
		return sql.ErrNoRows
	}
	listing.Status = status
	return nil
}

type memoryChats struct{ s *MemoryStore }

func (r memoryChats) GetByID(_ context.Context, id int64) (*domain.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	chat, ok := r.s.chats[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *chat
	return &c, nil
}

func (r memoryChats) PostSystemMessage(_ context.Context, chatID int64, content string) (*domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	chat, ok := r.s.chats[chatID]
	if !ok {
		return nil, sql.ErrNoRows
	}

	message := &domain.Message{
		ID:        int64(len(r.s.messages) + 1),
		ChatID:    chatID,
		SenderID:  chat.SellerID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	r.s.messages = append(r.s.messages, message)
	c := *message
	return &c, nil
}
