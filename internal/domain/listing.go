package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ListingStatusAvailable = "available"
	ListingStatusSold      = "sold"
	ListingStatusRented    = "rented"

	ListingTypeSell = "sell"
	ListingTypeRent = "rent"
)

// Listing is the slice of a marketplace listing the rental flow reads.
type Listing struct {
	ID       int64  `json:"id" db:"id"`
	SellerID int64  `json:"sellerId" db:"seller_id"`
	Title    string `json:"title" db:"title"`
	Type     string `json:"type" db:"type"`
	Status   string `json:"status" db:"status"`
}

// Chat binds one listing to one buyer and its seller.
type Chat struct {
	ID        int64     `json:"id" db:"id"`
	ListingID int64     `json:"listingId" db:"listing_id"`
	BuyerID   int64     `json:"buyerId" db:"buyer_id"`
	SellerID  int64     `json:"sellerId" db:"seller_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// RoleOf returns the party userID plays in the chat, if any.
func (c *Chat) RoleOf(userID int64) (Party, bool) {
	switch userID {
	case c.BuyerID:
		return PartyBuyer, true
	case c.SellerID:
		return PartySeller, true
	}
	return "", false
}

type Message struct {
	ID        int64     `json:"id" db:"id"`
	ChatID    int64     `json:"chatId" db:"chat_id"`
	SenderID  int64     `json:"senderId" db:"sender_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// LatePenalty is the flat fee charged once a rental is first seen overdue.
type LatePenalty struct {
	Amount   decimal.Decimal
	Currency string
}
