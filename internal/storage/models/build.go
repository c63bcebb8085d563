package models

import "time"

// Build is a persisted deck build: the request summary plus aggregates.
type Build struct {
	ID         int64     `json:"id" db:"id"`
	Commander  string    `json:"commander" db:"commander"`
	Partner    string    `json:"partner,omitempty" db:"partner"`
	Theme      string    `json:"theme,omitempty" db:"theme"`
	Budget     float64   `json:"budget" db:"budget"`
	TotalPrice float64   `json:"totalPrice" db:"total_price"`
	DeckSize   int       `json:"deckSize" db:"deck_size"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// BuildCard is one selected card of a persisted build, in rank order.
type BuildCard struct {
	ID          int64   `json:"id" db:"id"`
	BuildID     int64   `json:"buildId" db:"build_id"`
	CardName    string  `json:"cardName" db:"card_name"`
	PrimaryType string  `json:"primaryType,omitempty" db:"primary_type"`
	Quantity    int     `json:"quantity" db:"quantity"`
	Price       float64 `json:"price" db:"price"`
	Score       float64 `json:"score" db:"score"`
	Position    int     `json:"position" db:"position"`
}
