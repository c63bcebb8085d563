// Package deck assembles legal, budget-constrained Commander decks from an
// owned-card inventory and EDHREC recommendation data.
package deck

import (
	"github.com/jmercer/deckforge/internal/edhrec"
	"github.com/jmercer/deckforge/internal/inventory"
)

// Provider is the lookup surface the builder needs from the EDHREC data
// adapter. *edhrec.Adapter satisfies it.
type Provider interface {
	MetadataFor(name string) (edhrec.CardMetadata, bool)
	AverageDeck() []edhrec.DeckEntry
	TopCardsForType(cardType string) []edhrec.CardView
	SimilarTo(name string) []edhrec.SimilarCard
}

// BuildRequest carries everything a single build needs. Requests are
// independent; the builder keeps no state between them.
type BuildRequest struct {
	Commander string
	Partner   string  // optional partner commander
	Theme     string  // optional theme tag, boosts matching cards
	Budget    float64 // total price ceiling in USD; 0 means no ceiling

	// RequireFullDeck turns a budget-capped partial result into a
	// BudgetExceededError instead.
	RequireFullDeck bool

	Inventory inventory.Collection
	Provider  Provider
}

// DeckCard is one selected non-commander card.
type DeckCard struct {
	Name        string  `json:"name"`
	PrimaryType string  `json:"primaryType,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Score       float64 `json:"score"`
}

// DeckResult is the assembled deck: the commander(s) plus up to 99 selected
// cards in rank order.
type DeckResult struct {
	Commander  string     `json:"commander"`
	Partner    string     `json:"partner,omitempty"`
	Theme      string     `json:"theme,omitempty"`
	Identity   []string   `json:"identity"`
	Cards      []DeckCard `json:"cards"`
	TotalPrice float64    `json:"totalPrice"`
	Warnings   []string   `json:"warnings,omitempty"`
}

// Size returns the number of non-commander card slots filled.
func (r *DeckResult) Size() int {
	total := 0
	for _, c := range r.Cards {
		total += c.Quantity
	}
	return total
}

// Names returns the selected card names in rank order.
func (r *DeckResult) Names() []string {
	names := make([]string, 0, len(r.Cards))
	for _, c := range r.Cards {
		names = append(names, c.Name)
	}
	return names
}

// Policy holds the tunable scoring parameters. Exact weights are
// configuration, not constants.
type Policy struct {
	// DefaultScore is assigned to owned cards EDHREC has no data on,
	// keeping them in the candidate pool at low priority.
	DefaultScore float64

	// ThemeBoost is added to the score of cards tagged with the
	// requested theme before ranking.
	ThemeBoost float64

	// TypeQuotas caps how many cards of a primary type the greedy pass
	// selects (e.g. "Creature": 35). Zero or missing means uncapped.
	TypeQuotas map[string]int
}

// DefaultPolicy returns the builder's default scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		DefaultScore: 0.01,
		ThemeBoost:   0.25,
	}
}
