// Package edhrec wraps a client-supplied EDHREC JSON payload behind a
// uniform lookup interface. The payload shape is owned by EDHREC; only the
// fields this package consumes are validated, everything else is ignored.
package edhrec

import (
	"encoding/json"
	"fmt"
)

// CardView represents a recommended card with its synergy statistics, as it
// appears in an EDHREC cardlist.
type CardView struct {
	Name           string  `json:"name"`
	Sanitized      string  `json:"sanitized"`
	Synergy        float64 `json:"synergy"`
	Inclusion      int     `json:"inclusion"`
	NumDecks       int     `json:"num_decks"`
	PotentialDecks int     `json:"potential_decks"`
	PrimaryType    string  `json:"primary_type,omitempty"`
}

// CardList is a tagged, categorized list of recommended cards
// (e.g. "highsynergycards", "topcards", "utilityartifacts").
type CardList struct {
	Tag       string     `json:"tag"`
	Header    string     `json:"header"`
	CardViews []CardView `json:"cardviews"`
}

// CardDetail holds per-card metadata from the payload's card_details map.
type CardDetail struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	PrimaryType   string   `json:"primary_type"`
	ColorIdentity []string `json:"color_identity"`
	Tags          []string `json:"tags,omitempty"`
}

// SimilarCard is an EDHREC "similar cards" entry used for substitutions.
type SimilarCard struct {
	Name          string   `json:"name"`
	ColorIdentity []string `json:"color_identity"`
	PrimaryType   string   `json:"primary_type,omitempty"`
}

// DeckEntry is one line of an average decklist.
type DeckEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// AverageDeck accepts both payload encodings EDHREC clients produce: a
// name→count object or a list of {name, count} entries.
type AverageDeck []DeckEntry

// UnmarshalJSON decodes either encoding. Object keys are sorted by the
// caller's iteration later, so order is not preserved here; list form
// preserves order.
func (a *AverageDeck) UnmarshalJSON(data []byte) error {
	var asList []DeckEntry
	if err := json.Unmarshal(data, &asList); err == nil {
		*a = asList
		return nil
	}

	var asMap map[string]int
	if err := json.Unmarshal(data, &asMap); err != nil {
		return fmt.Errorf("avg_deck is neither a list nor an object: %w", err)
	}

	entries := make([]DeckEntry, 0, len(asMap))
	for name, count := range asMap {
		entries = append(entries, DeckEntry{Name: name, Count: count})
	}
	*a = entries
	return nil
}

// Payload is the client-fetched EDHREC data for a single build request.
// Recognized keys mirror the browser-side fetch result:
//
//	avg_deck          average decklist for the commander (+theme/budget)
//	card_details      per-card type and color identity metadata
//	cardlists         EDHREC page cardlists carrying synergy scores
//	top_cards_by_type top recommendations bucketed by primary type
//	similar           similar-card lists keyed by card name
type Payload struct {
	AvgDeck        AverageDeck              `json:"avg_deck"`
	CardDetails    map[string]CardDetail    `json:"card_details"`
	CardLists      []CardList               `json:"cardlists"`
	TopCardsByType map[string][]CardView    `json:"top_cards_by_type"`
	Similar        map[string][]SimilarCard `json:"similar"`
}

// ParsePayload decodes the raw JSON payload submitted with a build request.
func ParsePayload(data []byte) (*Payload, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty EDHREC payload")
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode EDHREC payload: %w", err)
	}

	return &payload, nil
}
