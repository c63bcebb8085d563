package edhrec

import (
	"sort"
	"strings"

	"github.com/jmercer/deckforge/internal/inventory"
)

// CardMetadata is the merged view of a card the deck builder consumes:
// identity and type from card_details, synergy statistics from whichever
// cardlist ranked the card highest, and theme tags from both sources.
type CardMetadata struct {
	Name           string
	TypeLine       string
	PrimaryType    string
	ColorIdentity  []string
	Synergy        float64
	Inclusion      int
	NumDecks       int
	PotentialDecks int
	Tags           []string

	// HasScore reports whether any cardlist actually carried synergy data
	// for this card. Cards without it get a caller-defined default score.
	HasScore bool
}

// Adapter indexes a payload for name-based lookups. One adapter is built
// per request and holds no state beyond the submitted payload.
type Adapter struct {
	payload *Payload
	cards   map[string]*CardMetadata
}

// NewAdapter builds the lookup index from a parsed payload.
func NewAdapter(payload *Payload) *Adapter {
	a := &Adapter{
		payload: payload,
		cards:   make(map[string]*CardMetadata),
	}
	a.index()
	return a
}

func (a *Adapter) index() {
	for name, detail := range a.payload.CardDetails {
		if detail.Name == "" {
			detail.Name = name
		}
		key := inventory.NormalizeName(detail.Name)
		meta := a.ensure(key, detail.Name)
		meta.TypeLine = detail.Type
		meta.PrimaryType = detail.PrimaryType
		if meta.PrimaryType == "" {
			meta.PrimaryType = primaryTypeFromLine(detail.Type)
		}
		meta.ColorIdentity = detail.ColorIdentity
		meta.Tags = appendUnique(meta.Tags, detail.Tags...)
	}

	for _, list := range a.payload.CardLists {
		for _, view := range list.CardViews {
			key := inventory.NormalizeName(view.Name)
			meta := a.ensure(key, view.Name)
			if !meta.HasScore || view.Synergy > meta.Synergy {
				meta.Synergy = view.Synergy
				meta.Inclusion = view.Inclusion
				meta.NumDecks = view.NumDecks
				meta.PotentialDecks = view.PotentialDecks
				meta.HasScore = true
			}
			if meta.PrimaryType == "" && view.PrimaryType != "" {
				meta.PrimaryType = view.PrimaryType
			}
			if list.Tag != "" {
				meta.Tags = appendUnique(meta.Tags, list.Tag)
			}
		}
	}
}

func (a *Adapter) ensure(key, name string) *CardMetadata {
	if meta, ok := a.cards[key]; ok {
		return meta
	}
	meta := &CardMetadata{Name: name}
	a.cards[key] = meta
	return meta
}

// MetadataFor returns metadata for a card name, or ok=false when EDHREC has
// no data on it. The name is normalized before lookup.
func (a *Adapter) MetadataFor(name string) (CardMetadata, bool) {
	meta, ok := a.cards[inventory.NormalizeName(name)]
	if !ok {
		return CardMetadata{}, false
	}
	return *meta, true
}

// Recommendations returns every card a cardlist carried synergy data for,
// ordered by synergy descending then name ascending.
func (a *Adapter) Recommendations() []CardMetadata {
	out := make([]CardMetadata, 0, len(a.cards))
	for _, meta := range a.cards {
		if meta.HasScore {
			out = append(out, *meta)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Synergy != out[j].Synergy {
			return out[i].Synergy > out[j].Synergy
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// AverageDeck returns the payload's average decklist in payload order.
func (a *Adapter) AverageDeck() []DeckEntry {
	return a.payload.AvgDeck
}

// TopCardsForType returns the top recommendations for a primary card type
// (e.g. "Creature", "Instant"). Unknown types yield an empty list.
func (a *Adapter) TopCardsForType(cardType string) []CardView {
	return a.payload.TopCardsByType[cardType]
}

// SimilarTo returns EDHREC's similar cards for name, used when an
// unavailable card needs an owned substitute.
func (a *Adapter) SimilarTo(name string) []SimilarCard {
	if views, ok := a.payload.Similar[name]; ok {
		return views
	}
	// Similar lists are keyed by whatever spelling the client fetched;
	// fall back to the sanitized form EDHREC URLs use.
	return a.payload.Similar[SanitizeCardName(name)]
}

// primaryTypeFromLine extracts the primary card type from a full type line
// like "Legendary Creature — Phyrexian Angel".
func primaryTypeFromLine(typeLine string) string {
	front, _, _ := strings.Cut(typeLine, "—")
	fields := strings.Fields(front)
	for i := len(fields) - 1; i >= 0; i-- {
		switch fields[i] {
		case "Creature", "Sorcery", "Instant", "Land", "Enchantment",
			"Artifact", "Planeswalker", "Battle":
			return fields[i]
		}
	}
	return ""
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range dst {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
