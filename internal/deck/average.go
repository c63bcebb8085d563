package deck

import (
	"fmt"
	"sort"

	"github.com/jmercer/deckforge/internal/inventory"
)

// Substitution records an owned card standing in for an unavailable one.
type Substitution struct {
	For  string `json:"for"`
	With string `json:"with"`
}

// AverageResult is the outcome of reconstructing EDHREC's average decklist
// from the owned inventory.
type AverageResult struct {
	Commander string `json:"commander"`
	Partner   string `json:"partner,omitempty"`

	// Deck maps card name to copy count. Basic lands may exceed one copy.
	Deck map[string]int `json:"deck"`

	DeckSize      int            `json:"deckSize"`
	Substitutions []Substitution `json:"substitutions,omitempty"`

	// Unavailable lists average-deck cards that could not be replaced.
	Unavailable []string `json:"unavailableCards,omitempty"`

	// ExtrasByType lists further owned top cards per primary type, beyond
	// what the deck needed, as manual upgrade suggestions.
	ExtrasByType map[string][]string `json:"extraCardsByType,omitempty"`
}

// BuildFromAverage reconstructs the payload's average decklist from owned
// cards: keeps owned entries, substitutes unavailable ones with similar
// owned cards inside the color identity, swaps unavailable lands for basic
// lands, then fills remaining per-type gaps from the top-cards lists.
func (b *Builder) BuildFromAverage(req *BuildRequest) (*AverageResult, error) {
	if req == nil {
		return nil, fmt.Errorf("request is nil")
	}
	if req.Commander == "" {
		return nil, fmt.Errorf("commander is required")
	}
	if req.Provider == nil {
		return nil, fmt.Errorf("metadata provider is required")
	}

	identity, err := b.combinedIdentity(req)
	if err != nil {
		return nil, err
	}

	avg := req.Provider.AverageDeck()
	if len(avg) == 0 {
		return nil, fmt.Errorf("payload has no average decklist for %s", req.Commander)
	}

	result := &AverageResult{
		Commander: req.Commander,
		Partner:   req.Partner,
		Deck:      make(map[string]int),
	}

	// Keep entries the user owns; basic lands are always available.
	var unavailable []string
	for _, entry := range avg {
		name := inventory.NormalizeName(entry.Name)
		count := entry.Count
		if count <= 0 {
			count = 1
		}
		if IsBasicLand(name) || req.Inventory.Owns(name) {
			result.Deck[name] += count
		} else {
			unavailable = append(unavailable, name)
		}
	}
	sort.Strings(unavailable)

	// Substitute unavailable cards with similar owned cards, or basic
	// lands when the missing card is a land.
	landIndex := 0
	var stillMissing []string
	for _, missing := range unavailable {
		if sub := b.findSimilarOwned(req, missing, identity, result.Deck); sub != "" {
			result.Deck[sub] = 1
			result.Substitutions = append(result.Substitutions, Substitution{For: missing, With: sub})
			continue
		}

		if meta, ok := req.Provider.MetadataFor(missing); ok && meta.PrimaryType == "Land" {
			result.Deck[basicLandFor(identity, landIndex)]++
			landIndex++
			continue
		}

		stillMissing = append(stillMissing, missing)
	}

	// Group what is still missing by primary type and pull owned
	// replacements from the top-cards-by-type lists.
	missingByType := make(map[string][]string)
	for _, missing := range stillMissing {
		primaryType := "Unknown"
		if meta, ok := req.Provider.MetadataFor(missing); ok && meta.PrimaryType != "" {
			primaryType = meta.PrimaryType
		}
		missingByType[primaryType] = append(missingByType[primaryType], missing)
	}

	result.ExtrasByType = make(map[string][]string)
	for _, primaryType := range sortedKeys(missingByType) {
		missing := missingByType[primaryType]
		replaced := b.fillFromTopCards(req, primaryType, len(missing), identity, result.Deck, result.ExtrasByType)
		result.Unavailable = append(result.Unavailable, missing[replaced:]...)
	}
	if len(result.ExtrasByType) == 0 {
		result.ExtrasByType = nil
	}

	for _, count := range result.Deck {
		result.DeckSize += count
	}

	b.logger.Debug("average deck rebuilt",
		"commander", req.Commander,
		"deckSize", result.DeckSize,
		"substitutions", len(result.Substitutions),
		"unavailable", len(result.Unavailable))

	return result, nil
}

// findSimilarOwned returns the first owned, in-identity similar card not
// already in the deck, or "".
func (b *Builder) findSimilarOwned(req *BuildRequest, missing string, identity []string, deck map[string]int) string {
	for _, similar := range req.Provider.SimilarTo(missing) {
		name := inventory.NormalizeName(similar.Name)
		if _, inDeck := deck[name]; inDeck {
			continue
		}
		if !req.Inventory.Owns(name) {
			continue
		}
		if !identitySubset(similar.ColorIdentity, identity) {
			continue
		}
		return name
	}
	return ""
}

// fillFromTopCards adds up to want owned top cards of the given primary
// type to the deck, recording leftovers as upgrade suggestions. Returns how
// many were added.
func (b *Builder) fillFromTopCards(req *BuildRequest, primaryType string, want int, identity []string, deck map[string]int, extras map[string][]string) int {
	added := 0
	for _, view := range req.Provider.TopCardsForType(primaryType) {
		name := inventory.NormalizeName(view.Name)
		if _, inDeck := deck[name]; inDeck {
			continue
		}
		if !req.Inventory.Owns(name) {
			continue
		}
		if meta, ok := req.Provider.MetadataFor(name); ok && !identitySubset(meta.ColorIdentity, identity) {
			continue
		}

		if added < want {
			deck[name] = 1
			added++
		} else {
			extras[primaryType] = append(extras[primaryType], name)
		}
	}
	return added
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
