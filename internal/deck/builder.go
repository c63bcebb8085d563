package deck

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jmercer/deckforge/internal/edhrec"
	"github.com/jmercer/deckforge/internal/inventory"
)

// Builder runs the deck selection algorithm. A builder only carries its
// scoring policy; every build is a pure function of its request.
type Builder struct {
	policy Policy
	logger *slog.Logger
}

// NewBuilder creates a builder with the given scoring policy.
func NewBuilder(policy Policy) *Builder {
	return &Builder{
		policy: policy,
		logger: slog.Default(),
	}
}

// WithLogger replaces the builder's logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// candidate is an owned card admitted to the ranking pool.
type candidate struct {
	card        *inventory.Card
	score       float64
	price       float64
	primaryType string
}

// Build assembles a deck by greedy selection: candidates ranked by synergy
// score descending, price ascending, then name ascending, selected until
// the non-commander slots are filled or the budget blocks everything left.
// Deterministic given identical inputs.
func (b *Builder) Build(req *BuildRequest) (*DeckResult, error) {
	if req == nil {
		return nil, fmt.Errorf("request is nil")
	}
	if req.Commander == "" {
		return nil, fmt.Errorf("commander is required")
	}
	if req.Provider == nil {
		return nil, fmt.Errorf("metadata provider is required")
	}
	if len(req.Inventory) == 0 {
		return nil, fmt.Errorf("inventory is empty")
	}

	identity, err := b.combinedIdentity(req)
	if err != nil {
		return nil, err
	}

	slots := 99
	if req.Partner != "" {
		// Partnered decks run two commanders in the 100.
		slots = 98
	}

	pool := b.collectCandidates(req, identity)
	if len(pool) < slots {
		return nil, &InsufficientPoolError{Need: slots, Have: len(pool)}
	}

	rankCandidates(pool)

	result := &DeckResult{
		Commander: req.Commander,
		Partner:   req.Partner,
		Theme:     req.Theme,
		Identity:  identity,
	}

	typeCounts := make(map[string]int)
	budgetSkipped := false

	for _, c := range pool {
		if len(result.Cards) >= slots {
			break
		}
		if req.Budget > 0 && result.TotalPrice+c.price > req.Budget {
			budgetSkipped = true
			continue
		}
		if quota, ok := b.policy.TypeQuotas[c.primaryType]; ok && quota > 0 && typeCounts[c.primaryType] >= quota {
			continue
		}

		result.Cards = append(result.Cards, DeckCard{
			Name:        c.card.Name,
			PrimaryType: c.primaryType,
			Quantity:    1,
			Price:       c.price,
			Score:       c.score,
		})
		result.TotalPrice += c.price
		typeCounts[c.primaryType]++
	}

	if len(result.Cards) < slots {
		if budgetSkipped && req.RequireFullDeck {
			return nil, &BudgetExceededError{
				Budget:      req.Budget,
				MinimumCost: cheapestDeckCost(pool, slots),
			}
		}
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("deck has %d of %d cards: remaining candidates were blocked by budget or type quotas", len(result.Cards), slots))
	}

	b.logger.Debug("deck built",
		"commander", req.Commander,
		"cards", len(result.Cards),
		"totalPrice", result.TotalPrice,
		"poolSize", len(pool))

	return result, nil
}

// combinedIdentity resolves the commander (and partner) color identity.
func (b *Builder) combinedIdentity(req *BuildRequest) ([]string, error) {
	meta, ok := req.Provider.MetadataFor(req.Commander)
	if !ok || meta.ColorIdentity == nil {
		return nil, &UnknownCommanderError{Name: req.Commander}
	}
	identity := unionIdentity(meta.ColorIdentity, nil)

	if req.Partner != "" {
		partnerMeta, ok := req.Provider.MetadataFor(req.Partner)
		if !ok || partnerMeta.ColorIdentity == nil {
			return nil, &UnknownCommanderError{Name: req.Partner}
		}
		identity = unionIdentity(identity, partnerMeta.ColorIdentity)
	}

	return identity, nil
}

// collectCandidates filters the inventory to legal candidates and scores
// them. Cards EDHREC has no data on stay in the pool at the default score;
// cards with a known identity outside the commander's are excluded.
func (b *Builder) collectCandidates(req *BuildRequest, identity []string) []candidate {
	commanderKey := inventory.NormalizeName(req.Commander)
	partnerKey := ""
	if req.Partner != "" {
		partnerKey = inventory.NormalizeName(req.Partner)
	}

	pool := make([]candidate, 0, len(req.Inventory))
	for key, card := range req.Inventory {
		if card.Quantity <= 0 || key == commanderKey || key == partnerKey {
			continue
		}

		meta, ok := req.Provider.MetadataFor(card.Name)
		if ok && !identitySubset(meta.ColorIdentity, identity) {
			continue
		}

		score := b.policy.DefaultScore
		if ok && meta.HasScore {
			score = meta.Synergy
		}
		if req.Theme != "" && matchesTheme(meta, req.Theme) {
			score += b.policy.ThemeBoost
		}

		pool = append(pool, candidate{
			card:        card,
			score:       score,
			price:       card.Price,
			primaryType: meta.PrimaryType,
		})
	}

	return pool
}

// rankCandidates sorts by score descending, then price ascending (favor
// affordability), then name ascending (determinism).
func rankCandidates(pool []candidate) {
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].score != pool[j].score {
			return pool[i].score > pool[j].score
		}
		if pool[i].price != pool[j].price {
			return pool[i].price < pool[j].price
		}
		return pool[i].card.Name < pool[j].card.Name
	})
}

// matchesTheme reports whether a card carries the requested theme tag.
func matchesTheme(meta edhrec.CardMetadata, theme string) bool {
	want := strings.ToLower(theme)
	sanitized := edhrec.SanitizeCardName(theme)
	for _, tag := range meta.Tags {
		got := strings.ToLower(tag)
		if got == want || got == sanitized {
			return true
		}
	}
	return false
}

// cheapestDeckCost sums the n cheapest candidates in the pool.
func cheapestDeckCost(pool []candidate, n int) float64 {
	prices := make([]float64, 0, len(pool))
	for _, c := range pool {
		prices = append(prices, c.price)
	}
	sort.Float64s(prices)

	if n > len(prices) {
		n = len(prices)
	}
	total := 0.0
	for _, p := range prices[:n] {
		total += p
	}
	return total
}
