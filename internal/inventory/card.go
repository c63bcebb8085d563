package inventory

// Card represents a single uniquely-named card in the user's collection.
type Card struct {
	// Name is the normalized card name (front face only for double-faced cards).
	Name string `json:"name"`

	// RawName is the name exactly as it appeared in the CSV.
	RawName string `json:"rawName"`

	// Quantity is the number of copies owned. Defaults to 1 when the CSV
	// has no quantity column.
	Quantity int `json:"quantity"`

	// Price is the per-copy price in USD. Zero when unknown.
	Price float64 `json:"price"`

	// HasPrice reports whether the CSV actually carried a price for this card.
	HasPrice bool `json:"hasPrice"`

	// SetCode is the set the copy belongs to, if listed.
	SetCode string `json:"setCode,omitempty"`

	// Foil indicates a foil printing.
	Foil bool `json:"foil,omitempty"`

	// Condition is the card condition string as supplied (e.g. "NM", "LP").
	Condition string `json:"condition,omitempty"`
}

// Collection maps normalized card names to owned cards.
type Collection map[string]*Card

// Owns reports whether the collection contains at least one copy of name.
// The name is normalized before lookup.
func (c Collection) Owns(name string) bool {
	card, ok := c[NormalizeName(name)]
	return ok && card.Quantity > 0
}

// Get returns the owned card for name, or nil if not owned.
func (c Collection) Get(name string) *Card {
	return c[NormalizeName(name)]
}
