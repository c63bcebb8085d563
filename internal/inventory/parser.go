// Package inventory parses card collection CSV exports into owned-card records.
package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseError indicates the CSV could not be parsed at all, or (in strict
// mode) that a row was malformed.
type ParseError struct {
	Line int    // 1-based line number, 0 when the whole file is at fault
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("inventory parse error at line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("inventory parse error: %s", e.Msg)
}

// ParserOptions controls parsing behavior.
type ParserOptions struct {
	// Strict aborts the import on the first malformed row. The default
	// (permissive) skips malformed rows and records a warning, since
	// inventory exports are user-supplied and often imperfect.
	Strict bool
}

// ParseResult contains the parsed collection plus any per-row warnings
// collected in permissive mode.
type ParseResult struct {
	Cards    Collection
	Warnings []string
}

// Parser reads collection CSV exports with a header row.
type Parser struct {
	opts ParserOptions
}

// NewParser creates a parser with the given options.
func NewParser(opts ParserOptions) *Parser {
	return &Parser{opts: opts}
}

// Column aliases recognized in the header row, lowercased.
var (
	nameColumns      = []string{"name", "card name", "card"}
	quantityColumns  = []string{"quantity", "count", "qty"}
	priceColumns     = []string{"price", "purchase price", "usd price", "price (usd)"}
	setColumns       = []string{"set", "set code", "edition", "edition code"}
	foilColumns      = []string{"foil", "finish"}
	conditionColumns = []string{"condition"}
)

// Parse reads CSV data and returns the owned-card collection. Duplicate
// names have their quantities merged. Returns *ParseError when the header
// is missing a name column or the input is empty.
func (p *Parser) Parse(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rows validated individually
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ParseError{Msg: "empty input"}
	}
	if err != nil {
		return nil, &ParseError{Msg: fmt.Sprintf("read header: %v", err)}
	}

	cols := indexColumns(header)
	if cols.name < 0 {
		return nil, &ParseError{Msg: "missing required column: Name"}
	}

	result := &ParseResult{Cards: make(Collection)}
	line := 1

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			if p.opts.Strict {
				return nil, &ParseError{Line: line, Msg: fmt.Sprintf("malformed row: %v", err)}
			}
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: skipped malformed row: %v", line, err))
			continue
		}

		card, rowErr := p.parseRow(row, cols)
		if rowErr != nil {
			if p.opts.Strict {
				return nil, &ParseError{Line: line, Msg: rowErr.Error()}
			}
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: %v", line, rowErr))
			continue
		}

		if existing, ok := result.Cards[card.Name]; ok {
			existing.Quantity += card.Quantity
			if !existing.HasPrice && card.HasPrice {
				existing.Price = card.Price
				existing.HasPrice = true
			}
			continue
		}
		result.Cards[card.Name] = card
	}

	if len(result.Cards) == 0 {
		return nil, &ParseError{Msg: "no cards found in inventory"}
	}

	return result, nil
}

// columnIndexes holds resolved header positions; -1 means absent.
type columnIndexes struct {
	name      int
	quantity  int
	price     int
	set       int
	foil      int
	condition int
}

func indexColumns(header []string) columnIndexes {
	cols := columnIndexes{name: -1, quantity: -1, price: -1, set: -1, foil: -1, condition: -1}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		switch {
		case cols.name < 0 && matchesColumn(key, nameColumns):
			cols.name = i
		case cols.quantity < 0 && matchesColumn(key, quantityColumns):
			cols.quantity = i
		case cols.price < 0 && matchesColumn(key, priceColumns):
			cols.price = i
		case cols.set < 0 && matchesColumn(key, setColumns):
			cols.set = i
		case cols.foil < 0 && matchesColumn(key, foilColumns):
			cols.foil = i
		case cols.condition < 0 && matchesColumn(key, conditionColumns):
			cols.condition = i
		}
	}
	return cols
}

func matchesColumn(key string, aliases []string) bool {
	for _, alias := range aliases {
		if key == alias {
			return true
		}
	}
	return false
}

func (p *Parser) parseRow(row []string, cols columnIndexes) (*Card, error) {
	rawName := field(row, cols.name)
	if rawName == "" {
		return nil, fmt.Errorf("empty card name")
	}

	card := &Card{
		Name:     NormalizeName(rawName),
		RawName:  rawName,
		Quantity: 1,
	}

	if qty := field(row, cols.quantity); qty != "" {
		n, err := strconv.Atoi(qty)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid quantity %q", qty)
		}
		card.Quantity = n
	}

	if price := field(row, cols.price); price != "" {
		// Exports commonly prefix prices with a currency symbol.
		cleaned := strings.TrimLeft(price, "$€£ ")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid price %q", price)
		}
		card.Price = v
		card.HasPrice = true
	}

	card.SetCode = field(row, cols.set)
	card.Condition = field(row, cols.condition)

	if foil := strings.ToLower(field(row, cols.foil)); foil != "" {
		card.Foil = foil == "foil" || foil == "true" || foil == "yes" || foil == "1"
	}

	return card, nil
}

// field returns the trimmed value at index i, or "" when absent.
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
