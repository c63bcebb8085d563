package export

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jmercer/deckforge/internal/deck"
)

// Format selects the output layout for a deck list.
type Format string

const (
	FormatPlainText Format = "plaintext" // "1 Card Name" lines, commander first
	FormatMoxfield  Format = "moxfield"  // importable list with Commander section
	FormatCSV       Format = "csv"       // name,type,quantity,price,score
)

// Options controls export behavior.
type Options struct {
	Format Format

	// IncludeStats appends total price and deck size as comments where
	// the format supports comments.
	IncludeStats bool

	// GroupByType orders the plain text list by primary type with
	// section headers instead of alphabetically.
	GroupByType bool
}

// DeckExport is the rendered output of a single deck.
type DeckExport struct {
	Content  string
	Format   Format
	Filename string
}

// Exporter renders build results into shareable deck lists.
type Exporter struct{}

// NewExporter creates a deck list exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export renders the result in the requested format.
func (e *Exporter) Export(result *deck.DeckResult, opts *Options) (*DeckExport, error) {
	if result == nil {
		return nil, fmt.Errorf("deck result is nil")
	}
	if opts == nil {
		opts = &Options{Format: FormatPlainText}
	}

	var content string
	var ext string
	var err error

	switch opts.Format {
	case FormatPlainText:
		content = e.exportPlainText(result, opts)
		ext = ".txt"
	case FormatMoxfield:
		content = e.exportMoxfield(result)
		ext = ".txt"
	case FormatCSV:
		content, err = e.exportCSV(result)
		if err != nil {
			return nil, err
		}
		ext = ".csv"
	default:
		return nil, fmt.Errorf("unsupported export format: %s", opts.Format)
	}

	return &DeckExport{
		Content:  content,
		Format:   opts.Format,
		Filename: sanitizeFilename(result.Commander) + ext,
	}, nil
}

// exportPlainText writes "1 Card Name" lines, commander and partner
// first, the rest alphabetically or grouped by type.
func (e *Exporter) exportPlainText(result *deck.DeckResult, opts *Options) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("1 %s\n", result.Commander))
	if result.Partner != "" {
		sb.WriteString(fmt.Sprintf("1 %s\n", result.Partner))
	}

	if opts.GroupByType {
		for _, group := range groupCardsByType(result.Cards) {
			sb.WriteString("\n// " + group.name + "\n")
			for _, c := range group.cards {
				sb.WriteString(fmt.Sprintf("%d %s\n", c.Quantity, c.Name))
			}
		}
	} else {
		for _, c := range sortedCards(result.Cards) {
			sb.WriteString(fmt.Sprintf("%d %s\n", c.Quantity, c.Name))
		}
	}

	if opts.IncludeStats {
		sb.WriteString(fmt.Sprintf("\n// %d cards, $%.2f\n", result.Size()+1, result.TotalPrice))
	}

	return sb.String()
}

// exportMoxfield writes a list Moxfield can import, with the commander
// in its own section.
func (e *Exporter) exportMoxfield(result *deck.DeckResult) string {
	var sb strings.Builder

	sb.WriteString("Commander\n")
	sb.WriteString(fmt.Sprintf("1 %s\n", result.Commander))
	if result.Partner != "" {
		sb.WriteString(fmt.Sprintf("1 %s\n", result.Partner))
	}
	sb.WriteString("\nDeck\n")
	for _, c := range sortedCards(result.Cards) {
		sb.WriteString(fmt.Sprintf("%d %s\n", c.Quantity, c.Name))
	}

	return sb.String()
}

// exportCSV writes one row per card including the commander.
func (e *Exporter) exportCSV(result *deck.DeckResult) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write([]string{"name", "type", "quantity", "price", "score"}); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	rows := [][]string{{result.Commander, "Commander", "1", "", ""}}
	if result.Partner != "" {
		rows = append(rows, []string{result.Partner, "Commander", "1", "", ""})
	}
	for _, c := range sortedCards(result.Cards) {
		rows = append(rows, []string{
			c.Name,
			c.PrimaryType,
			strconv.Itoa(c.Quantity),
			strconv.FormatFloat(c.Price, 'f', 2, 64),
			strconv.FormatFloat(c.Score, 'f', 4, 64),
		})
	}

	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}
	return sb.String(), nil
}

type typeGroup struct {
	name  string
	cards []deck.DeckCard
}

// typeOrder is the conventional section ordering for Commander lists.
var typeOrder = []string{
	"Creature", "Instant", "Sorcery", "Artifact", "Enchantment",
	"Planeswalker", "Battle", "Land",
}

func groupCardsByType(cards []deck.DeckCard) []typeGroup {
	byType := make(map[string][]deck.DeckCard)
	for _, c := range cards {
		t := c.PrimaryType
		if t == "" {
			t = "Other"
		}
		byType[t] = append(byType[t], c)
	}

	var groups []typeGroup
	for _, t := range typeOrder {
		if cs, ok := byType[t]; ok {
			groups = append(groups, typeGroup{name: t, cards: sortedCards(cs)})
			delete(byType, t)
		}
	}

	// Unrecognized types after the known ones, alphabetically.
	var rest []string
	for t := range byType {
		rest = append(rest, t)
	}
	sort.Strings(rest)
	for _, t := range rest {
		groups = append(groups, typeGroup{name: t, cards: sortedCards(byType[t])})
	}

	return groups
}

func sortedCards(cards []deck.DeckCard) []deck.DeckCard {
	out := make([]deck.DeckCard, len(cards))
	copy(out, cards)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// sanitizeFilename replaces characters that are invalid in filenames.
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, ch := range invalid {
		result = strings.ReplaceAll(result, ch, "_")
	}
	result = strings.TrimSpace(result)
	if len(result) > 100 {
		result = result[:100]
	}
	if result == "" {
		result = "deck"
	}
	return result
}
