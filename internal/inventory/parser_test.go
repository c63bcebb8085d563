package inventory

import (
	"errors"
	"strings"
	"testing"
)

func TestParse_BasicInventory(t *testing.T) {
	csvData := `Name,Quantity,Price,Set
Sol Ring,1,1.50,C21
Arcane Signet,2,0.99,C21
Swords to Plowshares,1,2.25,STA
`
	parser := NewParser(ParserOptions{})
	result, err := parser.Parse(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(result.Cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(result.Cards))
	}

	signet := result.Cards.Get("Arcane Signet")
	if signet == nil {
		t.Fatal("Arcane Signet not found")
	}
	if signet.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", signet.Quantity)
	}
	if signet.Price != 0.99 || !signet.HasPrice {
		t.Errorf("expected price 0.99, got %v (hasPrice=%v)", signet.Price, signet.HasPrice)
	}
	if signet.SetCode != "C21" {
		t.Errorf("expected set C21, got %q", signet.SetCode)
	}
}

func TestParse_MissingNameColumn(t *testing.T) {
	csvData := `Quantity,Price
1,1.50
`
	parser := NewParser(ParserOptions{})
	_, err := parser.Parse(strings.NewReader(csvData))

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if !strings.Contains(parseErr.Msg, "Name") {
		t.Errorf("expected error to mention Name column, got %q", parseErr.Msg)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	parser := NewParser(ParserOptions{})
	if _, err := parser.Parse(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestParse_PermissiveSkipsMalformedRows(t *testing.T) {
	csvData := `Name,Quantity,Price
Sol Ring,1,1.50
Bad Card,not-a-number,0.10
,2,0.20
Llanowar Elves,3,0.15
`
	parser := NewParser(ParserOptions{})
	result, err := parser.Parse(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(result.Cards) != 2 {
		t.Errorf("expected 2 cards after skipping bad rows, got %d", len(result.Cards))
	}
	if len(result.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %d: %v", len(result.Warnings), result.Warnings)
	}
}

func TestParse_StrictFailsOnMalformedRow(t *testing.T) {
	csvData := `Name,Quantity
Sol Ring,1
Bad Card,oops
`
	parser := NewParser(ParserOptions{Strict: true})
	_, err := parser.Parse(strings.NewReader(csvData))

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if parseErr.Line != 3 {
		t.Errorf("expected error at line 3, got line %d", parseErr.Line)
	}
}

func TestParse_MergesDuplicateNames(t *testing.T) {
	csvData := `Name,Quantity,Set
Sol Ring,1,C21
Sol Ring,2,CMR
`
	parser := NewParser(ParserOptions{})
	result, err := parser.Parse(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	ring := result.Cards.Get("Sol Ring")
	if ring == nil {
		t.Fatal("Sol Ring not found")
	}
	if ring.Quantity != 3 {
		t.Errorf("expected merged quantity 3, got %d", ring.Quantity)
	}
}

func TestParse_ColumnAliases(t *testing.T) {
	csvData := `Card Name,Count,Purchase Price,Edition,Foil
Brainstorm,4,$0.50,ICE,foil
`
	parser := NewParser(ParserOptions{})
	result, err := parser.Parse(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	card := result.Cards.Get("Brainstorm")
	if card == nil {
		t.Fatal("Brainstorm not found")
	}
	if card.Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", card.Quantity)
	}
	if card.Price != 0.50 {
		t.Errorf("expected price 0.50, got %v", card.Price)
	}
	if !card.Foil {
		t.Error("expected foil card")
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain name", "Sol Ring", "Sol Ring"},
		{"accented name", "Lim-Dûl's Vault", "Lim-Dul's Vault"},
		{"double-faced card", "Delver of Secrets // Insectile Aberration", "Delver of Secrets"},
		{"surrounding whitespace", "  Brainstorm  ", "Brainstorm"},
		{"accented double-faced", "Jötun Grunt // Nothing", "Jotun Grunt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.expected {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCollection_Owns(t *testing.T) {
	collection := Collection{
		"Sol Ring": &Card{Name: "Sol Ring", Quantity: 1},
		"Mox Opal": &Card{Name: "Mox Opal", Quantity: 0},
	}

	if !collection.Owns("Sol Ring") {
		t.Error("expected to own Sol Ring")
	}
	if collection.Owns("Mox Opal") {
		t.Error("zero-quantity card should not be owned")
	}
	if collection.Owns("Black Lotus") {
		t.Error("unlisted card should not be owned")
	}
}
