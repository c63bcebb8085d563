package deck

// ColorToBasicLand maps a color identity symbol to its basic land.
var ColorToBasicLand = map[string]string{
	"W": "Plains",
	"U": "Island",
	"B": "Swamp",
	"R": "Mountain",
	"G": "Forest",
}

// wubrgOrder fixes the iteration order over color identities so land
// filling and identity unions are deterministic.
var wubrgOrder = []string{"W", "U", "B", "R", "G"}

// basicLandNames is the reverse lookup used to exempt basics from the
// singleton and ownership rules.
var basicLandNames = map[string]bool{
	"Plains":   true,
	"Island":   true,
	"Swamp":    true,
	"Mountain": true,
	"Forest":   true,
	"Wastes":   true,
}

// IsBasicLand reports whether name is a basic land.
func IsBasicLand(name string) bool {
	return basicLandNames[name]
}

// basicLandFor picks the i-th basic land for an identity, round-robin in
// WUBRG order so land filling is deterministic for identical inputs.
// Colorless identities get Wastes.
func basicLandFor(identity []string, i int) string {
	if len(identity) == 0 {
		return "Wastes"
	}
	return ColorToBasicLand[identity[i%len(identity)]]
}

// identitySubset reports whether every color in card is present in commander.
func identitySubset(card, commander []string) bool {
	for _, c := range card {
		found := false
		for _, cc := range commander {
			if c == cc {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// unionIdentity merges two color identities into WUBRG order.
func unionIdentity(a, b []string) []string {
	present := make(map[string]bool, len(a)+len(b))
	for _, c := range a {
		present[c] = true
	}
	for _, c := range b {
		present[c] = true
	}

	out := make([]string, 0, len(present))
	for _, c := range wubrgOrder {
		if present[c] {
			out = append(out, c)
		}
	}
	return out
}
