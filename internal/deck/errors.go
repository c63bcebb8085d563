package deck

import "fmt"

// UnknownCommanderError indicates the commander (or partner) name has no
// resolvable metadata or color identity in the submitted payload.
type UnknownCommanderError struct {
	Name string
}

func (e *UnknownCommanderError) Error() string {
	return fmt.Sprintf("unknown commander: no metadata or color identity for %q", e.Name)
}

// InsufficientPoolError indicates fewer legal owned cards exist than the
// deck needs. The build is reported as failed, never padded.
type InsufficientPoolError struct {
	Need int
	Have int
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("insufficient card pool: need %d legal owned cards, have %d", e.Need, e.Have)
}

// BudgetExceededError indicates a full deck could not be assembled within
// the budget ceiling. Returned only when the request demands a full deck;
// by default a budget-capped build yields a smaller deck instead.
type BudgetExceededError struct {
	Budget      float64
	MinimumCost float64
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("budget exceeded: cheapest legal deck costs $%.2f, budget is $%.2f", e.MinimumCost, e.Budget)
}
