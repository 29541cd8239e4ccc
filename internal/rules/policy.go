package rules

import "fmt"

// KingSafetyPolicy selects how king destinations are screened when king
// safety is not ignored.
type KingSafetyPolicy int

const (
	// PolicyPreMove rejects king destinations attacked on the current board,
	// then applies the simulated-move filter used for every piece.
	PolicyPreMove KingSafetyPolicy = iota
	// PolicySimulate screens king destinations with the simulated-move filter only.
	PolicySimulate
)

func (p KingSafetyPolicy) String() string {
	switch p {
	case PolicyPreMove:
		return "premove"
	case PolicySimulate:
		return "simulate"
	default:
		return "unknown"
	}
}

func ParsePolicy(s string) (KingSafetyPolicy, error) {
	switch s {
	case "", "premove":
		return PolicyPreMove, nil
	case "simulate":
		return PolicySimulate, nil
	}
	return 0, fmt.Errorf("unknown king safety policy: %s (use: premove, simulate)", s)
}
