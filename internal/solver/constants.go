package solver

// Search tuning constants
const (
	// XPEpsilon absorbs floating point drift when comparing accumulated XP against thresholds
	XPEpsilon = 1e-9

	// DefaultTopK is how many runner-up recipes each step records as alternatives
	DefaultTopK = 3

	// MaxSearchSteps bounds the number of greedy transitions for one skill.
	// Every transition completes at least one level, so this is far above any real table.
	MaxSearchSteps = 10000

	// DefaultMaxExpansions bounds the number of states the exact search settles
	DefaultMaxExpansions = 200000
)
