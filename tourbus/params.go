// Package tourbus implements bubble removal: repeated bounded BFS from
// every branching node, looking for a pair of short alternate paths to
// the same downstream node, and deleting whichever path the data
// supports less.
package tourbus

// Params configures a TourBus pass.
type Params struct {
	// MaxLen bounds how many edges a bubble path may have before BFS
	// stops expanding that branch.
	MaxLen int
	// MaxEdits bounds the edit distance between two paths' base
	// sequences for them to be considered the same bubble.
	MaxEdits int
	// MaxRelativeErrors bounds edit distance as a fraction of the
	// longer path's length, in addition to MaxEdits.
	MaxRelativeErrors float64
	// AbsCoverageCutoff: a path is deleted outright if its mean edge
	// multiplicity is at or below this value.
	AbsCoverageCutoff float64
	// RelCoverageCutoff: a path is deleted if its mean multiplicity is
	// at or below this fraction of the stronger path's mean.
	RelCoverageCutoff float64
	// Threads is the number of branching nodes processed concurrently
	// per pass.
	Threads int
	// MaxPasses bounds how many times Run repeats Pass; Run stops
	// earlier if a pass removes nothing. Zero means no bound.
	MaxPasses int
}

// DefaultParams returns the parameters the original tool defaults to,
// scaled to a graph built with the given k.
func DefaultParams(k uint64) Params {
	return Params{
		MaxLen:            int(2*k) + 10,
		MaxEdits:          3,
		MaxRelativeErrors: 0.2,
		AbsCoverageCutoff: 1,
		RelCoverageCutoff: 0.2,
		Threads:           4,
		MaxPasses:         0,
	}
}
