package sv

import "fmt"

// MergeHorizon is the fast-reject distance for merge decisions: two
// candidates whose begin extremes are more than this far apart can never
// merge. A position-sorted driver uses the same horizon to close clusters
// that no future record can reach.
const MergeHorizon = 10000

// ShouldMerge reports whether other should be merged into c, given the
// maximum allowed begin/end distance and size difference.
//
// The relation is deliberately asymmetric: only the receiver's stored
// interval set is scanned against other's single representative (Begin,End)
// point, not the cross-product of both histories. Once either side has
// absorbed multiple members, c.ShouldMerge(other) and other.ShouldMerge(c)
// may disagree. The driver must always merge into the side it queried, not
// symmetrize the test.
func (c *Candidate) ShouldMerge(other *Candidate, maxDistance, maxSizeDiff int64) bool {
	if other.Type != c.Type {
		return false
	}

	if abs64(other.MaxBegin-c.MinBegin) > MergeHorizon ||
		abs64(other.MinBegin-c.MaxBegin) > MergeHorizon {
		return false
	}

	for iv := range c.uniqueIntervals {
		if abs64(iv.Begin-other.Begin) <= maxDistance &&
			abs64(iv.End-other.End) <= maxDistance &&
			abs64((other.End-other.Begin)-(iv.End-iv.Begin)) <= maxSizeDiff {
			return true
		}
	}

	return false
}

// Merge absorbs other into c: member histories concatenate in
// receiver-then-argument order, the begin extremes widen, the unique
// interval sets union, and any prior merge count carried by other
// accumulates. Merging candidates of different types is a programming error
// and panics; gate calls with ShouldMerge.
//
// Merge is an ownership transfer: other is consumed and must not be used
// afterward.
func (c *Candidate) Merge(other *Candidate) {
	if c.Type != other.Type {
		panic(fmt.Sprintf("sv: cannot merge %s candidate with %s candidate", c.Type, other.Type))
	}

	c.MinBegin = min(c.MinBegin, other.MinBegin)
	c.MaxBegin = max(c.MaxBegin, other.MaxBegin)
	c.Begins = append(c.Begins, other.Begins...)
	c.Ends = append(c.Ends, other.Ends...)
	c.Infos = append(c.Infos, other.Infos...)
	c.Refs = append(c.Refs, other.Refs...)
	c.Alts = append(c.Alts, other.Alts...)
	for iv := range other.uniqueIntervals {
		c.uniqueIntervals[iv] = struct{}{}
	}

	if other.oldMergedCount > 0 {
		c.oldMergedCount += other.oldMergedCount - 1
	}

	if c.outputIDs {
		c.IDs = append(c.IDs, other.IDs...)
	}
}
