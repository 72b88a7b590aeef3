// Package rounds builds the validated round table for one match and
// attributes ticks to rounds.
package rounds

import (
	"fmt"
	"sort"

	"github.com/stattrak/demotrak/internal/model"
)

// Index is the ordered table of valid rounds for one match. It is immutable
// once built.
type Index struct {
	rounds []model.Round
}

// Build validates and orders the raw round-end events into an Index.
// Entries without a winner are dropped; the surviving rounds are renumbered
// by their position in the valid sequence, so round numbers are always
// contiguous from 1 regardless of gaps in the source.
//
// A negative end tick, or a source round numbering that is not strictly
// increasing once the rows are in tick order, is a contract violation and
// fails the build.
func Build(ends []model.RoundEnd) (*Index, error) {
	// Ordering is a precondition for the tick windows, so enforce it here
	// rather than trusting the source table.
	ordered := make([]model.RoundEnd, len(ends))
	copy(ordered, ends)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].EndTick < ordered[j].EndTick
	})

	prev := 0
	for _, e := range ordered {
		if e.EndTick < 0 {
			return nil, fmt.Errorf("round %d: negative end tick %d", e.RoundNumber, e.EndTick)
		}
		if e.RoundNumber <= prev {
			return nil, fmt.Errorf("round number %d after %d: source numbering not strictly increasing", e.RoundNumber, prev)
		}
		prev = e.RoundNumber
	}

	idx := &Index{rounds: make([]model.Round, 0, len(ordered))}
	start, ct, t := 0, 0, 0
	for _, e := range ordered {
		if e.WinnerSide == model.SideNone {
			continue
		}
		switch e.WinnerSide {
		case model.SideCT:
			ct++
		case model.SideT:
			t++
		}
		idx.rounds = append(idx.rounds, model.Round{
			Number:     len(idx.rounds) + 1,
			StartTick:  start,
			EndTick:    e.EndTick,
			WinnerSide: e.WinnerSide,
			EndReason:  e.EndReason,
			ScoreCT:    ct,
			ScoreT:     t,
		})
		start = e.EndTick
	}
	return idx, nil
}

// Rounds returns the validated round table in order.
func (x *Index) Rounds() []model.Round {
	return x.rounds
}

// Len returns the number of valid rounds.
func (x *Index) Len() int {
	return len(x.rounds)
}

// Degenerate reports whether the match produced no valid rounds. Callers
// must treat this as "no round-scoped data available" and skip dependent
// aggregations.
func (x *Index) Degenerate() bool {
	return len(x.rounds) == 0
}

// RoundForTick returns the round number owning the given tick: the first
// round whose end tick is >= tick. Ticks past the final round end are
// clamped to the last round. With zero valid rounds every tick maps to 1.
func (x *Index) RoundForTick(tick int) int {
	if len(x.rounds) == 0 {
		return 1
	}
	n := sort.Search(len(x.rounds), func(i int) bool {
		return x.rounds[i].EndTick >= tick
	})
	if n == len(x.rounds) {
		return x.rounds[len(x.rounds)-1].Number
	}
	return x.rounds[n].Number
}

// Round returns the round with the given 1-based number.
func (x *Index) Round(number int) (model.Round, bool) {
	if number < 1 || number > len(x.rounds) {
		return model.Round{}, false
	}
	return x.rounds[number-1], true
}

// Score tallies round wins per side across the valid rounds.
func (x *Index) Score() (ct, t int) {
	for _, r := range x.rounds {
		switch r.WinnerSide {
		case model.SideCT:
			ct++
		case model.SideT:
			t++
		}
	}
	return ct, t
}
