package positions

import (
	"math"
	"strings"

	"PerpTradeBot/internal/models"
)

// Summary is the per-cycle view of open exposure used for capacity
// gating. It is recomputed from a fresh snapshot every time; callers
// must not hold one across a commit.
type Summary struct {
	Open       []models.Position
	ShortCount int
	LongCount  int
}

// Tracker classifies raw position snapshots by side. Pure and
// synchronous; transport failures belong to whoever fetched the
// snapshot.
type Tracker struct{}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Classify filters the snapshot down to open positions and counts each
// side. A position is open iff its contract count is non-zero. A
// position whose side cannot be determined still counts as open but
// contributes to neither side.
func (t *Tracker) Classify(raw []models.Position) Summary {
	var summary Summary
	for _, pos := range raw {
		if math.Abs(pos.Contracts) == 0 {
			continue
		}
		summary.Open = append(summary.Open, pos)

		switch t.SideOf(pos) {
		case models.PositionSideShort:
			summary.ShortCount++
		case models.PositionSideLong:
			summary.LongCount++
		}
	}
	return summary
}

// SideOf resolves a position's side, first match wins: the explicit
// side field, then the sign of the size field, then the venue's raw
// side string. Returns "" when none of the three decide. Conflicting
// signals are not reconciled; the first one present is taken.
func (t *Tracker) SideOf(pos models.Position) string {
	switch pos.Side {
	case models.PositionSideShort, models.PositionSideLong:
		return pos.Side
	}

	if pos.Size < 0 {
		return models.PositionSideShort
	}
	if pos.Size > 0 {
		return models.PositionSideLong
	}

	switch strings.ToLower(pos.RawSide) {
	case models.SideSell:
		return models.PositionSideShort
	case models.SideBuy:
		return models.PositionSideLong
	}

	return ""
}

// OpenSymbols returns the set of symbols with an open position, used to
// exclude them from a cycle's evaluation list.
func (s Summary) OpenSymbols() map[string]struct{} {
	open := make(map[string]struct{}, len(s.Open))
	for _, pos := range s.Open {
		open[pos.Symbol] = struct{}{}
	}
	return open
}
