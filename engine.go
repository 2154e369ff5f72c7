package smatch

import (
	"fmt"

	"golang.org/x/exp/maps"
)

// MatchEngine bundles the HEALPix context, the primary catalog, and the
// retention policy for a single catalog-matching session. It exclusively
// owns the catalog; each entry owns its match list and its disc-pixel
// list. It is not safe for concurrent or re-entrant use: exactly one
// Match/MatchToFile call may be in flight at a time, and the ephemeral
// pixel tree built for that call is never aliased outside it.
type MatchEngine struct {
	ctx          *HealpixContext
	catalog      Catalog
	maxMatch     int64
	matchingSelf bool
	nmatches     int64
}

// NewMatchEngine builds the primary catalog against an nside HEALPix
// pixelization. ra, dec and radiusDeg must be dense, equal-length and
// non-empty; nside must be a positive power of two.
func NewMatchEngine(nside int64, ra, dec, radiusDeg []float64) (*MatchEngine, error) {
	ctx, err := NewHealpixContext(nside)
	if err != nil {
		return nil, err
	}
	cat, err := buildCatalog(ctx, ra, dec, radiusDeg)
	if err != nil {
		return nil, err
	}
	return &MatchEngine{ctx: ctx, catalog: cat}, nil
}

// NSide is the HEALPix resolution parameter backing this engine.
func (e *MatchEngine) NSide() int64 {
	return e.ctx.Nside
}

// PixelArea is the solid angle, in steradians, of one HEALPix cell at this
// engine's resolution.
func (e *MatchEngine) PixelArea() float64 {
	return PixelArea(e.ctx.Nside)
}

// NMatches is the number of acceptance events — not heap replacements —
// from the most recently completed Match/MatchToFile call.
func (e *MatchEngine) NMatches() int64 {
	return e.nmatches
}

// Catalog exposes the primary catalog entries. Callers must not mutate
// Matches directly; it is owned by the matching driver between calls.
func (e *MatchEngine) Catalog() Catalog {
	return e.catalog
}

// String is a short diagnostic summary, the Go equivalent of the original
// binding's repr string.
func (e *MatchEngine) String() string {
	return fmt.Sprintf("MatchEngine(nside=%d, primary=%d)", e.ctx.Nside, len(e.catalog))
}

// Stats summarizes the current match count per primary index, for
// logging/metrics callers.
func (e *MatchEngine) Stats() map[int]int {
	stats := make(map[int]int, len(e.catalog))
	for i, entry := range e.catalog {
		stats[i] = entry.Matches.Len()
	}
	return stats
}

// ActiveIndices returns the primary indices currently tracked by Stats, in
// the unspecified order golang.org/x/exp/maps.Keys produces.
func (e *MatchEngine) ActiveIndices() []int {
	return maps.Keys(e.Stats())
}

// matchPrep resets every primary entry's match list ahead of a match call.
// Unbounded mode shrinks an oversize capacity back down to avoid carrying
// over buffers sized for a prior bounded call; bounded mode reserves
// exactly maxMatch slots and resets size to zero.
func (e *MatchEngine) matchPrep() {
	for i := range e.catalog {
		entry := &e.catalog[i]
		if e.maxMatch <= 0 {
			if entry.Matches.Cap() > 1 {
				entry.Matches.Clear()
			} else {
				entry.Matches.Resize(0)
			}
		} else {
			entry.Matches.ReserveExact(int(e.maxMatch))
			entry.Matches.Resize(0)
		}
	}
}

// buildSecondaryTree indexes every secondary-catalog point into a fresh
// pixel-id tree keyed on its shifted HEALPix ring pixel id. Used by the
// primary-indexed query direction (Match, and the bounded MatchToFile
// path).
func (e *MatchEngine) buildSecondaryTree(ra, dec []float64) (*pixelTree, error) {
	halfNpix := e.ctx.Npix / 2
	tree := &pixelTree{}
	for i := range ra {
		pix, err := e.ctx.Eq2Pix(ra[i], dec[i])
		if err != nil {
			return nil, wrapf(err, "indexing secondary point %d", i)
		}
		tree.insert(pix-halfNpix, i)
	}
	return tree, nil
}

// buildPrimaryTree indexes every primary entry's disc pixels into a fresh
// tree mapping shifted pixel id to primary index. Used by the unbounded
// streaming query direction (domatch1ToFile), which walks secondary points
// and looks up the single cell containing each one, rather than walking
// each primary's disc.
func (e *MatchEngine) buildPrimaryTree() *pixelTree {
	halfNpix := e.ctx.Npix / 2
	tree := &pixelTree{}
	for ci, entry := range e.catalog {
		for _, hpixid := range entry.DiscPixels {
			tree.insert(hpixid-halfNpix, ci)
		}
	}
	return tree
}

// acceptMatch applies the retention rule to a single candidate pairing,
// mutating entry.Matches and e.nmatches as needed. Replacements via
// HeapTryReplace are deliberately not counted toward nmatches.
func (e *MatchEngine) acceptMatch(entry *CatalogEntry, m Match) {
	switch {
	case e.maxMatch <= 0:
		entry.Matches.Push(m)
		e.nmatches++
	case entry.Matches.Len() < int(e.maxMatch):
		entry.Matches.Push(m)
		e.nmatches++
		if e.maxMatch > 1 && entry.Matches.Len() == int(e.maxMatch) {
			entry.Matches.BuildHeap()
		}
	default:
		entry.Matches.HeapTryReplace(m)
	}
}

// domatch1 gathers candidates for one primary entry from the cells its
// disc intersects: the primary-indexed query direction shared by Match and
// the bounded MatchToFile path.
func (e *MatchEngine) domatch1(ci int, entry *CatalogEntry, tree *pixelTree, ra, dec []float64) error {
	halfNpix := e.ctx.Npix / 2
	for _, hpixid := range entry.DiscPixels {
		node := tree.find(hpixid - halfNpix)
		if node == nil {
			continue
		}
		for _, si := range node.indices {
			if e.matchingSelf && si == ci {
				continue
			}
			x, y, z, err := eq2xyz(ra[si], dec[si])
			if err != nil {
				return wrapf(err, "evaluating secondary point %d", si)
			}
			c := cosSep(entry.Point.X, entry.Point.Y, entry.Point.Z, x, y, z)
			if c > entry.Point.CosRadius {
				e.acceptMatch(entry, Match{
					PrimaryIndex:   int64(ci),
					SecondaryIndex: int64(si),
					Cosdist:        c,
				})
			}
		}
	}
	return nil
}

// domatch runs the primary-indexed query direction over the whole catalog.
func (e *MatchEngine) domatch(tree *pixelTree, ra, dec []float64) error {
	e.nmatches = 0
	for i := range e.catalog {
		if err := e.domatch1(i, &e.catalog[i], tree, ra, dec); err != nil {
			return err
		}
	}
	return nil
}

// Match runs the full matching driver: reset every primary's match list,
// index the secondary catalog into an ephemeral tree, then walk every
// primary entry gathering and retaining candidates under the given
// retention policy. maxMatch <= 0 means unbounded; matchingSelf skips a
// candidate whose secondary index equals the primary's own index.
func (e *MatchEngine) Match(maxMatch int64, matchingSelf bool, ra, dec []float64) error {
	if len(ra) != len(dec) {
		return NewInvalidInputError("secondary ra and dec arrays must have equal length")
	}

	e.maxMatch = maxMatch
	e.matchingSelf = matchingSelf
	e.matchPrep()

	tree, err := e.buildSecondaryTree(ra, dec)
	if err != nil {
		return err
	}
	defer tree.destroy()

	return e.domatch(tree, ra, dec)
}
