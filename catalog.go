package smatch

// CatalogEntry bundles one primary-catalog point with the set of HEALPix
// pixel ids its matching disc intersects, and its current match list.
// DiscPixels is filled once at construction and never mutated again;
// Matches is mutated only by the matching driver.
type CatalogEntry struct {
	Point      Point
	DiscPixels []int64
	Matches    MatchList
}

// Catalog is the ordered, 0-indexed primary-catalog entries an engine
// matches against.
type Catalog []CatalogEntry

// buildCatalog constructs one CatalogEntry per (ra, dec, radius) triple.
// ra, dec and radiusDeg must all have the same length, which must be
// greater than zero.
func buildCatalog(ctx *HealpixContext, ra, dec, radiusDeg []float64) (Catalog, error) {
	n := len(ra)
	if n == 0 {
		return nil, NewInvalidInputError("primary catalog must have at least one point")
	}
	if len(dec) != n || len(radiusDeg) != n {
		return nil, NewInvalidInputError("ra, dec and radius arrays must have equal length")
	}

	cat := make(Catalog, n)
	for i := 0; i < n; i++ {
		pt, err := NewPoint(ra[i], dec[i], radiusDeg[i])
		if err != nil {
			return nil, wrapf(err, "building catalog entry %d", i)
		}

		discPixels := ctx.DiscIntersect(pt.X, pt.Y, pt.Z, pt.Radius, nil)

		cat[i] = CatalogEntry{
			Point:      pt,
			DiscPixels: discPixels,
			Matches:    MatchList{Data: make([]Match, 0, 1)},
		}
	}
	return cat, nil
}
