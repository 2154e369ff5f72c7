package smatch

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CopyMatches appends every primary entry's match records, in
// primary-index-ascending order, into a single contiguous slice, then
// clears each primary's list — shrinking its capacity back to one if it
// had grown past that, or just resetting its size to zero otherwise.
// Within one primary entry the record order is heap order or insertion
// order, whichever the retention policy produced; no sort is applied, to
// stay consistent with the streaming write path which can't sort what it
// never materializes.
func (e *MatchEngine) CopyMatches() []Match {
	total := 0
	for i := range e.catalog {
		total += e.catalog[i].Matches.Len()
	}

	out := make([]Match, 0, total)
	for i := range e.catalog {
		entry := &e.catalog[i]
		out = append(out, entry.Matches.Matches()...)
		if entry.Matches.Cap() > 1 {
			entry.Matches.Clear()
			entry.Matches.ReserveExact(1)
		} else {
			entry.Matches.Resize(0)
		}
	}
	return out
}

// WriteMatches serializes every primary entry's current match list, in
// primary-index-ascending order, to w using the exact record grammar
// "<primary_index> <secondary_index> <cosdist>\n" with %.16g precision. It
// does not clear the match lists; call CopyMatches afterwards if that's
// wanted.
func (e *MatchEngine) WriteMatches(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i := range e.catalog {
		for _, m := range e.catalog[i].Matches.Matches() {
			if err := writeRecord(bw, m); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func writeRecord(w io.Writer, m Match) error {
	_, err := fmt.Fprintf(w, "%d %d %.16g\n", m.PrimaryIndex, m.SecondaryIndex, m.Cosdist)
	return err
}

// MatchToFile runs the matching driver and writes the resulting matches to
// the file at path, in the exact text grammar of WriteMatches. For
// unbounded retention (maxMatch <= 0), records are written as soon as they
// are accepted without ever being materialized in a primary's match list:
// this flips the query direction, walking secondary points and looking up
// the single cell each one falls in, rather than walking each primary's
// disc (see DESIGN.md, "two query directions"). For bounded retention, the
// full query phase runs first (populating match lists exactly as Match
// would) and the result is then serialized with WriteMatches.
func (e *MatchEngine) MatchToFile(maxMatch int64, matchingSelf bool, ra, dec []float64, path string) error {
	if len(ra) != len(dec) {
		return NewInvalidInputError("secondary ra and dec arrays must have equal length")
	}

	f, err := os.Create(path)
	if err != nil {
		return NewIoError(path, err)
	}
	defer f.Close()

	e.maxMatch = maxMatch
	e.matchingSelf = matchingSelf

	if maxMatch <= 0 {
		return e.matchToFileUnbounded(matchingSelf, ra, dec, f, path)
	}

	e.matchPrep()
	tree, err := e.buildSecondaryTree(ra, dec)
	if err != nil {
		return err
	}
	defer tree.destroy()

	if err := e.domatch(tree, ra, dec); err != nil {
		return err
	}
	return e.WriteMatches(f)
}

// matchToFileUnbounded is the secondary-indexed streaming query direction:
// it indexes the primaries' discs once, then for each secondary point
// looks up the cell it falls in and tests every primary whose disc
// intersects that cell.
func (e *MatchEngine) matchToFileUnbounded(matchingSelf bool, ra, dec []float64, f *os.File, path string) error {
	tree := e.buildPrimaryTree()
	defer tree.destroy()

	bw := bufio.NewWriter(f)
	halfNpix := e.ctx.Npix / 2

	e.nmatches = 0
	for si := range ra {
		if err := e.domatch1ToFile(bw, tree, halfNpix, si, ra, dec, matchingSelf, path); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// domatch1ToFile tests one secondary point against every primary whose
// disc intersects the cell that point falls in, writing accepted matches
// immediately.
func (e *MatchEngine) domatch1ToFile(w io.Writer, tree *pixelTree, halfNpix int64, si int, ra, dec []float64, matchingSelf bool, path string) error {
	pix, err := e.ctx.Eq2Pix(ra[si], dec[si])
	if err != nil {
		return wrapf(err, "indexing secondary point %d", si)
	}
	node := tree.find(pix - halfNpix)
	if node == nil {
		return nil
	}

	x, y, z, err := eq2xyz(ra[si], dec[si])
	if err != nil {
		return wrapf(err, "evaluating secondary point %d", si)
	}

	for _, ci := range node.indices {
		if matchingSelf && ci == si {
			continue
		}
		entry := &e.catalog[ci]
		c := cosSep(entry.Point.X, entry.Point.Y, entry.Point.Z, x, y, z)
		if c > entry.Point.CosRadius {
			e.nmatches++
			if err := writeRecord(w, Match{
				PrimaryIndex:   int64(ci),
				SecondaryIndex: int64(si),
				Cosdist:        c,
			}); err != nil {
				return NewIoError(path, err)
			}
		}
	}
	return nil
}

// LoadMatches reads match records back from path using the grammar
// "<primary_index> <secondary_index> <cosdist>". A line with fewer than
// three whitespace-separated fields, or a field that fails to parse, is a
// short read and surfaces as IoError, mirroring the C reader's %lf/%ld
// scanf-based contract.
func LoadMatches(path string) ([]Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewIoError(path, err)
	}
	defer f.Close()

	var out []Match
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, NewIoError(path, fmt.Errorf("short read at line %d: expected 3 fields, got %d", lineNo, len(fields)))
		}

		primaryIndex, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, NewIoError(path, wrapf(err, "parsing primary index at line %d", lineNo))
		}
		secondaryIndex, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, NewIoError(path, wrapf(err, "parsing secondary index at line %d", lineNo))
		}
		cosdist, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, NewIoError(path, wrapf(err, "parsing cosdist at line %d", lineNo))
		}

		out = append(out, Match{
			PrimaryIndex:   primaryIndex,
			SecondaryIndex: secondaryIndex,
			Cosdist:        cosdist,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, NewIoError(path, err)
	}
	return out, nil
}

// CountLines opens the file at path and returns the number of '\n' bytes
// it contains. A trailing line with no terminating newline is not counted.
func CountLines(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, NewIoError(path, err)
	}
	defer f.Close()

	var count int64
	buf := make([]byte, 64*1024)
	for {
		n, err := f.Read(buf)
		count += int64(bytes.Count(buf[:n], []byte{'\n'}))
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, NewIoError(path, err)
		}
	}
	return count, nil
}
