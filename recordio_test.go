package smatch

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestCountLinesCountsTerminatedLinesOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.txt")
	// Three newline-terminated lines, then a fourth with no trailing
	// newline: CountLines must report 3, not 4.
	content := "0 0 0.9999\n1 2 0.998\n2 1 0.97\n3 3 0.5"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, err := CountLines(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 terminated lines, got %d", n)
	}
}

func TestCountLinesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err := CountLines(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 lines for empty file, got %d", n)
	}
}

func TestCountLinesMissingFile(t *testing.T) {
	if _, err := CountLines(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestWriteMatchesAndLoadMatchesRoundTrip(t *testing.T) {
	e, err := NewMatchEngine(2048, []float64{10.0, 50.0}, []float64{0.0, 10.0}, []float64{2.0, 2.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	secRa := []float64{10.5, 50.3, 100.0}
	secDec := []float64{0.0, 10.0, 0.0}
	if err := e.Match(0, false, secRa, secDec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := e.WriteMatches(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := LoadMatches(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var want int
	for _, entry := range e.Catalog() {
		want += entry.Matches.Len()
	}
	if len(loaded) != want {
		t.Fatalf("expected %d records round-tripped, got %d", want, len(loaded))
	}
}

func TestCopyMatchesReturnsAllAndClearsLists(t *testing.T) {
	e, err := NewMatchEngine(2048, []float64{10.0}, []float64{0.0}, []float64{3.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	secRa := []float64{10.2, 10.4, 10.6}
	secDec := []float64{0.0, 0.0, 0.0}
	if err := e.Match(0, false, secRa, secDec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	copied := e.CopyMatches()
	if len(copied) != 3 {
		t.Fatalf("expected 3 copied matches, got %d", len(copied))
	}
	if e.Catalog()[0].Matches.Len() != 0 {
		t.Errorf("expected CopyMatches to clear the primary's match list, got len %d", e.Catalog()[0].Matches.Len())
	}
}

func TestLoadMatchesRejectsShortRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(path, []byte("0 1\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := LoadMatches(path); err == nil {
		t.Errorf("expected error for short read (missing cosdist field)")
	}
}

func TestLoadMatchesRejectsUnparsableField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(path, []byte("0 1 notanumber\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := LoadMatches(path); err == nil {
		t.Errorf("expected error for unparsable cosdist field")
	}
}

func TestMatchToFileUnboundedMatchesMatchDriver(t *testing.T) {
	ra := []float64{10.0, 50.0}
	dec := []float64{0.0, 10.0}
	radius := []float64{2.0, 2.0}
	secRa := []float64{10.5, 50.3, 100.0}
	secDec := []float64{0.0, 10.0, 0.0}

	driver, err := NewMatchEngine(2048, ra, dec, radius)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := driver.Match(0, false, secRa, secDec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := len(driver.CopyMatches())

	streamed, err := NewMatchEngine(2048, ra, dec, radius)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "stream.txt")
	if err := streamed.MatchToFile(0, false, secRa, secDec, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := LoadMatches(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != want {
		t.Errorf("expected unbounded streaming path to find %d matches, got %d", want, len(loaded))
	}
}

func TestMatchToFileBoundedWritesExactlyRetainedCount(t *testing.T) {
	ra := []float64{10.0}
	dec := []float64{0.0}
	radius := []float64{3.0}
	secRa := []float64{10.2, 10.4, 10.6}
	secDec := []float64{0.0, 0.0, 0.0}

	e, err := NewMatchEngine(2048, ra, dec, radius)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "bounded.txt")
	if err := e.MatchToFile(2, false, secRa, secDec, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := LoadMatches(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 2 {
		t.Errorf("expected exactly 2 records written for max_match=2, got %d", len(loaded))
	}
}

func TestMatchToFileRejectsMismatchedLengths(t *testing.T) {
	e, err := NewMatchEngine(1024, []float64{10.0}, []float64{0.0}, []float64{1.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	err = e.MatchToFile(0, false, []float64{1, 2}, []float64{1}, path)
	if err == nil {
		t.Errorf("expected error for mismatched secondary array lengths")
	}
}
