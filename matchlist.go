package smatch

// Match is one accepted pairing between a primary catalog point and a
// secondary catalog point. Cosdist is the cosine of their angular
// separation: larger means closer.
type Match struct {
	PrimaryIndex   int64
	SecondaryIndex int64
	Cosdist        float64
}

// MatchList is a growable buffer of Match records whose capacity is kept
// deliberately distinct from its logical size, the same way the teacher's
// Pagemaster/Store types separate "bytes allocated" from "bytes populated"
// rather than relying on the ambient container's default shrink policy.
// Once filled to a bounded capacity of 2 or more, it is reorganized into a
// max-heap over -Cosdist (equivalently a min-heap over Cosdist), so Data[0]
// is always the worst retained match.
type MatchList struct {
	Data []Match
	size int
}

// Len is the number of matches currently populated.
func (m *MatchList) Len() int {
	return m.size
}

// Cap is the list's current allocated capacity, independent of Len.
func (m *MatchList) Cap() int {
	return cap(m.Data)
}

// Matches returns the populated prefix of the backing buffer, in heap
// order under bounded retention or insertion order otherwise. No sort is
// applied, by design, to stay consistent with the streaming record-I/O
// path which can't sort what it never materializes.
func (m *MatchList) Matches() []Match {
	return m.Data[:m.size]
}

// Push appends match, growing the backing buffer if needed. Amortised
// O(1).
func (m *MatchList) Push(match Match) {
	if m.size < len(m.Data) {
		m.Data[m.size] = match
	} else {
		m.Data = append(m.Data, match)
	}
	m.size++
}

// Resize sets the logical size without touching capacity.
func (m *MatchList) Resize(size int) {
	m.size = size
}

// Clear empties the list and releases its backing buffer. Used when
// leaving bounded retention mode, so a large capacity from a prior bounded
// call isn't carried silently into an unbounded one.
func (m *MatchList) Clear() {
	m.Data = nil
	m.size = 0
}

// ReserveExact ensures capacity is at least k without altering the logical
// size.
func (m *MatchList) ReserveExact(k int) {
	if cap(m.Data) >= k {
		return
	}
	grown := make([]Match, m.size, k)
	copy(grown, m.Data[:m.size])
	m.Data = grown
}

// BuildHeap reorganizes a list that has just reached its bounded capacity
// into a max-heap keyed on -Cosdist, i.e. the worst (smallest Cosdist)
// match sits at the root. Call exactly once, right after the list reaches
// capacity; K=1 is a degenerate one-element heap needing no restructuring.
func (m *MatchList) BuildHeap() {
	n := m.size
	if n <= 1 {
		return
	}
	for i := n/2 - 1; i >= 0; i-- {
		m.siftDown(i, n)
	}
}

// siftDown restores the min-Cosdist heap property rooted at i: the child
// chosen to swap with is the one with the smaller Cosdist, and the swap
// only happens if it is strictly smaller than the parent.
func (m *MatchList) siftDown(i, n int) {
	data := m.Data
	for {
		smallest := i
		l := 2*i + 1
		r := 2*i + 2
		if l < n && data[l].Cosdist < data[smallest].Cosdist {
			smallest = l
		}
		if r < n && data[r].Cosdist < data[smallest].Cosdist {
			smallest = r
		}
		if smallest == i {
			return
		}
		data[i], data[smallest] = data[smallest], data[i]
		i = smallest
	}
}

// HeapTryReplace replaces the root (the worst retained match) with match
// if match is strictly closer than it, then sifts down to restore the heap
// property. No-op otherwise. Precondition: the list is full and already
// heapified.
func (m *MatchList) HeapTryReplace(match Match) {
	if m.size == 0 || match.Cosdist <= m.Data[0].Cosdist {
		return
	}
	m.Data[0] = match
	if m.size > 1 {
		m.siftDown(0, m.size)
	}
}
