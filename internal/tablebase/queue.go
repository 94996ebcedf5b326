package tablebase

// IndexWithTurn pairs an index into the flat per-material outcome table with
// the side to move it refers to (outcomes are tracked separately per turn).
type IndexWithTurn struct {
	Idx  uint64
	Turn byte // board.White or board.Black
}

// packedBools packs up to 8 booleans (the low 3 bits of an index) into one
// byte, mirroring the reference tagger's memory-efficient position queue:
// a plain queue of every frontier index would dwarf the outcome table itself
// for large material configurations.
type packedBools uint8

func (p *packedBools) setTrue(idx uint8) {
	*p |= packedBools(1) << idx
}

// next pops and returns the lowest set bit, or ok=false if empty.
func (p *packedBools) next() (uint8, bool) {
	if *p == 0 {
		return 0, false
	}
	for i := uint8(0); i < 8; i++ {
		if *p&(1<<i) != 0 {
			*p &^= packedBools(1) << i
			return i, true
		}
	}
	return 0, false
}

type packedBoolsByColor [2]packedBools

// MateInQueue is a FIFO of IndexWithTurn backed by one packedBoolsByColor per
// 8-index window, scanned in order; this keeps queue memory at roughly
// allPosLen/8 bytes per color regardless of how many positions are enqueued.
type MateInQueue struct {
	inner      []packedBoolsByColor
	innerIndex int
}

// NewMateInQueue allocates a queue sized for indices in [0, allPosLen).
func NewMateInQueue(allPosLen int) *MateInQueue {
	return &MateInQueue{inner: make([]packedBoolsByColor, allPosLen/8+1)}
}

// ResetCounter rewinds the scan cursor to the start; must only be called once
// the queue has been fully drained (innerIndex reached the end).
func (q *MateInQueue) ResetCounter() {
	q.innerIndex = 0
}

// IsEmpty reports whether every packed window is zero.
func (q *MateInQueue) IsEmpty() bool {
	for _, w := range q.inner {
		if w != (packedBoolsByColor{}) {
			return false
		}
	}
	return true
}

// PopFront returns the lowest pending index, scanning forward from the last
// position it stopped at (never re-scanning emptied windows).
func (q *MateInQueue) PopFront() (IndexWithTurn, bool) {
	for q.innerIndex < len(q.inner) && q.inner[q.innerIndex] == (packedBoolsByColor{}) {
		q.innerIndex++
	}
	if q.innerIndex >= len(q.inner) {
		return IndexWithTurn{}, false
	}
	for turn := 0; turn < 2; turn++ {
		if bit, ok := q.inner[q.innerIndex][turn].next(); ok {
			return IndexWithTurn{Idx: uint64(q.innerIndex)*8 + uint64(bit), Turn: byte(turn)}, true
		}
	}
	return IndexWithTurn{}, false
}

// PushBack marks idx pending for turn.
func (q *MateInQueue) PushBack(iwt IndexWithTurn) {
	innerIdx := iwt.Idx / 8
	bit := uint8(iwt.Idx % 8)
	q.inner[innerIdx][iwt.Turn].setTrue(bit)
}

// OneQueue holds the current "mate in N" frontier and the "mate in N+1"
// frontier being built while it drains, so the two-phase backward pass in
// Tagger never mixes positions from different generations in flight.
type OneQueue struct {
	MateInN       *MateInQueue
	MateInNPlus1  *MateInQueue
}

// NewOneQueue seeds MateInN with the given starting positions.
func NewOneQueue(desired []IndexWithTurn, allPosLen int) *OneQueue {
	q := &OneQueue{
		MateInN:      NewMateInQueue(allPosLen),
		MateInNPlus1: NewMateInQueue(allPosLen),
	}
	for _, iwt := range desired {
		q.MateInN.PushBack(iwt)
	}
	return q
}

func (q *OneQueue) PushBack(iwt IndexWithTurn) { q.MateInNPlus1.PushBack(iwt) }

func (q *OneQueue) PopFront() (IndexWithTurn, bool) { return q.MateInN.PopFront() }

// Swap must be called once MateInN has been fully drained; it rewinds the
// scan cursor and rotates the N+1 frontier into place as the new N.
func (q *OneQueue) Swap() {
	q.MateInN.ResetCounter()
	q.MateInN, q.MateInNPlus1 = q.MateInNPlus1, q.MateInN
}
