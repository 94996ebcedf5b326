package tablebase

import "fmt"

// Outcome is the distance-to-mate verdict stored for one (position, side to
// move) slot, packed into 7 bits so it fits a Report byte alongside a single
// processed/unprocessed flag bit. The packing, in ascending raw-byte order,
// is:
//
//	0          Draw
//	1..=63     Lose(raw-1)   i.e. Lose(0)..Lose(62)
//	64..=125   Win(raw-64)   i.e. Win(0)..Win(61)
//	126        Unknown       (generation in progress, not yet reachable)
//	127        Undefined     (position cannot occur for this material/turn)
//
// Win/Lose distances count plies to mate for the side named by the table's
// winner, not moves.
type Outcome struct {
	raw byte
}

const (
	rawDraw      byte = 0
	rawLoseBase  byte = 1
	rawWinBase   byte = 64
	rawUnknown   byte = 126
	rawUndefined byte = 127
	maxDistance       = 62 // largest n representable in either Win(n) or Lose(n)
)

// Draw, Unknown and Undefined are the three outcomes without a distance.
var (
	Draw      = Outcome{raw: rawDraw}
	Unknown   = Outcome{raw: rawUnknown}
	Undefined = Outcome{raw: rawUndefined}
)

// Win returns the outcome "mate in n plies for the winning side", clamping
// to the largest representable distance rather than overflowing the packed
// encoding (an InternalInvariant condition the generator is expected never
// to trigger in practice).
func Win(n int) Outcome {
	if n < 0 {
		n = 0
	}
	if n > maxDistance-1 {
		n = maxDistance - 1
	}
	return Outcome{raw: rawWinBase + byte(n)}
}

// Lose returns the outcome "mated in n plies", clamped to the largest
// distance representable in Lose's wider raw range (1..=63, vs. Win's
// 64..=125), since the two share a clamp constant but not a byte range.
func Lose(n int) Outcome {
	if n < 0 {
		n = 0
	}
	if n > maxDistance {
		n = maxDistance
	}
	return Outcome{raw: rawLoseBase + byte(n)}
}

// OutcomeFromRaw reconstructs an Outcome from its packed byte, for decoding
// off disk. It returns an InternalInvariant error if the byte is not a valid
// encoding.
func OutcomeFromRaw(raw byte) (Outcome, error) {
	if raw > rawUndefined {
		return Outcome{}, &TablebaseError{Kind: ErrInternalInvariant, Msg: fmt.Sprintf("outcome raw byte %d out of range", raw)}
	}
	return Outcome{raw: raw}, nil
}

// Raw returns the packed byte representation.
func (o Outcome) Raw() byte { return o.raw }

// IsDraw, IsWin, IsLose, IsUnknown, IsUndefined classify the outcome kind.
func (o Outcome) IsDraw() bool      { return o.raw == rawDraw }
func (o Outcome) IsWin() bool       { return o.raw >= rawWinBase && o.raw < rawUnknown }
func (o Outcome) IsLose() bool      { return o.raw >= rawLoseBase && o.raw < rawWinBase }
func (o Outcome) IsUnknown() bool   { return o.raw == rawUnknown }
func (o Outcome) IsUndefined() bool { return o.raw == rawUndefined }

// IsTerminal reports whether the outcome already names a definite result
// (Win(0), Lose(0), or Draw) that a prober can stop on.
func (o Outcome) IsTerminal() bool {
	return o == Draw || o == Win(0) || o == Lose(0)
}

// Distance returns the ply count n for Win(n) or Lose(n); the second return
// value is false for Draw/Unknown/Undefined.
func (o Outcome) Distance() (int, bool) {
	switch {
	case o.IsWin():
		return int(o.raw - rawWinBase), true
	case o.IsLose():
		return int(o.raw - rawLoseBase), true
	default:
		return 0, false
	}
}

// Plus1 returns the outcome one ply further from mate: Win(n) becomes
// Win(n+1), Lose(n) becomes Lose(n+1); Draw (and Unknown/Undefined) are
// fixed points. This is the "+1" used when a position is labeled from a
// child found via retro-move generation: adding a ply never changes which
// side is winning, only how far away the mate is.
func (o Outcome) Plus1() Outcome {
	switch {
	case o.IsWin():
		n, _ := o.Distance()
		return Win(n + 1)
	case o.IsLose():
		n, _ := o.Distance()
		return Lose(n + 1)
	default:
		return o
	}
}

// rank orders outcomes the way a mating side wants to compare them: a
// shorter win beats a longer win, any win beats a draw, a draw beats any
// loss, and a longer loss beats a shorter one. Unknown/Undefined are given
// an extreme rank so they never win a Better() comparison against a real
// result by accident.
func (o Outcome) rank() int {
	switch {
	case o.IsWin():
		n, _ := o.Distance()
		return 1000 - n // shorter mates rank higher
	case o.IsDraw():
		return 0
	case o.IsLose():
		n, _ := o.Distance()
		return -1000 + n // longer losses rank higher (less bad)
	case o.IsUnknown():
		return -2000
	default: // Undefined
		return -3000
	}
}

// Better reports whether o is strictly preferable to other from the point
// of view of the side choosing a move (the classic Win > Draw > Loss order,
// with shorter wins and longer losses preferred within each band).
func (o Outcome) Better(other Outcome) bool {
	return o.rank() > other.rank()
}

func (o Outcome) String() string {
	switch {
	case o.IsDraw():
		return "Draw"
	case o.IsWin():
		n, _ := o.Distance()
		return fmt.Sprintf("Win(%d)", n)
	case o.IsLose():
		n, _ := o.Distance()
		return fmt.Sprintf("Lose(%d)", n)
	case o.IsUnknown():
		return "Unknown"
	default:
		return "Undefined"
	}
}
