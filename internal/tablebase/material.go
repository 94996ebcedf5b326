package tablebase

import (
	"fmt"
	"strings"

	"github.com/kraktus/helpmate-tb/internal/board"
)

// roleChars lists the upper-case FEN letters in the same order as
// board.PieceType (Pawn, Knight, Bishop, Rook, Queen, King).
var roleChars = [6]byte{'P', 'N', 'B', 'R', 'Q', 'K'}

// Side holds the piece counts of one color, indexed by board.PieceType.
type Side [6]uint8

// sideFromString parses a FEN-letter run like "KQR" into a Side.
func sideFromString(s string) (Side, error) {
	var side Side
	for i := 0; i < len(s); i++ {
		pt, ok := pieceTypeFromChar(s[i])
		if !ok {
			return Side{}, fmt.Errorf("tablebase: invalid piece letter %q in material string", s[i])
		}
		side[pt]++
	}
	return side, nil
}

func pieceTypeFromChar(c byte) (board.PieceType, bool) {
	for pt, ch := range roleChars {
		if ch == c {
			return board.PieceType(pt), true
		}
	}
	return 0, false
}

// Count returns the total number of pieces (including the king) on this side.
func (s Side) Count() int {
	n := 0
	for _, c := range s {
		n += int(c)
	}
	return n
}

// HasPawns reports whether this side has at least one pawn.
func (s Side) HasPawns() bool {
	return s[board.Pawn] > 0
}

// uniqueRoles counts the roles present exactly once (used by the Syzygy
// indexer's group-length computation).
func (s Side) uniqueRoles() int {
	n := 0
	for _, c := range s {
		if c == 1 {
			n++
		}
	}
	return n
}

// Compare orders two sides the way the real Syzygy naming convention does:
// by total count, then by king/queen/rook/bishop/knight/pawn counts in turn.
// The side that compares greater is considered "stronger".
func (s Side) Compare(o Side) int {
	if d := s.Count() - o.Count(); d != 0 {
		return d
	}
	order := [6]board.PieceType{board.King, board.Queen, board.Rook, board.Bishop, board.Knight, board.Pawn}
	for _, pt := range order {
		if d := int(s[pt]) - int(o[pt]); d != 0 {
			return d
		}
	}
	return 0
}

// canMate classifies whether a side can, with best cooperation, ever deliver
// mate using only its own material.
type canMate int

const (
	mateYes canMate = iota
	mateNo
	mateNeedHelp
)

func (c canMate) possibleWith(other canMate) bool {
	switch c {
	case mateYes:
		return true
	case mateNo:
		return other == mateYes
	default: // mateNeedHelp
		return other != mateNo
	}
}

func (s Side) canMateClass() canMate {
	switch {
	case s.Count() > 2 || s[board.Rook] > 0 || s[board.Queen] > 0 || s.HasPawns():
		return mateYes
	case s.Count() == 2:
		return mateNeedHelp
	default:
		return mateNo
	}
}

// descendants returns every Side reachable by a single capture of a
// non-king piece, or a single pawn promotion.
func (s Side) descendants() []Side {
	out := make([]Side, 0, 8)
	if s.HasPawns() {
		for _, pt := range [4]board.PieceType{board.Bishop, board.Knight, board.Rook, board.Queen} {
			d := s
			d[board.Pawn]--
			d[pt]++
			out = append(out, d)
		}
	}
	for _, pt := range [5]board.PieceType{board.Pawn, board.Bishop, board.Knight, board.Rook, board.Queen} {
		if s[pt] > 0 {
			d := s
			d[pt]--
			out = append(out, d)
		}
	}
	return out
}

func (s Side) String() string {
	var sb strings.Builder
	// Printed in role order high-to-low: K first, then Q,R,B,N,P, using the
	// upper-case FEN letters.
	for pt := board.King; ; pt-- {
		sb.WriteString(strings.Repeat(string(roleChars[pt]), int(s[pt])))
		if pt == board.Pawn {
			break
		}
	}
	return sb.String()
}

// Material is a canonicalized material key: the two Sides are always
// ordered so White holds the "stronger" (or equal) side. Two material
// strings that describe the same configuration up to color swap compare
// equal once normalized, exactly like a real tablebase's naming scheme.
type Material struct {
	White Side
	Black Side
}

// NewMaterial builds a normalized Material from two sides, swapping them if
// needed so White is never weaker than Black.
func NewMaterial(white, black Side) Material {
	if white.Compare(black) < 0 {
		white, black = black, white
	}
	return Material{White: white, Black: black}
}

// ParseMaterial parses a key of the form "KQRvKBN".
func ParseMaterial(s string) (Material, error) {
	parts := strings.SplitN(s, "v", 2)
	if len(parts) != 2 {
		return Material{}, fmt.Errorf("tablebase: material key %q missing 'v' separator", s)
	}
	w, err := sideFromString(parts[0])
	if err != nil {
		return Material{}, err
	}
	b, err := sideFromString(parts[1])
	if err != nil {
		return Material{}, err
	}
	return NewMaterial(w, b), nil
}

// MaterialFromPosition extracts the Material key of a position (not yet
// normalized with respect to which side is "stronger" in the tablebase
// naming sense -- White/Black here track the position's actual colors).
func MaterialFromPosition(pos *board.Position) Material {
	var w, b Side
	for pt := board.Pawn; pt <= board.King; pt++ {
		w[pt] = uint8(pos.Pieces[board.White][pt].PopCount())
		b[pt] = uint8(pos.Pieces[board.Black][pt].PopCount())
	}
	return Material{White: w, Black: b}
}

// IsBlackStronger reports whether, for the position's actual piece colors,
// Black's side compares as the stronger one under Side.Compare.
func IsBlackStronger(pos *board.Position) bool {
	m := MaterialFromPosition(pos)
	return m.Black.Compare(m.White) > 0
}

// String renders the canonical "KQRvKBN" form.
func (m Material) String() string {
	return m.White.String() + "v" + m.Black.String()
}

// Count returns the total piece count across both sides.
func (m Material) Count() int {
	return m.White.Count() + m.Black.Count()
}

// IsSymmetric reports whether both sides carry identical material.
func (m Material) IsSymmetric() bool {
	return m.White == m.Black
}

// HasPawns reports whether either side has a pawn.
func (m Material) HasPawns() bool {
	return m.White.HasPawns() || m.Black.HasPawns()
}

// UniquePieces counts roles that appear exactly once on either side.
func (m Material) UniquePieces() int {
	return m.White.uniqueRoles() + m.Black.uniqueRoles()
}

// MinLikeMan returns the smallest multiplicity, among roles appearing 2 or
// more times across both sides, or 0 if no role repeats.
func (m Material) MinLikeMan() int {
	min := 0
	consider := func(s Side) {
		for _, c := range s {
			if c >= 2 && (min == 0 || int(c) < min) {
				min = int(c)
			}
		}
	}
	consider(m.White)
	consider(m.Black)
	return min
}

// IsMatePossible reports whether, for at least one side to play as the
// mating side, the position's material allows mate at all (ignoring
// same-colored-bishop style exceptions, which the generator handles by
// simply producing no mate rather than by refining this coarse check).
func (m Material) IsMatePossible() bool {
	return m.White.canMateClass().possibleWith(m.Black.canMateClass())
}

// CanMate reports whether the given color's material can, with help from
// its opponent's pieces (but never the opponent's king), ever deliver mate.
func (m Material) CanMate(winner board.Color) bool {
	mine, other := m.White, m.Black
	if winner == board.Black {
		mine, other = m.Black, m.White
	}
	switch {
	case mine.Count() > 2 || mine[board.Rook] > 0 || mine[board.Queen] > 0 || mine.HasPawns():
		return true
	case mine.Count() == 2:
		return other.Count() > 1 &&
			((mine[board.Bishop] > 0 && other[board.Queen] == 0 && other[board.Rook] == 0) ||
				(mine[board.Knight] > 0 && other[board.Queen] == 0))
	default:
		return false
	}
}

// Descendants yields every Material reachable from m by a single capture of
// a non-king piece, or a single pawn promotion, on either side.
func (m Material) Descendants() []Material {
	out := make([]Material, 0, 12)
	for _, d := range m.White.descendants() {
		out = append(out, NewMaterial(d, m.Black))
	}
	for _, d := range m.Black.descendants() {
		out = append(out, NewMaterial(m.White, d))
	}
	return out
}

// DescendantsNotDraw returns the direct descendants for which mate remains
// possible for at least one side (trivially-drawn endgames like KvK, KBvK,
// KNvK are excluded).
func (m Material) DescendantsNotDraw() []Material {
	all := m.Descendants()
	out := make([]Material, 0, len(all))
	seen := make(map[Material]bool, len(all))
	for _, d := range all {
		if !d.IsMatePossible() || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

// DescendantsRecursive returns every distinct Material reachable through any
// chain of captures/promotions, in depth-first pre-order (each material
// precedes the ones first reached through it), each appearing once.
// When includeDrawn is false, trivially-drawn branches are pruned.
func (m Material) DescendantsRecursive(includeDrawn bool) []Material {
	seen := make(map[Material]bool)
	var out []Material
	var walk func(Material)
	walk = func(cur Material) {
		for _, d := range cur.Descendants() {
			if !includeDrawn && !d.IsMatePossible() {
				continue
			}
			if seen[d] {
				continue
			}
			seen[d] = true
			out = append(out, d)
			walk(d)
		}
	}
	walk(m)
	return out
}

// KBvK and KNvK are the two (non-trivial-piece-count) material keys that
// are always drawn regardless of position, alongside any two-king-only key.
var (
	KBvK = Material{White: Side{board.King: 1, board.Bishop: 1}, Black: Side{board.King: 1}}
	KNvK = Material{White: Side{board.King: 1, board.Knight: 1}, Black: Side{board.King: 1}}
)

// IsTriviallyDrawn reports whether every position of this material
// configuration is a draw by insufficient mating material.
func (m Material) IsTriviallyDrawn() bool {
	return m.Count() == 2 || m == KBvK || m == KNvK
}
