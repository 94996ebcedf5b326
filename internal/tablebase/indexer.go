package tablebase

import "github.com/kraktus/helpmate-tb/internal/board"

// A1D1D4 is the 10-square triangle (a1,b1,c1,d1,b2,c2,d2,c3,d3,d4) the white
// king is always canonicalized into. The constant is the bit-for-bit mask
// used by the reference Syzygy format.
const A1D1D4 = board.Bitboard(135_007_759)

// a1h8Diag is the a1-h8 diagonal mask, built once at init since Go has no
// const bit-twiddling loop.
var a1h8Diag board.Bitboard

func init() {
	for i := 0; i < 8; i++ {
		a1h8Diag = a1h8Diag.Set(board.NewSquare(i, i))
	}
}

// pieceOrder lists (color, piece type) pairs in the fixed order the
// canonicalization tie-break walks: both kings first, then all white
// pieces, then all black pieces, pawns before minor before major.
var pieceOrder = []struct {
	Color     board.Color
	PieceType board.PieceType
}{
	{board.White, board.King},
	{board.Black, board.King},
	{board.White, board.Pawn},
	{board.White, board.Knight},
	{board.White, board.Bishop},
	{board.White, board.Rook},
	{board.White, board.Queen},
	{board.Black, board.Pawn},
	{board.Black, board.Knight},
	{board.Black, board.Bishop},
	{board.Black, board.Rook},
	{board.Black, board.Queen},
}

// whiteKingSquareToTransform maps the white king's square to the dihedral
// transform id (see board.Bitboard.DihedralTransform) that places it inside
// A1D1D4. Ported verbatim from the reference Syzygy indexing tables.
var whiteKingSquareToTransform = [64]int{
	0, 0, 0, 0, 2, 2, 2, 2,
	1, 0, 0, 0, 2, 2, 2, 3,
	1, 1, 0, 0, 2, 2, 3, 3,
	1, 1, 1, 0, 2, 3, 3, 3,
	4, 4, 4, 5, 6, 7, 7, 7,
	4, 4, 5, 5, 6, 6, 7, 7,
	4, 5, 5, 5, 6, 6, 6, 7,
	5, 5, 5, 5, 6, 6, 6, 6,
}

// Canonicalize applies the shared symmetry reduction used by both indexers:
//  1. if Black's material is stronger, swap colors and mirror vertically;
//  2. apply the dihedral transform that puts the white king in A1D1D4;
//  3. walk the pieces in pieceOrder while every piece seen so far lies on
//     the a1-h8 diagonal; the first piece off it decides: the layout is
//     flipped along the diagonal once if that lowers the piece's bitboard,
//     and otherwise left as it is.
//
// It returns the canonical layout and whether Black was the stronger side
// in the input (needed by callers that must report the outcome for the
// original, not canonical, side to move).
func Canonicalize(l Layout) (Layout, bool) {
	m := l.Material()
	blackStronger := m.Black.Compare(m.White) > 0
	if blackStronger {
		l = l.SwapColors()
	}

	wk := l.KingSquare(board.White)
	l = l.DihedralTransform(whiteKingSquareToTransform[wk])

	for _, pc := range pieceOrder {
		bb := l.Pieces[pc.Color][pc.PieceType]
		if bb == 0 {
			continue
		}
		flipped := bb.FlipDiagonal()
		if flipped < bb {
			l = l.FlipDiagonal()
			break
		} else if !a1h8Diag.IsSuperset(bb) {
			break
		}
	}
	return l, blackStronger
}

// Indexer turns a canonical Layout into a dense integer index (and back,
// where the scheme is reversible) for one material configuration.
type Indexer interface {
	// Encode returns the index for a layout that is assumed already
	// canonical and already known to belong to this indexer's material.
	Encode(l Layout) (uint64, error)
}

// ReversibleIndexer additionally supports reconstructing a Layout from an
// index, which only the Naive indexer supports. The material must be
// supplied because the index alone does not carry piece counts.
type ReversibleIndexer interface {
	Indexer
	Decode(mat Material, idx uint64) (Layout, error)
}
