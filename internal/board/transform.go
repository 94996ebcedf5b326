package board

// This file adds the dihedral-group symmetry operations (the eight ways a
// square board maps onto itself) needed to canonicalize endgame positions.
// Squares stay in LERF order (A1=0..H8=63); each transform is a pure
// re-mapping of File()/Rank().

// FlipVertical mirrors the square across the rank-4/rank-5 boundary (a1<->a8).
func (sq Square) FlipVertical() Square {
	return sq ^ 56
}

// FlipHorizontal mirrors the square across the d-file/e-file boundary (a1<->h1).
func (sq Square) FlipHorizontal() Square {
	return sq ^ 7
}

// FlipDiagonal reflects the square across the a1-h8 diagonal (file<->rank).
func (sq Square) FlipDiagonal() Square {
	return NewSquare(sq.Rank(), sq.File())
}

// FlipAntiDiagonal reflects the square across the a8-h1 diagonal.
func (sq Square) FlipAntiDiagonal() Square {
	return NewSquare(7-sq.Rank(), 7-sq.File())
}

// Rotate90 rotates the square 90 degrees clockwise.
func (sq Square) Rotate90() Square {
	return NewSquare(sq.Rank(), 7-sq.File())
}

// Rotate180 rotates the square 180 degrees.
func (sq Square) Rotate180() Square {
	return sq ^ 63
}

// Rotate270 rotates the square 270 degrees clockwise (90 counter-clockwise).
func (sq Square) Rotate270() Square {
	return NewSquare(7-sq.Rank(), sq.File())
}

// boardTransform maps every square of a Bitboard through f and rebuilds it.
func boardTransform(b Bitboard, f func(Square) Square) Bitboard {
	var out Bitboard
	b.ForEach(func(sq Square) {
		out = out.Set(f(sq))
	})
	return out
}

// FlipVertical mirrors the whole bitboard across the rank-4/rank-5 boundary.
func (b Bitboard) FlipVertical() Bitboard { return boardTransform(b, Square.FlipVertical) }

// FlipHorizontal mirrors the whole bitboard across the d-file/e-file boundary.
func (b Bitboard) FlipHorizontal() Bitboard { return boardTransform(b, Square.FlipHorizontal) }

// FlipDiagonal reflects the whole bitboard across the a1-h8 diagonal.
func (b Bitboard) FlipDiagonal() Bitboard { return boardTransform(b, Square.FlipDiagonal) }

// FlipAntiDiagonal reflects the whole bitboard across the a8-h1 diagonal.
func (b Bitboard) FlipAntiDiagonal() Bitboard { return boardTransform(b, Square.FlipAntiDiagonal) }

// Rotate90 rotates the whole bitboard 90 degrees clockwise.
func (b Bitboard) Rotate90() Bitboard { return boardTransform(b, Square.Rotate90) }

// Rotate180 rotates the whole bitboard 180 degrees.
func (b Bitboard) Rotate180() Bitboard { return boardTransform(b, Square.Rotate180) }

// Rotate270 rotates the whole bitboard 270 degrees clockwise.
func (b Bitboard) Rotate270() Bitboard { return boardTransform(b, Square.Rotate270) }

// IsSuperset reports whether every bit set in other is also set in b.
func (b Bitboard) IsSuperset(other Bitboard) bool {
	return other&^b == 0
}

// DihedralTransform applies one of the eight symmetries of the square by id,
// using the same numbering as the rest of the tablebase package:
// 0=identity 1=diagonal 2=horizontal 3=rotate90 4=rotate270 5=vertical
// 6=rotate180 7=anti-diagonal.
func (b Bitboard) DihedralTransform(id int) Bitboard {
	switch id {
	case 0:
		return b
	case 1:
		return b.FlipDiagonal()
	case 2:
		return b.FlipHorizontal()
	case 3:
		return b.Rotate90()
	case 4:
		return b.Rotate270()
	case 5:
		return b.FlipVertical()
	case 6:
		return b.Rotate180()
	case 7:
		return b.FlipAntiDiagonal()
	default:
		panic("board: invalid dihedral transform id")
	}
}
