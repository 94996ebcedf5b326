package tablebase

import "github.com/kraktus/helpmate-tb/internal/board"

// This file has no direct analogue in the reference Rust implementation,
// which pulls retro-move ("unmove") generation from the separate
// retroboard crate. Lacking that dependency, RetroMoves is built fresh on
// top of board's own attack tables (KnightAttacks, KingAttacks,
// Bishop/Rook/QueenAttacks) since those rays are symmetric: the squares a
// slider attacks from `to` are exactly the squares it could have arrived
// from, given a clear path.
//
// Only simple, capture-free, promotion-free unmoves are generated. That is
// intentional and matches how Tagger uses this: positions within a single
// material table can only be connected to each other by reversible,
// material-preserving moves. An unmove that uncaptures a piece, or
// unpromotes a piece back into a pawn, leads to a *larger* material
// configuration, which is a different table entirely and is handled by the
// generator's direct use of the Descendants store, not by retro-moves.

// RetroMoves returns every Layout one ply before l, reached by undoing a
// single non-capturing, non-promoting move made by the side that is not to
// move in l (since making that move is what flipped the turn to produce l).
// Results are already filtered to legal chess positions.
func RetroMoves(l Layout) []Layout {
	mover := l.Turn.Other()
	var out []Layout

	occupiedAll := func(lay Layout) board.Bitboard {
		var occ board.Bitboard
		for c := board.White; c <= board.Black; c++ {
			for pt := board.Pawn; pt <= board.King; pt++ {
				occ |= lay.Pieces[c][pt]
			}
		}
		return occ
	}

	tryMove := func(pt board.PieceType, to, from board.Square) {
		base := l
		base.Pieces[mover][pt] = base.Pieces[mover][pt].Clear(to)
		base.Pieces[mover][pt] = base.Pieces[mover][pt].Set(from)
		base.Turn = mover
		if isLegalLayout(base) {
			out = append(out, base)
		}
	}

	for pt := board.Pawn; pt <= board.King; pt++ {
		for _, to := range l.Pieces[mover][pt].Squares() {
			occWithoutPiece := occupiedAll(l).Clear(to)
			switch pt {
			case board.Knight:
				for _, from := range board.KnightAttacks(to).Squares() {
					if !occWithoutPiece.IsSet(from) {
						tryMove(pt, to, from)
					}
				}
			case board.King:
				for _, from := range board.KingAttacks(to).Squares() {
					if !occWithoutPiece.IsSet(from) {
						tryMove(pt, to, from)
					}
				}
			case board.Bishop:
				for _, from := range board.BishopAttacks(to, occWithoutPiece).Squares() {
					tryMove(pt, to, from)
				}
			case board.Rook:
				for _, from := range board.RookAttacks(to, occWithoutPiece).Squares() {
					tryMove(pt, to, from)
				}
			case board.Queen:
				for _, from := range board.QueenAttacks(to, occWithoutPiece).Squares() {
					tryMove(pt, to, from)
				}
			case board.Pawn:
				retroPawnMoves(l, mover, to, occWithoutPiece, tryMove)
			}
		}
	}
	return out
}

// retroPawnMoves yields the single- and double-push predecessors of a pawn
// sitting on `to`. Pawn retro-moves never include captures: unmaking a pawn
// capture would uncapture a piece, changing material.
func retroPawnMoves(l Layout, mover board.Color, to board.Square, occWithoutPiece board.Bitboard, tryMove func(board.PieceType, board.Square, board.Square)) {
	dir := 8
	doublePushRank := 3 // rank index (0-based) where a white pawn lands after a double push
	if mover == board.Black {
		dir = -8
		doublePushRank = 4
	}
	from := board.Square(int(to) - dir)
	if from > 63 {
		return // wrapped around, pawn was on its starting rank already
	}
	if occWithoutPiece.IsSet(from) {
		return
	}
	tryMove(board.Pawn, to, from)

	if to.Rank() == doublePushRank {
		from2 := board.Square(int(to) - 2*dir)
		if !occWithoutPiece.IsSet(from2) {
			tryMove(board.Pawn, to, from2)
		}
	}
}

// isLegalLayout reports whether l is a legal chess position: both kings
// present, not adjacent, and the side not to move not in check.
func isLegalLayout(l Layout) bool {
	wk := l.KingSquare(board.White)
	bk := l.KingSquare(board.Black)
	if wk == board.NoSquare || bk == board.NoSquare {
		return false
	}
	if board.KingAttacks(wk).IsSet(bk) {
		return false
	}
	pos, err := l.Position()
	if err != nil {
		return false
	}
	pos.UpdateCheckers()
	notToMove := l.Turn.Other()
	kingSq := pos.KingSquare[notToMove]
	return !pos.IsSquareAttacked(kingSq, l.Turn)
}
