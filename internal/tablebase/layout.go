package tablebase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kraktus/helpmate-tb/internal/board"
)

// Layout is a bare piece placement plus side to move: no castling rights,
// no en passant, no move counters. The generator, indexers and retro-move
// machinery all work at this level; a Layout is only ever lifted to a full
// board.Position (via FEN) at the point legal-move generation is needed.
type Layout struct {
	Pieces [2][6]board.Bitboard
	Turn   board.Color
}

// EmptyLayout returns a Layout with no pieces placed.
func EmptyLayout(turn board.Color) Layout {
	return Layout{Turn: turn}
}

// Put places a piece of the given color/type on sq, returning the updated
// Layout (Layout is small and copied by value throughout this package).
func (l Layout) Put(c board.Color, pt board.PieceType, sq board.Square) Layout {
	l.Pieces[c][pt] = l.Pieces[c][pt].Set(sq)
	return l
}

// PieceAt returns the piece occupying sq, or ok=false if empty.
func (l Layout) PieceAt(sq board.Square) (board.Color, board.PieceType, bool) {
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			if l.Pieces[c][pt].IsSet(sq) {
				return c, pt, true
			}
		}
	}
	return 0, 0, false
}

// Material returns the (unnormalized, colour-faithful) Material of l.
func (l Layout) Material() Material {
	var w, b Side
	for pt := board.Pawn; pt <= board.King; pt++ {
		w[pt] = uint8(l.Pieces[board.White][pt].PopCount())
		b[pt] = uint8(l.Pieces[board.Black][pt].PopCount())
	}
	return Material{White: w, Black: b}
}

// FEN renders the placement and side to move as a full FEN string (no
// castling, no en passant, halfmove/fullmove reset to 0/1).
func (l Layout) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := board.NewSquare(file, rank)
			c, pt, ok := l.PieceAt(sq)
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			ch := string(roleChars[pt])
			if c == board.White {
				sb.WriteString(ch)
			} else {
				sb.WriteString(strings.ToLower(ch))
			}
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	turn := "w"
	if l.Turn == board.Black {
		turn = "b"
	}
	fmt.Fprintf(&sb, " %s - - 0 1", turn)
	return sb.String()
}

// Position lifts the layout to a full board.Position by round-tripping
// through FEN, the same construction path every other position in the
// engine goes through.
func (l Layout) Position() (*board.Position, error) {
	pos, err := board.ParseFEN(l.FEN())
	if err != nil {
		return nil, wrapErr(ErrBadPosition, err, "layout %q failed to parse", l.FEN())
	}
	return pos, nil
}

// LayoutFromPosition extracts the bare placement and side to move of pos,
// discarding castling/en passant/move-counter state.
func LayoutFromPosition(pos *board.Position) Layout {
	return Layout{Pieces: pos.Pieces, Turn: pos.SideToMove}
}

// transform applies a square mapping to every piece on the board.
func (l Layout) transform(f func(board.Bitboard) board.Bitboard) Layout {
	var out Layout
	out.Turn = l.Turn
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			out.Pieces[c][pt] = f(l.Pieces[c][pt])
		}
	}
	return out
}

func (l Layout) FlipVertical() Layout      { return l.transform(board.Bitboard.FlipVertical) }
func (l Layout) FlipHorizontal() Layout    { return l.transform(board.Bitboard.FlipHorizontal) }
func (l Layout) FlipDiagonal() Layout      { return l.transform(board.Bitboard.FlipDiagonal) }
func (l Layout) FlipAntiDiagonal() Layout  { return l.transform(board.Bitboard.FlipAntiDiagonal) }
func (l Layout) Rotate90() Layout          { return l.transform(board.Bitboard.Rotate90) }
func (l Layout) Rotate180() Layout         { return l.transform(board.Bitboard.Rotate180) }
func (l Layout) Rotate270() Layout         { return l.transform(board.Bitboard.Rotate270) }

// DihedralTransform applies one of the eight square symmetries, numbered the
// same way as board.Bitboard.DihedralTransform.
func (l Layout) DihedralTransform(id int) Layout {
	return l.transform(func(b board.Bitboard) board.Bitboard { return b.DihedralTransform(id) })
}

// SwapColors swaps White and Black pieces and mirrors vertically, matching
// the teacher-grounded convention that "the weaker side becomes White by
// flipping the board upside down and relabeling colors" (mirrors
// indexer.rs's swap_color_board: each piece's bitboard is flipped
// vertically and handed to the other color).
func (l Layout) SwapColors() Layout {
	var out Layout
	out.Turn = l.Turn.Other()
	for pt := board.Pawn; pt <= board.King; pt++ {
		out.Pieces[board.White][pt] = l.Pieces[board.Black][pt].FlipVertical()
		out.Pieces[board.Black][pt] = l.Pieces[board.White][pt].FlipVertical()
	}
	return out
}

// KingSquare returns the square of color c's king, or board.NoSquare if
// this color has no king placed.
func (l Layout) KingSquare(c board.Color) board.Square {
	return l.Pieces[c][board.King].LSB()
}
