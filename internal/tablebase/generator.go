package tablebase

import (
	"fmt"

	"github.com/kraktus/helpmate-tb/internal/board"
)

// a1h1h8 is the triangle bounded by a1, h1 and h8 (rank <= file): the set of
// squares a single not-yet-placed unique piece may be restricted to when
// every piece placed before it still lies on the a1-h8 diagonal, mirroring
// generation.rs's A1_H1_H8 pruning of the remaining diagonal-flip symmetry.
var a1h1h8 board.Bitboard

func init() {
	for file := 0; file < 8; file++ {
		for rank := 0; rank <= file; rank++ {
			a1h1h8 = a1h1h8.Set(board.NewSquare(file, rank))
		}
	}
}

// ReportPair is the in-memory per-index outcome slot: one Report per side to
// move, matching the on-disk RawOutcome's (black, white) pairing.
type ReportPair [2]Report

// Common bundles the state shared by the Generator and Tagger passes over
// one material configuration: which side is trying to win, the flat
// per-index outcome table, and the indexers used to move between positions
// and indices.
type Common struct {
	Material      Material
	Winner        board.Color
	AllPos        []ReportPair
	Counter       int
	DenseIndexer  *SyzygyIndexer // indexes every legal position of Material, dense and non-reversible
	QueueIndexer  NaiveIndexer   // reversible, used to restore a position from a retro-move queue entry
}

// NewCommon preallocates AllPos at the dense indexer's full size, with every
// slot starting at NeverVisitedReport.
func NewCommon(mat Material, winner board.Color) *Common {
	dense := NewSyzygyIndexer(mat)
	allPos := make([]ReportPair, dense.Size())
	for i := range allPos {
		allPos[i] = ReportPair{NeverVisitedReport, NeverVisitedReport}
	}
	return &Common{
		Material:     mat,
		Winner:       winner,
		AllPos:       allPos,
		DenseIndexer: dense,
	}
}

// CanMate reports whether Winner can mate at all with this material.
func (c *Common) CanMate() bool {
	return c.Material.CanMate(c.Winner)
}

// Get/Set read and write one (index, turn) slot.
func (c *Common) Get(idx uint64, turn board.Color) Report   { return c.AllPos[idx][turn] }
func (c *Common) Set(idx uint64, turn board.Color, r Report) { c.AllPos[idx][turn] = r }

// Queue accumulates, during the generation pass, the terminal positions the
// Tagger starts its backward search from: checkmates (on the desired-outcome
// or losing queue, by which side delivered mate) and, when Winner cannot
// mate at all, stalemates. Positions resolved through captures/promotions
// are not queued.
type Queue struct {
	DesiredOutcomePosToProcess []IndexWithTurn
	LosingPosToProcess         []IndexWithTurn
}

// PosHandler processes one fully-placed, legal position discovered during
// enumeration, deciding its initial outcome (if knowable yet) and queueing
// it for the Tagger as appropriate.
type PosHandler interface {
	HandlePosition(common *Common, queue *Queue, descendants *Descendants, pos *board.Position, l Layout, idx IndexWithTurn, allPosIdx uint64)
}

// DefaultGeneratorHandler is the handler used for an actual tablebase build:
// terminal positions (checkmate/stalemate) get an exact outcome immediately;
// everything else gets a lower bound from its best capture/promotion, if
// any, and is otherwise left Unprocessed for the Tagger to fill in by
// retrograde search.
type DefaultGeneratorHandler struct{}

func (DefaultGeneratorHandler) HandlePosition(common *Common, queue *Queue, descendants *Descendants, pos *board.Position, l Layout, idx IndexWithTurn, allPosIdx uint64) {
	pos.UpdateCheckers()
	switch {
	case pos.IsCheckmate():
		winner := pos.SideToMove.Other()
		var out Outcome
		if winner == common.Winner {
			out = Win(0)
		} else {
			out = Lose(0)
		}
		common.Set(allPosIdx, l.Turn, NewProcessed(out))
		if winner == common.Winner {
			queue.DesiredOutcomePosToProcess = append(queue.DesiredOutcomePosToProcess, idx)
		} else {
			queue.LosingPosToProcess = append(queue.LosingPosToProcess, idx)
		}

	case pos.IsStalemate():
		common.Set(allPosIdx, l.Turn, NewProcessed(Draw))
		if !common.CanMate() {
			queue.DesiredOutcomePosToProcess = append(queue.DesiredOutcomePosToProcess, idx)
		}

	default:
		fetched, allCaptureOrPromo, err := descendants.OutcomeFromCapturesPromotion(pos, common.Winner)
		if err != nil || !allCaptureOrPromo {
			if err == nil {
				fetched = Unknown
			}
			common.Set(allPosIdx, l.Turn, Report{Outcome: fetched, Processed: false})
			return
		}
		common.Set(allPosIdx, l.Turn, NewProcessed(fetched))
	}
}

// Generator enumerates every legal position of one material configuration
// and hands each to a PosHandler, building the Queue the Tagger then drains.
type Generator struct {
	common      *Common
	descendants *Descendants
	queue       Queue
	handler     PosHandler
}

// NewGenerator builds a Generator for mat/winner, loading every non-drawn
// descendant table from tablebaseDir.
func NewGenerator(mat Material, winner board.Color, tablebaseDir string) (*Generator, error) {
	descendants, err := NewDescendants(mat, tablebaseDir)
	if err != nil {
		return nil, err
	}
	return &Generator{
		common:      NewCommon(mat, winner),
		descendants: descendants,
		handler:     DefaultGeneratorHandler{},
	}, nil
}

// NewGeneratorWithHandler is the same as NewGenerator but with a caller
// supplied PosHandler, used by audit tooling (see CheckIndexerHandler).
func NewGeneratorWithHandler(mat Material, winner board.Color, descendants *Descendants, handler PosHandler) *Generator {
	return &Generator{
		common:      NewCommon(mat, winner),
		descendants: descendants,
		handler:     handler,
	}
}

// Result exposes the Common and Queue once generation has finished.
func (g *Generator) Result() (*Common, Queue) { return g.common, g.queue }

// piecesWithoutWhiteKing lists every (color, role) instance of mat other
// than the white king, in the fixed placement order pieceOrder already
// defines (black king first, then white pieces, then black pieces).
func piecesWithoutWhiteKing(mat Material) []pieceSpec {
	out := make([]pieceSpec, 0, mat.Count()-1)
	for _, po := range pieceOrder {
		if po.Color == board.White && po.PieceType == board.King {
			continue
		}
		var count uint8
		if po.Color == board.White {
			count = mat.White[po.PieceType]
		} else {
			count = mat.Black[po.PieceType]
		}
		for i := uint8(0); i < count; i++ {
			out = append(out, pieceSpec{Color: po.Color, PieceType: po.PieceType})
		}
	}
	return out
}

// GeneratePositions enumerates every legal placement of mat's pieces, white
// king restricted to the A1D1D4 triangle, and hands each completed board
// (for both sides to move) to the handler.
func (g *Generator) GeneratePositions() {
	pieces := piecesWithoutWhiteKing(g.common.Material)
	for _, wk := range A1D1D4.Squares() {
		l := EmptyLayout(board.White).Put(board.White, board.King, wk)
		g.generateInternal(pieces, l, pieceSpec{board.White, board.King}, wk)
	}
}

// validSquares returns the candidate squares for placing piece, given the
// previous piece/square placed (to dedupe identical-piece permutations and
// to keep applying the diagonal-triangle restriction while every piece so
// far lies on the a1-h8 diagonal).
func (g *Generator) validSquares(l Layout, piece pieceSpec, lastPiece pieceSpec, lastSquare board.Square) []board.Square {
	if piece == lastPiece {
		out := make([]board.Square, 0, lastSquare)
		for sq := board.Square(0); sq < lastSquare; sq++ {
			out = append(out, sq)
		}
		return out
	}

	var occupied board.Bitboard
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			occupied |= l.Pieces[c][pt]
		}
	}

	var count uint8
	if piece.Color == board.White {
		count = g.common.Material.White[piece.PieceType]
	} else {
		count = g.common.Material.Black[piece.PieceType]
	}
	if count == 1 && a1h8Diag.IsSuperset(occupied) {
		out := make([]board.Square, 0, 36)
		for _, sq := range a1h1h8.Squares() {
			out = append(out, sq)
		}
		return out
	}

	out := make([]board.Square, 0, 64)
	for sq := board.Square(0); sq < 64; sq++ {
		out = append(out, sq)
	}
	return out
}

func (g *Generator) generateInternal(pieces []pieceSpec, l Layout, lastPiece pieceSpec, lastSquare board.Square) {
	if len(pieces) == 0 {
		g.checkSetup(l)
		return
	}
	piece := pieces[0]
	rest := pieces[1:]
	for _, sq := range g.validSquares(l, piece, lastPiece, lastSquare) {
		if _, _, occupied := l.PieceAt(sq); occupied {
			continue
		}
		next := l.Put(piece.Color, piece.PieceType, sq)
		g.generateInternal(rest, next, piece, sq)
	}
}

func (g *Generator) checkSetup(l Layout) {
	for _, turn := range []board.Color{board.White, board.Black} {
		l.Turn = turn
		if !isLegalLayout(l) {
			continue
		}
		g.common.Counter++

		canon, _ := Canonicalize(l)
		queueIdx, err := g.common.QueueIndexer.Encode(canon)
		if err != nil {
			continue
		}
		allPosIdx, err := g.common.DenseIndexer.Encode(canon)
		if err != nil {
			continue
		}
		// canon.Turn, not turn, names the slot in AllPos/the queue: both are
		// keyed off the canonicalized position's side to move.
		idx := IndexWithTurn{Idx: queueIdx, Turn: byte(canon.Turn)}

		if g.common.Get(allPosIdx, canon.Turn) != NeverVisitedReport {
			if !g.common.Material.HasPawns() && g.common.Material.MinLikeMan() >= 2 {
				continue // duplicate index: tolerated for repeated-piece pawnless material
			}
			panic(fmt.Sprintf("tablebase: index %d already generated for material %v, turn %v", allPosIdx, g.common.Material, canon.Turn))
		}

		pos, err := l.Position()
		if err != nil {
			continue
		}
		g.handler.HandlePosition(g.common, &g.queue, g.descendants, pos, canon, idx, allPosIdx)
	}
}

// CheckIndexerHandler is an audit handler: instead of computing outcomes, it
// verifies that the reversible (naive) indexer round-trips every generated
// position, used to validate a new indexer implementation the way
// generation.rs's syzygy_check handler does.
type CheckIndexerHandler struct {
	Mismatches int
}

func (h *CheckIndexerHandler) HandlePosition(common *Common, queue *Queue, descendants *Descendants, pos *board.Position, l Layout, idx IndexWithTurn, allPosIdx uint64) {
	restored, err := common.QueueIndexer.Decode(common.Material, idx.Idx)
	if err != nil {
		h.Mismatches++
		return
	}
	reencoded, err := common.QueueIndexer.Encode(restored)
	if err != nil || reencoded != idx.Idx {
		h.Mismatches++
	}
}
