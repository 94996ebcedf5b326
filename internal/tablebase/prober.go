package tablebase

import (
	"os"
	"path/filepath"

	"github.com/kraktus/helpmate-tb/internal/board"
)

// LazyFileHandler keeps a table file open and decompresses only the one
// block a query needs, rather than the whole file up front. This is the
// random-access counterpart of FileHandler (used eagerly by the generator's
// Descendants), grounded on probe.rs's LazyFileHandler.
type LazyFileHandler struct {
	indexer Indexer
	file    *os.File
	coder   *EncoderDecoder
}

// OpenLazyFileHandler opens the table file for mw without reading it.
func OpenLazyFileHandler(mw MaterialWinner, tablebaseDir string) (*LazyFileHandler, error) {
	path := filepath.Join(tablebaseDir, mw.String())
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(ErrTableIO, err, "opening table %q", path)
	}
	return &LazyFileHandler{
		indexer: NewSyzygyIndexer(mw.Material),
		file:    f,
		coder:   NewEncoderDecoder(f),
	}, nil
}

// Close releases the underlying file handle.
func (h *LazyFileHandler) Close() error { return h.file.Close() }

// OutcomeOf decodes and queries just the block containing pos's index.
func (h *LazyFileHandler) OutcomeOf(pos *board.Position) (Outcome, error) {
	l := LayoutFromPosition(pos)
	canon, _ := Canonicalize(l)
	idx, err := h.indexer.Encode(canon)
	if err != nil {
		return Outcome{}, err
	}
	pair, err := h.coder.OutcomeOf(idx)
	if err != nil {
		return Outcome{}, err
	}
	var raw byte
	if canon.Turn == board.White {
		raw = pair.White
	} else {
		raw = pair.Black
	}
	return OutcomeFromRaw(raw)
}

// TablebaseProber answers "what's the outcome from here" and "play out a
// line to mate" queries against a full tree of on-disk tables: the root
// material plus every descendant material reachable by captures/promotions.
// Grounded on probe.rs's TablebaseProber.
type TablebaseProber struct {
	tables map[Material][2]*LazyFileHandler
}

// NewTablebaseProber opens lazy handlers for mat and every material below it
// (mat.DescendantsRecursive(false) plus mat itself).
func NewTablebaseProber(mat Material, tablebaseDir string) (*TablebaseProber, error) {
	mats := mat.DescendantsRecursive(false)
	mats = append(mats, mat)
	p := &TablebaseProber{tables: make(map[Material][2]*LazyFileHandler)}
	for _, m := range mats {
		if m.IsTriviallyDrawn() {
			continue
		}
		var pair [2]*LazyFileHandler
		for _, winner := range []board.Color{board.White, board.Black} {
			h, err := OpenLazyFileHandler(MaterialWinner{Material: m, Winner: winner}, tablebaseDir)
			if err != nil {
				p.Close()
				return nil, err
			}
			pair[winner] = h
		}
		p.tables[m] = pair
	}
	return p, nil
}

// Close releases every open table file.
func (p *TablebaseProber) Close() {
	for _, pair := range p.tables {
		for _, h := range pair {
			if h != nil {
				h.Close()
			}
		}
	}
}

// RetrieveOutcome implements the same trivial-draw-shortcut-then-table-
// lookup contract as Descendants.RetrieveOutcome, but against lazily opened
// tables rather than eagerly decompressed ones.
func (p *TablebaseProber) RetrieveOutcome(pos *board.Position, winner board.Color) (Outcome, error) {
	mat := MaterialFromPosition(pos)
	normalized := NewMaterial(mat.White, mat.Black)
	if normalized.IsTriviallyDrawn() {
		return Draw, nil
	}
	flip := IsBlackStronger(pos)
	effectiveWinner := winner
	if flip {
		effectiveWinner = winner.Other()
	}
	pair, ok := p.tables[normalized]
	if !ok {
		return Outcome{}, newErr(ErrNotFound, "material %v not loaded in prober", normalized)
	}
	h := pair[effectiveWinner]
	if h == nil {
		return Outcome{}, newErr(ErrNotFound, "no table for %v winner=%v", normalized, effectiveWinner)
	}
	return h.OutcomeOf(pos)
}

// Probe plays out one best line from rootPos until a terminal outcome
// (Win(0), Lose(0), or Draw) is reached from winner's perspective, returning
// the moves taken.
func (p *TablebaseProber) Probe(rootPos *board.Position, winner board.Color) (*board.MoveList, error) {
	pos := rootPos
	moves := board.NewMoveList()
	for {
		legal := pos.GenerateLegalMoves()
		if legal.Len() == 0 {
			return moves, nil
		}
		var bestMove board.Move
		var bestRanked Outcome  // shifted by one ply, used only to rank candidate moves
		var bestOutcome Outcome // the child position's own, unshifted outcome
		found := false
		for i := 0; i < legal.Len(); i++ {
			m := legal.Get(i)
			undo := pos.MakeMove(m)
			out, err := p.RetrieveOutcome(pos, winner)
			pos.UnmakeMove(m, undo)
			if err != nil {
				return nil, err
			}
			ranked := out.Plus1()
			if !found || ranked.Better(bestRanked) {
				bestMove, bestRanked, bestOutcome, found = m, ranked, out, true
			}
		}
		moves.Add(bestMove)
		pos.MakeMove(bestMove)

		if bestOutcome == Win(0) || bestOutcome == Lose(0) || bestOutcome == Draw {
			return moves, nil
		}
	}
}
