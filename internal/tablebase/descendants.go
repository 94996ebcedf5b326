package tablebase

import (
	"os"
	"path/filepath"

	"github.com/kraktus/helpmate-tb/internal/board"
)

// MaterialWinner names one on-disk table file: a material configuration
// plus which color is trying to win it (the table for "KQvK" as a White win
// and as a Black win are different files, since the side to move's outcome
// in each differs).
type MaterialWinner struct {
	Material Material
	Winner   board.Color
}

// String renders the file name form, e.g. "KQvKw" / "KBvKNb".
func (mw MaterialWinner) String() string {
	suffix := "w"
	if mw.Winner == board.Black {
		suffix = "b"
	}
	return mw.Material.String() + suffix
}

// FileHandler holds one fully-decompressed descendant table in memory: the
// indexer used to turn positions into indices, and the flat outcome array.
// Tables are read once (eager decompression) since descendant tables are
// small relative to the table currently being generated/tagged.
type FileHandler struct {
	Indexer  Indexer
	Outcomes []RawOutcome
}

// OpenFileHandler reads and fully decompresses the table file for mw from
// tablebaseDir.
func OpenFileHandler(mw MaterialWinner, tablebaseDir string) (*FileHandler, error) {
	path := filepath.Join(tablebaseDir, mw.String())
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(ErrTableIO, err, "opening descendant table %q", path)
	}
	defer f.Close()

	outcomes, err := NewEncoderDecoder(f).DecompressFile()
	if err != nil {
		return nil, wrapErr(ErrTableIO, err, "decompressing descendant table %q", path)
	}
	return &FileHandler{
		Indexer:  NewSyzygyIndexer(mw.Material),
		Outcomes: outcomes,
	}, nil
}

// Descendants bundles every non-trivially-drawn descendant material's
// FileHandler (one per winner color), giving the generator a single place
// to resolve "what happens after this capture/promotion".
type Descendants struct {
	tables map[Material][2]*FileHandler // indexed by board.Color
}

// NewDescendants opens every descendant table of mat from tablebaseDir.
func NewDescendants(mat Material, tablebaseDir string) (*Descendants, error) {
	d := &Descendants{tables: make(map[Material][2]*FileHandler)}
	for _, dm := range mat.DescendantsNotDraw() {
		var pair [2]*FileHandler
		for _, winner := range []board.Color{board.White, board.Black} {
			fh, err := OpenFileHandler(MaterialWinner{Material: dm, Winner: winner}, tablebaseDir)
			if err != nil {
				return nil, err
			}
			pair[winner] = fh
		}
		d.tables[dm] = pair
	}
	return d, nil
}

// EmptyDescendants returns a Descendants with no tables loaded, for testing
// material configurations with no non-drawn descendants.
func EmptyDescendants() *Descendants {
	return &Descendants{tables: make(map[Material][2]*FileHandler)}
}

// OutcomeFromCapturesPromotion evaluates every legal capture/promotion move
// from pos and returns the best resulting outcome (seen one ply further
// back, i.e. Plus1 of the descendant's outcome), for winner. The second
// return value reports whether every legal move from pos was a capture or
// promotion (meaning the position's full outcome, not just a lower bound,
// is now known).
func (d *Descendants) OutcomeFromCapturesPromotion(pos *board.Position, winner board.Color) (Outcome, bool, error) {
	legal := pos.GenerateLegalMoves()
	var best Outcome
	found := false
	allCaptureOrPromo := legal.Len() > 0
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if !m.IsCapture(pos) && !m.IsPromotion() {
			allCaptureOrPromo = false
			continue
		}
		undo := pos.MakeMove(m)
		out, err := d.RetrieveOutcome(pos, winner)
		pos.UnmakeMove(m, undo)
		if err != nil {
			return Outcome{}, false, err
		}
		out = out.Plus1()
		if !found || out.Better(best) {
			best = out
			found = true
		}
	}
	if !found {
		return Outcome{}, false, nil
	}
	return best, allCaptureOrPromo, nil
}

// RetrieveOutcome returns the known distance-to-mate for pos (already
// played out to a descendant material configuration) from winner's point of
// view, applying the trivial-draw shortcut before touching any table file.
func (d *Descendants) RetrieveOutcome(pos *board.Position, winner board.Color) (Outcome, error) {
	mat := MaterialFromPosition(pos)
	normalized := NewMaterial(mat.White, mat.Black)
	if normalized.IsTriviallyDrawn() {
		return Draw, nil
	}
	flip := IsBlackStronger(pos)
	return d.rawAccessOutcome(normalized, pos, winner, flip)
}

func (d *Descendants) rawAccessOutcome(mat Material, pos *board.Position, winner board.Color, flip bool) (Outcome, error) {
	pair, ok := d.tables[mat]
	if !ok {
		return Outcome{}, newErr(ErrNotFound, "material %v not among loaded descendants", mat)
	}
	effectiveWinner := winner
	if flip {
		effectiveWinner = winner.Other()
	}
	fh := pair[effectiveWinner]
	if fh == nil {
		return Outcome{}, newErr(ErrNotFound, "no table loaded for %v winner=%v", mat, effectiveWinner)
	}

	l := LayoutFromPosition(pos)
	canon, _ := Canonicalize(l)
	idx, err := fh.Indexer.Encode(canon)
	if err != nil {
		return Outcome{}, err
	}
	if int(idx) >= len(fh.Outcomes) {
		return Outcome{}, newErr(ErrIndexOutOfRange, "index %d out of range for %v (len %d)", idx, mat, len(fh.Outcomes))
	}
	pair2 := fh.Outcomes[idx]

	turn := pos.SideToMove
	if flip {
		turn = turn.Other()
	}
	var raw byte
	if turn == board.White {
		raw = pair2.White
	} else {
		raw = pair2.Black
	}
	return OutcomeFromRaw(raw)
}
