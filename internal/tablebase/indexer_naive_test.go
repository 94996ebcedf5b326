package tablebase

import (
	"testing"

	"github.com/kraktus/helpmate-tb/internal/board"
)

func TestNaiveIndexerEncodeDecodeRoundTrip(t *testing.T) {
	l := EmptyLayout(board.White)
	l = l.Put(board.White, board.King, board.NewSquare(0, 0))  // a1, triangle index 6... pick a safe one below
	l = l.Put(board.Black, board.King, board.NewSquare(4, 4))  // e5
	l = l.Put(board.White, board.Queen, board.NewSquare(3, 3)) // d4

	canon, _ := Canonicalize(l)
	mat := canon.Material()

	idx, err := NaiveIndexer{}.Encode(canon)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	back, err := NaiveIndexer{}.Decode(mat, idx)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	idx2, err := NaiveIndexer{}.Encode(back)
	if err != nil {
		t.Fatalf("re-Encode: %v", err)
	}
	if idx2 != idx {
		t.Errorf("round trip mismatch: original idx=%d, decode-then-reencode idx=%d", idx, idx2)
	}
	if back.KingSquare(board.White) != canon.KingSquare(board.White) {
		t.Errorf("white king square not preserved through round trip")
	}
	if back.KingSquare(board.Black) != canon.KingSquare(board.Black) {
		t.Errorf("black king square not preserved through round trip")
	}
}

func TestNaiveIndexerEncodeRejectsAdjacentKings(t *testing.T) {
	l := EmptyLayout(board.White)
	l = l.Put(board.White, board.King, board.NewSquare(0, 0))
	l = l.Put(board.Black, board.King, board.NewSquare(1, 0)) // adjacent to a1: illegal king pair

	if _, err := (NaiveIndexer{}).Encode(l); err == nil {
		t.Error("expected an error for an adjacent king pair")
	}
}

func TestNaiveIndexerDistinctLayoutsGetDistinctIndices(t *testing.T) {
	base := EmptyLayout(board.White)
	base = base.Put(board.White, board.King, board.NewSquare(1, 0)) // b1
	base = base.Put(board.Black, board.King, board.NewSquare(5, 5)) // f6

	l1 := base.Put(board.White, board.Rook, board.NewSquare(2, 2))
	l2 := base.Put(board.White, board.Rook, board.NewSquare(3, 2))

	c1, _ := Canonicalize(l1)
	c2, _ := Canonicalize(l2)

	idx1, err := NaiveIndexer{}.Encode(c1)
	if err != nil {
		t.Fatalf("Encode l1: %v", err)
	}
	idx2, err := NaiveIndexer{}.Encode(c2)
	if err != nil {
		t.Fatalf("Encode l2: %v", err)
	}
	if idx1 == idx2 {
		t.Error("distinct layouts should not collide on the same index")
	}
}
