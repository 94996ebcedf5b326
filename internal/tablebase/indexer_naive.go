package tablebase

import "github.com/kraktus/helpmate-tb/internal/board"

// triangle maps every square to its index in the a1-d1-d4 triangle (0..9):
// 0..5 are the off-diagonal squares b1,c1,d1,c2,d2,d3 and 6..9 the diagonal
// squares a1,b2,c3,d4, with every other square sharing the index of its
// symmetric image. Ported verbatim from the reference tables.
var triangle = [64]int{
	6, 0, 1, 2, 2, 1, 0, 6,
	0, 7, 3, 4, 4, 3, 7, 0,
	1, 3, 8, 5, 5, 8, 3, 1,
	2, 4, 5, 9, 9, 5, 4, 2,
	2, 4, 5, 9, 9, 5, 4, 2,
	1, 3, 8, 5, 5, 8, 3, 1,
	0, 7, 3, 4, 4, 3, 7, 0,
	6, 0, 1, 2, 2, 1, 0, 6,
}

// invTriangle is the inverse of the first 10 entries of triangle: which
// square a triangle index 0..9 corresponds to.
var invTriangle = [10]int{1, 2, 3, 10, 11, 19, 0, 9, 18, 27}

const kkZ0 = ^uint64(0) // sentinel for "impossible" king pair slots

// kkIdx is the 462-configuration encoding of two non-adjacent kings: first
// index is the white king's triangle slot (0..9), second is the black
// king's square (0..63). Ported verbatim from the reference tables.
var kkIdx = [10][64]uint64{
	{kkZ0, kkZ0, kkZ0, 0, 1, 2, 3, 4,
		kkZ0, kkZ0, kkZ0, 5, 6, 7, 8, 9,
		10, 11, 12, 13, 14, 15, 16, 17,
		18, 19, 20, 21, 22, 23, 24, 25,
		26, 27, 28, 29, 30, 31, 32, 33,
		34, 35, 36, 37, 38, 39, 40, 41,
		42, 43, 44, 45, 46, 47, 48, 49,
		50, 51, 52, 53, 54, 55, 56, 57},
	{58, kkZ0, kkZ0, kkZ0, 59, 60, 61, 62,
		63, kkZ0, kkZ0, kkZ0, 64, 65, 66, 67,
		68, 69, 70, 71, 72, 73, 74, 75,
		76, 77, 78, 79, 80, 81, 82, 83,
		84, 85, 86, 87, 88, 89, 90, 91,
		92, 93, 94, 95, 96, 97, 98, 99,
		100, 101, 102, 103, 104, 105, 106, 107,
		108, 109, 110, 111, 112, 113, 114, 115},
	{116, 117, kkZ0, kkZ0, kkZ0, 118, 119, 120,
		121, 122, kkZ0, kkZ0, kkZ0, 123, 124, 125,
		126, 127, 128, 129, 130, 131, 132, 133,
		134, 135, 136, 137, 138, 139, 140, 141,
		142, 143, 144, 145, 146, 147, 148, 149,
		150, 151, 152, 153, 154, 155, 156, 157,
		158, 159, 160, 161, 162, 163, 164, 165,
		166, 167, 168, 169, 170, 171, 172, 173},
	{174, kkZ0, kkZ0, kkZ0, 175, 176, 177, 178,
		179, kkZ0, kkZ0, kkZ0, 180, 181, 182, 183,
		184, kkZ0, kkZ0, kkZ0, 185, 186, 187, 188,
		189, 190, 191, 192, 193, 194, 195, 196,
		197, 198, 199, 200, 201, 202, 203, 204,
		205, 206, 207, 208, 209, 210, 211, 212,
		213, 214, 215, 216, 217, 218, 219, 220,
		221, 222, 223, 224, 225, 226, 227, 228},
	{229, 230, kkZ0, kkZ0, kkZ0, 231, 232, 233,
		234, 235, kkZ0, kkZ0, kkZ0, 236, 237, 238,
		239, 240, kkZ0, kkZ0, kkZ0, 241, 242, 243,
		244, 245, 246, 247, 248, 249, 250, 251,
		252, 253, 254, 255, 256, 257, 258, 259,
		260, 261, 262, 263, 264, 265, 266, 267,
		268, 269, 270, 271, 272, 273, 274, 275,
		276, 277, 278, 279, 280, 281, 282, 283},
	{284, 285, 286, 287, 288, 289, 290, 291,
		292, 293, kkZ0, kkZ0, kkZ0, 294, 295, 296,
		297, 298, kkZ0, kkZ0, kkZ0, 299, 300, 301,
		302, 303, kkZ0, kkZ0, kkZ0, 304, 305, 306,
		307, 308, 309, 310, 311, 312, 313, 314,
		315, 316, 317, 318, 319, 320, 321, 322,
		323, 324, 325, 326, 327, 328, 329, 330,
		331, 332, 333, 334, 335, 336, 337, 338},
	{kkZ0, kkZ0, 339, 340, 341, 342, 343, 344,
		kkZ0, kkZ0, 345, 346, 347, 348, 349, 350,
		kkZ0, kkZ0, 441, 351, 352, 353, 354, 355,
		kkZ0, kkZ0, kkZ0, 442, 356, 357, 358, 359,
		kkZ0, kkZ0, kkZ0, kkZ0, 443, 360, 361, 362,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 444, 363, 364,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 445, 365,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 446},
	{kkZ0, kkZ0, kkZ0, 366, 367, 368, 369, 370,
		kkZ0, kkZ0, kkZ0, 371, 372, 373, 374, 375,
		kkZ0, kkZ0, kkZ0, 376, 377, 378, 379, 380,
		kkZ0, kkZ0, kkZ0, 447, 381, 382, 383, 384,
		kkZ0, kkZ0, kkZ0, kkZ0, 448, 385, 386, 387,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 449, 388, 389,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 450, 390,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 451},
	{452, 391, 392, 393, 394, 395, 396, 397,
		kkZ0, kkZ0, kkZ0, kkZ0, 398, 399, 400, 401,
		kkZ0, kkZ0, kkZ0, kkZ0, 402, 403, 404, 405,
		kkZ0, kkZ0, kkZ0, kkZ0, 406, 407, 408, 409,
		kkZ0, kkZ0, kkZ0, kkZ0, 453, 410, 411, 412,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 454, 413, 414,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 455, 415,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 456},
	{457, 416, 417, 418, 419, 420, 421, 422,
		kkZ0, 458, 423, 424, 425, 426, 427, 428,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 429, 430, 431,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 432, 433, 434,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 435, 436, 437,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 459, 438, 439,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 460, 440,
		kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, kkZ0, 461},
}

// invKKIdx is the inverse of kkIdx: for each of the 462 king-pair indices,
// which (white, black) king squares produced it. Built once at init since
// Go cannot express the nested-loop inversion as a const.
var invKKIdx [462][2]board.Square

func init() {
	for wk := 0; wk < 10; wk++ {
		for bk := 0; bk < 64; bk++ {
			idx := kkIdx[wk][bk]
			if idx == kkZ0 {
				continue
			}
			invKKIdx[idx] = [2]board.Square{board.Square(invTriangle[wk]), board.Square(bk)}
		}
	}
}

// naiveOrder lists the non-king roles in the fixed order the naive indexer
// multiplies square numbers into the running index, white before black
// within each role.
var naiveOrder = []struct {
	Color     board.Color
	PieceType board.PieceType
}{
	{board.White, board.Pawn}, {board.Black, board.Pawn},
	{board.White, board.Knight}, {board.Black, board.Knight},
	{board.White, board.Bishop}, {board.Black, board.Bishop},
	{board.White, board.Rook}, {board.Black, board.Rook},
	{board.White, board.Queen}, {board.Black, board.Queen},
}

// NaiveIndexer is a simple, fully reversible indexer: it special-cases the
// 462 non-adjacent king configurations via kkIdx, then multiplies in every
// remaining piece's square in a fixed role order, base 64. It does not merge
// permutations of identical pieces, so for material with repeated pieces
// its index range is much larger than the Syzygy-style indexer's; it is
// trivial to invert, which the
// CheckIndexerHandler generator audit relies on.
type NaiveIndexer struct{}

// Encode assumes l is already canonical (white king inside A1D1D4).
func (NaiveIndexer) Encode(l Layout) (uint64, error) {
	wk := l.KingSquare(board.White)
	bk := l.KingSquare(board.Black)
	idx := kkIdx[triangle[wk]][bk]
	if idx == kkZ0 {
		return 0, newErr(ErrInternalInvariant, "naive indexer: impossible king pair wk=%v bk=%v", wk, bk)
	}
	for _, po := range naiveOrder {
		bb := l.Pieces[po.Color][po.PieceType]
		for _, sq := range bb.Squares() {
			idx = idx*64 + uint64(sq)
		}
	}
	return idx, nil
}

// Decode reconstructs a canonical Layout from an index, given the material
// configuration (needed to know how many of each piece to place and in
// which order to pull squares back off the index).
func (NaiveIndexer) Decode(mat Material, idx uint64) (Layout, error) {
	l := EmptyLayout(board.White)
	// naiveOrder is walked white-then-black per role; squares were pushed
	// in that order and must be popped in reverse (queen first, pawn last).
	for i := len(naiveOrder) - 1; i >= 0; i-- {
		po := naiveOrder[i]
		var count uint8
		if po.Color == board.White {
			count = mat.White[po.PieceType]
		} else {
			count = mat.Black[po.PieceType]
		}
		squares := make([]board.Square, count)
		for j := int(count) - 1; j >= 0; j-- {
			squares[j] = board.Square(idx % 64)
			idx /= 64
		}
		for _, sq := range squares {
			l = l.Put(po.Color, po.PieceType, sq)
		}
	}
	if idx >= 462 {
		return Layout{}, newErr(ErrIndexOutOfRange, "naive indexer: residual king index %d out of range", idx)
	}
	kings := invKKIdx[idx]
	l = l.Put(board.White, board.King, kings[0])
	l = l.Put(board.Black, board.King, kings[1])
	return l, nil
}
