package board

// Zobrist keys for position identity.
// Uses PRNG with fixed seed for reproducibility.
var (
	zobristPiece      [2][7][64]uint64 // [Side][PieceKind][Index64]
	zobristEnPassant  [8]uint64        // One per file
	zobristCastling   [16]uint64       // All 16 castling combinations
	zobristSideToMove uint64           // XOR when White to move
)

func init() {
	rng := prng{state: 0x98F107A2BEEF1234}

	for s := Black; s <= White; s++ {
		for k := Pawn; k <= King; k++ {
			for i := 0; i < 64; i++ {
				zobristPiece[s][k][i] = rng.next()
			}
		}
	}
	for file := 0; file < 8; file++ {
		zobristEnPassant[file] = rng.next()
	}
	for i := 0; i < 16; i++ {
		zobristCastling[i] = rng.next()
	}
	zobristSideToMove = rng.next()
}

type prng struct {
	state uint64
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

// Key returns the Zobrist key of the position. Two positions with the same
// placement, side to move, castling rights and en passant target share a key;
// the move counters are ignored.
func (p *Position) Key() uint64 {
	var key uint64
	for sq := A1; sq <= H8; sq++ {
		if !sq.Valid() || p.pieces[sq] == None {
			continue
		}
		key ^= zobristPiece[p.sides[sq]][p.pieces[sq]][sq.Index64()]
	}
	if p.enPassant != NoSquare {
		key ^= zobristEnPassant[p.enPassant.File()]
	}
	key ^= zobristCastling[p.castling]
	if p.sideToMove == White {
		key ^= zobristSideToMove
	}
	return key
}
