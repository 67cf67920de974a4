package diagram

import (
	"fmt"
	"image"
	"strings"

	"github.com/pkg/errors"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/hailam/chess88/internal/board"
)

// Piece outlines on a 45x45 canvas.
var pieceShapes = map[board.PieceKind]string{
	board.Pawn: `<circle cx="22.5" cy="14" r="5.5"/>` +
		`<path d="M 18 20 L 27 20 L 30 33 L 15 33 Z"/>` +
		`<rect x="11" y="33" width="23" height="5"/>`,
	board.Knight: `<path d="M 12 37 L 34 37 L 32 26 C 32 16 28 10 20 9 L 19 5 L 16 10 L 11 17 L 11 21 L 15 22 L 19 19 L 21 21 L 14 30 Z"/>`,
	board.Bishop: `<circle cx="22.5" cy="8" r="2.5"/>` +
		`<path d="M 22.5 11 C 16 15 15 22 17 28 L 28 28 C 30 22 29 15 22.5 11 Z"/>` +
		`<path d="M 11 37 L 34 37 L 31 30 L 14 30 Z"/>`,
	board.Rook: `<path d="M 11 37 L 34 37 L 34 32 L 31 32 L 29 17 L 32 14 L 32 9 L 28 9 L 28 11 L 24.5 11 L 24.5 9 L 20.5 9 L 20.5 11 L 17 11 L 17 9 L 13 9 L 13 14 L 16 17 L 14 32 L 11 32 Z"/>`,
	board.Queen: `<path d="M 9 27 L 11 12 L 16 22 L 18.5 9 L 22.5 21 L 26.5 9 L 29 22 L 34 12 L 36 27 Z"/>` +
		`<path d="M 10 37 L 35 37 L 33 29 L 12 29 Z"/>`,
	board.King: `<path d="M 20.5 5 L 24.5 5 L 24.5 8 L 27.5 8 L 27.5 12 L 24.5 12 L 24.5 16 L 20.5 16 L 20.5 12 L 17.5 12 L 17.5 8 L 20.5 8 Z"/>` +
		`<path d="M 12 31 C 8 23 14 17 22.5 19 C 31 17 37 23 33 31 Z"/>` +
		`<rect x="11" y="32" width="23" height="5"/>`,
}

type pieceStyle struct {
	fill, stroke string
}

var pieceStyles = [2]pieceStyle{
	board.Black: {fill: "#1e1e1e", stroke: "#000000"},
	board.White: {fill: "#ffffff", stroke: "#000000"},
}

// pieceSVG returns a standalone SVG document for a piece.
func pieceSVG(kind board.PieceKind, side board.Side) string {
	style := pieceStyles[side]
	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="45" height="45" viewBox="0 0 45 45">`)
	fmt.Fprintf(&b, `<g fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round">`, style.fill, style.stroke)
	b.WriteString(pieceShapes[kind])
	b.WriteString(`</g></svg>`)
	return b.String()
}

type spriteKey struct {
	kind board.PieceKind
	side board.Side
}

// rasterizePieces renders every piece icon at size x size pixels.
func rasterizePieces(size int) (map[spriteKey]*image.RGBA, error) {
	sprites := make(map[spriteKey]*image.RGBA, 12)

	for _, side := range []board.Side{board.White, board.Black} {
		for kind := board.Pawn; kind <= board.King; kind++ {
			icon, err := oksvg.ReadIconStream(strings.NewReader(pieceSVG(kind, side)))
			if err != nil {
				return nil, errors.Wrapf(err, "parse %s %s icon", side, kind)
			}
			icon.SetTarget(0, 0, float64(size), float64(size))

			rgba := image.NewRGBA(image.Rect(0, 0, size, size))
			scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
			raster := rasterx.NewDasher(size, size, scanner)
			icon.Draw(raster, 1.0)

			sprites[spriteKey{kind, side}] = rgba
		}
	}
	return sprites, nil
}
