// Package diagram renders positions as PNG board diagrams.
package diagram

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/hailam/chess88/internal/board"
)

// Board colours
var (
	lightSquare     = color.RGBA{0xf0, 0xd9, 0xb5, 0xff}
	darkSquare      = color.RGBA{0xb5, 0x88, 0x63, 0xff}
	lightHighlight  = color.RGBA{0xf7, 0xec, 0x74, 0xff}
	darkHighlight   = color.RGBA{0xda, 0xc3, 0x4b, 0xff}
	backgroundColor = color.RGBA{0x30, 0x2e, 0x2b, 0xff}
	labelColor      = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
)

// Options controls diagram layout.
type Options struct {
	SquareSize  int        // Pixels per square
	Flip        bool       // Draw from Black's side
	Coordinates bool       // Draw file and rank labels in a margin
	LastMove    board.Move // Squares to highlight, NoMove for none
}

// DefaultOptions returns a 64px-per-square diagram with coordinates.
func DefaultOptions() Options {
	return Options{
		SquareSize:  64,
		Coordinates: true,
		LastMove:    board.NoMove,
	}
}

// Renderer draws positions. Piece sprites are rasterised once per renderer.
type Renderer struct {
	opts    Options
	margin  int
	face    font.Face
	sprites map[spriteKey]*image.RGBA
}

// NewRenderer prepares sprites and the label font for opts.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.SquareSize < 8 {
		return nil, errors.Errorf("square size %d too small", opts.SquareSize)
	}

	sprites, err := rasterizePieces(opts.SquareSize)
	if err != nil {
		return nil, err
	}

	r := &Renderer{opts: opts, sprites: sprites}
	if opts.Coordinates {
		r.margin = opts.SquareSize * 3 / 8
		r.face, err = labelFace(float64(r.margin) * 0.6)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

func labelFace(size float64) (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parse label font")
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create label face")
	}
	return face, nil
}

// Size returns the edge length of rendered images in pixels.
func (r *Renderer) Size() int {
	return 8*r.opts.SquareSize + 2*r.margin
}

// squareRect returns the pixel rectangle of sq.
func (r *Renderer) squareRect(sq board.Square) image.Rectangle {
	col, row := sq.File(), 7-sq.Rank()
	if r.opts.Flip {
		col, row = 7-col, 7-row
	}
	x := r.margin + col*r.opts.SquareSize
	y := r.margin + row*r.opts.SquareSize
	return image.Rect(x, y, x+r.opts.SquareSize, y+r.opts.SquareSize)
}

func (r *Renderer) squareColor(sq board.Square) color.Color {
	dark := (sq.File()+sq.Rank())%2 == 0
	lit := !r.opts.LastMove.IsNone() && (sq == r.opts.LastMove.From || sq == r.opts.LastMove.To)
	switch {
	case dark && lit:
		return darkHighlight
	case dark:
		return darkSquare
	case lit:
		return lightHighlight
	}
	return lightSquare
}

// Render draws pos.
func (r *Renderer) Render(pos *board.Position) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Size(), r.Size()))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			sq := board.NewSquare(file, rank)
			rect := r.squareRect(sq)
			draw.Draw(img, rect, image.NewUniform(r.squareColor(sq)), image.Point{}, draw.Src)

			kind, side := pos.PieceAt(sq)
			if kind == board.None {
				continue
			}
			sprite := r.sprites[spriteKey{kind, side}]
			draw.Draw(img, rect, sprite, image.Point{}, draw.Over)
		}
	}

	if r.face != nil {
		r.drawLabels(img)
	}
	return img
}

func (r *Renderer) drawLabels(img *image.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: r.face,
	}
	ascent := r.face.Metrics().Ascent.Round()
	sqSize := r.opts.SquareSize

	for i := 0; i < 8; i++ {
		file, rank := i, i
		if r.opts.Flip {
			file, rank = 7-i, 7-i
		}

		s := string(rune('a' + file))
		w := d.MeasureString(s).Round()
		x := r.margin + i*sqSize + (sqSize-w)/2
		d.Dot = fixed.P(x, r.margin+8*sqSize+(r.margin+ascent)/2)
		d.DrawString(s)

		s = string(rune('1' + rank))
		w = d.MeasureString(s).Round()
		y := r.margin + (7-i)*sqSize + (sqSize+ascent)/2
		d.Dot = fixed.P((r.margin-w)/2, y)
		d.DrawString(s)
	}
}

// WritePNG encodes a diagram of pos to w.
func (r *Renderer) WritePNG(w io.Writer, pos *board.Position) error {
	return errors.Wrap(png.Encode(w, r.Render(pos)), "encode png")
}

// SaveFile writes a diagram of pos to path.
func SaveFile(path string, pos *board.Position, opts Options) error {
	r, err := NewRenderer(opts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := r.WritePNG(f, pos); err != nil {
		f.Close()
		return err
	}
	return errors.WithStack(f.Close())
}
