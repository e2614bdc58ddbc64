// Package textmeasure measures the pixel extents of text drawn with the Go
// fonts. Table widths and the raster renderer both go through a Ruler so
// that measured text and drawn text agree.
package textmeasure

import (
	"math"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const TAB_SIZE = 4

// Font identifies a face by pixel size and weight.
type Font struct {
	Size int
	Bold bool
}

type Ruler struct {
	// LineHeightFactor scales the face's line height for multi-line text.
	LineHeightFactor float64

	mu    sync.Mutex
	ttfs  map[bool]*truetype.Font
	faces map[Font]font.Face
}

// NewRuler parses the embedded regular and bold fonts. Faces for each size
// are created lazily on first use.
func NewRuler() (*Ruler, error) {
	r := &Ruler{
		LineHeightFactor: 1.,
		ttfs:             make(map[bool]*truetype.Font),
		faces:            make(map[Font]font.Face),
	}
	for bold, ttf := range map[bool][]byte{
		false: goregular.TTF,
		true:  gobold.TTF,
	} {
		f, err := truetype.Parse(ttf)
		if err != nil {
			return nil, err
		}
		r.ttfs[bold] = f
	}
	return r, nil
}

// Face returns the face for f. Faces are not safe for concurrent drawing;
// callers that draw in parallel should use their own Ruler.
func (r *Ruler) Face(f Font) font.Face {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.face(f)
}

func (r *Ruler) face(f Font) font.Face {
	if face, ok := r.faces[f]; ok {
		return face
	}
	size := f.Size
	if size <= 0 {
		size = 12
	}
	face := truetype.NewFace(r.ttfs[f.Bold], &truetype.Options{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	r.faces[f] = face
	return face
}

// Measure returns the rounded up extents of s. Each line of s is measured
// separately; the width is that of the widest line.
func (r *Ruler) Measure(f Font, s string) (width, height int) {
	w, h := r.MeasurePrecise(f, s)
	return int(math.Ceil(w)), int(math.Ceil(h))
}

func (r *Ruler) MeasurePrecise(f Font, s string) (width, height float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	face := r.face(f)
	lineHeight := toFloat(face.Metrics().Height) * r.LineHeightFactor

	lines := strings.Split(s, "\n")
	for _, line := range lines {
		line = strings.ReplaceAll(line, "\t", strings.Repeat(" ", TAB_SIZE))
		width = math.Max(width, toFloat(font.MeasureString(face, line)))
	}
	if s == "" {
		return 0, lineHeight
	}
	return width, lineHeight * float64(len(lines))
}

// Ascent is the distance from the top of a line to its baseline.
func (r *Ruler) Ascent(f Font) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return toFloat(r.face(f).Metrics().Ascent)
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
