package documents

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/thuee/info-system-backend/internal/platform/logger"
)

// A4 at 150 dpi.
const (
	pngWidth  = 1240
	pngHeight = 1754
	pngMargin = 150.0
)

type pngAlign int

const (
	alignLeft pngAlign = iota
	alignCenter
	alignRight
)

type pngLine struct {
	text   string
	align  pngAlign
	title  bool
	indent float64
	gap    float64
}

type pngRenderer struct {
	font *truetype.Font
	size float64
}

// NewPNGRenderer parses the font at fontPath once. Faces are created per
// render because truetype faces cache glyphs and are not goroutine safe.
// Without a font the built-in bitmap face is used.
func NewPNGRenderer(log *logger.Logger, fontPath string, size float64) (Renderer, error) {
	if size <= 0 {
		size = 28
	}
	r := &pngRenderer{size: size}
	if p := strings.TrimSpace(fontPath); p != "" {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		parsed, err := truetype.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TTF: %w", err)
		}
		r.font = parsed
		log.Info("Loaded letter font", "font", p, "size", size)
	} else {
		log.Warn("LETTER_FONT_PATH not set, PNG letters use the bitmap fallback face")
	}
	return r, nil
}

func (r *pngRenderer) Format() string      { return FormatPNG }
func (r *pngRenderer) Ext() string         { return "png" }
func (r *pngRenderer) ContentType() string { return "image/png" }

func (r *pngRenderer) face(size float64) font.Face {
	if r.font == nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(r.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func (r *pngRenderer) Render(l Letter) ([]byte, error) {
	titleFace := r.face(r.size * 1.4)
	bodyFace := r.face(r.size)

	// Lay out on a scratch context first so the page can grow with long letters.
	measure := gg.NewContext(1, 1)
	measure.SetFontFace(bodyFace)
	textWidth := pngWidth - 2*pngMargin
	indent, _ := measure.MeasureString("国国")
	bodyHeight := measure.FontHeight() * 1.8

	lines := []pngLine{{text: l.Title, align: alignCenter, title: true, gap: bodyHeight}}
	lines = append(lines, pngLine{text: l.Salutation})
	for _, p := range l.Paragraphs {
		for i, w := range wrapRunes(measure, p, textWidth, indent) {
			line := pngLine{text: w}
			if i == 0 {
				line.indent = indent
			}
			lines = append(lines, line)
		}
	}
	lines = append(lines,
		pngLine{text: l.Department, align: alignRight, gap: bodyHeight},
		pngLine{text: l.Class, align: alignRight},
		pngLine{text: l.Date, align: alignRight},
	)

	measure.SetFontFace(titleFace)
	titleHeight := measure.FontHeight() * 1.8
	needed := 2 * pngMargin
	for _, ln := range lines {
		h := bodyHeight
		if ln.title {
			h = titleHeight
		}
		needed += h + ln.gap
	}
	height := int(math.Max(pngHeight, math.Ceil(needed)))

	dc := gg.NewContext(pngWidth, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.Black)

	y := pngMargin
	for _, ln := range lines {
		face, h := bodyFace, bodyHeight
		if ln.title {
			face, h = titleFace, titleHeight
		}
		dc.SetFontFace(face)
		y += h
		switch ln.align {
		case alignCenter:
			dc.DrawStringAnchored(ln.text, pngWidth/2, y, 0.5, 0)
		case alignRight:
			dc.DrawStringAnchored(ln.text, pngWidth-pngMargin, y, 1, 0)
		default:
			dc.DrawString(ln.text, pngMargin+ln.indent, y)
		}
		y += ln.gap
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// wrapRunes breaks s into lines no wider than width. CJK text has no spaces,
// so breaks fall between any two runes. The first line is narrower by indent.
func wrapRunes(dc *gg.Context, s string, width, indent float64) []string {
	var (
		out  []string
		line []rune
	)
	limit := width - indent
	for _, r := range s {
		next := append(line, r)
		if w, _ := dc.MeasureString(string(next)); w > limit && len(line) > 0 {
			out = append(out, string(line))
			line = []rune{r}
			limit = width
			continue
		}
		line = next
	}
	if len(line) > 0 || len(out) == 0 {
		out = append(out, string(line))
	}
	return out
}
