package compose

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// typeface measures rendered text widths in pixels
type typeface struct {
	font  *opentype.Font
	faces map[int]font.Face
}

func loadTypeface(fontFile string) (*typeface, error) {
	data := gobold.TTF
	if fontFile != "" {
		var err error
		data, err = os.ReadFile(fontFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &typeface{font: f, faces: map[int]font.Face{}}, nil
}

func (t *typeface) face(size int) (font.Face, error) {
	if f, ok := t.faces[size]; ok {
		return f, nil
	}
	// 72 DPI makes one point one pixel, matching drawtext's fontsize.
	f, err := opentype.NewFace(t.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	t.faces[size] = f
	return f, nil
}

func (t *typeface) width(s string, size int) (int, error) {
	f, err := t.face(size)
	if err != nil {
		return 0, err
	}
	return font.MeasureString(f, s).Ceil(), nil
}

// minFontSize is the smallest caption size fit will shrink to
const minFontSize = 16

// fit lowers size until the widest word of text is no wider than maxWidth,
// stopping at minFontSize.
func (t *typeface) fit(text string, size, maxWidth int) (int, error) {
	words := strings.Fields(text)
	for ; size > minFontSize; size-- {
		widest := 0
		for _, w := range words {
			width, err := t.width(w, size)
			if err != nil {
				return 0, err
			}
			widest = max(widest, width)
		}
		if widest <= maxWidth {
			break
		}
	}
	return size, nil
}

// wrap greedily fills lines no wider than maxWidth. A word that still does
// not fit on a line of its own is broken between glyphs.
func (t *typeface) wrap(text string, size, maxWidth int) ([]string, error) {
	var words []string
	for _, w := range strings.Fields(text) {
		parts, err := t.split(w, size, maxWidth)
		if err != nil {
			return nil, err
		}
		words = append(words, parts...)
	}
	if len(words) == 0 {
		return nil, nil
	}

	var lines []string
	current := words[0]
	for _, w := range words[1:] {
		candidate := current + " " + w
		width, err := t.width(candidate, size)
		if err != nil {
			return nil, err
		}
		if width <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = w
	}
	return append(lines, current), nil
}

// split cuts word into pieces no wider than maxWidth. A piece always holds at
// least one glyph.
func (t *typeface) split(word string, size, maxWidth int) ([]string, error) {
	width, err := t.width(word, size)
	if err != nil || width <= maxWidth {
		return []string{word}, err
	}

	var parts []string
	var current []rune
	for _, r := range word {
		candidate := string(append(current, r))
		width, err := t.width(candidate, size)
		if err != nil {
			return nil, err
		}
		if width > maxWidth && len(current) > 0 {
			parts = append(parts, string(current))
			current = []rune{r}
			continue
		}
		current = append(current, r)
	}
	return append(parts, string(current)), nil
}
