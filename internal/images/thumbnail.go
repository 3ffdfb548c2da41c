package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"golang.org/x/image/draw"
)

// upperHalf draws the top pixel in the foreground colour and the bottom one in the background
const upperHalf = "▀"

// Thumbnail decodes data and renders it as cols x rows half-block art.
// Each terminal row carries two pixel rows.
func Thumbnail(data []byte, cols, rows int) (string, error) {
	if cols <= 0 || rows <= 0 {
		return "", nil
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, "decode image")
	}

	dst := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var b strings.Builder
	for y := 0; y < rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < cols; x++ {
			top := dst.RGBAAt(x, 2*y)
			bottom := dst.RGBAAt(x, 2*y+1)
			b.WriteString(lipgloss.NewStyle().
				Foreground(hexColour(top)).
				Background(hexColour(bottom)).
				Render(upperHalf))
		}
	}
	return b.String(), nil
}

// Placeholder renders a cols x rows block filled with fill, with label centred
// on the middle row when it fits.
func Placeholder(cols, rows int, fill, label string, style lipgloss.Style) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	line := strings.Repeat(fill, cols)
	lines := make([]string, rows)
	for i := range lines {
		lines[i] = line
	}
	if label != "" && len([]rune(label)) <= cols {
		pad := (cols - len([]rune(label))) / 2
		mid := rows / 2
		lines[mid] = strings.Repeat(fill, pad) + label + strings.Repeat(fill, cols-pad-len([]rune(label)))
	}
	for i, l := range lines {
		lines[i] = style.Render(l)
	}
	return strings.Join(lines, "\n")
}

func hexColour(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
