package preview

import (
	"math"
	"strings"
	"unicode"

	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// Layout lays text out on a Width x Height grid. Scale below 1 narrows the
// text column; scale of 2 or more widens each glyph to that many cells.
// Rotation turns the grid clockwise in 90 degree steps. Without a text
// layer every glyph becomes a shade block.
func Layout(text string, opts RenderOptions) []string {
	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		return nil
	}
	rotation := ((opts.Rotation % 360) + 360) % 360
	gridW, gridH := width, height
	if rotation == 90 || rotation == 270 {
		gridW, gridH = height, width
	}

	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	cellsPerRune := max(1, int(math.Floor(scale)))
	column := int(float64(gridW) * math.Min(scale, 1))
	wrapAt := max(1, column/cellsPerRune)

	var lines []string
	for _, para := range strings.Split(normalize(text), "\n") {
		wrapped := wordwrap.String(para, wrapAt)
		for _, line := range strings.Split(wrapped, "\n") {
			lines = append(lines, widen(line, cellsPerRune))
			if len(lines) == gridH {
				break
			}
		}
		if len(lines) == gridH {
			break
		}
	}

	grid := make([][]rune, gridH)
	for y := range grid {
		row := []rune(strings.Repeat(" ", gridW))
		if y < len(lines) {
			clipped := []rune(truncate.String(lines[y], uint(gridW)))
			copy(row, clipped)
		}
		grid[y] = row
	}

	grid = rotate(grid, rotation)
	if !opts.TextLayer {
		shade(grid)
	}

	out := make([]string, len(grid))
	for y, row := range grid {
		out[y] = string(row)
	}
	return out
}

func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(text)
}

func widen(line string, cells int) string {
	if cells <= 1 {
		return line
	}
	var b strings.Builder
	pad := strings.Repeat(" ", cells-1)
	for _, r := range line {
		b.WriteRune(r)
		b.WriteString(pad)
	}
	return b.String()
}

func rotate(grid [][]rune, rotation int) [][]rune {
	for i := 0; i < rotation/90; i++ {
		grid = rotateClockwise(grid)
	}
	return grid
}

func rotateClockwise(grid [][]rune) [][]rune {
	if len(grid) == 0 {
		return grid
	}
	h, w := len(grid), len(grid[0])
	out := make([][]rune, w)
	for y := 0; y < w; y++ {
		out[y] = make([]rune, h)
		for x := 0; x < h; x++ {
			out[y][x] = grid[h-1-x][y]
		}
	}
	return out
}

func shade(grid [][]rune) {
	for _, row := range grid {
		for x, r := range row {
			switch {
			case unicode.IsSpace(r):
				row[x] = ' '
			case unicode.IsLetter(r) || unicode.IsDigit(r):
				row[x] = '▒'
			default:
				row[x] = '░'
			}
		}
	}
}
