package tui

import (
	"math"

	"github.com/csheth/pdf2ai/internal/lifecycle"
)

const (
	iconWidth       = 28
	iconHeight      = 16
	iconStatusLines = 2
	iconChrome      = 4 // border plus the name and meta rows
	menuWidth       = 16
	menuGap         = 1
)

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

type screenLayout struct {
	width  int
	height int
}

func newScreenLayout() screenLayout {
	return screenLayout{width: 100, height: 32}
}

func (l *screenLayout) Update(width, height int) {
	l.width = max(width, minWindowWidth)
	l.height = max(height, minWindowHeight)
}

// body is the area between the header and the footer.
func (l screenLayout) body() rect {
	return rect{x: 0, y: headerHeight, w: l.width, h: l.height - headerHeight - footerHeight}
}

// iconRect places the icon box at its home position shifted by offset and
// kept inside the body together with its status lines.
func (l screenLayout) iconRect(offset lifecycle.Vec) rect {
	body := l.body()
	homeX := body.x + (body.w-iconWidth-menuGap-menuWidth)/2
	homeY := body.y + max(0, (body.h-iconHeight-iconStatusLines)/3)
	x := homeX + int(math.Round(offset.X))
	y := homeY + int(math.Round(offset.Y))
	x = clampInt(x, body.x, body.x+body.w-iconWidth)
	y = clampInt(y, body.y, body.y+body.h-iconHeight-iconStatusLines)
	return rect{x: x, y: y, w: iconWidth, h: iconHeight}
}

// menuRect sits to the right of the icon, or to the left when the right
// edge is too close.
func (l screenLayout) menuRect(icon rect) rect {
	h := len(lifecycle.MenuItems) + 2
	x := icon.x + icon.w + menuGap
	if x+menuWidth > l.width {
		x = max(0, icon.x-menuGap-menuWidth)
	}
	return rect{x: x, y: icon.y, w: menuWidth, h: h}
}

// menuItemAt maps a cell inside the menu to its entry.
func (l screenLayout) menuItemAt(icon rect, x, y int) (lifecycle.MenuItem, bool) {
	menu := l.menuRect(icon)
	if !menu.contains(x, y) {
		return 0, false
	}
	row := y - menu.y - 1
	if row < 0 || row >= len(lifecycle.MenuItems) {
		return 0, false
	}
	return lifecycle.MenuItems[row], true
}

// thumbSize is the page area inside the icon box.
func (l screenLayout) thumbSize() (int, int) {
	return iconWidth - 2, iconHeight - iconChrome
}

// fullRect is the in-place expanded view.
func (l screenLayout) fullRect() rect {
	return l.body()
}

// modalRect is the detached viewer, centered in the body.
func (l screenLayout) modalRect() rect {
	body := l.body()
	w := max(minWindowWidth-4, body.w*3/4)
	h := max(10, body.h*5/6)
	return rect{x: body.x + (body.w-w)/2, y: body.y + (body.h-h)/2, w: w, h: h}
}

// overlayRect holds the summary overlay.
func (l screenLayout) overlayRect() rect {
	body := l.body()
	w := min(body.w-4, 90)
	h := max(8, body.h-2)
	return rect{x: body.x + (body.w-w)/2, y: body.y + (body.h-h)/2, w: w, h: h}
}

// pageSize is the text grid for a full view page: the frame minus its
// border and the controls row.
func (l screenLayout) pageSize(view lifecycle.View) (int, int) {
	switch view {
	case lifecycle.ViewFull:
		r := l.fullRect()
		return max(1, r.w-4), max(1, r.h-3)
	case lifecycle.ViewModal:
		r := l.modalRect()
		return max(1, r.w-4), max(1, r.h-3)
	default:
		return l.thumbSize()
	}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
