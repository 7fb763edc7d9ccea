package tuitest

import "fmt"

var (
	// KeyEnter sends a carriage return.
	KeyEnter = []byte{'\r'}
	// KeyCtrlC interrupts the program.
	KeyCtrlC = []byte{3}
	// KeyEsc closes the innermost surface.
	KeyEsc = []byte{27}
	// KeyTab toggles the summary overlay.
	KeyTab = []byte{'\t'}
)

// Keys types s one rune at a time as plain input.
func Keys(s string) []byte {
	return []byte(s)
}

// Paste wraps s in bracketed paste markers, the way terminals deliver a
// dropped file path.
func Paste(s string) []byte {
	return []byte("\x1b[200~" + s + "\x1b[201~")
}

// MousePress is an SGR left-button press at the zero-based cell (x, y).
func MousePress(x, y int) []byte {
	return sgrMouse(0, x, y, 'M')
}

// MouseRelease is an SGR left-button release at (x, y).
func MouseRelease(x, y int) []byte {
	return sgrMouse(0, x, y, 'm')
}

// MouseMove is an SGR pointer motion with no button held.
func MouseMove(x, y int) []byte {
	return sgrMouse(35, x, y, 'M')
}

// MouseDrag is an SGR pointer motion with the left button held.
func MouseDrag(x, y int) []byte {
	return sgrMouse(32, x, y, 'M')
}

// Click is a press followed by a release at the same cell.
func Click(x, y int) []byte {
	return append(MousePress(x, y), MouseRelease(x, y)...)
}

func sgrMouse(button, x, y int, final byte) []byte {
	return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", button, x+1, y+1, final))
}
