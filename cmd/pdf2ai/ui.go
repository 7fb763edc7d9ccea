package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ui prints status lines for the non-interactive commands.
type ui struct {
	out     io.Writer
	noColor bool
}

func newUI(out io.Writer, noColor bool) *ui {
	return &ui{out: out, noColor: noColor}
}

func (u *ui) Success(format string, args ...any) {
	u.print(color.FgGreen, "✓ ", format, args...)
}

func (u *ui) Error(format string, args ...any) {
	u.print(color.FgRed, "✗ ", format, args...)
}

func (u *ui) Info(format string, args ...any) {
	u.print(color.FgCyan, "ℹ ", format, args...)
}

func (u *ui) print(attr color.Attribute, prefix, format string, args ...any) {
	line := prefix + fmt.Sprintf(format, args...) + "\n"
	if u.noColor {
		fmt.Fprint(u.out, line)
		return
	}
	color.New(attr).Fprint(u.out, line)
}
