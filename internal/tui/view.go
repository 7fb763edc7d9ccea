package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/pdf2ai/internal/document"
	"github.com/csheth/pdf2ai/internal/lifecycle"
)

func (m *model) View() string {
	st := m.ctrl.State()
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(st),
		m.bodyView(st),
		m.footerView(st),
	)
}

func (m *model) headerView(st lifecycle.State) string {
	title := titleStyle.Render("PDF2AI") + "  " + taglineStyle.Render(heroTagline)
	info := "No document"
	if st.FileName != "" {
		parts := []string{st.FileName, document.FormatSize(st.FileSize)}
		if st.PageCount > 0 {
			parts = append(parts, pageLabel(st.PageCount))
		}
		info = strings.Join(parts, " · ")
	}
	return clip(title, m.layout.width) + "\n" + helperStyle.Render(clip(info, m.layout.width))
}

func (m *model) bodyView(st lifecycle.State) string {
	body := m.layout.body()
	var content string
	switch {
	case !st.HasDocument():
		content = m.dropZoneView(st)
	case st.Mode == lifecycle.Expanded:
		content = m.pageView(st, lifecycle.ViewFull, pageFrameStyle)
	case st.Mode == lifecycle.ModalOpen:
		r := m.layout.modalRect()
		content = place(m.pageView(st, lifecycle.ViewModal, modalFrameStyle), r.x, r.y, body)
	case st.SummaryOverlay:
		r := m.layout.overlayRect()
		content = place(m.overlayView(r), r.x, r.y, body)
	default:
		content = m.iconScene(st)
	}
	return lipgloss.NewStyle().MaxWidth(body.w).Height(body.h).MaxHeight(body.h).Render(content)
}

func (m *model) dropZoneView(st lifecycle.State) string {
	body := m.layout.body()
	lines := []string{titleStyle.Render("Drop a PDF here"), taglineStyle.Render(heroTagline), ""}
	if st.Failure != nil {
		lines = append(lines, errorStyle.Render(st.Failure.Message))
		if st.FileName != "" {
			lines = append(lines, helperStyle.Render(st.FileName+" · "+document.FormatSize(st.FileSize)))
		}
		lines = append(lines, helperStyle.Render("Press ? for details, or open another file."))
	}
	if m.errorMessage != "" {
		lines = append(lines, errorStyle.Render(m.errorMessage))
	}
	lines = append(lines, "")
	if m.pathActive {
		lines = append(lines, m.pathInput.View())
	} else {
		lines = append(lines, helperStyle.Render(idleHint))
	}
	block := dropZoneStyle.Render(strings.Join(lines, "\n"))
	if details := m.detailsView(st); details != "" {
		block = lipgloss.JoinVertical(lipgloss.Center, block, details)
	}
	return lipgloss.Place(body.w, body.h, lipgloss.Center, lipgloss.Center, block)
}

// iconScene draws the icon at its layout position with its status lines,
// the context menu and the details panel.
func (m *model) iconScene(st lifecycle.State) string {
	icon := m.layout.iconRect(st.Position.Add(st.DragOffset))
	block := m.iconBox(st) + "\n" + m.iconStatus(st)
	x := icon.x
	if st.MenuVisible {
		menu := m.layout.menuRect(icon)
		gap := strings.Repeat(" ", menuGap)
		if menu.x > icon.x {
			block = lipgloss.JoinHorizontal(lipgloss.Top, block, gap, m.menuView())
		} else {
			block = lipgloss.JoinHorizontal(lipgloss.Top, m.menuView(), gap, block)
			x = menu.x
		}
	}
	if details := m.detailsView(st); details != "" {
		block = lipgloss.JoinVertical(lipgloss.Left, block, details)
	}
	return place(block, x, icon.y, m.layout.body())
}

func (m *model) iconBox(st lifecycle.State) string {
	tw, th := m.layout.thumbSize()
	rows := m.thumbnail(st, tw, th)
	if st.ScanLineVisible {
		rows[scanRow(st.Progress, th)] = scanLineStyle.Render(strings.Repeat("━", tw))
	}
	meta := document.FormatSize(st.FileSize)
	if st.PageCount > 0 {
		meta += " · " + pageLabel(st.PageCount)
	}
	rows = append(rows, clip(st.FileName, tw), helperStyle.Render(clip(meta, tw)))

	style := iconStyle
	switch st.Presented() {
	case lifecycle.Scanning:
		style = style.BorderForeground(scanColor)
	case lifecycle.SummaryReady:
		style = style.BorderForeground(readyColor)
	case lifecycle.ErrorState:
		style = style.BorderForeground(failureColor)
	}
	if m.ctrl.GesturePhase() == lifecycle.GestureDragging {
		style = style.BorderStyle(lipgloss.DoubleBorder())
	}
	return style.Width(tw).Render(strings.Join(rows, "\n"))
}

func (m *model) thumbnail(st lifecycle.State, w, h int) []string {
	rows := make([]string, h)
	page, ok := m.pages[lifecycle.ViewIcon]
	if ok && page.docID == st.DocumentID {
		for i := range rows {
			line := ""
			if i < len(page.lines) {
				line = page.lines[i]
			}
			rows[i] = thumbStyle.Render(padRight(line, w))
		}
		return rows
	}
	label := "loading…"
	if st.LoadFailure != nil {
		label = "no preview"
	}
	for i := range rows {
		line := ""
		if i == h/2 {
			line = lipgloss.PlaceHorizontal(w, lipgloss.Center, label)
		}
		rows[i] = thumbStyle.Render(padRight(line, w))
	}
	return rows
}

func (m *model) iconStatus(st lifecycle.State) string {
	var first, second string
	switch st.Presented() {
	case lifecycle.Scanning:
		first = m.progress.ViewAs(st.Progress)
		second = fmt.Sprintf("%s Summarizing… %d%%", m.spinner.View(), int(math.Round(st.Progress*100)))
	case lifecycle.SummaryReady:
		first = readyStyle.Render("✓ Summary ready")
		second = helperStyle.Render("tab read · s regenerate")
	case lifecycle.ErrorState:
		message := ""
		if st.Failure != nil {
			message = st.Failure.Message
		}
		first = errorStyle.Render(clip(message, iconWidth))
		second = helperStyle.Render("s retry · ? details")
	default:
		first = helperStyle.Render("Ready to summarize")
		second = helperStyle.Render("s summarize · enter open")
	}
	if st.LoadFailure != nil && st.Presented() != lifecycle.ErrorState {
		second = errorStyle.Render(clip(st.LoadFailure.Message, iconWidth))
	}
	return first + "\n" + second
}

func (m *model) menuView() string {
	rows := make([]string, len(lifecycle.MenuItems))
	for i, item := range lifecycle.MenuItems {
		rows[i] = menuItemStyle.Render(fmt.Sprintf("%d %s", i+1, item))
	}
	return menuStyle.Width(menuWidth - 2).Render(strings.Join(rows, "\n"))
}

func (m *model) detailsView(st lifecycle.State) string {
	failure := st.Diagnostic()
	if !st.ShowDetails || failure == nil {
		return ""
	}
	width := max(20, min(m.layout.width-6, 60))
	lines := []string{sectionStyle.Render("Details"), "kind: " + string(failure.Kind)}
	if detail := failure.Detail(); detail != "" {
		lines = append(lines, wordwrap.String(detail, width))
	}
	if st.FileName != "" {
		lines = append(lines, "file: "+clip(st.FileName, width-6))
	}
	return detailsStyle.Width(width + 2).Render(strings.Join(lines, "\n"))
}

func (m *model) pageView(st lifecycle.State, view lifecycle.View, frame lipgloss.Style) string {
	w, h := m.layout.pageSize(view)
	lines := m.pageLines(st, view, w, h)
	lines = append(lines, m.controlsRow(st, w))
	return frame.Width(w + 2).Render(strings.Join(lines, "\n"))
}

func (m *model) pageLines(st lifecycle.State, view lifecycle.View, w, h int) []string {
	number := st.ViewPage()
	var label string
	switch {
	case st.PageError != nil && st.PageErrorPage == number:
		label = errorStyle.Render(clip(st.PageError.Message, w))
	case st.LoadFailure != nil:
		label = errorStyle.Render(clip(st.LoadFailure.Message, w))
	}
	page, ok := m.pages[view]
	if label == "" && ok && page.docID == st.DocumentID && page.number == number {
		rows := make([]string, h)
		for i := range rows {
			if i < len(page.lines) {
				rows[i] = padRight(page.lines[i], w)
			} else {
				rows[i] = strings.Repeat(" ", w)
			}
		}
		return rows
	}
	if label == "" {
		label = helperStyle.Render(fmt.Sprintf("%s Rendering page %d…", m.spinner.View(), number))
	}
	block := lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, label)
	return strings.Split(block, "\n")
}

func (m *model) controlsRow(st lifecycle.State, w int) string {
	count := "?"
	if st.PageCount > 0 {
		count = fmt.Sprint(st.PageCount)
	}
	row := fmt.Sprintf("◀ %d / %s ▶   %d%%   %d°   esc close", st.ViewPage(), count, int(math.Round(st.Scale*100)), st.Rotation)
	if !st.CanNavigate() {
		row += "   navigation unavailable"
	}
	return helperStyle.Render(clip(row, w))
}

func (m *model) overlayView(r rect) string {
	footer := fmt.Sprintf("%3.f%% · ↑/↓ scroll · tab close", m.overlay.ScrollPercent()*100)
	content := strings.Join([]string{
		sectionStyle.Render("Summary"),
		m.overlay.View(),
		helperStyle.Render(footer),
	}, "\n")
	return overlayStyle.Width(r.w - 2).Render(content)
}

func (m *model) footerView(st lifecycle.State) string {
	width := m.layout.width
	status := statusBarStyle.Render(st.Presented().String())
	switch {
	case m.pathActive:
		status += " " + m.pathInput.View()
	case m.errorMessage != "":
		status += " " + errorStyle.Render(m.errorMessage)
	default:
		notice := m.notice
		if m.busy() {
			notice = m.spinner.View() + " " + notice
		}
		status += " " + helperStyle.Render(notice)
	}
	return clip(status, width) + "\n" + clip(m.legendView(st), width)
}

func (m *model) legendView(st lifecycle.State) string {
	var hints []keyHint
	switch {
	case m.pathActive:
		hints = []keyHint{{"enter", "open"}, {"esc", "cancel"}}
	case st.Mode.IsFullView():
		hints = []keyHint{hint(m.keys.Prev), hint(m.keys.Next), hint(m.keys.ZoomIn), hint(m.keys.ZoomOut), hint(m.keys.Rotate), hint(m.keys.Escape)}
	case st.SummaryOverlay:
		hints = []keyHint{hint(m.keys.ScrollUp), hint(m.keys.Overlay), hint(m.keys.Escape), hint(m.keys.Quit)}
	case st.HasDocument():
		hints = []keyHint{hint(m.keys.Summarize), hint(m.keys.Expand), hint(m.keys.Show), hint(m.keys.Menu), hint(m.keys.Delete), hint(m.keys.Open)}
		if st.Mode == lifecycle.SummaryReady {
			hints = append(hints, hint(m.keys.Overlay))
		}
		if st.Diagnostic() != nil {
			hints = append(hints, hint(m.keys.Details))
		}
		hints = append(hints, hint(m.keys.Quit))
	default:
		hints = []keyHint{hint(m.keys.Open), hint(m.keys.Quit)}
		if st.Diagnostic() != nil {
			hints = append(hints, hint(m.keys.Details))
		}
	}
	cells := make([]string, len(hints))
	for i, h := range hints {
		cells[i] = keyStyle.Render(h.Key) + keyDescStyle.Render(" "+h.Description)
	}
	return strings.Join(cells, " ")
}

// place offsets block to (x, y) inside area.
func place(block string, x, y int, area rect) string {
	pad := strings.Repeat(" ", max(0, x-area.x))
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		lines[i] = pad + line
	}
	return strings.Repeat("\n", max(0, y-area.y)) + strings.Join(lines, "\n")
}

func scanRow(progress float64, rows int) int {
	return clampInt(int(progress*float64(rows-1)), 0, rows-1)
}

func padRight(line string, w int) string {
	line = truncate.String(line, uint(w))
	return line + strings.Repeat(" ", max(0, w-lipgloss.Width(line)))
}

func clip(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return truncate.StringWithTail(s, uint(w), "…")
}

func pageLabel(n int) string {
	if n == 1 {
		return "1 page"
	}
	return fmt.Sprintf("%d pages", n)
}
