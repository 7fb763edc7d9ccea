package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/pdf2ai/internal/lifecycle"
)

// handleMouse routes pointer input. Terminals report a held-button drag as
// repeated left presses, so a press during an active gesture is a move.
func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.pathActive {
		return m, nil
	}
	st := m.ctrl.State()
	switch {
	case st.Mode == lifecycle.ModalOpen:
		return m, m.modalMouse(msg)
	case st.Mode == lifecycle.Expanded:
		return m, m.pageWheel(msg)
	case st.SummaryOverlay:
		return m, m.overlayMouse(msg)
	}
	return m, m.iconMouse(msg)
}

func (m *model) modalMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Type == tea.MouseLeft && !m.layout.modalRect().contains(msg.X, msg.Y) {
		return m.apply(m.ctrl.CloseModal())
	}
	return m.pageWheel(msg)
}

func (m *model) pageWheel(msg tea.MouseMsg) tea.Cmd {
	switch msg.Type {
	case tea.MouseWheelUp:
		return m.apply(m.ctrl.PrevPage())
	case tea.MouseWheelDown:
		return m.apply(m.ctrl.NextPage())
	}
	return nil
}

func (m *model) overlayMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Type {
	case tea.MouseWheelUp, tea.MouseWheelDown:
		var cmd tea.Cmd
		m.overlay, cmd = m.overlay.Update(msg)
		return cmd
	case tea.MouseLeft:
		if !m.layout.overlayRect().contains(msg.X, msg.Y) {
			return m.apply(m.ctrl.ToggleSummaryOverlay())
		}
	}
	return nil
}

func (m *model) iconMouse(msg tea.MouseMsg) tea.Cmd {
	st := m.ctrl.State()
	pos := lifecycle.Vec{X: float64(msg.X), Y: float64(msg.Y)}
	icon := m.layout.iconRect(st.Position.Add(st.DragOffset))

	switch msg.Type {
	case tea.MouseLeft:
		if m.ctrl.GestureActive() {
			return m.apply(m.ctrl.PointerMove(pos))
		}
		if st.MenuVisible {
			if item, ok := m.layout.menuItemAt(icon, msg.X, msg.Y); ok {
				return m.menuSelect(item)
			}
		}
		if st.HasDocument() && icon.contains(msg.X, msg.Y) {
			return m.apply(m.ctrl.PointerDown(pos))
		}
		if st.MenuVisible {
			return m.apply(m.ctrl.HoverLeave())
		}
	case tea.MouseMotion:
		if m.ctrl.GestureActive() {
			return m.apply(m.ctrl.PointerMove(pos))
		}
		return m.hover(icon, msg.X, msg.Y)
	case tea.MouseRelease:
		if m.ctrl.GestureActive() {
			return m.apply(m.ctrl.PointerUp(pos))
		}
	}
	return nil
}

// hover shows the menu while the pointer is over the icon or the menu.
func (m *model) hover(icon rect, x, y int) tea.Cmd {
	st := m.ctrl.State()
	if !st.HasDocument() {
		return nil
	}
	over := icon.contains(x, y) || (st.MenuVisible && m.layout.menuRect(icon).contains(x, y))
	switch {
	case over && !st.MenuVisible:
		return m.apply(m.ctrl.HoverEnter())
	case !over && st.MenuVisible:
		return m.apply(m.ctrl.HoverLeave())
	}
	return nil
}
