package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smazurov/ptzdeck/internal/console"
	"github.com/smazurov/ptzdeck/internal/editor"
	"github.com/smazurov/ptzdeck/internal/models"
	"github.com/smazurov/ptzdeck/internal/render"
	"github.com/smazurov/ptzdeck/internal/store"
)

// Style definitions
var (
	headerStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	slotStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	selectedSlotStyle = slotStyle.
				BorderForeground(lipgloss.Color("212"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(1, 2)

	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
)

var badgeColors = map[render.Badge]lipgloss.Color{
	render.BadgeGreen:  lipgloss.Color("42"),
	render.BadgeYellow: lipgloss.Color("220"),
	render.BadgeRed:    lipgloss.Color("196"),
	render.BadgeGray:   lipgloss.Color("244"),
}

var healthColors = map[store.HealthState]lipgloss.Color{
	store.HealthOK:       lipgloss.Color("42"),
	store.HealthDegraded: lipgloss.Color("220"),
	store.HealthOffline:  lipgloss.Color("196"),
	store.HealthUnknown:  lipgloss.Color("244"),
}

// View renders the UI
func (m *Model) View() string {
	if m.state.Notice != nil {
		return m.renderNotice(*m.state.Notice)
	}

	sections := []string{m.renderHeader()}
	switch m.mode {
	case modeForm:
		sections = append(sections, m.renderForm())
	default:
		sections = append(sections, m.renderGrid(), m.renderControls())
		switch m.mode {
		case modePresets, modePresetName:
			sections = append(sections, m.renderPresets())
		case modeConfirmDelete:
			sections = append(sections, errorStyle.Render(
				fmt.Sprintf("Delete camera %s? Press y to confirm, any other key to cancel.", m.deleteID)))
		}
		if m.state.LogDrawerOpen {
			sections = append(sections, m.renderLogs())
		}
	}
	sections = append(sections, m.renderStatus())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	health := m.state.Health
	color, ok := healthColors[health.State]
	if !ok {
		color = healthColors[store.HealthUnknown]
	}
	healthText := lipgloss.NewStyle().Foreground(color).Render("● " + string(health.State))
	if health.PreviewError > 0 || health.ControlError > 0 {
		healthText += fmt.Sprintf(" (preview errors %d, control errors %d)", health.PreviewError, health.ControlError)
	}

	right := fmt.Sprintf("%s  %s", healthText, m.now.Format("15:04:05"))
	width := max(m.width-lipgloss.Width(m.title)-4, 0)
	content := lipgloss.JoinHorizontal(lipgloss.Center,
		m.title,
		lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(right),
	)
	return headerStyle.Width(m.width).Render(content)
}

func (m *Model) renderGrid() string {
	slots := m.state.Grid
	if len(slots) == 0 {
		return mutedStyle.Render("Waiting for cameras...")
	}
	cellWidth := max(m.width/2-4, 24)
	cells := make([]string, len(slots))
	for i, slot := range slots {
		cells[i] = m.renderSlot(slot, cellWidth)
	}
	rows := make([]string, 0, (len(cells)+1)/2)
	for i := 0; i < len(cells); i += 2 {
		end := min(i+2, len(cells))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderSlot(slot render.SlotView, width int) string {
	style := slotStyle.Width(width)
	if slot.Empty {
		return style.Render(mutedStyle.Render(fmt.Sprintf("[%d] empty\n\na to add camera", slot.Index+1)))
	}
	cam := slot.Camera
	if cam.ID == m.state.Selected {
		style = selectedSlotStyle.Width(width)
	}

	name := cam.Name
	if name == "" {
		name = cam.ID
	}
	badges := badge(slot.ControlBadge, "ctl") + " " + badge(slot.PreviewBadge, "prv")
	lines := []string{
		fmt.Sprintf("[%d] %s  %s", slot.Index+1, name, badges),
		mutedStyle.Render(fmt.Sprintf("%s · %s", slot.Strategy, describePlayer(slot.Player))),
	}
	if slot.Player.Overlay != "" {
		lines = append(lines, errorStyle.Render(slot.Player.Overlay))
	} else if cam.PreviewLastError != "" {
		lines = append(lines, errorStyle.Render(cam.PreviewLastError))
	} else {
		lines = append(lines, "")
	}
	return style.Render(strings.Join(lines, "\n"))
}

func badge(b render.Badge, label string) string {
	color, ok := badgeColors[b]
	if !ok {
		color = badgeColors[render.BadgeGray]
	}
	return lipgloss.NewStyle().Foreground(color).Render("● " + label)
}

func describePlayer(p render.PlayerStatus) string {
	switch p.Strategy {
	case render.StrategySnapshot:
		return fmt.Sprintf("%s, %d frames", p.State, p.Frames)
	case render.StrategySegmented:
		desc := fmt.Sprintf("%s, %d segments", p.State, p.Frames)
		if p.Variant != "" {
			desc += ", " + p.Variant
		}
		return desc
	default:
		return string(p.State)
	}
}

func (m *Model) renderControls() string {
	c := m.state.Controls
	label := c.Label
	if !c.Enabled {
		label = mutedStyle.Render(label)
	}
	held := ""
	if m.held != "" {
		held = cursorStyle.Render("  holding " + m.held)
	}
	return fmt.Sprintf("PTZ: %s  speed %s%s", label, speedBar(c.Speed), held)
}

func speedBar(speed float64) string {
	filled := int(speed*10 + 0.5)
	return fmt.Sprintf("[%s%s] %.1f", strings.Repeat("█", filled), strings.Repeat("░", 10-filled), speed)
}

func (m *Model) renderPresets() string {
	var b strings.Builder
	b.WriteString("Presets  (enter go, n new, R refresh, esc close)\n")
	if len(m.state.Presets) == 0 {
		b.WriteString(mutedStyle.Render("No presets"))
	}
	for i, p := range m.state.Presets {
		line := fmt.Sprintf("  %s  %s", p.ID, p.Name)
		if i == m.presetCursor {
			line = cursorStyle.Render("> " + line[2:])
		}
		b.WriteString(line)
		if i < len(m.state.Presets)-1 {
			b.WriteString("\n")
		}
	}
	if m.mode == modePresetName {
		b.WriteString("\nName: " + m.presetInput.View())
	}
	return panelStyle.Render(b.String())
}

func (m *Model) renderLogs() string {
	title := "Backend logs (l to close)"
	if m.state.LogsStale {
		title += errorStyle.Render("  stale")
	}
	return panelStyle.Render(title + "\n" + m.logViewport.View())
}

func formatBackendLogs(st console.State) string {
	if len(st.Logs) == 0 {
		return mutedStyle.Render("No log entries")
	}
	lines := make([]string, len(st.Logs))
	for i, e := range st.Logs {
		lines[i] = formatBackendLog(e)
	}
	return strings.Join(lines, "\n")
}

func formatBackendLog(e models.LogEntry) string {
	line := fmt.Sprintf("%s %-5s", e.TS, strings.ToUpper(e.Level))
	if e.CameraID != "" {
		line += " [" + e.CameraID + "]"
	}
	line += " " + e.Message
	if strings.EqualFold(e.Level, "error") {
		return errorStyle.Render(line)
	}
	return line
}

func (m *Model) renderForm() string {
	fm := m.form
	title := "Add camera"
	if fm.mode == editor.ModeEdit {
		title = "Edit camera"
	}
	var b strings.Builder
	b.WriteString(title + "  (tab move, ←/→ choose, enter save, esc cancel)\n\n")

	current := fm.current()
	for _, field := range fm.fields() {
		marker := "  "
		if field == current {
			marker = cursorStyle.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%-12s ", marker, fieldLabels[field]))
		switch field {
		case editor.FieldSourceType:
			b.WriteString(fmt.Sprintf("< %s >", strings.ToUpper(string(fm.sourceType))))
		case editor.FieldNDISource:
			b.WriteString(renderNDISelector(fm))
		default:
			b.WriteString(fm.inputs[field].View())
		}
		if msg, ok := fm.errors[field]; ok {
			b.WriteString("  " + errorStyle.Render(msg))
		}
		b.WriteString("\n")
	}
	return panelStyle.Render(b.String())
}

func renderNDISelector(fm *formModel) string {
	scan := mutedStyle.Render("  [ctrl+f " + fm.scanLabel + "]")
	if len(fm.ndiOptions) == 0 {
		if fm.ndiValue != "" {
			return "< " + fm.ndiValue + " >" + scan
		}
		return mutedStyle.Render("none") + scan
	}
	opt := fm.ndiOptions[fm.ndiIndex]
	label := opt.Label
	if opt.Disabled {
		label = mutedStyle.Render(label)
	}
	return "< " + label + " >" + scan
}

func (m *Model) renderNotice(n console.Notice) string {
	body := fmt.Sprintf("%s\n\n%s\n\n%s",
		errorStyle.Bold(true).Render(strings.ToUpper(n.Level)),
		n.Message,
		mutedStyle.Render("Press enter to dismiss"))
	box := modalStyle.Render(body)
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) renderStatus() string {
	status := m.status
	if m.statusIsError {
		status = errorStyle.Render(status)
	}
	help := "arrows/+/- move · space stop · 1-4 select · [ ] speed · p presets · a/e/x camera · r restart · l logs · q quit"
	return statusBarStyle.Width(m.width).Render(status + "  |  " + help)
}
