package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smazurov/ptzdeck/internal/console"
	"github.com/smazurov/ptzdeck/internal/editor"
	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/models"
)

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logViewport.Width = msg.Width - 2

	case tickMsg:
		m.now = time.Time(msg)
		return m, timeTickCmd()

	case busMsg:
		if e, ok := msg.event.(events.LogEntryEvent); ok {
			m.addLocalLog(e)
		} else {
			m.refresh()
		}
		return m, m.waitForEvent()

	case releaseMsg:
		m.handleRelease(msg)

	case resultMsg:
		m.handleResult(msg)

	case scanMsg:
		if m.form != nil {
			m.form.applyScan(msg.result)
		}
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.Close()
			return m, tea.Quit
		}
		// A blocking notice takes every key until acknowledged.
		if m.state.Notice != nil {
			switch msg.String() {
			case "enter", "esc", " ":
				m.console.Notices().Dismiss(m.state.Notice.ID)
				m.refresh()
			}
			return m, nil
		}
		switch m.mode {
		case modeForm:
			return m, m.updateForm(msg)
		case modeConfirmDelete:
			return m, m.updateConfirm(msg)
		case modePresets:
			return m, m.updatePresets(msg)
		case modePresetName:
			return m, m.updatePresetName(msg)
		default:
			return m, m.updateGrid(msg)
		}

	case tea.MouseMsg:
		if m.state.LogDrawerOpen {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) updateGrid(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if name, ok := holdKeys[key]; ok {
		return m.holdKey(name)
	}

	switch key {
	case "q":
		m.Close()
		return tea.Quit
	case " ":
		m.held = ""
		if _, err := m.console.HandleInput(m.ctx, console.InputEvent{Kind: console.EventKeyDown, Key: "Space"}); err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.setStatus("Stop", false)
		}
	case "1", "2", "3", "4":
		return m.keyDown(key, "select")
	case "[", "]":
		if _, err := m.console.HandleInput(m.ctx, console.InputEvent{Kind: console.EventKeyDown, Key: key}); err != nil {
			m.setStatus(err.Error(), true)
		}
		m.refresh()
	case "l":
		open := m.console.ToggleLogs()
		m.refresh()
		if open {
			m.logViewport.GotoBottom()
		}
	case "r":
		m.setStatus("Restarting preview...", false)
		return m.keyDown(key, "restart")
	case "p":
		if m.console.Selected() == "" {
			m.setStatus("Select a camera first", true)
			return nil
		}
		m.mode = modePresets
		m.presetCursor = 0
	case "a":
		return m.openForm(m.console.Editor().OpenCreate())
	case "e":
		id := m.console.Selected()
		if id == "" {
			m.setStatus("Select a camera to edit", true)
			return nil
		}
		form, err := m.console.Editor().OpenEdit(id)
		if err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		return m.openForm(form)
	case "x":
		id := m.console.Selected()
		if id == "" {
			m.setStatus("Select a camera to delete", true)
			return nil
		}
		m.deleteID = id
		m.mode = modeConfirmDelete
	case "pgup", "pgdown":
		if m.state.LogDrawerOpen {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return cmd
		}
	}
	return nil
}

func (m *Model) openForm(f editor.Form) tea.Cmd {
	if m.held != "" {
		m.keyUp(m.held)
	}
	m.form = newFormModel(f)
	m.mode = modeForm
	return m.scanIfNDI()
}

func (m *Model) closeForm() {
	m.console.Editor().Close()
	m.form = nil
	m.mode = modeGrid
}

func (m *Model) scanIfNDI() tea.Cmd {
	if m.form == nil || m.form.sourceType != models.PreviewNDI || m.form.ndiOptions != nil {
		return nil
	}
	return m.scanNDI()
}

func (m *Model) scanNDI() tea.Cmd {
	m.form.scanLabel = editor.ScanningLabel
	c, ctx := m.console, m.ctx
	return func() tea.Msg {
		res, err := c.ScanNDI(ctx)
		return scanMsg{result: res, err: err}
	}
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	fm := m.form
	switch msg.String() {
	case "esc":
		m.closeForm()
		m.setStatus("Edit cancelled", false)
		return nil
	case "tab", "down":
		return fm.move(1)
	case "shift+tab", "up":
		return fm.move(-1)
	case "ctrl+f":
		if fm.sourceType == models.PreviewNDI {
			return m.scanNDI()
		}
		return nil
	case "left", "right", " ":
		if fm.isSelector() {
			delta := 1
			if msg.String() == "left" {
				delta = -1
			}
			fm.cycle(delta)
			return m.scanIfNDI()
		}
	case "enter", "ctrl+s":
		m.console.Editor().Update(fm.apply)
		m.setStatus("Saving...", false)
		return m.run("save", func(ctx context.Context) error {
			_, err := m.console.Editor().Save(ctx)
			return err
		})
	}
	return fm.updateInput(msg)
}

func (m *Model) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	id := m.deleteID
	m.deleteID = ""
	m.mode = modeGrid
	if msg.String() != "y" {
		m.setStatus("Delete cancelled", false)
		return nil
	}
	m.setStatus("Deleting "+id+"...", false)
	return m.run("delete", func(ctx context.Context) error {
		return m.console.DeleteCamera(editor.Confirmed(ctx), id)
	})
}

func (m *Model) updatePresets(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "p", "q":
		m.mode = modeGrid
	case "up", "k":
		if m.presetCursor > 0 {
			m.presetCursor--
		}
	case "down", "j":
		if m.presetCursor < len(m.state.Presets)-1 {
			m.presetCursor++
		}
	case "enter":
		if len(m.state.Presets) == 0 {
			return nil
		}
		preset := m.state.Presets[m.presetCursor]
		if err := m.console.GotoPreset(preset.ID); err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		m.setStatus("Going to "+preset.Name, false)
	case "R":
		m.setStatus("Refreshing presets...", false)
		return m.keyDown("p", "refresh")
	case "n":
		m.mode = modePresetName
		m.presetInput.SetValue("")
		return m.presetInput.Focus()
	}
	return nil
}

func (m *Model) updatePresetName(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.presetInput.Blur()
		m.mode = modePresets
		return nil
	case "enter":
		name := m.presetInput.Value()
		m.presetInput.Blur()
		m.mode = modePresets
		m.setStatus("Saving preset "+name+"...", false)
		return m.run("preset", func(ctx context.Context) error {
			_, err := m.console.CreatePreset(ctx, name)
			return err
		})
	}
	var cmd tea.Cmd
	m.presetInput, cmd = m.presetInput.Update(msg)
	return cmd
}

func (m *Model) handleResult(msg resultMsg) {
	defer m.refresh()
	if msg.err != nil {
		if msg.action == "save" && m.form != nil {
			if fields := editor.FieldErrors(msg.err); len(fields) > 0 {
				m.form.setErrors(fields)
				m.setStatus("Fix the highlighted fields", true)
				return
			}
		}
		m.logger.Debug("Console action failed", "action", msg.action, "error", msg.err)
		m.setStatus(msg.err.Error(), true)
		return
	}

	switch msg.action {
	case "save":
		m.closeForm()
		m.setStatus("Camera saved", false)
	case "delete":
		m.setStatus("Camera deleted", false)
	case "restart":
		m.setStatus("Preview restarted", false)
	case "refresh":
		m.setStatus("Presets refreshed", false)
	case "preset":
		m.setStatus("Preset saved", false)
	case "select":
		if cam, ok := m.console.SelectedCamera(); ok {
			m.setStatus("Selected "+cam.Name, false)
		}
	}
}
