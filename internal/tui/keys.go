package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smazurov/ptzdeck/internal/console"
)

// holdKeys maps terminal key names to the key names the input bindings use.
var holdKeys = map[string]string{
	"up":    "ArrowUp",
	"down":  "ArrowDown",
	"left":  "ArrowLeft",
	"right": "ArrowRight",
	"+":     "+",
	"=":     "=",
	"-":     "-",
}

// Terminals report no key-up. The first press starts a hold, auto-repeat
// renews it, and a release is synthesized once repeats stop.
func (m *Model) holdKey(key string) tea.Cmd {
	if m.held == key {
		m.holdGen++
		return releaseAfter(m.keyRelease, key, m.holdGen)
	}
	if m.held != "" {
		m.keyUp(m.held)
	}

	if m.console.Selected() == "" {
		m.setStatus("Select a camera first", true)
		return nil
	}
	intent, err := m.console.HandleInput(m.ctx, console.InputEvent{Kind: console.EventKeyDown, Key: key})
	if err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}
	m.held = key
	m.holdGen++
	m.setStatus("Moving "+string(intent.Control), false)
	return releaseAfter(m.keyRelease, key, m.holdGen)
}

func (m *Model) keyUp(key string) {
	m.held = ""
	if _, err := m.console.HandleInput(m.ctx, console.InputEvent{Kind: console.EventKeyUp, Key: key}); err != nil {
		m.setStatus(err.Error(), true)
	}
}

func (m *Model) handleRelease(msg releaseMsg) {
	if msg.key != m.held || msg.gen != m.holdGen {
		return
	}
	m.keyUp(msg.key)
	m.setStatus("Stopped", false)
}

func releaseAfter(d time.Duration, key string, gen uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return releaseMsg{key: key, gen: gen}
	})
}

// keyDown forwards a one-shot key to the input bindings off the update loop.
func (m *Model) keyDown(key, action string) tea.Cmd {
	c := m.console
	ev := console.InputEvent{Kind: console.EventKeyDown, Key: key}
	ctx := m.ctx
	return func() tea.Msg {
		_, err := c.HandleInput(ctx, ev)
		return resultMsg{action: action, err: err}
	}
}
