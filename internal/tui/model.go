// Package tui is the terminal front end of the console.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smazurov/ptzdeck/internal/console"
	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/logging"
	"github.com/smazurov/ptzdeck/internal/version"
)

const (
	defaultKeyRelease = 550 * time.Millisecond
	maxLocalLogs      = 200
)

type mode int

const (
	modeGrid mode = iota
	modeForm
	modeConfirmDelete
	modePresets
	modePresetName
)

// Options configures the terminal front end.
type Options struct {
	Console *console.Console
	// KeyRelease is how long a movement key counts as held without a repeat.
	KeyRelease time.Duration
}

// Msg types
type tickMsg time.Time

type busMsg struct{ event any }

type releaseMsg struct {
	key string
	gen uint64
}

type resultMsg struct {
	action string
	err    error
}

type scanMsg struct {
	result scanResult
	err    error
}

// Model holds the terminal state. Console state is re-read on every bus event.
type Model struct {
	ctx        context.Context
	console    *console.Console
	logger     *slog.Logger
	keyRelease time.Duration
	title      string

	width  int
	height int
	now    time.Time

	state console.State
	mode  mode

	events      chan any
	unsubscribe func()

	// Movement key currently held and its hold generation.
	held    string
	holdGen uint64

	form          *formModel
	deleteID      string
	presetCursor  int
	presetInput   textinput.Model
	logViewport   viewport.Model
	localLogs     []string
	status        string
	statusIsError bool
}

// New returns a Model bound to a running console.
func New(ctx context.Context, opts Options) *Model {
	release := opts.KeyRelease
	if release <= 0 {
		release = defaultKeyRelease
	}

	ch := make(chan any, 64)
	name := textinput.New()
	name.Placeholder = "Preset name"
	name.CharLimit = 64

	m := &Model{
		ctx:         ctx,
		console:     opts.Console,
		logger:      logging.GetLogger("tui"),
		keyRelease:  release,
		title:       version.Title(),
		now:         time.Now(),
		events:      ch,
		unsubscribe: events.SubscribeAll(opts.Console.Bus(), ch),
		presetInput: name,
		logViewport: func() viewport.Model {
			vp := viewport.New(0, 8)
			vp.MouseWheelEnabled = true
			return vp
		}(),
		status: "Select a camera with 1-4",
	}
	m.state = m.console.State()
	return m
}

// Init starts the clock and the bus listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(timeTickCmd(), m.waitForEvent())
}

// Close drops the bus subscription and stops any held movement.
func (m *Model) Close() {
	if m.held != "" {
		m.keyUp(m.held)
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	ch := m.events
	return func() tea.Msg {
		return busMsg{event: <-ch}
	}
}

func (m *Model) refresh() {
	m.state = m.console.State()
	if m.state.LogDrawerOpen {
		m.logViewport.SetContent(formatBackendLogs(m.state))
	}
	if m.presetCursor >= len(m.state.Presets) {
		m.presetCursor = max(0, len(m.state.Presets)-1)
	}
}

func (m *Model) setStatus(msg string, isError bool) {
	m.status = msg
	m.statusIsError = isError
}

func (m *Model) addLocalLog(e events.LogEntryEvent) {
	m.localLogs = append(m.localLogs, "["+e.Level+"] "+e.Module+": "+e.Message)
	if len(m.localLogs) > maxLocalLogs {
		m.localLogs = m.localLogs[1:]
	}
}

// run executes a console operation off the update loop.
func (m *Model) run(action string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return resultMsg{action: action, err: fn(ctx)}
	}
}

// Helper command for time updates
func timeTickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
