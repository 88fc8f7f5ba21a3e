package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smazurov/ptzdeck/internal/editor"
	"github.com/smazurov/ptzdeck/internal/models"
)

var fieldLabels = map[string]string{
	editor.FieldID:         "ID",
	editor.FieldName:       "Name",
	editor.FieldIP:         "IP",
	editor.FieldONVIFPort:  "ONVIF port",
	editor.FieldUsername:   "Username",
	editor.FieldPassword:   "Password",
	editor.FieldSourceType: "Source",
	editor.FieldRTSPURL:    "RTSP URL",
	editor.FieldNDISource:  "NDI source",
}

type scanResult = editor.ScanResult

// formModel is the add/edit camera form. Text fields are bubbles inputs;
// the source type and NDI source are selectors.
type formModel struct {
	mode       editor.Mode
	sourceType models.PreviewType
	inputs     map[string]*textinput.Model
	focus      int
	errors     map[string]string

	ndiOptions []editor.Option
	ndiIndex   int
	ndiValue   string
	scanLabel  string
}

func newFormModel(f editor.Form) *formModel {
	fm := &formModel{
		mode:       f.Mode,
		sourceType: f.SourceType,
		inputs:     make(map[string]*textinput.Model),
		errors:     make(map[string]string),
		ndiValue:   f.NDISource,
		scanLabel:  editor.ScanLabel,
	}
	if fm.sourceType == "" {
		fm.sourceType = models.PreviewRTSP
	}

	values := map[string]string{
		editor.FieldID:        f.ID,
		editor.FieldName:      f.Name,
		editor.FieldIP:        f.IP,
		editor.FieldONVIFPort: strconv.Itoa(f.ONVIFPort),
		editor.FieldUsername:  f.Username,
		editor.FieldPassword:  f.Password,
		editor.FieldRTSPURL:   f.RTSPURL,
	}
	for field, value := range values {
		in := textinput.New()
		in.Prompt = ""
		in.SetValue(value)
		in.CharLimit = 256
		switch field {
		case editor.FieldID:
			in.Placeholder = "generated"
		case editor.FieldPassword:
			in.EchoMode = textinput.EchoPassword
			if f.Mode == editor.ModeEdit {
				in.Placeholder = "unchanged"
			}
		case editor.FieldRTSPURL:
			in.Placeholder = "rtsp://host:554/stream"
		case editor.FieldONVIFPort:
			in.CharLimit = 5
		}
		fm.inputs[field] = &in
	}
	fm.focusCurrent()
	return fm
}

// fields lists the focusable fields. The id is fixed once a camera exists.
func (fm *formModel) fields() []string {
	visible := editor.Form{SourceType: fm.sourceType}.VisibleFields()
	if fm.mode != editor.ModeEdit {
		return visible
	}
	out := make([]string, 0, len(visible))
	for _, f := range visible {
		if f != editor.FieldID {
			out = append(out, f)
		}
	}
	return out
}

func (fm *formModel) current() string {
	fields := fm.fields()
	if fm.focus >= len(fields) {
		fm.focus = len(fields) - 1
	}
	return fields[fm.focus]
}

func (fm *formModel) move(delta int) tea.Cmd {
	n := len(fm.fields())
	fm.focus = (fm.focus + delta + n) % n
	return fm.focusCurrent()
}

func (fm *formModel) focusCurrent() tea.Cmd {
	current := fm.current()
	var cmd tea.Cmd
	for field, in := range fm.inputs {
		if field == current {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
	}
	return cmd
}

// cycle moves a selector field left or right.
func (fm *formModel) cycle(delta int) {
	switch fm.current() {
	case editor.FieldSourceType:
		if fm.sourceType == models.PreviewNDI {
			fm.sourceType = models.PreviewRTSP
		} else {
			fm.sourceType = models.PreviewNDI
		}
	case editor.FieldNDISource:
		if len(fm.ndiOptions) == 0 {
			return
		}
		n := len(fm.ndiOptions)
		for range n {
			fm.ndiIndex = (fm.ndiIndex + delta + n) % n
			if opt := fm.ndiOptions[fm.ndiIndex]; !opt.Disabled {
				fm.ndiValue = opt.Value
				return
			}
		}
	}
}

func (fm *formModel) isSelector() bool {
	switch fm.current() {
	case editor.FieldSourceType, editor.FieldNDISource:
		return true
	}
	return false
}

func (fm *formModel) applyScan(res editor.ScanResult) {
	fm.ndiOptions = res.Options
	fm.scanLabel = res.ButtonLabel
	fm.ndiIndex = 0
	for i, opt := range res.Options {
		if opt.Value != "" && opt.Value == fm.ndiValue {
			fm.ndiIndex = i
			return
		}
	}
}

// updateInput forwards a key to the focused text input.
func (fm *formModel) updateInput(msg tea.Msg) tea.Cmd {
	in, ok := fm.inputs[fm.current()]
	if !ok {
		return nil
	}
	updated, cmd := in.Update(msg)
	*in = updated
	return cmd
}

// apply copies the inputs into an editor form. An unparsable port is left
// at zero so validation reports it.
func (fm *formModel) apply(f *editor.Form) {
	value := func(field string) string {
		return strings.TrimSpace(fm.inputs[field].Value())
	}
	if fm.mode != editor.ModeEdit {
		f.ID = value(editor.FieldID)
	}
	f.Name = value(editor.FieldName)
	f.IP = value(editor.FieldIP)
	f.ONVIFPort, _ = strconv.Atoi(value(editor.FieldONVIFPort))
	f.Username = value(editor.FieldUsername)
	f.Password = fm.inputs[editor.FieldPassword].Value()
	f.SourceType = fm.sourceType
	f.RTSPURL = value(editor.FieldRTSPURL)
	f.NDISource = fm.ndiValue
}

func (fm *formModel) setErrors(errs []editor.FieldError) {
	fm.errors = make(map[string]string, len(errs))
	for _, e := range errs {
		fm.errors[e.Field] = e.Message
	}
}
