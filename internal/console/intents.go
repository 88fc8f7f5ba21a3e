package console

import "github.com/smazurov/ptzdeck/internal/ptz"

// EventKind is the kind of an operator input event.
type EventKind string

// Input events.
const (
	EventKeyDown      EventKind = "key-down"
	EventKeyUp        EventKind = "key-up"
	EventPointerDown  EventKind = "pointer-down"
	EventPointerUp    EventKind = "pointer-up"
	EventPointerLeave EventKind = "pointer-leave"
	EventTouchStart   EventKind = "touch-start"
	EventTouchEnd     EventKind = "touch-end"
)

// InputEvent is one operator input. Key events carry Key, pointer and touch
// events carry the Control they hit.
type InputEvent struct {
	Kind          EventKind `json:"kind" enum:"key-down,key-up,pointer-down,pointer-up,pointer-leave,touch-start,touch-end"`
	Key           string    `json:"key,omitempty" doc:"Key name for key events, e.g. ArrowUp, +, -, Space, 1"`
	Control       string    `json:"control,omitempty" doc:"PTZ control id for pointer and touch events"`
	FromTextField bool      `json:"from_text_field,omitempty" doc:"Event originated in a text input"`
}

// IntentKind is what an input event asks the console to do.
type IntentKind string

// Intents.
const (
	IntentNone           IntentKind = "none"
	IntentPress          IntentKind = "press"
	IntentRelease        IntentKind = "release"
	IntentStop           IntentKind = "stop"
	IntentSelectSlot     IntentKind = "select-slot"
	IntentSpeedUp        IntentKind = "speed-up"
	IntentSpeedDown      IntentKind = "speed-down"
	IntentToggleLogs     IntentKind = "toggle-logs"
	IntentRestartPreview IntentKind = "restart-preview"
	IntentRefreshPresets IntentKind = "refresh-presets"
)

// Intent is a resolved input event.
type Intent struct {
	Kind    IntentKind  `json:"kind"`
	Control ptz.Control `json:"control,omitempty"`
	Slot    int         `json:"slot,omitempty"`
}

type keyBinding struct {
	kind EventKind
	key  string
}

// keyIntents maps keyboard events to intents.
var keyIntents = map[keyBinding]Intent{}

// pointerIntents maps pointer and touch events on a control to intent kinds.
var pointerIntents = map[EventKind]IntentKind{
	EventPointerDown:  IntentPress,
	EventTouchStart:   IntentPress,
	EventPointerUp:    IntentRelease,
	EventPointerLeave: IntentRelease,
	EventTouchEnd:     IntentRelease,
}

func init() {
	hold := map[string]ptz.Control{
		"ArrowUp":    ptz.Up,
		"ArrowDown":  ptz.Down,
		"ArrowLeft":  ptz.Left,
		"ArrowRight": ptz.Right,
		"+":          ptz.ZoomIn,
		"=":          ptz.ZoomIn,
		"-":          ptz.ZoomOut,
	}
	for key, control := range hold {
		keyIntents[keyBinding{EventKeyDown, key}] = Intent{Kind: IntentPress, Control: control}
		keyIntents[keyBinding{EventKeyUp, key}] = Intent{Kind: IntentRelease, Control: control}
	}

	for _, key := range []string{" ", "Space"} {
		keyIntents[keyBinding{EventKeyDown, key}] = Intent{Kind: IntentStop, Control: ptz.Stop}
	}
	for i, key := range []string{"1", "2", "3", "4"} {
		keyIntents[keyBinding{EventKeyDown, key}] = Intent{Kind: IntentSelectSlot, Slot: i}
	}

	keyIntents[keyBinding{EventKeyDown, "]"}] = Intent{Kind: IntentSpeedUp}
	keyIntents[keyBinding{EventKeyDown, "["}] = Intent{Kind: IntentSpeedDown}
	keyIntents[keyBinding{EventKeyDown, "l"}] = Intent{Kind: IntentToggleLogs}
	keyIntents[keyBinding{EventKeyDown, "r"}] = Intent{Kind: IntentRestartPreview}
	keyIntents[keyBinding{EventKeyDown, "p"}] = Intent{Kind: IntentRefreshPresets}
}

// Resolve maps an input event to an intent. Events from text fields and
// unbound events resolve to IntentNone.
func Resolve(ev InputEvent) Intent {
	if ev.FromTextField {
		return Intent{Kind: IntentNone}
	}

	if kind, ok := pointerIntents[ev.Kind]; ok {
		control, _, err := ptz.Lookup(ev.Control)
		if err != nil {
			return Intent{Kind: IntentNone}
		}
		if control == ptz.Stop {
			if kind == IntentPress {
				return Intent{Kind: IntentStop, Control: ptz.Stop}
			}
			return Intent{Kind: IntentNone}
		}
		return Intent{Kind: kind, Control: control}
	}

	if intent, ok := keyIntents[keyBinding{ev.Kind, ev.Key}]; ok {
		return intent
	}
	return Intent{Kind: IntentNone}
}
