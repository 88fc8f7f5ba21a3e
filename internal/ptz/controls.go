// Package ptz drives continuous pan, tilt and zoom for the selected camera.
package ptz

import (
	"errors"

	"github.com/smazurov/ptzdeck/internal/models"
)

// ErrUnknownControl is returned for a control id outside the table.
var ErrUnknownControl = errors.New("unknown ptz control")

// Control identifies one button of the PTZ pad.
type Control string

// PTZ pad controls.
const (
	Up        Control = "up"
	Down      Control = "down"
	Left      Control = "left"
	Right     Control = "right"
	UpLeft    Control = "up-left"
	UpRight   Control = "up-right"
	DownLeft  Control = "down-left"
	DownRight Control = "down-right"
	ZoomIn    Control = "zoom-in"
	ZoomOut   Control = "zoom-out"
	Stop      Control = "stop"
)

// Command is the protocol action a control produces.
type Command struct {
	Action models.PTZAction
	Pan    float64
	Tilt   float64
	Zoom   float64
}

var table = map[Control]Command{
	Up:        {Action: models.PTZMove, Tilt: 1},
	Down:      {Action: models.PTZMove, Tilt: -1},
	Left:      {Action: models.PTZMove, Pan: -1},
	Right:     {Action: models.PTZMove, Pan: 1},
	UpLeft:    {Action: models.PTZMove, Pan: -1, Tilt: 1},
	UpRight:   {Action: models.PTZMove, Pan: 1, Tilt: 1},
	DownLeft:  {Action: models.PTZMove, Pan: -1, Tilt: -1},
	DownRight: {Action: models.PTZMove, Pan: 1, Tilt: -1},
	ZoomIn:    {Action: models.PTZZoom, Zoom: 1},
	ZoomOut:   {Action: models.PTZZoom, Zoom: -1},
	Stop:      {Action: models.PTZStop},
}

// order is the pad layout, row by row.
var order = []Control{UpLeft, Up, UpRight, Left, Stop, Right, DownLeft, Down, DownRight, ZoomIn, ZoomOut}

// Controls returns every control in pad order.
func Controls() []Control {
	return append([]Control(nil), order...)
}

// Lookup resolves a control id.
func Lookup(id string) (Control, Command, error) {
	c := Control(id)
	cmd, ok := table[c]
	if !ok {
		return "", Command{}, ErrUnknownControl
	}
	return c, cmd, nil
}

// Request builds the wire request for cmd at the given speed.
func (cmd Command) Request(speed float64) models.PTZRequest {
	req := models.PTZRequest{Action: cmd.Action}
	switch cmd.Action {
	case models.PTZMove:
		req.Pan = models.Float(cmd.Pan)
		req.Tilt = models.Float(cmd.Tilt)
		req.Speed = models.Float(speed)
	case models.PTZZoom:
		req.Zoom = models.Float(cmd.Zoom)
		req.Speed = models.Float(speed)
	}
	return req
}
