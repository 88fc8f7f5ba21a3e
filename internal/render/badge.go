package render

import "github.com/smazurov/ptzdeck/internal/models"

// Badge is the colour of a status indicator.
type Badge string

// Badge colours.
const (
	BadgeGreen  Badge = "green"
	BadgeYellow Badge = "yellow"
	BadgeRed    Badge = "red"
	BadgeGray   Badge = "gray"
)

// ControlBadge maps control_status to a badge.
func ControlBadge(status models.ControlStatus) Badge {
	switch status {
	case models.ControlOK:
		return BadgeGreen
	case models.ControlError:
		return BadgeRed
	default:
		return BadgeGray
	}
}

// PreviewBadge maps a camera's preview_status to a badge. A camera without a
// stream_url is always gray.
func PreviewBadge(cam models.Camera) Badge {
	if !cam.Online() {
		return BadgeGray
	}
	switch cam.PreviewStatus {
	case models.PreviewOK:
		return BadgeGreen
	case models.PreviewStarting, models.PreviewRestarting:
		return BadgeYellow
	case models.PreviewError:
		return BadgeRed
	default:
		return BadgeGray
	}
}
