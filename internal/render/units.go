package render

import (
	"fmt"

	"runbaseline/internal/config"
)

const (
	metersPerMile = 1609.34
	metersPerKm   = 1000.0
)

// Units provides unit conversion and formatting based on user preferences
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a new Units helper with the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// FormatDistance formats a distance in meters to the user's preferred unit
func (u Units) FormatDistance(meters float64) string {
	if u.cfg.DistanceUnit == "mi" {
		return fmt.Sprintf("%.1f mi", meters/metersPerMile)
	}
	return fmt.Sprintf("%.1f km", meters/metersPerKm)
}

// FormatSpeedAsPace formats an average speed in m/s as pace in the user's
// preferred unit, e.g. "5:33 /km"
func (u Units) FormatSpeedAsPace(speed float64) string {
	if speed <= 0 {
		return "-"
	}

	unitMeters, label := metersPerKm, "/km"
	if u.cfg.PaceUnit == "min/mi" {
		unitMeters, label = metersPerMile, "/mi"
	}

	paceSeconds := int(unitMeters/speed + 0.5)
	return fmt.Sprintf("%d:%02d %s", paceSeconds/60, paceSeconds%60, label)
}

// FormatDuration formats seconds as h:mm:ss or m:ss
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatHR(hr *float64) string {
	if hr == nil || *hr == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f bpm", *hr)
}

func formatPercent(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%+.1f%%", *p)
}
