package domain

import "strconv"

// Timeframe is one of the sales windows a dashboard can be scoped to.
type Timeframe int

const (
	Timeframe30 Timeframe = 30
	Timeframe60 Timeframe = 60
	Timeframe90 Timeframe = 90
)

// Timeframes lists the supported windows in ascending order.
var Timeframes = []Timeframe{Timeframe30, Timeframe60, Timeframe90}

// Days returns the window length in days.
func (t Timeframe) Days() int {
	return int(t)
}

func (t Timeframe) String() string {
	return strconv.Itoa(int(t)) + "d"
}

// ParseTimeframe maps a day count to a supported timeframe, defaulting to 30.
func ParseTimeframe(days int) Timeframe {
	switch days {
	case 60:
		return Timeframe60
	case 90:
		return Timeframe90
	default:
		return Timeframe30
	}
}
