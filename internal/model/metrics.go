package model

import (
	"fmt"
	"time"
)

// RunMetrics summarizes one benchmark or batch run.
type RunMetrics struct {
	Mode        Mode `json:"mode" yaml:"mode"`
	Concurrency int  `json:"concurrency" yaml:"concurrency"`
	DocCount    int  `json:"doc_count" yaml:"doc_count"`
	// DocTimes holds per-document elapsed times, indexed by batch position.
	DocTimes  []time.Duration `json:"doc_times" yaml:"doc_times"`
	WallClock time.Duration   `json:"wall_clock" yaml:"wall_clock"`
	Succeeded int             `json:"succeeded" yaml:"succeeded"`
	Failed    int             `json:"failed" yaml:"failed"`
}

// FormatSeconds renders a duration as whole minutes and seconds, e.g.
// "01min 42sec".
func FormatSeconds(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%02dmin %02dsec", total/60, total%60)
}
