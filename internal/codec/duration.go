package codec

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// duration grammar patterns, tried in order; first match wins (spec §4.3).
var (
	reSeconds = regexp.MustCompile(`^(\d+)\s*s(econds?)?$`)
	reMinutes = regexp.MustCompile(`^(\d+)\s*m(in(utes?)?)?$`)
	reHours   = regexp.MustCompile(`^(\d+)\s*h(ours?)?$`)
	reDays    = regexp.MustCompile(`^(\d+)\s*d(ays?)?$`)
	reHMS     = regexp.MustCompile(`^(\d+):(\d+):(\d+)$`)
	reHM      = regexp.MustCompile(`^(\d+):(\d+)$`)
	reBare    = regexp.MustCompile(`^(\d+)$`)
)

// ParseDuration implements the flexible duration grammar of spec §4.3:
// `140s`, `2h`, `1:30`, `1:30:45`, or a bare integer of seconds.
// Unparseable input returns (nil, nil) rather than an error — the grammar
// never raises.
func ParseDuration(s string) (*time.Duration, error) {
	if s == "" {
		return nil, nil
	}

	if m := reHMS.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		sec, _ := strconv.Atoi(m[3])
		d := time.Duration(h)*time.Hour + time.Duration(mi)*time.Minute + time.Duration(sec)*time.Second
		return &d, nil
	}
	if m := reHM.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		d := time.Duration(h)*time.Hour + time.Duration(mi)*time.Minute
		return &d, nil
	}
	if m := reSeconds.FindStringSubmatch(s); m != nil {
		sec, _ := strconv.Atoi(m[1])
		d := time.Duration(sec) * time.Second
		return &d, nil
	}
	if m := reMinutes.FindStringSubmatch(s); m != nil {
		mi, _ := strconv.Atoi(m[1])
		d := time.Duration(mi) * time.Minute
		return &d, nil
	}
	if m := reHours.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		d := time.Duration(h) * time.Hour
		return &d, nil
	}
	if m := reDays.FindStringSubmatch(s); m != nil {
		days, _ := strconv.Atoi(m[1])
		d := time.Duration(days) * 24 * time.Hour
		return &d, nil
	}
	if m := reBare.FindStringSubmatch(s); m != nil {
		sec, _ := strconv.Atoi(m[1])
		d := time.Duration(sec) * time.Second
		return &d, nil
	}

	return nil, nil
}

// FormatDuration renders a duration in the bare-seconds form of the
// grammar, guaranteeing ParseDuration(FormatDuration(d)) == d for every
// representable (whole-second) duration.
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%ds", int64(d.Seconds()))
}
