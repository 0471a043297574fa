package types

import (
	"fmt"
	"time"
)

// SlotLayout is the wall-clock format used for slot boundaries.
const SlotLayout = "15:04"

// DateLayout is the booking date format the remote API expects.
const DateLayout = "2006-01-02"

// TimeSlot is one bookable window on a given day.
type TimeSlot struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// StartOn resolves the slot start on the given day in loc.
func (s TimeSlot) StartOn(day time.Time, loc *time.Location) (time.Time, error) {
	clock, err := time.Parse(SlotLayout, s.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot start %q: %w", s.Start, err)
	}
	y, m, d := day.In(loc).Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// Validate checks both boundaries are HH:mm.
func (s TimeSlot) Validate() error {
	if _, err := time.Parse(SlotLayout, s.Start); err != nil {
		return fmt.Errorf("invalid slot start %q", s.Start)
	}
	if _, err := time.Parse(SlotLayout, s.End); err != nil {
		return fmt.Errorf("invalid slot end %q", s.End)
	}
	return nil
}
