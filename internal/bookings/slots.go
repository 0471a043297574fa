package bookings

import (
	"strings"
	"time"

	"github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/types"
)

// rescheduleGrid is the fixed set of windows offered when moving a booking.
// Noon and 14:00 are not offered.
var rescheduleGrid = []types.TimeSlot{
	{Start: "09:00", End: "10:00", Available: true},
	{Start: "10:00", End: "11:00", Available: true},
	{Start: "11:00", End: "12:00", Available: true},
	{Start: "13:00", End: "14:00", Available: true},
	{Start: "15:00", End: "16:00", Available: true},
	{Start: "16:00", End: "17:00", Available: true},
	{Start: "17:00", End: "18:00", Available: true},
	{Start: "18:00", End: "19:00", Available: true},
	{Start: "19:00", End: "20:00", Available: true},
	{Start: "20:00", End: "21:00", Available: true},
}

// RescheduleSlots lists the windows for day. Today only offers windows that
// start strictly after the current minute.
func (d *Desk) RescheduleSlots(day time.Time) []types.TimeSlot {
	now := d.now().In(d.loc)
	day = day.In(d.loc)
	out := make([]types.TimeSlot, 0, len(rescheduleGrid))
	sameDay := startOfDay(day).Equal(startOfDay(now))
	for _, slot := range rescheduleGrid {
		if sameDay {
			start, err := slot.StartOn(day, d.loc)
			if err != nil || !start.After(now) {
				continue
			}
		}
		out = append(out, slot)
	}
	return out
}

// RescheduleSlotsOn parses a yyyy-mm-dd date in the desk's zone.
func (d *Desk) RescheduleSlotsOn(date string) ([]types.TimeSlot, error) {
	day, err := time.ParseInLocation(types.DateLayout, strings.TrimSpace(date), d.loc)
	if err != nil {
		return nil, errors.New(errors.CodeValidation, "invalid booking date")
	}
	return d.RescheduleSlots(day), nil
}
