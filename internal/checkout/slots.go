package checkout

import (
	"fmt"
	"time"

	"github.com/citycare/storefront/pkg/config"
	"github.com/citycare/storefront/pkg/types"
)

// defaultGrid is the hourly grid offered when the API has no slot list,
// from FirstSlotHour up to and including a slot starting at LastSlotHour.
func defaultGrid(cfg config.CheckoutConfig) []types.TimeSlot {
	out := make([]types.TimeSlot, 0, cfg.LastSlotHour-cfg.FirstSlotHour+1)
	for hour := cfg.FirstSlotHour; hour <= cfg.LastSlotHour; hour++ {
		out = append(out, types.TimeSlot{
			Start:     fmt.Sprintf("%02d:00", hour),
			End:       fmt.Sprintf("%02d:00", hour+1),
			Available: true,
		})
	}
	return out
}

// offerable drops same-day slots that start within the lead time. Slots on
// other days pass through unchanged.
func offerable(slots []types.TimeSlot, day, now time.Time, lead time.Duration, loc *time.Location) []types.TimeSlot {
	if !sameDay(day, now, loc) {
		return slots
	}
	cutoff := now.Add(lead)
	out := make([]types.TimeSlot, 0, len(slots))
	for _, s := range slots {
		start, err := s.StartOn(day, loc)
		if err != nil {
			continue
		}
		if start.After(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// instantSlot starts after delay and lasts duration, both from now.
func instantSlot(now time.Time, delay, duration time.Duration, loc *time.Location) types.TimeSlot {
	start := now.In(loc).Add(delay)
	return types.TimeSlot{
		Start:     start.Format(types.SlotLayout),
		End:       start.Add(duration).Format(types.SlotLayout),
		Available: true,
	}
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	return a.In(loc).Format(types.DateLayout) == b.In(loc).Format(types.DateLayout)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
