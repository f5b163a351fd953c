package domain

import (
	"errors"
	"time"
)

const MinutesPerDay = 24 * 60

var ErrInvalidBlockSize = errors.New("block size must divide a day")

type OccupancyBlock struct {
	Start time.Time
	End   time.Time
	Count int
}

func ValidBlockMinutes(blockMinutes int) bool {
	return blockMinutes >= 1 && blockMinutes <= MinutesPerDay && MinutesPerDay%blockMinutes == 0
}

// PartitionDay splits the calendar day of day (in loc) into consecutive
// blocks of blockMinutes each, with zero counts.
func PartitionDay(day time.Time, loc *time.Location, blockMinutes int) ([]OccupancyBlock, error) {
	if !ValidBlockMinutes(blockMinutes) {
		return nil, ErrInvalidBlockSize
	}
	start := StartOfDay(day, loc)
	size := time.Duration(blockMinutes) * time.Minute
	n := MinutesPerDay / blockMinutes

	out := make([]OccupancyBlock, 0, n)
	for i := 0; i < n; i++ {
		bs := start.Add(time.Duration(i) * size)
		out = append(out, OccupancyBlock{Start: bs, End: bs.Add(size)})
	}
	return out, nil
}

// CountOccupancy adds one to every block a non-canceled registration
// touches. Block and registration bounds are both inclusive.
func CountOccupancy(blocks []OccupancyBlock, regs []SeatRegistration) []OccupancyBlock {
	out := make([]OccupancyBlock, len(blocks))
	copy(out, blocks)
	for _, r := range regs {
		if r.Status == SeatCanceled {
			continue
		}
		for i := range out {
			if Overlaps(r.StartTime, r.EndTime, out[i].Start, out[i].End) {
				out[i].Count++
			}
		}
	}
	return out
}
