package raceweek

import (
	"math"
	"time"

	"github.com/Marco204391/fanta-motogp-sub001/internal/models"
)

// Window around a race's main session during which result polling runs
// at the active cadence.
const (
	LookAheadDays = 3
	LookBackDays  = 2
)

// Weekend reports whether the current time falls inside a race weekend
// window, and which race defines it.
type Weekend struct {
	Active bool
	Race   *models.Race
}

// Detect scans the races for one whose main session is at most
// LookAheadDays in the future or LookBackDays in the past. The nearest
// upcoming race wins over a recent past one when both qualify.
func Detect(now time.Time, races []*models.Race) Weekend {
	var next, prev *models.Race

	for _, race := range races {
		if race.MainSessionAt.After(now) {
			if next == nil || race.MainSessionAt.Before(next.MainSessionAt) {
				next = race
			}
		} else {
			if prev == nil || race.MainSessionAt.After(prev.MainSessionAt) {
				prev = race
			}
		}
	}

	if next != nil && dayDistance(now, next.MainSessionAt) <= LookAheadDays {
		return Weekend{Active: true, Race: next}
	}
	if prev != nil && dayDistance(prev.MainSessionAt, now) <= LookBackDays {
		return Weekend{Active: true, Race: prev}
	}

	return Weekend{}
}

// dayDistance is the distance between two instants in whole days,
// rounded up so a partial day still counts.
func dayDistance(a, b time.Time) int {
	d := b.Sub(a)
	if d < 0 {
		d = -d
	}
	return int(math.Ceil(d.Hours() / 24))
}
