package appointment

import (
	"sort"
	"time"
)

// Derivation helpers over a collection of appointments. All functions are
// pure: they never mutate their input and take "now" explicitly so callers
// (and tests) control the clock.

// FilterAll is the sentinel filter value meaning "no constraint".
const FilterAll = "all"

// FilterByStatus keeps entries with the given status. "all" returns the
// input unchanged.
func FilterByStatus(appts []Appointment, status string) []Appointment {
	if status == FilterAll || status == "" {
		return appts
	}
	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out
}

// FilterByDoctor keeps entries for the given doctor. "all" returns the input
// unchanged.
func FilterByDoctor(appts []Appointment, doctor string) []Appointment {
	if doctor == FilterAll || doctor == "" {
		return appts
	}
	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		if a.DoctorName == doctor {
			out = append(out, a)
		}
	}
	return out
}

// FilterByDateRange keeps entries whose date falls within
// [startOfDay(start), endOfDay(end)]. A nil bound leaves that side
// unconstrained.
func FilterByDateRange(appts []Appointment, start, end *time.Time) []Appointment {
	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		if start != nil && a.AppointmentDate.Before(startOfDay(*start)) {
			continue
		}
		if end != nil && a.AppointmentDate.After(endOfDay(*end)) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// SortByDate returns a new slice sorted by appointment instant. order is
// "asc" or "desc"; the sort is stable and the input is left untouched.
func SortByDate(appts []Appointment, order string) []Appointment {
	out := make([]Appointment, len(appts))
	copy(out, appts)
	sort.SliceStable(out, func(i, j int) bool {
		if order == "desc" {
			return out[j].AppointmentDate.Before(out[i].AppointmentDate)
		}
		return out[i].AppointmentDate.Before(out[j].AppointmentDate)
	})
	return out
}

// Today returns entries on the same local calendar day as now.
func Today(appts []Appointment, now time.Time) []Appointment {
	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		if sameDay(a.AppointmentDate, now) {
			out = append(out, a)
		}
	}
	return out
}

// Upcoming returns entries strictly after now that are still live (not
// cancelled, not completed), sorted ascending.
func Upcoming(appts []Appointment, now time.Time) []Appointment {
	live := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		if a.AppointmentDate.After(now) && a.Status != StatusCancelled && a.Status != StatusCompleted {
			live = append(live, a)
		}
	}
	return SortByDate(live, "asc")
}

// Stats is the dashboard tally.
type Stats struct {
	Total     int `json:"total"`
	Today     int `json:"today"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// Tally counts appointments by status plus today's entries.
func Tally(appts []Appointment, now time.Time) Stats {
	s := Stats{Total: len(appts), Today: len(Today(appts, now))}
	for _, a := range appts {
		switch a.Status {
		case StatusPending:
			s.Pending++
		case StatusConfirmed:
			s.Confirmed++
		case StatusCompleted:
			s.Completed++
		case StatusCancelled:
			s.Cancelled++
		}
	}
	return s
}

// UniqueDoctors returns distinct doctor names in order of first appearance.
func UniqueDoctors(appts []Appointment) []string {
	return uniqueBy(appts, func(a Appointment) string { return a.DoctorName })
}

// UniqueSpecialties returns distinct specialties in order of first appearance.
func UniqueSpecialties(appts []Appointment) []string {
	return uniqueBy(appts, func(a Appointment) string { return a.Specialty })
}

func uniqueBy(appts []Appointment, key func(Appointment) string) []string {
	seen := make(map[string]struct{}, len(appts))
	out := make([]string, 0, len(appts))
	for _, a := range appts {
		k := key(a)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// DefaultSlotDuration is how long a booking occupies a doctor when the
// caller does not say otherwise.
const DefaultSlotDuration = time.Hour

// IsSlotAvailable reports whether the half-open interval
// [proposedStart, proposedStart+duration) is free for the doctor. Cancelled
// appointments do not occupy their slot. Two slots conflict when each starts
// before the other ends; touching intervals (one ends exactly where the
// other starts) do not conflict.
func IsSlotAvailable(appts []Appointment, proposedStart time.Time, doctor string, duration time.Duration) bool {
	if duration <= 0 {
		duration = DefaultSlotDuration
	}
	proposedEnd := proposedStart.Add(duration)
	for _, a := range appts {
		if a.DoctorName != doctor || a.Status == StatusCancelled {
			continue
		}
		aptEnd := a.AppointmentDate.Add(duration)
		if proposedStart.Before(aptEnd) && a.AppointmentDate.Before(proposedEnd) {
			return false
		}
	}
	return true
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
