package reports

import (
	"time"

	"github.com/google/uuid"

	"tastytracker/models"
)

// LoadLevel color-codes a month's estimated hours for one member.
type LoadLevel string

const (
	LoadNone     LoadLevel = "none"     // no work scheduled
	LoadOK       LoadLevel = "ok"       // up to two weeks
	LoadHigh     LoadLevel = "high"     // heavy month
	LoadOverload LoadLevel = "overload" // more than a full month
)

func LevelFor(hours float64) LoadLevel {
	switch {
	case hours == 0:
		return LoadNone
	case hours <= 80:
		return LoadOK
	case hours <= 140:
		return LoadHigh
	default:
		return LoadOverload
	}
}

type WorkloadCell struct {
	Month string    `json:"month"`
	Hours float64   `json:"hours"`
	Level LoadLevel `json:"level"`
}

type MemberWorkload struct {
	UserID   uuid.UUID      `json:"user_id"`
	FullName string         `json:"full_name"`
	Cells    []WorkloadCell `json:"cells"`
}

// Months returns n consecutive months starting at the month containing
// from.
func Months(from time.Time, n int) []time.Time {
	start := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	months := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		months = append(months, start.AddDate(0, i, 0))
	}
	return months
}

func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// Workload buckets each member's open tasks' estimated hours into the
// month of their due date. Done tasks, unassigned tasks and tasks
// without a due date contribute nothing.
func Workload(tasks []models.ProjectTask, members []models.Profile, months []time.Time) []MemberWorkload {
	buckets := make(map[uuid.UUID]map[string]float64, len(members))
	for _, m := range members {
		buckets[m.ID] = make(map[string]float64, len(months))
		for _, month := range months {
			buckets[m.ID][MonthKey(month)] = 0
		}
	}

	for _, task := range tasks {
		if task.Status == models.TaskDone || task.AssignedTo == nil || task.DueDate == nil {
			continue
		}
		memberBuckets, ok := buckets[*task.AssignedTo]
		if !ok {
			continue
		}
		key := MonthKey(*task.DueDate)
		if _, ok := memberBuckets[key]; !ok {
			// due date outside the window
			continue
		}
		memberBuckets[key] += task.EstimatedHours
	}

	result := make([]MemberWorkload, 0, len(members))
	for _, m := range members {
		cells := make([]WorkloadCell, 0, len(months))
		for _, month := range months {
			key := MonthKey(month)
			hours := buckets[m.ID][key]
			cells = append(cells, WorkloadCell{
				Month: key,
				Hours: hours,
				Level: LevelFor(hours),
			})
		}
		result = append(result, MemberWorkload{
			UserID:   m.ID,
			FullName: m.FullName,
			Cells:    cells,
		})
	}
	return result
}
