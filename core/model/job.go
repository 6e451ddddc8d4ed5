package model

import "fmt"

// Priority classifies how strictly a job's due time must be honored.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityRush   Priority = "rush"
)

// ParsePriority converts a string to a Priority. Unknown values are an error.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityNormal, PriorityRush:
		return Priority(s), nil
	default:
		return "", fmt.Errorf("unknown priority %q", s)
	}
}

// Job is a unit of work to place on a machine within the shift.
// Jobs are immutable once scheduling begins.
type Job struct {
	ID             string
	ProductType    string
	ProcessingTime int // minutes, must be positive
	DueTime        TimeOfDay
	Priority       Priority
	MachineOptions []string // ids of machines able to run this job, non-empty
}

// IsRush reports whether the job carries rush priority.
func (j Job) IsRush() bool { return j.Priority == PriorityRush }

// Validate checks that the job record is well formed. A failing job is
// reported unassigned with the returned reason, it never aborts a run.
func (j Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job id must not be empty")
	}
	if j.ProductType == "" {
		return fmt.Errorf("job %s: product type must not be empty", j.ID)
	}
	if j.ProcessingTime <= 0 {
		return fmt.Errorf("job %s: processing time must be positive", j.ID)
	}
	if len(j.MachineOptions) == 0 {
		return fmt.Errorf("job %s: machine options must not be empty", j.ID)
	}
	if j.Priority != PriorityNormal && j.Priority != PriorityRush {
		return fmt.Errorf("job %s: unknown priority %q", j.ID, j.Priority)
	}
	return nil
}

// IndexJobs builds a lookup table keyed by job id.
func IndexJobs(jobs []Job) map[string]Job {
	idx := make(map[string]Job, len(jobs))
	for _, j := range jobs {
		idx[j.ID] = j
	}
	return idx
}
