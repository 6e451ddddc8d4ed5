package validation

// Severity grades a violation.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// Code identifies the rule a violation belongs to.
type Code string

const (
	CodeJobMissing          Code = "JOB_MISSING"
	CodeJobDuplicated       Code = "JOB_DUPLICATED"
	CodeJobUnassigned       Code = "JOB_UNASSIGNED"
	CodeUnknownJob          Code = "UNKNOWN_JOB"
	CodeUnknownMachine      Code = "UNKNOWN_MACHINE"
	CodeMachineIncompatible Code = "MACHINE_INCOMPATIBLE"
	CodeDowntimeOverlap     Code = "DOWNTIME_OVERLAP"
	CodeOutsideShift        Code = "OUTSIDE_SHIFT"
	CodeBeyondOvertimeCap   Code = "BEYOND_OVERTIME_CAP"
	CodeWithinOvertime      Code = "WITHIN_OVERTIME"
	CodeRushLate            Code = "RUSH_LATE"
	CodeJobLate             Code = "JOB_LATE"
	CodeDoubleBooking       Code = "DOUBLE_BOOKING"
	CodeBadInterval         Code = "BAD_INTERVAL"
)

// Violation is one finding of the validator.
type Violation struct {
	Severity Severity
	Code     Code
	Message  string
}

// Verdict is the overall feasibility classification of a schedule.
type Verdict string

const (
	// VerdictCompliant means no critical violations were found.
	VerdictCompliant Verdict = "compliant"
	// VerdictBestEffort means the schedule carries critical violations or
	// unassigned jobs, but is the least-violating option the pipeline found.
	VerdictBestEffort Verdict = "best-effort"
	// VerdictInvalid means the schedule is structurally broken, for example
	// a double-booked machine. It must not be executed.
	VerdictInvalid Verdict = "invalid"
)

// Report is the full validator output. The validator never repairs a
// schedule, it only reports.
type Report struct {
	Violations []Violation
	Verdict    Verdict
}

// CriticalCount returns the number of critical violations.
func (r Report) CriticalCount() int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warnings.
func (r Report) WarningCount() int {
	return len(r.Violations) - r.CriticalCount()
}

// IsExecutable reports whether the schedule may be handed to the shop floor
// at all. Best-effort schedules are executable, invalid ones are not.
func (r Report) IsExecutable() bool {
	return r.Verdict != VerdictInvalid
}
