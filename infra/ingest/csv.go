// Package ingest reads job lists and downtime reports from CSV files, the
// format planners export from the shop floor system. Rows that fail
// validation are collected instead of aborting the import, the caller decides
// whether to plan around them.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shopfloor/shiftplan/core/model"
)

var validate = validator.New()

// jobRecord is the raw shape of one job CSV row.
type jobRecord struct {
	JobID          string `validate:"required"`
	ProductType    string `validate:"required"`
	ProcessingTime int    `validate:"gt=0"`
	DueTime        string `validate:"required"`
	Priority       string `validate:"oneof=normal rush"`
	MachineOptions string `validate:"required"`
}

// RejectedRow records an input row the importer could not accept.
type RejectedRow struct {
	Line   int
	JobID  string
	Reason string
}

// jobHeader is the expected column order of a job CSV.
var jobHeader = []string{"job_id", "product_type", "processing_time", "due_time", "priority", "machine_options"}

// ReadJobs parses a job CSV. Machine options are separated by semicolons
// within their column. Invalid rows are returned separately and never abort
// the import; only a malformed file does.
func ReadJobs(path string) ([]model.Job, []RejectedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open jobs file: %w", err)
	}
	defer f.Close()
	return parseJobs(f)
}

func parseJobs(r io.Reader) ([]model.Job, []RejectedRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header, jobHeader); err != nil {
		return nil, nil, err
	}

	var jobs []model.Job
	var rejected []RejectedRow
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		j, reason := jobFromRow(row)
		if reason != "" {
			id := ""
			if len(row) > 0 {
				id = strings.TrimSpace(row[0])
			}
			rejected = append(rejected, RejectedRow{Line: line, JobID: id, Reason: reason})
			continue
		}
		jobs = append(jobs, j)
	}
	return jobs, rejected, nil
}

func jobFromRow(row []string) (model.Job, string) {
	if len(row) != len(jobHeader) {
		return model.Job{}, fmt.Sprintf("expected %d columns, got %d", len(jobHeader), len(row))
	}
	proc, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return model.Job{}, fmt.Sprintf("processing_time: %v", err)
	}
	rec := jobRecord{
		JobID:          strings.TrimSpace(row[0]),
		ProductType:    strings.TrimSpace(row[1]),
		ProcessingTime: proc,
		DueTime:        strings.TrimSpace(row[3]),
		Priority:       strings.TrimSpace(row[4]),
		MachineOptions: strings.TrimSpace(row[5]),
	}
	if err := validate.Struct(rec); err != nil {
		return model.Job{}, err.Error()
	}
	due, err := model.ParseTimeOfDay(rec.DueTime)
	if err != nil {
		return model.Job{}, fmt.Sprintf("due_time: %v", err)
	}
	var options []string
	for _, opt := range strings.Split(rec.MachineOptions, ";") {
		if opt = strings.TrimSpace(opt); opt != "" {
			options = append(options, opt)
		}
	}
	j := model.Job{
		ID:             rec.JobID,
		ProductType:    rec.ProductType,
		ProcessingTime: rec.ProcessingTime,
		DueTime:        due,
		Priority:       model.Priority(rec.Priority),
		MachineOptions: options,
	}
	if err := j.Validate(); err != nil {
		return model.Job{}, err.Error()
	}
	return j, ""
}

// downtimeRecord is the raw shape of one downtime CSV row.
type downtimeRecord struct {
	MachineID string `validate:"required"`
	Start     string `validate:"required"`
	End       string `validate:"required"`
	Reason    string `validate:"required"`
}

// DowntimeEntry is one imported downtime window with its machine.
type DowntimeEntry struct {
	MachineID string
	Window    model.DowntimeWindow
}

var downtimeHeader = []string{"machine_id", "start", "end", "reason"}

// ReadDowntime parses a downtime CSV into per-machine windows.
func ReadDowntime(path string) ([]DowntimeEntry, []RejectedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open downtime file: %w", err)
	}
	defer f.Close()
	return parseDowntime(f)
}

func parseDowntime(r io.Reader) ([]DowntimeEntry, []RejectedRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header, downtimeHeader); err != nil {
		return nil, nil, err
	}

	var entries []DowntimeEntry
	var rejected []RejectedRow
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		entry, reason := downtimeFromRow(row)
		if reason != "" {
			rejected = append(rejected, RejectedRow{Line: line, Reason: reason})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, rejected, nil
}

func downtimeFromRow(row []string) (DowntimeEntry, string) {
	if len(row) != len(downtimeHeader) {
		return DowntimeEntry{}, fmt.Sprintf("expected %d columns, got %d", len(downtimeHeader), len(row))
	}
	rec := downtimeRecord{
		MachineID: strings.TrimSpace(row[0]),
		Start:     strings.TrimSpace(row[1]),
		End:       strings.TrimSpace(row[2]),
		Reason:    strings.TrimSpace(row[3]),
	}
	if err := validate.Struct(rec); err != nil {
		return DowntimeEntry{}, err.Error()
	}
	start, err := model.ParseTimeOfDay(rec.Start)
	if err != nil {
		return DowntimeEntry{}, fmt.Sprintf("start: %v", err)
	}
	end, err := model.ParseTimeOfDay(rec.End)
	if err != nil {
		return DowntimeEntry{}, fmt.Sprintf("end: %v", err)
	}
	if start >= end {
		return DowntimeEntry{}, fmt.Sprintf("window %s-%s is empty or inverted", rec.Start, rec.End)
	}
	return DowntimeEntry{
		MachineID: rec.MachineID,
		Window:    model.DowntimeWindow{Start: start, End: end, Reason: rec.Reason},
	}, ""
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("unexpected header %v, want %v", got, want)
	}
	for i := range want {
		if strings.TrimSpace(strings.ToLower(got[i])) != want[i] {
			return fmt.Errorf("unexpected header column %q, want %q", got[i], want[i])
		}
	}
	return nil
}
