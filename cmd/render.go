package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopfloor/shiftplan/core/orchestrator"
)

// printResult renders the selected schedule, its indicators and the
// validation report.
func printResult(w io.Writer, res *orchestrator.Result) {
	sel := res.Selected
	fmt.Fprintf(w, "session %s: %s strategy selected (%s)\n", res.SessionID, sel.Stage, sel.Report.Verdict)
	if sel.Rationale != "" {
		fmt.Fprintf(w, "%s\n", sel.Rationale)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MACHINE\tJOB\tSTART\tEND")
	for _, mid := range sel.Schedule.MachineIDs() {
		for _, a := range sel.Schedule.Assignments[mid] {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mid, a.JobID, a.Start, a.End)
		}
	}
	tw.Flush()

	if len(sel.Schedule.Unassigned) > 0 {
		fmt.Fprintln(w, "\nunassigned:")
		for _, u := range sel.Schedule.Unassigned {
			fmt.Fprintf(w, "  %s: %s\n", u.JobID, u.Reason)
		}
	}

	k := sel.KPI
	fmt.Fprintf(w, "\ntardiness %d min, setup %d min, %d switch(es), imbalance %.1f%%, overtime %d min\n",
		k.TotalTardiness, k.TotalSetupTime, k.SwitchCount, k.ImbalancePct, k.OvertimeMinutes)

	if len(sel.Report.Violations) > 0 {
		fmt.Fprintln(w, "\nfindings:")
		for _, v := range sel.Report.Violations {
			fmt.Fprintf(w, "  [%s] %s: %s\n", v.Severity, v.Code, v.Message)
		}
	}
}
