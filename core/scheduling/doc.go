// Package scheduling implements the schedule-construction strategies for a
// single manufacturing shift.
//
// Jobs are placed on machines inside the shift window (plus an overtime
// allowance), around machine downtime windows, and with changeover setup
// time charged whenever a machine switches product type.
//
// Key components:
//   - Baseline: greedy FIFO placement on the earliest-available compatible machine.
//   - Batching: groups jobs of the same product type to cut setup switches,
//     scheduling rush jobs by due time first.
//   - Balancer: moves jobs off the most-loaded machine to even out finish
//     times without making the schedule worse.
//
// Every strategy consumes an immutable Input and produces a new
// model.Schedule, nothing is mutated in place. Jobs that cannot be placed are
// reported on the schedule's unassigned list, never dropped.
package scheduling
