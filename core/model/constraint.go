package model

import "fmt"

// Constraint captures the shift window, the overtime allowance and the
// setup-time table between product types.
type Constraint struct {
	ShiftStart         TimeOfDay
	ShiftEnd           TimeOfDay
	MaxOvertimeMinutes int
	// SetupTimes maps "A->B" to the minutes lost when a machine switches
	// from product type A to product type B. Tables may list a single
	// direction, the reverse key is used as a fallback.
	SetupTimes map[string]int
}

// Validate checks the structural soundness of the constraint itself.
func (c Constraint) Validate() error {
	if c.ShiftStart >= c.ShiftEnd {
		return fmt.Errorf("shift start %s must precede shift end %s", c.ShiftStart, c.ShiftEnd)
	}
	if c.MaxOvertimeMinutes < 0 {
		return fmt.Errorf("max overtime must not be negative")
	}
	return nil
}

// ValidateSetupTable verifies the setup table is total over every ordered
// pair of the given product types. A missing entry is a configuration error
// and aborts the run before any scheduling happens.
func (c Constraint) ValidateSetupTable(productTypes []string) error {
	for _, a := range productTypes {
		for _, b := range productTypes {
			if a == b {
				continue
			}
			if _, ok := c.lookupSetup(a, b); !ok {
				return fmt.Errorf("setup table missing entry for %s->%s", a, b)
			}
		}
	}
	return nil
}

// SetupTime returns the changeover minutes between two product types.
// Identical types never require a setup. The table must have been checked
// with ValidateSetupTable for the types in use.
func (c Constraint) SetupTime(from, to string) int {
	if from == to || from == "" {
		return 0
	}
	if v, ok := c.lookupSetup(from, to); ok {
		return v
	}
	return 0
}

func (c Constraint) lookupSetup(from, to string) (int, bool) {
	if v, ok := c.SetupTimes[from+"->"+to]; ok {
		return v, true
	}
	if v, ok := c.SetupTimes[to+"->"+from]; ok {
		return v, true
	}
	return 0, false
}

// LatestEnd returns the last permitted completion time, shift end plus the
// overtime allowance.
func (c Constraint) LatestEnd() TimeOfDay {
	return c.ShiftEnd.Add(c.MaxOvertimeMinutes)
}
