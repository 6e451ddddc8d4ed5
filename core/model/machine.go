package model

import (
	"fmt"
	"sort"
)

// DowntimeWindow is a period during which a machine cannot run jobs.
type DowntimeWindow struct {
	Start  TimeOfDay
	End    TimeOfDay
	Reason string
}

// Overlaps reports whether the half-open interval [start, end) intersects the
// window. A job ending exactly when the window starts, or starting exactly
// when it ends, does not overlap.
func (w DowntimeWindow) Overlaps(start, end TimeOfDay) bool {
	return Overlaps(start, end, w.Start, w.End)
}

// Machine is a production resource with a fixed set of product capabilities
// and an ordered list of downtime windows. Downtime is only mutated between
// optimization runs, never during a scheduling pass.
type Machine struct {
	ID           string
	Capabilities []string
	Downtime     []DowntimeWindow
}

// CanProduce reports whether the machine supports the given product type.
func (m Machine) CanProduce(productType string) bool {
	for _, c := range m.Capabilities {
		if c == productType {
			return true
		}
	}
	return false
}

// AddDowntime inserts a downtime window, keeping the list sorted by start
// time. Windows must be well formed and must not overlap an existing window.
func (m *Machine) AddDowntime(w DowntimeWindow) error {
	if w.Start >= w.End {
		return fmt.Errorf("machine %s: downtime start %s must precede end %s", m.ID, w.Start, w.End)
	}
	for _, existing := range m.Downtime {
		if existing.Overlaps(w.Start, w.End) {
			return fmt.Errorf("machine %s: downtime %s-%s overlaps existing window %s-%s",
				m.ID, w.Start, w.End, existing.Start, existing.End)
		}
	}
	m.Downtime = append(m.Downtime, w)
	sort.Slice(m.Downtime, func(i, j int) bool { return m.Downtime[i].Start < m.Downtime[j].Start })
	return nil
}

// RemoveDowntime deletes the window starting at the given time. It reports
// whether a window was removed.
func (m *Machine) RemoveDowntime(start TimeOfDay) bool {
	for i, w := range m.Downtime {
		if w.Start == start {
			m.Downtime = append(m.Downtime[:i], m.Downtime[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Sessions operate on their own machine state so
// concurrent optimization runs never share downtime lists.
func (m Machine) Clone() Machine {
	cp := m
	cp.Capabilities = append([]string(nil), m.Capabilities...)
	cp.Downtime = append([]DowntimeWindow(nil), m.Downtime...)
	return cp
}

// CloneMachines deep-copies a machine slice.
func CloneMachines(machines []Machine) []Machine {
	out := make([]Machine, len(machines))
	for i, m := range machines {
		out[i] = m.Clone()
	}
	return out
}

// IndexMachines builds a lookup table keyed by machine id.
func IndexMachines(machines []Machine) map[string]Machine {
	idx := make(map[string]Machine, len(machines))
	for _, m := range machines {
		idx[m.ID] = m
	}
	return idx
}
