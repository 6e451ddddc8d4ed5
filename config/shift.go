package config

import (
	"fmt"

	"github.com/shopfloor/shiftplan/core/model"
)

// ShiftConfig describes the working window and changeover matrix. Times use
// the HH:MM format.
type ShiftConfig struct {
	Start              string         `json:"start"`
	End                string         `json:"end"`
	MaxOvertimeMinutes int            `json:"max_overtime_minutes"`
	SetupTimes         map[string]int `json:"setup_times"`
}

// Validate checks the window and the setup values.
func (c ShiftConfig) Validate() error {
	_, err := c.Constraint()
	return err
}

// Constraint builds the domain constraint from the raw config values.
func (c ShiftConfig) Constraint() (model.Constraint, error) {
	start, err := model.ParseTimeOfDay(c.Start)
	if err != nil {
		return model.Constraint{}, fmt.Errorf("shift start: %w", err)
	}
	end, err := model.ParseTimeOfDay(c.End)
	if err != nil {
		return model.Constraint{}, fmt.Errorf("shift end: %w", err)
	}
	out := model.Constraint{
		ShiftStart:         start,
		ShiftEnd:           end,
		MaxOvertimeMinutes: c.MaxOvertimeMinutes,
		SetupTimes:         c.SetupTimes,
	}
	if err := out.Validate(); err != nil {
		return model.Constraint{}, err
	}
	return out, nil
}

// DowntimeConfig is one planned downtime window in the config file.
type DowntimeConfig struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason"`
}

// MachineConfig describes one machine of the park.
type MachineConfig struct {
	ID           string           `json:"id"`
	Capabilities []string         `json:"capabilities"`
	Downtime     []DowntimeConfig `json:"downtime"`
}

// Validate checks the machine definition.
func (c MachineConfig) Validate() error {
	_, err := c.Machine()
	return err
}

// Machine builds the domain machine, registering planned downtime windows.
func (c MachineConfig) Machine() (model.Machine, error) {
	if c.ID == "" {
		return model.Machine{}, fmt.Errorf("machine id must not be empty")
	}
	if len(c.Capabilities) == 0 {
		return model.Machine{}, fmt.Errorf("machine %s: capabilities must not be empty", c.ID)
	}
	m := model.Machine{ID: c.ID, Capabilities: append([]string(nil), c.Capabilities...)}
	for _, d := range c.Downtime {
		start, err := model.ParseTimeOfDay(d.Start)
		if err != nil {
			return model.Machine{}, fmt.Errorf("machine %s downtime start: %w", c.ID, err)
		}
		end, err := model.ParseTimeOfDay(d.End)
		if err != nil {
			return model.Machine{}, fmt.Errorf("machine %s downtime end: %w", c.ID, err)
		}
		if err := m.AddDowntime(model.DowntimeWindow{Start: start, End: end, Reason: d.Reason}); err != nil {
			return model.Machine{}, fmt.Errorf("machine %s: %w", c.ID, err)
		}
	}
	return m, nil
}

// MachinePark builds all configured machines.
func (c *Config) MachinePark() ([]model.Machine, error) {
	out := make([]model.Machine, 0, len(c.Machines))
	for _, mc := range c.Machines {
		m, err := mc.Machine()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Constraint builds the shift constraint.
func (c *Config) Constraint() (model.Constraint, error) {
	return c.Shift.Constraint()
}
