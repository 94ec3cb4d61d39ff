package templates

import "time"

// ExperimentRow is one rendered table row; every field is display-ready.
type ExperimentRow struct {
	ID         string
	Date       string
	User       string
	Microscope string
	Objective  string
	Channels   string
	ELN        string
}

// ExperimentsTable carries everything the experiments table needs for one render.
type ExperimentsTable struct {
	Loaded bool
	Rows   []ExperimentRow
	// PollEvery is how often an unloaded table asks the server for a fresh copy.
	PollEvery time.Duration
}

// State names the table's load state for markup and styling.
func (t ExperimentsTable) State() string {
	if t.Loaded {
		return "loaded"
	}
	return "empty"
}

// DashboardPage is the full dashboard document.
type DashboardPage struct {
	Title string
	Table ExperimentsTable
}
