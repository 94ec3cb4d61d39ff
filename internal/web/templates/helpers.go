package templates

import (
	"fmt"
	"time"

	"github.com/emiliopalmerini/rtgscope/internal/domain"
)

// ExperimentsHeader is the fixed header row of the experiments table.
var ExperimentsHeader = []string{"Date", "User", "Microscope", "Objective", "Channels", "ELN"}

// RowsFromRecords maps records to rows, keeping server order.
func RowsFromRecords(records []domain.ExperimentRecord) []ExperimentRow {
	rows := make([]ExperimentRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, ExperimentRow{
			ID:         string(r.ID),
			Date:       r.AcquisitionDate,
			User:       r.UserID,
			Microscope: r.Microscope,
			Objective:  r.Objective,
			Channels:   r.JoinedChannels(),
			ELN:        string(r.ELNID),
		})
	}
	return rows
}

// Cells returns the row's cells in header order.
func (r ExperimentRow) Cells() []string {
	return []string{r.Date, r.User, r.Microscope, r.Objective, r.Channels, r.ELN}
}

// pollTrigger renders an htmx "every" trigger. Whole seconds keep the "s"
// unit, anything else is given in milliseconds.
func pollTrigger(d time.Duration) string {
	if d < time.Second {
		d = time.Second
	}
	if d%time.Second == 0 {
		return fmt.Sprintf("every %ds", int64(d/time.Second))
	}
	return fmt.Sprintf("every %dms", d.Milliseconds())
}
