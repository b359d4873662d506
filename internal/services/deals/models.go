package deals

import (
	"time"

	"github.com/Aaryan-Sharma-5/Aequitas-MVP-test/internal/underwriting"
)

// Status is the pipeline stage of a deal.
type Status string

const (
	StatusPotential Status = "potential"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// AllStatuses lists every pipeline stage in display order.
var AllStatuses = []Status{StatusPotential, StatusOngoing, StatusCompleted, StatusRejected}

// Valid reports whether s is a known pipeline stage.
func (s Status) Valid() bool {
	switch s {
	case StatusPotential, StatusOngoing, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// Deal is a saved underwriting scenario. Metrics are always the engine's
// output for the stored parameters; they are recomputed on every write and
// never drift from the inputs.
type Deal struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Zipcode  string `json:"zipcode,omitempty"`
	Status   Status `json:"status"`

	Parameters underwriting.DealParameters `json:"parameters"`
	Metrics    *underwriting.DealMetrics   `json:"metrics"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input carries the writable fields of a deal.
type Input struct {
	Name       string                      `json:"name"`
	Location   string                      `json:"location"`
	Zipcode    string                      `json:"zipcode"`
	Status     Status                      `json:"status"`
	Parameters underwriting.DealParameters `json:"parameters"`
}
