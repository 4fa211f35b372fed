// internal/domain/diagnostic/report.go
package diagnostic

// StageStatus is the outcome of a single probe in the pipeline.
type StageStatus string

const (
	StagePending StageStatus = "pending"
	StageSuccess StageStatus = "success"
	StageError   StageStatus = "error"
)

// OverallStatus aggregates the stage outcomes for presentation.
type OverallStatus string

const (
	OverallHealthy OverallStatus = "healthy"
	OverallIssue   OverallStatus = "issue"
)

// Stage names, in pipeline order.
const (
	StageLocal     = "local"
	StageSession   = "session"
	StageInterface = "interface"
	StageSignal    = "signal"
	StageInternet  = "internet"
)

var stageOrder = []string{StageLocal, StageSession, StageInterface, StageSignal, StageInternet}

type Stage struct {
	Name    string      `json:"name"`
	Status  StageStatus `json:"status"`
	Message string      `json:"message"`
}

// Report is an ephemeral per-invocation health report. It is built fresh for
// every diagnostic run and never persisted.
type Report struct {
	ID         string        `json:"id"`
	CustomerID int64         `json:"customer_id"`
	Stages     []Stage       `json:"stages"`
	Overall    OverallStatus `json:"overall_status"`
}

// NewReport returns a report with every stage pending.
func NewReport(id string, customerID int64) *Report {
	stages := make([]Stage, len(stageOrder))
	for i, name := range stageOrder {
		stages[i] = Stage{Name: name, Status: StagePending}
	}
	return &Report{ID: id, CustomerID: customerID, Stages: stages, Overall: OverallHealthy}
}

// Set records the outcome of a named stage and refreshes the aggregate.
func (r *Report) Set(name string, status StageStatus, message string) {
	for i := range r.Stages {
		if r.Stages[i].Name == name {
			r.Stages[i].Status = status
			r.Stages[i].Message = message
			break
		}
	}
	r.Overall = r.aggregate()
}

// Get returns the stage with the given name, or nil.
func (r *Report) Get(name string) *Stage {
	for i := range r.Stages {
		if r.Stages[i].Name == name {
			return &r.Stages[i]
		}
	}
	return nil
}

// aggregate derives the overall status. Stages left pending do not count as
// errors: a stage never reached because its prerequisite was absent is not
// itself a failure.
func (r *Report) aggregate() OverallStatus {
	for _, s := range r.Stages {
		if s.Status == StageError {
			return OverallIssue
		}
	}
	return OverallHealthy
}
