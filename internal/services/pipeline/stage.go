package pipeline

import (
	"context"
	"time"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// Stage is one step of the pipeline. Stages run strictly in order over a
// shared State, so later stages may read what earlier ones wrote.
type Stage interface {
	Name() string
	Run(ctx context.Context, state *State) error
}

// State is threaded through every stage of one run
type State struct {
	RunID     string
	UserID    string
	Snapshot  *models.FinancialSnapshot
	StartedAt time.Time

	Plan       *models.BudgetPlan
	Risk       *models.RiskAssessment
	Motivation *models.Motivation
	Alerts     []models.Alert

	// Completed lists the stages that finished, in order
	Completed []string

	Result *models.PipelineResult
}
