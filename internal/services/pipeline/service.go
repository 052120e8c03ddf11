// Package pipeline runs the planner, risk, motivation, notification and
// aggregate stages for one user
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// Service implements interfaces.PipelineService
type Service struct {
	snapshots interfaces.SnapshotService
	recorder  interfaces.ExecutionRecorder
	stages    []Stage
	logger    *common.Logger
	now       func() time.Time
	newID     func() string
}

// NewService wires the standard stage sequence. generator and recorder may be nil.
func NewService(
	snapshots interfaces.SnapshotService,
	risk interfaces.RiskService,
	generator interfaces.TextGenerator,
	recorder interfaces.ExecutionRecorder,
	config common.LLMConfig,
	logger *common.Logger,
) *Service {
	if generator != nil {
		config.Model = generator.Model()
	}
	timeout := config.GetTimeout()

	s := &Service{
		snapshots: snapshots,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	s.stages = []Stage{
		&PlannerStage{generator: generator, timeout: timeout, logger: logger},
		&RiskStage{risk: risk},
		&MotivationStage{generator: generator, timeout: timeout, logger: logger},
		NotificationStage{},
		AggregateStage{now: func() time.Time { return s.now() }},
	}
	return s
}

// Stages returns the stage names in execution order
func (s *Service) Stages() []string {
	names := make([]string, len(s.stages))
	for i, st := range s.stages {
		names[i] = st.Name()
	}
	return names
}

// Run executes every stage in order. The first failing stage aborts the run
// and no partial result is returned. A store failure degrades to an empty
// snapshot; inputs that break the non-negative amount contract fail the run.
func (s *Service) Run(ctx context.Context, userID string) (*models.PipelineResult, error) {
	state := &State{
		RunID:     s.newID(),
		UserID:    userID,
		StartedAt: s.now(),
	}
	log := s.logger.With().Str("run_id", state.RunID).Str("user_id", userID).Logger()

	in, err := s.snapshots.Load(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Msg("Snapshot inputs unavailable, continuing with empty snapshot")
		in = &models.SnapshotInputs{}
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline inputs for %s: %w", userID, err)
	}
	state.Snapshot = s.snapshots.Compute(userID, in)

	for _, stage := range s.stages {
		start := time.Now()
		err := stage.Run(ctx, state)
		duration := time.Since(start)
		s.record(ctx, state, stage.Name(), duration, err)

		if err != nil {
			log.Error().
				Str("stage", stage.Name()).
				Int64("duration_ms", duration.Milliseconds()).
				Err(err).
				Msg("Pipeline stage failed")
			return nil, fmt.Errorf("%s stage: %w", stage.Name(), err)
		}
		log.Debug().Str("stage", stage.Name()).Int64("duration_ms", duration.Milliseconds()).Msg("Pipeline stage complete")
		state.Completed = append(state.Completed, stage.Name())
	}

	log.Info().Int("alerts", len(state.Alerts)).Str("risk_level", state.Risk.RiskLevel).Msg("Pipeline complete")
	return state.Result, nil
}

func (s *Service) record(ctx context.Context, state *State, stage string, duration time.Duration, stageErr error) {
	if s.recorder == nil {
		return
	}
	exec := &models.StageExecution{
		RunID:      state.RunID,
		UserID:     state.UserID,
		Stage:      stage,
		Status:     models.ExecutionSuccess,
		Duration:   duration,
		ExecutedAt: s.now(),
	}
	if stageErr != nil {
		exec.Status = models.ExecutionFailed
		exec.Error = stageErr.Error()
	}
	if err := s.recorder.RecordExecution(ctx, exec); err != nil {
		s.logger.Warn().
			Str("run_id", state.RunID).
			Str("stage", stage).
			Err(err).
			Msg("Failed to record stage execution")
	}
}

// Compile-time check
var _ interfaces.PipelineService = (*Service)(nil)
