// Package snapshot builds point-in-time financial snapshots from stored records
package snapshot

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

const (
	topCategoriesLimit = 5
	otherCategory      = "Other"
)

// Service implements interfaces.SnapshotService
type Service struct {
	store   interfaces.SnapshotStore
	config  common.SnapshotConfig
	timeout time.Duration
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a new snapshot service. timeout bounds each store read; zero disables it.
func NewService(store interfaces.SnapshotStore, config common.SnapshotConfig, timeout time.Duration, logger *common.Logger) *Service {
	if config.FallbackDays <= 0 {
		config.FallbackDays = 30
	}
	return &Service{
		store:   store,
		config:  config,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// Build reads the user's records and computes a fresh snapshot.
// A user with no records yields an all-zero snapshot.
func (s *Service) Build(ctx context.Context, userID string) (*models.FinancialSnapshot, error) {
	in, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Compute(userID, in), nil
}

// Load reads accounts, budgets, goals and every transaction that either
// candidate window could need, in a single store call.
func (s *Service) Load(ctx context.Context, userID string) (*models.SnapshotInputs, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	now := s.now()
	window := s.monthWindow(now)
	if trailing := s.trailingWindow(now); trailing.From.Before(window.From) {
		window.From = trailing.From
	}

	in, err := s.store.GetSnapshotInputs(ctx, userID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot inputs for %s: %w", userID, err)
	}
	if in == nil {
		in = &models.SnapshotInputs{}
	}
	return in, nil
}

// monthWindow is the whole calendar month containing now, dated rows later in the month included
func (s *Service) monthWindow(now time.Time) models.Window {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return models.Window{From: start, To: start.AddDate(0, 1, 0)}
}

// trailingWindow has no upper bound inside the current month either
func (s *Service) trailingWindow(now time.Time) models.Window {
	return models.Window{From: now.AddDate(0, 0, -s.config.FallbackDays), To: s.monthWindow(now).To}
}

// Compute derives the snapshot from loaded inputs
func (s *Service) Compute(userID string, in *models.SnapshotInputs) *models.FinancialSnapshot {
	if in == nil {
		in = &models.SnapshotInputs{}
	}
	now := s.now()

	snap := &models.FinancialSnapshot{
		UserID:                userID,
		BudgetStatus:          []models.BudgetStatus{},
		BudgetOvershoots:      []string{},
		GoalProgress:          []models.GoalProgress{},
		TopSpendingCategories: []models.CategorySpend{},
		TransactionCategories: []string{},
		AccountsCount:         len(in.Accounts),
		GoalsCount:            len(in.Goals),
	}

	for _, a := range in.Accounts {
		snap.TotalBalance += a.Balance
	}

	window, kind := s.selectWindow(in.Transactions, now)
	snap.Window = kind

	var txns []models.Transaction
	for _, t := range in.Transactions {
		if t.IsPending {
			snap.PendingTransactions++
		}
		if window.Contains(t.Date) {
			txns = append(txns, t)
		}
	}

	for _, t := range txns {
		if t.Amount > 0 {
			snap.MonthlyIncome += t.Amount
		} else if t.Amount < 0 {
			snap.MonthlyExpenses += -t.Amount
		}
	}
	if snap.MonthlyIncome > 0 {
		snap.SavingsRate = (snap.MonthlyIncome - snap.MonthlyExpenses) / snap.MonthlyIncome
	}

	for _, b := range in.Budgets {
		if !b.IsActive {
			continue
		}
		snap.ActiveBudgetsCount++
		status := BudgetStatus(b)
		snap.BudgetStatus = append(snap.BudgetStatus, status)
		if status.Status == models.BudgetOver {
			snap.BudgetOvershoots = append(snap.BudgetOvershoots, b.Category)
		}
	}

	for _, g := range in.Goals {
		if !g.IsActive {
			continue
		}
		snap.GoalProgress = append(snap.GoalProgress, GoalProgress(g, now))
	}

	snap.TopSpendingCategories = TopCategories(txns, topCategoriesLimit)
	snap.TransactionCategories = categories(txns)

	s.logger.Debug().
		Str("user_id", userID).
		Str("window", kind).
		Int("transactions", len(txns)).
		Float64("savings_rate", snap.SavingsRate).
		Msg("Snapshot computed")

	return snap
}

// selectWindow uses the current month unless it fails the configured policy
func (s *Service) selectWindow(txns []models.Transaction, now time.Time) (models.Window, string) {
	month := s.monthWindow(now)

	count := 0
	hasIncome := false
	for _, t := range txns {
		if !month.Contains(t.Date) {
			continue
		}
		count++
		if t.Amount > 0 {
			hasIncome = true
		}
	}

	if count < s.config.MinTransactions || (s.config.RequireIncome && !hasIncome) {
		return s.trailingWindow(now), models.WindowTrailing
	}
	return month, models.WindowCurrentMonth
}

// BudgetStatus computes usage of one budget: over above 100%, on_track below 80%, else warning
func BudgetStatus(b models.Budget) models.BudgetStatus {
	var pct float64
	if b.Amount > 0 {
		pct = b.Spent / b.Amount * 100
	}

	status := models.BudgetWarning
	switch {
	case pct > 100:
		status = models.BudgetOver
	case pct < 80:
		status = models.BudgetOnTrack
	}

	return models.BudgetStatus{
		Category:   b.Category,
		Amount:     b.Amount,
		Spent:      b.Spent,
		Percentage: pct,
		Status:     status,
	}
}

// GoalProgress computes completion and whole days left, evaluated in the target date's location.
// Days round down, so a goal hours past its deadline reports -1.
func GoalProgress(g models.Goal, now time.Time) models.GoalProgress {
	var pct float64
	if g.TargetAmount > 0 {
		pct = g.CurrentAmount / g.TargetAmount * 100
	}

	local := now.In(g.TargetDate.Location())
	days := int(math.Floor(g.TargetDate.Sub(local).Hours() / 24))

	return models.GoalProgress{
		Name:          g.Name,
		Target:        g.TargetAmount,
		Current:       g.CurrentAmount,
		Percentage:    pct,
		DaysRemaining: days,
	}
}

// TopCategories ranks expense categories by absolute amount, ties broken by name
func TopCategories(txns []models.Transaction, limit int) []models.CategorySpend {
	totals := make(map[string]float64)
	for _, t := range txns {
		if t.Amount >= 0 {
			continue
		}
		cat := t.Category
		if cat == "" {
			cat = otherCategory
		}
		totals[cat] += -t.Amount
	}

	ranked := make([]models.CategorySpend, 0, len(totals))
	for cat, amt := range totals {
		ranked = append(ranked, models.CategorySpend{Category: cat, Amount: amt})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Amount != ranked[j].Amount {
			return ranked[i].Amount > ranked[j].Amount
		}
		return ranked[i].Category < ranked[j].Category
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// categories returns the distinct non-empty categories, sorted
func categories(txns []models.Transaction) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, t := range txns {
		if t.Category == "" || seen[t.Category] {
			continue
		}
		seen[t.Category] = true
		out = append(out, t.Category)
	}
	sort.Strings(out)
	return out
}

// SpendingInsights summarizes the snapshot's spending patterns
func SpendingInsights(snap *models.FinancialSnapshot) *models.SpendingInsights {
	result := &models.SpendingInsights{
		SpendingPatterns: []models.CategorySpend{},
		Insights:         []string{},
		Recommendations: []string{
			"Review your spending in top categories",
			"Set up automatic savings",
			"Track expenses daily",
		},
	}
	if snap == nil {
		return result
	}

	result.SpendingPatterns = append(result.SpendingPatterns, snap.TopSpendingCategories...)
	if len(snap.TopSpendingCategories) > 0 {
		result.Insights = append(result.Insights,
			fmt.Sprintf("Your highest spending category is %s", snap.TopSpendingCategories[0].Category))
	}
	if snap.MonthlyIncome > snap.MonthlyExpenses {
		result.Insights = append(result.Insights,
			fmt.Sprintf("You could save $%.2f per month", snap.Available()))
	}
	return result
}

// Compile-time check
var _ interfaces.SnapshotService = (*Service)(nil)
