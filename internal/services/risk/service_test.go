package risk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// --- Mocks ---

type mockModel struct {
	size    int
	scoreFn func(features []float64) (float64, error)
}

func (m *mockModel) InputSize() int { return m.size }

func (m *mockModel) Score(features []float64) (float64, error) {
	if m.scoreFn != nil {
		return m.scoreFn(features)
	}
	return 0.42, nil
}

const logisticModel = `{
  "name": "test-logistic",
  "layers": [
    {"weights": [[0, 2, 0, 0, 0, 0, 0, 0, 0, 0]], "bias": [-1], "activation": "sigmoid"}
  ]
}`

// --- Tests ---

func TestRuleScore(t *testing.T) {
	tests := []struct {
		name string
		snap *models.FinancialSnapshot
		want float64
	}{
		{"nil snapshot", nil, 0.8},
		{"no income", &models.FinancialSnapshot{MonthlyExpenses: 500}, 0.8},
		{"healthy", &models.FinancialSnapshot{MonthlyIncome: 5000, MonthlyExpenses: 3000, TotalBalance: 1000}, 0.5},
		{"tight", &models.FinancialSnapshot{MonthlyIncome: 5000, MonthlyExpenses: 4600}, 0.8},
		{"exactly 90 percent spent", &models.FinancialSnapshot{MonthlyIncome: 5000, MonthlyExpenses: 4500}, 0.5},
		{"overspending clamps", &models.FinancialSnapshot{MonthlyIncome: 5000, MonthlyExpenses: 6000, TotalBalance: -100}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RuleScore(tt.snap)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.Equal(t, got, RuleScore(tt.snap), "rule score is idempotent")
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestExtractFeatures(t *testing.T) {
	snap := &models.FinancialSnapshot{
		MonthlyIncome:         5000,
		MonthlyExpenses:       4000,
		TotalBalance:          120000,
		AccountsCount:         3,
		ActiveBudgetsCount:    2,
		GoalsCount:            1,
		TransactionCategories: []string{"a", "b", "c", "d"},
	}

	f := ExtractFeatures(snap)
	require.Len(t, f, FeatureCount)
	expected := []float64{0.2, 0.4, 1, 0.5, 0.4, 0.3, 0.2, 0.1, 0.2, 0.5}
	for i := range expected {
		assert.InDelta(t, expected[i], f[i], 1e-9, "feature %d", i)
	}
}

func TestExtractFeatures_NoIncome(t *testing.T) {
	f := ExtractFeatures(&models.FinancialSnapshot{})
	assert.Equal(t, []float64{0.5, 0.5, 0, 0.5, 0.5, 0, 0, 0, 0, 0.5}, f)
}

func TestService_LearnedFirst(t *testing.T) {
	svc := NewService(&mockModel{size: FeatureCount}, common.NewSilentLogger())

	got := svc.Score(context.Background(), &models.FinancialSnapshot{MonthlyIncome: 1000})
	assert.Equal(t, models.StrategyLearned, got.Strategy)
	assert.Equal(t, 0.42, got.Score)
	assert.Equal(t, models.RiskMedium, got.Level)
}

func TestService_FallsBackOnModelError(t *testing.T) {
	model := &mockModel{size: FeatureCount, scoreFn: func([]float64) (float64, error) {
		return 0, errors.New("corrupt weights")
	}}
	svc := NewService(model, common.NewSilentLogger())

	got := svc.Score(context.Background(), &models.FinancialSnapshot{})
	assert.Equal(t, models.StrategyRuleBased, got.Strategy)
	assert.Equal(t, NoIncomeScore, got.Score)
	assert.Equal(t, models.RiskHigh, got.Level)

	strict, err := svc.ScoreStrict(context.Background(), &models.FinancialSnapshot{})
	require.NoError(t, err)
	assert.Equal(t, models.StrategyRuleBased, strict.Strategy)
}

func TestService_FeatureShapeMismatch(t *testing.T) {
	svc := NewService(&mockModel{size: 12}, common.NewSilentLogger())

	got := svc.Score(context.Background(), &models.FinancialSnapshot{})
	assert.Equal(t, models.StrategyRuleBased, got.Strategy, "lenient scoring falls back")

	_, err := svc.ScoreStrict(context.Background(), &models.FinancialSnapshot{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFeatureShape)
	assert.ErrorIs(t, err, models.ErrContractViolation)
}

func TestService_NoModel(t *testing.T) {
	svc := NewService(nil, common.NewSilentLogger())

	got, err := svc.ScoreStrict(context.Background(), &models.FinancialSnapshot{MonthlyIncome: 100, MonthlyExpenses: 50})
	require.NoError(t, err)
	assert.Equal(t, models.StrategyRuleBased, got.Strategy)
	assert.Equal(t, models.RiskMedium, got.Level)
}

func TestLearnedScoreIsClamped(t *testing.T) {
	svc := NewService(&mockModel{size: FeatureCount, scoreFn: func([]float64) (float64, error) { return 1.7, nil }}, common.NewSilentLogger())

	got := svc.Score(context.Background(), nil)
	assert.Equal(t, 1.0, got.Score)
}

func TestParseModel_Logistic(t *testing.T) {
	m, err := ParseModel([]byte(logisticModel))
	require.NoError(t, err)
	assert.Equal(t, FeatureCount, m.InputSize())

	// expense ratio feature 0.5 -> sigmoid(2*0.5-1) = 0.5
	score, err := m.Score([]float64{0, 0.5, 0, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, score, 1e-9)

	_, err = m.Score([]float64{1, 2})
	assert.ErrorIs(t, err, ErrFeatureShape)
}

func TestParseModel_MultiLayer(t *testing.T) {
	data := `{"layers": [
		{"weights": [[1, 0], [0, 1]], "bias": [0, -5], "activation": "relu"},
		{"weights": [[1, 1]], "bias": [0.5], "activation": "linear"}
	]}`
	m, err := ParseModel([]byte(data))
	require.NoError(t, err)

	score, err := m.Score([]float64{0.25, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, score, 1e-9)
}

func TestParseModel_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"not json", `{`, "decode"},
		{"no layers", `{"layers": []}`, "no layers"},
		{"bias mismatch", `{"layers": [{"weights": [[1]], "bias": [], "activation": "linear"}]}`, "biases"},
		{"ragged", `{"layers": [{"weights": [[1, 2], [1]], "bias": [0, 0]}, {"weights": [[1, 1]], "bias": [0]}]}`, "ragged"},
		{"chain mismatch", `{"layers": [{"weights": [[1, 2]], "bias": [0]}, {"weights": [[1, 1]], "bias": [0]}]}`, "expects 2 inputs"},
		{"multi output", `{"layers": [{"weights": [[1], [1]], "bias": [0, 0]}]}`, "single output"},
		{"bad activation", `{"layers": [{"weights": [[1]], "bias": [0], "activation": "tanh"}]}`, "unknown activation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModel([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewServiceFromConfig(t *testing.T) {
	logger := common.NewSilentLogger()

	path := filepath.Join(t.TempDir(), "risk_model.json")
	require.NoError(t, os.WriteFile(path, []byte(logisticModel), 0o644))

	svc := NewServiceFromConfig(common.RiskConfig{ModelPath: path}, logger)
	got := svc.Score(context.Background(), &models.FinancialSnapshot{MonthlyIncome: 1000, MonthlyExpenses: 500})
	assert.Equal(t, models.StrategyLearned, got.Strategy)

	missing := NewServiceFromConfig(common.RiskConfig{ModelPath: filepath.Join(t.TempDir(), "nope.json")}, logger)
	got = missing.Score(context.Background(), &models.FinancialSnapshot{})
	assert.Equal(t, models.StrategyRuleBased, got.Strategy)
}
