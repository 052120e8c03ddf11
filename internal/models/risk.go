package models

// Risk levels
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Risk strategy names
const (
	StrategyLearned   = "learned"
	StrategyRuleBased = "rule_based"
)

// RiskScore is a 0-1 financial risk score and its level
type RiskScore struct {
	Score    float64 `json:"score"`
	Level    string  `json:"level"`
	Strategy string  `json:"strategy"`
}

// RiskLevelFor maps a score to its level: low <0.3, medium <0.7, high otherwise
func RiskLevelFor(score float64) string {
	switch {
	case score < 0.3:
		return RiskLow
	case score < 0.7:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// NewRiskScore clamps score to [0,1] and attaches its level
func NewRiskScore(score float64, strategy string) *RiskScore {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return &RiskScore{Score: score, Level: RiskLevelFor(score), Strategy: strategy}
}
