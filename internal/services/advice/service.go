// Package advice answers free-form financial questions with generated text,
// falling back to deterministic synthesis when generation is unavailable
package advice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// Orchestrator states
const (
	StateBuildContext = "BUILD_CONTEXT"
	StateGenerate     = "GENERATE"
	StateParse        = "PARSE"
	StateSuccess      = "SUCCESS"
	StateFallback     = "FALLBACK"
	StateEnrich       = "ENRICH"
	StateReturn       = "RETURN"
)

const (
	maxAttachedStocks = 8
	summaryStocks     = 3
)

// Service implements interfaces.AdviceService
type Service struct {
	generator interfaces.TextGenerator
	stocks    interfaces.StockService
	timeout   time.Duration
	logger    *common.Logger
}

// NewService creates an advice service. generator and stocks may be nil.
// The generation timeout follows the generator's model: names containing
// "3b" get config.LightTimeout, everything else config.Timeout.
func NewService(generator interfaces.TextGenerator, stocks interfaces.StockService, config common.LLMConfig, logger *common.Logger) *Service {
	if generator != nil {
		config.Model = generator.Model()
	}
	return &Service{
		generator: generator,
		stocks:    stocks,
		timeout:   config.GetTimeout(),
		logger:    logger,
	}
}

// Timeout returns the generation timeout in use
func (s *Service) Timeout() time.Duration {
	return s.timeout
}

// run tracks the state trace of one GetAdvice call
type run struct {
	logger *common.Logger
	states []string
}

func (r *run) enter(state string) {
	r.states = append(r.states, state)
	r.logger.Debug().Str("state", state).Msg("Advice state")
}

// GetAdvice walks BUILD_CONTEXT, GENERATE, PARSE, SUCCESS or FALLBACK,
// ENRICH and RETURN. It always returns a complete result.
func (s *Service) GetAdvice(ctx context.Context, snap *models.FinancialSnapshot, market *models.MarketSnapshot, question string) *models.AdviceResult {
	if snap == nil {
		snap = &models.FinancialSnapshot{}
	}
	if market == nil {
		market = models.NeutralMarketSnapshot()
	}
	r := &run{logger: s.logger}

	r.enter(StateBuildContext)
	investment := IsInvestmentQuestion(question)
	var stocks []*models.StockRecommendation
	if investment && s.stocks != nil {
		stocks = s.stocks.Recommend(ctx, market, "moderate", nil)
	}
	prompt := BuildPrompt(snap, market, stocks, question)

	result, err := s.generate(ctx, r, prompt)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Advice generation unavailable, synthesizing fallback")
		r.enter(StateFallback)
		result = Synthesize(snap, market, question, stocks)
	} else {
		r.enter(StateSuccess)
	}

	r.enter(StateEnrich)
	if investment && len(stocks) > 0 {
		Enrich(result, stocks)
	}

	r.enter(StateReturn)
	result.States = r.states
	return result
}

// generate covers GENERATE and PARSE. Any error means FALLBACK.
func (s *Service) generate(ctx context.Context, r *run, prompt string) (*models.AdviceResult, error) {
	r.enter(StateGenerate)
	text, err := Generate(ctx, s.generator, prompt, s.timeout)
	if err != nil {
		return nil, err
	}

	r.enter(StateParse)
	var resp adviceResponse
	if err := DecodeObject(text, &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Answer) == "" {
		return nil, fmt.Errorf("response object has no answer")
	}

	return &models.AdviceResult{
		Answer:          resp.Answer,
		Recommendations: nonNil(resp.Recommendations),
		Considerations:  nonNil(resp.Considerations),
		NextSteps:       nonNil(resp.NextSteps),
		MarketContext:   string(resp.MarketContext),
		Source:          models.AdviceGenerated,
	}, nil
}

// Enrich attaches up to 8 ranked stocks and names the top 3 in the answer
func Enrich(result *models.AdviceResult, stocks []*models.StockRecommendation) {
	result.StockRecommendations = firstN(stocks, maxAttachedStocks)

	names := make([]string, 0, summaryStocks)
	for _, s := range firstN(stocks, summaryStocks) {
		names = append(names, fmt.Sprintf("%s (%s)", s.Symbol, s.Recommendation))
	}
	result.Answer += fmt.Sprintf("\n\nBased on current market conditions, I recommend considering: %s. See detailed recommendations below.",
		strings.Join(names, ", "))
}

func nonNil(l stringList) []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}

// Compile-time check
var _ interfaces.AdviceService = (*Service)(nil)
