package risk

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/models"
)

// ErrFeatureShape is returned when a feature vector does not match the model's input size
var ErrFeatureShape = fmt.Errorf("%w: risk feature shape mismatch", models.ErrContractViolation)

// Activation names accepted in a model artifact
const (
	ActivationReLU    = "relu"
	ActivationSigmoid = "sigmoid"
	ActivationLinear  = "linear"
)

// Layer is one dense layer. Weights are indexed [output][input].
type Layer struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"`
}

// NetworkModel is a feed-forward network exported from training as JSON.
// A single sigmoid layer is a plain logistic model.
type NetworkModel struct {
	Name   string  `json:"name"`
	Layers []Layer `json:"layers"`
}

// LoadModel reads and validates a model artifact
func LoadModel(path string) (*NetworkModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read risk model %s: %w", path, err)
	}
	return ParseModel(data)
}

// ParseModel decodes a model artifact and checks the layer dimensions chain
func ParseModel(data []byte) (*NetworkModel, error) {
	var m NetworkModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode risk model: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *NetworkModel) validate() error {
	if len(m.Layers) == 0 {
		return errors.New("risk model has no layers")
	}
	prev := -1
	for i, l := range m.Layers {
		if len(l.Weights) == 0 {
			return fmt.Errorf("risk model layer %d has no weights", i)
		}
		if len(l.Bias) != len(l.Weights) {
			return fmt.Errorf("risk model layer %d: %d biases for %d outputs", i, len(l.Bias), len(l.Weights))
		}
		in := len(l.Weights[0])
		for _, row := range l.Weights {
			if len(row) != in {
				return fmt.Errorf("risk model layer %d has ragged weights", i)
			}
		}
		if prev >= 0 && in != prev {
			return fmt.Errorf("risk model layer %d expects %d inputs, previous layer gives %d", i, in, prev)
		}
		switch l.Activation {
		case ActivationReLU, ActivationSigmoid, ActivationLinear, "":
		default:
			return fmt.Errorf("risk model layer %d: unknown activation %q", i, l.Activation)
		}
		prev = len(l.Weights)
	}
	if prev != 1 {
		return fmt.Errorf("risk model must have a single output, has %d", prev)
	}
	return nil
}

// InputSize returns the feature count the first layer accepts
func (m *NetworkModel) InputSize() int {
	if len(m.Layers) == 0 || len(m.Layers[0].Weights) == 0 {
		return 0
	}
	return len(m.Layers[0].Weights[0])
}

// Score runs the forward pass
func (m *NetworkModel) Score(features []float64) (float64, error) {
	if len(features) != m.InputSize() {
		return 0, fmt.Errorf("%w: model expects %d features, got %d", ErrFeatureShape, m.InputSize(), len(features))
	}

	x := features
	for _, l := range m.Layers {
		out := make([]float64, len(l.Weights))
		for o, row := range l.Weights {
			sum := l.Bias[o]
			for i, w := range row {
				sum += w * x[i]
			}
			out[o] = activate(l.Activation, sum)
		}
		x = out
	}

	if math.IsNaN(x[0]) || math.IsInf(x[0], 0) {
		return 0, errors.New("risk model produced a non-finite score")
	}
	return x[0], nil
}

func activate(name string, v float64) float64 {
	switch name {
	case ActivationReLU:
		return math.Max(0, v)
	case ActivationSigmoid:
		return 1 / (1 + math.Exp(-v))
	default:
		return v
	}
}

// Compile-time check
var _ interfaces.RiskModel = (*NetworkModel)(nil)
