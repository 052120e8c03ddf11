package advice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/interfaces"
)

// Generation errors. Each one routes the caller to its fallback.
var (
	ErrNoGenerator = errors.New("no text generator configured")
	ErrNoObject    = errors.New("no JSON object in response")
	ErrTimeout     = errors.New("generation timed out")
)

// Generate runs one generation call in its own goroutine and returns when it
// completes or the timeout elapses, whichever comes first.
func Generate(ctx context.Context, gen interfaces.TextGenerator, prompt string, timeout time.Duration) (string, error) {
	if gen == nil {
		return "", ErrNoGenerator
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := gen.Generate(ctx, prompt)
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("%w after %s: %v", ErrTimeout, timeout, ctx.Err())
	}
}

// GenerateObject generates text and decodes its first JSON object into v
func GenerateObject(ctx context.Context, gen interfaces.TextGenerator, prompt string, timeout time.Duration, v any) error {
	text, err := Generate(ctx, gen, prompt, timeout)
	if err != nil {
		return err
	}
	return DecodeObject(text, v)
}

// DecodeObject decodes the first top-level JSON object found in text
func DecodeObject(text string, v any) error {
	span, ok := ExtractObject(text)
	if !ok {
		return ErrNoObject
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return fmt.Errorf("failed to decode response object: %w", err)
	}
	return nil
}

// ExtractObject returns the first balanced {...} span in text. Braces inside
// JSON strings, including escaped quotes, are ignored.
func ExtractObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
