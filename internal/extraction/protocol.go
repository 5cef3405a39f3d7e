package extraction

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/spigell/resume-evaluator/internal/ai"
	"github.com/spigell/resume-evaluator/internal/logger"
	"github.com/spigell/resume-evaluator/internal/utils"

	"go.uber.org/zap"
)

const (
	defaultMaxLogLength = 200

	correctionInstruction = "IMPORTANT: The previous output was invalid JSON. Fix it. Return ONLY valid JSON that follows the EXACT schema."
)

// Check validates a parsed document. Any error it returns is treated as
// invalid output and triggers the single retry.
type Check func(doc map[string]any) error

// Protocol runs the generate, parse, validate and retry-once cycle shared by
// every stage.
type Protocol struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewProtocol(generator ai.Generator, log *zap.Logger, maxLogLength int) *Protocol {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Protocol{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Run asks the generator for a JSON object at most twice. The second attempt
// starts only after the first one has finished and only when the first output
// was invalid. Generator errors are returned without a retry.
func (p *Protocol) Run(ctx context.Context, stage Stage, prompt string, check Check) (map[string]any, error) {
	if p == nil || p.generator == nil {
		return nil, errors.New("generator is not configured")
	}

	log := p.logger.With(zap.String(logger.FieldStage, string(stage)))

	doc, raw, err := p.attempt(ctx, log, 1, prompt, check)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, ErrInvalidOutput) {
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	log.Warn("generator returned invalid output, retrying once", zap.Error(err))

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%s: %w", stage, ctxErr)
	}

	doc, raw, err = p.attempt(ctx, log, 2, Correction(prompt, err), check)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, ErrInvalidOutput) {
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	log.Error("generator output still invalid after retry",
		zap.Error(err),
		zap.String("response_preview", utils.TruncateForLog(raw, p.maxLogLen)),
	)

	return nil, &FailedError{Stage: stage, Raw: raw, Err: err}
}

func (p *Protocol) attempt(ctx context.Context, log *zap.Logger, n int, prompt string, check Check) (map[string]any, string, error) {
	log.Debug("generate content request",
		zap.Int("attempt", n),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, p.maxLogLen)),
	)

	raw, err := p.generator.GenerateContent(ctx, prompt, true)
	if err != nil {
		return nil, "", err
	}

	log.Debug("generate content response",
		zap.Int("attempt", n),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, p.maxLogLen)),
	)

	doc, err := ParseObject(raw)
	if err != nil {
		return nil, raw, err
	}

	if check != nil {
		if err := check(doc); err != nil {
			return nil, raw, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
		}
	}

	return doc, raw, nil
}

// Correction appends the corrective instruction and the reason the previous
// output was rejected to the original prompt.
func Correction(prompt string, reason error) string {
	correction := prompt + "\n\n" + correctionInstruction
	if reason != nil {
		correction += "\nProblem with the previous output: " + reason.Error()
	}
	return correction
}
