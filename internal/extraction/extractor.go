package extraction

import (
	"context"
	"strings"

	_ "embed"

	"github.com/spigell/resume-evaluator/internal/records"
	"github.com/spigell/resume-evaluator/internal/schema"
)

//go:embed extract.md
var extractTemplate string

// Extractor turns raw document text into records through the Protocol.
type Extractor struct {
	protocol *Protocol
}

func NewExtractor(protocol *Protocol) *Extractor {
	return &Extractor{protocol: protocol}
}

// BuildPrompt renders the extraction prompt for contract around text.
func BuildPrompt(contract schema.Contract, text string) string {
	var rules strings.Builder
	for _, rule := range contract.Rules {
		rules.WriteString("- " + rule + "\n")
	}

	return strings.NewReplacer(
		"{{ROLE}}", contract.Role,
		"{{SUBJECT}}", contract.Subject,
		"{{RULES}}", rules.String(),
		"{{SCHEMA}}", contract.Render(),
		"{{HEADING}}", strings.ToUpper(contract.Subject),
		"{{TEXT}}", strings.TrimSpace(text),
	).Replace(extractTemplate)
}

// Extract returns the raw document for contract. Only the shape is checked.
func (e *Extractor) Extract(ctx context.Context, stage Stage, contract schema.Contract, text string) (map[string]any, error) {
	return e.protocol.Run(ctx, stage, BuildPrompt(contract, text), contract.Check)
}

func (e *Extractor) JobDescription(ctx context.Context, text string) (*records.JobDescription, error) {
	return extractRecord[records.JobDescription](ctx, e.protocol, StageJobDescription, schema.JobDescription(), text)
}

func (e *Extractor) Resume(ctx context.Context, text string) (*records.Resume, error) {
	return extractRecord[records.Resume](ctx, e.protocol, StageResume, schema.Resume(), text)
}

// extractRecord decodes inside the check so a document that cannot become a
// record is retried like any other invalid output.
func extractRecord[T any](ctx context.Context, protocol *Protocol, stage Stage, contract schema.Contract, text string) (*T, error) {
	var record *T

	_, err := protocol.Run(ctx, stage, BuildPrompt(contract, text), func(doc map[string]any) error {
		if err := contract.Check(doc); err != nil {
			return err
		}
		decoded, err := records.Decode[T](doc)
		if err != nil {
			return err
		}
		record = decoded
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}
