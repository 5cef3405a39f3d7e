package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
	// FieldStage names the pipeline stage (jd-extraction, resume-extraction, scoring).
	FieldStage = "stage"
	// FieldJD is the job description identifier.
	FieldJD = "jd_id"
	// FieldResume is the resume identifier.
	FieldResume = "resume_id"
	// FieldFile is the uploaded file name.
	FieldFile = "file"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches the provided fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// AIFields returns fields that describe the AI provider and model.
func AIFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithAI attaches the provider and model fields to the logger.
func WithAI(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, AIFields(provider, model)...)
}

// PipelineFields describes a unit of pipeline work. Empty identifiers are skipped,
// so a JD ingestion carries only the stage and file.
func PipelineFields(stage, jdID, resumeID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldStage, Value: stage},
		StringField{Key: FieldJD, Value: jdID},
		StringField{Key: FieldResume, Value: resumeID},
	)
}

// WithPipeline attaches the pipeline fields to the logger.
func WithPipeline(logger *zap.Logger, stage, jdID, resumeID string) *zap.Logger {
	return WithFields(logger, PipelineFields(stage, jdID, resumeID)...)
}
