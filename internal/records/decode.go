package records

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode converts a parsed generator document into a typed record. Scalars are
// weakly typed except experience_required, which keeps its kind; nulls stay unset.
func Decode[T any](doc map[string]any) (*T, error) {
	var out T

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       experienceHook,
		Result:           &out,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	if err := decoder.Decode(doc); err != nil {
		return nil, fmt.Errorf("decode %T: %w", out, err)
	}

	return &out, nil
}
