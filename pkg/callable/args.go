package callable

import (
	"fmt"

	"github.com/aretw0/wca/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Decode copies args into the struct pointed to by out.
// Fields are matched by their json tag. Numbers are converted between
// kinds, so values that went through JSON (float64) fill int fields.
// Unknown keys are rejected.
func Decode(args Args, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return fmt.Errorf("build args decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(args)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err)
	}
	return nil
}

// ArgsOf converts a config struct back into an argument map.
// It is the inverse of Decode for flat structs.
func ArgsOf(cfg any) Args {
	out := map[string]any{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: "json",
	})
	if err != nil {
		return Args{}
	}
	if err := dec.Decode(cfg); err != nil {
		return Args{}
	}
	return Args(out)
}
