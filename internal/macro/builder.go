package macro

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// StepHandler creates a step from the raw options of a configured entry.
type StepHandler func(options any) (Step, error)

// StepBuilder ties a command key to a handler.
type StepBuilder struct {
	Key     string
	Handler StepHandler
}

// Entry is one configured step of a custom macro.
type Entry struct {
	Command string
	Options any
}

// CreateSteps builds steps for entries, keeping their order.
func CreateSteps(entries []Entry, builders ...StepBuilder) ([]Step, error) {
	handlers := make(map[string]StepHandler, len(builders))
	for _, b := range builders {
		if _, exists := handlers[b.Key]; exists {
			return nil, fmt.Errorf("duplicate step builder key: %s", b.Key)
		}
		handlers[b.Key] = b.Handler
	}

	steps := make([]Step, 0, len(entries))
	for i, entry := range entries {
		handler, ok := handlers[entry.Command]
		if !ok {
			return nil, fmt.Errorf("step %d: unknown command %q", i+1, entry.Command)
		}
		step, err := handler(entry.Options)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, entry.Command, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// DecodeOptions decodes raw options into a typed options struct.
func DecodeOptions[T any](raw any) (T, error) {
	var opts T
	if raw == nil {
		return opts, nil
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return opts, fmt.Errorf("encode options: %w", err)
	}
	if err := yaml.UnmarshalWithOptions(data, &opts, yaml.Strict()); err != nil {
		return opts, fmt.Errorf("decode options: %w", err)
	}
	return opts, nil
}

// BuilderFor creates a StepBuilder that decodes options into T before building the step.
func BuilderFor[T any](key string, build func(T) (Step, error)) StepBuilder {
	return StepBuilder{
		Key: key,
		Handler: func(raw any) (Step, error) {
			opts, err := DecodeOptions[T](raw)
			if err != nil {
				return nil, err
			}
			return build(opts)
		},
	}
}
