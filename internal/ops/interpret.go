package ops

import (
	"github.com/hpungsan/platenum/internal/errors"
	"github.com/hpungsan/platenum/internal/interpret"
	"github.com/hpungsan/platenum/internal/numerology"
)

// InterpretInput contains parameters for the Interpret operation.
type InterpretInput struct {
	Number int
}

// InterpretOutput contains the result of the Interpret operation.
type InterpretOutput struct {
	Number         int               `json:"number"`
	Letters        []string          `json:"letters"`
	Interpretation *interpret.Record `json:"interpretation"`
}

// Interpret returns the interpretation for a number directly, without a calculation.
func Interpret(env *Env, input InterpretInput) (*InterpretOutput, error) {
	store, err := env.interpretations()
	if err != nil {
		return nil, err
	}
	if input.Number < 0 {
		return nil, errors.NewInvalidInput("number must not be negative")
	}

	rec, err := store.Lookup(input.Number)
	if err != nil {
		return nil, err
	}

	letters := numerology.Letters(input.Number)
	if letters == nil {
		letters = []string{}
	}

	return &InterpretOutput{
		Number:         input.Number,
		Letters:        letters,
		Interpretation: rec,
	}, nil
}
