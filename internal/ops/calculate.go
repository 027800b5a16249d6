package ops

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/platenum/internal/errors"
	"github.com/hpungsan/platenum/internal/history"
	"github.com/hpungsan/platenum/internal/interpret"
	"github.com/hpungsan/platenum/internal/numerology"
)

// CalculateInput contains parameters for the Calculate operation.
type CalculateInput struct {
	Input string // raw vehicle number, required
}

// CalculateOutput contains the result of the Calculate operation.
type CalculateOutput struct {
	ID             string            `json:"id"`
	Input          string            `json:"input"`
	FinalNumber    int               `json:"final_number"`
	Breakdown      []numerology.Pair `json:"breakdown"`
	Steps          []string          `json:"steps"`
	Interpretation *interpret.Record `json:"interpretation,omitempty"`
	Recorded       bool              `json:"recorded"`
}

// Calculate runs a full lookup: calculation, interpretation, then history.
//
// If the interpretation is missing the error is NOT_FOUND and the output is
// still returned with the calculation filled in, so callers can show the
// steps next to the error. Nothing is recorded in that case.
func Calculate(ctx context.Context, env *Env, input CalculateInput) (*CalculateOutput, error) {
	raw := strings.TrimSpace(input.Input)

	res, err := numerology.Calculate(raw)
	if err != nil {
		return nil, err
	}

	store, err := env.interpretations()
	if err != nil {
		return nil, err
	}

	id, err := ulid.New(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	out := &CalculateOutput{
		ID:          id.String(),
		Input:       raw,
		FinalNumber: res.FinalNumber,
		Breakdown:   res.Breakdown,
		Steps:       res.Steps,
	}

	log := env.logger().With("lookup_id", out.ID, "input", raw, "final_number", res.FinalNumber)

	rec, err := store.Lookup(res.FinalNumber)
	if err != nil {
		log.Warn("no interpretation for number")
		return out, err
	}
	out.Interpretation = rec

	if env.History != nil {
		entry := history.Entry{Value: raw, FinalNumber: res.FinalNumber, Date: env.History.Now()}
		if err := env.History.Record(ctx, entry); err != nil {
			return nil, err
		}
		out.Recorded = true
	}

	log.Debug("calculated")
	return out, nil
}
