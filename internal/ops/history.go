package ops

import (
	"context"
	"fmt"

	"github.com/hpungsan/platenum/internal/errors"
)

// HistoryListOutput contains the result of the HistoryList operation.
type HistoryListOutput struct {
	Items         []HistoryItem `json:"items"`
	RetentionDays int           `json:"retention_days"`
}

// HistoryList returns the history, oldest first. Expired entries are
// pruned from storage as part of the read.
func HistoryList(ctx context.Context, env *Env) (*HistoryListOutput, error) {
	if env.History == nil {
		return nil, errors.NewInternal(fmt.Errorf("history store not configured"))
	}
	entries, err := env.History.List(ctx)
	if err != nil {
		return nil, err
	}
	return &HistoryListOutput{
		Items:         toHistoryItems(entries),
		RetentionDays: int(env.History.Retention().Hours() / 24),
	}, nil
}

// HistoryDeleteInput contains parameters for the HistoryDelete operation.
type HistoryDeleteInput struct {
	Index int // position in the most recent HistoryList result
}

// HistoryDeleteOutput contains the result of the HistoryDelete operation.
type HistoryDeleteOutput struct {
	Deleted bool `json:"deleted"`
	Index   int  `json:"index"`
}

// HistoryDelete removes one history entry.
func HistoryDelete(ctx context.Context, env *Env, input HistoryDeleteInput) (*HistoryDeleteOutput, error) {
	if env.History == nil {
		return nil, errors.NewInternal(fmt.Errorf("history store not configured"))
	}
	if err := env.History.Delete(ctx, input.Index); err != nil {
		return nil, err
	}
	return &HistoryDeleteOutput{Deleted: true, Index: input.Index}, nil
}

// HistoryClearOutput contains the result of the HistoryClear operation.
type HistoryClearOutput struct {
	Cleared bool `json:"cleared"`
}

// HistoryClear discards the whole history.
func HistoryClear(ctx context.Context, env *Env) (*HistoryClearOutput, error) {
	if env.History == nil {
		return nil, errors.NewInternal(fmt.Errorf("history store not configured"))
	}
	if err := env.History.Clear(ctx); err != nil {
		return nil, err
	}
	return &HistoryClearOutput{Cleared: true}, nil
}

// HistoryRerunInput contains parameters for the HistoryRerun operation.
type HistoryRerunInput struct {
	Index int
}

// HistoryRerun calculates again for the value stored at Index. Like any
// calculation, a successful rerun appends a new history entry.
func HistoryRerun(ctx context.Context, env *Env, input HistoryRerunInput) (*CalculateOutput, error) {
	list, err := HistoryList(ctx, env)
	if err != nil {
		return nil, err
	}
	if input.Index < 0 || input.Index >= len(list.Items) {
		return nil, errors.NewIndexOutOfRange(input.Index, len(list.Items))
	}
	return Calculate(ctx, env, CalculateInput{Input: list.Items[input.Index].Value})
}
