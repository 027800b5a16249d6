package ops

import (
	"log/slog"
	"time"

	"github.com/hpungsan/platenum/internal/errors"
	"github.com/hpungsan/platenum/internal/history"
	"github.com/hpungsan/platenum/internal/interpret"
)

// Env holds the stores every operation works against. It is built once at
// startup and shared by the CLI, MCP and web surfaces.
type Env struct {
	// Interpretations is nil when loading failed; LoadErr then holds the cause.
	Interpretations *interpret.Store
	LoadErr         error

	History *history.Store
	Logger  *slog.Logger
}

// interpretations returns the loaded store or a DATA_LOAD error.
func (e *Env) interpretations() (*interpret.Store, error) {
	if e.Interpretations == nil {
		if de, ok := errors.As(e.LoadErr); ok && de.Code == errors.ErrDataLoad {
			return nil, de
		}
		return nil, errors.NewDataLoad(e.LoadErr)
	}
	return e.Interpretations, nil
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// HistoryItem is a history entry as shown to the user, with the index
// accepted by HistoryDelete and HistoryRerun.
type HistoryItem struct {
	Index       int       `json:"index"`
	Value       string    `json:"value"`
	FinalNumber int       `json:"final_number"`
	Date        time.Time `json:"date"`
}

func toHistoryItems(entries []history.Entry) []HistoryItem {
	items := make([]HistoryItem, len(entries))
	for i, e := range entries {
		items[i] = HistoryItem{Index: i, Value: e.Value, FinalNumber: e.FinalNumber, Date: e.Date}
	}
	return items
}
