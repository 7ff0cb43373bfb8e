// Package output writes an append-only, newline-delimited JSON log of
// emitted signals and resolved verifications. No rotation is mandated;
// the writer detects external truncation (a log rotator, a `> file`
// reset) by watching the file size and reopens the handle when it
// shrinks out from under it.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"signalengine/internal/model"
)

// SignalRecord is the header block written once per emitted signal.
type SignalRecord struct {
	ID               string             `json:"id"`
	Timestamp        int64              `json:"timestamp"`
	Direction        model.Direction    `json:"direction"`
	Entry            float64            `json:"entry"`
	Grade            model.Grade        `json:"grade"`
	AdjustedStrength float64            `json:"adjusted_strength"`
	Strategy         string             `json:"strategy"`
	State            model.MarketState  `json:"state"`
	Reasons          []string           `json:"reasons"`
	Predictions      []model.Prediction `json:"predictions"`
}

// VerificationRecord is the one-line record appended when a prediction
// horizon resolves. Actual is the direction price actually moved,
// derived from whether the prediction was correct.
type VerificationRecord struct {
	ID        string             `json:"id"`
	Horizon   int                `json:"horizon"`
	Predicted model.Direction    `json:"predicted"`
	Actual    model.Direction    `json:"actual"`
	ProfitPct float64            `json:"profit_pct"`
	Outcome   model.VerifyOutcome `json:"outcome"`
}

func actualDirection(predicted model.Direction, outcome model.VerifyOutcome) model.Direction {
	if outcome == model.OutcomeCorrect {
		return predicted
	}
	switch predicted {
	case model.Buy:
		return model.Sell
	case model.Sell:
		return model.Buy
	default:
		return predicted
	}
}

// Log is a truncation-safe append-only writer for signal and
// verification records. Every write holds the Log's mutex, so concurrent
// Write calls are serialized.
type Log struct {
	path string

	mu   sync.Mutex
	file *os.File
	size int64
}

// Open opens (creating if needed) the log file at path for appending.
func Open(path string) (*Log, error) {
	l := &Log{path: path}
	if err := l.reopen(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Log) reopen() error {
	if l.file != nil {
		l.file.Close()
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("output: open %s: %w", l.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("output: stat %s: %w", l.path, err)
	}
	l.file = f
	l.size = info.Size()
	return nil
}

// checkTruncation reopens the handle if the file has shrunk since the
// last write — the signal that something external truncated it.
func (l *Log) checkTruncation() error {
	info, err := os.Stat(l.path)
	if err != nil {
		// File may have been removed entirely; reopen creates it fresh.
		return l.reopen()
	}
	if info.Size() < l.size {
		return l.reopen()
	}
	return nil
}

func (l *Log) writeLine(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkTruncation(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("output: marshal record: %w", err)
	}
	data = append(data, '\n')

	n, err := l.file.Write(data)
	if err != nil {
		return fmt.Errorf("output: write: %w", err)
	}
	l.size += int64(n)
	return nil
}

// WriteSignal appends a SignalRecord header block for a newly emitted
// non-HOLD signal.
func (l *Log) WriteSignal(sig model.TradingSignal) error {
	rec := SignalRecord{
		ID:               sig.ID,
		Timestamp:        sig.Timestamp,
		Direction:        sig.Direction,
		Entry:            sig.EntryPrice,
		Grade:            sig.Grade,
		AdjustedStrength: sig.AdjustedStrength,
		Strategy:         sig.StrategyName,
		State:            sig.MarketState,
		Reasons:          sig.Reasons,
		Predictions:      sig.Predictions,
	}
	return l.writeLine(rec)
}

// WriteVerification appends a VerificationRecord for a resolved horizon.
func (l *Log) WriteVerification(signalID string, horizon int, predicted model.Direction, result model.HorizonResult) error {
	rec := VerificationRecord{
		ID:        signalID,
		Horizon:   horizon,
		Predicted: predicted,
		Actual:    actualDirection(predicted, result.Outcome),
		ProfitPct: result.ProfitPct,
		Outcome:   result.Outcome,
	}
	return l.writeLine(rec)
}

// Close closes the underlying file handle.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
