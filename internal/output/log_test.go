package output

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"signalengine/internal/model"
)

func TestWriteSignal_AppendsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	sig := model.TradingSignal{ID: "sig-1", Timestamp: 1000, Grade: model.GradeA}
	sig.Direction = model.Buy
	if err := l.WriteSignal(sig); err != nil {
		t.Fatalf("WriteSignal: %v", err)
	}

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
}

func TestWriteVerification_DerivesActualDirection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	if err := l.WriteVerification("sig-1", 10, model.Buy, model.HorizonResult{Outcome: model.OutcomeWrong, ProfitPct: -1.0}); err != nil {
		t.Fatalf("WriteVerification: %v", err)
	}

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
}

func TestLog_ReopensAfterExternalTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	sig := model.TradingSignal{ID: "sig-1", Timestamp: 1000}
	if err := l.WriteSignal(sig); err != nil {
		t.Fatalf("WriteSignal: %v", err)
	}

	if err := os.Truncate(path, 0); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	if err := l.WriteSignal(sig); err != nil {
		t.Fatalf("WriteSignal after truncation: %v", err)
	}

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("expected exactly 1 line surviving the truncation, got %d", len(lines))
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open for read: %v", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}
