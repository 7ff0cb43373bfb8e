package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleKlines = `[
  [1690000000000,"100.5","101.2","99.8","100.9","12.34",1690000059999,"0",0,"0","0","0"],
  [1690000060000,"100.9","102.0","100.7","101.8","15.02",1690000119999,"0",0,"0","0","0"]
]`

func TestBackfill_ParsesKlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleKlines))
	}))
	defer srv.Close()

	f := NewFetcher()
	f.BaseURL = srv.URL

	candles, err := f.Backfill(context.Background(), "BTCUSDT", "PERPETUAL", "5m", 2)
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	if candles[0].Open != 100.5 || candles[0].Close != 100.9 || !candles[0].IsClosed {
		t.Fatalf("unexpected first candle: %+v", candles[0])
	}
	if candles[1].OpenTime != 1690000060000 {
		t.Fatalf("unexpected second candle open_time: %d", candles[1].OpenTime)
	}
}

func TestBackfill_PermanentOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	f := NewFetcher()
	f.BaseURL = srv.URL

	if _, err := f.Backfill(context.Background(), "BTCUSDT", "PERPETUAL", "5m", 2); err == nil {
		t.Fatal("expected an error for a 400 response")
	}
}

func TestParseKlines_OpenBarNotClosed(t *testing.T) {
	// close_time far in the future relative to nowMs: the bar is still forming.
	raw := `[[1,"1","1","1","1","1",9999999999999,"0",0,"0","0","0"]]`
	candles, err := parseKlines(strings.NewReader(raw), 1000)
	if err != nil {
		t.Fatalf("parseKlines: %v", err)
	}
	if candles[0].IsClosed {
		t.Fatal("expected a bar whose close_time is in the future to be reported as still open")
	}
}
