package ws

import "testing"

func TestParseKlineEvent(t *testing.T) {
	msg := []byte(`{"k":{"t":1690000000000,"o":"100.5","h":"101.2","l":"99.8","c":"100.9","v":"12.34","x":true}}`)
	c, err := parseKlineEvent(msg)
	if err != nil {
		t.Fatalf("parseKlineEvent: %v", err)
	}
	if c.OpenTime != 1690000000000 || c.Open != 100.5 || c.High != 101.2 || c.Low != 99.8 || c.Close != 100.9 || c.Volume != 12.34 || !c.IsClosed {
		t.Fatalf("unexpected candle: %+v", c)
	}
}

func TestParseKlineEvent_Malformed(t *testing.T) {
	if _, err := parseKlineEvent([]byte(`not json`)); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
	if _, err := parseKlineEvent([]byte(`{"k":{"t":1,"o":"nan-ish","h":"1","l":"1","c":"1","v":"1","x":false}}`)); err == nil {
		t.Fatal("expected an error for a non-numeric price field")
	}
}

func TestStreamURL(t *testing.T) {
	ing := New(IngestConfig{Symbol: "BTCUSDT", Interval: "5m"})
	want := DefaultBaseURL + "/btcusdt@kline_5m"
	if got := ing.streamURL(); got != want {
		t.Fatalf("streamURL() = %q, want %q", got, want)
	}
}
