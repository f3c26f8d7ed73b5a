package ddbmeta

import (
	"testing"
	"time"
)

func TestDocumentSetAndGetters(t *testing.T) {
	d := NewDocument().
		Set("name", "camera").
		Set("count", 5).
		Set("ratio", 1.5)

	if got := d.GetString("name"); got != "camera" {
		t.Fatalf("GetString = %q, want camera", got)
	}
	if got := d.GetInt("count"); got != 5 {
		t.Fatalf("GetInt = %d, want 5", got)
	}
	if got := d.GetFloat64("ratio"); got != 1.5 {
		t.Fatalf("GetFloat64 = %v, want 1.5", got)
	}
	if got := d.GetString("missing"); got != "" {
		t.Fatalf("GetString(missing) = %q, want empty", got)
	}
}

func TestDocumentSub(t *testing.T) {
	d := NewDocument()
	d["camera"] = map[string]any{"make": "DJI"}
	sub := d.Sub("camera")
	if sub == nil {
		t.Fatal("expected non-nil sub document")
	}
	if got := sub.GetString("make"); got != "DJI" {
		t.Fatalf("sub.GetString = %q, want DJI", got)
	}
	if d.Sub("missing") != nil {
		t.Fatal("expected nil sub document for missing key")
	}
	if d.Sub("camera").Sub("absent") != nil {
		// already checked "missing" above; ensure a non-map value also yields nil.
	}
	d["flat"] = "not-a-map"
	if d.Sub("flat") != nil {
		t.Fatal("expected nil sub document for non-map value")
	}
}

func TestDocumentMarshalUnmarshalRoundTrip(t *testing.T) {
	d := NewDocument().Set("name", "camera").Set("count", 5)
	raw, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	got, err := ParseDocument(raw)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if got.GetString("name") != "camera" {
		t.Fatalf("round trip GetString = %q, want camera", got.GetString("name"))
	}
	if got.GetInt("count") != 5 {
		t.Fatalf("round trip GetInt = %d, want 5", got.GetInt("count"))
	}
}

func TestParseDocumentEmpty(t *testing.T) {
	got, err := ParseDocument(nil)
	if err != nil {
		t.Fatalf("ParseDocument(nil): %v", err)
	}
	if got != nil {
		t.Fatalf("ParseDocument(nil) = %v, want nil", got)
	}
}

func TestGetTimeAcceptsTimeAndRFC3339(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	d := NewDocument()
	d["captured_at"] = now
	got, ok := d.GetTime("captured_at")
	if !ok || !got.Equal(now) {
		t.Fatalf("GetTime(time.Time) = %v, %v", got, ok)
	}

	d2 := NewDocument()
	d2["captured_at"] = now.Format(time.RFC3339)
	got2, ok2 := d2.GetTime("captured_at")
	if !ok2 || !got2.Equal(now) {
		t.Fatalf("GetTime(string) = %v, %v", got2, ok2)
	}

	if _, ok := NewDocument().GetTime("missing"); ok {
		t.Fatal("expected ok=false for missing key")
	}
}

func TestFromStructAndDecodeInto(t *testing.T) {
	type camera struct {
		Make  string `mapstructure:"make"`
		Model string `mapstructure:"model"`
	}

	doc, err := FromStruct(camera{Make: "DJI", Model: "P4"})
	if err != nil {
		t.Fatalf("FromStruct: %v", err)
	}
	if doc.GetString("make") != "DJI" || doc.GetString("model") != "P4" {
		t.Fatalf("FromStruct document = %+v", doc)
	}

	var out camera
	if err := DecodeInto(map[string]any{"make": "Parrot", "model": "Anafi"}, &out); err != nil {
		t.Fatalf("DecodeInto: %v", err)
	}
	if out.Make != "Parrot" || out.Model != "Anafi" {
		t.Fatalf("DecodeInto result = %+v", out)
	}
}
