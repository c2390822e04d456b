package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type breakdown struct {
	Payment float64 `json:"monthly_payment"`
	Total   float64 `json:"total"`
}

type sample struct {
	Model     string    `json:"model"`
	Breakdown breakdown `json:"cost_breakdown"`
	Curve     []float64 `json:"curve"`
	Rate      float64   `json:"rate"`
	Lease     *struct{} `json:"lease"`
	Eligible  bool      `json:"eligible"`
}

var result = sample{
	Model:     "Camry",
	Breakdown: breakdown{Payment: 580.34, Total: 1090.54},
	Curve:     []float64{28000, 23520.5},
	Rate:      0.0020833,
	Eligible:  true,
}

func TestFlatten(t *testing.T) {
	fields, err := Flatten(result)
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}

	expectedKeys := []string{"model", "cost_breakdown.monthly_payment", "cost_breakdown.total", "curve[0]", "curve[1]", "rate", "lease", "eligible"}
	if len(fields) != len(expectedKeys) {
		t.Fatalf("Flatten() returned %d fields, expected %d: %+v", len(fields), len(expectedKeys), fields)
	}
	for i, key := range expectedKeys {
		if fields[i].Key != key {
			t.Errorf("field %d key = %s, expected %s", i, fields[i].Key, key)
		}
	}
	if fields[2].Value != json.Number("1090.54") {
		t.Errorf("expected total to keep its JSON number form, got %v", fields[2].Value)
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "pretty", "Monthly cost", result); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"--- Monthly cost ---",
		"cost_breakdown.total",
		"1,090.54",
		"28,000",
		"23,520.50",
		"0.0020833",
		"Camry",
		"lease",
		"true",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat output missing %q:\n%s", want, output)
		}
	}
}

func TestPrettyFormatPercentFields(t *testing.T) {
	type curvePoint struct {
		Share float64 `json:"depreciation_percentage"`
	}
	v := struct {
		Ratio float64      `json:"affordability_ratio"`
		Down  float64      `json:"down_payment_percentage"`
		Curve []curvePoint `json:"curve"`
		Rate  float64      `json:"maintenance_rate"`
	}{Ratio: 18.18, Down: 10, Curve: []curvePoint{{Share: 16.5}}, Rate: 0.05}

	var buf bytes.Buffer
	if err := Write(&buf, "pretty", "Shares", v); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	output := buf.String()

	for _, want := range []string{"18.18%", "10.00%", "16.50%", "0.05\n"} {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "0.05%") {
		t.Errorf("rate field should not render as a percentage:\n%s", output)
	}
}

func TestCsvFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "csv", "ignored", result); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "field,value" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[3] != "cost_breakdown.total,1090.54" {
		t.Errorf("unexpected row %q", lines[3])
	}
	if lines[7] != "lease," {
		t.Errorf("null should render empty, got %q", lines[7])
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "json", "ignored", result); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	var decoded sample
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Breakdown.Total != 1090.54 {
		t.Errorf("decoded total = %v", decoded.Breakdown.Total)
	}
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "xml", "x", result); err == nil {
		t.Error("expected error for unknown format")
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written on error")
	}
}
