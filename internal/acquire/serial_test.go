package acquire

import (
	"testing"
)

func TestParseLine(t *testing.T) {
	samples, err := ParseLine("C3,1.5,C4,-2.25,Cz,0")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	if samples[0].Name != "C3" || samples[0].Value != 1.5 {
		t.Errorf("sample 0 = %+v", samples[0])
	}
	if samples[1].Name != "C4" || samples[1].Value != -2.25 {
		t.Errorf("sample 1 = %+v", samples[1])
	}
	if samples[2].Name != "Cz" || samples[2].Value != 0 {
		t.Errorf("sample 2 = %+v", samples[2])
	}
	for _, s := range samples {
		if s.Pos != nil {
			t.Errorf("serial samples carry no positions, got %+v", s.Pos)
		}
	}
}

func TestParseLine_Whitespace(t *testing.T) {
	samples, err := ParseLine("  C3 , 1.5 , C4 , 2.0  ")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if len(samples) != 2 || samples[0].Name != "C3" || samples[1].Value != 2.0 {
		t.Errorf("unexpected samples: %+v", samples)
	}
}

func TestParseLine_Empty(t *testing.T) {
	samples, err := ParseLine("")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if samples != nil {
		t.Errorf("empty line should yield nil, got %+v", samples)
	}
}

func TestParseLine_Malformed(t *testing.T) {
	cases := []string{
		"C3,1.5,C4",     // odd field count
		"C3,abc",        // non-numeric value
		",1.5",          // empty channel name
		"C3,1.5,,2.0",   // empty name mid-line
		"C3,1.5,C4,1,2", // trailing extra field
	}
	for _, line := range cases {
		if _, err := ParseLine(line); err == nil {
			t.Errorf("ParseLine(%q) should fail", line)
		}
	}
}
