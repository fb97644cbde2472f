package component

import "testing"

func TestParseTypeRoundTrip(t *testing.T) {
	for _, typ := range Types {
		parsed, err := ParseType(typ.String())
		if err != nil {
			t.Fatalf("ParseType(%q) returned error: %v", typ, err)
		}
		if parsed != typ {
			t.Fatalf("expected %q, got %q", typ, parsed)
		}
	}
}

func TestParseTypeNormalises(t *testing.T) {
	parsed, err := ParseType("  STT ")
	if err != nil {
		t.Fatalf("ParseType returned error: %v", err)
	}
	if parsed != TypeSTT {
		t.Fatalf("expected %q, got %q", TypeSTT, parsed)
	}
}

func TestParseTypeUnknown(t *testing.T) {
	if _, err := ParseType("ocr"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestParseServiceTypeRoundTrip(t *testing.T) {
	for _, typ := range ServiceTypes {
		parsed, err := ParseServiceType(typ.String())
		if err != nil {
			t.Fatalf("ParseServiceType(%q) returned error: %v", typ, err)
		}
		if parsed != typ {
			t.Fatalf("expected %q, got %q", typ, parsed)
		}
	}
	if _, err := ParseServiceType("printer"); err == nil {
		t.Fatalf("expected error for unknown service type")
	}
}

func TestParseServiceState(t *testing.T) {
	parsed, err := ParseServiceState("READY")
	if err != nil {
		t.Fatalf("ParseServiceState returned error: %v", err)
	}
	if parsed != StateReady {
		t.Fatalf("expected %q, got %q", StateReady, parsed)
	}
	if _, err := ParseServiceState("paused"); err == nil {
		t.Fatalf("expected error for unknown state")
	}
}

func TestCapabilityMask(t *testing.T) {
	mask := CapOnDevice | CapStreaming
	if !mask.Has(CapOnDevice) {
		t.Fatalf("expected on_device flag set")
	}
	if mask.Has(CapCloud) {
		t.Fatalf("did not expect cloud flag")
	}
	if !mask.Has(CapOnDevice | CapStreaming) {
		t.Fatalf("expected combined flags set")
	}
	if got := mask.String(); got != "on_device|streaming" {
		t.Fatalf("unexpected mask string: %q", got)
	}
	if got := Capability(0).String(); got != "none" {
		t.Fatalf("unexpected empty mask string: %q", got)
	}
}
