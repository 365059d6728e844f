package codec

import (
	"net"
	"strings"
	"testing"
)

func TestRenderScalarFields(t *testing.T) {
	o := &ElapsedTimeOption{Hundredths: 42}
	out := Render(o)
	if !strings.Contains(out, "ElapsedTimeOption") {
		t.Fatalf("render %q missing type name", out)
	}
	if !strings.Contains(out, "Hundredths: 42") {
		t.Fatalf("render %q missing Hundredths field", out)
	}
}

func TestRenderUnknownElementShowsRawHex(t *testing.T) {
	o := &OptionUnknown{TypeCode: 0xffff, Payload: []byte{0x01, 0x02}}
	out := Render(o)
	if !strings.Contains(out, "hex:0102") {
		t.Fatalf("render %q missing hex-encoded raw payload", out)
	}
}

func TestRenderUnknownElementShowsASCIIPrintablePayloadAsString(t *testing.T) {
	o := &OptionUnknown{TypeCode: 0xffff, Payload: []byte("hello")}
	out := Render(o)
	if !strings.Contains(out, "raw: hello") {
		t.Fatalf("render %q did not show printable payload as a plain string", out)
	}
}

func TestRenderNestedElementIndentsDeeper(t *testing.T) {
	msg := &ClientServerMessage{
		MessageType: MessageTypeSolicit,
		Options: []Option{
			&ClientIDOption{DUID: NewDUIDLL(1, []byte{1, 2, 3, 4, 5, 6})},
		},
	}
	out := Render(msg)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 3 {
		t.Fatalf("got %d lines, want at least 3 in %q", len(lines), out)
	}
	if strings.HasPrefix(lines[0], " ") {
		t.Fatalf("expected the top-level line unindented, got %q", lines[0])
	}
	foundIndented := false
	for _, l := range lines[1:] {
		if strings.HasPrefix(l, "  ") {
			foundIndented = true
		}
	}
	if !foundIndented {
		t.Fatalf("expected at least one deeper-indented line in %q", out)
	}
}

func TestRenderIPAddress(t *testing.T) {
	o := &ServerUnicastOption{Address: net.ParseIP("2001:db8::1")}
	out := Render(o)
	if !strings.Contains(out, "2001:db8::1") {
		t.Fatalf("render %q missing canonical IP representation", out)
	}
}

func TestToJSONScalarFields(t *testing.T) {
	o := &ElapsedTimeOption{Hundredths: 7}
	m, ok := ToJSON(o).(map[string]interface{})
	if !ok {
		t.Fatalf("got %T, want map[string]interface{}", ToJSON(o))
	}
	inner, ok := m["ElapsedTimeOption"].(map[string]interface{})
	if !ok {
		t.Fatalf("got %T, want a nested field map", m["ElapsedTimeOption"])
	}
	if inner["Hundredths"] != uint16(7) {
		t.Fatalf("got Hundredths = %v, want 7", inner["Hundredths"])
	}
}

func TestToJSONUnknownElementHexEncodesRaw(t *testing.T) {
	o := &OptionUnknown{TypeCode: 0xffff, Payload: []byte{0xde, 0xad}}
	m, ok := ToJSON(o).(map[string]interface{})
	if !ok {
		t.Fatalf("got %T, want map[string]interface{}", ToJSON(o))
	}
	inner, ok := m["OptionUnknown"].(map[string]interface{})
	if !ok {
		t.Fatalf("got %T, want a nested field map", m["OptionUnknown"])
	}
	if inner["raw"] != "hex:dead" {
		t.Fatalf("got raw = %v, want hex:dead", inner["raw"])
	}
}

func TestToJSONNestedElementSlice(t *testing.T) {
	msg := &ClientServerMessage{
		MessageType: MessageTypeSolicit,
		Options: []Option{
			&RapidCommitOption{},
		},
	}
	m, ok := ToJSON(msg).(map[string]interface{})
	if !ok {
		t.Fatalf("got %T, want map[string]interface{}", ToJSON(msg))
	}
	inner, ok := m["ClientServerMessage"].(map[string]interface{})
	if !ok {
		t.Fatalf("got %T, want a nested field map", m["ClientServerMessage"])
	}
	items, ok := inner["Options"].([]interface{})
	if !ok {
		t.Fatalf("got %T, want a slice of rendered options", inner["Options"])
	}
	if len(items) != 1 {
		t.Fatalf("got %d options, want 1", len(items))
	}
}
