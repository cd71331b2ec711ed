package protocol

import "testing"

func TestStatusRegister1(t *testing.T) {
	tests := []struct {
		name        string
		sr          StatusRegister1
		busy        bool
		writeEnable bool
		protected   bool
		str         string
	}{
		{name: "ready", sr: 0x00, str: "ready"},
		{name: "busy", sr: 0x01, busy: true, str: "BUSY"},
		{name: "busy with latch", sr: 0x03, busy: true, writeEnable: true, str: "BUSY|WEL"},
		{name: "block protected", sr: 0x0C, protected: true, str: "BP0|BP1"},
		{name: "top bottom and srp", sr: 0xA0, str: "TB|SRP0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sr.Busy(); got != tt.busy {
				t.Errorf("Busy() = %v, want %v", got, tt.busy)
			}
			if got := tt.sr.WriteEnabled(); got != tt.writeEnable {
				t.Errorf("WriteEnabled() = %v, want %v", got, tt.writeEnable)
			}
			if got := tt.sr.Protected(); got != tt.protected {
				t.Errorf("Protected() = %v, want %v", got, tt.protected)
			}
			if got := tt.sr.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
		})
	}
}

func TestStatusRegister2(t *testing.T) {
	var sr StatusRegister2

	if sr.QuadEnabled() {
		t.Error("zero register should not report quad enabled")
	}
	if got := sr.String(); got != "clear" {
		t.Errorf("String() = %q, want %q", got, "clear")
	}

	sr = sr.WithQuadEnabled()
	if !sr.QuadEnabled() {
		t.Error("QuadEnabled() = false after WithQuadEnabled")
	}
	if byte(sr) != 0x02 {
		t.Errorf("register = 0x%02X, want 0x02", byte(sr))
	}

	// Setting the bit twice must not disturb other bits.
	sr = StatusRegister2(0x81).WithQuadEnabled().WithQuadEnabled()
	if byte(sr) != 0x83 {
		t.Errorf("register = 0x%02X, want 0x83", byte(sr))
	}
	if got := sr.String(); got != "SRL|QE|SUS" {
		t.Errorf("String() = %q, want %q", got, "SRL|QE|SUS")
	}

	if !StatusRegister2(0x80).Suspended() {
		t.Error("Suspended() = false with SUS set")
	}
}

func TestResultString(t *testing.T) {
	tests := []struct {
		r    Result
		want string
	}{
		{ResultSuccess, "success"},
		{ResultBusy, "busy"},
		{ResultError, "error"},
		{ResultTimeout, "timeout"},
		{Result(42), "result(42)"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("Result(%d).String() = %q, want %q", int(tt.r), got, tt.want)
		}
	}
}
