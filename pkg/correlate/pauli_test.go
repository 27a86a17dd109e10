package correlate

import "testing"

func TestConjugateSingle(t *testing.T) {
	tests := []struct {
		gate, in, want string
	}{
		{"h", "X", "Z"},
		{"h", "Z", "X"},
		{"h", "Y", "Y"},
		{"s", "X", "Y"},
		{"s", "Z", "Z"},
		{"x", "Z", "Z"},
		{"z", "X", "X"},
		{"h", "I", "I"},
	}
	for _, tt := range tests {
		if got := conjugateSingle(tt.gate, tt.in); got != tt.want {
			t.Errorf("conjugateSingle(%s, %s) = %s, want %s", tt.gate, tt.in, got, tt.want)
		}
	}
}

func TestFramePropagate_CX(t *testing.T) {
	f := newFrame()
	f.set(0, "X")

	afterC, afterT := f.propagate("cx", 0, 1)
	if afterC != "X" {
		t.Errorf("control label: got %s, want X", afterC)
	}
	if afterT != "X" {
		t.Errorf("X on the control must propagate to the target, got %s", afterT)
	}
}

func TestFramePropagate_Swap(t *testing.T) {
	f := newFrame()
	f.set(0, "Z")
	afterC, afterT := f.propagate("swap", 0, 1)
	if afterC != "I" || afterT != "Z" {
		t.Errorf("swap must exchange labels, got (%s, %s)", afterC, afterT)
	}
}

func TestMulPauli(t *testing.T) {
	if got := mulPauli("X", "Z"); got != "Y" {
		t.Errorf("X*Z = %s, want Y", got)
	}
	if got := mulPauli("Y", "Y"); got != "I" {
		t.Errorf("Y*Y = %s, want I", got)
	}
}
