package correlate

// Pauli-frame bookkeeping over labels I/X/Y/Z. Signs are tracked by the
// compiler's own frame; for the trace we only need the label flow, which is
// what the visualization renders.

var pauliMul = map[[2]string]string{
	{"I", "I"}: "I", {"I", "X"}: "X", {"I", "Y"}: "Y", {"I", "Z"}: "Z",
	{"X", "I"}: "X", {"X", "X"}: "I", {"X", "Y"}: "Z", {"X", "Z"}: "Y",
	{"Y", "I"}: "Y", {"Y", "X"}: "Z", {"Y", "Y"}: "I", {"Y", "Z"}: "X",
	{"Z", "I"}: "Z", {"Z", "X"}: "Y", {"Z", "Y"}: "X", {"Z", "Z"}: "I",
}

func mulPauli(a, b string) string {
	if r, ok := pauliMul[[2]string{a, b}]; ok {
		return r
	}
	return "I"
}

// conjugateSingle maps a Pauli label through a single-qubit Clifford gate.
// Phases are dropped; labels are what the frame trace carries.
func conjugateSingle(gate, p string) string {
	switch gate {
	case "h":
		switch p {
		case "X":
			return "Z"
		case "Z":
			return "X"
		}
	case "s", "sdg":
		switch p {
		case "X":
			return "Y"
		case "Y":
			return "X"
		}
	}
	// Pauli gates (x, y, z) and identity leave the label untouched.
	return p
}

// singleQubitClifford reports whether the gate is absorbed by a frame
// transform. T gates are deliberately absent: they materialize as PPRs.
func singleQubitClifford(name string) bool {
	switch name {
	case "h", "s", "sdg", "x", "y", "z", "id":
		return true
	}
	return false
}

// twoQubitClifford reports whether the gate propagates frame labels between
// its qubits.
func twoQubitClifford(name string) bool {
	switch name {
	case "cx", "cz", "swap":
		return true
	}
	return false
}

// frame tracks the per-qubit Pauli label.
type frame map[int]string

func newFrame() frame { return make(frame) }

func (f frame) get(q int) string {
	if p, ok := f[q]; ok {
		return p
	}
	return "I"
}

func (f frame) set(q int, p string) { f[q] = p }

// propagate applies a two-qubit Clifford to the frame, returning the
// post-labels for (control, target).
func (f frame) propagate(gate string, ctrl, tgt int) (string, string) {
	pc, pt := f.get(ctrl), f.get(tgt)
	switch gate {
	case "cx":
		// X on the control spreads to the target, Z on the target spreads
		// back to the control.
		if pc == "X" || pc == "Y" {
			pt = mulPauli(pt, "X")
		}
		if f.get(tgt) == "Z" || f.get(tgt) == "Y" {
			pc = mulPauli(pc, "Z")
		}
	case "cz":
		if f.get(ctrl) == "X" || f.get(ctrl) == "Y" {
			pt = mulPauli(pt, "Z")
		}
		if f.get(tgt) == "X" || f.get(tgt) == "Y" {
			pc = mulPauli(pc, "Z")
		}
	case "swap":
		pc, pt = pt, pc
	}
	f.set(ctrl, pc)
	f.set(tgt, pt)
	return pc, pt
}
