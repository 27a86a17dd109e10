package domain

import "testing"

func TestLayoutFromMetadata(t *testing.T) {
	// Numbers arrive as float64 after a generic JSON decode; the weakly
	// typed decoder must still land them in int fields.
	meta := map[string]any{
		"block_type":    "Standard",
		"code_distance": float64(5),
		"rows":          float64(2),
		"cols":          float64(3),
		"num_lq":        float64(2),
		"qubits": []any{
			map[string]any{
				"lq_idx": float64(0), "role": "z_ancilla",
				"row": float64(0), "col": float64(0), "pchtype": "zt",
			},
			map[string]any{
				"lq_idx": float64(1), "role": "data", "qubit_index": float64(0),
				"row": float64(0), "col": float64(1), "pchtype": "x",
			},
		},
	}

	layout, err := LayoutFromMetadata(meta)
	if err != nil {
		t.Fatalf("LayoutFromMetadata: %v", err)
	}
	if layout.Rows != 2 || layout.Cols != 3 || layout.CodeDistance != 5 {
		t.Errorf("geometry = %dx%d d=%d, want 2x3 d=5", layout.Rows, layout.Cols, layout.CodeDistance)
	}
	if len(layout.Qubits) != 2 {
		t.Fatalf("got %d qubits, want 2", len(layout.Qubits))
	}
	if layout.Qubits[0].Role != RoleZAncilla || !layout.Qubits[0].Role.IsAncilla() {
		t.Errorf("qubit 0 role = %q, want z_ancilla", layout.Qubits[0].Role)
	}
	if layout.Qubits[1].QubitIndex == nil || *layout.Qubits[1].QubitIndex != 0 {
		t.Errorf("qubit 1 qubit_index not decoded")
	}
	if layout.Qubits[1].PchType != PatchData {
		t.Errorf("qubit 1 pchtype = %q, want x", layout.Qubits[1].PchType)
	}
}

func TestLayoutFromMetadata_BadShape(t *testing.T) {
	_, err := LayoutFromMetadata(map[string]any{"qubits": "not-a-list"})
	if err == nil {
		t.Fatal("expected decode error for malformed qubits")
	}
}
