package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// QubitRole is the static role a logical qubit plays on the block layout.
type QubitRole string

const (
	RoleZAncilla QubitRole = "z_ancilla"
	RoleMAncilla QubitRole = "m_ancilla"
	RoleData     QubitRole = "data"
	RolePadding  QubitRole = "padding"
)

// IsAncilla reports whether the role owns a vertical pair of patches.
func (r QubitRole) IsAncilla() bool {
	return r == RoleZAncilla || r == RoleMAncilla
}

// LayoutQubit is one logical-qubit slot as described by the compiled
// program's block layout. Ancilla slots anchor at their top patch; the
// bottom patch is the vertically adjacent cell one row below.
type LayoutQubit struct {
	LQIdx      int       `json:"lq_idx" mapstructure:"lq_idx"`
	Role       QubitRole `json:"role" mapstructure:"role"`
	QubitIndex *int      `json:"qubit_index,omitempty" mapstructure:"qubit_index"`
	Row        int       `json:"row" mapstructure:"row"`
	Col        int       `json:"col" mapstructure:"col"`
	PchType    PatchType `json:"pchtype" mapstructure:"pchtype"`
}

// BlockLayout is the compiled program's static patch layout.
type BlockLayout struct {
	BlockType    string        `json:"block_type" mapstructure:"block_type"`
	CodeDistance int           `json:"code_distance" mapstructure:"code_distance"`
	Rows         int           `json:"rows" mapstructure:"rows"`
	Cols         int           `json:"cols" mapstructure:"cols"`
	NumLQ        int           `json:"num_lq" mapstructure:"num_lq"`
	Qubits       []LayoutQubit `json:"qubits" mapstructure:"qubits"`
}

// LayoutFromMetadata decodes a loosely-typed block layout, as read from the
// compiler's artifact JSON, into a BlockLayout.
func LayoutFromMetadata(meta map[string]any) (*BlockLayout, error) {
	var layout BlockLayout
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &layout,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(meta); err != nil {
		return nil, fmt.Errorf("failed to decode block layout: %w", err)
	}
	return &layout, nil
}

// LogicalQubitMapping binds one logical qubit to its patches for the whole
// run. Ancilla roles own exactly two vertically adjacent patch indices;
// data and padding own exactly one.
type LogicalQubitMapping struct {
	LQIdx        int       `json:"lq_idx"`
	Role         QubitRole `json:"role"`
	QubitIndex   *int      `json:"qubit_index,omitempty"`
	PatchIndices []int     `json:"patch_indices"`
	PatchCoords  [][2]int  `json:"patch_coords"`
	PchType      PatchType `json:"pchtype"`
}
