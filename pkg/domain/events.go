package domain

// Event-class instruction mnemonics. The patch grid can only change shape
// when the patch information unit accepts one of these.
const (
	InstPrepInfo  = "PREP_INFO"
	InstMergeInfo = "MERGE_INFO"
	InstSplitInfo = "SPLIT_INFO"
)

// IsEventInst reports whether the mnemonic can produce a patch event.
func IsEventInst(inst string) bool {
	return inst == InstPrepInfo || inst == InstMergeInfo || inst == InstSplitInfo
}

// PatchEvent is one minimal state-delta in the ordered trace. Seq counts from
// zero with no gaps; Cycle is non-decreasing across the event list. QISAIdx
// points at the accepted instruction that caused the change.
type PatchEvent struct {
	Seq        int          `json:"seq"`
	Cycle      uint64       `json:"cycle"`
	QISAIdx    int          `json:"qisa_idx"`
	Inst       string       `json:"inst"`
	PatchDelta []PatchState `json:"patch_delta"`
}
