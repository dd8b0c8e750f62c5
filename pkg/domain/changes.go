package domain

// SlotAddition creates a slot. TempID is the caller's provisional identifier
// and is echoed back in CommitReceipt.Assigned.
type SlotAddition struct {
	TempID   int64 `json:"temp_id"`
	ColorID  int64 `json:"color_id"`
	Role     Role  `json:"role"`
	Position *int  `json:"position,omitempty"`
}

// SlotUpdate replaces the color of an existing slot.
type SlotUpdate struct {
	ID      int64 `json:"id"`
	ColorID int64 `json:"color_id"`
}

// SlotChanges is a batch of slot edits applied atomically to one palette.
// Deletions run first, then updates, then additions.
type SlotChanges struct {
	BaseVersion int64          `json:"base_version"`
	Additions   []SlotAddition `json:"additions"`
	Updates     []SlotUpdate   `json:"updates"`
	Deletions   []int64        `json:"deletions"`
}

// Empty reports whether the batch carries no edits.
func (c SlotChanges) Empty() bool {
	return len(c.Additions) == 0 && len(c.Updates) == 0 && len(c.Deletions) == 0
}

// CommitReceipt reports the outcome of an applied batch.
type CommitReceipt struct {
	PaletteID int64           `json:"palette_id"`
	Version   int64           `json:"version"`
	Assigned  map[int64]int64 `json:"assigned"`
	Slots     []ColorSlot     `json:"slots"`
}
