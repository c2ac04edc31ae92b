package domain

// Instruction is the inert payload emitted to the user when a transition is taken.
type Instruction struct {
	Name  string `json:"name,omitempty"`
	Audio string `json:"audio,omitempty"`
	Image []byte `json:"image,omitempty"`
	Video []byte `json:"video,omitempty"`
}

// IsEmpty reports whether the instruction carries no content.
// The name alone is not content.
func (i Instruction) IsEmpty() bool {
	return i.Audio == "" && len(i.Image) == 0 && len(i.Video) == 0
}
