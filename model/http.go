package model

// ConfigView is the read-only JSON projection of the performance policies.
type ConfigView struct {
	NotePriority   string `json:"note_priority"`
	ChordCleanup   string `json:"chord_cleanup"`
	PortamentoTime uint8  `json:"portamento_time"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
