package entity

import "time"

// Sequence is an ordered set of timed outbound messages (a drip sequence).
type Sequence struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"owner_id"`
	Name      string         `json:"name"`
	Active    bool           `json:"active"`
	Steps     []SequenceStep `json:"steps"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SequenceStep references a message template and carries the delay from the
// previous step. Position is zero-based.
type SequenceStep struct {
	ID         string `json:"id"`
	SequenceID string `json:"sequence_id"`
	Position   int    `json:"position"`
	TemplateID string `json:"template_id"`
	Subject    string `json:"subject"`
	DelayDays  int    `json:"delay_days"`
	DelayHours int    `json:"delay_hours"`
}

// Delay converts the step's days+hours offset into a duration.
func (s SequenceStep) Delay() time.Duration {
	return time.Duration(s.DelayDays)*24*time.Hour + time.Duration(s.DelayHours)*time.Hour
}
