package models

// Note is a notes-panel record. The backend names its id field "_id".
type Note struct {
	ID    RecordID `json:"_id,omitempty"`
	Title string   `json:"title"`
	Text  string   `json:"text"`
}

// Preview returns Text cut to max runes with "..." appended when longer.
func (n Note) Preview(max int) string {
	r := []rune(n.Text)
	if len(r) <= max {
		return n.Text
	}
	return string(r[:max]) + "..."
}
