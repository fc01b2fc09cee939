package model

// Humor is a read-only reference category describing a citation's tone.
// The table is seeded at migration time; there are no mutation operations.
type Humor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
