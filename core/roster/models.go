package roster

// Section is a named roster group ("Core Adults", "2025 Kids Teens", ...)
// partitioning members for attendance and finance tracking.
type Section struct {
	Name     string `json:"name" db:"name"`
	Position int    `json:"position" db:"position"`
}

// Member belongs to exactly one Section. The display name doubles as the
// member identifier in attendance and finance records; rosters are static
// reference data, never mutated by the tracking flows.
type Member struct {
	ID       string `json:"id" db:"id"`
	Section  string `json:"section" db:"section"`
	Name     string `json:"name" db:"name"`
	Position int    `json:"position" db:"position"`
}
