package generation

// BarrierInput is one user-declared obstacle.
type BarrierInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Type        *string `json:"type,omitempty"`
}

// Request describes the goal to generate habits for.
type Request struct {
	GoalTitle       string         `json:"goalTitle"`
	GoalDescription *string        `json:"goalDescription,omitempty"`
	GoalCategory    *string        `json:"goalCategory,omitempty"`
	Barriers        []BarrierInput `json:"barriers"`
}
