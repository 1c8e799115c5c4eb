package generation

import (
	"fmt"
	"strings"
)

func orDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

// BuildPrompt renders the habit architecture prompt for req.
func BuildPrompt(req Request) string {
	lines := make([]string, 0, len(req.Barriers))
	for _, b := range req.Barriers {
		lines = append(lines, fmt.Sprintf("- %s: %s (%s)", b.Title, orDefault(b.Description, "N/A"), orDefault(b.Type, "general")))
	}

	var sb strings.Builder
	sb.WriteString("You are a habit formation expert. Create a comprehensive habit architecture plan for someone with the following goal.\n\n")
	fmt.Fprintf(&sb, "Goal: %s\n", req.GoalTitle)
	fmt.Fprintf(&sb, "Description: %s\n", orDefault(req.GoalDescription, "Not provided"))
	fmt.Fprintf(&sb, "Category: %s\n\n", orDefault(req.GoalCategory, "general"))
	sb.WriteString("Barriers to overcome:\n")
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString(`

Please generate a structured habit plan in JSON format with the following structure:
{
  "habits": [
    {
      "title": "Habit name",
      "description": "What this habit involves and why it helps",
      "category": "foundational|goal-specific|barrier-targeting",
      "phase": 1-4,
      "frequency": "daily|weekly|specific pattern",
      "duration": number in minutes,
      "priority": 1-10
    }
  ]
}

Requirements:
- Generate 3-4 foundational habits (core daily practices)
- Generate 2-3 goal-specific habits (directly aligned with the goal)
- Generate 2-3 barrier-targeting habits (address identified obstacles)
- Distribute habits across 4 phases (introduction, building, reinforcement, mastery)
- Ensure phase 1 has simpler, shorter-duration habits
- Phase 4 should have more challenging habits
- All habits should be specific and actionable
- Return ONLY the JSON object, no additional text`)
	return sb.String()
}
