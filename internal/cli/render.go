package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yungbote/northstar-backend/internal/modules/habits/journey"
	"github.com/yungbote/northstar-backend/internal/modules/onboarding"
	"github.com/yungbote/northstar-backend/internal/services"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	currentPhaseStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("42")).
				Padding(0, 1)

	lockedPhaseStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Foreground(lipgloss.Color("245")).
				Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

const dateLayout = "Jan 2"

func RenderError(msg string) string {
	return errorStyle.Render("✗ " + msg)
}

// RenderJourney draws each phase as a box with its window and habits.
func RenderJourney(plan journey.Plan) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Your journey: "+plan.Name) + "\n")
	for i, p := range plan.Phases {
		var body strings.Builder
		fmt.Fprintf(&body, "%d. %s  [%s]\n", i+1, p.Name, p.Status)
		body.WriteString(mutedStyle.Render(fmt.Sprintf("%s - %s · %s", p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout), p.Summary)))
		if len(p.Habits) == 0 {
			body.WriteString("\n" + mutedStyle.Render("  no habits in this phase"))
		}
		for _, h := range p.Habits {
			line := "  • " + h.Title
			if h.Frequency != "" {
				line += mutedStyle.Render(" (" + h.Frequency + ")")
			}
			body.WriteString("\n" + line)
		}
		style := lockedPhaseStyle
		if p.Status == journey.StatusCurrent {
			style = currentPhaseStyle
		}
		b.WriteString(style.Render(body.String()) + "\n")
	}
	return b.String()
}

// RenderState summarizes onboarding progress, including the journey once built.
func RenderState(v onboarding.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("Onboarding step %d of %d", v.Step, onboarding.StepPlan)))
	if v.NorthStarGoal != "" {
		fmt.Fprintf(&b, "Goal: %s\n", v.NorthStarGoal)
	}
	if all := v.AllBarriers(); len(all) > 0 {
		fmt.Fprintf(&b, "Barriers: %s\n", strings.Join(all, ", "))
	}
	if v.Error != nil {
		b.WriteString(RenderError(*v.Error) + "\n")
	}
	if v.Journey != nil {
		b.WriteString(RenderJourney(*v.Journey))
	}
	if v.IsOnboardingComplete {
		b.WriteString(mutedStyle.Render("Onboarding complete.") + "\n")
	}
	return b.String()
}

func RenderPlans(plans []services.PlanListItem) string {
	if len(plans) == 0 {
		return mutedStyle.Render("No plans yet.") + "\n"
	}
	var b strings.Builder
	for _, p := range plans {
		c := p.PhaseCounts
		fmt.Fprintf(&b, "%s  %s  %s\n",
			titleStyle.Render(p.Title),
			mutedStyle.Render(p.CreatedAt.Format("2006-01-02")),
			mutedStyle.Render(fmt.Sprintf("phases %d/%d/%d/%d · %s", c.Phase1, c.Phase2, c.Phase3, c.Phase4, p.PlanID)),
		)
	}
	return b.String()
}
