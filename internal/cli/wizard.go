package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"

	"github.com/yungbote/northstar-backend/internal/modules/onboarding"
)

// PlanAction is what the user chose on the plan step.
type PlanAction string

const (
	ActionFinish     PlanAction = "finish"
	ActionBack       PlanAction = "back"
	ActionRegenerate PlanAction = "regenerate"
	ActionQuit       PlanAction = "quit"
)

// ErrAborted is returned by a Prompter when the user cancels a form.
var ErrAborted = errors.New("aborted")

// Prompter collects input for each onboarding step.
type Prompter interface {
	Goal(initial string) (string, error)
	Barriers(selected, custom []string) ([]string, []string, error)
	PlanAction(failed bool) (PlanAction, error)
	Spin(title string, fn func()) error
}

// Wizard drives an onboarding machine from a Prompter until the user
// finishes, quits or aborts. State is saved after every transition, so an
// aborted run resumes where it stopped.
type Wizard struct {
	m   *onboarding.Machine
	p   Prompter
	out io.Writer
}

func NewWizard(m *onboarding.Machine, p Prompter, out io.Writer) *Wizard {
	return &Wizard{m: m, p: p, out: out}
}

func (w *Wizard) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		v := w.m.Snapshot()
		if v.IsOnboardingComplete {
			fmt.Fprint(w.out, RenderState(v))
			return nil
		}

		var (
			done bool
			err  error
		)
		switch v.Step {
		case onboarding.StepGoal:
			err = w.goalStep(ctx, v)
		case onboarding.StepBarriers:
			err = w.barrierStep(ctx, v)
		default:
			done, err = w.planStep(ctx, v)
		}
		if errors.Is(err, ErrAborted) {
			fmt.Fprintln(w.out, mutedStyle.Render("Progress saved. Run again to resume."))
			return nil
		}
		if err != nil || done {
			return err
		}
	}
}

func (w *Wizard) goalStep(ctx context.Context, v onboarding.View) error {
	goal, err := w.p.Goal(v.NorthStarGoal)
	if err != nil {
		return err
	}
	if err := w.m.SetGoal(ctx, goal); err != nil {
		return err
	}
	if err := w.m.NextStep(ctx); err != nil {
		return err
	}
	w.printError()
	return nil
}

func (w *Wizard) barrierStep(ctx context.Context, v onboarding.View) error {
	selected, custom, err := w.p.Barriers(v.Barriers, v.CustomBarriers)
	if err != nil {
		return err
	}
	if err := w.applyBarriers(ctx, v, selected, custom); err != nil {
		return err
	}
	// Leaving the barrier step starts generation.
	var nextErr error
	if err := w.p.Spin("Building your plan...", func() { nextErr = w.m.NextStep(ctx) }); err != nil {
		return err
	}
	if nextErr != nil {
		return nextErr
	}
	if w.m.Snapshot().Step == onboarding.StepBarriers {
		w.printError()
	}
	return nil
}

func (w *Wizard) applyBarriers(ctx context.Context, v onboarding.View, selected, custom []string) error {
	for _, b := range onboarding.PresetBarriers {
		if slices.Contains(selected, b) != slices.Contains(v.Barriers, b) {
			if err := w.m.ToggleBarrier(ctx, b); err != nil {
				return err
			}
		}
	}
	for _, b := range v.CustomBarriers {
		if !slices.Contains(custom, b) {
			if err := w.m.RemoveCustomBarrier(ctx, b); err != nil {
				return err
			}
		}
	}
	for _, b := range custom {
		if err := w.m.AddCustomBarrier(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (w *Wizard) planStep(ctx context.Context, v onboarding.View) (bool, error) {
	if v.Habits == nil && v.Error == nil {
		var subErr error
		if err := w.p.Spin("Building your plan...", func() { subErr = w.m.EnsurePlan(ctx) }); err != nil {
			return false, err
		}
		if subErr != nil {
			return false, subErr
		}
		v = w.m.Snapshot()
	}

	failed := v.Error != nil
	if failed {
		w.printError()
	} else if v.Journey != nil {
		fmt.Fprint(w.out, RenderJourney(*v.Journey))
	}

	action, err := w.p.PlanAction(failed)
	if err != nil {
		return false, err
	}
	switch action {
	case ActionFinish:
		if err := w.m.Complete(ctx); err != nil {
			return false, err
		}
		fmt.Fprintln(w.out, titleStyle.Render("You're all set. Start with phase 1 today."))
		return true, nil
	case ActionBack:
		return false, w.m.PrevStep(ctx)
	case ActionRegenerate:
		var retryErr error
		if err := w.p.Spin("Rebuilding your plan...", func() { retryErr = w.m.Retry(ctx) }); err != nil {
			return false, err
		}
		return false, retryErr
	default:
		return true, nil
	}
}

func (w *Wizard) printError() {
	if v := w.m.Snapshot(); v.Error != nil {
		fmt.Fprintln(w.out, RenderError(*v.Error))
	}
}

// huhPrompter renders each step as a huh form.
type huhPrompter struct {
	theme *huh.Theme
}

func NewHuhPrompter() Prompter {
	return &huhPrompter{theme: huh.ThemeCharm()}
}

func (p *huhPrompter) run(form *huh.Form) error {
	err := form.WithTheme(p.theme).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

func (p *huhPrompter) Goal(initial string) (string, error) {
	goal := initial
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("What's your north star goal?").
				Description("One sentence about what you want to achieve.").
				CharLimit(onboarding.MaxGoalLen).
				Value(&goal).
				Validate(func(s string) error {
					if msg := onboarding.ValidateGoal(s); msg != "" {
						return errors.New(msg)
					}
					return nil
				}),
		),
	)
	if err := p.run(form); err != nil {
		return "", err
	}
	return goal, nil
}

func (p *huhPrompter) Barriers(selected, custom []string) ([]string, []string, error) {
	picked := append([]string{}, selected...)
	extra := strings.Join(custom, ", ")
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("What gets in your way?").
				Options(huh.NewOptions(onboarding.PresetBarriers...)...).
				Value(&picked),
			huh.NewInput().
				Title("Anything else?").
				Description("Comma-separated, optional.").
				Value(&extra),
		),
	)
	if err := p.run(form); err != nil {
		return nil, nil, err
	}
	var out []string
	for _, part := range strings.Split(extra, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return picked, out, nil
}

func (p *huhPrompter) PlanAction(failed bool) (PlanAction, error) {
	opts := []huh.Option[PlanAction]{
		huh.NewOption("Looks good, finish", ActionFinish),
		huh.NewOption("Regenerate", ActionRegenerate),
		huh.NewOption("Back to barriers", ActionBack),
		huh.NewOption("Quit for now", ActionQuit),
	}
	if failed {
		opts = opts[1:]
		opts[0] = huh.NewOption("Try again", ActionRegenerate)
	}
	var action PlanAction
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[PlanAction]().
				Title("What next?").
				Options(opts...).
				Value(&action),
		),
	)
	if err := p.run(form); err != nil {
		return "", err
	}
	return action, nil
}

func (p *huhPrompter) Spin(title string, fn func()) error {
	return spinner.New().Title(title).Action(fn).Run()
}
