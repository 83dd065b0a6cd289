// Package wizard implements guided multi-step creation flows. A Flow is an
// ordered list of prompt/apply steps plus one terminal submit callback; the
// task and event flows are two instances of the same machinery.
package wizard

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Draft is the partially-built record a session accumulates. The task flow
// uses Date as a calendar date; the event flow combines Date and TimeOfDay
// into a start instant at submission.
type Draft struct {
	Name            string
	Date            time.Time
	TimeOfDay       time.Time // only the clock fields are meaningful
	DurationMinutes int
	Attendees       []string
}

// Reply is what a step hands back to the transport layer.
type Reply struct {
	Text           string
	Keyboard       [][]string // quick-reply rows; nil means plain text input
	RemoveKeyboard bool
}

// Step is one outstanding prompt. Apply validates and stores the user's
// answer; a non-nil error re-prompts with the error text and does not
// advance the flow.
type Step struct {
	Prompt   string
	Keyboard [][]string
	Apply    func(input string, d *Draft) error
}

// Flow is a complete linear wizard definition.
type Flow struct {
	Name   string
	Steps  []Step
	Submit func(ctx context.Context, d *Draft) string
}

// Session tracks one chat's progress through a flow. Sessions are owned by
// the dispatcher, keyed by chat, and discarded once done; they are never
// persisted.
type Session struct {
	flow  *Flow
	step  int
	draft Draft
	done  bool
}

// NewSession starts a session at the first step.
func NewSession(flow *Flow) *Session {
	return &Session{flow: flow}
}

// Start returns the first prompt.
func (s *Session) Start() Reply {
	first := s.flow.Steps[0]
	return Reply{Text: first.Prompt, Keyboard: first.Keyboard}
}

// Done reports whether the flow has reached its terminal state.
func (s *Session) Done() bool {
	return s.done
}

// Handle processes one user reply. Invalid input re-prompts the same step
// with no retry limit. After the last step the submit callback runs exactly
// once; handling input on a finished session never resubmits.
func (s *Session) Handle(ctx context.Context, input string) Reply {
	if s.done {
		return Reply{RemoveKeyboard: true}
	}

	step := s.flow.Steps[s.step]
	if err := step.Apply(input, &s.draft); err != nil {
		return Reply{Text: err.Error(), Keyboard: step.Keyboard}
	}

	s.step++
	if s.step < len(s.flow.Steps) {
		next := s.flow.Steps[s.step]
		return Reply{Text: next.Prompt, Keyboard: next.Keyboard}
	}

	s.done = true
	return Reply{Text: s.flow.Submit(ctx, &s.draft), RemoveKeyboard: true}
}

// Shared step constructors. Both flows collect the same field kinds.

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var (
	dateKeyboard = [][]string{
		{"Today", "Tomorrow"},
		{"Next Week", "Custom Date"},
	}
	timeKeyboard = [][]string{
		{"9:00 AM", "10:00 AM", "11:00 AM"},
		{"12:00 PM", "1:00 PM", "2:00 PM"},
		{"3:00 PM", "4:00 PM", "5:00 PM"},
	}
	durationKeyboard = [][]string{
		{"15 minutes", "30 minutes", "1 hour"},
		{"2 hours", "Custom duration"},
	}
)

func nameStep(prompt string) Step {
	return Step{
		Prompt: prompt,
		Apply: func(input string, d *Draft) error {
			input = strings.TrimSpace(input)
			if input == "" {
				return errors.New("Please enter a name:")
			}
			d.Name = input
			return nil
		},
	}
}

// dateStep accepts the quick replies resolved against now, or a literal
// YYYY-MM-DD date. Anything else re-prompts.
func dateStep(prompt string, now func() time.Time) Step {
	return Step{
		Prompt:   prompt,
		Keyboard: dateKeyboard,
		Apply: func(input string, d *Draft) error {
			input = strings.TrimSpace(input)
			switch input {
			case "Today":
				d.Date = now()
			case "Tomorrow":
				d.Date = now().AddDate(0, 0, 1)
			case "Next Week":
				d.Date = now().AddDate(0, 0, 7)
			default:
				if !isoDatePattern.MatchString(input) {
					return errors.New("Please enter the date in YYYY-MM-DD format:")
				}
				t, err := time.Parse("2006-01-02", input)
				if err != nil {
					return errors.New("Please enter the date in YYYY-MM-DD format:")
				}
				d.Date = t
			}
			return nil
		},
	}
}

func timeStep(prompt string) Step {
	return Step{
		Prompt:   prompt,
		Keyboard: timeKeyboard,
		Apply: func(input string, d *Draft) error {
			t, err := time.Parse("3:04 PM", strings.ToUpper(strings.TrimSpace(input)))
			if err != nil {
				return errors.New("Please enter a valid time like 3:00 PM:")
			}
			d.TimeOfDay = t
			return nil
		},
	}
}

func durationStep(prompt string) Step {
	return Step{
		Prompt:   prompt,
		Keyboard: durationKeyboard,
		Apply: func(input string, d *Draft) error {
			switch strings.TrimSpace(input) {
			case "15 minutes":
				d.DurationMinutes = 15
			case "30 minutes":
				d.DurationMinutes = 30
			case "1 hour":
				d.DurationMinutes = 60
			case "2 hours":
				d.DurationMinutes = 120
			case "Custom duration":
				return errors.New("Please enter the duration in minutes:")
			default:
				n, err := strconv.Atoi(strings.TrimSpace(input))
				if err != nil || n <= 0 {
					return errors.New("Please enter a valid number of minutes:")
				}
				d.DurationMinutes = n
			}
			return nil
		},
	}
}

// attendeesStep always advances: "skip" leaves the list empty, anything
// else is comma-split and trimmed with no further validation.
func attendeesStep() Step {
	return Step{
		Prompt: "Would you like to add attendees? (Optional)\n" +
			"Enter email addresses separated by commas, or type 'skip' to continue without attendees:",
		Apply: func(input string, d *Draft) error {
			input = strings.TrimSpace(input)
			if strings.EqualFold(input, "skip") {
				d.Attendees = nil
				return nil
			}
			var attendees []string
			for _, part := range strings.Split(input, ",") {
				if part = strings.TrimSpace(part); part != "" {
					attendees = append(attendees, part)
				}
			}
			d.Attendees = attendees
			return nil
		},
	}
}

// startEnd combines the draft's date and clock fields into UTC instants.
func (d *Draft) startEnd() (time.Time, time.Time) {
	start := time.Date(d.Date.Year(), d.Date.Month(), d.Date.Day(),
		d.TimeOfDay.Hour(), d.TimeOfDay.Minute(), 0, 0, time.UTC)
	return start, start.Add(time.Duration(d.DurationMinutes) * time.Minute)
}
