// Package extract derives a structured calendar event from free-form text.
// The pipeline is deliberately simple: tokenize and tag, then three regex
// scans (date/time phrase, email, duration) with first-match-wins policy.
package extract

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/tsawler/prose/v3"

	"github.com/earlcamp3344/Telegram-VN-Bot/internal/logging"
)

// DefaultDurationMinutes is used when no duration phrase is found.
const DefaultDurationMinutes = 30

// ErrNoDateTime means no date/time phrase in the text resolved to a concrete
// moment. The caller must not schedule anything; never defaults to "now".
var ErrNoDateTime = errors.New("could not determine when the event should be scheduled")

// ErrNoTitle means the text contained nothing but time phrases, emails and
// filler words.
var ErrNoTitle = errors.New("could not determine what the event is about")

// Event is the extraction result. Transient: produced and consumed within a
// single message-processing call.
type Event struct {
	Title           string
	Start           time.Time
	DurationMinutes int
	Attendees       []string
}

var (
	timePattern     = regexp.MustCompile(`\b(?:tomorrow|today|next week|next month)\b|\b\d{1,2}(?::\d{2})?\s*(?:am|pm)?\b`)
	emailPattern    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	durationPattern = regexp.MustCompile(`(\d+)\s*(hour|hr|minute|min)`)
	fillerPattern   = regexp.MustCompile(`\b(?:for|at|on|to)\b`)
)

// Parser resolves date/time phrases relative to a caller-supplied "now".
type Parser struct {
	w *when.Parser
}

// New creates a parser with the English rule set.
func New() *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{w: w}
}

// Parse extracts an event from text. Returns ErrNoDateTime when no phrase
// resolves and ErrNoTitle when stripping leaves an empty title; the two are
// distinct so callers can give different guidance.
func (p *Parser) Parse(text string, now time.Time) (*Event, error) {
	lowered := strings.ToLower(text)

	// Tokenize and part-of-speech tag. The tags are computed for parity
	// with the rest of the pipeline but nothing consumes them yet.
	if doc, err := prose.NewDocument(lowered); err == nil {
		_ = doc.Tokens()
	}

	ev := &Event{DurationMinutes: DefaultDurationMinutes}

	start, ok := p.resolveStart(lowered, now)
	if !ok {
		return nil, ErrNoDateTime
	}
	ev.Start = start

	// Emails are matched against the original text, in appearance order,
	// duplicates kept.
	ev.Attendees = emailPattern.FindAllString(text, -1)

	if m := durationPattern.FindStringSubmatch(lowered); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			if m[2] == "hour" || m[2] == "hr" {
				n *= 60
			}
			ev.DurationMinutes = n
		}
	}

	ev.Title = deriveTitle(lowered)
	if ev.Title == "" {
		return nil, ErrNoTitle
	}

	logging.Debug("extract", "parsed %q -> %s (%d min, %d attendees)",
		logging.Truncate(text, 60), ev.Start.Format("2006-01-02 15:04"), ev.DurationMinutes, len(ev.Attendees))
	return ev, nil
}

// resolveStart scans for date/time phrases and resolves the first one that
// the fuzzy parser accepts. Matches separated only by whitespace or "at"
// are joined into a single candidate phrase so "tomorrow at 3pm" resolves
// as one moment; scanning order is otherwise strictly first-match-wins.
func (p *Parser) resolveStart(lowered string, now time.Time) (time.Time, bool) {
	for _, phrase := range candidatePhrases(lowered) {
		r, err := p.w.Parse(phrase, now)
		if err != nil || r == nil {
			continue
		}
		return r.Time, true
	}
	return time.Time{}, false
}

// candidatePhrases merges adjacent time-pattern matches into phrases.
func candidatePhrases(lowered string) []string {
	idx := timePattern.FindAllStringIndex(lowered, -1)
	var phrases []string
	for i := 0; i < len(idx); {
		start, end := idx[i][0], idx[i][1]
		j := i + 1
		for j < len(idx) {
			gap := strings.TrimSpace(lowered[end:idx[j][0]])
			if gap != "" && gap != "at" {
				break
			}
			end = idx[j][1]
			j++
		}
		phrases = append(phrases, strings.TrimSpace(lowered[start:end]))
		i = j
	}
	return phrases
}

// deriveTitle strips time phrases, emails and standalone prepositions from
// the lowered text, then collapses whitespace.
func deriveTitle(lowered string) string {
	title := timePattern.ReplaceAllString(lowered, "")
	title = emailPattern.ReplaceAllString(title, "")
	title = fillerPattern.ReplaceAllString(title, "")
	return strings.Join(strings.Fields(title), " ")
}
