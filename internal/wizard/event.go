package wizard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/earlcamp3344/Telegram-VN-Bot/internal/logging"
)

// EventRecord is what the event flow submits to the calendar service.
type EventRecord struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// EventService inserts calendar events and returns their link.
type EventService interface {
	CreateEvent(ctx context.Context, ev EventRecord) (string, error)
}

// NewEventFlow builds the five-step calendar event flow. Attendees are
// collected but never attached to the record: the service-account identity
// cannot send invitations, so they are reported back for manual sharing.
func NewEventFlow(svc EventService, now func() time.Time) *Flow {
	return &Flow{
		Name: "event",
		Steps: []Step{
			nameStep("Let's create a calendar event! Please enter the event name:"),
			dateStep("When would you like to schedule the event?", now),
			timeStep("What time would you like to schedule the event?"),
			durationStep("How long should the event be?"),
			attendeesStep(),
		},
		Submit: func(ctx context.Context, d *Draft) string {
			return submitEvent(ctx, svc, d)
		},
	}
}

func submitEvent(ctx context.Context, svc EventService, d *Draft) string {
	if svc == nil {
		return "❌ Google Calendar is not configured. Set GOOGLE_CALENDAR_CREDENTIALS_FILE and GOOGLE_CALENDAR_ID."
	}

	start, end := d.startEnd()

	link, err := svc.CreateEvent(ctx, EventRecord{
		Summary:     d.Name,
		Description: "Event created via Telegram bot",
		Start:       start,
		End:         end,
	})
	if err != nil {
		logging.Warn("wizard", "event creation failed: %v", err)
		return fmt.Sprintf("❌ Error creating event: %v", err)
	}

	var attendeeNote string
	if len(d.Attendees) > 0 {
		attendeeNote = fmt.Sprintf("\n\n👥 Attendees to invite manually: %s\n"+
			"⚠️ Due to service account limitations, you'll need to manually share the event link with these attendees.",
			strings.Join(d.Attendees, ", "))
	}

	logging.Info("wizard", "event created: %s", link)
	return fmt.Sprintf("✅ Event created successfully!\n\n"+
		"📅 Event: %s\n"+
		"🕒 Time: %s\n"+
		"⏱ Duration: %d minutes\n"+
		"🔗 Event link: %s%s",
		d.Name, start.Format("2006-01-02 15:04"), d.DurationMinutes, link, attendeeNote)
}
