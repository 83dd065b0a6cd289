package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/earlcamp3344/Telegram-VN-Bot/internal/extract"
	"github.com/earlcamp3344/Telegram-VN-Bot/internal/integrations/calendar"
	"github.com/earlcamp3344/Telegram-VN-Bot/internal/logging"
)

const greetingText = "👋 Hello! I am your Assistant Bot.\n\n" +
	"I can help you with:\n" +
	"• Creating tasks in Notion (/task)\n" +
	"• Creating calendar events (/calendar)\n" +
	"• Turning voice notes into events\n\n" +
	"Try: /task\n" +
	"Or: /calendar\n" +
	"Check integrations: /status"

const helpText = "Available Commands:\n\n" +
	"/start - Start the bot\n" +
	"/help - Show this message\n" +
	"/task - Create a task\n" +
	"/calendar - Create a calendar event\n" +
	"/status - Check the status of integrations"

const useWizardsText = "Sorry, I couldn't process your message. " +
	"Please try using /task or /calendar commands instead."

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.sendText(chatID, greetingText)
	case "help":
		b.sendText(chatID, helpText)
	case "status":
		b.sendText(chatID, b.statusText(ctx))
	case "task":
		b.startSession(chatID, b.taskFlow)
	case "calendar":
		b.startSession(chatID, b.eventFlow)
	default:
		b.sendText(chatID, helpText)
	}
}

// statusText reports connectivity of each integration.
func (b *Bot) statusText(ctx context.Context) string {
	var sb strings.Builder
	sb.WriteString("🔍 Integration Status:\n\n")

	if b.notion == nil {
		sb.WriteString("❌ Notion: Not configured\n")
	} else if _, err := b.notion.GetDatabase(ctx); err != nil {
		fmt.Fprintf(&sb, "❌ Notion: Error (%v)\n", err)
	} else {
		sb.WriteString("✅ Notion: Connected\n")
	}

	if b.calendar == nil {
		sb.WriteString("❌ Google Calendar: Not configured\n")
	} else if _, err := b.calendar.ListCalendars(ctx); err != nil {
		fmt.Fprintf(&sb, "❌ Google Calendar: Error (%v)\n", err)
	} else {
		sb.WriteString("✅ Google Calendar: Connected\n")
	}

	return sb.String()
}

// handleFreeText parses a typed or transcribed message into an event and
// creates it on the calendar. Unlike the guided flow, extracted attendees
// are attached to the event.
func (b *Bot) handleFreeText(ctx context.Context, chatID int64, text string) {
	logging.Info("bot", "processing text: %s", logging.Truncate(text, 80))

	ev, err := b.extractor.Parse(text, b.now())
	switch {
	case errors.Is(err, extract.ErrNoDateTime):
		b.sendText(chatID, "I couldn't determine when the event should be scheduled.\n"+
			"Please use /task or /calendar to create an event with specific date and time.")
		return
	case errors.Is(err, extract.ErrNoTitle):
		b.sendText(chatID, "I couldn't determine what the event is about.\n"+
			"Please use /task or /calendar to create an event with a specific title.")
		return
	case err != nil:
		b.sendText(chatID, useWizardsText)
		return
	}

	if b.calendar == nil {
		b.sendText(chatID, "❌ Google Calendar is not configured. Set GOOGLE_CALENDAR_CREDENTIALS_FILE and GOOGLE_CALENDAR_ID.")
		return
	}

	created, err := b.calendar.CreateEvent(ctx, calendar.CreateEventParams{
		Summary:     ev.Title,
		Description: "Event created via voice note",
		Start:       ev.Start,
		End:         ev.Start.Add(time.Duration(ev.DurationMinutes) * time.Minute),
		Attendees:   ev.Attendees,
	})
	if err != nil {
		logging.Warn("bot", "event creation failed: %v", err)
		b.sendText(chatID, fmt.Sprintf("❌ Error creating event: %v", err))
		return
	}

	b.sendText(chatID, formatExtractedEvent(ev, created.HtmlLink))
}

func formatExtractedEvent(ev *extract.Event, link string) string {
	var attendeeNote string
	if len(ev.Attendees) > 0 {
		attendeeNote = fmt.Sprintf("\n👥 Attendees: %s", strings.Join(ev.Attendees, ", "))
	}
	return fmt.Sprintf("✅ Event created successfully!\n\n"+
		"📅 Event: %s\n"+
		"🕒 Time: %s\n"+
		"⏱ Duration: %d minutes%s\n"+
		"🔗 Event link: %s",
		ev.Title, ev.Start.Format("2006-01-02 15:04"), ev.DurationMinutes, attendeeNote, link)
}
