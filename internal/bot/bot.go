// Package bot wires the Telegram transport to the wizards, the free-text
// event extractor and the voice-note pipeline.
package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/earlcamp3344/Telegram-VN-Bot/internal/audio"
	"github.com/earlcamp3344/Telegram-VN-Bot/internal/extract"
	"github.com/earlcamp3344/Telegram-VN-Bot/internal/integrations/calendar"
	"github.com/earlcamp3344/Telegram-VN-Bot/internal/integrations/notion"
	"github.com/earlcamp3344/Telegram-VN-Bot/internal/logging"
	"github.com/earlcamp3344/Telegram-VN-Bot/internal/transcribe"
	"github.com/earlcamp3344/Telegram-VN-Bot/internal/wizard"
)

// Options holds the bot's collaborators. Nil integrations are allowed: the
// affected features report a configuration problem at call time instead of
// preventing startup.
type Options struct {
	Notion      *notion.Client
	Calendar    *calendar.Client
	Converter   *audio.Converter
	Transcriber transcribe.Transcriber
	Now         func() time.Time
}

// Bot dispatches Telegram updates. Wizard sessions are keyed by chat ID and
// owned here; a chat has at most one active flow, and entering a wizard
// replaces whatever was active. Updates arrive on a single channel, so
// per-chat state needs no locking.
type Bot struct {
	api       *tgbotapi.BotAPI
	notion    *notion.Client
	calendar  *calendar.Client
	converter *audio.Converter
	stt       transcribe.Transcriber
	extractor *extract.Parser
	taskFlow  *wizard.Flow
	eventFlow *wizard.Flow
	sessions  map[int64]*wizard.Session
	now       func() time.Time
}

// New creates the bot and connects to Telegram.
func New(token string, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var tasks wizard.TaskService
	if opts.Notion != nil {
		tasks = &notionTaskService{client: opts.Notion}
	}
	var events wizard.EventService
	if opts.Calendar != nil {
		events = &calendarEventService{client: opts.Calendar}
	}

	return &Bot{
		api:       api,
		notion:    opts.Notion,
		calendar:  opts.Calendar,
		converter: opts.Converter,
		stt:       opts.Transcriber,
		extractor: extract.New(),
		taskFlow:  wizard.NewTaskFlow(tasks, now),
		eventFlow: wizard.NewEventFlow(events, now),
		sessions:  make(map[int64]*wizard.Session),
		now:       now,
	}, nil
}

// Username returns the bot's Telegram username.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run processes updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	logging.Info("bot", "connected as @%s", b.Username())

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID

	switch {
	case msg.Voice != nil:
		b.handleVoice(ctx, msg)
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	default:
		if sess, ok := b.sessions[chatID]; ok {
			b.advanceSession(ctx, chatID, sess, msg.Text)
			return
		}
		b.handleFreeText(ctx, chatID, msg.Text)
	}
}

func (b *Bot) advanceSession(ctx context.Context, chatID int64, sess *wizard.Session, input string) {
	reply := sess.Handle(ctx, input)
	if sess.Done() {
		delete(b.sessions, chatID)
	}
	b.sendReply(chatID, reply)
}

// startSession enters a wizard, discarding any active flow for the chat.
func (b *Bot) startSession(chatID int64, flow *wizard.Flow) {
	sess := wizard.NewSession(flow)
	b.sessions[chatID] = sess
	b.sendReply(chatID, sess.Start())
}

// sendReply sends a wizard reply, attaching or removing the quick-reply
// keyboard as requested.
func (b *Bot) sendReply(chatID int64, reply wizard.Reply) {
	if reply.Text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if len(reply.Keyboard) > 0 {
		msg.ReplyMarkup = replyKeyboard(reply.Keyboard)
	} else if reply.RemoveKeyboard {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}
	if _, err := b.api.Send(msg); err != nil {
		logging.Warn("bot", "send failed: %v", err)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.sendReply(chatID, wizard.Reply{Text: text})
}

// replyKeyboard converts quick-reply rows into a one-time Telegram keyboard.
func replyKeyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	kbRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		kbRows = append(kbRows, buttons)
	}
	kb := tgbotapi.NewReplyKeyboard(kbRows...)
	kb.OneTimeKeyboard = true
	return kb
}

// notionTaskService adapts the Notion client to the task flow.
type notionTaskService struct {
	client *notion.Client
}

func (s *notionTaskService) CreateTask(ctx context.Context, task wizard.TaskRecord) (string, error) {
	return s.client.CreatePage(ctx, notion.PageParams{
		Title:    task.Title,
		Status:   task.Status,
		Priority: task.Priority,
		DueDate:  task.DueDate,
		Notes:    task.Notes,
	})
}

// calendarEventService adapts the Calendar client to the event flow.
type calendarEventService struct {
	client *calendar.Client
}

func (s *calendarEventService) CreateEvent(ctx context.Context, ev wizard.EventRecord) (string, error) {
	created, err := s.client.CreateEvent(ctx, calendar.CreateEventParams{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       ev.Start,
		End:         ev.End,
		Attendees:   ev.Attendees,
	})
	if err != nil {
		return "", err
	}
	return created.HtmlLink, nil
}
