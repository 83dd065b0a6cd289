package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/earlcamp3344/Telegram-VN-Bot/internal/logging"
)

// TaskRecord is what the task flow submits to the note service.
type TaskRecord struct {
	Title    string
	Status   string
	Priority string
	DueDate  string // YYYY-MM-DD
	Notes    string
}

// TaskService creates task pages and returns their URL.
type TaskService interface {
	CreateTask(ctx context.Context, task TaskRecord) (string, error)
}

// NewTaskFlow builds the five-step task creation flow. Priority and status
// are fixed; the collected time and duration are echoed back to the user
// but only the due date reaches the note service.
func NewTaskFlow(svc TaskService, now func() time.Time) *Flow {
	return &Flow{
		Name: "task",
		Steps: []Step{
			nameStep("Let's create a task! Please enter the task name:"),
			dateStep("When is this task due?", now),
			timeStep("What time? (e.g. 3:00 PM)"),
			durationStep("How long should it take?"),
			attendeesStep(),
		},
		Submit: func(ctx context.Context, d *Draft) string {
			return submitTask(ctx, svc, d)
		},
	}
}

func submitTask(ctx context.Context, svc TaskService, d *Draft) string {
	if svc == nil {
		return "❌ Notion is not configured. Set NOTION_API_KEY and NOTION_DATABASE_ID."
	}

	dueDate := d.Date.Format("2006-01-02")
	start, _ := d.startEnd()

	url, err := svc.CreateTask(ctx, TaskRecord{
		Title:    d.Name,
		Status:   "Not started",
		Priority: "Medium",
		DueDate:  dueDate,
		Notes:    "Created via Telegram bot",
	})
	if err != nil {
		logging.Warn("wizard", "task creation failed: %v", err)
		return fmt.Sprintf("❌ Error creating task: %v", err)
	}

	logging.Info("wizard", "task created: %s", url)
	return fmt.Sprintf("✅ Task created successfully!\n\n"+
		"📝 Task: %s\n"+
		"📅 Due: %s\n"+
		"🕒 Time: %s\n"+
		"⏱ Duration: %d minutes\n"+
		"🔗 View it here: %s",
		d.Name, dueDate, start.Format("2006-01-02 15:04"), d.DurationMinutes, url)
}
