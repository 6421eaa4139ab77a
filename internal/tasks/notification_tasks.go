package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"clubhouse_echo/internal/models"
	"clubhouse_echo/internal/services"
)

// SendNotificationArgs defines the arguments for a notification task
type SendNotificationArgs struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendNotificationTaskDef delivers the confirmation emails queued by the
// reconciliation workflow
type SendNotificationTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *SendNotificationTaskDef) TaskID() string {
	return "send_notification"
}

// CreateTask builds a ScheduledTask record for this task
func (t *SendNotificationTaskDef) CreateTask(args SendNotificationArgs) (*models.ScheduledTask, error) {
	return BuildScheduledTask(t.TaskID(), args, time.Now(), nil, models.ScheduledTaskTypeOneTime, 3)
}

// HandleExecution sends the email through the SMTP service
func (t *SendNotificationTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	to, _ := task.Arguments["to"].(string)
	subject, _ := task.Arguments["subject"].(string)
	body, _ := task.Arguments["body"].(string)

	if to == "" {
		return nil, fmt.Errorf("notification task missing recipient")
	}

	email := services.NewEmailService()
	if err := email.Notify(to, subject, body); err != nil {
		log.Printf("Failed to send notification to %s: %v", to, err)
		return nil, err
	}

	return map[string]interface{}{
		"status":    "success",
		"recipient": to,
	}, nil
}

// SendNotificationTask is the singleton instance of SendNotificationTaskDef
var SendNotificationTask = &SendNotificationTaskDef{}
