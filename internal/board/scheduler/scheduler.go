package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"taskup-backend/internal/board/domain"
	"taskup-backend/internal/board/repository"
)

const batchSize = 100

// ReminderNotifier delivers due date reminders
type ReminderNotifier interface {
	TaskDueSoon(ctx context.Context, notice domain.ReminderNotice) error
}

// TaskReminderScheduler reminds assignees of open tasks whose due date is
// within leadTime. Each task is reminded once; changing the due date re-arms it.
type TaskReminderScheduler struct {
	taskRepo repository.TaskRepository
	notifier ReminderNotifier
	appURL   string
	interval time.Duration
	leadTime time.Duration
	now      func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewTaskReminderScheduler(
	taskRepo repository.TaskRepository,
	notifier ReminderNotifier,
	appURL string,
	interval, leadTime time.Duration,
) *TaskReminderScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if leadTime <= 0 {
		leadTime = 24 * time.Hour
	}
	return &TaskReminderScheduler{
		taskRepo: taskRepo,
		notifier: notifier,
		appURL:   appURL,
		interval: interval,
		leadTime: leadTime,
		now:      time.Now,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *TaskReminderScheduler) Start() {
	log.Printf("[TaskScheduler] Starting task reminder scheduler (interval: %s, lead time: %s)", s.interval, s.leadTime)

	go func() {
		defer close(s.done)

		s.CheckAndSendReminders(context.Background())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.CheckAndSendReminders(context.Background())
			case <-s.stopChan:
				log.Println("[TaskScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop stops the loop and waits for the running check to finish
func (s *TaskReminderScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		<-s.done
	})
}

// CheckAndSendReminders runs one pass and returns how many tasks were handled
func (s *TaskReminderScheduler) CheckAndSendReminders(ctx context.Context) int {
	tasks, err := s.taskRepo.FindDueForReminder(ctx, s.now().Add(s.leadTime), batchSize)
	if err != nil {
		log.Printf("[TaskScheduler] Error finding pending reminders: %v", err)
		return 0
	}
	if len(tasks) == 0 {
		return 0
	}

	log.Printf("[TaskScheduler] Found %d tasks with pending reminders", len(tasks))

	for _, task := range tasks {
		url, err := s.taskURL(ctx, task.ID)
		if err != nil {
			log.Printf("[TaskScheduler] Error resolving board of task %s: %v", task.ID, err)
		}

		for _, assignee := range task.Assignees {
			if assignee.User == nil {
				continue
			}
			notice := domain.ReminderNotice{
				ToEmail:   assignee.User.Email,
				ToUserID:  assignee.UserID,
				TaskID:    task.ID,
				TaskTitle: task.Title,
				DueDate:   *task.DueDate,
				TaskURL:   url,
			}
			if err := s.notifier.TaskDueSoon(ctx, notice); err != nil {
				log.Printf("[TaskScheduler] Error queueing reminder for task %s to user %s: %v", task.ID, assignee.UserID, err)
			}
		}

		// marked even without assignees so the task is not picked up every tick
		if err := s.taskRepo.MarkReminderSent(ctx, task.ID); err != nil {
			log.Printf("[TaskScheduler] Error marking reminder as sent for task %s: %v", task.ID, err)
		}
	}
	return len(tasks)
}

func (s *TaskReminderScheduler) taskURL(ctx context.Context, taskID string) (string, error) {
	boardID, err := s.taskRepo.BoardIDOf(ctx, taskID)
	if err != nil || boardID == "" {
		return s.appURL, err
	}
	return fmt.Sprintf("%s/boards/%s?task=%s", s.appURL, boardID, taskID), nil
}
