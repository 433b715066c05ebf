// Package notification delivers board events by email and push in the background.
package notification

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"taskup-backend/internal/board/domain"
	"taskup-backend/pkg/fcm"
	"taskup-backend/pkg/mailer"
	"taskup-backend/pkg/metrics"
)

var (
	ErrQueueFull = errors.New("notification queue is full")
	ErrStopped   = errors.New("notification dispatcher is stopped")
)

const sendTimeout = 30 * time.Second

// Pusher sends to devices and reports the tokens that failed
type Pusher interface {
	SendToDevices(ctx context.Context, tokens []string, push fcm.Push) ([]string, error)
}

// TokenStore is the subset of the FCM token repository the dispatcher needs
type TokenStore interface {
	GetTokensByUserID(ctx context.Context, userID string) ([]string, error)
	DeleteTokens(ctx context.Context, tokens []string) error
}

type job struct {
	kind     string
	mail     mailer.Message
	toUserID string
	push     fcm.Push
}

// Dispatcher queues notices and delivers them from a fixed pool of workers.
// Enqueueing never blocks; a full queue drops the notice.
type Dispatcher struct {
	mailer mailer.Mailer
	pusher Pusher
	tokens TokenStore

	jobQueue    chan job
	workerWg    sync.WaitGroup
	workerCount int
	started     bool
	stopped     bool
	mu          sync.RWMutex
}

func NewDispatcher(m mailer.Mailer, workerCount, queueSize int) *Dispatcher {
	if workerCount <= 0 {
		workerCount = 3
	}
	if queueSize <= 0 {
		queueSize = 500
	}
	return &Dispatcher{
		mailer:      m,
		jobQueue:    make(chan job, queueSize),
		workerCount: workerCount,
	}
}

// SetPusher enables push delivery alongside email
func (d *Dispatcher) SetPusher(p Pusher, tokens TokenStore) {
	d.pusher = p
	d.tokens = tokens
}

func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started || d.stopped {
		return
	}
	for i := 0; i < d.workerCount; i++ {
		d.workerWg.Add(1)
		go d.worker(i)
	}
	d.started = true
	log.Printf("[Notifier] Started %d workers", d.workerCount)
}

// Stop drains the queue and waits for the workers
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.jobQueue)
	started := d.started
	d.mu.Unlock()

	if started {
		d.workerWg.Wait()
	}
	log.Println("[Notifier] All workers stopped")
}

func (d *Dispatcher) worker(id int) {
	defer d.workerWg.Done()

	for j := range d.jobQueue {
		d.deliver(j)
	}
	log.Printf("[Notifier] Worker %d stopped", id)
}

func (d *Dispatcher) enqueue(j job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrStopped
	}
	select {
	case d.jobQueue <- j:
		return nil
	default:
		metrics.NotificationsDropped.Inc()
		log.Printf("[Notifier] Queue full, dropped %s notice for %s", j.kind, j.mail.To)
		return ErrQueueFull
	}
}

func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if j.mail.To != "" {
		if err := d.mailer.Send(ctx, j.mail); err != nil {
			log.Printf("[Notifier] %s email to %s failed: %v", j.kind, j.mail.To, err)
		}
	}
	if d.pusher != nil && d.tokens != nil && j.toUserID != "" {
		d.pushToUser(ctx, j)
	}
}

func (d *Dispatcher) pushToUser(ctx context.Context, j job) {
	tokens, err := d.tokens.GetTokensByUserID(ctx, j.toUserID)
	if err != nil {
		log.Printf("[Notifier] Error getting FCM tokens for user %s: %v", j.toUserID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	failed, err := d.pusher.SendToDevices(ctx, tokens, j.push)
	if err != nil {
		log.Printf("[Notifier] %s push to user %s failed: %v", j.kind, j.toUserID, err)
		return
	}
	if len(failed) > 0 {
		if err := d.tokens.DeleteTokens(ctx, failed); err != nil {
			log.Printf("[Notifier] Error removing %d stale FCM tokens: %v", len(failed), err)
		}
	}
}

func (d *Dispatcher) InvitationSent(_ context.Context, n domain.InvitationNotice) error {
	msg, err := invitationEmail(n)
	if err != nil {
		return err
	}
	return d.enqueue(job{
		kind:     "invitation",
		mail:     msg,
		toUserID: n.ToUserID,
		push: fcm.Push{
			Title: msg.Subject,
			Body:  "Join code " + n.JoinCode,
			Data:  map[string]string{"type": "invitation", "join_code": n.JoinCode},
			Link:  n.AcceptURL,
		},
	})
}

func (d *Dispatcher) TaskAssigned(_ context.Context, n domain.AssignmentNotice) error {
	msg, err := assignmentEmail(n)
	if err != nil {
		return err
	}
	return d.enqueue(job{
		kind:     "assignment",
		mail:     msg,
		toUserID: n.ToUserID,
		push: fcm.Push{
			Title: msg.Subject,
			Body:  n.TaskTitle,
			Data:  map[string]string{"type": "assignment"},
			Link:  n.TaskURL,
		},
	})
}

func (d *Dispatcher) UserMentioned(_ context.Context, n domain.MentionNotice) error {
	msg, err := mentionEmail(n)
	if err != nil {
		return err
	}
	return d.enqueue(job{
		kind:     "mention",
		mail:     msg,
		toUserID: n.ToUserID,
		push: fcm.Push{
			Title: msg.Subject,
			Body:  n.Comment,
			Data:  map[string]string{"type": "mention"},
			Link:  n.TaskURL,
		},
	})
}

func (d *Dispatcher) TaskDueSoon(_ context.Context, n domain.ReminderNotice) error {
	msg, err := reminderEmail(n)
	if err != nil {
		return err
	}
	return d.enqueue(job{
		kind:     "reminder",
		mail:     msg,
		toUserID: n.ToUserID,
		push: fcm.Push{
			Title: msg.Subject,
			Body:  "Due " + n.DueDate.Format(dueDateLayout),
			Data:  map[string]string{"type": "reminder", "task_id": n.TaskID},
			Link:  n.TaskURL,
		},
	})
}
