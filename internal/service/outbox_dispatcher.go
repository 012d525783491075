package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-issue-api/internal/models"
	"github.com/noah-isme/campus-issue-api/pkg/jobs"
	"github.com/noah-isme/campus-issue-api/pkg/mailer"
)

type outboxStore interface {
	FetchPendingIntents(ctx context.Context, limit int) ([]models.NotificationIntent, error)
	MarkIntentDelivered(ctx context.Context, id string, deliveredAt time.Time) error
	MarkIntentFailed(ctx context.Context, id string, maxAttempts int) error
	Create(ctx context.Context, n *models.Notification) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event models.IssueEvent) error
}

// DispatcherConfig tunes the outbox drain loop.
type DispatcherConfig struct {
	PollInterval time.Duration
	BatchSize    int
	Concurrency  int
	MaxAttempts  int
	BaseURL      string
}

// OutboxDispatcher drains pending notification intents and materialises them
// as inbox rows, email and push events. Delivery is at-least-once: an intent
// already enqueued may be picked up again before it is marked delivered.
type OutboxDispatcher struct {
	store     outboxStore
	users     issueUserDirectory
	issues    issueRepository
	sender    mailer.Sender
	publisher eventPublisher
	queue     *jobs.Queue
	config    DispatcherConfig
	logger    *zap.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewOutboxDispatcher constructs a dispatcher; Start must be called before
// intents are drained.
func NewOutboxDispatcher(store outboxStore, users issueUserDirectory, issues issueRepository, sender mailer.Sender, publisher eventPublisher, config DispatcherConfig, logger *zap.Logger) *OutboxDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if sender == nil {
		sender = mailer.NopSender{}
	}

	d := &OutboxDispatcher{
		store:     store,
		users:     users,
		issues:    issues,
		sender:    sender,
		publisher: publisher,
		config:    config,
		logger:    logger,
		done:      make(chan struct{}),
	}
	d.queue = jobs.NewQueue("notification-outbox", d.handle, jobs.QueueConfig{
		Workers:    config.Concurrency,
		MaxRetries: 1,
		Logger:     logger,
	})
	return d
}

// Start launches the workers and the poll loop.
func (d *OutboxDispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	d.queue.Start(ctx)
	go d.loop(ctx)
}

// Stop halts polling and waits for in-flight intents to finish.
func (d *OutboxDispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	<-d.done
	d.queue.Stop()
}

func (d *OutboxDispatcher) loop(ctx context.Context) {
	defer close(d.done)
	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	d.drain(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

func (d *OutboxDispatcher) drain(ctx context.Context) {
	intents, err := d.store.FetchPendingIntents(ctx, d.config.BatchSize)
	if err != nil {
		d.logger.Warn("failed to fetch pending intents", zap.Error(err))
		return
	}
	for _, intent := range intents {
		job := jobs.Job{ID: intent.ID, Type: string(intent.Type), Payload: intent}
		if err := d.queue.Enqueue(job); err != nil {
			d.logger.Warn("failed to enqueue intent", zap.String("intent_id", intent.ID), zap.Error(err))
			return
		}
	}
}

// handle materialises one intent. The inbox row is the durable deliverable;
// email and push are best-effort extras that never fail the intent.
func (d *OutboxDispatcher) handle(ctx context.Context, job jobs.Job) error {
	intent, ok := job.Payload.(models.NotificationIntent)
	if !ok {
		d.logger.Error("unexpected outbox payload type", zap.String("job_id", job.ID))
		return nil
	}

	notification := &models.Notification{
		UserID:  intent.RecipientID,
		IssueID: intent.IssueID,
		Type:    intent.Type,
		Message: intent.Message,
	}
	if err := d.store.Create(ctx, notification); err != nil {
		d.logger.Warn("failed to create inbox notification", zap.String("intent_id", intent.ID), zap.Error(err))
		if err := d.store.MarkIntentFailed(ctx, intent.ID, d.config.MaxAttempts); err != nil {
			d.logger.Warn("failed to mark intent failed", zap.String("intent_id", intent.ID), zap.Error(err))
		}
		return nil
	}

	d.sendEmail(ctx, intent)

	if d.publisher != nil {
		event := models.IssueEvent{
			Type:        intent.Type,
			IssueID:     intent.IssueID,
			RecipientID: intent.RecipientID,
			Message:     intent.Message,
			OccurredAt:  time.Now().UTC(),
		}
		if err := d.publisher.Publish(ctx, event); err != nil {
			d.logger.Warn("failed to publish issue event", zap.String("intent_id", intent.ID), zap.Error(err))
		}
	}

	if err := d.store.MarkIntentDelivered(ctx, intent.ID, time.Now().UTC()); err != nil {
		d.logger.Warn("failed to mark intent delivered", zap.String("intent_id", intent.ID), zap.Error(err))
	}
	return nil
}

func (d *OutboxDispatcher) sendEmail(ctx context.Context, intent models.NotificationIntent) {
	recipient, err := d.users.FindByID(ctx, intent.RecipientID)
	if err != nil {
		d.logger.Warn("failed to load email recipient", zap.String("intent_id", intent.ID), zap.Error(err))
		return
	}

	issue, err := d.issues.FindByID(ctx, intent.IssueID)
	if err != nil {
		d.logger.Warn("failed to load issue for email", zap.String("intent_id", intent.ID), zap.Error(err))
		return
	}

	var tpl mailer.Template
	switch intent.Type {
	case models.NotificationIssueCreated:
		tpl = mailer.IssueCreated(d.config.BaseURL, issue.Title, issue.ID)
	case models.NotificationIssueAssigned:
		tpl = mailer.IssueAssigned(d.config.BaseURL, issue.Title, issue.ID)
	case models.NotificationStatusUpdated:
		tpl = mailer.StatusUpdated(d.config.BaseURL, issue.Title, issue.ID)
	case models.NotificationIssueEscalated:
		tpl = mailer.IssueEscalated(d.config.BaseURL, issue.Title, issue.ID)
	case models.NotificationCommentAdded:
		tpl = mailer.CommentAdded(d.config.BaseURL, issue.Title, issue.ID)
	default:
		return
	}

	if err := d.sender.Send(mailer.Message{To: recipient.Email, Subject: tpl.Subject, HTML: tpl.HTML}); err != nil {
		d.logger.Warn("failed to send notification email", zap.String("intent_id", intent.ID), zap.Error(err))
	}
}
