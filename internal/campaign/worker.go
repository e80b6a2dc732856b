package campaign

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
	"donorcrm/internal/infra/events"
	"donorcrm/internal/providers/mail"
	"donorcrm/internal/sqlinline"
)

// Publisher emits job status events.
type Publisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// WorkerOptions configures the delivery loop.
type WorkerOptions struct {
	PollInterval time.Duration
	MaxAttempts  int
	// RetryBackoff is the delay before the second attempt. It doubles per
	// attempt up to maxRetryBackoff.
	RetryBackoff time.Duration
	// StaleAfter is how long a job may stay RUNNING before another worker
	// claims it.
	StaleAfter time.Duration
}

const maxRetryBackoff = time.Hour

// Worker claims queued email jobs and delivers them one at a time.
type Worker struct {
	jobs        domain.EmailJobRepository
	sql         infra.SQLExecutor
	mailer      mail.Sender
	events      Publisher
	logger      infra.Logger
	poll        time.Duration
	maxAttempts int
	backoff     time.Duration
	staleAfter  time.Duration
}

// templateData is what email templates can reference.
type templateData struct {
	Recipient     string
	Sender        string
	EmailCampaign string
}

func NewWorker(jobs domain.EmailJobRepository, sql infra.SQLExecutor, mailer mail.Sender, pub Publisher, logger infra.Logger, opts WorkerOptions) *Worker {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 30 * time.Second
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 15 * time.Minute
	}
	return &Worker{
		jobs:        jobs,
		sql:         sql,
		mailer:      mailer,
		events:      pub,
		logger:      logger,
		poll:        opts.PollInterval,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.RetryBackoff,
		staleAfter:  opts.StaleAfter,
	}
}

// Run processes jobs until ctx is cancelled, sleeping between empty polls.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Dur("poll", w.poll).Msg("worker: started")
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		processed, err := w.ProcessOne(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error().Err(err).Msg("worker: failed to process job")
		}
		if processed && err == nil {
			timer.Reset(0)
			continue
		}
		timer.Reset(w.poll)
	}
}

// ProcessOne claims and handles a single job. It reports false when the
// queue was empty.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	job, err := w.jobs.Claim(ctx, w.staleAfter)
	if err != nil {
		return false, fmt.Errorf("claim: %w", err)
	}
	if job == nil {
		return false, nil
	}
	log := w.logger.With().Str("job_id", job.ID.String()).Str("campaign", job.EmailCampaign).Logger()
	log.Info().Int("attempt", job.Attempts).Msg("worker: picked job")

	status, sendErr := w.deliver(ctx, job)
	errMsg := ""
	if sendErr != nil {
		errMsg = sendErr.Error()
		log.Error().Err(sendErr).Msg("worker: delivery failed")
	}

	if status == domain.EmailJobQueued {
		delay := w.retryDelay(job.Attempts)
		log.Info().Dur("retry_in", delay).Msg("worker: job requeued")
		err = w.jobs.Requeue(ctx, job.ID, errMsg, delay)
	} else {
		err = w.jobs.Complete(ctx, job.ID, status, errMsg)
	}
	if err != nil {
		return true, fmt.Errorf("update job %s: %w", job.ID, err)
	}

	if w.events != nil {
		if err := w.events.Publish(ctx, events.Event{
			Type:    "email_job",
			Doctype: domain.DoctypeEmailCampaign,
			Name:    job.EmailCampaign,
			Status:  status,
			Data:    map[string]any{"job_id": job.ID, "recipient": job.RecipientEmail, "attempts": job.Attempts},
		}); err != nil {
			log.Warn().Err(err).Msg("worker: publish event failed")
		}
	}
	return true, nil
}

// deliver returns the status the job should move to.
func (w *Worker) deliver(ctx context.Context, job *domain.EmailJob) (string, error) {
	var unsubscribed bool
	if err := w.sql.QueryRow(ctx, sqlinline.QEmailUnsubscribed, job.RecipientEmail).Scan(&unsubscribed); err != nil {
		return w.retryOrFail(job, fmt.Errorf("unsubscribe check: %w", err))
	}
	if unsubscribed {
		return domain.EmailJobSkipped, nil
	}

	var tpl domain.EmailTemplate
	err := w.sql.QueryRow(ctx, sqlinline.QSelectEmailTemplate, job.EmailTemplate).Scan(&tpl.Name, &tpl.Subject, &tpl.Response)
	if err != nil {
		if infra.IsNoRows(err) {
			return domain.EmailJobFailed, fmt.Errorf("email template %s not found", job.EmailTemplate)
		}
		return w.retryOrFail(job, err)
	}
	data := templateData{Recipient: job.RecipientEmail, Sender: job.Sender, EmailCampaign: job.EmailCampaign}
	subject, body, err := render(tpl, data)
	if err != nil {
		return domain.EmailJobFailed, err
	}

	if err := w.mailer.Send(ctx, mail.Message{From: job.Sender, To: job.RecipientEmail, Subject: subject, HTML: body}); err != nil {
		return w.retryOrFail(job, err)
	}

	if _, err := w.sql.Exec(ctx, sqlinline.QInsertCommunication,
		domain.DoctypeEmailCampaign, job.EmailCampaign, subject, body, job.Sender, job.RecipientEmail, "Sent"); err != nil {
		w.logger.Warn().Err(err).Str("job_id", job.ID.String()).Msg("worker: record communication failed")
	}
	return domain.EmailJobSent, nil
}

func (w *Worker) retryOrFail(job *domain.EmailJob, err error) (string, error) {
	if job.Attempts < w.maxAttempts {
		return domain.EmailJobQueued, err
	}
	return domain.EmailJobFailed, err
}

// retryDelay is the wait after the given failed attempt.
func (w *Worker) retryDelay(attempt int) time.Duration {
	delay := w.backoff
	for i := 1; i < attempt && delay < maxRetryBackoff; i++ {
		delay *= 2
	}
	return min(delay, maxRetryBackoff)
}

func render(tpl domain.EmailTemplate, data templateData) (string, string, error) {
	subjectTpl, err := texttemplate.New("subject").Parse(tpl.Subject)
	if err != nil {
		return "", "", fmt.Errorf("template %s subject: %w", tpl.Name, err)
	}
	bodyTpl, err := htmltemplate.New("body").Parse(tpl.Response)
	if err != nil {
		return "", "", fmt.Errorf("template %s body: %w", tpl.Name, err)
	}
	var subject, body bytes.Buffer
	if err := subjectTpl.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("template %s subject: %w", tpl.Name, err)
	}
	if err := bodyTpl.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("template %s body: %w", tpl.Name, err)
	}
	return subject.String(), body.String(), nil
}
