package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"donorcrm/internal/db"
	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
)

// EmailJobRepositoryPG implements domain.EmailJobRepository on the typed
// queries of the email_jobs table.
type EmailJobRepositoryPG struct {
	q *db.Queries
}

// NewEmailJobRepository creates a new job repository backed by PostgreSQL.
func NewEmailJobRepository(sql infra.SQLExecutor) *EmailJobRepositoryPG {
	return &EmailJobRepositoryPG{q: db.New(sql)}
}

// Enqueue inserts a QUEUED job.
func (r *EmailJobRepositoryPG) Enqueue(ctx context.Context, job domain.EmailJob) (uuid.UUID, error) {
	return r.q.CreateEmailJob(ctx, db.CreateEmailJobParams{
		EmailCampaign:  job.EmailCampaign,
		EmailTemplate:  job.EmailTemplate,
		Sender:         job.Sender,
		RecipientEmail: job.RecipientEmail,
	})
}

// Claim returns nil without error when no job is due.
func (r *EmailJobRepositoryPG) Claim(ctx context.Context, staleAfter time.Duration) (*domain.EmailJob, error) {
	row, err := r.q.ClaimEmailJob(ctx, staleAfter)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	job := toDomainJob(row)
	return &job, nil
}

// Complete records a terminal status.
func (r *EmailJobRepositoryPG) Complete(ctx context.Context, id uuid.UUID, status, errMsg string) error {
	return r.q.CompleteEmailJob(ctx, db.CompleteEmailJobParams{ID: id, Status: status, Error: errMsg})
}

// Requeue puts a failed job back in the queue, due after delay.
func (r *EmailJobRepositoryPG) Requeue(ctx context.Context, id uuid.UUID, errMsg string, delay time.Duration) error {
	return r.q.RequeueEmailJob(ctx, db.RequeueEmailJobParams{ID: id, Error: errMsg, Delay: delay})
}

// GetByID fetches a job by its identifier.
func (r *EmailJobRepositoryPG) GetByID(ctx context.Context, id uuid.UUID) (*domain.EmailJob, error) {
	row, err := r.q.GetEmailJob(ctx, id)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.NotFound("Email Job", id.String())
		}
		return nil, err
	}
	job := toDomainJob(row)
	return &job, nil
}

// ListByCampaign returns the most recent jobs of an email campaign.
func (r *EmailJobRepositoryPG) ListByCampaign(ctx context.Context, campaign string, limit, offset int) ([]domain.EmailJob, error) {
	rows, err := r.q.ListEmailJobsByCampaign(ctx, db.ListEmailJobsByCampaignParams{
		EmailCampaign: campaign,
		Limit:         int32(limit),
		Offset:        int32(offset),
	})
	if err != nil {
		return nil, err
	}
	jobs := make([]domain.EmailJob, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, toDomainJob(row))
	}
	return jobs, nil
}

// Summary aggregates job outcomes for an email campaign.
func (r *EmailJobRepositoryPG) Summary(ctx context.Context, campaign string) (domain.EmailJobSummary, error) {
	row, err := r.q.EmailJobSummary(ctx, campaign)
	if err != nil {
		return domain.EmailJobSummary{}, err
	}
	summary := domain.EmailJobSummary{
		Total:   row.Total,
		Sent:    row.Sent,
		Failed:  row.Failed,
		Skipped: row.Skipped,
	}
	if row.SuccessRate.Valid {
		summary.SuccessRate = row.SuccessRate.Float64
	}
	return summary, nil
}

func toDomainJob(row db.EmailJob) domain.EmailJob {
	job := domain.EmailJob{
		ID:             row.ID,
		EmailCampaign:  row.EmailCampaign,
		EmailTemplate:  row.EmailTemplate,
		Sender:         row.Sender,
		RecipientEmail: row.RecipientEmail,
		Status:         row.Status,
		Attempts:       int(row.Attempts),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.Error.Valid {
		job.Error = row.Error.String
	}
	return job
}

var _ domain.EmailJobRepository = (*EmailJobRepositoryPG)(nil)
