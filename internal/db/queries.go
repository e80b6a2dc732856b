package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"donorcrm/internal/sqlinline"
)

type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const createEmailJob = `--sql 01bb3580-ea27-4972-b89c-8e16be13fab0
INSERT INTO email_jobs (id, email_campaign, email_template, sender, recipient_email, status, attempts)
VALUES (gen_random_uuid(), $1, $2, $3, $4, 'QUEUED', 0)
RETURNING id
`

type CreateEmailJobParams struct {
	EmailCampaign  string
	EmailTemplate  string
	Sender         string
	RecipientEmail string
}

func (q *Queries) CreateEmailJob(ctx context.Context, arg CreateEmailJobParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, createEmailJob, arg.EmailCampaign, arg.EmailTemplate, arg.Sender, arg.RecipientEmail)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

type EmailJob struct {
	ID             uuid.UUID
	EmailCampaign  string
	EmailTemplate  string
	Sender         string
	RecipientEmail string
	Status         string
	Attempts       int32
	Error          sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ClaimEmailJob locks the oldest due job, or one left RUNNING for longer
// than staleAfter, and marks it RUNNING. It returns pgx.ErrNoRows when
// nothing is due.
func (q *Queries) ClaimEmailJob(ctx context.Context, staleAfter time.Duration) (EmailJob, error) {
	row := q.db.QueryRow(ctx, sqlinline.QWorkerClaimEmailJob, staleAfter.Seconds())
	var job EmailJob
	err := row.Scan(
		&job.ID,
		&job.EmailCampaign,
		&job.EmailTemplate,
		&job.Sender,
		&job.RecipientEmail,
		&job.Status,
		&job.Attempts,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	return job, err
}

const completeEmailJob = `--sql f2657a67-b0f9-4b8e-a6df-7f9ccefb144f
UPDATE email_jobs
SET status = $2, error = NULLIF($3, ''), updated_at = now()
WHERE id = $1
`

type CompleteEmailJobParams struct {
	ID     uuid.UUID
	Status string
	Error  string
}

// CompleteEmailJob records a terminal status (SENT, FAILED or SKIPPED).
func (q *Queries) CompleteEmailJob(ctx context.Context, arg CompleteEmailJobParams) error {
	_, err := q.db.Exec(ctx, completeEmailJob, arg.ID, arg.Status, arg.Error)
	return err
}

const requeueEmailJob = `--sql 39194fe8-9387-453c-b463-0dc7f9461764
UPDATE email_jobs
SET status = 'QUEUED', error = $2, next_attempt_at = now() + make_interval(secs => $3::float8), updated_at = now()
WHERE id = $1
`

type RequeueEmailJobParams struct {
	ID    uuid.UUID
	Error string
	Delay time.Duration
}

func (q *Queries) RequeueEmailJob(ctx context.Context, arg RequeueEmailJobParams) error {
	_, err := q.db.Exec(ctx, requeueEmailJob, arg.ID, arg.Error, arg.Delay.Seconds())
	return err
}

const getEmailJob = `--sql b744436f-5553-4706-b32f-b10ef46b1700
SELECT id, email_campaign, email_template, sender, recipient_email, status, attempts, error, created_at, updated_at
FROM email_jobs
WHERE id = $1
`

func (q *Queries) GetEmailJob(ctx context.Context, id uuid.UUID) (EmailJob, error) {
	row := q.db.QueryRow(ctx, getEmailJob, id)
	var job EmailJob
	err := row.Scan(
		&job.ID,
		&job.EmailCampaign,
		&job.EmailTemplate,
		&job.Sender,
		&job.RecipientEmail,
		&job.Status,
		&job.Attempts,
		&job.Error,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	return job, err
}

const listEmailJobsByCampaign = `--sql 1beb3be2-cf66-464b-ba7f-dae96b9bbae9
SELECT id, email_campaign, email_template, sender, recipient_email, status, attempts, error, created_at, updated_at
FROM email_jobs
WHERE email_campaign = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

type ListEmailJobsByCampaignParams struct {
	EmailCampaign string
	Limit         int32
	Offset        int32
}

func (q *Queries) ListEmailJobsByCampaign(ctx context.Context, arg ListEmailJobsByCampaignParams) ([]EmailJob, error) {
	rows, err := q.db.Query(ctx, listEmailJobsByCampaign, arg.EmailCampaign, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var jobs []EmailJob
	for rows.Next() {
		var job EmailJob
		if err := rows.Scan(
			&job.ID,
			&job.EmailCampaign,
			&job.EmailTemplate,
			&job.Sender,
			&job.RecipientEmail,
			&job.Status,
			&job.Attempts,
			&job.Error,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

type EmailJobSummaryRow struct {
	Total       int64
	Sent        int64
	Failed      int64
	Skipped     int64
	SuccessRate sql.NullFloat64
}

const emailJobSummary = `--sql 4a316d06-9244-452c-8a3d-a2bb88b0819e
WITH agg AS (
  SELECT
    count(*) AS total,
    count(*) FILTER (WHERE status = 'SENT') AS sent,
    count(*) FILTER (WHERE status = 'FAILED') AS failed,
    count(*) FILTER (WHERE status = 'SKIPPED') AS skipped
  FROM email_jobs
  WHERE email_campaign = $1
)
SELECT total, sent, failed, skipped,
       ROUND(100.0 * sent / NULLIF(total, 0), 2)::float8 AS success_rate
FROM agg
`

func (q *Queries) EmailJobSummary(ctx context.Context, emailCampaign string) (EmailJobSummaryRow, error) {
	row := q.db.QueryRow(ctx, emailJobSummary, emailCampaign)
	var summary EmailJobSummaryRow
	err := row.Scan(&summary.Total, &summary.Sent, &summary.Failed, &summary.Skipped, &summary.SuccessRate)
	return summary, err
}
