// Package campaign dispatches email campaigns into the job queue and
// delivers queued jobs.
package campaign

import (
	"context"
	"fmt"
	"time"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
	"donorcrm/internal/sqlinline"
)

// SendResult summarizes one dispatch run.
type SendResult struct {
	// Recipients counts recipients of campaigns with at least one due entry.
	Recipients int64
	// Enqueued counts the jobs written.
	Enqueued  int
	Campaigns int
}

type Dispatcher struct {
	sql    infra.SQLExecutor
	jobs   domain.EmailJobRepository
	logger infra.Logger
	now    func() time.Time
}

func NewDispatcher(sql infra.SQLExecutor, jobs domain.EmailJobRepository, logger infra.Logger) *Dispatcher {
	return &Dispatcher{sql: sql, jobs: jobs, logger: logger, now: time.Now}
}

// Send enqueues the schedule entries due today. With force every entry is
// sent. An empty id dispatches every active campaign.
func (d *Dispatcher) Send(ctx context.Context, force bool, id string) (SendResult, error) {
	campaigns, err := d.campaigns(ctx, id)
	if err != nil {
		return SendResult{}, err
	}
	today := d.now().UTC().Truncate(24 * time.Hour)

	var res SendResult
	for _, c := range campaigns {
		if !supportedRecipient(c.EmailCampaignFor) {
			d.logger.Warn().Str("campaign", c.Name).Str("for", c.EmailCampaignFor).Msg("campaign: unsupported recipient type")
			continue
		}
		count, err := d.recipientCount(ctx, c)
		if err != nil {
			return res, fmt.Errorf("campaign %s: %w", c.Name, err)
		}
		schedules, err := d.schedules(ctx, c.CampaignName)
		if err != nil {
			return res, fmt.Errorf("campaign %s: %w", c.Name, err)
		}

		due := false
		var recipients []string
		for _, entry := range schedules {
			if !force && !entry.DueOn(c.StartDate).Equal(today) {
				continue
			}
			if !due {
				if recipients, err = d.recipients(ctx, c); err != nil {
					return res, fmt.Errorf("campaign %s: %w", c.Name, err)
				}
				due = true
			}
			for _, email := range recipients {
				if _, err := d.jobs.Enqueue(ctx, domain.EmailJob{
					EmailCampaign:  c.Name,
					EmailTemplate:  entry.EmailTemplate,
					Sender:         c.Sender,
					RecipientEmail: email,
				}); err != nil {
					return res, fmt.Errorf("enqueue %s for %s: %w", entry.EmailTemplate, c.Name, err)
				}
				res.Enqueued++
			}
		}
		if due {
			res.Recipients += count
			res.Campaigns++
		}
	}
	d.logger.Info().Int("campaigns", res.Campaigns).Int("jobs", res.Enqueued).Int64("recipients", res.Recipients).Bool("force", force).Msg("campaign: dispatched")
	return res, nil
}

func (d *Dispatcher) campaigns(ctx context.Context, id string) ([]domain.EmailCampaign, error) {
	if id != "" {
		var c domain.EmailCampaign
		err := d.sql.QueryRow(ctx, sqlinline.QSelectEmailCampaignForDispatch, id).Scan(
			&c.Name, &c.CampaignName, &c.EmailCampaignFor, &c.Recipient, &c.Sender, &c.StartDate, &c.Status)
		if err != nil {
			if infra.IsNoRows(err) {
				return nil, nil
			}
			return nil, err
		}
		return []domain.EmailCampaign{c}, nil
	}

	rows, err := d.sql.Query(ctx, sqlinline.QListDispatchableEmailCampaigns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.EmailCampaign
	for rows.Next() {
		var c domain.EmailCampaign
		if err := rows.Scan(&c.Name, &c.CampaignName, &c.EmailCampaignFor, &c.Recipient, &c.Sender, &c.StartDate, &c.Status); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *Dispatcher) schedules(ctx context.Context, campaign string) ([]domain.CampaignSchedule, error) {
	rows, err := d.sql.Query(ctx, sqlinline.QListCampaignSchedules, campaign)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.CampaignSchedule
	for rows.Next() {
		var s domain.CampaignSchedule
		if err := rows.Scan(&s.Idx, &s.EmailTemplate, &s.SendAfterDays); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// recipientCount is the group's subscriber total, or 1 when a single
// recipient record has an email address.
func (d *Dispatcher) recipientCount(ctx context.Context, c domain.EmailCampaign) (int64, error) {
	if c.EmailCampaignFor == domain.RecipientEmailGroup {
		var total int64
		err := d.sql.QueryRow(ctx, sqlinline.QSelectEmailGroupTotal, c.Recipient).Scan(&total)
		if infra.IsNoRows(err) {
			return 0, nil
		}
		return total, err
	}
	email, _, err := d.contact(ctx, c)
	if err != nil || email == "" {
		return 0, err
	}
	return 1, nil
}

// recipients lists the addresses that should receive mail, leaving out
// unsubscribed ones.
func (d *Dispatcher) recipients(ctx context.Context, c domain.EmailCampaign) ([]string, error) {
	if c.EmailCampaignFor == domain.RecipientEmailGroup {
		rows, err := d.sql.Query(ctx, sqlinline.QListEmailGroupRecipients, c.Recipient)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var out []string
		for rows.Next() {
			var email string
			if err := rows.Scan(&email); err != nil {
				return nil, err
			}
			out = append(out, email)
		}
		return out, rows.Err()
	}
	email, unsubscribed, err := d.contact(ctx, c)
	if err != nil || email == "" || unsubscribed {
		return nil, err
	}
	return []string{email}, nil
}

var contactQueries = map[string]string{
	domain.RecipientLead:    sqlinline.QSelectLeadContact,
	domain.RecipientContact: sqlinline.QSelectContactEmail,
	domain.RecipientDonor:   sqlinline.QSelectDonorContact,
}

func supportedRecipient(kind string) bool {
	if kind == domain.RecipientEmailGroup {
		return true
	}
	_, ok := contactQueries[kind]
	return ok
}

func (d *Dispatcher) contact(ctx context.Context, c domain.EmailCampaign) (string, bool, error) {
	query, ok := contactQueries[c.EmailCampaignFor]
	if !ok {
		return "", false, nil
	}
	var email string
	var unsubscribed bool
	if err := d.sql.QueryRow(ctx, query, c.Recipient).Scan(&email, &unsubscribed); err != nil {
		if infra.IsNoRows(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return email, unsubscribed, nil
}
