package campaign

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
	"donorcrm/internal/sqlinline"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Groups maintains email group membership and subscriber totals.
type Groups struct {
	sql infra.TxRunner
}

func NewGroups(sql infra.TxRunner) *Groups {
	return &Groups{sql: sql}
}

// MoveMember assigns a member to another group and returns the refreshed
// totals keyed by group name.
func (g *Groups) MoveMember(ctx context.Context, member, group string) (map[string]int64, error) {
	group = strings.TrimSpace(group)
	if group == "" {
		return nil, domain.Invalid("email_group", "email group is required")
	}
	totals := map[string]int64{}
	err := g.sql.WithTx(ctx, func(tx infra.SQLExecutor) error {
		var oldGroup, email string
		if err := tx.QueryRow(ctx, sqlinline.QSelectEmailGroupMember, member).Scan(&oldGroup, &email); err != nil {
			if infra.IsNoRows(err) {
				return domain.NotFound("Email Group Member", member)
			}
			return err
		}
		if oldGroup != group {
			if _, err := tx.Exec(ctx, sqlinline.QMoveEmailGroupMember, member, group); err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) {
					switch pgErr.Code {
					case pgUniqueViolation:
						return fmt.Errorf("%s is already in email group %s: %w", email, group, domain.ErrDuplicate)
					case pgForeignKeyViolation:
						return domain.NotFound(domain.DoctypeEmailGroup, group)
					}
				}
				return err
			}
		}
		for _, name := range []string{oldGroup, group} {
			if _, done := totals[name]; done || name == "" {
				continue
			}
			total, err := refreshTotal(ctx, tx, name)
			if err != nil {
				return err
			}
			totals[name] = total
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}

// Unsubscribe marks email unsubscribed in group and returns the new total.
func (g *Groups) Unsubscribe(ctx context.Context, group, email string) (int64, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return 0, domain.Invalid("email", "email is required")
	}
	var total int64
	err := g.sql.WithTx(ctx, func(tx infra.SQLExecutor) error {
		tag, err := tx.Exec(ctx, sqlinline.QUnsubscribeEmailGroupMember, group, email)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.NotFound("Email Group Member", email)
		}
		total, err = refreshTotal(ctx, tx, group)
		return err
	})
	return total, err
}

func refreshTotal(ctx context.Context, tx infra.SQLExecutor, group string) (int64, error) {
	var total int64
	if err := tx.QueryRow(ctx, sqlinline.QRefreshEmailGroupTotal, group).Scan(&total); err != nil {
		if infra.IsNoRows(err) {
			return 0, domain.NotFound(domain.DoctypeEmailGroup, group)
		}
		return 0, err
	}
	return total, nil
}
