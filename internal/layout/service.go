// Package layout installs CRM field layouts.
package layout

import (
	"context"
	"fmt"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
	"donorcrm/internal/messages"
	"donorcrm/internal/sqlinline"
)

const quickEntry = "Quick Entry"

type Service struct {
	sql    infra.SQLExecutor
	logger infra.Logger
}

func NewService(sql infra.SQLExecutor, logger infra.Logger) *Service {
	return &Service{sql: sql, logger: logger}
}

// InstallDonationQuickEntry creates the Donation quick entry layout unless
// one exists. It reports whether a layout was created.
func (s *Service) InstallDonationQuickEntry(ctx context.Context) (bool, string, error) {
	var exists bool
	if err := s.sql.QueryRow(ctx, sqlinline.QFieldsLayoutExists, domain.DoctypeDonation, quickEntry).Scan(&exists); err != nil {
		return false, "", fmt.Errorf("check layout: %w", err)
	}
	if exists {
		return false, messages.LayoutExists, nil
	}
	tag, err := s.sql.Exec(ctx, sqlinline.QInsertFieldsLayout, domain.DoctypeDonation, quickEntry, domain.DonationQuickEntryLayout)
	if err != nil {
		return false, "", fmt.Errorf("insert layout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Lost a race with a concurrent install.
		return false, messages.LayoutExists, nil
	}
	s.logger.Info().Str("doctype", domain.DoctypeDonation).Msg("layout: quick entry installed")
	return true, messages.LayoutCreated, nil
}
