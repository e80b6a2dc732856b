// Package address implements the address book helpers.
package address

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
	"donorcrm/internal/sqlinline"
)

type Service struct {
	sql infra.SQLExecutor
}

func NewService(sql infra.SQLExecutor) *Service {
	return &Service{sql: sql}
}

// Get returns the address as a JSON object.
func (s *Service) Get(ctx context.Context, name string) (map[string]any, error) {
	var raw []byte
	if err := s.sql.QueryRow(ctx, sqlinline.QSelectAddressDoc, name).Scan(&raw); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.NotFound(domain.DoctypeAddress, name)
		}
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	doc["doctype"] = domain.DoctypeAddress
	return doc, nil
}

// LinkedDeals returns the deals using the address. Addresses are not linked
// to deals yet, so the list is always empty once the address exists.
func (s *Service) LinkedDeals(ctx context.Context, name string) ([]string, error) {
	if _, err := s.Get(ctx, name); err != nil {
		return nil, err
	}
	return []string{}, nil
}

var contactQueries = map[string]string{
	domain.AddressFieldEmail: sqlinline.QUpdateAddressEmail,
	domain.AddressFieldPhone: sqlinline.QUpdateAddressPhone,
	domain.AddressFieldFax:   sqlinline.QUpdateAddressFax,
}

// SetContact stores an email, phone or fax value on the address.
func (s *Service) SetContact(ctx context.Context, name, field, value string) error {
	query, ok := contactQueries[field]
	if !ok {
		return domain.Invalid("field", "Invalid field")
	}
	return s.update(ctx, query, name, strings.TrimSpace(value))
}

var flagQueries = map[string]string{
	domain.AddressFieldPrimary:  sqlinline.QUpdateAddressPrimary,
	domain.AddressFieldShipping: sqlinline.QUpdateAddressShipping,
}

// SetFlag sets is_primary_address or is_shipping_address.
func (s *Service) SetFlag(ctx context.Context, name, field string, value bool) error {
	query, ok := flagQueries[field]
	if !ok {
		return domain.Invalid("field", "Invalid field")
	}
	return s.update(ctx, query, name, value)
}

func (s *Service) update(ctx context.Context, query, name string, value any) error {
	tag, err := s.sql.Exec(ctx, query, name, value)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound(domain.DoctypeAddress, name)
	}
	return nil
}

// Search returns up to AddressSearchLimit [address_title, city, name]
// tuples of enabled addresses matching txt.
func (s *Service) Search(ctx context.Context, txt string) ([][3]string, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QSearchAddresses, strings.TrimSpace(txt), domain.AddressSearchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := [][3]string{}
	for rows.Next() {
		var r [3]string
		if err := rows.Scan(&r[0], &r[1], &r[2]); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Truthy interprets checkbox values sent as booleans, numbers or strings.
func Truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return err == nil && b
	}
	return false
}
