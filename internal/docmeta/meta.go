// Package docmeta loads field metadata and client form scripts that the UI
// needs next to a document.
package docmeta

import (
	"context"
	"encoding/json"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
	"donorcrm/internal/sqlinline"
)

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Fields returns the field definitions of doctype in form order.
func (s *Store) Fields(ctx context.Context, doctype string) ([]domain.FieldMeta, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListDocFields, doctype)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := []domain.FieldMeta{}
	for rows.Next() {
		var f domain.FieldMeta
		if err := rows.Scan(&f.Doctype, &f.Fieldname, &f.Label, &f.Fieldtype, &f.Options, &f.InList, &f.Reqd); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// FormScript returns the enabled client script of doctype, or "".
func (s *Store) FormScript(ctx context.Context, doctype string) (string, error) {
	var script string
	if err := s.sql.QueryRow(ctx, sqlinline.QSelectFormScript, doctype).Scan(&script); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return script, nil
}

// Document loads a to_jsonb row with query and attaches fields_meta and
// _form_script.
func (s *Store) Document(ctx context.Context, query, doctype, name string) (map[string]any, error) {
	var raw []byte
	if err := s.sql.QueryRow(ctx, query, name).Scan(&raw); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.NotFound(doctype, name)
		}
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	fields, err := s.Fields(ctx, doctype)
	if err != nil {
		return nil, err
	}
	script, err := s.FormScript(ctx, doctype)
	if err != nil {
		return nil, err
	}
	doc["doctype"] = doctype
	doc["fields_meta"] = fields
	doc["_form_script"] = script
	return doc, nil
}

// FieldIndex maps fieldname to its meta.
func FieldIndex(fields []domain.FieldMeta) map[string]domain.FieldMeta {
	out := make(map[string]domain.FieldMeta, len(fields))
	for _, f := range fields {
		out[f.Fieldname] = f
	}
	return out
}
