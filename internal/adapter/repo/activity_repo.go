package repo

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"donorcrm/internal/activities"
	"donorcrm/internal/docmeta"
	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
	"donorcrm/internal/sqlinline"
)

// ActivityRepositoryPG reads timeline sources from PostgreSQL.
type ActivityRepositoryPG struct {
	sql  infra.SQLExecutor
	meta *docmeta.Store
}

func NewActivityRepository(sql infra.SQLExecutor) *ActivityRepositoryPG {
	return &ActivityRepositoryPG{sql: sql, meta: docmeta.NewStore(sql)}
}

var headerQueries = map[string]string{
	domain.DoctypeLead:     sqlinline.QSelectLeadHeader,
	domain.DoctypeDonor:    sqlinline.QSelectDonorHeader,
	domain.DoctypeDonation: sqlinline.QSelectDonationHeader,
}

func (r *ActivityRepositoryPG) Header(ctx context.Context, doctype, name string) (activities.Header, error) {
	var h activities.Header
	var err error
	if doctype == domain.DoctypeDeal {
		err = r.sql.QueryRow(ctx, sqlinline.QSelectDealHeader, name).Scan(&h.Owner, &h.Creation, &h.Lead)
	} else if query, ok := headerQueries[doctype]; ok {
		err = r.sql.QueryRow(ctx, query, name).Scan(&h.Owner, &h.Creation)
	} else {
		return h, domain.NotFound(doctype, name)
	}
	if infra.IsNoRows(err) {
		return h, domain.NotFound(doctype, name)
	}
	return h, err
}

func (r *ActivityRepositoryPG) Fields(ctx context.Context, doctype string) ([]domain.FieldMeta, error) {
	return r.meta.Fields(ctx, doctype)
}

func (r *ActivityRepositoryPG) Versions(ctx context.Context, doctype, name string) ([]domain.Version, error) {
	return collectRows(ctx, r.sql, sqlinline.QListVersions, func(rows pgx.Rows) (domain.Version, error) {
		var v domain.Version
		var data []byte
		err := rows.Scan(&v.Name, &v.Owner, &v.Creation, &data)
		v.Data = json.RawMessage(data)
		return v, err
	}, doctype, name)
}

func (r *ActivityRepositoryPG) Comments(ctx context.Context, doctype, name string, types []string) ([]domain.Comment, error) {
	return collectRows(ctx, r.sql, sqlinline.QListComments, func(rows pgx.Rows) (domain.Comment, error) {
		var c domain.Comment
		err := rows.Scan(&c.Name, &c.CommentType, &c.Content, &c.Owner, &c.Creation)
		return c, err
	}, doctype, name, types)
}

func (r *ActivityRepositoryPG) Communications(ctx context.Context, doctype, name string) ([]domain.Communication, error) {
	return collectRows(ctx, r.sql, sqlinline.QListCommunications, func(rows pgx.Rows) (domain.Communication, error) {
		var c domain.Communication
		err := rows.Scan(&c.Name, &c.CommunicationType, &c.CommunicationDate, &c.Subject, &c.Content,
			&c.SenderFullName, &c.Sender, &c.Recipients, &c.CC, &c.BCC, &c.ReadByRecipient,
			&c.DeliveryStatus, &c.Creation)
		return c, err
	}, doctype, name)
}

func (r *ActivityRepositoryPG) Attachments(ctx context.Context, doctype, name string) ([]domain.Attachment, error) {
	return collectRows(ctx, r.sql, sqlinline.QListAttachments, func(rows pgx.Rows) (domain.Attachment, error) {
		var a domain.Attachment
		err := rows.Scan(&a.Name, &a.FileName, &a.FileType, &a.FileURL, &a.FileSize, &a.IsPrivate,
			&a.Modified, &a.Creation, &a.Owner)
		return a, err
	}, doctype, name)
}

func (r *ActivityRepositoryPG) CallLogs(ctx context.Context, name string) ([]domain.CallLog, error) {
	return collectRows(ctx, r.sql, sqlinline.QListCallLogsByReference, scanCallLog, name)
}

func (r *ActivityRepositoryPG) LinkedCallLogs(ctx context.Context, name string) ([]domain.CallLog, error) {
	return collectRows(ctx, r.sql, sqlinline.QListLinkedCallLogs, scanCallLog, name)
}

func scanCallLog(rows pgx.Rows) (domain.CallLog, error) {
	var c domain.CallLog
	err := rows.Scan(&c.Name, &c.Caller, &c.Receiver, &c.From, &c.To, &c.Duration, &c.StartTime,
		&c.EndTime, &c.Status, &c.Type, &c.RecordingURL, &c.Creation, &c.Note, &c.LinkDoctype, &c.LinkName)
	return c, err
}

func (r *ActivityRepositoryPG) NotesByReference(ctx context.Context, name string) ([]domain.Note, error) {
	return collectRows(ctx, r.sql, sqlinline.QListNotesByReference, scanNote, name)
}

func (r *ActivityRepositoryPG) NotesByName(ctx context.Context, names []string) ([]domain.Note, error) {
	return collectRows(ctx, r.sql, sqlinline.QListNotesByName, scanNote, names)
}

func scanNote(rows pgx.Rows) (domain.Note, error) {
	var n domain.Note
	err := rows.Scan(&n.Name, &n.Title, &n.Content, &n.Owner, &n.Modified)
	return n, err
}

func (r *ActivityRepositoryPG) TasksByReference(ctx context.Context, name string) ([]domain.Task, error) {
	return collectRows(ctx, r.sql, sqlinline.QListTasksByReference, scanTask, name)
}

func (r *ActivityRepositoryPG) TasksByName(ctx context.Context, names []string) ([]domain.Task, error) {
	return collectRows(ctx, r.sql, sqlinline.QListTasksByName, scanTask, names)
}

func scanTask(rows pgx.Rows) (domain.Task, error) {
	var t domain.Task
	err := rows.Scan(&t.Name, &t.Title, &t.Description, &t.AssignedTo, &t.DueDate, &t.Priority, &t.Status, &t.Modified)
	return t, err
}

// collectRows runs query and scans every row with scan. It never returns a
// nil slice on success.
func collectRows[T any](ctx context.Context, sql infra.SQLExecutor, query string, scan func(pgx.Rows) (T, error), args ...any) ([]T, error) {
	rows, err := sql.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
