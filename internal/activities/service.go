// Package activities assembles the activity timeline of leads, deals,
// donors and donations.
package activities

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"donorcrm/internal/docmeta"
	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
)

const (
	commentTypeComment           = "Comment"
	commentTypeAttachment        = "Attachment"
	commentTypeAttachmentRemoved = "Attachment Removed"
)

// Header is the creation info of a timeline document.
type Header struct {
	Owner    string
	Creation time.Time
	// Lead is only set for deals converted from a lead.
	Lead string
}

// Store reads the records a timeline is built from.
type Store interface {
	Header(ctx context.Context, doctype, name string) (Header, error)
	Fields(ctx context.Context, doctype string) ([]domain.FieldMeta, error)
	Versions(ctx context.Context, doctype, name string) ([]domain.Version, error)
	Comments(ctx context.Context, doctype, name string, types []string) ([]domain.Comment, error)
	Communications(ctx context.Context, doctype, name string) ([]domain.Communication, error)
	Attachments(ctx context.Context, doctype, name string) ([]domain.Attachment, error)
	CallLogs(ctx context.Context, name string) ([]domain.CallLog, error)
	LinkedCallLogs(ctx context.Context, name string) ([]domain.CallLog, error)
	NotesByReference(ctx context.Context, name string) ([]domain.Note, error)
	NotesByName(ctx context.Context, names []string) ([]domain.Note, error)
	TasksByReference(ctx context.Context, name string) ([]domain.Task, error)
	TasksByName(ctx context.Context, names []string) ([]domain.Task, error)
}

// DraftDonations creates draft donations for unknown donation names.
type DraftDonations interface {
	CreateDraft(ctx context.Context, name, company, currency, owner string) error
}

// PlaceholderDonors creates minimal donors for unknown donor names.
type PlaceholderDonors interface {
	CreatePlaceholder(ctx context.Context, name, owner string) error
}

// Defaults fill in drafts created for missing donations.
type Defaults struct {
	Company  string
	Currency string
}

// resolveOrder is the order in which a bare name is matched to a doctype.
var resolveOrder = []string{
	domain.DoctypeDeal,
	domain.DoctypeLead,
	domain.DoctypeDonor,
	domain.DoctypeDonation,
}

var avoidedFields = map[string][]string{
	domain.DoctypeLead:  {"converted", "response_by", "sla_creation", "sla", "first_response_time", "first_responded_on"},
	domain.DoctypeDeal:  {"lead", "response_by", "sla_creation", "sla", "first_response_time", "first_responded_on"},
	domain.DoctypeDonor: {"converted", "response_by", "sla_creation", "sla", "first_response_time", "first_responded_on"},
}

var creationText = map[string]string{
	domain.DoctypeLead:     "created this lead",
	domain.DoctypeDeal:     "created this deal",
	domain.DoctypeDonor:    "created this donor",
	domain.DoctypeDonation: "created this donation",
}

type Service struct {
	store     Store
	donations DraftDonations
	donors    PlaceholderDonors
	defaults  Defaults
	logger    infra.Logger
}

func NewService(store Store, donations DraftDonations, donors PlaceholderDonors, defaults Defaults, logger infra.Logger) *Service {
	return &Service{store: store, donations: donations, donors: donors, defaults: defaults, logger: logger}
}

// Get returns the timeline of the document called name, creating a draft
// donation or placeholder donor when the name looks like one and nothing
// exists yet.
func (s *Service) Get(ctx context.Context, user, name string) (Timeline, error) {
	doctype, header, err := s.resolve(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		doctype, err = s.createMissing(ctx, user, name)
		if err != nil {
			return Timeline{}, err
		}
		header, err = s.store.Header(ctx, doctype, name)
	}
	if err != nil {
		return Timeline{}, err
	}
	return s.timeline(ctx, doctype, name, header)
}

func (s *Service) resolve(ctx context.Context, name string) (string, Header, error) {
	for _, doctype := range resolveOrder {
		h, err := s.store.Header(ctx, doctype, name)
		if err == nil {
			return doctype, h, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return "", Header{}, err
		}
	}
	return "", Header{}, domain.NotFound("Document", name)
}

func (s *Service) createMissing(ctx context.Context, user, name string) (string, error) {
	switch {
	case strings.HasPrefix(name, "DONATION-") || strings.HasPrefix(name, "DON-"):
		if err := s.donations.CreateDraft(ctx, name, s.defaults.Company, s.defaults.Currency, user); err != nil {
			return "", fmt.Errorf("create draft donation %s: %w", name, err)
		}
		s.logger.Info().Str("donation", name).Msg("activities: created missing donation")
		return domain.DoctypeDonation, nil
	case strings.HasPrefix(name, "DONOR-"):
		if err := s.donors.CreatePlaceholder(ctx, name, user); err != nil {
			return "", fmt.Errorf("create placeholder donor %s: %w", name, err)
		}
		s.logger.Info().Str("donor", name).Msg("activities: created missing donor")
		return domain.DoctypeDonor, nil
	}
	return "", domain.NotFound("Document", name)
}

func (s *Service) timeline(ctx context.Context, doctype, name string, header Header) (Timeline, error) {
	var out Timeline
	text := creationText[doctype]
	if doctype == domain.DoctypeDeal && header.Lead != "" {
		leadHeader, err := s.store.Header(ctx, domain.DoctypeLead, header.Lead)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return Timeline{}, err
		}
		if err == nil {
			lead, err := s.collect(ctx, domain.DoctypeLead, header.Lead, leadHeader, creationText[domain.DoctypeLead])
			if err != nil {
				return Timeline{}, err
			}
			out = lead
			text = "converted the lead to this deal"
		}
	}

	own, err := s.collect(ctx, doctype, name, header, text)
	if err != nil {
		return Timeline{}, err
	}
	out.Activities = append(out.Activities, own.Activities...)
	out.Calls = append(out.Calls, own.Calls...)
	out.Notes = append(out.Notes, own.Notes...)
	out.Tasks = append(out.Tasks, own.Tasks...)
	out.Attachments = append(out.Attachments, own.Attachments...)

	sort.SliceStable(out.Activities, func(i, j int) bool {
		return out.Activities[i].Creation.After(out.Activities[j].Creation)
	})
	out.Activities = groupVersions(out.Activities)
	return out, nil
}

// collect loads one document's entries and linked records concurrently.
// Entries are returned unsorted.
func (s *Service) collect(ctx context.Context, doctype, name string, header Header, text string) (Timeline, error) {
	isLead := doctype == domain.DoctypeLead
	var (
		fields   []domain.FieldMeta
		versions []domain.Version
		comments []Entry
		comms    []Entry
		logs     []domain.Comment
		linked   linkedCalls
		notes    []domain.Note
		tasks    []domain.Task
		attached []domain.Attachment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		fields, err = s.store.Fields(gctx, doctype)
		return err
	})
	g.Go(func() (err error) {
		versions, err = s.store.Versions(gctx, doctype, name)
		return err
	})
	g.Go(func() (err error) {
		comments, err = s.commentEntries(gctx, doctype, name, isLead)
		return err
	})
	g.Go(func() (err error) {
		comms, err = s.communicationEntries(gctx, doctype, name, isLead)
		return err
	})
	g.Go(func() (err error) {
		logs, err = s.store.Comments(gctx, doctype, name, []string{commentTypeAttachment, commentTypeAttachmentRemoved})
		return err
	})
	g.Go(func() (err error) {
		linked, err = s.linkedCalls(gctx, name)
		return err
	})
	g.Go(func() (err error) {
		notes, err = s.store.NotesByReference(gctx, name)
		return err
	})
	g.Go(func() (err error) {
		tasks, err = s.store.TasksByReference(gctx, name)
		return err
	})
	g.Go(func() (err error) {
		attached, err = s.store.Attachments(gctx, doctype, name)
		return err
	})
	if err := g.Wait(); err != nil {
		return Timeline{}, fmt.Errorf("%s %s activities: %w", doctype, name, err)
	}

	entries := []Entry{{
		ActivityType: domain.ActivityCreation,
		Creation:     header.Creation,
		Owner:        header.Owner,
		Data:         text,
		IsLead:       isLead,
	}}
	entries = append(entries, versionEntries(versions, docmeta.FieldIndex(fields), avoidedFields[doctype], isLead)...)
	entries = append(entries, comments...)
	entries = append(entries, comms...)
	for _, c := range logs {
		entries = append(entries, Entry{
			Name:         c.Name,
			ActivityType: domain.ActivityAttachmentLog,
			Creation:     c.Creation,
			Owner:        c.Owner,
			Data:         parseAttachmentLog(c.Content, c.CommentType),
			IsLead:       isLead,
		})
	}

	return Timeline{
		Activities:  entries,
		Calls:       linked.calls,
		Notes:       append(notes, linked.notes...),
		Tasks:       append(tasks, linked.tasks...),
		Attachments: attached,
	}, nil
}

func versionEntries(versions []domain.Version, fields map[string]domain.FieldMeta, avoid []string, isLead bool) []Entry {
	var out []Entry
	for _, v := range versions {
		fieldname, oldValue, newValue, ok := firstChange(v.Data)
		if !ok {
			continue
		}
		meta, known := fields[fieldname]
		if !known || slices.Contains(avoid, fieldname) || (isBlank(oldValue) && isBlank(newValue)) {
			continue
		}
		label := meta.Label
		if label == "" {
			label = fieldname
		}
		change := FieldChange{Field: fieldname, FieldLabel: label, OldValue: oldValue, Value: newValue}
		kind := domain.ActivityChanged
		switch {
		case isBlank(oldValue):
			kind = domain.ActivityAdded
			change.OldValue = nil
		case isBlank(newValue):
			kind = domain.ActivityRemoved
			change.OldValue = nil
			change.Value = oldValue
		}
		var options *string
		if meta.Options != "" {
			opt := meta.Options
			options = &opt
		}
		out = append(out, Entry{
			ActivityType: kind,
			Creation:     v.Creation,
			Owner:        v.Owner,
			Data:         change,
			IsLead:       isLead,
			Options:      options,
		})
	}
	return out
}

func (s *Service) commentEntries(ctx context.Context, doctype, name string, isLead bool) ([]Entry, error) {
	comments, err := s.store.Comments(ctx, doctype, name, []string{commentTypeComment})
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(comments))
	for _, c := range comments {
		files, err := s.store.Attachments(ctx, domain.DoctypeComment, c.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{
			Name:         c.Name,
			ActivityType: domain.ActivityComment,
			Creation:     c.Creation,
			Owner:        c.Owner,
			Content:      c.Content,
			Attachments:  nonNil(files),
			IsLead:       isLead,
		})
	}
	return out, nil
}

func (s *Service) communicationEntries(ctx context.Context, doctype, name string, isLead bool) ([]Entry, error) {
	comms, err := s.store.Communications(ctx, doctype, name)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(comms))
	for _, c := range comms {
		files, err := s.store.Attachments(ctx, domain.DoctypeCommunication, c.Name)
		if err != nil {
			return nil, err
		}
		date := c.CommunicationDate
		if date == nil {
			created := c.Creation
			date = &created
		}
		out = append(out, Entry{
			ActivityType:      domain.ActivityCommunication,
			CommunicationType: c.CommunicationType,
			CommunicationDate: date,
			Creation:          c.Creation,
			Data: CommunicationData{
				Subject:         c.Subject,
				Content:         c.Content,
				SenderFullName:  c.SenderFullName,
				Sender:          c.Sender,
				Recipients:      c.Recipients,
				CC:              c.CC,
				BCC:             c.BCC,
				Attachments:     nonNil(files),
				ReadByRecipient: c.ReadByRecipient,
				DeliveryStatus:  c.DeliveryStatus,
			},
			IsLead: isLead,
		})
	}
	return out, nil
}

type linkedCalls struct {
	calls []domain.CallLog
	notes []domain.Note
	tasks []domain.Task
}

// linkedCalls gathers call logs that reference name directly or through a
// dynamic link. Links pointing at notes or tasks yield those records instead.
func (s *Service) linkedCalls(ctx context.Context, name string) (linkedCalls, error) {
	var out linkedCalls
	calls, err := s.store.CallLogs(ctx, name)
	if err != nil {
		return out, err
	}
	linked, err := s.store.LinkedCallLogs(ctx, name)
	if err != nil {
		return out, err
	}
	var noteNames, taskNames []string
	for _, c := range linked {
		switch c.LinkDoctype {
		case domain.DoctypeNote:
			noteNames = append(noteNames, c.LinkName)
		case domain.DoctypeTask:
			taskNames = append(taskNames, c.LinkName)
		default:
			calls = append(calls, c)
		}
	}
	for i := range calls {
		calls[i] = parseCallLog(calls[i])
	}
	out.calls = calls
	if len(noteNames) > 0 {
		if out.notes, err = s.store.NotesByName(ctx, noteNames); err != nil {
			return out, err
		}
	}
	if len(taskNames) > 0 {
		if out.tasks, err = s.store.TasksByName(ctx, taskNames); err != nil {
			return out, err
		}
	}
	return out, nil
}

func parseCallLog(c domain.CallLog) domain.CallLog {
	c.ActivityType = "outgoing_call"
	if c.Type == "Incoming" {
		c.ActivityType = "incoming_call"
	}
	c.DurationText = formatDuration(c.Duration)
	return c
}

// groupVersions folds consecutive version entries by the same owner into the
// first one's OtherVersions. Entry order is otherwise preserved.
func groupVersions(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	head := -1
	for _, e := range entries {
		if !e.isVersion() {
			out = append(out, e)
			head = -1
			continue
		}
		if head >= 0 && e.Owner != "" && out[head].Owner == e.Owner {
			out[head].OtherVersions = append(out[head].OtherVersions, e)
			continue
		}
		out = append(out, e)
		head = len(out) - 1
	}
	return out
}
