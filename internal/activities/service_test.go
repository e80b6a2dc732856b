package activities

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
)

var t0 = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func at(minutes int) time.Time { return t0.Add(time.Duration(minutes) * time.Minute) }

type docKey struct{ doctype, name string }

type fakeStore struct {
	headers        map[docKey]Header
	fields         map[string][]domain.FieldMeta
	versions       map[docKey][]domain.Version
	comments       map[docKey][]domain.Comment
	communications map[docKey][]domain.Communication
	attachments    map[docKey][]domain.Attachment
	calls          map[string][]domain.CallLog
	linkedCalls    map[string][]domain.CallLog
	notes          map[string][]domain.Note
	tasks          map[string][]domain.Task
	notesByName    map[string]domain.Note
	tasksByName    map[string]domain.Task
	headerErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		headers:        map[docKey]Header{},
		fields:         map[string][]domain.FieldMeta{},
		versions:       map[docKey][]domain.Version{},
		comments:       map[docKey][]domain.Comment{},
		communications: map[docKey][]domain.Communication{},
		attachments:    map[docKey][]domain.Attachment{},
		calls:          map[string][]domain.CallLog{},
		linkedCalls:    map[string][]domain.CallLog{},
		notes:          map[string][]domain.Note{},
		tasks:          map[string][]domain.Task{},
		notesByName:    map[string]domain.Note{},
		tasksByName:    map[string]domain.Task{},
	}
}

func (f *fakeStore) Header(_ context.Context, doctype, name string) (Header, error) {
	if f.headerErr != nil {
		return Header{}, f.headerErr
	}
	h, ok := f.headers[docKey{doctype, name}]
	if !ok {
		return Header{}, domain.NotFound(doctype, name)
	}
	return h, nil
}

func (f *fakeStore) Fields(_ context.Context, doctype string) ([]domain.FieldMeta, error) {
	return f.fields[doctype], nil
}

func (f *fakeStore) Versions(_ context.Context, doctype, name string) ([]domain.Version, error) {
	return f.versions[docKey{doctype, name}], nil
}

func (f *fakeStore) Comments(_ context.Context, doctype, name string, types []string) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range f.comments[docKey{doctype, name}] {
		for _, t := range types {
			if c.CommentType == t {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) Communications(_ context.Context, doctype, name string) ([]domain.Communication, error) {
	return f.communications[docKey{doctype, name}], nil
}

func (f *fakeStore) Attachments(_ context.Context, doctype, name string) ([]domain.Attachment, error) {
	return f.attachments[docKey{doctype, name}], nil
}

func (f *fakeStore) CallLogs(_ context.Context, name string) ([]domain.CallLog, error) {
	return append([]domain.CallLog(nil), f.calls[name]...), nil
}

func (f *fakeStore) LinkedCallLogs(_ context.Context, name string) ([]domain.CallLog, error) {
	return f.linkedCalls[name], nil
}

func (f *fakeStore) NotesByReference(_ context.Context, name string) ([]domain.Note, error) {
	return f.notes[name], nil
}

func (f *fakeStore) NotesByName(_ context.Context, names []string) ([]domain.Note, error) {
	var out []domain.Note
	for _, n := range names {
		out = append(out, f.notesByName[n])
	}
	return out, nil
}

func (f *fakeStore) TasksByReference(_ context.Context, name string) ([]domain.Task, error) {
	return f.tasks[name], nil
}

func (f *fakeStore) TasksByName(_ context.Context, names []string) ([]domain.Task, error) {
	var out []domain.Task
	for _, n := range names {
		out = append(out, f.tasksByName[n])
	}
	return out, nil
}

type fakeCreator struct {
	mu        sync.Mutex
	store     *fakeStore
	donations []string
	donors    []string
	company   string
	currency  string
}

func (c *fakeCreator) CreateDraft(_ context.Context, name, company, currency, owner string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.donations = append(c.donations, name)
	c.company, c.currency = company, currency
	c.store.headers[docKey{domain.DoctypeDonation, name}] = Header{Owner: owner, Creation: t0}
	return nil
}

func (c *fakeCreator) CreatePlaceholder(_ context.Context, name, owner string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.donors = append(c.donors, name)
	c.store.headers[docKey{domain.DoctypeDonor, name}] = Header{Owner: owner, Creation: t0}
	return nil
}

func newTestService(store *fakeStore) (*Service, *fakeCreator) {
	creator := &fakeCreator{store: store}
	svc := NewService(store, creator, creator, Defaults{Company: "Alkhidmat Foundation", Currency: "PKR"}, infra.NopLogger())
	return svc, creator
}

func change(field string, oldValue, newValue any) json.RawMessage {
	raw, _ := json.Marshal(map[string]any{"changed": [][]any{{field, oldValue, newValue}}})
	return raw
}

func strPtr(s string) *string { return &s }

func TestDonorTimeline(t *testing.T) {
	store := newFakeStore()
	key := docKey{domain.DoctypeDonor, "DONOR-2026-00001"}
	store.headers[key] = Header{Owner: "alice", Creation: at(0)}
	store.fields[domain.DoctypeDonor] = []domain.FieldMeta{
		{Fieldname: "status", Label: "Status", Options: "Donor Status"},
		{Fieldname: "email", Label: "Email"},
		{Fieldname: "mobile_no"},
		{Fieldname: "sla", Label: "SLA"},
	}
	store.versions[key] = []domain.Version{
		{Name: "v1", Owner: "alice", Creation: at(1), Data: change("status", "New", "Active")},
		{Name: "v2", Owner: "alice", Creation: at(2), Data: change("email", "", "a@example.org")},
		{Name: "v3", Owner: "bob", Creation: at(3), Data: change("mobile_no", "0300", nil)},
		{Name: "v4", Owner: "bob", Creation: at(4), Data: change("sla", "x", "y")},
		{Name: "v5", Owner: "bob", Creation: at(5), Data: change("unknown", "x", "y")},
		{Name: "v6", Owner: "bob", Creation: at(6), Data: change("email", "", "")},
		{Name: "v7", Owner: "bob", Creation: at(7), Data: json.RawMessage(`{"added":[]}`)},
	}
	store.comments[key] = []domain.Comment{
		{Name: "c1", CommentType: "Comment", Content: "<p>called</p>", Owner: "bob", Creation: at(10)},
		{Name: "c2", CommentType: "Attachment", Content: `<a href="/private/files/receipt.pdf">receipt.pdf</a>`, Owner: "bob", Creation: at(11)},
	}
	store.attachments[docKey{domain.DoctypeComment, "c1"}] = []domain.Attachment{{Name: "f1", FileName: "note.txt"}}
	store.attachments[key] = []domain.Attachment{{Name: "f2", FileName: "id.png"}}

	svc, _ := newTestService(store)
	got, err := svc.Get(context.Background(), "alice", key.name)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	want := []Entry{
		{
			Name:         "c2",
			ActivityType: domain.ActivityAttachmentLog,
			Creation:     at(11),
			Owner:        "bob",
			Data:         AttachmentLog{Type: "added", FileName: "receipt.pdf", FileURL: "/private/files/receipt.pdf", IsPrivate: true},
		},
		{
			Name:         "c1",
			ActivityType: domain.ActivityComment,
			Creation:     at(10),
			Owner:        "bob",
			Content:      "<p>called</p>",
			Attachments:  []domain.Attachment{{Name: "f1", FileName: "note.txt"}},
		},
		{
			ActivityType: domain.ActivityRemoved,
			Creation:     at(3),
			Owner:        "bob",
			Data:         FieldChange{Field: "mobile_no", FieldLabel: "mobile_no", Value: "0300"},
		},
		{
			ActivityType: domain.ActivityAdded,
			Creation:     at(2),
			Owner:        "alice",
			Data:         FieldChange{Field: "email", FieldLabel: "Email", Value: "a@example.org"},
			OtherVersions: []Entry{{
				ActivityType: domain.ActivityChanged,
				Creation:     at(1),
				Owner:        "alice",
				Data:         FieldChange{Field: "status", FieldLabel: "Status", OldValue: "New", Value: "Active"},
				Options:      strPtr("Donor Status"),
			}},
		},
		{
			ActivityType: domain.ActivityCreation,
			Creation:     at(0),
			Owner:        "alice",
			Data:         "created this donor",
		},
	}
	if diff := cmp.Diff(want, got.Activities); diff != "" {
		t.Fatalf("activities mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]domain.Attachment{{Name: "f2", FileName: "id.png"}}, got.Attachments); diff != "" {
		t.Fatalf("attachments mismatch (-want +got):\n%s", diff)
	}
}

func TestDealWithLeadIncludesLeadTimeline(t *testing.T) {
	store := newFakeStore()
	store.headers[docKey{domain.DoctypeDeal, "DEAL-1"}] = Header{Owner: "bob", Creation: at(20), Lead: "LEAD-1"}
	store.headers[docKey{domain.DoctypeLead, "LEAD-1"}] = Header{Owner: "alice", Creation: at(0)}
	store.notes["LEAD-1"] = []domain.Note{{Name: "n1"}}
	store.notes["DEAL-1"] = []domain.Note{{Name: "n2"}}

	svc, _ := newTestService(store)
	got, err := svc.Get(context.Background(), "bob", "DEAL-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	want := []Entry{
		{ActivityType: domain.ActivityCreation, Creation: at(20), Owner: "bob", Data: "converted the lead to this deal"},
		{ActivityType: domain.ActivityCreation, Creation: at(0), Owner: "alice", Data: "created this lead", IsLead: true},
	}
	if diff := cmp.Diff(want, got.Activities); diff != "" {
		t.Fatalf("activities mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]domain.Note{{Name: "n1"}, {Name: "n2"}}, got.Notes); diff != "" {
		t.Fatalf("notes mismatch (-want +got):\n%s", diff)
	}
}

func TestLinkedCallsSplitNotesAndTasks(t *testing.T) {
	store := newFakeStore()
	store.headers[docKey{domain.DoctypeLead, "LEAD-1"}] = Header{Owner: "alice", Creation: at(0)}
	store.calls["LEAD-1"] = []domain.CallLog{{Name: "call-1", Type: "Incoming", Duration: 65}}
	store.linkedCalls["LEAD-1"] = []domain.CallLog{
		{Name: "call-2", Type: "Outgoing", Duration: 3725, LinkDoctype: domain.DoctypeLead, LinkName: "LEAD-1"},
		{Name: "call-2", LinkDoctype: domain.DoctypeNote, LinkName: "note-1"},
		{Name: "call-2", LinkDoctype: domain.DoctypeTask, LinkName: "task-1"},
	}
	store.notesByName["note-1"] = domain.Note{Name: "note-1", Title: "follow up"}
	store.tasksByName["task-1"] = domain.Task{Name: "task-1", Title: "send receipt"}

	svc, _ := newTestService(store)
	got, err := svc.Get(context.Background(), "alice", "LEAD-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	wantCalls := []domain.CallLog{
		{Name: "call-1", Type: "Incoming", Duration: 65, ActivityType: "incoming_call", DurationText: "1m 5s"},
		{Name: "call-2", Type: "Outgoing", Duration: 3725, LinkDoctype: domain.DoctypeLead, LinkName: "LEAD-1", ActivityType: "outgoing_call", DurationText: "1h 2m 5s"},
	}
	if diff := cmp.Diff(wantCalls, got.Calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]domain.Note{{Name: "note-1", Title: "follow up"}}, got.Notes); diff != "" {
		t.Fatalf("notes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]domain.Task{{Name: "task-1", Title: "send receipt"}}, got.Tasks); diff != "" {
		t.Fatalf("tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestCommunicationDateFallsBackToCreation(t *testing.T) {
	store := newFakeStore()
	key := docKey{domain.DoctypeDonation, "DON-1"}
	store.headers[key] = Header{Owner: "alice", Creation: at(0)}
	store.communications[key] = []domain.Communication{
		{Name: "m1", CommunicationType: "Automated Message", Subject: "Thanks", Creation: at(5)},
	}

	svc, _ := newTestService(store)
	got, err := svc.Get(context.Background(), "alice", "DON-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	created := at(5)
	want := Entry{
		ActivityType:      domain.ActivityCommunication,
		CommunicationType: "Automated Message",
		CommunicationDate: &created,
		Creation:          at(5),
		Data:              CommunicationData{Subject: "Thanks", Attachments: []domain.Attachment{}},
	}
	if diff := cmp.Diff(want, got.Activities[0], cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("communication mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingDocuments(t *testing.T) {
	t.Run("donation", func(t *testing.T) {
		store := newFakeStore()
		svc, creator := newTestService(store)
		got, err := svc.Get(context.Background(), "alice", "DONATION-2026-00009")
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if len(creator.donations) != 1 || creator.company != "Alkhidmat Foundation" || creator.currency != "PKR" {
			t.Fatalf("unexpected draft creation: %+v", creator)
		}
		if got.Activities[0].Data != "created this donation" {
			t.Fatalf("unexpected creation entry %+v", got.Activities[0])
		}
	})

	t.Run("donor", func(t *testing.T) {
		store := newFakeStore()
		svc, creator := newTestService(store)
		got, err := svc.Get(context.Background(), "alice", "DONOR-2026-00009")
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if len(creator.donors) != 1 {
			t.Fatalf("expected placeholder donor, got %+v", creator.donors)
		}
		if got.Activities[0].Data != "created this donor" {
			t.Fatalf("unexpected creation entry %+v", got.Activities[0])
		}
	})

	t.Run("unknown", func(t *testing.T) {
		svc, creator := newTestService(newFakeStore())
		_, err := svc.Get(context.Background(), "alice", "LEAD-404")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
		if len(creator.donations)+len(creator.donors) != 0 {
			t.Fatal("nothing should be created")
		}
	})
}

func TestStoreErrorsPropagate(t *testing.T) {
	store := newFakeStore()
	store.headerErr = errors.New("connection reset")
	svc, _ := newTestService(store)
	if _, err := svc.Get(context.Background(), "alice", "DONOR-1"); err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestGroupVersionsKeepsOrder(t *testing.T) {
	v := func(owner string, minute int) Entry {
		return Entry{ActivityType: domain.ActivityChanged, Owner: owner, Creation: at(minute)}
	}
	comment := Entry{ActivityType: domain.ActivityComment, Owner: "a", Creation: at(3)}
	in := []Entry{v("a", 5), v("a", 4), comment, v("a", 2), v("b", 1)}

	got := groupVersions(in)
	want := []Entry{
		{ActivityType: domain.ActivityChanged, Owner: "a", Creation: at(5), OtherVersions: []Entry{v("a", 4)}},
		comment,
		v("a", 2),
		v("b", 1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("groupVersions mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAttachmentLog(t *testing.T) {
	tests := []struct {
		content, kind string
		want          AttachmentLog
	}{
		{
			content: `<a href="/files/logo.png" target="_blank">logo.png</a>`,
			kind:    "Attachment",
			want:    AttachmentLog{Type: "added", FileName: "logo.png", FileURL: "/files/logo.png"},
		},
		{
			content: "Removed logo.png",
			kind:    "Attachment Removed",
			want:    AttachmentLog{Type: "removed", FileName: "logo.png"},
		},
	}
	for _, tc := range tests {
		if diff := cmp.Diff(tc.want, parseAttachmentLog(tc.content, tc.kind)); diff != "" {
			t.Fatalf("parseAttachmentLog(%q) mismatch (-want +got):\n%s", tc.content, diff)
		}
	}
}

func TestTimelineJSONShape(t *testing.T) {
	raw, err := json.Marshal(Timeline{})
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(raw) != "[[],[],[],[],[]]" {
		t.Fatalf("unexpected JSON %s", raw)
	}
}
