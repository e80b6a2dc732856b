package activities

import (
	"encoding/json"
	"time"

	"donorcrm/internal/domain"
)

// Entry is one item of a document timeline.
type Entry struct {
	Name              string              `json:"name,omitempty"`
	ActivityType      string              `json:"activity_type"`
	CommunicationType string              `json:"communication_type,omitempty"`
	CommunicationDate *time.Time          `json:"communication_date,omitempty"`
	Creation          time.Time           `json:"creation"`
	Owner             string              `json:"owner,omitempty"`
	Data              any                 `json:"data,omitempty"`
	Content           string              `json:"content,omitempty"`
	Attachments       []domain.Attachment `json:"attachments,omitempty"`
	IsLead            bool                `json:"is_lead"`
	Options           *string             `json:"options,omitempty"`
	OtherVersions     []Entry             `json:"other_versions,omitempty"`
}

func (e Entry) isVersion() bool {
	switch e.ActivityType {
	case domain.ActivityChanged, domain.ActivityAdded, domain.ActivityRemoved:
		return true
	}
	return false
}

// FieldChange is the data of a version entry. OldValue is only set for
// "changed" entries.
type FieldChange struct {
	Field      string `json:"field"`
	FieldLabel string `json:"field_label"`
	OldValue   any    `json:"old_value,omitempty"`
	Value      any    `json:"value"`
}

// CommunicationData is the data of a communication entry.
type CommunicationData struct {
	Subject         string              `json:"subject"`
	Content         string              `json:"content"`
	SenderFullName  string              `json:"sender_full_name"`
	Sender          string              `json:"sender"`
	Recipients      string              `json:"recipients"`
	CC              string              `json:"cc"`
	BCC             string              `json:"bcc"`
	Attachments     []domain.Attachment `json:"attachments"`
	ReadByRecipient bool                `json:"read_by_recipient"`
	DeliveryStatus  string              `json:"delivery_status"`
}

// AttachmentLog is the data of an attachment_log entry.
type AttachmentLog struct {
	Type      string `json:"type"`
	FileName  string `json:"file_name"`
	FileURL   string `json:"file_url"`
	IsPrivate bool   `json:"is_private"`
}

// Timeline is everything shown on a document's activity tab.
type Timeline struct {
	Activities  []Entry
	Calls       []domain.CallLog
	Notes       []domain.Note
	Tasks       []domain.Task
	Attachments []domain.Attachment
}

// MarshalJSON encodes the timeline as the five-element array clients expect.
func (t Timeline) MarshalJSON() ([]byte, error) {
	return json.Marshal([5]any{
		nonNil(t.Activities),
		nonNil(t.Calls),
		nonNil(t.Notes),
		nonNil(t.Tasks),
		nonNil(t.Attachments),
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
