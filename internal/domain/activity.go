package domain

import (
	"encoding/json"
	"time"
)

// Activity types emitted on a timeline.
const (
	ActivityCreation      = "creation"
	ActivityChanged       = "changed"
	ActivityAdded         = "added"
	ActivityRemoved       = "removed"
	ActivityComment       = "comment"
	ActivityCommunication = "communication"
	ActivityAttachmentLog = "attachment_log"
)

// Version is a stored field-change record of a document.
type Version struct {
	Name     string          `json:"name"`
	Owner    string          `json:"owner"`
	Creation time.Time       `json:"creation"`
	Data     json.RawMessage `json:"data"`
}

// Comment is a comment or an attachment log entry on a document.
type Comment struct {
	Name        string    `json:"name"`
	CommentType string    `json:"comment_type"`
	Content     string    `json:"content"`
	Owner       string    `json:"owner"`
	Creation    time.Time `json:"creation"`
}

// Communication is an email or automated message linked to a document.
type Communication struct {
	Name              string     `json:"name"`
	CommunicationType string     `json:"communication_type"`
	CommunicationDate *time.Time `json:"communication_date"`
	Subject           string     `json:"subject"`
	Content           string     `json:"content"`
	SenderFullName    string     `json:"sender_full_name"`
	Sender            string     `json:"sender"`
	Recipients        string     `json:"recipients"`
	CC                string     `json:"cc"`
	BCC               string     `json:"bcc"`
	ReadByRecipient   bool       `json:"read_by_recipient"`
	DeliveryStatus    string     `json:"delivery_status"`
	Creation          time.Time  `json:"creation"`
}

// Attachment is a file attached to a document.
type Attachment struct {
	Name      string    `json:"name"`
	FileName  string    `json:"file_name"`
	FileType  string    `json:"file_type"`
	FileURL   string    `json:"file_url"`
	FileSize  int64     `json:"file_size"`
	IsPrivate bool      `json:"is_private"`
	Modified  time.Time `json:"modified"`
	Creation  time.Time `json:"creation"`
	Owner     string    `json:"owner"`
}

// CallLog is a phone call record, optionally joined with one dynamic link.
type CallLog struct {
	Name         string     `json:"name"`
	Caller       string     `json:"caller"`
	Receiver     string     `json:"receiver"`
	From         string     `json:"from"`
	To           string     `json:"to"`
	Duration     int        `json:"duration"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Status       string     `json:"status"`
	Type         string     `json:"type"`
	RecordingURL string     `json:"recording_url"`
	Creation     time.Time  `json:"creation"`
	Note         string     `json:"note"`
	LinkDoctype  string     `json:"link_doctype,omitempty"`
	LinkName     string     `json:"link_name,omitempty"`
	ActivityType string     `json:"activity_type"`
	DurationText string     `json:"_duration"`
}

// Note is a free-form note linked to a document.
type Note struct {
	Name     string    `json:"name"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Owner    string    `json:"owner"`
	Modified time.Time `json:"modified"`
}

// Task is a to-do linked to a document.
type Task struct {
	Name        string     `json:"name"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssignedTo  string     `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Modified    time.Time  `json:"modified"`
}
