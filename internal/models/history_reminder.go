package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SendCondition tells how a reminder was scheduled
type SendCondition string

const (
	SendImmediately      SendCondition = "immediately"
	SendChosenDate       SendCondition = "chosen_date"
	SendRecuringReminder SendCondition = "recuring_reminder"
)

// DateTime is the date+time pair the platform stores for send and due dates
type DateTime struct {
	Date string `gorm:"size:20" json:"date"`
	Time string `gorm:"size:10" json:"time"`
}

// NotifySent keeps the rendered subject and body of the reminder that went out
type NotifySent struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// HistoryReminder is one reminder sent about outstanding tasks and the task outcome tracked against it.
// TaskIDs, TransferedTaskIDs and ClosedTaskIDs never share an id.
type HistoryReminder struct {
	ID                      string                         `gorm:"primaryKey;size:36" json:"_id"`
	DateSent                DateTime                       `gorm:"embedded;embeddedPrefix:date_sent_" json:"date_sent"`
	RefID                   string                         `gorm:"size:100;index" json:"ref_id"`
	RncpTitleID             string                         `gorm:"size:36;index" json:"rncp_title_id"`
	ClassID                 string                         `gorm:"size:36;index" json:"class_id"`
	SchoolID                string                         `gorm:"size:36;index" json:"school_id"`
	DueDate                 DateTime                       `gorm:"embedded;embeddedPrefix:due_date_" json:"due_date"`
	PercentageTaskAfterSend *float64                       `json:"percentage_task_after_send"`
	TemplateReminderID      string                         `gorm:"size:36;index" json:"template_reminder_id"`
	RecipientID             string                         `gorm:"size:36" json:"recipient"`
	RecipientInCC           pq.StringArray                 `gorm:"type:text[]" json:"recipient_in_cc"`
	SignatoryID             string                         `gorm:"size:36" json:"signatory"`
	TaskFollowUpID          string                         `gorm:"size:36" json:"task_follow_up_id"`
	SendCondition           SendCondition                  `gorm:"size:20" json:"send_condition"`
	NotifSent               datatypes.JSONType[NotifySent] `gorm:"type:jsonb" json:"notif_sent"`
	TaskIDs                 pq.StringArray                 `gorm:"type:text[]" json:"task_ids"`
	AcademicDirectorID      string                         `gorm:"size:36;index" json:"academic_director_id"`
	TaskDueOnSent           *int                           `json:"task_due_on_sent"`
	TaskDone                *int                           `json:"task_done"`
	TotalTaskTransfered     *int                           `json:"total_task_transfered"`
	TransferedTaskIDs       pq.StringArray                 `gorm:"type:text[]" json:"transfered_task_ids"`
	TotalTaskClosed         *int                           `json:"total_task_closed"`
	ClosedTaskIDs           pq.StringArray                 `gorm:"type:text[]" json:"closed_task_ids"`
	NotificationHistoryID   string                         `gorm:"size:36" json:"notification_history_id"`
	Status                  string                         `gorm:"size:20;default:active" json:"status"`
	CountDocument           *int                           `gorm:"-" json:"count_document,omitempty"`
	CreatedAt               time.Time                      `gorm:"not null" json:"createdAt"`
	UpdatedAt               time.Time                      `gorm:"not null;index" json:"updatedAt"`
}

// TableName specifies the table name for the HistoryReminder model
func (HistoryReminder) TableName() string {
	return "history_reminder"
}

// BeforeCreate hook assigns the id and timestamps
func (h *HistoryReminder) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	now := time.Now()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	if h.UpdatedAt.IsZero() {
		h.UpdatedAt = now
	}
	if h.Status == "" {
		h.Status = "active"
	}
	return nil
}

// Scope identifies the history records a task transfer applies to
type Scope struct {
	AcademicDirectorID string `json:"academic_director_id" binding:"required"`
	SchoolID           string `json:"school_id" binding:"required"`
	RncpTitleID        string `json:"rncp_title_id" binding:"required"`
	ClassID            string `json:"class_id" binding:"required"`
}

// DateTimeInput is the write shape of DateTime
type DateTimeInput struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// HistoryReminderInput carries raw ids. Every field is optional so the same shape serves partial updates.
// The completion percentage is derived and has no input field.
type HistoryReminderInput struct {
	DateSent            *DateTimeInput `json:"date_sent"`
	RefID               *string        `json:"ref_id"`
	RncpTitleID         *string        `json:"rncp_title_id"`
	ClassID             *string        `json:"class_id"`
	SchoolID            *string        `json:"school_id"`
	DueDate             *DateTimeInput `json:"due_date"`
	TemplateReminderID  *string        `json:"template_reminder_id"`
	RecipientID         *string        `json:"recipient"`
	SignatoryID         *string        `json:"signatory"`
	TaskIDs             []string       `json:"task_ids"`
	AcademicDirectorID  *string        `json:"academic_director_id"`
	TaskDueOnSent       *int           `json:"task_due_on_sent" binding:"omitempty,min=0"`
	TaskDone            *int           `json:"task_done" binding:"omitempty,min=0"`
	TotalTaskTransfered *int           `json:"total_task_transfered" binding:"omitempty,min=0"`
	TransferedTaskIDs   []string       `json:"transfered_task_ids"`
	TotalTaskClosed     *int           `json:"total_task_closed" binding:"omitempty,min=0"`
	ClosedTaskIDs       []string       `json:"closed_task_ids"`
}

// ToRecord builds a new record from the input
func (in HistoryReminderInput) ToRecord() HistoryReminder {
	var h HistoryReminder
	in.ApplyTo(&h)
	return h
}

// ApplyTo copies every field present in the input onto h
func (in HistoryReminderInput) ApplyTo(h *HistoryReminder) {
	if in.DateSent != nil {
		h.DateSent = DateTime{Date: in.DateSent.Date, Time: in.DateSent.Time}
	}
	if in.RefID != nil {
		h.RefID = *in.RefID
	}
	if in.RncpTitleID != nil {
		h.RncpTitleID = *in.RncpTitleID
	}
	if in.ClassID != nil {
		h.ClassID = *in.ClassID
	}
	if in.SchoolID != nil {
		h.SchoolID = *in.SchoolID
	}
	if in.DueDate != nil {
		h.DueDate = DateTime{Date: in.DueDate.Date, Time: in.DueDate.Time}
	}
	if in.TemplateReminderID != nil {
		h.TemplateReminderID = *in.TemplateReminderID
	}
	if in.RecipientID != nil {
		h.RecipientID = *in.RecipientID
	}
	if in.SignatoryID != nil {
		h.SignatoryID = *in.SignatoryID
	}
	if in.TaskIDs != nil {
		h.TaskIDs = pq.StringArray(in.TaskIDs)
	}
	if in.AcademicDirectorID != nil {
		h.AcademicDirectorID = *in.AcademicDirectorID
	}
	if in.TaskDueOnSent != nil {
		h.TaskDueOnSent = in.TaskDueOnSent
	}
	if in.TaskDone != nil {
		h.TaskDone = in.TaskDone
	}
	if in.TotalTaskTransfered != nil {
		h.TotalTaskTransfered = in.TotalTaskTransfered
	}
	if in.TransferedTaskIDs != nil {
		h.TransferedTaskIDs = pq.StringArray(in.TransferedTaskIDs)
	}
	if in.TotalTaskClosed != nil {
		h.TotalTaskClosed = in.TotalTaskClosed
	}
	if in.ClosedTaskIDs != nil {
		h.ClosedTaskIDs = pq.StringArray(in.ClosedTaskIDs)
	}
}
