package models

// SortDirection is "asc" or "desc"
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// HistoryFilter narrows a history listing. Absent fields are not filtered on; numeric fields treat 0 as a value.
type HistoryFilter struct {
	HistoryReminderIDs  []string `form:"history_reminder_ids" json:"history_reminder_ids"`
	NotifRef            string   `form:"notif_ref" json:"notif_ref"`
	NotifName           string   `form:"notif_name" json:"notif_name"`
	RncpTitle           string   `form:"rncp_title" json:"rncp_title"`
	Class               string   `form:"class" json:"class"`
	School              string   `form:"school" json:"school"`
	AcademicDirector    string   `form:"academic_director" json:"academic_director"`
	TaskDone            *int     `form:"task_done" json:"task_done"`
	TotalTaskTransfered *int     `form:"total_task_transfered" json:"total_task_transfered"`
	TotalTaskClosed     *int     `form:"total_task_closed" json:"total_task_closed"`
}

// HistorySorting holds one optional direction per sortable column
type HistorySorting struct {
	DateSent            SortDirection `form:"sort_date_sent" json:"date_sent" binding:"omitempty,oneof=asc desc"`
	NotifRef            SortDirection `form:"sort_notif_ref" json:"notif_ref" binding:"omitempty,oneof=asc desc"`
	NotifName           SortDirection `form:"sort_notif_name" json:"notif_name" binding:"omitempty,oneof=asc desc"`
	RncpTitle           SortDirection `form:"sort_rncp_title" json:"rncp_title" binding:"omitempty,oneof=asc desc"`
	Class               SortDirection `form:"sort_class" json:"class" binding:"omitempty,oneof=asc desc"`
	School              SortDirection `form:"sort_school" json:"school" binding:"omitempty,oneof=asc desc"`
	DueDate             SortDirection `form:"sort_due_date" json:"due_date" binding:"omitempty,oneof=asc desc"`
	AcademicDirector    SortDirection `form:"sort_academic_director" json:"academic_director" binding:"omitempty,oneof=asc desc"`
	TaskDueOnSent       SortDirection `form:"sort_task_due_on_sent" json:"task_due_on_sent" binding:"omitempty,oneof=asc desc"`
	TaskDoneAfterSend   SortDirection `form:"sort_task_done_after_send" json:"task_done_after_send" binding:"omitempty,oneof=asc desc"`
	TaskDone            SortDirection `form:"sort_task_done" json:"task_done" binding:"omitempty,oneof=asc desc"`
	TotalTaskTransfered SortDirection `form:"sort_total_task_transfered" json:"total_task_transfered" binding:"omitempty,oneof=asc desc"`
	TotalTaskClosed     SortDirection `form:"sort_total_task_closed" json:"total_task_closed" binding:"omitempty,oneof=asc desc"`
}

// Pagination selects the zero-based page of a listing
type Pagination struct {
	Limit int `form:"limit" json:"limit" binding:"omitempty,min=1,max=500"`
	Page  int `form:"page" json:"page" binding:"omitempty,min=0"`
}

// Skip is the number of matching records before the page
func (p Pagination) Skip() int {
	return p.Limit * p.Page
}

// HistoryPage is one page of a listing together with the total number of matches
type HistoryPage struct {
	Records []HistoryReminder `json:"data"`
	Total   int64             `json:"count"`
}
