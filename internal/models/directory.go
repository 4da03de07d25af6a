package models

// The entities below belong to the wider platform. This service only reads them.

// Task statuses used when reconciling history records
const (
	TaskStatusDone = "done"
	TaskStatusTodo = "todo"
)

// TemplateReminder is the template a reminder was sent from
type TemplateReminder struct {
	ID   string `gorm:"primaryKey;size:36" json:"_id"`
	Name string `gorm:"size:255;index" json:"name"`
}

// TableName specifies the table name for the TemplateReminder model
func (TemplateReminder) TableName() string {
	return "template_reminder"
}

// RncpTitle is a certification title
type RncpTitle struct {
	ID        string `gorm:"primaryKey;size:36" json:"_id"`
	ShortName string `gorm:"size:100" json:"short_name"`
	LongName  string `gorm:"size:255" json:"long_name"`
}

// TableName specifies the table name for the RncpTitle model
func (RncpTitle) TableName() string {
	return "rncp_title"
}

// Class is a class within a title
type Class struct {
	ID   string `gorm:"primaryKey;size:36" json:"_id"`
	Name string `gorm:"size:255" json:"name"`
}

// TableName specifies the table name for the Class model
func (Class) TableName() string {
	return "class"
}

// School is a school running a title
type School struct {
	ID        string `gorm:"primaryKey;size:36" json:"_id"`
	ShortName string `gorm:"size:100" json:"short_name"`
	LongName  string `gorm:"size:255" json:"long_name"`
}

// TableName specifies the table name for the School model
func (School) TableName() string {
	return "school"
}

// User is a platform user (academic director, recipient, exporter)
type User struct {
	ID        string `gorm:"primaryKey;size:36" json:"_id"`
	FirstName string `gorm:"size:100" json:"first_name"`
	LastName  string `gorm:"size:100;index" json:"last_name"`
	Civility  string `gorm:"size:10" json:"civility"`
	Sex       string `gorm:"size:10" json:"sex"`
	Email     string `gorm:"size:255" json:"email"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// AcadTask is an academic task followed up by reminders
type AcadTask struct {
	ID         string `gorm:"primaryKey;size:36" json:"_id"`
	TaskStatus string `gorm:"size:20;index" json:"task_status"`
}

// TableName specifies the table name for the AcadTask model
func (AcadTask) TableName() string {
	return "acad_task"
}
