package query

import (
	"fmt"

	"gorm.io/gorm"

	"taskfollowup/internal/models"
	"taskfollowup/internal/utils"
)

// Stage is one step of a history query. Stages are gorm scopes and run in order.
type Stage = func(*gorm.DB) *gorm.DB

// Pipeline is the ordered list of stages a listing runs through
type Pipeline []Stage

const historyTable = "history_reminder"

// Columns projected by the join stages for sorting
const (
	NotifNameColumn        = "notif_name"
	RncpTitleNameColumn    = "rncp_title_name"
	ClassNameColumn        = "class_name"
	SchoolNameColumn       = "school_name"
	AcademicDirectorColumn = "academic_director_name"
)

// Compile turns a filter and a sorting into a pipeline: the filter stage, one join stage per sort on
// a related entity, then the sort stage
func Compile(filter models.HistoryFilter, sorting models.HistorySorting, lang string) Pipeline {
	p := Pipeline{filterStage(filter)}

	keys := sortKeys(sorting)
	for _, k := range keys {
		if k.join != nil {
			p = append(p, joinStage(*k.join, lang))
		}
	}
	return append(p, sortStage(keys))
}

func filterStage(f models.HistoryFilter) Stage {
	return func(tx *gorm.DB) *gorm.DB {
		if len(f.HistoryReminderIDs) > 0 {
			tx = tx.Where(historyTable+".id IN ?", f.HistoryReminderIDs)
		}
		if f.NotifRef != "" {
			tx = tx.Where(historyTable+".ref_id = ?", f.NotifRef)
		}
		if p := namePattern(f.NotifName); p != "" {
			templates := tx.Session(&gorm.Session{NewDB: true}).
				Model(&models.TemplateReminder{}).
				Select("id").
				Where("name ~* ?", p)
			tx = tx.Where(historyTable+".template_reminder_id IN (?)", templates)
		}
		if f.RncpTitle != "" {
			tx = tx.Where(historyTable+".rncp_title_id = ?", f.RncpTitle)
		}
		if f.Class != "" {
			tx = tx.Where(historyTable+".class_id = ?", f.Class)
		}
		if f.School != "" {
			tx = tx.Where(historyTable+".school_id = ?", f.School)
		}
		if p := namePattern(f.AcademicDirector); p != "" {
			directors := tx.Session(&gorm.Session{NewDB: true}).
				Model(&models.User{}).
				Select("id").
				Where("last_name ~* ?", p)
			tx = tx.Where(historyTable+".academic_director_id IN (?)", directors)
		}
		if f.TaskDone != nil {
			tx = tx.Where(historyTable+".task_done = ?", *f.TaskDone)
		}
		if f.TotalTaskTransfered != nil {
			tx = tx.Where(historyTable+".total_task_transfered = ?", *f.TotalTaskTransfered)
		}
		if f.TotalTaskClosed != nil {
			tx = tx.Where(historyTable+".total_task_closed = ?", *f.TotalTaskClosed)
		}
		return tx
	}
}

type relation int

const (
	relTemplate relation = iota
	relRncpTitle
	relClass
	relSchool
	relAcademicDirector
)

type sortKey struct {
	columns   []string
	direction models.SortDirection
	join      *relation
}

func rel(r relation) *relation { return &r }

// sortKeys lists the requested keys in their fixed precedence
func sortKeys(s models.HistorySorting) []sortKey {
	all := []sortKey{
		{columns: []string{historyTable + ".date_sent_date", historyTable + ".date_sent_time"}, direction: s.DateSent},
		{columns: []string{historyTable + ".ref_id"}, direction: s.NotifRef},
		{columns: []string{NotifNameColumn}, direction: s.NotifName, join: rel(relTemplate)},
		{columns: []string{RncpTitleNameColumn}, direction: s.RncpTitle, join: rel(relRncpTitle)},
		{columns: []string{ClassNameColumn}, direction: s.Class, join: rel(relClass)},
		{columns: []string{SchoolNameColumn}, direction: s.School, join: rel(relSchool)},
		{columns: []string{historyTable + ".due_date_date", historyTable + ".due_date_time"}, direction: s.DueDate},
		{columns: []string{historyTable + ".percentage_task_after_send"}, direction: s.TaskDoneAfterSend},
		{columns: []string{AcademicDirectorColumn}, direction: s.AcademicDirector, join: rel(relAcademicDirector)},
		{columns: []string{historyTable + ".task_due_on_sent"}, direction: s.TaskDueOnSent},
		{columns: []string{historyTable + ".task_done"}, direction: s.TaskDone},
		{columns: []string{historyTable + ".total_task_transfered"}, direction: s.TotalTaskTransfered},
		{columns: []string{historyTable + ".total_task_closed"}, direction: s.TotalTaskClosed},
	}

	keys := make([]sortKey, 0, len(all))
	for _, k := range all {
		if k.direction != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func joinStage(r relation, lang string) Stage {
	var join, column string
	switch r {
	case relTemplate:
		join = "LEFT JOIN template_reminder AS notif_template ON notif_template.id = history_reminder.template_reminder_id"
		column = "notif_template.name AS " + NotifNameColumn
	case relRncpTitle:
		join = "LEFT JOIN rncp_title AS sort_rncp_title ON sort_rncp_title.id = history_reminder.rncp_title_id"
		column = "sort_rncp_title.short_name AS " + RncpTitleNameColumn
	case relClass:
		join = "LEFT JOIN class AS sort_class ON sort_class.id = history_reminder.class_id"
		column = "sort_class.name AS " + ClassNameColumn
	case relSchool:
		join = "LEFT JOIN school AS sort_school ON sort_school.id = history_reminder.school_id"
		column = "sort_school.short_name AS " + SchoolNameColumn
	case relAcademicDirector:
		join = "LEFT JOIN users AS academic_director ON academic_director.id = history_reminder.academic_director_id"
		column = directorNameSQL("academic_director", lang) + " AS " + AcademicDirectorColumn
	}
	return func(tx *gorm.DB) *gorm.DB {
		return withColumn(tx.Joins(join), column)
	}
}

func sortStage(keys []sortKey) Stage {
	return func(tx *gorm.DB) *gorm.DB {
		if len(keys) == 0 {
			tx = tx.Order(historyTable + ".updated_at DESC")
		}
		for _, k := range keys {
			dir := "ASC"
			if k.direction == models.SortDesc {
				dir = "DESC"
			}
			for _, c := range k.columns {
				tx = tx.Order(c + " " + dir)
			}
		}
		return tx.Order(historyTable + ".id ASC")
	}
}

// withColumn adds expr to the projection, keeping every history column and any column added before
func withColumn(tx *gorm.DB, expr string) *gorm.DB {
	current := tx.Statement.Selects
	if len(current) == 0 {
		current = []string{historyTable + ".*"}
	}
	cols := make([]string, 0, len(current)+1)
	cols = append(cols, current...)
	return tx.Select(append(cols, expr))
}

// directorNameSQL renders "last first civility" for the user joined as alias
func directorNameSQL(alias, lang string) string {
	return fmt.Sprintf(
		"TRIM(CONCAT(TRIM(%[1]s.last_name), ' ', TRIM(%[1]s.first_name), ' ', CASE LOWER(%[1]s.civility) WHEN 'mr' THEN '%[2]s' WHEN 'mrs' THEN '%[3]s' ELSE '' END))",
		alias, utils.TranslateCivility("mr", lang), utils.TranslateCivility("mrs", lang),
	)
}
