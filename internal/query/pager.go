package query

import (
	"gorm.io/gorm"

	"taskfollowup/internal/models"
)

// TotalCountColumn carries the number of matches before paging on every returned row
const TotalCountColumn = "total_count"

// Row is what a paged listing scans into
type Row struct {
	models.HistoryReminder
	TotalCount int64 `gorm:"->;column:total_count"`
}

// Paginate appends the paging stage. Data and total come back in one query; a page with no rows
// reports a total of 0. A zero limit returns every match.
func Paginate(p Pipeline, page models.Pagination) Pipeline {
	stage := func(tx *gorm.DB) *gorm.DB {
		tx = withColumn(tx, "COUNT(*) OVER() AS "+TotalCountColumn)
		if page.Limit > 0 {
			tx = tx.Offset(page.Skip()).Limit(page.Limit)
		}
		return tx
	}

	out := make(Pipeline, 0, len(p)+1)
	out = append(out, p...)
	return append(out, stage)
}

// Collect splits scanned rows into records and the total
func Collect(rows []Row) models.HistoryPage {
	page := models.HistoryPage{Records: make([]models.HistoryReminder, 0, len(rows))}
	for _, r := range rows {
		page.Records = append(page.Records, r.HistoryReminder)
	}
	if len(rows) > 0 {
		page.Total = rows[0].TotalCount
	}
	return page
}
