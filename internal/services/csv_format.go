package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"taskfollowup/internal/models"
	"taskfollowup/internal/utils"
)

var ErrUnsupportedDelimiter = errors.New("unsupported delimiter")

var delimiters = map[string]string{
	"comma":     ",",
	"semicolon": ";",
	"tab":       "\t",
}

// ResolveDelimiter maps a delimiter name to the separator it stands for
func ResolveDelimiter(name string) (string, error) {
	if d, ok := delimiters[name]; ok {
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDelimiter, name)
}

var reportHeadersFR = []string{
	"Date",
	"Notif Ref",
	"Nom",
	"Titre",
	"Classe",
	"Ecole",
	"Référent Titre",
	"Date limite",
	"Tâche due lors de l'envoi",
	"% de tâches effectuées après l'envoi",
	"Fait",
	"Transfert",
	"Fermé à la date d'échéance",
}

var reportHeadersEN = []string{
	"Date",
	"Notif Ref",
	"Name",
	"Title",
	"Class",
	"School",
	"Academic Director",
	"Due Date",
	"Task Due on Send",
	"% Task Done after Send",
	"Done",
	"Transfer",
	"Closed on due date",
}

func headerLine(lang, delimiter string) string {
	headers := reportHeadersEN
	if lang == utils.LangFR {
		headers = reportHeadersFR
	}
	return strings.Join(headers, delimiter) + "\n"
}

// relatedEntities holds the lookups for one page of records
type relatedEntities struct {
	templates map[string]models.TemplateReminder
	titles    map[string]models.RncpTitle
	classes   map[string]models.Class
	schools   map[string]models.School
	users     map[string]models.User
}

func formatRow(h models.HistoryReminder, rel relatedEntities, lang, delimiter string) string {
	cells := []string{
		quote(h.DateSent.Date),
		quote(h.RefID),
		quote(rel.templates[h.TemplateReminderID].Name),
		quote(rel.titles[h.RncpTitleID].ShortName),
		quote(rel.classes[h.ClassID].Name),
		quote(rel.schools[h.SchoolID].ShortName),
		quote(directorName(rel.users, h.AcademicDirectorID, lang)),
		quote(h.DueDate.Date),
		countCell(h.TaskDueOnSent),
		percentCell(h.PercentageTaskAfterSend),
		countCell(h.TaskDone),
		countCell(h.TotalTaskTransfered),
		countCell(h.TotalTaskClosed),
	}
	return strings.Join(cells, delimiter) + "\n"
}

func directorName(users map[string]models.User, id, lang string) string {
	u, ok := users[id]
	if !ok {
		return ""
	}
	return strings.TrimSpace(strings.ToUpper(u.LastName) + " " + u.FirstName + " " + utils.ComputeCivility(u.Sex, lang))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// countCell leaves absent counts empty and unquoted; zero is a value
func countCell(v *int) string {
	if v == nil {
		return ""
	}
	return quote(strconv.Itoa(*v))
}

func percentCell(v *float64) string {
	if v == nil {
		return ""
	}
	return quote(strconv.FormatFloat(*v, 'f', -1, 64) + "%")
}
