package services

import (
	"context"
	"fmt"
	"html"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"taskfollowup/internal/config"
	"taskfollowup/internal/models"
	"taskfollowup/internal/utils"
)

// ExportNotificationRef identifies the "export ready" email
const ExportNotificationRef = "EXPORT_N1"

// HistoryLister pages through the history
type HistoryLister interface {
	List(ctx context.Context, filter models.HistoryFilter, sorting models.HistorySorting, page models.Pagination, lang string) (models.HistoryPage, error)
}

// DirectoryReader resolves the entities history records point to
type DirectoryReader interface {
	TemplatesByID(ctx context.Context, ids []string) (map[string]models.TemplateReminder, error)
	RncpTitlesByID(ctx context.Context, ids []string) (map[string]models.RncpTitle, error)
	ClassesByID(ctx context.Context, ids []string) (map[string]models.Class, error)
	SchoolsByID(ctx context.Context, ids []string) (map[string]models.School, error)
	UsersByID(ctx context.Context, ids []string) (map[string]models.User, error)
	User(ctx context.Context, id string) (*models.User, error)
}

// MailQueue accepts messages for background delivery
type MailQueue interface {
	Submit(msg Message) error
}

// ExportRequest describes one CSV export. UserID is the requesting user and receives the mail.
type ExportRequest struct {
	Lang      string                `json:"lang"`
	Delimiter string                `json:"delimiter" binding:"required"`
	FileName  string                `json:"file_name"`
	Filter    models.HistoryFilter  `json:"filter"`
	Sorting   models.HistorySorting `json:"sorting"`
	UserID    string                `json:"-"`
}

// ExportResult is where the export ended up
type ExportResult struct {
	FileName string
	URL      string
	Rows     int
}

// ExportService builds the history CSV, uploads it and mails the link
type ExportService struct {
	history   HistoryLister
	directory DirectoryReader
	store     ObjectStore
	mail      MailQueue
	fs        afero.Fs
	cfg       config.ExportConfig
	log       logrus.FieldLogger
	wg        sync.WaitGroup
}

func NewExportService(history HistoryLister, directory DirectoryReader, store ObjectStore, mail MailQueue, fs afero.Fs, cfg config.ExportConfig, log logrus.FieldLogger) *ExportService {
	if cfg.PageSize < 1 {
		cfg.PageSize = 100
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 30 * time.Minute
	}
	return &ExportService{
		history:   history,
		directory: directory,
		store:     store,
		mail:      mail,
		fs:        fs,
		cfg:       cfg,
		log:       log.WithField("component", "export_service"),
	}
}

// Start validates the request and runs the export in the background
func (s *ExportService) Start(req ExportRequest) error {
	if _, err := ResolveDelimiter(req.Delimiter); err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
		defer cancel()

		result, err := s.Generate(ctx, req)
		if err != nil {
			s.log.WithField("user_id", req.UserID).Errorf("History export failed: %v", err)
			return
		}
		s.log.WithFields(logrus.Fields{
			"user_id": req.UserID,
			"file":    result.FileName,
			"rows":    result.Rows,
		}).Info("History export completed")
	}()
	return nil
}

// Wait blocks until background exports have finished
func (s *ExportService) Wait() {
	s.wg.Wait()
}

// Generate builds the CSV for the request, uploads it and queues the notification
func (s *ExportService) Generate(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	delimiter, err := ResolveDelimiter(req.Delimiter)
	if err != nil {
		return nil, err
	}
	lang := req.Lang
	if lang == "" {
		lang = utils.LangFR
	}

	var b strings.Builder
	b.WriteString(headerLine(lang, delimiter))

	rows := 0
	for page := 0; ; page++ {
		result, err := s.history.List(ctx, req.Filter, req.Sorting, models.Pagination{Limit: s.cfg.PageSize, Page: page}, lang)
		if err != nil {
			return nil, fmt.Errorf("failed to load export page %d: %w", page, err)
		}

		rel, err := s.lookup(ctx, result.Records)
		if err != nil {
			return nil, err
		}
		for _, h := range result.Records {
			b.WriteString(formatRow(h, rel, lang, delimiter))
		}
		rows += len(result.Records)

		if len(result.Records) < s.cfg.PageSize {
			break
		}
	}

	uploaded, data, err := s.writeAndUpload(ctx, req.FileName, b.String())
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/%s?download=true", s.cfg.APIBase, s.cfg.DownloadRoute, uploaded.Name)
	s.notify(ctx, req, lang, uploaded.Name, url, data)

	return &ExportResult{FileName: uploaded.Name, URL: url, Rows: rows}, nil
}

// lookup resolves the related entities of a page, one query per entity kind
func (s *ExportService) lookup(ctx context.Context, records []models.HistoryReminder) (relatedEntities, error) {
	var rel relatedEntities
	if len(records) == 0 {
		return rel, nil
	}

	templateIDs := make([]string, 0, len(records))
	titleIDs := make([]string, 0, len(records))
	classIDs := make([]string, 0, len(records))
	schoolIDs := make([]string, 0, len(records))
	userIDs := make([]string, 0, len(records))
	for _, h := range records {
		templateIDs = append(templateIDs, h.TemplateReminderID)
		titleIDs = append(titleIDs, h.RncpTitleID)
		classIDs = append(classIDs, h.ClassID)
		schoolIDs = append(schoolIDs, h.SchoolID)
		userIDs = append(userIDs, h.AcademicDirectorID)
	}

	var err error
	if rel.templates, err = s.directory.TemplatesByID(ctx, templateIDs); err != nil {
		return rel, err
	}
	if rel.titles, err = s.directory.RncpTitlesByID(ctx, titleIDs); err != nil {
		return rel, err
	}
	if rel.classes, err = s.directory.ClassesByID(ctx, classIDs); err != nil {
		return rel, err
	}
	if rel.schools, err = s.directory.SchoolsByID(ctx, schoolIDs); err != nil {
		return rel, err
	}
	if rel.users, err = s.directory.UsersByID(ctx, userIDs); err != nil {
		return rel, err
	}
	return rel, nil
}

// writeAndUpload stages the CSV in the temp dir, uploads it and always removes the staged file
func (s *ExportService) writeAndUpload(ctx context.Context, fileName, content string) (UploadResult, []byte, error) {
	base := strings.TrimSuffix(filepath.Base(strings.TrimSpace(fileName)), ".csv")
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = s.cfg.DefaultName
	}
	name := fmt.Sprintf("%s-%s.csv", base, uuid.NewString())
	path := filepath.Join(s.cfg.TempDir, name)

	if err := s.fs.MkdirAll(s.cfg.TempDir, 0o755); err != nil {
		return UploadResult{}, nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, path, []byte(content), 0o644); err != nil {
		return UploadResult{}, nil, fmt.Errorf("failed to write export file: %w", err)
	}
	defer func() {
		if err := s.fs.Remove(path); err != nil {
			s.log.Warnf("Failed to remove export file %s: %v", path, err)
		}
	}()

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return UploadResult{}, nil, fmt.Errorf("failed to read export file: %w", err)
	}

	uploaded, err := s.store.Upload(ctx, name, data)
	if err != nil {
		return UploadResult{}, nil, err
	}
	if uploaded.Name == "" {
		uploaded.Name = name
	}
	return uploaded, data, nil
}

// notify queues the "export ready" mail. Failures are logged and never fail the export.
func (s *ExportService) notify(ctx context.Context, req ExportRequest, lang, fileName, url string, data []byte) {
	log := s.log.WithFields(logrus.Fields{"user_id": req.UserID, "file": fileName})

	recipient, err := s.directory.User(ctx, req.UserID)
	if err != nil {
		log.Errorf("Cannot notify export recipient: %v", err)
		return
	}

	msg := exportReadyMessage(*recipient, lang, s.tableName(lang), url)
	msg.Attachments = []Attachment{{Filename: fileName, ContentType: "text/csv", Content: data}}

	if s.cfg.SenderID != "" {
		if sender, err := s.directory.User(ctx, s.cfg.SenderID); err == nil && sender.Email != "" {
			msg.FromEmail = sender.Email
			msg.FromName = strings.TrimSpace(sender.FirstName + " " + sender.LastName)
		} else if err != nil {
			log.Warnf("Platform sender %s not found, using the configured sender: %v", s.cfg.SenderID, err)
		}
	}

	if err := s.mail.Submit(msg); err != nil {
		log.Errorf("Failed to queue %s mail: %v", ExportNotificationRef, err)
	}
}

func (s *ExportService) tableName(lang string) string {
	if lang == utils.LangFR {
		return s.cfg.TableNameFR
	}
	return s.cfg.TableNameEN
}

func exportReadyMessage(to models.User, lang, tableName, url string) Message {
	civility := utils.ComputeCivility(to.Sex, lang)
	greetingName := strings.Join(strings.Fields(civility+" "+to.FirstName+" "+to.LastName), " ")

	var subject, plain, htmlBody string
	if lang == utils.LangFR {
		subject = fmt.Sprintf("Votre export est prêt, Ceci est votre fichier d'export depuis %s", tableName)
		plain = fmt.Sprintf("Bonjour %s,\n\nVotre export depuis %s est prêt : %s\n\nRéf : %s", greetingName, tableName, url, ExportNotificationRef)
		htmlBody = fmt.Sprintf("<p>Bonjour %s,</p><p>Votre export depuis <strong>%s</strong> est prêt : <a href=\"%s\">télécharger</a></p><p>Réf : %s</p>",
			html.EscapeString(greetingName), html.EscapeString(tableName), html.EscapeString(url), ExportNotificationRef)
	} else {
		subject = fmt.Sprintf("Your export is ready,  This is your export file from %s", tableName)
		plain = fmt.Sprintf("Hello %s,\n\nYour export from %s is ready: %s\n\nRef: %s", greetingName, tableName, url, ExportNotificationRef)
		htmlBody = fmt.Sprintf("<p>Hello %s,</p><p>Your export from <strong>%s</strong> is ready: <a href=\"%s\">download</a></p><p>Ref: %s</p>",
			html.EscapeString(greetingName), html.EscapeString(tableName), html.EscapeString(url), ExportNotificationRef)
	}

	return Message{
		Reference:    ExportNotificationRef,
		ToEmail:      to.Email,
		ToName:       strings.TrimSpace(to.FirstName + " " + to.LastName),
		Subject:      subject,
		PlainContent: plain,
		HTMLContent:  htmlBody,
	}
}
