package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskfollowup/internal/auth"
	"taskfollowup/internal/models"
	"taskfollowup/internal/services"
	"taskfollowup/internal/utils"
)

// HistoryStore is the part of the history repository the handlers read and write through
type HistoryStore interface {
	List(ctx context.Context, filter models.HistoryFilter, sorting models.HistorySorting, page models.Pagination, lang string) (models.HistoryPage, error)
	DistinctRefIDs(ctx context.Context) ([]string, error)
	DistinctRncpTitles(ctx context.Context) ([]models.RncpTitle, error)
	DistinctClasses(ctx context.Context) ([]models.Class, error)
	DistinctSchools(ctx context.Context) ([]models.School, error)
	DistinctTaskDone(ctx context.Context) ([]int, error)
	DistinctTaskTransfered(ctx context.Context) ([]int, error)
	DistinctTaskClosed(ctx context.Context) ([]int, error)
	Get(ctx context.Context, id string) (*models.HistoryReminder, error)
	TemplateInUse(ctx context.Context, templateID string) (bool, error)
	CreateMany(ctx context.Context, records []models.HistoryReminder) error
	Update(ctx context.Context, id string, input models.HistoryReminderInput) (*models.HistoryReminder, error)
	Delete(ctx context.Context, id string) (*models.HistoryReminder, error)
}

// Exporter starts a CSV export in the background
type Exporter interface {
	Start(req services.ExportRequest) error
}

// Transferer reconciles task transfers for a scope
type Transferer interface {
	CountTransferredTasks(ctx context.Context, req services.TransferRequest) (services.TransferSummary, error)
}

// HistoryHandler serves the history reminder endpoints
type HistoryHandler struct {
	history  HistoryStore
	exporter Exporter
	transfer Transferer
	log      logrus.FieldLogger
}

// NewHistoryHandler creates the handler
func NewHistoryHandler(history HistoryStore, exporter Exporter, transfer Transferer, log logrus.FieldLogger) *HistoryHandler {
	return &HistoryHandler{history: history, exporter: exporter, transfer: transfer, log: log}
}

// RegisterRoutes mounts the history reminder endpoints on rg
func (h *HistoryHandler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/history-reminders", h.List)
	rg.POST("/history-reminders", h.CreateMany)
	rg.GET("/history-reminders/:id", h.Get)
	rg.PATCH("/history-reminders/:id", h.Update)
	rg.DELETE("/history-reminders/:id", h.Delete)
	rg.GET("/history-reminders/templates/:id/in-use", h.TemplateInUse)

	rg.GET("/history-reminders/dropdowns/references", h.dropdown(func(ctx context.Context) (interface{}, error) {
		return h.history.DistinctRefIDs(ctx)
	}))
	rg.GET("/history-reminders/dropdowns/rncp-titles", h.dropdown(func(ctx context.Context) (interface{}, error) {
		return h.history.DistinctRncpTitles(ctx)
	}))
	rg.GET("/history-reminders/dropdowns/classes", h.dropdown(func(ctx context.Context) (interface{}, error) {
		return h.history.DistinctClasses(ctx)
	}))
	rg.GET("/history-reminders/dropdowns/schools", h.dropdown(func(ctx context.Context) (interface{}, error) {
		return h.history.DistinctSchools(ctx)
	}))
	rg.GET("/history-reminders/dropdowns/task-done", h.dropdown(func(ctx context.Context) (interface{}, error) {
		return h.history.DistinctTaskDone(ctx)
	}))
	rg.GET("/history-reminders/dropdowns/task-transfered", h.dropdown(func(ctx context.Context) (interface{}, error) {
		return h.history.DistinctTaskTransfered(ctx)
	}))
	rg.GET("/history-reminders/dropdowns/task-closed", h.dropdown(func(ctx context.Context) (interface{}, error) {
		return h.history.DistinctTaskClosed(ctx)
	}))

	rg.POST("/history-reminders/export", h.Export)
	rg.POST("/history-reminders/transfers", h.CountTransferredTasks)
}

// List returns one page of history reminders with the total match count
func (h *HistoryHandler) List(c *gin.Context) {
	var filter models.HistoryFilter
	var sorting models.HistorySorting
	var page models.Pagination
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := c.ShouldBindQuery(&sorting); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.history.List(c.Request.Context(), filter, sorting, page, c.DefaultQuery("lang", utils.LangFR))
	if err != nil {
		h.fail(c, "Failed to list history reminders", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get returns a single history reminder
func (h *HistoryHandler) Get(c *gin.Context) {
	record, err := h.history.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to get history reminder", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// CreateMany inserts a batch of history reminders
func (h *HistoryHandler) CreateMany(c *gin.Context) {
	var inputs []models.HistoryReminderInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records := make([]models.HistoryReminder, 0, len(inputs))
	for _, in := range inputs {
		records = append(records, in.ToRecord())
	}
	if err := h.history.CreateMany(c.Request.Context(), records); err != nil {
		h.fail(c, "Failed to create history reminders", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": records})
}

// Update applies a partial update to one history reminder
func (h *HistoryHandler) Update(c *gin.Context) {
	var input models.HistoryReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.history.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.fail(c, "Failed to update history reminder", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Delete removes one history reminder and returns it
func (h *HistoryHandler) Delete(c *gin.Context) {
	record, err := h.history.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to delete history reminder", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// TemplateInUse reports whether any history reminder references the template
func (h *HistoryHandler) TemplateInUse(c *gin.Context) {
	inUse, err := h.history.TemplateInUse(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to check template usage", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"in_use": inUse})
}

// Export validates the request and starts the CSV export in the background
func (h *HistoryHandler) Export(c *gin.Context) {
	var req services.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.UserID = c.GetString(auth.UserIDKey)

	if err := h.exporter.Start(req); err != nil {
		h.fail(c, "Failed to start export", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Export started, the file will be sent by email"})
}

// CountTransferredTasks splits the tasks of every record in the scope into done and transferred
func (h *HistoryHandler) CountTransferredTasks(c *gin.Context) {
	var req services.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.transfer.CountTransferredTasks(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "Failed to count transferred tasks", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *HistoryHandler) dropdown(load func(ctx context.Context) (interface{}, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		values, err := load(c.Request.Context())
		if err != nil {
			h.fail(c, "Failed to load dropdown values", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": values})
	}
}

func (h *HistoryHandler) fail(c *gin.Context, message string, err error) {
	status, public := statusFor(err)
	if status == http.StatusInternalServerError {
		public = message
	}
	handleError(c, h.log, status, public, err)
}
