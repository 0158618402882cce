package handlers

import (
	"net/http"

	"bidpilot_backend/internal/middleware"
	"bidpilot_backend/internal/models"
	"bidpilot_backend/internal/services"
	"bidpilot_backend/internal/services/dto"
	"bidpilot_backend/internal/workers"

	"github.com/gin-gonic/gin"
)

type DiscoveryHandler struct {
	*BaseHandler
	discoveryService services.DiscoveryService
	worker           *workers.DiscoveryWorker
}

func NewDiscoveryHandler(base *BaseHandler, discoveryService services.DiscoveryService, worker *workers.DiscoveryWorker) *DiscoveryHandler {
	return &DiscoveryHandler{
		BaseHandler:      base,
		discoveryService: discoveryService,
		worker:           worker,
	}
}

func (h *DiscoveryHandler) RegisterRoutes(r *gin.RouterGroup) {
	tenders := r.Group("/discovery")
	tenders.Use(middleware.AuthMiddleware())
	{
		tenders.GET("/tenders", h.ListTenders)
		tenders.GET("/tenders/:tenderId", h.GetTender)
		tenders.POST("/scan", h.TriggerScan)
		tenders.GET("/scan/status", h.ScanStatus)
	}

	// Модерация доступна менеджерам и админам
	moderation := r.Group("/discovery/tenders")
	moderation.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleManager, models.UserRoleAdmin))
	{
		moderation.POST("/:tenderId/approve", h.ApproveTender)
		moderation.POST("/:tenderId/reject", h.RejectTender)
		moderation.DELETE("/:tenderId", h.DeleteTender)
	}
}

// ListTenders godoc
// @Summary Список найденных тендеров арендатора
// @Tags discovery
// @Produce json
// @Param status query string false "Фильтр по статусу (PENDING, APPROVED, REJECTED, ARCHIVED)"
// @Success 200 {object} dto.TenderListResponse
// @Router /discovery/tenders [get]
func (h *DiscoveryHandler) ListTenders(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var query dto.TenderListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, pageSize := ParsePagination(c)

	tenders, err := h.discoveryService.ListTenders(h.GetDB(c), actor.TenantID, models.TenderStatus(query.Status), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tenders)
}

func (h *DiscoveryHandler) GetTender(c *gin.Context) {
	tenderID := c.Param("tenderId")

	tender, err := h.discoveryService.GetTender(h.GetDB(c), tenderID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tender)
}

// TriggerScan запускает фоновое сканирование порталов.
// Повторный запуск при идущем скане возвращает 409.
func (h *DiscoveryHandler) TriggerScan(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	if err := h.worker.Trigger(c.Request.Context(), actor.TenantID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Scan started"})
}

func (h *DiscoveryHandler) ScanStatus(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.worker.Status(actor.TenantID))
}

func (h *DiscoveryHandler) ApproveTender(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}
	tenderID := c.Param("tenderId")

	if err := h.discoveryService.ApproveTender(h.GetDB(c), tenderID, actor.UserID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tender approved"})
}

func (h *DiscoveryHandler) RejectTender(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}
	tenderID := c.Param("tenderId")

	if err := h.discoveryService.RejectTender(h.GetDB(c), tenderID, actor.UserID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tender rejected"})
}

func (h *DiscoveryHandler) DeleteTender(c *gin.Context) {
	if _, ok := h.GetActor(c); !ok {
		return
	}
	tenderID := c.Param("tenderId")

	if err := h.discoveryService.DeleteTender(h.GetDB(c), tenderID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tender deleted"})
}
