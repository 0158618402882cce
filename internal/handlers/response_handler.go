package handlers

import (
	"net/http"

	"bidpilot_backend/internal/middleware"
	"bidpilot_backend/internal/models"
	"bidpilot_backend/internal/services"
	"bidpilot_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ResponseHandler struct {
	*BaseHandler
	responseService services.ResponseService
	commentService  services.CommentService
}

func NewResponseHandler(base *BaseHandler, responseService services.ResponseService, commentService services.CommentService) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     base,
		responseService: responseService,
		commentService:  commentService,
	}
}

func (h *ResponseHandler) RegisterRoutes(r *gin.RouterGroup) {
	responses := r.Group("/responses")
	responses.Use(middleware.AuthMiddleware())
	{
		responses.GET("", h.ListResponses)
		responses.POST("/generate", h.Generate)
		responses.GET("/:responseId", h.GetResponse)
		responses.PUT("/:responseId", h.UpdateResponse)
		responses.POST("/:responseId/submit", h.Submit)
		responses.POST("/:responseId/approve", h.Approve)
		responses.POST("/:responseId/reject", h.Reject)
		responses.POST("/:responseId/regenerate", h.Regenerate)
		responses.DELETE("/:responseId", h.DeleteResponse)
		responses.GET("/:responseId/history", h.GetHistory)

		// Комментарии ревью
		responses.GET("/:responseId/comments", h.ListComments)
		responses.POST("/:responseId/comments", h.AddComment)
	}

	comments := r.Group("/comments")
	comments.Use(middleware.AuthMiddleware())
	{
		comments.POST("/:commentId/resolve", h.ResolveComment)
	}
}

// ListResponses godoc
// @Summary Отклики арендатора, по порядку создания
// @Tags responses
// @Produce json
// @Success 200 {object} dto.ResponseListResponse
// @Router /responses [get]
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var query dto.ResponseListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	// Фильтр по тендеру имеет приоритет над общим списком
	if tenderID := c.Query("tender_id"); tenderID != "" {
		responses, err := h.responseService.ListByTender(h.GetDB(c), tenderID)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"responses": responses, "total": len(responses)})
		return
	}

	page, pageSize := ParsePagination(c)

	responses, err := h.responseService.ListResponses(h.GetDB(c), actor.TenantID, models.ResponseStatus(query.Status), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses)
}

func (h *ResponseHandler) Generate(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.GenerateRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	responses, err := h.responseService.Generate(
		c.Request.Context(),
		h.GetDB(c),
		req.TenderID,
		models.GenerationMode(req.Mode),
		models.ResponseTone(req.Tone),
		actor,
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"responses": responses, "total": len(responses)})
}

func (h *ResponseHandler) GetResponse(c *gin.Context) {
	responseID := c.Param("responseId")

	response, err := h.responseService.GetResponse(h.GetDB(c), responseID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ResponseHandler) UpdateResponse(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}
	responseID := c.Param("responseId")

	var req dto.UpdateResponseRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.responseService.UpdateText(h.GetDB(c), responseID, req.Text, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ResponseHandler) Submit(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}
	responseID := c.Param("responseId")

	response, err := h.responseService.Submit(h.GetDB(c), responseID, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ResponseHandler) Approve(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}
	responseID := c.Param("responseId")

	response, err := h.responseService.Approve(h.GetDB(c), responseID, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ResponseHandler) Reject(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}
	responseID := c.Param("responseId")

	var req dto.RejectRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.responseService.Reject(h.GetDB(c), responseID, req.Reason, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ResponseHandler) Regenerate(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}
	responseID := c.Param("responseId")

	// Тело опционально: без него перегенерация идет с сохраненными mode/tone
	var req dto.RegenerateRequest
	if c.Request.ContentLength > 0 {
		if !h.BindAndValidate_JSON(c, &req) {
			return
		}
	}

	response, err := h.responseService.Regenerate(
		c.Request.Context(),
		h.GetDB(c),
		responseID,
		models.GenerationMode(req.Mode),
		models.ResponseTone(req.Tone),
		actor,
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ResponseHandler) DeleteResponse(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}
	responseID := c.Param("responseId")

	if err := h.responseService.DeleteResponse(h.GetDB(c), responseID, actor); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Response deleted"})
}

func (h *ResponseHandler) GetHistory(c *gin.Context) {
	responseID := c.Param("responseId")

	history, err := h.responseService.GetHistory(h.GetDB(c), responseID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// --- Comments ---

func (h *ResponseHandler) ListComments(c *gin.Context) {
	responseID := c.Param("responseId")

	comments, err := h.commentService.ListComments(h.GetDB(c), responseID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments, "total": len(comments)})
}

func (h *ResponseHandler) AddComment(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}
	responseID := c.Param("responseId")

	var req dto.AddCommentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	comment, err := h.commentService.AddComment(h.GetDB(c), responseID, actor.UserID, req.Text, req.ParentID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *ResponseHandler) ResolveComment(c *gin.Context) {
	if _, ok := h.GetActor(c); !ok {
		return
	}
	commentID := c.Param("commentId")

	if err := h.commentService.ResolveComment(h.GetDB(c), commentID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment resolved"})
}
