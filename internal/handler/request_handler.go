package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"procurement/internal/middleware"
	"procurement/internal/model"
	"procurement/internal/service"
	"procurement/pkg/apperr"
	"procurement/pkg/csvexport"
	"procurement/pkg/problem"
)

type RequestHandler struct {
	requestService service.RequestService
	auth           *middleware.Authenticator
}

func NewRequestHandler(requestService service.RequestService, auth *middleware.Authenticator) *RequestHandler {
	return &RequestHandler{requestService: requestService, auth: auth}
}

// RegisterRoutes binds the request endpoints to the router group.
func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests", h.auth.Require())
	{
		requests.POST("", h.auth.RequireRole(model.RoleUser), h.Create)
		requests.PATCH("/:refNo", h.auth.RequireRole(model.RoleCoordinator), h.Update)
		requests.GET("", h.auth.RequireRole(model.RoleUser, model.RoleCoordinator), h.GetAll)
		requests.GET("/download", h.auth.RequireRole(model.RoleUser, model.RoleCoordinator), h.Download)
		requests.DELETE("/:refNo", h.auth.RequireRole(model.RoleUser, model.RoleCoordinator), h.Delete)
	}

	// Kept to demonstrate API versioning; v2 has no implementation.
	v2 := router.Group("/api/v2/requests", h.auth.Require())
	{
		v2.GET("", h.auth.RequireRole(model.RoleUser, model.RoleCoordinator), h.GetAllV2)
	}
}

// Create handles POST /api/requests
// @Summary      Create a request revision
// @Description  Starts a new revision chain, or appends a revision when ref_no is supplied.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.NewRequestRequest  true  "New Request Payload"
// @Success      200      {object}  service.NewRequestResponse
// @Failure      400      {object}  problem.Details
// @Failure      403      {object}  problem.Details
// @Router       /api/requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var req service.NewRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		problem.AbortError(c, apperr.MissingMandatoryField.New("Unable to create request", http.StatusBadRequest))
		return
	}

	resp, err := h.requestService.Create(c.Request.Context(), middleware.Caller(c), req)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Update handles PATCH /api/requests/{refNo}
// @Summary      Update a request's status
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        refNo    path      string                        true  "Request RefNo"
// @Param        payload  body      service.UpdateRequestRequest  true  "Update Request Payload"
// @Success      200      {object}  service.UpdateRequestResponse
// @Failure      400      {object}  problem.Details
// @Router       /api/requests/{refNo} [patch]
func (h *RequestHandler) Update(c *gin.Context) {
	var req service.UpdateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		problem.AbortError(c, apperr.MissingMandatoryField.New("Unable to update the request", http.StatusBadRequest))
		return
	}

	resp, err := h.requestService.Update(c.Request.Context(), c.Param("refNo"), req)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAll handles GET /api/requests
// @Summary      List visible requests
// @Description  Current revisions only. Users see their own, Coordinators see all.
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  service.RequestsResponse
// @Failure      403  {object}  problem.Details
// @Router       /api/requests [get]
func (h *RequestHandler) GetAll(c *gin.Context) {
	resp, err := h.requestService.GetAll(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Download handles GET /api/requests/download
// @Summary      Download visible requests as CSV
// @Description  Same visible set as the listing, flattened to one row per detail line.
// @Tags         requests
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200  {string}  string
// @Failure      403  {object}  problem.Details
// @Router       /api/requests/download [get]
func (h *RequestHandler) Download(c *gin.Context) {
	rows, err := h.requestService.GetAllAsCsv(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="requests.csv"`)
	c.Status(http.StatusOK)
	if err := csvexport.WriteRequests(c.Writer, rows); err != nil {
		_ = c.Error(err)
	}
}

// GetAllV2 handles GET /api/v2/requests
// @Summary      List visible requests (v2)
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Failure      400  {object}  problem.Details
// @Router       /api/v2/requests [get]
func (h *RequestHandler) GetAllV2(c *gin.Context) {
	problem.AbortError(c, apperr.NotImplemented.New("Unable to get requests", http.StatusBadRequest))
}

// Delete handles DELETE /api/requests/{refNo}
// @Summary      Delete a request chain
// @Description  Purges every revision sharing the RefNo, details included.
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        refNo  path  string  true  "Request RefNo"
// @Success      200
// @Failure      403  {object}  problem.Details
// @Failure      404  {object}  problem.Details
// @Router       /api/requests/{refNo} [delete]
func (h *RequestHandler) Delete(c *gin.Context) {
	if err := h.requestService.Delete(c.Request.Context(), middleware.Caller(c), c.Param("refNo")); err != nil {
		problem.Abort(c, err)
		return
	}

	c.Status(http.StatusOK)
}
