package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"procurement/internal/middleware"
	"procurement/internal/model"
	"procurement/internal/service"
	"procurement/pkg/apperr"
	"procurement/pkg/problem"
)

type UserHandler struct {
	userService service.UserService
	auth        *middleware.Authenticator
}

func NewUserHandler(userService service.UserService, auth *middleware.Authenticator) *UserHandler {
	return &UserHandler{userService: userService, auth: auth}
}

// RegisterRoutes binds the user endpoints to the router group.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/api/users")
	{
		users.POST("", h.auth.Optional(), h.Create)
		users.GET("/:email", h.auth.Require(), h.auth.RequireRole(model.RoleUser, model.RoleCoordinator, model.RoleAdmin), h.Get)
		users.GET("", h.auth.Require(), h.auth.RequireRole(model.RoleAdmin), h.GetAll)
		users.PATCH("/:email", h.auth.Require(), h.auth.RequireRole(model.RoleUser, model.RoleCoordinator, model.RoleAdmin), h.Update)
		users.DELETE("/:email", h.auth.Require(), h.auth.RequireRole(model.RoleAdmin), h.Delete)
	}
}

// Create handles POST /api/users
// @Summary      Create a user
// @Description  Registers a new account. Anonymous self-registration requires a bot verification payload.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body      service.NewUserRequest  true  "New User Payload"
// @Success      200      {object}  service.UserResponse
// @Failure      400      {object}  problem.Details
// @Router       /api/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req service.NewUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		problem.AbortError(c, apperr.MissingMandatoryField.New("Unable to create user", http.StatusBadRequest))
		return
	}

	user, err := h.userService.Create(c.Request.Context(), middleware.Caller(c), req)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Get handles GET /api/users/{email}
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "User email"
// @Success      200    {object}  service.UserResponse
// @Failure      403    {object}  problem.Details
// @Failure      404    {object}  problem.Details
// @Router       /api/users/{email} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), middleware.Caller(c), c.Param("email"))
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetAll handles GET /api/users
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  service.UsersResponse
// @Failure      403  {object}  problem.Details
// @Router       /api/users [get]
func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.userService.GetAll(c.Request.Context())
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// Update handles PATCH /api/users/{email}
// @Summary      Update a user
// @Description  Partial update. Role, status and email changes require an Admin.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        email    path      string                     true  "User email"
// @Param        payload  body      service.UpdateUserRequest  true  "Update User Payload"
// @Success      200      {object}  service.UserResponse
// @Failure      400      {object}  problem.Details
// @Failure      403      {object}  problem.Details
// @Failure      404      {object}  problem.Details
// @Router       /api/users/{email} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		problem.AbortError(c, apperr.MissingMandatoryField.New("Unable to update the user", http.StatusBadRequest))
		return
	}

	user, err := h.userService.Update(c.Request.Context(), middleware.Caller(c), c.Param("email"), req)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /api/users/{email}
// @Summary      Delete a user
// @Description  Removes the user and every request revision she owns.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email  path  string  true  "User email"
// @Success      200
// @Failure      404  {object}  problem.Details
// @Router       /api/users/{email} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("email")); err != nil {
		problem.Abort(c, err)
		return
	}

	c.Status(http.StatusOK)
}
