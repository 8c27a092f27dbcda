package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/launchbase/accountd/internal/service"
)

// AdminHandler exposes the administrative record API over user rows. All
// routes are registered behind the admin key middleware.
type AdminHandler struct {
	Admin *service.AdminService
}

func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{Admin: admin}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	page, err := h.Admin.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		respondAuthError(c, err, "Listing failed")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.Admin.GetUser(c.Request.Context(), id)
	if err != nil {
		respondAuthError(c, err, "Lookup failed")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		IsActive *bool  `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Email and password required"})
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user, err := h.Admin.CreateUser(c.Request.Context(), req.Email, req.Password, isActive)
	if err != nil {
		respondAuthError(c, err, "Create failed")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var update service.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Invalid payload"})
		return
	}

	user, err := h.Admin.UpdateUser(c.Request.Context(), id, update)
	if err != nil {
		respondAuthError(c, err, "Update failed")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Admin.DeleteUser(c.Request.Context(), id); err != nil {
		respondAuthError(c, err, "Delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "msg": "User deleted"})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Invalid user id"})
		return 0, false
	}
	return id, true
}
