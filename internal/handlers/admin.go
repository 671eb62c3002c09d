package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	dom "github.com/kiliiie/newport-bank-backend/internal/domain"
	"github.com/kiliiie/newport-bank-backend/internal/dto"
	"github.com/kiliiie/newport-bank-backend/internal/service"
)

// AdminHandler serves the admin-only approval endpoints.
type AdminHandler struct {
	accountSvc *service.AccountService
}

// NewAdminHandler returns a new AdminHandler.
func NewAdminHandler(accountSvc *service.AccountService) *AdminHandler {
	return &AdminHandler{accountSvc: accountSvc}
}

// Pending godoc
// @Summary      List accounts awaiting approval
// @Tags         admin
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.PendingAccountsResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /admin/pending [get]
func (h *AdminHandler) Pending(c *gin.Context) {
	list, err := h.accountSvc.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	items := make([]dto.AccountResponse, len(list))
	for i, a := range list {
		items[i] = accountToResponse(a)
	}
	c.JSON(http.StatusOK, dto.PendingAccountsResponse{Items: items})
}

// Approve godoc
// @Summary      Approve a pending account
// @Tags         admin
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  dto.AccountResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /admin/approve/{id} [post]
func (h *AdminHandler) Approve(c *gin.Context) {
	id := c.Param("id")
	a, err := h.accountSvc.Approve(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, dom.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, accountToResponse(a))
}

func accountToResponse(a dom.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Approved:  a.Approved,
		Role:      a.Role,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
	}
}
