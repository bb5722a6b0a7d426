package screening

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mbd888/riskscreen/internal/signal"
	"github.com/mbd888/riskscreen/internal/transactions"
	"github.com/mbd888/riskscreen/internal/validation"
)

// Handler provides HTTP endpoints for running and reading screenings.
type Handler struct {
	svc *Service
}

// NewHandler creates a screening handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes sets up screening routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/screenings", h.ScreenSubject)
	r.POST("/screenings/transactions", h.ScreenTransactions)
	r.GET("/screenings", h.ListScreenings)
	r.GET("/screenings/:id", validation.ScreeningIDParamMiddleware(), h.GetScreening)
	r.GET("/sources", h.ListSources)
	r.GET("/rules", h.ListRules)
}

// SubjectRequest is the wire form of a screening subject.
type SubjectRequest struct {
	Kind          string `json:"kind" binding:"required"`
	Name          string `json:"name"`
	WalletAddress string `json:"walletAddress"`
}

func (r SubjectRequest) validate() validation.ValidationErrors {
	checks := []func() *validation.ValidationError{
		validation.Required("kind", r.Kind),
		validation.OneOf("kind", r.Kind,
			string(signal.KindIndividual), string(signal.KindEntity), string(signal.KindWallet)),
		validation.MaxLength("name", r.Name, 256),
	}
	if r.Kind == string(signal.KindWallet) {
		checks = append(checks,
			validation.Required("walletAddress", r.WalletAddress),
			validation.ValidChainAddress("walletAddress", r.WalletAddress),
		)
	} else {
		checks = append(checks, validation.Required("name", r.Name))
	}
	return validation.Validate(checks...)
}

func (r SubjectRequest) subject() signal.Subject {
	sub := signal.Subject{
		Kind: signal.SubjectKind(r.Kind),
		Name: validation.SanitizeString(r.Name, 256),
	}
	if sub.Kind == signal.KindWallet {
		sub.WalletAddress = validation.SanitizeAddress(r.WalletAddress)
	}
	return sub
}

// ScreenSubjectRequest for POST /screenings
type ScreenSubjectRequest struct {
	Subject SubjectRequest `json:"subject" binding:"required"`
	Sources []string       `json:"sources"`
}

// ScreenSubject handles POST /screenings
func (h *Handler) ScreenSubject(c *gin.Context) {
	var req ScreenSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}
	if errs := req.Subject.validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"details": errs,
		})
		return
	}

	rec, err := h.svc.ScreenSubject(c.Request.Context(), req.Subject.subject(), req.Sources)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "screening_failed",
			"message": "Failed to complete screening",
		})
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// ScreenTransactionsRequest for POST /screenings/transactions
type ScreenTransactionsRequest struct {
	Subject      SubjectRequest           `json:"subject" binding:"required"`
	Transactions []transactions.RawRecord `json:"transactions" binding:"required"`
	Categories   []string                 `json:"categories"`
}

// ScreenTransactions handles POST /screenings/transactions
func (h *Handler) ScreenTransactions(c *gin.Context) {
	var req ScreenTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}
	if errs := req.Subject.validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"details": errs,
		})
		return
	}
	if len(req.Transactions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "At least one transaction record is required",
		})
		return
	}

	rec, err := h.svc.ScreenTransactions(c.Request.Context(), req.Subject.subject(), req.Transactions, req.Categories)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "screening_failed",
			"message": "Failed to complete screening",
		})
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// GetScreening handles GET /screenings/:id
func (h *Handler) GetScreening(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Screening not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "get_failed",
			"message": "Failed to load screening",
		})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// ListScreenings handles GET /screenings?level=&sar=&limit=
func (h *Handler) ListScreenings(c *gin.Context) {
	filter := ListFilter{Level: c.Query("level")}

	if v := c.Query("sar"); v != "" {
		sar, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "sar must be a boolean",
			})
			return
		}
		filter.SARRequired = &sar
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 500 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "limit must be between 1 and 500",
			})
			return
		}
		filter.Limit = limit
	}

	recs, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "list_failed",
			"message": "Failed to list screenings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"screenings": recs, "count": len(recs)})
}

// ListSources handles GET /sources
func (h *Handler) ListSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sources": h.svc.Sources()})
}

// ListRules handles GET /rules
func (h *Handler) ListRules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rules": h.svc.Rules()})
}
