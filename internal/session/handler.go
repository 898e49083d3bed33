package session

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"orderconfig/internal/cart"
	"orderconfig/internal/catalog"
	"orderconfig/internal/configurator"
)

type Handler struct {
	manager *Manager
	// messageTTL is how long clients show a validation failure.
	messageTTL time.Duration
}

func NewHandler(manager *Manager, messageTTL time.Duration) *Handler {
	return &Handler{manager: manager, messageTTL: messageTTL}
}

func customerID(c *gin.Context) (string, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// --------------------------------------------------
// POST /sessions
// --------------------------------------------------
func (h *Handler) Open(c *gin.Context) {
	cid, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.CustomerID = cid

	s, err := h.manager.Open(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	view, err := h.manager.View(s.ID, cid)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// --------------------------------------------------
// GET /sessions/:id
// --------------------------------------------------
func (h *Handler) Get(c *gin.Context) {
	cid, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	view, err := h.manager.View(c.Param("id"), cid)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// --------------------------------------------------
// POST /sessions/:id/actions
// --------------------------------------------------
func (h *Handler) Apply(c *gin.Context) {
	cid, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var env configurator.ActionEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	action, err := env.Decode()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.manager.Apply(c.Param("id"), cid, action)
	if err != nil {
		h.failWithView(c, err, view)
		return
	}
	c.JSON(http.StatusOK, view)
}

// --------------------------------------------------
// POST /sessions/:id/save
// --------------------------------------------------
func (h *Handler) Save(c *gin.Context) {
	cid, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	view, err := h.manager.SaveAndAddAnother(c.Param("id"), cid)
	if err != nil {
		h.failWithView(c, err, view)
		return
	}
	c.JSON(http.StatusOK, view)
}

// --------------------------------------------------
// POST /sessions/:id/refresh
// --------------------------------------------------
func (h *Handler) Refresh(c *gin.Context) {
	cid, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	view, err := h.manager.Refresh(c.Request.Context(), c.Param("id"), cid)
	if err != nil {
		h.failWithView(c, err, view)
		return
	}
	c.JSON(http.StatusOK, view)
}

// --------------------------------------------------
// DELETE /sessions/:id/saved/:index
// --------------------------------------------------
func (h *Handler) RemoveSaved(c *gin.Context) {
	cid, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid saved order index"})
		return
	}

	view, err := h.manager.RemoveSaved(c.Param("id"), cid, index)
	if err != nil {
		h.failWithView(c, err, view)
		return
	}
	c.JSON(http.StatusOK, view)
}

// --------------------------------------------------
// POST /sessions/:id/clear
// --------------------------------------------------
func (h *Handler) Clear(c *gin.Context) {
	cid, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	view, err := h.manager.ClearAll(c.Param("id"), cid)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// --------------------------------------------------
// POST /sessions/:id/confirm
// --------------------------------------------------
func (h *Handler) Confirm(c *gin.Context) {
	cid, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	lines, err := h.manager.Confirm(c.Request.Context(), c.Param("id"), cid)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

// --------------------------------------------------
// DELETE /sessions/:id
// --------------------------------------------------
func (h *Handler) Close(c *gin.Context) {
	cid, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.manager.Close(c.Param("id"), cid); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --------------------------------------------------
// GET /cart
// --------------------------------------------------
func (h *Handler) Cart(c *gin.Context) {
	cid, ok := customerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	lines, err := h.manager.Cart(c.Request.Context(), cid)
	if err != nil {
		h.fail(c, err)
		return
	}
	if lines == nil {
		lines = []cart.LineItem{}
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

// --------------------------------------------------
// ERROR MAPPING
// --------------------------------------------------

func (h *Handler) failWithView(c *gin.Context, err error, view configurator.View) {
	status, body := h.errorBody(err)
	if view.SessionID != "" {
		body["session"] = view
	}
	c.JSON(status, body)
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, body := h.errorBody(err)
	c.JSON(status, body)
}

func (h *Handler) errorBody(err error) (int, gin.H) {
	var (
		validation *configurator.ValidationFailure
		loadFail   *CatalogLoadFailure
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, gin.H{
			"error":          validation.Reason,
			"code":           validation.Code,
			"required":       validation.Required,
			"message_ttl_ms": h.messageTTL.Milliseconds(),
		}
	case errors.As(err, &loadFail):
		return http.StatusServiceUnavailable, gin.H{"error": "menu item unavailable, try again", "retryable": loadFail.Retryable()}
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, catalog.ErrItemNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, configurator.ErrSavedNotFound):
		return http.StatusNotFound, gin.H{"error": err.Error()}
	case errors.Is(err, ErrItemMismatch):
		return http.StatusConflict, gin.H{"error": err.Error()}
	case isActionError(err):
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	default:
		return http.StatusInternalServerError, gin.H{"error": "internal error"}
	}
}

var actionErrors = []error{
	configurator.ErrUnknownVariant,
	configurator.ErrUnknownPricing,
	configurator.ErrOfferExpired,
	configurator.ErrUnknownSupplement,
	configurator.ErrUnknownIngredient,
	configurator.ErrUnknownOption,
	configurator.ErrSlotOutOfRange,
	configurator.ErrNotPack,
	configurator.ErrPackQuantity,
	configurator.ErrInvalidQuantity,
	configurator.ErrUnknownDrink,
	configurator.ErrDrinkNotEligible,
	configurator.ErrFreeDrinkLimit,
}

func isActionError(err error) bool {
	for _, target := range actionErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
