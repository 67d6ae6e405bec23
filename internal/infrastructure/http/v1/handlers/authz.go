package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"gatehouse/internal/core/apperror"
	"gatehouse/internal/domain/authz"
	"gatehouse/internal/infrastructure/http/v1/dto"
)

// AuthzHandler exposes the decision API.
type AuthzHandler struct {
	*BaseHandler
	checker *authz.Checker
}

// NewAuthzHandler creates a new decision API handler.
func NewAuthzHandler(base *BaseHandler, checker *authz.Checker) *AuthzHandler {
	return &AuthzHandler{BaseHandler: base, checker: checker}
}

// Check evaluates one action for the authenticated user.
// POST /api/v1/authz/check
func (h *AuthzHandler) Check(c *gin.Context) {
	var req dto.CheckRequest
	if !h.BindJSON(c, &req) {
		return
	}

	action := authz.Action(req.Action)
	if !action.Known() {
		h.Error(c, apperror.NewValidation("unknown action").WithDetail("action", req.Action))
		return
	}

	ctx := c.Request.Context()
	dec, err := h.checker.Check(ctx, authz.IdentityFromContext(ctx), action, req.Entity.ToEntityContext())
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	c.JSON(http.StatusOK, dto.NewDecisionResponse(dec))
}

// CheckAll evaluates a logical AND over a set of actions.
// POST /api/v1/authz/check-all
func (h *AuthzHandler) CheckAll(c *gin.Context) {
	h.checkBatch(c, h.checker.CheckAll)
}

// CheckAny evaluates a logical OR over a set of actions.
// POST /api/v1/authz/check-any
func (h *AuthzHandler) CheckAny(c *gin.Context) {
	h.checkBatch(c, h.checker.CheckAny)
}

func (h *AuthzHandler) checkBatch(
	c *gin.Context,
	check func(ctx context.Context, identity *authz.Identity, actions []authz.Action) (authz.Decision, error),
) {
	var req dto.CheckBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	actions := make([]authz.Action, len(req.Actions))
	for i, raw := range req.Actions {
		action := authz.Action(raw)
		if !action.Known() {
			h.Error(c, apperror.NewValidation("unknown action").WithDetail("action", raw))
			return
		}
		actions[i] = action
	}

	ctx := c.Request.Context()
	dec, err := check(ctx, authz.IdentityFromContext(ctx), actions)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	c.JSON(http.StatusOK, dto.NewDecisionResponse(dec))
}

// Modules returns the feature modules visible to the authenticated user.
// GET /api/v1/authz/modules
func (h *AuthzHandler) Modules(c *gin.Context) {
	ctx := c.Request.Context()
	set, err := h.checker.Modules(ctx, authz.IdentityFromContext(ctx))
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	c.JSON(http.StatusOK, dto.NewModulesResponse(set))
}
