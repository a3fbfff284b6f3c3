package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quincevale/cidery-api/internal/api/handler/v1/response"
	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/repository/dao"
)

type AuditService interface {
	Query(ctx context.Context, filter dao.AuditFilter) ([]domain.AuditLogEntry, error)
}

type AuditHandler struct {
	svc AuditService
}

func NewAuditHandler(svc AuditService) *AuditHandler {
	return &AuditHandler{
		svc: svc,
	}
}

// HandleQueryAudit godoc
// @Summary      Query the audit log
// @Tags         audit
// @Produce      json
// @Param        table    query      string false "filter by table name"
// @Param        record   query      string false "filter by record ID"
// @Param        actor    query      int    false "filter by actor user ID"
// @Param        since    query      string false "RFC 3339 lower bound"
// @Param        until    query      string false "RFC 3339 upper bound"
// @Param        limit    query      int    false "page size"
// @Param        offset   query      int    false "page offset"
// @Success      200      {array}    domain.AuditLogEntry
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /audit [get]
func (h *AuditHandler) HandleQueryAudit(ctx *gin.Context) {
	filter := dao.AuditFilter{
		TableName: ctx.Query("table"),
		RecordID:  ctx.Query("record"),
	}

	if raw := ctx.Query("actor"); raw != "" {
		actorID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("actor must be an integer")))
			return
		}
		filter.ActorID = uint(actorID)
	}

	if raw := ctx.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("since must be RFC 3339")))
			return
		}
		filter.Since = since
	}
	if raw := ctx.Query("until"); raw != "" {
		until, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("until must be RFC 3339")))
			return
		}
		filter.Until = until
	}

	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("limit must be a positive integer")))
		return
	}
	offset, err := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("offset must be a non-negative integer")))
		return
	}
	filter.Limit = limit
	filter.Offset = offset

	entries, err := h.svc.Query(ctx.Request.Context(), filter)
	if err != nil {
		err = fmt.Errorf("v1.HandleQueryAudit -> h.svc.Query -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, entries)
}
