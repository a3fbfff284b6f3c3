package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/quincevale/cidery-api/internal/api/handler/v1/request"
	"github.com/quincevale/cidery-api/internal/api/handler/v1/response"
	"github.com/quincevale/cidery-api/internal/domain"
)

type ReconciliationService interface {
	Reconcile(ctx context.Context, periodStart, periodEnd time.Time, reported map[domain.TaxClass]decimal.Decimal) ([]domain.ReconciliationSnapshot, []domain.Warning, error)
	Snapshots(ctx context.Context, taxClass domain.TaxClass) ([]domain.ReconciliationSnapshot, error)
}

type ReconciliationHandler struct {
	svc ReconciliationService
}

func NewReconciliationHandler(svc ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{
		svc: svc,
	}
}

// HandleReconcile godoc
// @Summary      Reconcile ledger volumes against reported closing balances
// @Tags         reconciliation
// @Produce      json
// @Param        request  body       request.ReconcileRequest true "request body"
// @Success      201      {object}   response.ReconciliationResponse
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /reconciliations [post]
func (h *ReconciliationHandler) HandleReconcile(ctx *gin.Context) {
	var req request.ReconcileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	reported := make(map[domain.TaxClass]decimal.Decimal, len(req.Reported))
	for class, liters := range req.Reported {
		reported[domain.TaxClass(class)] = liters
	}

	snapshots, warnings, err := h.svc.Reconcile(ctx.Request.Context(), req.PeriodStart, req.PeriodEnd, reported)
	if err != nil {
		err = fmt.Errorf("v1.HandleReconcile -> h.svc.Reconcile -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.ReconciliationResponse{
		Snapshots: snapshots,
		Warnings:  warnings,
	})
}

// HandleListSnapshots godoc
// @Summary      List stored reconciliation snapshots
// @Tags         reconciliation
// @Produce      json
// @Param        class    query      string false "filter by tax class"
// @Success      200      {array}    domain.ReconciliationSnapshot
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /reconciliations [get]
func (h *ReconciliationHandler) HandleListSnapshots(ctx *gin.Context) {
	class := ctx.Query("class")
	switch class {
	case "", string(domain.TaxClassCider), string(domain.TaxClassWine), string(domain.TaxClassSpirits):
	default:
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("unknown tax class: "+class)))
		return
	}

	snapshots, err := h.svc.Snapshots(ctx.Request.Context(), domain.TaxClass(class))
	if err != nil {
		err = fmt.Errorf("v1.HandleListSnapshots -> h.svc.Snapshots -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, snapshots)
}
