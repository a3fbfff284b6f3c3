package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quincevale/cidery-api/internal/api/handler/v1/request"
	"github.com/quincevale/cidery-api/internal/api/handler/v1/response"
	"github.com/quincevale/cidery-api/internal/api/middleware"
	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/service"
	"github.com/quincevale/cidery-api/internal/unit"
)

type BatchService interface {
	CreateBatch(ctx context.Context, batch domain.Batch, actorID uint) (domain.Batch, error)
	GetBatch(ctx context.Context, id uint) (domain.Batch, error)
	ListBatches(ctx context.Context) ([]domain.Batch, error)
	CreatePurchaseLot(ctx context.Context, lot domain.PurchaseLot, actorID uint) (domain.PurchaseLot, error)
	GetPurchaseLot(ctx context.Context, id uint) (domain.PurchaseLot, error)
}

type BatchVolumeService interface {
	CurrentVolume(ctx context.Context, batchID uint) (domain.Quantity, error)
	Occupancies(ctx context.Context, batchID uint) ([]domain.Occupancy, error)
}

type BatchHandler struct {
	svc       BatchService
	ledgerSvc BatchVolumeService
}

func NewBatchHandler(svc BatchService, ledgerSvc BatchVolumeService) *BatchHandler {
	return &BatchHandler{
		svc:       svc,
		ledgerSvc: ledgerSvc,
	}
}

// HandleCreateBatch godoc
// @Summary      Register a new batch with its composition sources
// @Tags         batches
// @Produce      json
// @Param        request  body       request.CreateBatchRequest true "request body"
// @Success      201      {object}   domain.Batch
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /batches [post]
func (h *BatchHandler) HandleCreateBatch(ctx *gin.Context) {
	var req request.CreateBatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	sources := make([]domain.SourceRef, len(req.Sources))
	for i, src := range req.Sources {
		sources[i] = domain.SourceRef{
			Kind:       domain.SourceKind(src.Kind),
			BatchID:    src.BatchID,
			LotID:      src.LotID,
			Proportion: src.Proportion,
		}
	}

	batch, err := h.svc.CreateBatch(ctx.Request.Context(), domain.Batch{
		Name:    req.Name,
		Sources: sources,
		CurrentVolume: domain.Quantity{
			Unit:   unit.Liter,
			ABV:    req.ABV,
			HasABV: true,
		},
	}, middleware.ActorID(ctx))
	if err != nil {
		if errors.Is(err, service.ErrBatchNameExists) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrBatchNameExists))
			return
		}

		err = fmt.Errorf("v1.HandleCreateBatch -> h.svc.CreateBatch -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, batch)
}

// HandleListBatches godoc
// @Summary      List all batches
// @Tags         batches
// @Produce      json
// @Success      200      {array}    domain.Batch
// @Failure      500      {object}   response.Err
// @Router       /batches [get]
func (h *BatchHandler) HandleListBatches(ctx *gin.Context) {
	batches, err := h.svc.ListBatches(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListBatches -> h.svc.ListBatches -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, batches)
}

// HandleGetBatch godoc
// @Summary      Get a batch
// @Tags         batches
// @Produce      json
// @Param        batchID  path       int true "batch ID"
// @Success      200      {object}   domain.Batch
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /batches/{batchID} [get]
func (h *BatchHandler) HandleGetBatch(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "batchID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	batch, err := h.svc.GetBatch(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBatchNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrBatchNotFound))
			return
		}

		err = fmt.Errorf("v1.HandleGetBatch -> h.svc.GetBatch -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, batch)
}

// HandleGetBatchVolume godoc
// @Summary      Get a batch's ledger-derived volume and vessel occupancies
// @Tags         batches
// @Produce      json
// @Param        batchID  path       int true "batch ID"
// @Success      200      {object}   response.BatchVolumeResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /batches/{batchID}/volume [get]
func (h *BatchHandler) HandleGetBatchVolume(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "batchID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	volume, err := h.ledgerSvc.CurrentVolume(ctx.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBatchNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrBatchNotFound))
		case errors.Is(err, service.ErrLedgerInvariant):
			err = fmt.Errorf("v1.HandleGetBatchVolume -> ledger invariant violated for batch %d -> %w", id, err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		default:
			err = fmt.Errorf("v1.HandleGetBatchVolume -> h.ledgerSvc.CurrentVolume -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	occupancies, err := h.ledgerSvc.Occupancies(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetBatchVolume -> h.ledgerSvc.Occupancies -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.BatchVolumeResponse{
		BatchID:     id,
		Volume:      volume,
		Occupancies: occupancies,
	})
}

// HandleCreatePurchaseLot godoc
// @Summary      Record a purchased lot of fruit or juice
// @Tags         batches
// @Produce      json
// @Param        request  body       request.CreatePurchaseLotRequest true "request body"
// @Success      201      {object}   domain.PurchaseLot
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /purchase-lots [post]
func (h *BatchHandler) HandleCreatePurchaseLot(ctx *gin.Context) {
	var req request.CreatePurchaseLotRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	quantity, err := domain.NewQuantity(req.Amount, unit.Unit(req.Unit))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	lot, err := h.svc.CreatePurchaseLot(ctx.Request.Context(), domain.PurchaseLot{
		Vendor:     req.Vendor,
		Variety:    req.Variety,
		Quantity:   quantity,
		ReceivedAt: req.ReceivedAt,
	}, middleware.ActorID(ctx))
	if err != nil {
		err = fmt.Errorf("v1.HandleCreatePurchaseLot -> h.svc.CreatePurchaseLot -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, lot)
}

// HandleGetPurchaseLot godoc
// @Summary      Get a purchase lot
// @Tags         batches
// @Produce      json
// @Param        lotID    path       int true "lot ID"
// @Success      200      {object}   domain.PurchaseLot
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /purchase-lots/{lotID} [get]
func (h *BatchHandler) HandleGetPurchaseLot(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "lotID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	lot, err := h.svc.GetPurchaseLot(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPurchaseLotNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrPurchaseLotNotFound))
			return
		}

		err = fmt.Errorf("v1.HandleGetPurchaseLot -> h.svc.GetPurchaseLot -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, lot)
}
