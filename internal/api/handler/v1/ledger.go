package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/quincevale/cidery-api/internal/api/handler/v1/request"
	"github.com/quincevale/cidery-api/internal/api/handler/v1/response"
	"github.com/quincevale/cidery-api/internal/api/middleware"
	"github.com/quincevale/cidery-api/internal/domain"
	"github.com/quincevale/cidery-api/internal/service"
	"github.com/quincevale/cidery-api/internal/unit"
)

type LedgerService interface {
	Assign(ctx context.Context, batchID, vesselID uint, volume domain.Quantity, reason string, actorID uint) (domain.TransactionEntry, error)
	Fill(ctx context.Context, batchID, vesselID uint, volume domain.Quantity, reason string, actorID uint) (domain.TransactionEntry, error)
	Transfer(ctx context.Context, batchID, fromVesselID, toVesselID uint, volume domain.Quantity, reason string, actorID uint) ([]domain.TransactionEntry, error)
	Adjust(ctx context.Context, batchID uint, vesselID *uint, measured domain.Quantity, reason string, actorID uint) (domain.TransactionEntry, []domain.Warning, error)
	SendToDistillery(ctx context.Context, batchID uint, volume domain.Quantity, actorID uint) (domain.TransactionEntry, error)
	ReceiveFromDistillery(ctx context.Context, name string, volume domain.Quantity, sourceBatchID, vesselID, actorID uint) (domain.Batch, domain.TransactionEntry, error)
	Package(ctx context.Context, batchID uint, volume domain.Quantity, unitCount int, format string, actorID uint) (domain.PackagingRun, domain.TransactionEntry, error)
	History(ctx context.Context, batchID uint, limit, offset int) ([]domain.TransactionEntry, error)
}

type LedgerHandler struct {
	svc LedgerService
}

func NewLedgerHandler(svc LedgerService) *LedgerHandler {
	return &LedgerHandler{
		svc: svc,
	}
}

// renderLedgerErr maps the ledger sentinel taxonomy onto HTTP statuses.
// Invariant violations go out as 500 so they page rather than blend into
// ordinary client errors.
func renderLedgerErr(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrBatchNotFound):
		response.RenderErr(ctx, response.ErrNotFound(service.ErrBatchNotFound))
	case errors.Is(err, service.ErrVesselNotFound):
		response.RenderErr(ctx, response.ErrNotFound(service.ErrVesselNotFound))
	case errors.Is(err, service.ErrBatchNotInVessel):
		response.RenderErr(ctx, response.ErrNotFound(service.ErrBatchNotInVessel))
	case errors.Is(err, service.ErrVesselOccupied):
		response.RenderErr(ctx, response.ErrConflict(service.ErrVesselOccupied))
	case errors.Is(err, service.ErrConcurrentModification):
		response.RenderErr(ctx, response.ErrConflict(service.ErrConcurrentModification))
	case errors.Is(err, service.ErrVesselRetired):
		response.RenderErr(ctx, response.ErrUnprocessable(service.ErrVesselRetired))
	case errors.Is(err, service.ErrCapacityExceeded):
		response.RenderErr(ctx, response.ErrUnprocessable(service.ErrCapacityExceeded))
	case errors.Is(err, service.ErrInsufficientVolume):
		response.RenderErr(ctx, response.ErrUnprocessable(service.ErrInsufficientVolume))
	case errors.Is(err, service.ErrAmbiguousOccupancy):
		response.RenderErr(ctx, response.ErrUnprocessable(service.ErrAmbiguousOccupancy))
	case errors.Is(err, service.ErrNoAdjustment):
		response.RenderErr(ctx, response.ErrUnprocessable(service.ErrNoAdjustment))
	case errors.Is(err, service.ErrAdjustmentDirection):
		response.RenderErr(ctx, response.ErrUnprocessable(service.ErrAdjustmentDirection))
	case errors.Is(err, service.ErrLedgerInvariant):
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> ledger invariant violated -> %w", op, err)))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
	}
}

func parseVolume(amount decimal.Decimal, unitName string) (domain.Quantity, error) {
	q, err := domain.NewQuantity(amount, unit.Unit(unitName))
	if err != nil {
		return domain.Quantity{}, err
	}
	if !q.Unit.IsVolume() {
		return domain.Quantity{}, fmt.Errorf("%w: %s is not a volume unit", unit.ErrIncompatibleUnits, unitName)
	}

	return q, nil
}

// HandleAssign godoc
// @Summary      Assign a batch to a vessel and record its opening volume
// @Tags         ledger
// @Produce      json
// @Param        request  body       request.AssignRequest true "request body"
// @Success      201      {object}   domain.TransactionEntry
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      422      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /ledger/assign [post]
func (h *LedgerHandler) HandleAssign(ctx *gin.Context) {
	var req request.AssignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	volume, err := domain.NewVolumeWithABV(req.Amount, unit.Unit(req.Unit), req.ABV)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	entry, err := h.svc.Assign(ctx.Request.Context(), req.BatchID, req.VesselID, volume, req.Reason, middleware.ActorID(ctx))
	if err != nil {
		renderLedgerErr(ctx, "v1.HandleAssign -> h.svc.Assign", err)
		return
	}

	ctx.JSON(http.StatusCreated, entry)
}

// HandleFill godoc
// @Summary      Record volume entering a vessel from outside the ledger
// @Tags         ledger
// @Produce      json
// @Param        request  body       request.FillRequest true "request body"
// @Success      201      {object}   domain.TransactionEntry
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      422      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /ledger/fill [post]
func (h *LedgerHandler) HandleFill(ctx *gin.Context) {
	var req request.FillRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	volume, err := domain.NewVolumeWithABV(req.Amount, unit.Unit(req.Unit), req.ABV)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	entry, err := h.svc.Fill(ctx.Request.Context(), req.BatchID, req.VesselID, volume, req.Reason, middleware.ActorID(ctx))
	if err != nil {
		renderLedgerErr(ctx, "v1.HandleFill -> h.svc.Fill", err)
		return
	}

	ctx.JSON(http.StatusCreated, entry)
}

// HandleTransfer godoc
// @Summary      Move volume between two vessels as one atomic entry pair
// @Tags         ledger
// @Produce      json
// @Param        request  body       request.TransferRequest true "request body"
// @Success      201      {array}    domain.TransactionEntry
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      422      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /ledger/transfer [post]
func (h *LedgerHandler) HandleTransfer(ctx *gin.Context) {
	var req request.TransferRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	volume, err := parseVolume(req.Amount, req.Unit)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	entries, err := h.svc.Transfer(ctx.Request.Context(), req.BatchID, req.FromVesselID, req.ToVesselID, volume, req.Reason, middleware.ActorID(ctx))
	if err != nil {
		renderLedgerErr(ctx, "v1.HandleTransfer -> h.svc.Transfer", err)
		return
	}

	ctx.JSON(http.StatusCreated, entries)
}

// HandleAdjust godoc
// @Summary      Reconcile a batch's ledger volume against a physical measurement
// @Tags         ledger
// @Produce      json
// @Param        request  body       request.AdjustRequest true "request body"
// @Success      201      {object}   response.AdjustmentResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      422      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /ledger/adjust [post]
func (h *LedgerHandler) HandleAdjust(ctx *gin.Context) {
	var req request.AdjustRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	measured, err := parseVolume(req.Measured, req.Unit)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	entry, warnings, err := h.svc.Adjust(ctx.Request.Context(), req.BatchID, req.VesselID, measured, req.Reason, middleware.ActorID(ctx))
	if err != nil {
		renderLedgerErr(ctx, "v1.HandleAdjust -> h.svc.Adjust", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.AdjustmentResponse{
		Entry:    entry,
		Warnings: warnings,
	})
}

// HandleHistory godoc
// @Summary      Get a batch's transaction history, newest first
// @Tags         ledger
// @Produce      json
// @Param        batchID  path       int true "batch ID"
// @Param        limit    query      int false "page size"
// @Param        offset   query      int false "page offset"
// @Success      200      {array}    domain.TransactionEntry
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /batches/{batchID}/entries [get]
func (h *LedgerHandler) HandleHistory(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "batchID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
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

	entries, err := h.svc.History(ctx.Request.Context(), id, limit, offset)
	if err != nil {
		renderLedgerErr(ctx, "v1.HandleHistory -> h.svc.History", err)
		return
	}

	ctx.JSON(http.StatusOK, entries)
}

// HandleDistillerySend godoc
// @Summary      Send batch volume out to a distillery
// @Tags         ledger
// @Produce      json
// @Param        batchID  path       int true "batch ID"
// @Param        request  body       request.DistillerySendRequest true "request body"
// @Success      201      {object}   domain.TransactionEntry
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      422      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /batches/{batchID}/distillery-send [post]
func (h *LedgerHandler) HandleDistillerySend(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "batchID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.DistillerySendRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	volume, err := parseVolume(req.Amount, req.Unit)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	entry, err := h.svc.SendToDistillery(ctx.Request.Context(), id, volume, middleware.ActorID(ctx))
	if err != nil {
		renderLedgerErr(ctx, "v1.HandleDistillerySend -> h.svc.SendToDistillery", err)
		return
	}

	ctx.JSON(http.StatusCreated, entry)
}

// HandleDistilleryReceive godoc
// @Summary      Receive distilled spirit back as a new batch
// @Tags         ledger
// @Produce      json
// @Param        request  body       request.DistilleryReceiveRequest true "request body"
// @Success      201      {object}   response.ReceiveResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      422      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /distillery-receipts [post]
func (h *LedgerHandler) HandleDistilleryReceive(ctx *gin.Context) {
	var req request.DistilleryReceiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	volume, err := domain.NewVolumeWithABV(req.Amount, unit.Unit(req.Unit), req.ABV)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	batch, entry, err := h.svc.ReceiveFromDistillery(ctx.Request.Context(), req.Name, volume, req.SourceBatchID, req.VesselID, middleware.ActorID(ctx))
	if err != nil {
		renderLedgerErr(ctx, "v1.HandleDistilleryReceive -> h.svc.ReceiveFromDistillery", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.ReceiveResponse{
		Batch: batch,
		Entry: entry,
	})
}

// HandlePackage godoc
// @Summary      Package batch volume into bottles or kegs
// @Tags         ledger
// @Produce      json
// @Param        batchID  path       int true "batch ID"
// @Param        request  body       request.PackageRequest true "request body"
// @Success      201      {object}   response.PackagingResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      422      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /batches/{batchID}/packaging-runs [post]
func (h *LedgerHandler) HandlePackage(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "batchID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.PackageRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	volume, err := parseVolume(req.Amount, req.Unit)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	run, entry, err := h.svc.Package(ctx.Request.Context(), id, volume, req.UnitCount, req.Format, middleware.ActorID(ctx))
	if err != nil {
		renderLedgerErr(ctx, "v1.HandlePackage -> h.svc.Package", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.PackagingResponse{
		Run:   run,
		Entry: entry,
	})
}
