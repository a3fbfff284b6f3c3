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

type VesselService interface {
	CreateVessel(ctx context.Context, vessel domain.Vessel, actorID uint) (domain.Vessel, error)
	GetVessel(ctx context.Context, id uint) (domain.Vessel, error)
	ListVessels(ctx context.Context) ([]domain.Vessel, error)
	UpdateStatus(ctx context.Context, id uint, status domain.VesselStatus, actorID uint) (domain.Vessel, error)
}

type VesselOccupantService interface {
	Occupant(ctx context.Context, vesselID uint) (*uint, error)
}

type VesselHandler struct {
	svc       VesselService
	ledgerSvc VesselOccupantService
}

func NewVesselHandler(svc VesselService, ledgerSvc VesselOccupantService) *VesselHandler {
	return &VesselHandler{
		svc:       svc,
		ledgerSvc: ledgerSvc,
	}
}

// HandleCreateVessel godoc
// @Summary      Register a new vessel
// @Tags         vessels
// @Produce      json
// @Param        request   body      request.CreateVesselRequest true "request body"
// @Success      201      {object}   domain.Vessel
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /vessels [post]
func (h *VesselHandler) HandleCreateVessel(ctx *gin.Context) {
	var req request.CreateVesselRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	capacity, err := domain.NewQuantity(req.Capacity, unit.Unit(req.Unit))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if !capacity.Unit.IsVolume() {
		response.RenderErr(ctx, response.ErrBadRequest(unit.ErrIncompatibleUnits))
		return
	}

	vessel, err := h.svc.CreateVessel(ctx.Request.Context(), domain.Vessel{
		Name:     req.Name,
		Kind:     req.Kind,
		Capacity: capacity,
	}, middleware.ActorID(ctx))
	if err != nil {
		if errors.Is(err, service.ErrVesselNameExists) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrVesselNameExists))
			return
		}

		err = fmt.Errorf("v1.HandleCreateVessel -> h.svc.CreateVessel -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, vessel)
}

// HandleListVessels godoc
// @Summary      List all vessels
// @Tags         vessels
// @Produce      json
// @Success      200      {array}    domain.Vessel
// @Failure      500      {object}   response.Err
// @Router       /vessels [get]
func (h *VesselHandler) HandleListVessels(ctx *gin.Context) {
	vessels, err := h.svc.ListVessels(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListVessels -> h.svc.ListVessels -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, vessels)
}

// HandleGetVessel godoc
// @Summary      Get a vessel with its current occupant
// @Tags         vessels
// @Produce      json
// @Param        vesselID path       int true "vessel ID"
// @Success      200      {object}   response.VesselResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /vessels/{vesselID} [get]
func (h *VesselHandler) HandleGetVessel(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "vesselID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	vessel, err := h.svc.GetVessel(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrVesselNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrVesselNotFound))
			return
		}

		err = fmt.Errorf("v1.HandleGetVessel -> h.svc.GetVessel -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	batchID, err := h.ledgerSvc.Occupant(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetVessel -> h.ledgerSvc.Occupant -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.VesselResponse{
		Vessel:   vessel,
		BatchID:  batchID,
		Occupied: batchID != nil,
	})
}

// HandleUpdateVesselStatus godoc
// @Summary      Transition a vessel's lifecycle status
// @Tags         vessels
// @Produce      json
// @Param        vesselID path       int true "vessel ID"
// @Param        request  body       request.UpdateVesselStatusRequest true "request body"
// @Success      200      {object}   domain.Vessel
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /vessels/{vesselID}/status [put]
func (h *VesselHandler) HandleUpdateVesselStatus(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "vesselID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.UpdateVesselStatusRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	vessel, err := h.svc.UpdateStatus(ctx.Request.Context(), id, domain.VesselStatus(req.Status), middleware.ActorID(ctx))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVesselNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrVesselNotFound))
		case errors.Is(err, service.ErrInvalidStatusTransition):
			response.RenderErr(ctx, response.ErrUnprocessable(service.ErrInvalidStatusTransition))
		case errors.Is(err, service.ErrConcurrentModification):
			response.RenderErr(ctx, response.ErrConflict(service.ErrConcurrentModification))
		default:
			err = fmt.Errorf("v1.HandleUpdateVesselStatus -> h.svc.UpdateStatus -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, vessel)
}
