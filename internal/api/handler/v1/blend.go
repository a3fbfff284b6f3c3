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

type BlendService interface {
	Blend(ctx context.Context, op domain.BlendOperation, actorID uint) (domain.BlendResult, error)
	Preview(sources []domain.BlendSource) (domain.BlendResult, error)
}

type BlendHandler struct {
	svc BlendService
}

func NewBlendHandler(svc BlendService) *BlendHandler {
	return &BlendHandler{
		svc: svc,
	}
}

// HandleBlend godoc
// @Summary      Combine source batches into a new blended batch
// @Tags         blends
// @Produce      json
// @Param        request  body       request.BlendRequest true "request body"
// @Success      201      {object}   domain.BlendResult
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      422      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /blends [post]
func (h *BlendHandler) HandleBlend(ctx *gin.Context) {
	var req request.BlendRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	sources := make([]domain.BlendSource, len(req.Sources))
	for i, src := range req.Sources {
		liters, err := unit.Convert(src.Amount, unit.Unit(src.Unit), unit.Liter)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		sources[i] = domain.BlendSource{
			BatchID: src.BatchID,
			Volume:  liters,
		}
	}

	result, err := h.svc.Blend(ctx.Request.Context(), domain.BlendOperation{
		Sources:             sources,
		DestinationVesselID: req.DestinationVesselID,
		DestinationName:     req.DestinationName,
	}, middleware.ActorID(ctx))
	if err != nil {
		if errors.Is(err, service.ErrEmptyBlend) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		if errors.Is(err, service.ErrBatchNameExists) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrBatchNameExists))
			return
		}

		renderLedgerErr(ctx, "v1.HandleBlend -> h.svc.Blend", err)
		return
	}

	ctx.JSON(http.StatusCreated, result)
}

// HandleBlendPreview godoc
// @Summary      Compute blend totals and proportions without committing
// @Tags         blends
// @Produce      json
// @Param        request  body       request.BlendPreviewRequest true "request body"
// @Success      200      {object}   domain.BlendResult
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /blends/preview [post]
func (h *BlendHandler) HandleBlendPreview(ctx *gin.Context) {
	var req request.BlendPreviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	sources := make([]domain.BlendSource, len(req.Sources))
	for i, src := range req.Sources {
		liters, err := unit.Convert(src.Amount, unit.Unit(src.Unit), unit.Liter)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		sources[i] = domain.BlendSource{
			BatchID: src.BatchID,
			Volume:  liters,
			ABV:     src.ABV,
		}
	}

	result, err := h.svc.Preview(sources)
	if err != nil {
		if errors.Is(err, service.ErrEmptyBlend) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleBlendPreview -> h.svc.Preview -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}
