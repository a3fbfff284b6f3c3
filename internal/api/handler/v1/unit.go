package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/quincevale/cidery-api/internal/api/handler/v1/response"
	"github.com/quincevale/cidery-api/internal/unit"
)

type UnitHandler struct{}

func NewUnitHandler() *UnitHandler {
	return &UnitHandler{}
}

// HandleConvert godoc
// @Summary      Convert an amount between units of the same dimension
// @Tags         units
// @Produce      json
// @Param        amount   query      string true  "decimal amount"
// @Param        from     query      string true  "source unit"
// @Param        to       query      string true  "target unit"
// @Param        density  query      string false "density in kg/L for cross-dimension conversion"
// @Success      200      {object}   response.ConversionResponse
// @Failure      400      {object}   response.Err
// @Router       /units/convert [get]
func (h *UnitHandler) HandleConvert(ctx *gin.Context) {
	amount, err := decimal.NewFromString(ctx.Query("amount"))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("amount must be a decimal number")))
		return
	}

	from := unit.Unit(ctx.Query("from"))
	to := unit.Unit(ctx.Query("to"))

	var converted decimal.Decimal
	if raw := ctx.Query("density"); raw != "" {
		density, densityErr := decimal.NewFromString(raw)
		if densityErr != nil {
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("density must be a decimal number")))
			return
		}
		converted, err = unit.ConvertWithDensity(amount, from, to, density)
	} else {
		converted, err = unit.Convert(amount, from, to)
	}
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ctx.JSON(http.StatusOK, response.ConversionResponse{
		Amount: converted,
		Unit:   string(to),
	})
}
