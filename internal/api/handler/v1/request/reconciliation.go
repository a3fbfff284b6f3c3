package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

var errNoReportedBalances = errors.New("at least one reported class balance is required")

// ReconcileRequest reports external closing balances in liters, keyed by tax
// class.
type ReconcileRequest struct {
	PeriodStart time.Time                  `json:"period_start"`
	PeriodEnd   time.Time                  `json:"period_end"`
	Reported    map[string]decimal.Decimal `json:"reported"`
}

func (req *ReconcileRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.PeriodStart, validation.Required),
		validation.Field(&req.PeriodEnd, validation.Required),
	)
	if err != nil {
		return err
	}

	if !req.PeriodEnd.After(req.PeriodStart) {
		return errors.New("period_end must be after period_start")
	}
	if len(req.Reported) == 0 {
		return errNoReportedBalances
	}
	for class, liters := range req.Reported {
		if class != "cider" && class != "wine" && class != "spirits" {
			return errors.New("unknown tax class: " + class)
		}
		if liters.IsNegative() {
			return errNonPositiveAmount
		}
	}

	return nil
}
