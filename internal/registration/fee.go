package registration

import (
	"time"

	"regdesk/internal/eventconfig"
	dErrors "regdesk/pkg/domain-errors"
)

// ComputeFee resolves the amount due for a category at a point in time. The
// base ticket price applies unless an offer window contains now; offers are
// evaluated in configured order and the first active match wins, never
// stacked. Percent offers are rounded half-up to the currency minor unit.
//
// Pure function: the same (category, snapshot, now) always yields the same
// amount. Callers freeze the result on the record at creation.
func ComputeFee(category string, snap eventconfig.Snapshot, now time.Time) (int64, error) {
	amount := snap.TicketPrice
	for _, offer := range snap.Offers {
		if !offer.Active(category, now) {
			continue
		}
		if offer.PercentOff > 0 {
			amount = roundHalfUp(snap.TicketPrice*(100-offer.PercentOff), 100)
		} else {
			amount = offer.Price
		}
		break
	}
	if amount <= 0 {
		// A free or negative ticket is a misconfiguration, never a discount.
		return 0, dErrors.New(dErrors.CodeConfiguration, "computed fee is not positive")
	}
	return amount, nil
}

// roundHalfUp divides numerator by denominator rounding half away from zero.
// Inputs are non-negative here; denominator is positive.
func roundHalfUp(numerator, denominator int64) int64 {
	return (numerator + denominator/2) / denominator
}
