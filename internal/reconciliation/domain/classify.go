package domain

import "github.com/shopspring/decimal"

// Thresholds are the classification knobs; see config.ReconciliationConfig
// for the runtime source and defaults.
type Thresholds struct {
	AbsoluteUnitFloor       decimal.Decimal
	PassVariancePercent     decimal.Decimal
	CriticalVariancePercent decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// Compare computes delta, variance percent and classification for one SKU.
// The absolute-unit floor keeps low-volume SKUs from being flagged on
// rounding noise, where a one-unit difference computes as a large percentage.
func Compare(erpQty, channelQty decimal.Decimal, t Thresholds) (delta, variancePercent decimal.Decimal, classification Classification) {
	delta = erpQty.Sub(channelQty)
	absDelta := delta.Abs()

	switch {
	case erpQty.GreaterThan(decimal.Zero):
		variancePercent = absDelta.Div(erpQty).Mul(oneHundred)
	case channelQty.GreaterThan(decimal.Zero):
		variancePercent = oneHundred
	default:
		variancePercent = decimal.Zero
	}

	// Order matters: the pass rules win over the critical rule.
	switch {
	case absDelta.LessThanOrEqual(t.AbsoluteUnitFloor) || variancePercent.LessThanOrEqual(t.PassVariancePercent):
		classification = ClassificationPass
	case variancePercent.GreaterThan(t.CriticalVariancePercent):
		classification = ClassificationCritical
	default:
		classification = ClassificationWarning
	}
	return delta, variancePercent, classification
}
