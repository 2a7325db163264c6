package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func defaultThresholds() Thresholds {
	return Thresholds{
		AbsoluteUnitFloor:       decimal.NewFromInt(1),
		PassVariancePercent:     decimal.NewFromFloat(0.5),
		CriticalVariancePercent: decimal.NewFromInt(3),
	}
}

func TestCompareClassification(t *testing.T) {
	cases := []struct {
		name    string
		erp     string
		channel string
		want    Classification
	}{
		{"exact match", "100", "100", ClassificationPass},
		{"one unit off passes on floor", "100", "99", ClassificationPass},
		{"one unit surplus passes on floor", "100", "101", ClassificationPass},
		{"small percent passes", "1000", "996", ClassificationPass},
		{"between thresholds is warning", "100", "97.5", ClassificationWarning},
		{"just over critical", "100", "95", ClassificationCritical},
		{"exactly critical stays warning", "100", "97", ClassificationWarning},
		{"low volume one unit passes", "2", "1", ClassificationPass},
		{"low volume two units critical", "4", "2", ClassificationCritical},
		{"zero both sides", "0", "0", ClassificationPass},
		{"erp zero channel positive", "0", "50", ClassificationCritical},
		{"erp zero channel one unit", "0", "1", ClassificationPass},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, got := Compare(
				decimal.RequireFromString(tc.erp),
				decimal.RequireFromString(tc.channel),
				defaultThresholds(),
			)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestCompareDeltaAndVariance(t *testing.T) {
	delta, variance, _ := Compare(
		decimal.RequireFromString("200"),
		decimal.RequireFromString("190"),
		defaultThresholds(),
	)
	require.True(t, delta.Equal(decimal.RequireFromString("10")))
	require.True(t, variance.Equal(decimal.RequireFromString("5")))

	delta, variance, _ = Compare(
		decimal.RequireFromString("190"),
		decimal.RequireFromString("200"),
		defaultThresholds(),
	)
	require.True(t, delta.Equal(decimal.RequireFromString("-10")))
	require.True(t, variance.GreaterThan(decimal.RequireFromString("5.2")))

	_, variance, _ = Compare(decimal.Zero, decimal.RequireFromString("7"), defaultThresholds())
	require.True(t, variance.Equal(decimal.RequireFromString("100")))
}
