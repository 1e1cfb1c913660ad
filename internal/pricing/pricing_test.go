package pricing

import (
	"testing"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotal_Table(t *testing.T) {
	cases := []struct {
		name         string
		subtotal     string
		deliveryType model.DeliveryType
		wantCharge   string
		wantTotal    string
	}{
		{"home below threshold", "900", model.DeliveryTypeHome, "50", "950"},
		{"home at threshold", "1000", model.DeliveryTypeHome, "0", "1000"},
		{"home above threshold", "1350", model.DeliveryTypeHome, "0", "1350"},
		{"home just below", "999.99", model.DeliveryTypeHome, "50", "1049.99"},
		{"pickup small", "100", model.DeliveryTypePickup, "0", "100"},
		{"pickup zero", "0", model.DeliveryTypePickup, "0", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := ComputeTotal(dec(tc.subtotal), tc.deliveryType, DefaultRules())
			assert.True(t, q.DeliveryCharge.Equal(dec(tc.wantCharge)), "charge=%s", q.DeliveryCharge)
			assert.True(t, q.Total.Equal(dec(tc.wantTotal)), "total=%s", q.Total)
			assert.True(t, q.Discount.IsZero())
		})
	}
}

func TestComputeTotal_CustomRules(t *testing.T) {
	rules := Rules{FreeDeliveryThreshold: dec("500"), BaseDeliveryCharge: dec("30")}

	q := ComputeTotal(dec("499"), model.DeliveryTypeHome, rules)
	assert.True(t, q.Total.Equal(dec("529")))

	q = ComputeTotal(dec("500"), model.DeliveryTypeHome, rules)
	assert.True(t, q.DeliveryCharge.IsZero())
}

func TestComputeTotal_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		paise := rapid.Int64Range(0, 10_000_000).Draw(t, "subtotal-paise")
		subtotal := decimal.New(paise, -2)
		pickup := rapid.Bool().Draw(t, "pickup")

		dt := model.DeliveryTypeHome
		if pickup {
			dt = model.DeliveryTypePickup
		}
		q := ComputeTotal(subtotal, dt, DefaultRules())

		switch {
		case pickup:
			if !q.DeliveryCharge.IsZero() {
				t.Fatalf("pickup charge = %s", q.DeliveryCharge)
			}
		case subtotal.GreaterThanOrEqual(dec("1000")):
			if !q.DeliveryCharge.IsZero() {
				t.Fatalf("free delivery expected for %s, got %s", subtotal, q.DeliveryCharge)
			}
		default:
			if !q.DeliveryCharge.Equal(dec("50")) {
				t.Fatalf("charge 50 expected for %s, got %s", subtotal, q.DeliveryCharge)
			}
		}

		if !q.Total.Equal(q.Subtotal.Add(q.DeliveryCharge).Sub(q.Discount)) {
			t.Fatalf("total %s != subtotal %s + charge %s - discount %s", q.Total, q.Subtotal, q.DeliveryCharge, q.Discount)
		}
	})
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(95000), MinorUnits(dec("950")))
	assert.Equal(t, int64(104999), MinorUnits(dec("1049.99")))
	assert.Equal(t, int64(1001), MinorUnits(dec("10.005")))
	assert.Equal(t, int64(0), MinorUnits(decimal.Zero))
}
