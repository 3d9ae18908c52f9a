package printer

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seamonger/procurement/internal/domain"
)

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	prevOut, prevErr, prevNoColor := Out, Err, color.NoColor
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	Out, Err, color.NoColor = out, errOut, true
	t.Cleanup(func() { Out, Err, color.NoColor = prevOut, prevErr, prevNoColor })
	return out, errOut
}

func TestError(t *testing.T) {
	t.Run("returns error with title only", func(t *testing.T) {
		_, errOut := capture(t)

		err := Error("Config invalid", "poll interval is not a number", "set POLL_INTERVAL_SECONDS to an integer")
		require.Error(t, err)
		assert.Equal(t, "Config invalid", err.Error())
		assert.Contains(t, errOut.String(), "poll interval is not a number")
		assert.Contains(t, errOut.String(), "- set POLL_INTERVAL_SECONDS")
	})

	t.Run("no hints", func(t *testing.T) {
		capture(t)
		require.EqualError(t, Error("Boom", ""), "Boom")
	})
}

func TestSuppliers(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		out, _ := capture(t)
		Suppliers([]domain.Supplier{{ID: "+6511111111", Specialty: "snapper", TrustScore: 0.95}})

		assert.Contains(t, out.String(), "SUPPLIER")
		assert.Contains(t, out.String(), "+6511111111")
		assert.Contains(t, out.String(), "0.95")
	})

	t.Run("empty", func(t *testing.T) {
		out, _ := capture(t)
		Suppliers(nil)
		assert.Contains(t, out.String(), "no suppliers registered")
	})
}

func TestSignal(t *testing.T) {
	out, _ := capture(t)
	product, qty := "bawal", 12.5
	Signal(domain.StockSignal{Product: &product, QuantityKg: &qty, Confidence: 1})

	assert.Contains(t, out.String(), "product:    bawal")
	assert.Contains(t, out.String(), "quantity:   12.5 kg")
	assert.Contains(t, out.String(), "confidence: 1.00")
}

func TestSignal_Empty(t *testing.T) {
	out, _ := capture(t)
	Signal(domain.StockSignal{Confidence: 0.1})

	assert.Contains(t, out.String(), "product:    -")
	assert.Contains(t, out.String(), "quantity:   -")
}

func TestPollResult(t *testing.T) {
	out, _ := capture(t)
	PollResult(domain.PollResult{Orders: 2, MessagesSent: 1})
	assert.Contains(t, out.String(), "2 order(s) processed, 1 message(s) sent")
}

func TestProducts(t *testing.T) {
	out, _ := capture(t)
	Products([]string{"bawal", "ikan"})
	assert.Equal(t, "bawal\nikan\n", out.String())
}
