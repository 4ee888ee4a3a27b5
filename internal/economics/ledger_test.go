package economics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/deliberate/internal/experiment"
)

func TestLedgerAccumulates(t *testing.T) {
	l := NewLedger()
	alice := experiment.ActorID("alice")

	assert.Equal(t, 0.0, l.Wealth(alice))

	first := l.Record(alice, 1, 2, "medium", 27000, 2.7)
	assert.InDelta(t, 2.7, first.CumulativeAfter, 1e-9)

	second := l.Record(alice, 2, 1, "low", 15000, 1.5)
	assert.InDelta(t, 4.2, second.CumulativeAfter, 1e-9)
	assert.InDelta(t, 4.2, l.Wealth(alice), 1e-9)

	// Other actors are independent.
	assert.Equal(t, 0.0, l.Wealth("bob"))
}

func TestLedgerWealthMatchesHistory(t *testing.T) {
	l := NewLedger()
	bob := experiment.ActorID("bob")

	payouts := []float64{1.2, 0, 3.1, 2.2}
	for i, p := range payouts {
		l.Record(bob, i+1, 1, "high", p*10000, p)
	}

	outs := l.Outcomes(bob)
	require.Len(t, outs, len(payouts))

	var sum float64
	for i, out := range outs {
		sum += out.Payout
		assert.InDelta(t, sum, out.CumulativeAfter, 1e-9, "outcome %d", i)
		assert.GreaterOrEqual(t, out.Payout, 0.0)
	}
	assert.InDelta(t, sum, l.Wealth(bob), 1e-9)
}

func TestLedgerCopies(t *testing.T) {
	l := NewLedger()
	l.Record("carol", 1, 0, "low", 12000, 1.2)

	outs := l.Outcomes("carol")
	outs[0].Payout = 999

	assert.InDelta(t, 1.2, l.Outcomes("carol")[0].Payout, 1e-9)

	all := l.All()
	require.Contains(t, all, experiment.ActorID("carol"))
	assert.Len(t, all["carol"], 1)
}
