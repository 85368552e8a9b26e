package boost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boost-swap/pkg/leg/atomic"
	"boost-swap/pkg/leg/dex"
	"boost-swap/pkg/swap"
)

func TestRegistryWithEngines(t *testing.T) {
	legOne := atomic.New(nil)
	legTwo := dex.New(nil, nil)

	table, err := Statuses(legOne, legTwo)
	require.NoError(t, err)

	// every override names a key of its base layer
	for key, o := range overrides {
		switch o.Base {
		case layerLegOne:
			assert.True(t, legOne.Statuses().Has(key), "atomic layer lacks %s", key)
		case layerLegTwo:
			assert.True(t, legTwo.Statuses().Has(key), "dex layer lacks %s", key)
		default:
			t.Errorf("override %s has unknown base %s", key, o.Base)
		}
	}

	// both layers are fully represented
	for key := range legOne.Statuses() {
		assert.True(t, table.Has(key), key)
	}
	for key := range legTwo.Statuses() {
		assert.True(t, table.Has(key), key)
	}

	s := boostSwap("FUNDED")
	assert.Equal(t, "Locking ETH", swap.RenderLabel(table["FUNDED"].Label, s))
	assert.Equal(t, "Claiming ETH", swap.RenderLabel(table["READY_TO_CLAIM"].Label, s))
	assert.Equal(t, "Claiming ETH", swap.RenderLabel(table["WAITING_FOR_CLAIM_CONFIRMATIONS"].Label, s))
	assert.Equal(t, "Swapping ETH for DAI", swap.RenderLabel(table["APPROVE_CONFIRMED"].Label, s))
	assert.Equal(t, "Swapping ETH for DAI", swap.RenderLabel(table["WAITING_FOR_SWAP_CONFIRMATIONS"].Label, s))

	assert.Equal(t, 3, table["APPROVE_CONFIRMED"].Step)
	assert.Equal(t, 3, table["WAITING_FOR_SWAP_CONFIRMATIONS"].Step)
	assert.Equal(t, 4, table["SUCCESS"].Step)
	assert.Equal(t, "Completed", table["SUCCESS"].Label)
	assert.True(t, table.IsTerminal("SUCCESS"))
	assert.Equal(t, swap.FilterCompleted, table["SUCCESS"].FilterStatus)

	assert.Equal(t, legTwo.Statuses()["FAILED"].Label, table["FAILED"].Label)
	assert.Equal(t, 4, table["FAILED"].Step)
	assert.True(t, table["FAILED"].Failed)
	assert.True(t, table.IsTerminal("REFUNDED"))

	notification := table["CONFIRM_COUNTER_PARTY_INITIATION"].Notification(s)
	assert.Equal(t, "Counterparty sent 3 ETH to escrow", notification.Message)

	for _, key := range table.Keys() {
		assert.Less(t, table[key].Step, TotalSteps, key)
	}
}

func TestRegistryStepsNeverGoBackAcrossHandoff(t *testing.T) {
	p, err := New(atomic.New(nil), dex.New(nil, nil))
	require.NoError(t, err)
	table := p.Statuses()

	handoff := table[swap.StatusWaitingForClaimConfirmations].Step
	for _, key := range []string{"APPROVE_CONFIRMED", "WAITING_FOR_SWAP_CONFIRMATIONS", "SUCCESS", "FAILED"} {
		assert.Greater(t, table[key].Step, handoff, key)
	}

	// a failed DEX leg ends past the step it failed from
	swapStep := table["WAITING_FOR_SWAP_CONFIRMATIONS"].Step
	assert.Greater(t, table["FAILED"].Step, swapStep)
	assert.Equal(t, table["SUCCESS"].Step, table["FAILED"].Step)
}

func TestTxTypesMerge(t *testing.T) {
	types := TxTypes(atomic.New(nil), dex.New(nil, nil))
	assert.Equal(t, swap.TxTypes{
		"SWAP_INITIATION": swap.TxSwapInitiation,
		"SWAP_CLAIM":      swap.TxSwapClaim,
		"SWAP":            swap.TxSwap,
	}, types)
}
