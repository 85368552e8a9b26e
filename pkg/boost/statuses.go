package boost

import (
	"fmt"

	"boost-swap/pkg/format"
	"boost-swap/pkg/swap"
)

const (
	layerLegOne = "atomic"
	layerLegTwo = "dex"
)

var overrides = map[string]swap.Override{
	"FUNDED": {Base: layerLegOne, Edit: relabel("Locking {bridgeAsset}")},
	"CONFIRM_COUNTER_PARTY_INITIATION": {Base: layerLegOne, Edit: func(d swap.StatusDescriptor) swap.StatusDescriptor {
		d.Label = "Locking {bridgeAsset}"
		d.Notification = func(s *swap.Swap) swap.Notification {
			return swap.Notification{
				Message: fmt.Sprintf("Counterparty sent %s %s to escrow", format.PrettyBalance(s.BridgeAssetAmount, s.BridgeAsset), s.BridgeAsset),
			}
		}
		return d
	}},
	"READY_TO_CLAIM":                  {Base: layerLegOne, Edit: relabel("Claiming {bridgeAsset}")},
	"WAITING_FOR_CLAIM_CONFIRMATIONS": {Base: layerLegOne, Edit: relabel("Claiming {bridgeAsset}")},
	"APPROVE_CONFIRMED":              {Base: layerLegTwo, Edit: swapping},
	"WAITING_FOR_SWAP_CONFIRMATIONS": {Base: layerLegTwo, Edit: swapping},
	"FAILED":                         {Base: layerLegTwo, Edit: restep(4)},
	"SUCCESS": {Base: layerLegOne, Edit: func(d swap.StatusDescriptor) swap.StatusDescriptor {
		d.Step = 4
		d.Label = "Completed"
		return d
	}},
}

func swapping(d swap.StatusDescriptor) swap.StatusDescriptor {
	d.Step = 3
	d.Label = "Swapping {bridgeAsset} for {to}"
	return d
}

func relabel(label string) func(swap.StatusDescriptor) swap.StatusDescriptor {
	return func(d swap.StatusDescriptor) swap.StatusDescriptor {
		d.Label = label
		return d
	}
}

func restep(step int) func(swap.StatusDescriptor) swap.StatusDescriptor {
	return func(d swap.StatusDescriptor) swap.StatusDescriptor {
		d.Step = step
		return d
	}
}

// Statuses merges the atomic leg's statuses, the DEX leg's statuses and the
// composite overrides, in that order
func Statuses(legOne, legTwo swap.Describer) (swap.StatusTable, error) {
	return swap.BuildRegistry([]swap.Layer{
		{Name: layerLegOne, Statuses: legOne.Statuses()},
		{Name: layerLegTwo, Statuses: legTwo.Statuses()},
	}, overrides)
}

// TxTypes merges both legs' transaction types
func TxTypes(legOne, legTwo swap.Describer) swap.TxTypes {
	merged := make(swap.TxTypes)
	for k, v := range legOne.TxTypes() {
		merged[k] = v
	}
	for k, v := range legTwo.TxTypes() {
		merged[k] = v
	}
	return merged
}
