package boost

import (
	"context"

	"boost-swap/pkg/log"
	"boost-swap/pkg/poll"
	"boost-swap/pkg/swap"
)

// PerformNextSwapAction advances the composite swap by one step. While the
// atomic leg owns the status it alone is driven; once its claim confirms the
// swap is handed to the DEX leg at APPROVE_CONFIRMED. A nil update means
// nothing changed.
//
// Leg errors are returned as is.
func (p *Provider) PerformNextSwapAction(ctx context.Context, store swap.Store, network swap.Network, walletID string, s *swap.Swap) (*swap.Update, error) {
	if p.statuses.IsTerminal(s.Status) {
		return nil, nil
	}

	legOneSwap := swap.ToLegOne(s, SlippageBps)
	legTwoSwap := swap.ToLegTwo(s, SlippageBps)

	var (
		updates *swap.Update
		err     error
	)
	if s.Status == swap.StatusWaitingForClaimConfirmations {
		updates, err = poll.WithInterval(ctx, p.handoff, func(ctx context.Context) (*swap.Update, error) {
			return p.finalizeLegOneAndStartLegTwo(ctx, legOneSwap, network, walletID)
		})
		if err == nil && updates == nil {
			log.Warn("claim not confirmed yet, handoff postponed", "swap", s.ID, "bridge_asset", s.BridgeAsset)
		}
	} else {
		updates, err = p.legOne.PerformNextSwapAction(ctx, store, network, walletID, legOneSwap)
		updates = swap.FromLegOne(updates)
	}
	if err != nil {
		return nil, err
	}

	if updates == nil && !p.ownedByLegOne(s.Status) {
		updates, err = p.legTwo.PerformNextSwapAction(ctx, store, network, walletID, legTwoSwap)
		if err != nil {
			return nil, err
		}
	}

	return updates, nil
}

func (p *Provider) finalizeLegOneAndStartLegTwo(ctx context.Context, legOneSwap *swap.Swap, network swap.Network, walletID string) (*swap.Update, error) {
	result, err := p.legOne.WaitForClaimConfirmations(ctx, legOneSwap, network, walletID)
	if err != nil {
		return nil, err
	}
	if result == nil || result.Status != swap.StatusSuccess {
		return nil, nil
	}

	log.Info("atomic leg claimed, starting dex leg", "swap", legOneSwap.ID, "bridge_asset", legOneSwap.To)
	now := p.now()
	return &swap.Update{
		Status:  swap.StatusApproveConfirmed,
		EndTime: &now,
	}, nil
}

// ownedByLegOne reports whether only the atomic leg knows the status, in
// which case the DEX leg must not be driven yet
func (p *Provider) ownedByLegOne(status string) bool {
	return p.legOneStatuses.Has(status) && !p.legTwoStatuses.Has(status)
}
