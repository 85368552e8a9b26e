package dex

import (
	"fmt"

	"boost-swap/pkg/format"
	"boost-swap/pkg/swap"
)

// Statuses of a DEX swap
const (
	StatusWaitingForApproveConfirmations = "WAITING_FOR_APPROVE_CONFIRMATIONS"
	StatusApproveConfirmed               = swap.StatusApproveConfirmed
	StatusWaitingForSwapConfirmations    = "WAITING_FOR_SWAP_CONFIRMATIONS"
	StatusSuccess                        = swap.StatusSuccess
	StatusFailed                         = "FAILED"
)

var statuses = swap.StatusTable{
	StatusWaitingForApproveConfirmations: {
		Step: 0, Label: "Approving {from}", FilterStatus: swap.FilterPending,
	},
	StatusApproveConfirmed: {
		Step: 1, Label: "Swapping {from}", FilterStatus: swap.FilterPending,
	},
	StatusWaitingForSwapConfirmations: {
		Step: 1, Label: "Swapping {from}", FilterStatus: swap.FilterPending,
		Notification: func(s *swap.Swap) swap.Notification {
			return swap.Notification{Message: fmt.Sprintf("Swapping %s for %s", s.From, s.To)}
		},
	},
	StatusSuccess: {
		Step: 2, Label: "Completed", FilterStatus: swap.FilterCompleted, Terminal: true,
		Notification: func(s *swap.Swap) swap.Notification {
			return swap.Notification{
				Message: fmt.Sprintf("Swap completed, %s %s ready to use", format.PrettyBalance(s.ToAmount, s.To), s.To),
			}
		},
	},
	StatusFailed: {
		Step: 2, Label: "Swap Failed", FilterStatus: swap.FilterFailed, Terminal: true, Failed: true,
		Notification: func(s *swap.Swap) swap.Notification {
			return swap.Notification{Message: fmt.Sprintf("Swap failed, %s refunded to %s", s.From, s.FromAccountID)}
		},
	},
}

var txTypes = swap.TxTypes{
	string(swap.TxSwap): swap.TxSwap,
}
