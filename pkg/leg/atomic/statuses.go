package atomic

import (
	"fmt"

	"boost-swap/pkg/format"
	"boost-swap/pkg/swap"
)

// Statuses of an atomic swap
const (
	StatusInitiated                     = "INITIATED"
	StatusInitiationReported            = "INITIATION_REPORTED"
	StatusInitiationConfirmed           = "INITIATION_CONFIRMED"
	StatusFunded                        = "FUNDED"
	StatusConfirmCounterPartyInitiation = "CONFIRM_COUNTER_PARTY_INITIATION"
	StatusReadyToClaim                  = "READY_TO_CLAIM"
	StatusWaitingForClaimConfirmations  = swap.StatusWaitingForClaimConfirmations
	StatusWaitingForRefund              = "WAITING_FOR_REFUND"
	StatusGetRefund                     = "GET_REFUND"
	StatusWaitingForRefundConfirmations = "WAITING_FOR_REFUND_CONFIRMATIONS"
	StatusRefunded                      = "REFUNDED"
	StatusSuccess                       = swap.StatusSuccess
	StatusQuoteExpired                  = "QUOTE_EXPIRED"
)

var statuses = swap.StatusTable{
	StatusInitiated: {
		Step: 0, Label: "Locking {from}", FilterStatus: swap.FilterPending,
	},
	StatusInitiationReported: {
		Step: 0, Label: "Locking {from}", FilterStatus: swap.FilterPending,
		Notification: func(s *swap.Swap) swap.Notification {
			return swap.Notification{Message: "Swap initiated"}
		},
	},
	StatusInitiationConfirmed: {
		Step: 0, Label: "Locking {from}", FilterStatus: swap.FilterPending,
	},
	StatusFunded: {
		Step: 1, Label: "Locking {to}", FilterStatus: swap.FilterPending,
	},
	StatusConfirmCounterPartyInitiation: {
		Step: 1, Label: "Locking {to}", FilterStatus: swap.FilterPending,
		Notification: func(s *swap.Swap) swap.Notification {
			return swap.Notification{
				Message: fmt.Sprintf("Counterparty sent %s %s to escrow", format.PrettyBalance(s.ToAmount, s.To), s.To),
			}
		},
	},
	StatusReadyToClaim: {
		Step: 2, Label: "Claiming {to}", FilterStatus: swap.FilterPending,
		Notification: func(s *swap.Swap) swap.Notification {
			return swap.Notification{
				Message: fmt.Sprintf("Claiming %s %s", format.PrettyBalance(s.ToAmount, s.To), s.To),
			}
		},
	},
	StatusWaitingForClaimConfirmations: {
		Step: 2, Label: "Claiming {to}", FilterStatus: swap.FilterPending,
	},
	StatusWaitingForRefund: {
		Step: 2, Label: "Pending Refund", FilterStatus: swap.FilterPending,
	},
	StatusGetRefund: {
		Step: 2, Label: "Refunding {from}", FilterStatus: swap.FilterPending,
	},
	StatusWaitingForRefundConfirmations: {
		Step: 2, Label: "Refunding {from}", FilterStatus: swap.FilterPending,
	},
	StatusRefunded: {
		Step: 3, Label: "Refunded", FilterStatus: swap.FilterRefunded, Terminal: true, Failed: true,
		Notification: func(s *swap.Swap) swap.Notification {
			return swap.Notification{
				Message: fmt.Sprintf("Swap refunded, %s %s returned", format.PrettyBalance(s.FromAmount, s.From), s.From),
			}
		},
	},
	StatusSuccess: {
		Step: 3, Label: "Completed", FilterStatus: swap.FilterCompleted, Terminal: true,
		Notification: func(s *swap.Swap) swap.Notification {
			return swap.Notification{
				Message: fmt.Sprintf("Swap completed, %s %s ready to use", format.PrettyBalance(s.ToAmount, s.To), s.To),
			}
		},
	},
	StatusQuoteExpired: {
		Step: 3, Label: "Quote Expired", FilterStatus: swap.FilterRefunded, Terminal: true, Failed: true,
	},
}

var txTypes = swap.TxTypes{
	string(swap.TxSwapInitiation): swap.TxSwapInitiation,
	string(swap.TxSwapClaim):      swap.TxSwapClaim,
}

// Order in which statuses may follow each other. The refund path ranks
// above every happy path status so a refund can start from any of them.
var rank = map[string]int{
	StatusInitiated:                     0,
	StatusInitiationReported:            1,
	StatusInitiationConfirmed:           2,
	StatusFunded:                        3,
	StatusConfirmCounterPartyInitiation: 4,
	StatusReadyToClaim:                  5,
	StatusWaitingForClaimConfirmations:  6,
	StatusSuccess:                       7,
	StatusWaitingForRefund:              10,
	StatusGetRefund:                     11,
	StatusWaitingForRefundConfirmations: 12,
	StatusRefunded:                      13,
	StatusQuoteExpired:                  20,
}

func forward(from, to string) bool {
	a, ok := rank[from]
	if !ok {
		return false
	}
	b, ok := rank[to]
	return ok && b > a
}
