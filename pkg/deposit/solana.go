package deposit

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"boost-swap/config"
)

const (
	lamportsPerSOL = 9

	// Fee charged per signature
	signatureFee = uint64(5000)
)

// SolanaDepositor sends SOL
type SolanaDepositor struct {
	config     config.SolanaConfig
	client     *rpc.Client
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// NewSolanaDepositor creates a new Solana depositor
func NewSolanaDepositor(cfg config.SolanaConfig) (*SolanaDepositor, error) {
	if cfg.RPCUrl == "" {
		return nil, fmt.Errorf("RPC URL not configured for Solana")
	}
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("private key not configured for Solana")
	}

	privateKey, err := solana.PrivateKeyFromBase58(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &SolanaDepositor{
		config:     cfg,
		client:     rpc.New(cfg.RPCUrl),
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
	}, nil
}

// Address returns the sending account
func (s *SolanaDepositor) Address() string {
	return s.publicKey.String()
}

// SendDeposit sends amount SOL to address
func (s *SolanaDepositor) SendDeposit(ctx context.Context, address string, amount decimal.Decimal) (string, error) {
	recipient, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return "", fmt.Errorf("invalid recipient address: %w", err)
	}

	lamports, err := toLamports(amount)
	if err != nil {
		return "", err
	}

	balance, err := s.client.GetBalance(ctx, s.publicKey, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get balance: %w", err)
	}

	minRequired := lamports + signatureFee
	if balance.Value < minRequired {
		have := decimal.NewFromInt(int64(balance.Value)).Shift(-lamportsPerSOL)
		need := decimal.NewFromInt(int64(minRequired)).Shift(-lamportsPerSOL)
		return "", fmt.Errorf("insufficient balance: have %s SOL, need %s SOL (including fees)", have, need)
	}

	recent, err := s.client.GetRecentBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	instruction := system.NewTransferInstruction(
		lamports,
		s.publicKey,
		recipient,
	).Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		recent.Value.Blockhash,
		solana.TransactionPayer(s.publicKey),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.publicKey) {
			return &s.privateKey
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	opts := rpc.TransactionOpts{
		SkipPreflight:       s.config.SkipPreflight,
		PreflightCommitment: commitment(s.config.Commitment),
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, tx, opts)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig.String(), nil
}

// toLamports converts SOL to lamports, dropping anything below one lamport
func toLamports(amount decimal.Decimal) (uint64, error) {
	if !amount.IsPositive() {
		return 0, fmt.Errorf("invalid amount: %s", amount)
	}
	lamports := amount.Shift(lamportsPerSOL).Truncate(0)
	if !lamports.IsPositive() {
		return 0, fmt.Errorf("amount %s is below one lamport", amount)
	}
	return uint64(lamports.IntPart()), nil
}

// commitment parses a commitment level, defaulting to confirmed
func commitment(level string) rpc.CommitmentType {
	switch strings.ToLower(level) {
	case "finalized":
		return rpc.CommitmentFinalized
	case "processed":
		return rpc.CommitmentProcessed
	default:
		return rpc.CommitmentConfirmed
	}
}
