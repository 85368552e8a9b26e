package deposit

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/shopspring/decimal"

	"boost-swap/config"
)

// Standard native transfer
const defaultGasLimit = uint64(21000)

// EVMBackend is the part of ethclient.Client a depositor needs
type EVMBackend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// EVMDepositor sends native coins on EVM-compatible blockchains
type EVMDepositor struct {
	network    config.EVMNetwork
	client     EVMBackend
	privateKey *ecdsa.PrivateKey
	from       common.Address
}

// NewEVMDepositor creates a new EVM depositor
func NewEVMDepositor(client EVMBackend, network config.EVMNetwork) (*EVMDepositor, error) {
	if network.PrivateKey == "" {
		return nil, fmt.Errorf("private key not configured")
	}
	if network.ChainID == 0 {
		return nil, fmt.Errorf("chain id not configured")
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(network.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &EVMDepositor{
		network:    network,
		client:     client,
		privateKey: privateKey,
		from:       crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// Address returns the sending account
func (e *EVMDepositor) Address() string {
	return e.from.Hex()
}

// SendDeposit sends amount of the native coin to address
func (e *EVMDepositor) SendDeposit(ctx context.Context, address string, amount decimal.Decimal) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("invalid recipient address: %s", address)
	}
	if !amount.IsPositive() {
		return "", fmt.Errorf("invalid amount: %s", amount)
	}

	amountWei := toWei(amount)

	balance, err := e.client.BalanceAt(ctx, e.from, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get balance: %w", err)
	}

	gasPrice, err := e.getGasPrice(ctx)
	if err != nil {
		return "", err
	}

	gasLimit := defaultGasLimit
	if e.network.GasLimit != nil {
		gasLimit = *e.network.GasLimit
	}

	required := new(big.Int).Add(amountWei, new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gasLimit)))
	if balance.Cmp(required) < 0 {
		return "", fmt.Errorf("insufficient balance: have %s wei, need %s wei", balance.String(), required.String())
	}

	nonce, err := e.client.PendingNonceAt(ctx, e.from)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	tx := types.NewTransaction(
		nonce,
		common.HexToAddress(address),
		amountWei,
		gasLimit,
		gasPrice,
		nil,
	)

	chainID := big.NewInt(e.network.ChainID)
	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(chainID), e.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := e.client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return signedTx.Hash().Hex(), nil
}

// getGasPrice returns the configured gas price or the node's suggestion
func (e *EVMDepositor) getGasPrice(ctx context.Context) (*big.Int, error) {
	if e.network.GasPrice != nil {
		return big.NewInt(*e.network.GasPrice), nil
	}

	gasPrice, err := e.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	return gasPrice, nil
}

// toWei converts ether to wei, dropping anything below one wei
func toWei(amount decimal.Decimal) *big.Int {
	return amount.Mul(decimal.NewFromInt(params.Ether)).BigInt()
}
