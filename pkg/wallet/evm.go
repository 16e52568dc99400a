package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"tonbridge/pkg/chains"
	"tonbridge/pkg/types"
)

// ERC-20 read/write surface the bridge needs
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_owner","type":"address"},{"name":"_spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

const receiptPollInterval = 2 * time.Second

// EVMWallet signs locally with a private key and talks to one RPC endpoint
// per chain, dialed lazily. The "active chain" emulates a connected wallet's
// selected network; transfers require it to match the route's source chain.
type EVMWallet struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	erc20      abi.ABI
	log        *zap.Logger

	mu          sync.Mutex
	clients     map[int64]*ethclient.Client
	rpcOverride map[string]string // chain key -> RPC URL
	activeChain int64
}

// NewEVMWallet creates a wallet from a hex-encoded private key. rpcOverride
// maps chain keys to RPC URLs; chains without an override use their default
// public endpoint.
func NewEVMWallet(privateKeyHex string, rpcOverride map[string]string, log *zap.Logger) (*EVMWallet, error) {
	if log == nil {
		log = zap.NewNop()
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to derive public key")
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	return &EVMWallet{
		privateKey:  privateKey,
		address:     crypto.PubkeyToAddress(*publicKey),
		erc20:       parsedABI,
		log:         log,
		clients:     make(map[int64]*ethclient.Client),
		rpcOverride: rpcOverride,
		activeChain: 1, // a freshly connected wallet sits on Ethereum mainnet
	}, nil
}

// Address returns the account derived from the private key
func (w *EVMWallet) Address() common.Address {
	return w.address
}

// ActiveChainID returns the wallet's currently selected network
func (w *EVMWallet) ActiveChainID(_ context.Context) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeChain, nil
}

// SwitchChain connects the wallet to another supported chain, verifying the
// RPC endpoint actually serves that chain id before committing.
func (w *EVMWallet) SwitchChain(ctx context.Context, chainID int64) error {
	w.mu.Lock()
	if w.activeChain == chainID {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	client, err := w.client(chainID)
	if err != nil {
		return err
	}

	remoteID, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify chain id: %w", err)
	}
	if remoteID.Int64() != chainID {
		return fmt.Errorf("RPC endpoint serves chain %d, expected %d", remoteID.Int64(), chainID)
	}

	w.mu.Lock()
	w.activeChain = chainID
	w.mu.Unlock()

	w.log.Info("switched network", zap.Int64("chain_id", chainID))
	return nil
}

// NativeBalance reads the account's native balance on a chain
func (w *EVMWallet) NativeBalance(ctx context.Context, chainID int64) (*big.Int, error) {
	client, err := w.client(chainID)
	if err != nil {
		return nil, err
	}
	balance, err := client.BalanceAt(ctx, w.address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// TokenBalance reads the account's ERC-20 balance on a chain
func (w *EVMWallet) TokenBalance(ctx context.Context, chainID int64, token common.Address) (*big.Int, error) {
	return w.readUint256(ctx, chainID, token, "balanceOf", w.address)
}

// Allowance reads the amount a spender may move on the account's behalf
func (w *EVMWallet) Allowance(ctx context.Context, chainID int64, token, spender common.Address) (*big.Int, error) {
	return w.readUint256(ctx, chainID, token, "allowance", w.address, spender)
}

// Approve submits an ERC-20 approval transaction for the given amount
func (w *EVMWallet) Approve(ctx context.Context, chainID int64, token, spender common.Address, amount *big.Int) (string, error) {
	if spender == (common.Address{}) {
		return "", types.ErrInvalidSpender
	}

	data, err := w.erc20.Pack("approve", spender, amount)
	if err != nil {
		return "", fmt.Errorf("failed to pack approve data: %w", err)
	}

	return w.submit(ctx, &types.TxRequest{
		ChainID: chainID,
		To:      token,
		Value:   big.NewInt(0),
		Data:    data,
	})
}

// SendTransaction signs and broadcasts a resolved transaction request
func (w *EVMWallet) SendTransaction(ctx context.Context, tx *types.TxRequest) (string, error) {
	return w.submit(ctx, tx)
}

// WaitForReceipt polls for the transaction receipt until inclusion or
// context cancellation.
func (w *EVMWallet) WaitForReceipt(ctx context.Context, chainID int64, txHash string) (*Receipt, error) {
	client, err := w.client(chainID)
	if err != nil {
		return nil, err
	}

	hash := common.HexToHash(txHash)
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(ctx, hash)
		if err == nil {
			out := &Receipt{
				TxHash:      txHash,
				BlockNumber: receipt.BlockNumber.Uint64(),
				GasUsed:     receipt.GasUsed,
				Success:     receipt.Status == ethtypes.ReceiptStatusSuccessful,
			}
			if !out.Success {
				return out, fmt.Errorf("%w: tx %s", types.ErrReverted, txHash)
			}
			return out, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// submit builds, signs and broadcasts a transaction on the request's chain
func (w *EVMWallet) submit(ctx context.Context, txReq *types.TxRequest) (string, error) {
	client, err := w.client(txReq.ChainID)
	if err != nil {
		return "", err
	}

	nonce, err := client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get gas price: %w", err)
	}

	value := txReq.Value
	if value == nil {
		value = big.NewInt(0)
	}

	gasLimit := txReq.GasLimit
	if gasLimit == 0 {
		to := txReq.To
		msg := ethereum.CallMsg{
			From:  w.address,
			To:    &to,
			Value: value,
			Data:  txReq.Data,
		}
		estimated, err := client.EstimateGas(ctx, msg)
		if err != nil {
			return "", fmt.Errorf("failed to estimate gas: %w", err)
		}
		gasLimit = estimated * 120 / 100 // 20% buffer
	}

	tx := ethtypes.NewTransaction(nonce, txReq.To, value, gasLimit, gasPrice, txReq.Data)

	signedTx, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(big.NewInt(txReq.ChainID)), w.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	hash := signedTx.Hash().Hex()
	w.log.Info("transaction submitted",
		zap.Int64("chain_id", txReq.ChainID),
		zap.String("to", txReq.To.Hex()),
		zap.String("tx_hash", hash))

	return hash, nil
}

// readUint256 performs an ERC-20 view call returning a single uint256
func (w *EVMWallet) readUint256(ctx context.Context, chainID int64, token common.Address, method string, args ...interface{}) (*big.Int, error) {
	client, err := w.client(chainID)
	if err != nil {
		return nil, err
	}

	data, err := w.erc20.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s data: %w", method, err)
	}

	msg := ethereum.CallMsg{To: &token, Data: data}
	result, err := client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	return new(big.Int).SetBytes(result), nil
}

// client returns the lazily-dialed RPC client for a chain
func (w *EVMWallet) client(chainID int64) (*ethclient.Client, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if c, ok := w.clients[chainID]; ok {
		return c, nil
	}

	chain, err := chains.ByID(chainID)
	if err != nil {
		return nil, err
	}

	rpcURL := chain.DefaultRPC
	if override, ok := w.rpcOverride[chain.Key]; ok && override != "" {
		rpcURL = override
	}

	c, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint for %s: %w", chain.Name, err)
	}

	w.clients[chainID] = c
	return c, nil
}

// Close closes all dialed RPC connections
func (w *EVMWallet) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range w.clients {
		c.Close()
	}
	w.clients = make(map[int64]*ethclient.Client)
}
