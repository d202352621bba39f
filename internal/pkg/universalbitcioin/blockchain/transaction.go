package blockchain

import (
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountValue is a coin amount as the node prints it (BTC with a decimal point).
type AmountValue struct {
	decimal.Decimal
}

func NewAmountValue(d decimal.Decimal) *AmountValue {
	return &AmountValue{Decimal: d}
}

// Satoshis converts the amount to the smallest units.
func (a *AmountValue) Satoshis(decimals int) (uint64, error) {
	if a == nil {
		return 0, nil
	}

	shifted := a.Shift(int32(decimals))

	if shifted.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %s", ErrInvalidAmount, a.String())
	}

	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: %s has more than %d decimals", ErrInvalidAmount, a.String(), decimals)
	}

	bi := shifted.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("%w: %s overflows uint64", ErrInvalidAmount, a.String())
	}

	return bi.Uint64(), nil
}

type TransactionInput struct {
	Coinbase  string     `json:"coinbase,omitempty"`
	TxID      string     `json:"txid,omitempty"`
	VOut      uint32     `json:"vout"`
	ScriptSig *ScriptSig `json:"scriptSig,omitempty"`
	Sequence  int64      `json:"sequence"`
}

func (t *TransactionInput) GetCoinbase() string {
	return t.Coinbase
}

func (t *TransactionInput) IsCoinbase() bool {
	return t.Coinbase != ""
}

// GetTxID returns the id of the transaction whose output this input spends.
func (t *TransactionInput) GetTxID() string {
	return t.TxID
}

func (t *TransactionInput) GetVOut() uint32 {
	return t.VOut
}

type Transaction struct {
	ID       string               `json:"txid"`
	Hash     Hash                 `json:"hash"`
	LockTime int64                `json:"locktime"`
	Size     int                  `json:"size"`
	Version  int                  `json:"version"`
	VOut     []*TransactionOutput `json:"vout"`
	VIn      []*TransactionInput  `json:"vin"`
}

func (t *Transaction) GetID() string {
	return t.ID
}

func (t *Transaction) GetInputs() []*TransactionInput {
	return t.VIn
}

func (t *Transaction) GetOutputs() []*TransactionOutput {
	return t.VOut
}

func (t *Transaction) IsCoinbase() bool {
	return len(t.VIn) == 1 && t.VIn[0] != nil && t.VIn[0].IsCoinbase()
}

type TransactionOutput struct {
	N            uint32        `json:"n"`
	Value        *AmountValue  `json:"value"`
	ScriptPubKey *ScriptPubKey `json:"scriptPubKey"`
}

func (t *TransactionOutput) GetN() uint32 {
	return t.N
}

func (t *TransactionOutput) GetValue() *AmountValue {
	return t.Value
}

func (t *TransactionOutput) GetScriptPubKey() *ScriptPubKey {
	return t.ScriptPubKey
}

// ScriptBytes returns the decoded locking script, nil when the node did not send one.
func (t *TransactionOutput) ScriptBytes() ([]byte, error) {
	if t.ScriptPubKey == nil || len(t.ScriptPubKey.HEX) == 0 {
		return nil, nil
	}

	script, err := hex.DecodeString(t.ScriptPubKey.HEX)
	if err != nil {
		return nil, fmt.Errorf("failed to decode script hex: %w", err)
	}

	return script, nil
}

type ScriptPubKey struct {
	Address string `json:"address"`
	ASM     string `json:"asm"`
	HEX     string `json:"hex"`
	Type    string `json:"type"`
}

type ScriptSig struct {
	Asm string `json:"asm"`
	Hex string `json:"hex"`
}
