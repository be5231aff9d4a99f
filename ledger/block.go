package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// GenesisPreviousHash is the previous_hash of block 0.
const GenesisPreviousHash = "0"

// Trade is one completed marketplace sale as stamped into a block.
type Trade struct {
	FarmerID      int64   `json:"farmer_id"`
	BuyerID       int64   `json:"buyer_id"`
	CropID        int64   `json:"crop_id"`
	Quantity      float64 `json:"quantity"`
	Price         float64 `json:"price"`
	TotalAmount   float64 `json:"total_amount"`
	Timestamp     float64 `json:"timestamp"`
	TransactionID string  `json:"transaction_id"`
}

// Block is a hash-linked group of trades. Nonce is always 0.
type Block struct {
	Index        int     `json:"index"`
	Timestamp    float64 `json:"timestamp"`
	Transactions []Trade `json:"transactions"`
	PreviousHash string  `json:"previous_hash"`
	Nonce        int     `json:"nonce"`
	Hash         string  `json:"hash"`
}

// hashedFields is everything in a Block except the hash itself.
type hashedFields struct {
	Index        int     `json:"index"`
	Timestamp    float64 `json:"timestamp"`
	Transactions []Trade `json:"transactions"`
	PreviousHash string  `json:"previous_hash"`
	Nonce        int     `json:"nonce"`
}

// ComputeHash returns the hex SHA-256 of the block's canonical JSON form:
// all fields but Hash, object keys sorted at every level.
func ComputeHash(b Block) (string, error) {
	txs := b.Transactions
	if txs == nil {
		txs = []Trade{}
	}
	raw, err := canonicalJSON(hashedFields{
		Index:        b.Index,
		Timestamp:    b.Timestamp,
		Transactions: txs,
		PreviousHash: b.PreviousHash,
		Nonce:        b.Nonce,
	})
	if err != nil {
		return "", fmt.Errorf("serialize block %d: %w", b.Index, err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalJSON re-encodes v through a generic value so encoding/json emits
// map keys in sorted order. Numbers pass through as json.Number to keep
// their exact text.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}

// clone returns a deep copy so callers cannot reach ledger-owned slices.
func (b Block) clone() Block {
	c := b
	if b.Transactions != nil {
		c.Transactions = make([]Trade, len(b.Transactions))
		copy(c.Transactions, b.Transactions)
	}
	return c
}
