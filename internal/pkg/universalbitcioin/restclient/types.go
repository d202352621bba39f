package restclient

import (
	"encoding/json"
	"sort"

	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/blockchain"
)

type GetBlockHashByHeightResponse struct {
	BlockHash blockchain.Hash `json:"blockhash"`
}

// MempoolContents accepts both the txid array (verbose=false) and the
// txid keyed object returned by nodes that ignore the verbose flag.
type MempoolContents struct {
	TxIDs []string
}

func (m *MempoolContents) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err == nil {
		m.TxIDs = ids

		return nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	m.TxIDs = make([]string, 0, len(entries))
	for id := range entries {
		m.TxIDs = append(m.TxIDs, id)
	}

	sort.Strings(m.TxIDs)

	return nil
}
