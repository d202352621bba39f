package addrindex

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// ExtractAddressHash returns the payee hash of P2PKH, P2SH and P2PK scripts.
// Any other script, including an empty or unparseable one, is not recognized.
func ExtractAddressHash(pkScript []byte, params *chaincfg.Params) (AddressHash, bool) {
	if len(pkScript) == 0 {
		return AddressHash{}, false
	}

	class, addrs, _, err := txscript.ExtractPkScriptAddrs(pkScript, params)
	if err != nil || len(addrs) != 1 {
		return AddressHash{}, false
	}

	switch class {
	case txscript.PubKeyHashTy, txscript.ScriptHashTy, txscript.PubKeyTy:
		return addressHash(addrs[0])
	default:
		return AddressHash{}, false
	}
}

// DecodeAddressHash decodes an address of the given network into the hash it is indexed by.
func DecodeAddressHash(address string, params *chaincfg.Params) (AddressHash, error) {
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return AddressHash{}, fmt.Errorf("%w %q: %w", ErrAddressDecode, address, err)
	}

	if !addr.IsForNet(params) {
		return AddressHash{}, fmt.Errorf("%w %q: not a %s address", ErrAddressDecode, address, params.Name)
	}

	hash, ok := addressHash(addr)
	if !ok {
		return AddressHash{}, fmt.Errorf("%w %q: %T is not indexed", ErrAddressDecode, address, addr)
	}

	return hash, nil
}

func addressHash(addr btcutil.Address) (AddressHash, bool) {
	switch a := addr.(type) {
	case *btcutil.AddressPubKeyHash:
		return *a.Hash160(), true
	case *btcutil.AddressScriptHash:
		return *a.Hash160(), true
	case *btcutil.AddressPubKey:
		return *a.AddressPubKeyHash().Hash160(), true
	default:
		return AddressHash{}, false
	}
}
