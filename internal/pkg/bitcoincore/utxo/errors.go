package utxo

import "errors"

var ErrScriptTooLarge = errors.New("script size is too large")
