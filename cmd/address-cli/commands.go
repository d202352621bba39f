package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/ciricc/btc-address-indexer/internal/pkg/addrindex"
	"github.com/ciricc/btc-address-indexer/internal/pkg/bitcoincore/chainstate"
	"github.com/ciricc/btc-address-indexer/internal/pkg/bitcoincore/utxo"
	"github.com/ciricc/btc-address-indexer/internal/pkg/blockchainscanner/state"
	"github.com/urfave/cli/v2"
)

var errMissingArgument = errors.New("missing argument")

type tipReader interface {
	Tip(ctx context.Context) (*state.Tip, bool, error)
}

type blockHashReader interface {
	GetBlockHash(ctx context.Context) ([]byte, error)
}

type coinIterator interface {
	Next(ctx context.Context) (*utxo.TxOut, error)
	Release()
}

func requireArg(c *cli.Context, name string) (string, error) {
	arg := c.Args().First()
	if arg == "" {
		return "", fmt.Errorf("%w: %s", errMissingArgument, name)
	}

	return arg, nil
}

func parseOutputRef(txID, index string) (addrindex.OutputRef, error) {
	if txID == "" || index == "" {
		return addrindex.OutputRef{}, fmt.Errorf("%w: <txid> <index>", errMissingArgument)
	}

	outputIndex, err := strconv.ParseUint(index, 10, 32)
	if err != nil {
		return addrindex.OutputRef{}, fmt.Errorf("invalid output index %q: %w", index, err)
	}

	return addrindex.OutputRef{TxID: txID, OutputIndex: uint32(outputIndex)}, nil
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

func printBalance(ctx context.Context, w io.Writer, api addrindex.API, address string, includeMempool bool) error {
	balance, err := api.GetBalance(ctx, address, includeMempool)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, balance)

	return err
}

func printIsSpent(ctx context.Context, w io.Writer, api addrindex.API, ref addrindex.OutputRef, includeMempool bool) error {
	spent, err := api.IsSpent(ctx, ref, includeMempool)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, spent)

	return err
}

func printTip(ctx context.Context, w io.Writer, tips tipReader) error {
	tip, found, err := tips.Tip(ctx)
	if err != nil {
		return err
	}

	if !found {
		_, err = fmt.Fprintln(w, "index is empty")

		return err
	}

	return printJSON(w, tip)
}

func printChainstateBlockHash(ctx context.Context, w io.Writer, db blockHashReader) error {
	hash, err := db.GetBlockHash(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, hex.EncodeToString(hash))

	return err
}

func printChainstateCount(ctx context.Context, w io.Writer, it coinIterator) error {
	defer it.Release()

	var count int64

	for {
		_, err := it.Next(ctx)
		if errors.Is(err, chainstate.ErrNoKeysMore) {
			break
		}

		if err != nil {
			return fmt.Errorf("failed to read coin %d: %w", count, err)
		}

		count++
	}

	_, err := fmt.Fprintln(w, count)

	return err
}
