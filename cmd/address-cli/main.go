package main

import (
	"fmt"
	"os"

	"github.com/ciricc/btc-address-indexer/internal/pkg/addrindex"
	"github.com/ciricc/btc-address-indexer/internal/pkg/app"
	"github.com/ciricc/btc-address-indexer/internal/pkg/bitcoincore/chainstate"
	"github.com/ciricc/btc-address-indexer/internal/pkg/indexer"
	"github.com/ciricc/btc-address-indexer/internal/pkg/shutdown"
	"github.com/rs/zerolog"
	"github.com/samber/do"
	"github.com/urfave/cli/v2"
)

var mempoolFlag = &cli.BoolFlag{
	Name:    "mempool",
	Aliases: []string{"m"},
	Usage:   "include unconfirmed transactions",
}

func main() {
	container := do.New()

	app.ProvideCommonDeps(container)
	app.ProvideBitcoinCoreDeps(container)
	app.ProvideChainstateDeps(container)
	app.ProvideAddressIndexDeps(container)
	app.ProvideIndexerDeps(container)

	cliApp := &cli.App{
		Name:  "address-cli",
		Usage: "query the bitcoin address index",
		Before: func(*cli.Context) error {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)

			return app.ProvideStoreDeps(container)
		},
		After: func(c *cli.Context) error {
			shutdowner, err := do.Invoke[*shutdown.Shutdowner](container)
			if err != nil {
				return err
			}

			return shutdowner.Shutdown(c.Context)
		},
		Commands: []*cli.Command{
			{
				Name:      "balance",
				Usage:     "sum of the unspent outputs of the address in satoshis",
				ArgsUsage: "<address>",
				Flags:     []cli.Flag{mempoolFlag},
				Action: func(c *cli.Context) error {
					address, err := requireArg(c, "address")
					if err != nil {
						return err
					}

					module, err := do.Invoke[*addrindex.Module](container)
					if err != nil {
						return fmt.Errorf("failed to open address index: %w", err)
					}

					return printBalance(c.Context, c.App.Writer, module, address, c.Bool(mempoolFlag.Name))
				},
			},
			{
				Name:      "outputs",
				Usage:     "every output ever paid to the address",
				ArgsUsage: "<address>",
				Flags:     []cli.Flag{mempoolFlag},
				Action: func(c *cli.Context) error {
					address, err := requireArg(c, "address")
					if err != nil {
						return err
					}

					module, err := do.Invoke[*addrindex.Module](container)
					if err != nil {
						return fmt.Errorf("failed to open address index: %w", err)
					}

					outputs, err := module.GetOutputs(c.Context, address, c.Bool(mempoolFlag.Name))
					if err != nil {
						return err
					}

					return printJSON(c.App.Writer, outputs)
				},
			},
			{
				Name:      "utxos",
				Usage:     "unspent outputs of the address",
				ArgsUsage: "<address>",
				Flags:     []cli.Flag{mempoolFlag},
				Action: func(c *cli.Context) error {
					address, err := requireArg(c, "address")
					if err != nil {
						return err
					}

					module, err := do.Invoke[*addrindex.Module](container)
					if err != nil {
						return fmt.Errorf("failed to open address index: %w", err)
					}

					outputs, err := module.GetUnspentOutputs(c.Context, address, c.Bool(mempoolFlag.Name))
					if err != nil {
						return err
					}

					return printJSON(c.App.Writer, outputs)
				},
			},
			{
				Name:      "isspent",
				Usage:     "whether the output is spent",
				ArgsUsage: "<txid> <index>",
				Flags:     []cli.Flag{mempoolFlag},
				Action: func(c *cli.Context) error {
					ref, err := parseOutputRef(c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return err
					}

					module, err := do.Invoke[*addrindex.Module](container)
					if err != nil {
						return fmt.Errorf("failed to open address index: %w", err)
					}

					return printIsSpent(c.Context, c.App.Writer, module, ref, c.Bool(mempoolFlag.Name))
				},
			},
			{
				Name:  "tip",
				Usage: "last block committed to the index",
				Action: func(c *cli.Context) error {
					ix, err := do.Invoke[*indexer.Indexer](container)
					if err != nil {
						return fmt.Errorf("failed to open indexer: %w", err)
					}

					return printTip(c.Context, c.App.Writer, ix)
				},
			},
			{
				Name:  "chainstate",
				Usage: "read a copy of the node's chainstate directory",
				Subcommands: []*cli.Command{
					{
						Name:      "coin",
						Usage:     "unspent output from the chainstate",
						ArgsUsage: "<txid> <index>",
						Action: func(c *cli.Context) error {
							ref, err := parseOutputRef(c.Args().Get(0), c.Args().Get(1))
							if err != nil {
								return err
							}

							db, err := do.Invoke[*chainstate.DB](container)
							if err != nil {
								return fmt.Errorf("failed to open chainstate: %w", err)
							}

							coin, err := db.GetCoin(c.Context, ref.TxID, ref.OutputIndex)
							if err != nil {
								return err
							}

							return printJSON(c.App.Writer, coin)
						},
					},
					{
						Name:  "blockhash",
						Usage: "hash of the block the chainstate is at",
						Action: func(c *cli.Context) error {
							db, err := do.Invoke[*chainstate.DB](container)
							if err != nil {
								return fmt.Errorf("failed to open chainstate: %w", err)
							}

							return printChainstateBlockHash(c.Context, c.App.Writer, db)
						},
					},
					{
						Name:  "count",
						Usage: "number of unspent outputs in the chainstate",
						Action: func(c *cli.Context) error {
							db, err := do.Invoke[*chainstate.DB](container)
							if err != nil {
								return fmt.Errorf("failed to open chainstate: %w", err)
							}

							return printChainstateCount(c.Context, c.App.Writer, db.NewUTXOIterator())
						},
					},
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
