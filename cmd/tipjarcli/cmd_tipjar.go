package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/tipjar/cmd/tipjard/app"
	"github.com/iov-one/tipjar/x/tipjar"
	"github.com/iov-one/weave"
)

func cmdCreateJar(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Create a transaction that deploys a new tip jar. The signer of the transaction
becomes the jar administrator, so it must be signed by exactly one key.
Submitting the transaction prints the new jar ID.
		`)
		fl.PrintDefaults()
	}
	var (
		tickerFl = fl.String("ticker", "IOV", "Currency that the jar accepts.")
	)
	fl.Parse(args)

	tx := &app.Tx{
		Sum: &app.Tx_TipjarCreateJarMsg{
			TipjarCreateJarMsg: &tipjar.CreateJarMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Ticker:   *tickerFl,
			},
		},
	}
	_, err := writeTx(output, tx)
	return err
}

func cmdTip(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Create a transaction that tips the jar. Funds are taken from the depositor.
When not provided, the transaction must be signed by the depositor only.
		`)
		fl.PrintDefaults()
	}
	var (
		jarFl       = flSeq(fl, "jar", "", "ID of the jar that receives the tip.")
		amountFl    = flCoin(fl, "amount", "1 IOV", "Tip value.")
		depositorFl = flAddress(fl, "depositor", "", "Optional address the tip is taken from and credited to. The depositor must sign the transaction.")
		memoFl      = fl.String("memo", "", "A short message attached to the tip.")
	)
	fl.Parse(args)

	if len(*jarFl) == 0 {
		flagDie("jar ID is required")
	}

	tx := &app.Tx{
		Sum: &app.Tx_TipjarTipMsg{
			TipjarTipMsg: &tipjar.TipMsg{
				Metadata:  &weave.Metadata{Schema: 1},
				JarID:     *jarFl,
				Depositor: *depositorFl,
				Amount:    *amountFl,
				Memo:      *memoFl,
			},
		},
	}
	_, err := writeTx(output, tx)
	return err
}

func cmdWithdraw(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Create a transaction that sweeps all funds held by the jar to its
administrator. The transaction must be signed by the administrator.
		`)
		fl.PrintDefaults()
	}
	var (
		jarFl = flSeq(fl, "jar", "", "ID of the jar to withdraw from.")
	)
	fl.Parse(args)

	if len(*jarFl) == 0 {
		flagDie("jar ID is required")
	}

	tx := &app.Tx{
		Sum: &app.Tx_TipjarWithdrawMsg{
			TipjarWithdrawMsg: &tipjar.WithdrawMsg{
				Metadata: &weave.Metadata{Schema: 1},
				JarID:    *jarFl,
			},
		},
	}
	_, err := writeTx(output, tx)
	return err
}

func cmdUpdateConfiguration(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Create a transaction for configuring the tipjar extension. Transaction must be
signed by the current configuration owner.
		`)
		fl.PrintDefaults()
	}
	var (
		ownerFl   = flAddress(fl, "owner", "", "Address of the new configuration owner. Leave empty to not change.")
		maxMemoFl = fl.Int("max-memo", 0, "Longest memo a tip can carry. Leave zero to not change.")
	)
	fl.Parse(args)

	tx := &app.Tx{
		Sum: &app.Tx_TipjarUpdateConfigurationMsg{
			TipjarUpdateConfigurationMsg: &tipjar.UpdateConfigurationMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Patch: &tipjar.Configuration{
					Metadata:      &weave.Metadata{Schema: 1},
					Owner:         *ownerFl,
					MaxMemoLength: int32(*maxMemoFl),
				},
			},
		},
	}
	_, err := writeTx(output, tx)
	return err
}
