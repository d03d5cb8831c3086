package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/tipjar/cmd/tipjard/client"
	"github.com/iov-one/weave/x/sigs"
)

func cmdSignTransaction(
	input io.Reader,
	output io.Writer,
	args []string,
) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Sign given transaction. This is decoding a transaction data from standard
input, adds a signature and writes back to standard output signed transaction
content.

The chain ID and the signer sequence are fetched from the node unless both
are given with the -chain and -seq flags.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultNode(),
			"Tendermint node address. You can use TIPJARCLI_TM_ADDR environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file that transaction should be signed with. You can use TIPJARCLI_PRIV_KEY environment variable to set it.")
		chainFl = fl.String("chain", "", "Chain ID. Fetched from the node if not provided.")
		seqFl   = fl.Int64("seq", -1, "Signer sequence. Fetched from the node if not provided.")
	)
	fl.Parse(args)

	if *keyPathFl == "" {
		return errors.New("private key is required")
	}
	key, err := decodePrivateKey(*keyPathFl)
	if err != nil {
		return fmt.Errorf("cannot load private key: %s", err)
	}

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction: %s", err)
	}

	chainID, seq := *chainFl, *seqFl
	if chainID == "" || seq < 0 {
		tipClient := client.Dial(*tmAddrFl)
		if chainID == "" {
			if chainID, err = tipClient.ChainID(); err != nil {
				return fmt.Errorf("cannot fetch chain ID: %s", err)
			}
		}
		if seq < 0 {
			aNonce := client.NewNonce(tipClient, key.PublicKey().Address())
			if seq, err = aNonce.Next(); err != nil {
				return fmt.Errorf("cannot get the next sequence number: %s", err)
			}
		}
	}

	sig, err := sigs.SignTx(key, tx, chainID, seq)
	if err != nil {
		return fmt.Errorf("cannot sign transaction: %s", err)
	}
	tx.Signatures = append(tx.Signatures, sig)

	_, err = writeTx(output, tx)
	return err
}
