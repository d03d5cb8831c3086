package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/tipjar/cmd/tipjard/app"
	"github.com/iov-one/tipjar/x/tipjar"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/x/cash"
)

func cmdTransactionView(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Decode a transaction and display what it does. Jar IDs are shown as sequence
numbers and amounts with their currency. Check the summary before signing a
transaction received from someone else.
`)
		fl.PrintDefaults()
	}
	var (
		rawFl = fl.Bool("raw", false, "Display all transaction fields as they are serialized.")
	)
	fl.Parse(args)

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction: %s", err)
	}

	var view interface{} = tx
	if !*rawFl {
		if view, err = summarize(tx); err != nil {
			return err
		}
	}
	pretty, err := json.MarshalIndent(view, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = output.Write(pretty)
	return err
}

type txSummary struct {
	Path    string          `json:"path"`
	Message interface{}     `json:"message"`
	Fee     *feeSummary     `json:"fee,omitempty"`
	Signers []signerSummary `json:"signers"`
}

type feeSummary struct {
	Payer  weave.Address `json:"payer,omitempty"`
	Amount string        `json:"amount"`
}

type signerSummary struct {
	Address  weave.Address `json:"address"`
	Sequence int64         `json:"sequence"`
}

func summarize(tx *app.Tx) (*txSummary, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, fmt.Errorf("cannot extract message: %s", err)
	}
	s := txSummary{
		Path:    msg.Path(),
		Message: summarizeMsg(msg),
		Signers: make([]signerSummary, 0, len(tx.Signatures)),
	}
	if f := tx.Fees; f != nil && f.Fees != nil {
		s.Fee = &feeSummary{Payer: f.Payer, Amount: f.Fees.String()}
	}
	for _, sig := range tx.Signatures {
		s.Signers = append(s.Signers, signerSummary{
			Address:  sig.Pubkey.Address(),
			Sequence: sig.Sequence,
		})
	}
	return &s, nil
}

// summarizeMsg returns a readable form of the tip jar and cash messages. Any
// other message is returned as it is.
func summarizeMsg(msg weave.Msg) interface{} {
	type jarRef struct {
		Jar string `json:"jar"`
	}
	switch m := msg.(type) {
	case *tipjar.CreateJarMsg:
		return struct {
			Ticker string `json:"ticker"`
		}{m.Ticker}
	case *tipjar.TipMsg:
		return struct {
			jarRef
			Depositor weave.Address `json:"depositor,omitempty"`
			Amount    string        `json:"amount"`
			Memo      string        `json:"memo,omitempty"`
		}{jarRef{jarName(m.JarID)}, m.Depositor, m.Amount.String(), m.Memo}
	case *tipjar.WithdrawMsg:
		return jarRef{jarName(m.JarID)}
	case *tipjar.UpdateConfigurationMsg:
		if m.Patch == nil {
			return m
		}
		return struct {
			Owner         weave.Address `json:"owner,omitempty"`
			MaxMemoLength int32         `json:"max_memo_length,omitempty"`
		}{m.Patch.Owner, m.Patch.MaxMemoLength}
	case *cash.SendMsg:
		var amount string
		if m.Amount != nil {
			amount = m.Amount.String()
		}
		return struct {
			Source      weave.Address `json:"source"`
			Destination weave.Address `json:"destination"`
			Amount      string        `json:"amount"`
			Memo        string        `json:"memo,omitempty"`
		}{m.Source, m.Destination, amount, m.Memo}
	}
	return msg
}

// jarName returns the sequence number of a jar ID. IDs that are not a
// sequence are shown in the "hex:" form accepted by the -jar flags.
func jarName(id []byte) string {
	if n, err := fromSequence(id); err == nil {
		return fmt.Sprint(n)
	}
	return "hex:" + hex.EncodeToString(id)
}
