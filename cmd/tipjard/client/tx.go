package client

import (
	"github.com/iov-one/tipjar/cmd/tipjard/app"
	"github.com/iov-one/tipjar/x/tipjar"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/crypto"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
)

// Tx is all the interfaces we need rolled into one
type Tx interface {
	weave.Tx
	sigs.SignedTx
	AppendSignature(sig *sigs.StdSignature)
}

type appTx struct {
	*app.Tx
}

var _ Tx = appTx{}

func (t appTx) AppendSignature(sig *sigs.StdSignature) {
	t.Tx.Signatures = append(t.Tx.Signatures, sig)
}

// BuildSendTx will create an unsigned tx to move tokens
func BuildSendTx(src, dest weave.Address, amount coin.Coin, memo string) Tx {
	return appTx{&app.Tx{
		Sum: &app.Tx_CashSendMsg{CashSendMsg: &cash.SendMsg{
			Metadata:    &weave.Metadata{Schema: 1},
			Source:      src,
			Destination: dest,
			Amount:      &amount,
			Memo:        memo,
		}},
	}}
}

// BuildCreateJarTx will create an unsigned tx that deploys a new jar
// accepting given currency. The signer becomes the jar admin.
func BuildCreateJarTx(ticker string) Tx {
	return appTx{&app.Tx{
		Sum: &app.Tx_TipjarCreateJarMsg{TipjarCreateJarMsg: &tipjar.CreateJarMsg{
			Metadata: &weave.Metadata{Schema: 1},
			Ticker:   ticker,
		}},
	}}
}

// BuildTipTx will create an unsigned tx that tips amount into the jar. The
// tip is taken from the only signer.
func BuildTipTx(jarID []byte, amount coin.Coin, memo string) Tx {
	return appTx{&app.Tx{
		Sum: &app.Tx_TipjarTipMsg{TipjarTipMsg: &tipjar.TipMsg{
			Metadata: &weave.Metadata{Schema: 1},
			JarID:    jarID,
			Amount:   amount,
			Memo:     memo,
		}},
	}}
}

// BuildWithdrawTx will create an unsigned tx that sweeps the jar to its
// admin.
func BuildWithdrawTx(jarID []byte) Tx {
	return appTx{&app.Tx{
		Sum: &app.Tx_TipjarWithdrawMsg{TipjarWithdrawMsg: &tipjar.WithdrawMsg{
			Metadata: &weave.Metadata{Schema: 1},
			JarID:    jarID,
		}},
	}}
}

// WithFee sets the fee paid by payer for the transaction. It must be called
// before signing.
func WithFee(tx Tx, payer weave.Address, fee coin.Coin) Tx {
	t := tx.(appTx)
	t.Fees = &cash.FeeInfo{
		Payer: payer,
		Fees:  &fee,
	}
	return t
}

// SignTx modifies the tx in-place, adding signatures
func SignTx(tx Tx, signer *crypto.PrivateKey, chainID string, nonce int64) error {
	sig, err := sigs.SignTx(signer, tx, chainID, nonce)
	if err != nil {
		return err
	}
	tx.AppendSignature(sig)
	return nil
}

// ParseTx will load a serialized tx into a format we can read
func ParseTx(data []byte) (*app.Tx, error) {
	var tx app.Tx
	err := tx.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
