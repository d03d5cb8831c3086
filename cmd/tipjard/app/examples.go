package app

import (
	"github.com/iov-one/tipjar/x/tipjar"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/commands"
	"github.com/iov-one/weave/crypto"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
)

// Examples generates some example structs to dump out with testgen
func Examples() []commands.Example {
	priv := crypto.GenPrivKeyEd25519()
	pub := priv.PublicKey()
	user := &sigs.UserData{
		Metadata: &weave.Metadata{Schema: 1},
		Pubkey:   pub,
		Sequence: 17,
	}

	jarID := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	jar := &tipjar.Jar{
		Metadata: &weave.Metadata{Schema: 1},
		Admin:    pub.Address(),
		Total:    coin.NewCoin(150, 0, "IOV"),
	}
	balance := &tipjar.Balance{
		Metadata:  &weave.Metadata{Schema: 1},
		JarID:     jarID,
		Depositor: pub.Address(),
		Amount:    coin.NewCoin(100, 0, "IOV"),
	}

	createMsg := &tipjar.CreateJarMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Ticker:   "IOV",
	}
	tipMsg := &tipjar.TipMsg{
		Metadata: &weave.Metadata{Schema: 1},
		JarID:    jarID,
		Amount:   coin.NewCoin(5, 500000000, "IOV"),
		Memo:     "for the coffee",
	}
	withdrawMsg := &tipjar.WithdrawMsg{
		Metadata: &weave.Metadata{Schema: 1},
		JarID:    jarID,
	}

	amt := coin.NewCoin(250, 0, "IOV")
	sendMsg := &cash.SendMsg{
		Metadata:    &weave.Metadata{Schema: 1},
		Amount:      &amt,
		Destination: crypto.GenPrivKeyEd25519().PublicKey().Address(),
		Source:      pub.Address(),
		Memo:        "Test payment",
	}

	unsigned := Tx{
		Sum: &Tx_TipjarTipMsg{TipjarTipMsg: tipMsg},
	}
	tx := unsigned
	sig, err := sigs.SignTx(priv, &tx, "test-123", 17)
	if err != nil {
		panic(err)
	}
	tx.Signatures = []*sigs.StdSignature{sig}

	return []commands.Example{
		{Filename: "priv_key", Obj: priv},
		{Filename: "pub_key", Obj: pub},
		{Filename: "user", Obj: user},
		{Filename: "jar", Obj: jar},
		{Filename: "balance", Obj: balance},
		{Filename: "create_jar_msg", Obj: createMsg},
		{Filename: "tip_msg", Obj: tipMsg},
		{Filename: "withdraw_msg", Obj: withdrawMsg},
		{Filename: "send_msg", Obj: sendMsg},
		{Filename: "unsigned_tx", Obj: &unsigned},
		{Filename: "signed_tx", Obj: &tx},
	}
}
