package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest/assert"
	"github.com/iov-one/weave/x/sigs"
)

// privKeyHex is a hex-encoded raw ed25519 private key.
const privKeyHex = "d34c1970ae90acf3405f2d99dcaca16d0c7db379f4beafcfdf667b9d69ce350d27f5fb440509dfa79ec883a0510bc9a9614c3d44188881f0c5e402898b4bf3c9"

func TestCmdSignTransactionOffline(t *testing.T) {
	var input bytes.Buffer
	if err := cmdWithdraw(nil, &input, []string{"-jar", "1"}); err != nil {
		t.Fatalf("cannot create a withdraw transaction: %s", err)
	}

	keyPath := mustCreateFile(t, bytes.NewReader(fromHex(t, privKeyHex)))
	defer os.Remove(keyPath)

	var output bytes.Buffer
	args := []string{
		"-key", keyPath,
		"-chain", "test-chain",
		"-seq", "0",
	}
	if err := cmdSignTransaction(&input, &output, args); err != nil {
		t.Fatalf("transaction signing failed: %s", err)
	}

	tx, _, err := readTx(&output)
	if err != nil {
		t.Fatalf("cannot read created transaction: %s", err)
	}
	if n := len(tx.Signatures); n != 1 {
		t.Fatalf("want one signature, got %d", n)
	}

	db := store.MemStore()
	migration.MustInitPkg(db, "sigs")
	conds, err := sigs.VerifyTxSignatures(db, tx, "test-chain")
	assert.Nil(t, err)
	assert.Equal(t, 1, len(conds))
}
