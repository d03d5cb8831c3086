package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/weavetest/assert"
)

func TestKeygenAndKeyaddr(t *testing.T) {
	dir, err := ioutil.TempDir("", "tipjarcli")
	if err != nil {
		t.Fatalf("cannot create directory: %s", err)
	}
	defer os.RemoveAll(dir)
	keyPath := filepath.Join(dir, "key")

	assert.Nil(t, cmdKeygen(nil, ioutil.Discard, []string{"-key", keyPath}))

	// An existing key must never be overwritten.
	if err := cmdKeygen(nil, ioutil.Discard, []string{"-key", keyPath}); err == nil {
		t.Fatal("keygen overwrote an existing key")
	}

	var output bytes.Buffer
	assert.Nil(t, cmdKeyaddr(nil, &output, []string{"-key", keyPath}))
	addr, err := weave.ParseAddress(strings.TrimSpace(output.String()))
	assert.Nil(t, err)

	key, err := decodePrivateKey(keyPath)
	assert.Nil(t, err)
	assert.Equal(t, key.PublicKey().Address(), addr)
}

func TestDecodeInvalidKey(t *testing.T) {
	path := mustCreateFile(t, bytes.NewReader([]byte("too short")))
	defer os.Remove(path)

	if _, err := decodePrivateKey(path); err == nil {
		t.Fatal("want an error for a malformed key")
	}
}

func TestSeededKeygen(t *testing.T) {
	dir, err := ioutil.TempDir("", "tipjarcli")
	if err != nil {
		t.Fatalf("cannot create directory: %s", err)
	}
	defer os.RemoveAll(dir)

	const seed = "000102030405060708090a0b0c0d0e0f"

	addrOf := func(name, path string) string {
		keyPath := filepath.Join(dir, name)
		args := []string{"-key", keyPath, "-seed", seed, "-path", path}
		assert.Nil(t, cmdKeygen(nil, ioutil.Discard, args))
		var output bytes.Buffer
		assert.Nil(t, cmdKeyaddr(nil, &output, []string{"-key", keyPath}))
		return output.String()
	}

	first := addrOf("a", "m/44'/234'/0'")
	again := addrOf("b", "m/44'/234'/0'")
	other := addrOf("c", "m/44'/234'/1'")
	if first != again {
		t.Fatal("the same seed and path must produce the same key")
	}
	if first == other {
		t.Fatal("different paths must produce different keys")
	}
}

func TestKeyaddrBech32(t *testing.T) {
	keyPath := mustCreateFile(t, bytes.NewReader(fromHex(t, privKeyHex)))
	defer os.Remove(keyPath)

	var output bytes.Buffer
	assert.Nil(t, cmdKeyaddr(nil, &output, []string{"-key", keyPath, "-bech32", "tiov"}))
	got := strings.TrimSpace(output.String())
	if !strings.HasPrefix(got, "tiov1") {
		t.Fatalf("unexpected bech32 address %q", got)
	}

	key, err := decodePrivateKey(keyPath)
	assert.Nil(t, err)
	want, err := toBech32("tiov", key.PublicKey().Address())
	assert.Nil(t, err)
	assert.Equal(t, want, got)
}
