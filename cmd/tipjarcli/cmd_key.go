package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/crypto"
	"github.com/stellar/go/exp/crypto/derivation"
	"golang.org/x/crypto/ed25519"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new private key.

When successful a new file with binary content containing private key is
created. This command fails if the private key file already exists.

A random key is created unless a hex encoded seed is given. A seeded key is
derived using the given derivation path.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use TIPJARCLI_PRIV_KEY environment variable to set it.")
		seedFl = fl.String("seed", "", "Optional hex encoded seed to derive the key from.")
		pathFl = fl.String("path", "m/44'/234'/0'", "Derivation path used together with the seed.")
	)
	fl.Parse(args)

	if _, err := os.Stat(*keyPathFl); !os.IsNotExist(err) {
		// Do not allow to overwrite already existing private key. User
		// must manually delete it first.
		return fmt.Errorf("private key file %q already exists, delete this file and try again", *keyPathFl)
	}

	var priv ed25519.PrivateKey
	if *seedFl == "" {
		_, k, err := ed25519.GenerateKey(nil)
		if err != nil {
			return fmt.Errorf("cannot generate ed25519 key: %s", err)
		}
		priv = k
	} else {
		seed, err := hex.DecodeString(*seedFl)
		if err != nil {
			return fmt.Errorf("cannot decode seed: %s", err)
		}
		k, err := deriveKey(seed, *pathFl)
		if err != nil {
			return err
		}
		priv = k
	}

	fd, err := os.OpenFile(*keyPathFl, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("cannot create private key file: %s", err)
	}
	defer fd.Close()

	if _, err := fd.Write(priv); err != nil {
		return fmt.Errorf("cannot write private key: %s", err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("cannot close private key file: %s", err)
	}
	return nil
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out a hex-address associated with your private key.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use TIPJARCLI_PRIV_KEY environment variable to set it.")
		bechFl = fl.String("bech32", "", "Optional human readable prefix. If given, the address is printed in bech32 format.")
	)
	fl.Parse(args)

	key, err := decodePrivateKey(*keyPathFl)
	if err != nil {
		return err
	}
	addr := key.PublicKey().Address()
	if *bechFl == "" {
		_, err = fmt.Fprintln(output, addr)
		return err
	}
	b, err := toBech32(*bechFl, addr)
	if err != nil {
		return fmt.Errorf("cannot serialize to bech32: %s", err)
	}
	_, err = fmt.Fprintln(output, b)
	return err
}

// deriveKey returns an ed25519 private key derived from the seed using the
// SLIP-0010 derivation path.
func deriveKey(seed []byte, path string) (ed25519.PrivateKey, error) {
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, fmt.Errorf("cannot derive key for path %q: %s", path, err)
	}
	return ed25519.NewKeyFromSeed(k.Key), nil
}

func toBech32(prefix string, addr weave.Address) (string, error) {
	data, err := bech32.ConvertBits(addr, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("cannot convert bits: %s", err)
	}
	return bech32.Encode(prefix, data)
}

// decodePrivateKey reads a raw ed25519 private key as written by keygen.
func decodePrivateKey(filepath string) (*crypto.PrivateKey, error) {
	data, err := ioutil.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("cannot read %q file: %s", filepath, err)
	}
	if len(data) != ed25519.PrivateKeySize {
		return nil, errors.New("invalid key length")
	}
	key := &crypto.PrivateKey{
		Priv: &crypto.PrivateKey_Ed25519{Ed25519: data},
	}
	return key, nil
}
