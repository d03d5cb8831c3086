package app

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/iov-one/tipjar/x/tipjar"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/commands/server"
	"github.com/iov-one/weave/crypto"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/msgfee"
	abci "github.com/tendermint/tendermint/abci/types"
)

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode. The same account administers the first jar
// and owns all configurations.
//
// You can set the ticker and the address of the rich account with the
// first two arguments.
func GenInitOptions(args []string) (json.RawMessage, error) {
	ticker := "IOV"
	if len(args) > 0 {
		ticker = args[0]
		if !coin.IsCC(ticker) {
			return nil, errors.Wrapf(errors.ErrCurrency, "invalid ticker %s", ticker)
		}
	}

	var addr string
	if len(args) > 1 {
		addr = args[1]
	} else {
		// if no address provided, auto-generate one
		// and print out the keys
		bz, keys, err := generateCoinKey()
		if err != nil {
			return nil, errors.Wrap(err, "cannot generate key")
		}
		addr = bz.String()
		fmt.Println(keys)
	}

	opts := fmt.Sprintf(`
{
	"cash": [
		{
			"address": %[1]q,
			"coins": [
				{"whole": 123456789, "ticker": %[2]q}
			]
		}
	],
	"tipjar": [
		{"admin": %[1]q, "ticker": %[2]q}
	],
	"msgfee": [
		{"msg_path": "tipjar/create_jar", "fee": {"whole": 1, "ticker": %[2]q}}
	],
	"conf": {
		"cash": {
			"metadata": {"schema": 1},
			"owner": %[1]q,
			"collector_address": %[1]q,
			"minimal_fee": {"whole": 0, "ticker": %[2]q}
		},
		"migration": {
			"metadata": {"schema": 1},
			"admin": %[1]q
		},
		"tipjar": {
			"metadata": {"schema": 1},
			"owner": %[1]q,
			"max_memo_length": 128
		}
	},
	"initialize_schema": [
		{"pkg": "cash", "ver": 1},
		{"pkg": "migration", "ver": 1},
		{"pkg": "msgfee", "ver": 1},
		{"pkg": "sigs", "ver": 1},
		{"pkg": "tipjar", "ver": 1}
	]
}
	`, addr, ticker)
	return []byte(opts), nil
}

// generateCoinKey returns the address of a new key pair along with a json
// representation of both keys, so that they can be imported into a client.
func generateCoinKey() (weave.Address, string, error) {
	privKey := crypto.GenPrivKeyEd25519()
	pubKey := privKey.PublicKey()
	out := struct {
		Pubkey *crypto.PublicKey  `json:"pub_key"`
		Secret *crypto.PrivateKey `json:"secret"`
	}{Pubkey: pubKey, Secret: privKey}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", errors.Wrap(err, "cannot serialize keys")
	}
	return pubKey.Address(), string(keys), nil
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(options *server.Options) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if options.Home != "" {
		dbPath = filepath.Join(options.Home, "tipjar.db")
	}

	application, err := Application("tipjard", Stack(), TxDecoder, dbPath, options)
	if err != nil {
		return nil, err
	}
	application.WithInit(app.ChainInitializers(
		&migration.Initializer{},
		&cash.Initializer{},
		&msgfee.Initializer{},
		&tipjar.Initializer{},
	))

	// set the logger and return
	application.WithLogger(options.Logger)
	return application, nil
}
