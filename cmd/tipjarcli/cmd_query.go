package main

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iov-one/tipjar/cmd/tipjard/client"
	"github.com/iov-one/tipjar/x/tipjar"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
)

func cmdQuery(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Execute a ABCI query and print JSON encoded result.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultNode(),
			"Tendermint node address. You can use TIPJARCLI_TM_ADDR environment variable to set it.")
		pathFl        = fl.String("path", "", "Path to be queried. Must be one of the supported.")
		dataFl        = fl.String("data", "", "Individual query data. Format depends on the queried entity. Use 'jar/address' for tipbalances.")
		prefixQueryFl = fl.Bool("prefix", false, "If true, use prefix queries instead of the exact match with provided data.")
	)
	fl.Parse(args)

	conf, ok := queries[*pathFl]
	if !ok {
		paths := make([]string, 0, len(queries))
		for p := range queries {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		return fmt.Errorf("available query paths:\n\t- %s", strings.Join(paths, "\n\t- "))
	}

	var data []byte
	if len(*dataFl) != 0 {
		var err error
		if data, err = conf.encID(*dataFl); err != nil {
			return fmt.Errorf("can not encode data: %s", err)
		}
	}
	queryPath := *pathFl
	if *prefixQueryFl || *dataFl == "" {
		queryPath += "?" + weave.PrefixQueryMod
	}

	tipClient := client.Dial(*tmAddrFl)
	resp, err := tipClient.Query(queryPath, data)
	if err != nil {
		return fmt.Errorf("failed to run query: %s", err)
	}
	return printModels(output, conf.newObj, conf.decKey, resp.Models)
}

func printModels(output io.Writer, newObj func() model, decKey func([]byte) (string, error), models []weave.Model) error {
	result := make([]keyval, 0, len(models))
	for i, m := range models {
		obj := newObj()
		if err := obj.Unmarshal(m.Value); err != nil {
			return fmt.Errorf("failed to unmarshal model %d: %s", i, err)
		}
		key, err := decKey(m.Key)
		if err != nil {
			return fmt.Errorf("cannot decode %x key: %s", m.Key, err)
		}
		result = append(result, keyval{Key: key, Value: obj})
	}
	pretty, err := json.MarshalIndent(result, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = output.Write(pretty)
	return err
}

type keyval struct {
	Key   string
	Value model
}

// queries contains a mapping of query path to that query specifics. Each query
// returns a custom model type and may use different ID encoding pattern.
var queries = map[string]struct {
	// newObj returns a new instance of the model that the result of the
	// ABCI query should be extracted into.
	newObj func() model
	// decKey is used to decode key value returned by the ABCI query and
	// transform it into human readable form.
	decKey func([]byte) (string, error)
	// encID is used to parse input format of the ID and encode it into
	// form that will be passed to the ABCI query. The format can differ
	// from decKey if we use secondary index for matching.
	encID func(string) ([]byte, error)
}{
	"/tipjars": {
		newObj: func() model { return &tipjar.Jar{} },
		decKey: sequenceKey,
		encID:  unpackSequence,
	},
	"/tipjars/admin": {
		newObj: func() model { return &tipjar.Jar{} },
		decKey: sequenceKey,
		encID:  addressID,
	},
	"/tipjars/account": {
		newObj: func() model { return &tipjar.Jar{} },
		decKey: sequenceKey,
		encID:  addressID,
	},
	"/tipbalances": {
		newObj: func() model { return &tipjar.Balance{} },
		decKey: balanceKey,
		encID:  balanceID,
	},
	"/tipbalances/jar": {
		newObj: func() model { return &tipjar.Balance{} },
		decKey: balanceKey,
		encID:  unpackSequence,
	},
	"/tipbalances/depositor": {
		newObj: func() model { return &tipjar.Balance{} },
		decKey: balanceKey,
		encID:  addressID,
	},
	"/tipevents": {
		newObj: func() model { return &tipjar.Event{} },
		decKey: sequenceKey,
		encID:  unpackSequence,
	},
	"/tipevents/jar": {
		newObj: func() model { return &tipjar.Event{} },
		decKey: sequenceKey,
		encID:  unpackSequence,
	},
	"/wallets": {
		newObj: func() model { return &cash.Set{} },
		decKey: rawKey,
		encID:  addressID,
	},
	"/auth": {
		newObj: func() model { return &sigs.UserData{} },
		decKey: rawKey,
		encID:  addressID,
	},
}

// model is an entity used by weave to store data. This interface is
// implemented by any protobuf message.
type model interface {
	Unmarshal([]byte) error
}

func addressID(s string) ([]byte, error) {
	return weave.ParseAddress(s)
}

// balanceID expects `jar/address` pair.
func balanceID(s string) ([]byte, error) {
	tokens := strings.Split(s, "/")
	if len(tokens) != 2 {
		return nil, errors.New("invalid balance format, use 'jar/address'")
	}
	jarID, err := unpackSequence(tokens[0])
	if err != nil {
		return nil, fmt.Errorf("cannot decode jar: %s", err)
	}
	addr, err := weave.ParseAddress(tokens[1])
	if err != nil {
		return nil, fmt.Errorf("cannot decode address: %s", err)
	}
	return tipjar.BalanceKey(jarID, addr), nil
}

func balanceKey(raw []byte) (string, error) {
	// Skip the prefix, being the characters before : (including separator)
	val := raw[bytes.Index(raw, []byte(":"))+1:]
	if len(val) <= 8 {
		return "", fmt.Errorf("invalid balance key length: %d", len(val))
	}
	jar := binary.BigEndian.Uint64(val[:8])
	return fmt.Sprintf("%d/%s", jar, weave.Address(val[8:])), nil
}

func sequenceKey(raw []byte) (string, error) {
	// Skip the prefix, being the characters before : (including separator)
	seq := raw[bytes.Index(raw, []byte(":"))+1:]
	if len(seq) != 8 {
		return "", fmt.Errorf("invalid sequence length: %d", len(seq))
	}
	n := binary.BigEndian.Uint64(seq)
	return fmt.Sprint(int64(n)), nil
}

func rawKey(raw []byte) (string, error) {
	return hex.EncodeToString(raw), nil
}
