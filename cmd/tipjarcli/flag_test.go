package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"flag"
	"io/ioutil"
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/weavetest/assert"
)

func TestSeqFlag(t *testing.T) {
	cases := map[string]struct {
		setup     func(fl *flag.FlagSet) *flagseq
		args      []string
		wantDie   int
		wantError bool
		wantVal   []byte
	}{
		"use default value, decimal representation": {
			setup: func(fl *flag.FlagSet) *flagseq {
				return flSeq(fl, "x", "1", "")
			},
			args:    []string{},
			wantVal: sequenceID(1),
		},
		"no default value": {
			setup: func(fl *flag.FlagSet) *flagseq {
				return flSeq(fl, "x", "", "")
			},
			args:    []string{},
			wantVal: nil,
		},
		"parse decimal representation": {
			setup: func(fl *flag.FlagSet) *flagseq {
				return flSeq(fl, "x", "1", "")
			},
			args:    []string{"-x", "123"},
			wantVal: sequenceID(123),
		},
		"parse hex representation": {
			setup: func(fl *flag.FlagSet) *flagseq {
				return flSeq(fl, "x", "1", "")
			},
			args:    []string{"-x", "hex:" + hex.EncodeToString(sequenceID(987654))},
			wantVal: sequenceID(987654),
		},
		"parse base64 representation": {
			setup: func(fl *flag.FlagSet) *flagseq {
				return flSeq(fl, "x", "1", "")
			},
			args:    []string{"-x", "base64:" + base64.StdEncoding.EncodeToString(sequenceID(987654))},
			wantVal: sequenceID(987654),
		},
		"invalid default value": {
			setup: func(fl *flag.FlagSet) *flagseq {
				return flSeq(fl, "x", "zero", "")
			},
			args:    []string{},
			wantDie: 1,
		},
		"invalid argument value": {
			setup: func(fl *flag.FlagSet) *flagseq {
				return flSeq(fl, "x", "1", "")
			},
			args:      []string{"-x", "0"},
			wantError: true,
			wantVal:   sequenceID(1),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			cnt, cleanup := observeFlagDie(t)
			defer cleanup()

			fl := flag.NewFlagSet("", flag.ContinueOnError)
			fl.SetOutput(ioutil.Discard)
			val := tc.setup(fl)
			err := fl.Parse(tc.args)
			if !tc.wantError {
				assert.Nil(t, err)
			} else if err == nil {
				t.Fatal("Expected error but got none")
			}
			if *cnt != tc.wantDie {
				t.Errorf("want %d flagDie calls, got %d", tc.wantDie, *cnt)
			}
			if tc.wantDie == 0 && !bytes.Equal(*val, tc.wantVal) {
				t.Errorf("want %q value, got %q", tc.wantVal, *val)
			}
		})
	}
}

func TestAddressFlag(t *testing.T) {
	cases := map[string]struct {
		setup     func(fl *flag.FlagSet) *weave.Address
		args      []string
		wantDie   int
		wantError bool
		wantVal   weave.Address
	}{
		"use default value": {
			setup: func(fl *flag.FlagSet) *weave.Address {
				return flAddress(fl, "x", "b1ca7e78f74423ae01da3b51e676934d9105f282", "")
			},
			args:    []string{},
			wantVal: fromHex(t, "b1ca7e78f74423ae01da3b51e676934d9105f282"),
		},
		"parse hex address": {
			setup: func(fl *flag.FlagSet) *weave.Address {
				return flAddress(fl, "x", "", "")
			},
			args:    []string{"-x", "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0"},
			wantVal: fromHex(t, "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0"),
		},
		"invalid default value": {
			setup: func(fl *flag.FlagSet) *weave.Address {
				return flAddress(fl, "x", "not an address", "")
			},
			args:    []string{},
			wantDie: 1,
		},
		"invalid argument": {
			setup: func(fl *flag.FlagSet) *weave.Address {
				return flAddress(fl, "x", "", "")
			},
			args:      []string{"-x", "zzz"},
			wantError: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			cnt, cleanup := observeFlagDie(t)
			defer cleanup()

			fl := flag.NewFlagSet("", flag.ContinueOnError)
			fl.SetOutput(ioutil.Discard)
			addr := tc.setup(fl)
			err := fl.Parse(tc.args)
			if !tc.wantError {
				assert.Nil(t, err)
			} else if err == nil {
				t.Fatal("Expected error but got none")
			}
			if *cnt != tc.wantDie {
				t.Errorf("want %d flagDie calls, got %d", tc.wantDie, *cnt)
			}
			if tc.wantDie == 0 && !tc.wantError && !addr.Equals(tc.wantVal) {
				t.Errorf("want %q address, got %q", tc.wantVal, *addr)
			}
		})
	}
}

func TestCoinFlag(t *testing.T) {
	cnt, cleanup := observeFlagDie(t)
	defer cleanup()

	fl := flag.NewFlagSet("", flag.ContinueOnError)
	fl.SetOutput(ioutil.Discard)
	c := flCoin(fl, "x", "1 IOV", "")
	assert.Nil(t, fl.Parse([]string{"-x", "4.5 DOGE"}))
	assert.Equal(t, 0, *cnt)
	assert.Equal(t, coin.NewCoin(4, 500000000, "DOGE"), *c)
}

// observeFlagDie returns a pointer to the counter of how many times flagDie
// was called. Until the cleanup function is called, flagDie execution does not
// terminate the program.
func observeFlagDie(t testing.TB) (*int, func()) {
	t.Helper()

	original := flagDie

	var cnt int
	flagDie = func(s string, args ...interface{}) {
		cnt++
	}
	cleanup := func() {
		flagDie = original
	}
	return &cnt, cleanup
}
