package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
)

// flagDie terminates the program when a flag value is invalid. It is a
// variable so that tests can observe calls without exiting.
var flagDie = func(description string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, description, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(2)
}

// flAddress returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flAddress(fl *flag.FlagSet, name, defaultVal, usage string) *weave.Address {
	var a weave.Address
	if defaultVal != "" {
		var err error
		a, err = weave.ParseAddress(defaultVal)
		if err != nil {
			flagDie("Cannot parse %q weave.Address flag value. %s", name, err)
		}
	}
	fl.Var(&a, name, usage)
	return &a
}

// flCoin returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flCoin(fl *flag.FlagSet, name, defaultVal, usage string) *coin.Coin {
	var c coin.Coin
	if defaultVal != "" {
		var err error
		c, err = coin.ParseHumanFormat(defaultVal)
		if err != nil {
			flagDie("Cannot parse %q weave.Coin flag value. %s", name, err)
		}
	}
	fl.Var(&c, name, usage)
	return &c
}

// flSeq returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. Any
// format accepted by unpackSequence can be used.
// If given value cannot be deserialized to required type, process is
// terminated.
func flSeq(fl *flag.FlagSet, name, defaultVal, usage string) *flagseq {
	var b []byte
	if defaultVal != "" {
		var err error
		b, err = unpackSequence(defaultVal)
		if err != nil {
			flagDie("Cannot parse %q sequence flag value. %s", name, err)
		}
	}
	fs := flagseq(b)
	fl.Var(&fs, name, usage)
	return &fs
}

type flagseq []byte

func (s flagseq) String() string {
	n, err := fromSequence(s)
	if err != nil {
		return ""
	}
	return fmt.Sprint(n)
}

func (s *flagseq) Set(raw string) error {
	val, err := unpackSequence(raw)
	if err != nil {
		return err
	}
	*s = val
	return nil
}
