package main

import (
	"os"
)

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

// defaultNode is the node address used when no -tm flag is given.
func defaultNode() string {
	return env("TIPJARCLI_TM_ADDR", "http://localhost:26657")
}

// defaultKeyPath is the private key location used when no -key flag is given.
func defaultKeyPath() string {
	return env("TIPJARCLI_PRIV_KEY", os.Getenv("HOME")+"/.tipjard.priv.key")
}
