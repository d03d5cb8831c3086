package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tipjard "github.com/iov-one/tipjar/cmd/tipjard/app"
	"github.com/iov-one/weave/commands"
	"github.com/iov-one/weave/commands/server"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	flagHome = "home"
	varHome  *string
)

// gitHash is set at build time via -ldflags.
var gitHash = "dev"

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".tipjard")
	varHome = flag.String(flagHome, defaultHome, "directory to store files under")

	flag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("tipjard")
	fmt.Println("          Tip jar node")
	fmt.Println("")
	fmt.Println("help      Print this message")
	fmt.Println("init      Initialize app options in genesis file")
	fmt.Println("start     Run the abci server")
	fmt.Println("testgen   Write example serialized objects into a directory")
	fmt.Println("version   Print the app version")
	fmt.Println(`
  -home string
        directory to store files under (default "$HOME/.tipjard")`)
}

func main() {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).
		With("module", "tipjar")

	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	var err error
	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = server.InitCmd(tipjard.GenInitOptions, logger, *varHome, rest)
	case "start":
		err = server.StartCmd(tipjard.GenerateApp, logger, *varHome, rest)
	case "testgen":
		err = commands.TestGenCmd(tipjard.Examples(), rest)
	case "version":
		fmt.Println(gitHash)
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}
