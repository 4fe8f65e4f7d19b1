package main

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	flag "github.com/spf13/pflag"
)

const usageFmt = `
Command Usage: %s COMMAND [Flags] ARGS...
  Obfuscate, sign and check web service authentication requests.

Commands:
  encode        obfuscate TEXT
  decode        recover the text of an obfuscated TOKEN
  sign          sign name=value parameters
  verify        verify a signed QUERY
  authenticate  check USER PASSWORD against a remote service
  serve         run the authentication service
  adduser       add or update USER PASSWORD in a user database
  deluser       remove USER from a user database
  version       print the program version

Run "%s COMMAND --help" for the command flags.
`

// version is set at build time.
var version = "dev"

type command struct {
	run   func(progname string, args []string) error
	usage string
}

var commands map[string]command

func init() {
	// set in init, newFlagSet reads commands
	commands = map[string]command{
		"encode":       {run: runEncode, usage: "[Flags] TEXT"},
		"decode":       {run: runDecode, usage: "[Flags] TOKEN"},
		"sign":         {run: runSign, usage: "[Flags] name=value..."},
		"verify":       {run: runVerify, usage: "[Flags] QUERY"},
		"authenticate": {run: runAuthenticate, usage: "-u URL [Flags] USER PASSWORD"},
		"serve":        {run: runServe, usage: "[Flags]"},
		"adduser":      {run: runAddUser, usage: "-d DB | --dsn DSN USER PASSWORD"},
		"deluser":      {run: runDelUser, usage: "-d DB | --dsn DSN USER"},
	}
}

func main() {
	progname := path.Base(os.Args[0])
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usageFmt, progname, progname)
		os.Exit(2)
	}

	name := os.Args[1]
	if "version" == name || "--version" == name {
		fmt.Println(progname, version)
		return
	}
	cmd, found := commands[name]
	if !found {
		if "-h" != name && "--help" != name && "help" != name {
			echo("unknown command %q", name)
		}
		fmt.Fprintf(os.Stderr, usageFmt, progname, progname)
		os.Exit(2)
	}

	err := cmd.run(progname+" "+name, os.Args[2:])
	if nil != err {
		fatal("%s failed: %v", name, err)
	}
}

// newFlagSet returns a FlagSet holding the flags shared by all commands.
func newFlagSet(progname string, debug *bool) *flag.FlagSet {
	name := strings.Fields(progname)
	cmd := commands[name[len(name)-1]]

	flags := flag.NewFlagSet(progname, flag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "\nCommand Usage: %s %s\n\nFlags:\n%s", progname, cmd.usage, flags.FlagUsages())
	}
	flags.BoolVar(debug, "debug", false, "log at DEBUG level")
	return flags
}

// parseFlags parses args and configures the default Logger.
func parseFlags(flags *flag.FlagSet, args []string, debug *bool) {
	flags.Parse(args)

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func fatal(msg string, args ...any) {
	echo(msg, args...)
	os.Exit(1)
}

func echo(msg string, args ...any) {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
