package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"code.extranets.org/golang/internal/transport"
	"code.extranets.org/golang/pkg/wsauth"
)

func runAuthenticate(progname string, args []string) error {
	var debug bool
	var cf codecFlags
	var sf signerFlags
	flags := newFlagSet(progname, &debug)
	cf.register(flags)
	sf.register(flags, wsauth.DefaultValidityMinutes)
	baseURL := flags.StringP("url", "u", "", "service base URL, the signed query is appended to it")
	connect := flags.Duration("connect-timeout", wsauth.DefaultConnectTimeout, "connection timeout")
	read := flags.Duration("read-timeout", wsauth.DefaultReadTimeout, "response timeout")
	asJSON := flags.Bool("json", false, "print the outcome as JSON")
	parseFlags(flags, args, &debug)

	if 2 != flags.NArg() {
		flags.Usage()
		return fmt.Errorf("expected USER PASSWORD arguments, got %d arguments", flags.NArg())
	}
	codec, err := cf.codec()
	if nil != err {
		return err
	}
	client, err := wsauth.NewClient(
		*baseURL,
		wsauth.WithValidityMinutes(sf.validity),
		wsauth.WithSigningKey(sf.key),
		wsauth.WithSignerOptions(sf.options()...),
		wsauth.WithCodec(codec),
		wsauth.WithTimeouts(*connect, *read),
	)
	if nil != err {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	outcome, err := client.Authenticate(ctx, flags.Arg(0), flags.Arg(1))
	if nil != err {
		return err
	}

	if *asJSON {
		out, err := transport.JSONSerializer{Indent: "  "}.Marshal(outcome)
		if nil != err {
			return err
		}
		fmt.Println(string(out))
	} else {
		fmt.Println(outcome)
	}
	if !outcome.Status.Bool() {
		return fmt.Errorf("user %q %s", flags.Arg(0), outcome.Status)
	}
	return nil
}
