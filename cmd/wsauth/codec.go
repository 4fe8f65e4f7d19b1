package main

import (
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"code.extranets.org/golang/internal/algos"
	"code.extranets.org/golang/pkg/obfs"
	"code.extranets.org/golang/pkg/paramsig"
	"code.extranets.org/golang/pkg/wsauth"
)

// codecFlags configures an obfs.Codec.
type codecFlags struct {
	padding int
	key     string
}

func (self *codecFlags) register(flags *flag.FlagSet) {
	flags.IntVarP(&self.padding, "padding", "p", obfs.DefaultPadding, "number of random letters around the text")
	flags.StringVar(&self.key, "obfs-key", obfs.DefaultKey, "obfuscation key")
}

func (self *codecFlags) codec() (*obfs.Codec, error) {
	return obfs.New(obfs.WithPadding(self.padding), obfs.WithKey(self.key))
}

// signerFlags configures a paramsig.Signer.
type signerFlags struct {
	key      string
	validity int
	hash     string
	legacy   bool
}

func (self *signerFlags) register(flags *flag.FlagSet, defaultValidity int) {
	flags.StringVarP(&self.key, "key", "k", wsauth.DefaultSigningKey, "signing key")
	flags.IntVarP(&self.validity, "validity", "m", defaultValidity, "validity of signatures in minutes")
	flags.StringVar(&self.hash, "hash", paramsig.DefaultHash, fmt.Sprintf("digest algorithm, one of %v", algos.ListHashes()))
	flags.BoolVar(&self.legacy, "legacy", false, fmt.Sprintf("name date & signature parameters %s & %s", paramsig.LegacyDateName, paramsig.LegacySignatureName))
}

func (self *signerFlags) options() []paramsig.Option {
	opts := []paramsig.Option{paramsig.WithHash(self.hash)}
	if self.legacy {
		opts = append(opts, paramsig.WithReservedNames(paramsig.LegacyDateName, paramsig.LegacySignatureName))
	}
	return opts
}

func (self *signerFlags) signer(extra ...paramsig.Option) (*paramsig.Signer, error) {
	opts := append([]paramsig.Option{paramsig.WithValidityMinutes(self.validity)}, self.options()...)
	return paramsig.New(self.key, append(opts, extra...)...)
}

func runEncode(progname string, args []string) error {
	var debug bool
	var cf codecFlags
	flags := newFlagSet(progname, &debug)
	cf.register(flags)
	parseFlags(flags, args, &debug)

	if 1 != flags.NArg() {
		flags.Usage()
		return fmt.Errorf("expected 1 TEXT argument, got %d", flags.NArg())
	}
	codec, err := cf.codec()
	if nil != err {
		return err
	}
	token, err := codec.Encode(flags.Arg(0))
	if nil != err {
		return err
	}
	fmt.Println(token)
	return nil
}

func runDecode(progname string, args []string) error {
	var debug bool
	var cf codecFlags
	flags := newFlagSet(progname, &debug)
	cf.register(flags)
	parseFlags(flags, args, &debug)

	if 1 != flags.NArg() {
		flags.Usage()
		return fmt.Errorf("expected 1 TOKEN argument, got %d", flags.NArg())
	}
	codec, err := cf.codec()
	if nil != err {
		return err
	}
	text, err := codec.Decode(flags.Arg(0))
	if nil != err {
		return err
	}
	fmt.Println(text)
	return nil
}

func runSign(progname string, args []string) error {
	var debug bool
	var sf signerFlags
	flags := newFlagSet(progname, &debug)
	sf.register(flags, int(paramsig.DefaultValidity.Minutes()))
	parseFlags(flags, args, &debug)

	params := paramsig.Params{}
	for _, arg := range flags.Args() {
		name, value, found := strings.Cut(arg, "=")
		if !found {
			return fmt.Errorf("invalid parameter %q, expected name=value", arg)
		}
		params[name] = value
	}
	signer, err := sf.signer()
	if nil != err {
		return err
	}
	query, err := signer.Sign(params)
	if nil != err {
		return err
	}
	fmt.Println(query)
	return nil
}

func runVerify(progname string, args []string) error {
	var debug bool
	var sf signerFlags
	flags := newFlagSet(progname, &debug)
	sf.register(flags, int(paramsig.DefaultValidity.Minutes()))
	parseFlags(flags, args, &debug)

	if 1 != flags.NArg() {
		flags.Usage()
		return fmt.Errorf("expected 1 QUERY argument, got %d", flags.NArg())
	}
	signer, err := sf.signer()
	if nil != err {
		return err
	}
	query := flags.Arg(0)
	if _, rawQuery, found := strings.Cut(query, "?"); found {
		query = rawQuery
	}
	if !signer.VerifyQuery(query) {
		return fmt.Errorf("invalid signature, run with --debug for details")
	}
	fmt.Println("valid")
	return nil
}
