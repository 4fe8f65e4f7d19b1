package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	flag "github.com/spf13/pflag"

	"code.extranets.org/golang/pkg/userstore"
	"code.extranets.org/golang/pkg/userstore/boltdb"
	"code.extranets.org/golang/pkg/userstore/pgdb"
)

// storeFlags selects a userstore.Store.
type storeFlags struct {
	dbpath   string
	dsn      string
	dbschema string
	migrate  bool
}

func (self *storeFlags) register(flags *flag.FlagSet) {
	flags.StringVarP(&self.dbpath, "db", "d", "", "path of the boltdb user database")
	flags.StringVar(&self.dsn, "dsn", "", "postgres user database connection string")
	flags.StringVar(&self.dbschema, "schema", "wsauth", "postgres schema created by --migrate")
	flags.BoolVar(&self.migrate, "migrate", false, "create the postgres users table if missing")
}

// open returns the selected Store and a function that releases it.
// It returns a MemStore if no database is selected and allowMem is set.
func (self *storeFlags) open(ctx context.Context, allowMem bool) (userstore.Store, func(), error) {
	switch {
	case "" != self.dbpath && "" != self.dsn:
		return nil, nil, fmt.Errorf("--db and --dsn are exclusive")

	case "" != self.dbpath:
		store, err := boltdb.New(self.dbpath)
		return store, func() {}, err

	case "" != self.dsn:
		if self.migrate {
			if err := self.runMigrate(ctx); nil != err {
				return nil, nil, err
			}
		}
		store, err := pgdb.NewUserStore(ctx, self.dsn)
		if nil != err {
			return nil, nil, err
		}
		return store, store.Close, nil

	case allowMem:
		return userstore.NewMemStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("missing --db or --dsn")
	}
}

func (self *storeFlags) runMigrate(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, self.dsn)
	if nil != err {
		return err
	}
	defer conn.Close(ctx)

	return pgdb.Migrate(ctx, conn, self.dbschema)
}

func runAddUser(progname string, args []string) error {
	var debug bool
	var stf storeFlags
	flags := newFlagSet(progname, &debug)
	stf.register(flags)
	parseFlags(flags, args, &debug)

	if 2 != flags.NArg() {
		flags.Usage()
		return fmt.Errorf("expected USER PASSWORD arguments, got %d arguments", flags.NArg())
	}

	ctx := context.Background()
	store, release, err := stf.open(ctx, false)
	if nil != err {
		return err
	}
	defer release()

	if err = store.SaveUser(ctx, flags.Arg(0), flags.Arg(1)); nil != err {
		return err
	}
	count, err := store.UserCount(ctx)
	if nil != err {
		return err
	}
	fmt.Printf("saved %s, %d users in store\n", flags.Arg(0), count)
	return nil
}

func runDelUser(progname string, args []string) error {
	var debug bool
	var stf storeFlags
	flags := newFlagSet(progname, &debug)
	stf.register(flags)
	parseFlags(flags, args, &debug)

	if 1 != flags.NArg() {
		flags.Usage()
		return fmt.Errorf("expected USER argument, got %d arguments", flags.NArg())
	}

	ctx := context.Background()
	store, release, err := stf.open(ctx, false)
	if nil != err {
		return err
	}
	defer release()

	if err = store.RemoveUser(ctx, flags.Arg(0)); nil != err {
		return err
	}
	fmt.Printf("removed %s\n", flags.Arg(0))
	return nil
}
