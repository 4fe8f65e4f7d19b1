package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.extranets.org/golang/internal/observability"
	"code.extranets.org/golang/pkg/paramsig"
	"code.extranets.org/golang/pkg/wsauth"
)

func runServe(progname string, args []string) error {
	var debug bool
	var cf codecFlags
	var sf signerFlags
	var stf storeFlags
	flags := newFlagSet(progname, &debug)
	cf.register(flags)
	sf.register(flags, wsauth.DefaultValidityMinutes)
	stf.register(flags)
	addr := flags.StringP("addr", "a", "localhost:8080", "listen address")
	route := flags.String("path", "/auth", "path of the authentication endpoint")
	replay := flags.Bool("reject-replay", false, "reject signatures presented more than once")
	parseFlags(flags, args, &debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := slog.Default().With("service", "wsauth")

	codec, err := cf.codec()
	if nil != err {
		return err
	}
	extra := []paramsig.Option{paramsig.WithLogger(log)}
	if *replay {
		guard, err := paramsig.NewReplayGuard(time.Duration(sf.validity) * time.Minute)
		if nil != err {
			return err
		}
		extra = append(extra, paramsig.WithReplayGuard(guard))
	}
	signer, err := sf.signer(extra...)
	if nil != err {
		return err
	}

	users, release, err := stf.open(ctx, true)
	if nil != err {
		return err
	}
	defer release()
	if count, err := users.UserCount(ctx); nil == err && 0 == count {
		log.Warn("user store is empty, every authentication will fail")
	}

	endpoint, err := wsauth.NewAuthEndpoint(signer, codec, users)
	if nil != err {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(*route, endpoint)
	mw := observability.Middleware{Logger: log}
	srv := &http.Server{
		Addr:              *addr,
		Handler:           mw.Wrap(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", *addr, "path", *route)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err = <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	<-errc // http.ErrServerClosed

	return err
}
