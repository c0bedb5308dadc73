package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/astravon/portal/core"
	"github.com/astravon/portal/core/session"
	logsvc "github.com/astravon/portal/services/logger"
	"github.com/astravon/portal/services/portalapi"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.New(os.Stderr, "FEED : ", log.LstdFlags, conf)

	store := session.NewFileStore(conf.Client.SessionFile, logger)
	cli := commandLine{
		store:  store,
		guard:  session.NewGuard(conf.AdminMails...),
		api:    portalapi.New(conf.Client.APIURL, func() string { return store.Load().Token() }),
		hubURL: conf.Client.HubURL,
		origin: conf.Client.APIURL,
		logger: logger,
		out:    os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cli.run(ctx, os.Args)
	stop()
	if err != nil {
		if err != errHelp && err != errDenied {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}
