package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/UNO-SOFT/zlog/v2"
	"github.com/gin-gonic/gin"
	"github.com/peterbourgon/ff/v3"
)

const ExitCodeMainError = 1

var verbose zlog.VerboseVar
var logger = zlog.NewLogger(zlog.MaybeConsoleHandler(&verbose, os.Stderr)).SLog()

func RunApp(args []string) error {
	gin.SetMode(gin.ReleaseMode)

	fs := flag.NewFlagSet("sheetgrid", flag.ContinueOnError)
	flagDbPath := fs.String("database-filepath", "", "bbolt database file path")
	flagListenAddr := fs.String("listen-addr", ":8080", "HTTP listen address")
	fs.Var(&verbose, "v", "verbose logging")

	if err := ff.Parse(fs, args, ff.WithEnvVarNoPrefix()); err != nil {
		return err
	}

	serviceContainer, err := BuildServiceContainer(*flagDbPath)

	if err == nil {
		serviceContainer.WebhookDispatcher.Start()
		defer serviceContainer.WebhookDispatcher.Close()
		defer serviceContainer.Database.Close()

		logger.Info("listening", "addr", *flagListenAddr)
		err = http.ListenAndServe(*flagListenAddr, serviceContainer.Router)
	}

	return err
}

func HandleExitError(errStream io.Writer, err error) int {
	if err != nil {
		_, _ = fmt.Fprintln(errStream, err)
	}

	if err != nil {
		return ExitCodeMainError
	}

	return 0
}
