package main

import (
	"context"
	"os"
	"strings"

	"github.com/nimasrn/banking-ledger/internal/config"
	"github.com/nimasrn/banking-ledger/internal/repository"
	"github.com/nimasrn/banking-ledger/internal/services"
	"github.com/nimasrn/banking-ledger/internal/shell"
	"github.com/nimasrn/banking-ledger/pkg/logger"
	"github.com/nimasrn/banking-ledger/pkg/pg"
	"github.com/nimasrn/banking-ledger/pkg/prom"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	pgConf := pg.Config{
		User:     config.Get().PostgresUser,
		Host:     config.Get().PostgresHost,
		Port:     config.Get().PostgresPort,
		Password: config.Get().PostgresPassword,
		Database: config.Get().PostgresDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" && config.Get().AppDebug {
		pgDebug = true
	}

	// A dead database is fatal here: the process has nothing to do
	// without its store.
	db, err := pg.Connect(pgConf, pgDebug)
	if err != nil {
		logger.Fatal(err, "stage", "pg.Connect")
		return
	}
	defer db.Close()

	if addr := config.Get().AppDebugMetricsAddr; addr != "" {
		host, _ := os.Hostname()
		if err := prom.Create(host, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
			logger.Error("failed creating metrics", "error", err)
		} else {
			go prom.ListenAndServe(addr, config.Get().AppDebugMetricsURI)
		}
	}

	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	accountService := services.NewAccountService(accountRepo, config.Get().MinOpeningBalance)
	sessionService := services.NewSessionService(accountRepo, transactionRepo)

	logger.Info("banking-ledger starting", "version", version, "commit", commit, "date", date)

	sh := shell.NewShell(accountService, sessionService, os.Stdin, os.Stdout)
	if err := sh.Run(context.Background()); err != nil {
		logger.Error("shell exited with error", "error", err)
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
