package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jacksonlee411/jobdesk/internal/assoctool"
	"github.com/jacksonlee411/jobdesk/internal/logging"
	"go.uber.org/zap"
)

func main() {
	logger, err := logging.NewFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	if err := assoctool.NewRootCommand(logger).ExecuteContext(context.Background()); err != nil {
		logger.Error("assoctool failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
