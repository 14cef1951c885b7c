package main

import (
	"context"
	"log"

	"github.com/locvowork/attrition_datahub/internal/bootstrap"
	"github.com/locvowork/attrition_datahub/internal/logger"
)

func main() {
	ctx := context.Background()

	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		logger.ErrorLog(ctx, "Server stopped with error: %v", err)
		log.Fatal(err)
	}
}
