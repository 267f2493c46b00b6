package app

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/Image-Tagger/config"
	lambdactrl "github.com/andreyxaxa/Image-Tagger/internal/controller/lambda"
	"github.com/andreyxaxa/Image-Tagger/pkg/logger"
	"github.com/aws/aws-lambda-go/lambda"
)

// RunLabeler serves the labeling worker as a Lambda function.
func RunLabeler(cfg *config.Config) {
	l := logger.New(cfg.Log.Level)

	// clients are created once per execution environment and reused across invocations
	d, err := newDeps(context.Background(), cfg)
	if err != nil {
		l.Fatal(fmt.Errorf("app - RunLabeler - newDeps: %w", err))
	}

	handler := lambdactrl.New(newLabeler(cfg, d, l), l)

	lambda.Start(handler.Handle)
}
