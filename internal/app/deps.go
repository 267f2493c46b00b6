package app

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/Image-Tagger/config"
	"github.com/andreyxaxa/Image-Tagger/internal/infrastructure/processor"
	"github.com/andreyxaxa/Image-Tagger/internal/infrastructure/rekognition"
	"github.com/andreyxaxa/Image-Tagger/internal/repo"
	"github.com/andreyxaxa/Image-Tagger/internal/repo/persistent"
	"github.com/andreyxaxa/Image-Tagger/internal/usecase/labeler"
	"github.com/andreyxaxa/Image-Tagger/pkg/awsclient"
	"github.com/andreyxaxa/Image-Tagger/pkg/logger"
	"github.com/andreyxaxa/Image-Tagger/pkg/postgres"
)

// deps are the clients both binaries share.
type deps struct {
	aws          *awsclient.Client
	imageRepo    *persistent.ImageRepo
	metadataRepo repo.ImageMetadataRepo

	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func newDeps(ctx context.Context, cfg *config.Config) (*deps, error) {
	d := &deps{}

	// aws
	awsCtx, awsCancel := context.WithTimeout(ctx, cfg.AWS.CfgLoadTimeout)
	defer awsCancel()

	opts := []awsclient.Option{
		awsclient.Endpoint(cfg.AWS.Endpoint),
		awsclient.DynamoDBEndpoint(cfg.AWS.DynamoEndpoint),
		awsclient.UsePathStyle(cfg.S3.UsePathStyle),
		awsclient.PingBucket(cfg.S3.Bucket),
	}
	if cfg.AWS.AccessKey != "" {
		opts = append(opts, awsclient.StaticCredentials(cfg.AWS.AccessKey, cfg.AWS.SecretKey))
	}

	awsc, err := awsclient.New(awsCtx, cfg.AWS.Region, opts...)
	if err != nil {
		return nil, fmt.Errorf("app - newDeps - awsclient.New: %w", err)
	}

	d.aws = awsc
	d.imageRepo = persistent.NewImageRepo(awsc, cfg.S3.Bucket, cfg.AWS.Region, cfg.AWS.Endpoint)

	// records
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
		if err != nil {
			return nil, fmt.Errorf("app - newDeps - postgres.New: %w", err)
		}

		d.closers = append(d.closers, pg.Close)
		d.metadataRepo = persistent.NewImagePostgresRepo(pg)
	default:
		d.metadataRepo = persistent.NewImageDynamoRepo(awsc.DynamoDB, cfg.DynamoDB.Table)
	}

	return d, nil
}

func newLabeler(cfg *config.Config, d *deps, l logger.Interface) *labeler.LabelerUseCase {
	return labeler.New(
		rekognition.New(d.aws.Rekognition),
		processor.New(),
		d.imageRepo,
		d.metadataRepo,
		labeler.Options{
			MinConfidence:  cfg.Labeler.MinConfidence,
			MaxLabels:      cfg.Labeler.MaxLabels,
			MaxTags:        cfg.Labeler.MaxTags,
			InlineBytes:    cfg.Labeler.ImageSource == config.SourceBytes,
			MaxInlineBytes: rekognition.MaxInlineBytes,
		},
		l,
	)
}
