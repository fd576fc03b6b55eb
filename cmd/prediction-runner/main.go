package main

import (
	"context"
	"os"

	"github.com/cardiosense-ai/platform/pkg/common/config"
	"github.com/cardiosense-ai/platform/pkg/common/httpclient"
	"github.com/cardiosense-ai/platform/pkg/common/logger"
	"github.com/cardiosense-ai/platform/pkg/ml/dataset"
	"github.com/cardiosense-ai/platform/pkg/ml/trainer"
	"github.com/cardiosense-ai/platform/pkg/pipeline"
	"github.com/cardiosense-ai/platform/pkg/scoring"
)

// prediction-runner is a one-shot batch: ensure a trained model exists,
// fetch the latest patient, score it, and log the outcome through the
// patient service. Re-running on failure is the operator's call; nothing
// here retries.
func main() {
	logger.Init()
	cfg := config.Load()

	ctx := context.Background()
	httpClient := httpclient.New(cfg.APIRequestTimeout)

	source := &dataset.ClevelandSource{URL: cfg.DatasetURL, Client: httpClient}
	model, err := trainer.EnsureModel(ctx, cfg.ModelArtifactPath, source, trainer.Options{
		Epochs:       cfg.TrainEpochs,
		LearningRate: cfg.TrainLearningRate,
	})
	if err != nil {
		logger.Log.WithError(err).Error("no usable model")
		os.Exit(1)
	}

	scorer, err := scoring.New(model)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load scorer")
		os.Exit(1)
	}

	client := pipeline.NewClient(cfg.PatientAPIBaseURL, httpClient)
	runner := pipeline.NewRunner(client, scorer)

	result, err := runner.Run(ctx)
	if err != nil {
		entry := logger.WithFields(result.Fields())
		if result.Scored {
			// Scored but unlogged: surface the computed values even
			// though persistence failed.
			entry.WithError(err).Error("prediction computed but not logged")
		} else {
			entry.WithError(err).Error("prediction pipeline failed")
		}
		os.Exit(1)
	}

	logger.WithFields(result.Fields()).Info("prediction logged")
}
