package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/akuity/redeployer/internal/awsclient"
	"github.com/akuity/redeployer/internal/config"
	"github.com/akuity/redeployer/internal/logging"
	"github.com/akuity/redeployer/internal/redeploy"
	versionpkg "github.com/akuity/redeployer/internal/version"
)

// errRedeployFailed is returned by commands that completed an invocation in
// which at least one candidate or reconciler failed.
var errRedeployFailed = errors.New("one or more redeploys failed")

// newHandler loads configuration from the environment and returns a Handler
// backed by real AWS clients.
func newHandler(ctx context.Context) (*redeploy.Handler, *awsclient.Clients, error) {
	logger := logging.LoggerFromContext(ctx)

	version := versionpkg.GetVersion()
	logger.Info(
		"starting redeployer",
		"version", version.Version,
		"commit", version.GitCommit,
	)

	cfg, err := config.ConfigFromEnv()
	if err != nil {
		return nil, nil, err
	}
	logger.Debug(
		"loaded configuration",
		"tagKey", cfg.TagKey,
		"serviceStrategy", cfg.ServiceImageStrategy,
		"functionStrategy", cfg.FunctionImageStrategy,
		"functionTagSource", cfg.FunctionTagSource,
		"maxConcurrency", cfg.MaxConcurrency,
		"apiRateLimit", cfg.APIRateLimit,
	)

	clients, err := awsclient.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return redeploy.NewHandler(
		cfg,
		clients.Services,
		clients.Functions,
		clients.Identity,
	), clients, nil
}

func printResult(out io.Writer, res *redeploy.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling result: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
