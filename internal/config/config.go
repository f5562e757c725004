package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/akuity/redeployer/internal/image"
)

const (
	// maxServicePageSize is the most services a single DescribeServices call
	// accepts.
	maxServicePageSize = 10
	// maxFunctionPageSize is the most functions a single ListFunctions call
	// returns.
	maxFunctionPageSize = 50
	maxConcurrency      = 50
)

// Config is configuration for the redeployer.
type Config struct {
	// TagKey is the key of the tag a workload must carry, with the value
	// "true", to opt in to automatic redeployment.
	TagKey string `envconfig:"CONFIG_TAG_NAME" default:"AutoDeploy"`
	// EventDetailType is the only detail-type of inbound events that is
	// recognized as an image push notification.
	EventDetailType string `envconfig:"EVENT_DETAIL_TYPE" default:"ECR Image Action"`
	// EventSuccessResult is the exact value of detail.result that marks an
	// image action as successful. Some upstream contracts use "Success".
	EventSuccessResult string `envconfig:"EVENT_SUCCESS_RESULT" default:"SUCCESS"`
	// ServiceImageStrategy selects how the image reference matched against ECS
	// task definitions is resolved.
	ServiceImageStrategy image.Strategy `envconfig:"SERVICE_IMAGE_STRATEGY" default:"origin"`
	// FunctionImageStrategy selects how the image reference matched against
	// Lambda functions is resolved.
	FunctionImageStrategy image.Strategy `envconfig:"FUNCTION_IMAGE_STRATEGY" default:"local"`
	// FunctionTagSource selects how Lambda function tags are looked up.
	FunctionTagSource FunctionTagSource `envconfig:"FUNCTION_TAG_SOURCE" default:"function"`
	// ServicePageSize is the number of ECS services listed and described per
	// page.
	ServicePageSize int32 `envconfig:"SERVICE_PAGE_SIZE" default:"10"`
	// FunctionPageSize is the number of Lambda functions listed per page.
	FunctionPageSize int32 `envconfig:"FUNCTION_PAGE_SIZE" default:"50"`
	// MaxConcurrency bounds the number of candidates evaluated concurrently by
	// each reconciler. Tuning this too high will result in throttling.
	MaxConcurrency int `envconfig:"MAX_CONCURRENCY" default:"10"`
	// APIRateLimit is the maximum number of AWS API calls issued per second,
	// across all reconcilers.
	APIRateLimit int `envconfig:"API_RATE_LIMIT" default:"20"`
	// RetryMaxAttempts is the maximum number of attempts for a single AWS API
	// call, including the first.
	RetryMaxAttempts int `envconfig:"RETRY_MAX_ATTEMPTS" default:"5"`
	// RetryMaxBackoff caps the delay between attempts of a single AWS API call.
	RetryMaxBackoff time.Duration `envconfig:"RETRY_MAX_BACKOFF" default:"20s"`
	// ServicesRoleARN, if set, is an IAM role assumed for all ECS calls.
	ServicesRoleARN string `envconfig:"SERVICES_ROLE_ARN"`
	// FunctionsRoleARN, if set, is an IAM role assumed for all Lambda calls.
	FunctionsRoleARN string `envconfig:"FUNCTIONS_ROLE_ARN"`
}

// ConfigFromEnv returns a Config populated from environment variables. An
// error is returned if any value cannot be parsed or is out of range.
func ConfigFromEnv() (Config, error) {
	cfg := Config{}
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("error processing configuration: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate returns an error describing every out-of-range value in the
// Config.
func (c Config) Validate() error {
	var errs []error
	if c.TagKey == "" {
		errs = append(errs, errors.New("CONFIG_TAG_NAME must not be empty"))
	}
	if c.EventDetailType == "" {
		errs = append(errs, errors.New("EVENT_DETAIL_TYPE must not be empty"))
	}
	if c.EventSuccessResult == "" {
		errs = append(errs, errors.New("EVENT_SUCCESS_RESULT must not be empty"))
	}
	if c.ServicePageSize < 1 || c.ServicePageSize > maxServicePageSize {
		errs = append(errs, fmt.Errorf(
			"SERVICE_PAGE_SIZE must be between 1 and %d; got %d",
			maxServicePageSize, c.ServicePageSize,
		))
	}
	if c.FunctionPageSize < 1 || c.FunctionPageSize > maxFunctionPageSize {
		errs = append(errs, fmt.Errorf(
			"FUNCTION_PAGE_SIZE must be between 1 and %d; got %d",
			maxFunctionPageSize, c.FunctionPageSize,
		))
	}
	if c.MaxConcurrency < 1 || c.MaxConcurrency > maxConcurrency {
		errs = append(errs, fmt.Errorf(
			"MAX_CONCURRENCY must be between 1 and %d; got %d",
			maxConcurrency, c.MaxConcurrency,
		))
	}
	if c.APIRateLimit < 1 {
		errs = append(errs, fmt.Errorf(
			"API_RATE_LIMIT must be positive; got %d", c.APIRateLimit,
		))
	}
	if c.RetryMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf(
			"RETRY_MAX_ATTEMPTS must be at least 1; got %d", c.RetryMaxAttempts,
		))
	}
	if c.RetryMaxBackoff <= 0 {
		errs = append(errs, fmt.Errorf(
			"RETRY_MAX_BACKOFF must be positive; got %s", c.RetryMaxBackoff,
		))
	}
	return errors.Join(errs...)
}

// NeedsInvocationContext returns true if either reconciler resolves images
// against the account and region the redeployer runs in.
func (c Config) NeedsInvocationContext() bool {
	return c.ServiceImageStrategy == image.StrategyLocal ||
		c.FunctionImageStrategy == image.StrategyLocal
}
