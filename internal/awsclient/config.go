// Package awsclient adapts the AWS SDK to the capability interfaces consumed
// by the redeploy package.
package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsratelimit "github.com/aws/aws-sdk-go-v2/aws/ratelimit"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.uber.org/ratelimit"

	"github.com/akuity/redeployer/internal/backoff"
	"github.com/akuity/redeployer/internal/config"
	"github.com/akuity/redeployer/internal/logging"
	"github.com/akuity/redeployer/internal/version"
)

// Clients bundles every AWS-backed capability the redeployer needs. All of
// them share a single API rate limiter.
type Clients struct {
	Services  *ServiceClient
	Functions *FunctionClient
	Identity  *IdentityResolver
	Images    *ImageVerifier
}

// New loads the default AWS configuration, applies the retry and rate limit
// settings from cfg, and returns Clients built from it. Where cfg names a role
// for services or functions, calls for that class of workload are made with
// credentials obtained by assuming the role.
func New(ctx context.Context, cfg config.Config) (*Clients, error) {
	base, err := LoadConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	limiter := ratelimit.New(cfg.APIRateLimit)
	logger := logging.LoggerFromContext(ctx)

	servicesCfg := base
	if cfg.ServicesRoleARN != "" {
		logger.Debug("assuming role for ECS calls", "role", cfg.ServicesRoleARN)
		servicesCfg = assumeRole(base, cfg.ServicesRoleARN)
	}
	functionsCfg := base
	if cfg.FunctionsRoleARN != "" {
		logger.Debug("assuming role for Lambda calls", "role", cfg.FunctionsRoleARN)
		functionsCfg = assumeRole(base, cfg.FunctionsRoleARN)
	}

	return &Clients{
		Services:  NewServiceClient(servicesCfg, limiter),
		Functions: NewFunctionClient(functionsCfg, limiter),
		Identity:  NewIdentityResolver(base, limiter),
		Images:    NewImageVerifier(base, limiter),
	}, nil
}

// LoadConfig returns the default AWS configuration with the SDK's standard
// retryer tuned by cfg. Client-side retry quotas are disabled; throttling is
// absorbed by backing off rather than by failing fast.
func LoadConfig(ctx context.Context, cfg config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithAppID(version.AppID()),
		awsconfig.WithRetryer(func() aws.Retryer {
			return retry.NewStandard(func(o *retry.StandardOptions) {
				o.MaxAttempts = cfg.RetryMaxAttempts
				o.MaxBackoff = cfg.RetryMaxBackoff
				o.Backoff = backoff.NewDelayer(cfg.RetryMaxBackoff)
				o.RateLimiter = awsratelimit.None
			})
		}),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("error loading AWS config: %w", err)
	}
	return awsCfg, nil
}

func assumeRole(base aws.Config, roleARN string) aws.Config {
	assumed := base.Copy()
	assumed.Credentials = aws.NewCredentialsCache(
		stscreds.NewAssumeRoleProvider(
			sts.NewFromConfig(base),
			roleARN,
			func(o *stscreds.AssumeRoleOptions) {
				o.RoleSessionName = "redeployer"
			},
		),
	)
	return assumed
}

// wait blocks until limiter admits another call. Take does not observe ctx,
// so a cancellation that happened while waiting is reported afterwards.
func wait(ctx context.Context, limiter ratelimit.Limiter) error {
	limiter.Take()
	return ctx.Err()
}
