package awsclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/patrickmn/go-cache"
	"go.uber.org/ratelimit"

	"github.com/akuity/redeployer/internal/image"
)

const invocationContextCacheKey = "invocationContext"

// STSAPI is the subset of the STS client used by IdentityResolver.
type STSAPI interface {
	GetCallerIdentity(
		ctx context.Context,
		params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)
}

// IdentityResolver resolves the account and region the redeployer runs in. It
// implements the redeploy.IdentityResolver interface. The identity of a
// process never changes, so it is looked up at most once per process and
// reused by every subsequent invocation of a warm Lambda.
type IdentityResolver struct {
	api     STSAPI
	region  string
	limiter ratelimit.Limiter
	cache   *cache.Cache
}

// NewIdentityResolver returns an IdentityResolver for the credentials and
// region cfg points at.
func NewIdentityResolver(cfg aws.Config, limiter ratelimit.Limiter) *IdentityResolver {
	return &IdentityResolver{
		api:     sts.NewFromConfig(cfg),
		region:  cfg.Region,
		limiter: limiter,
		cache:   cache.New(cache.NoExpiration, 0),
	}
}

// InvocationContext returns the account of the caller's credentials and the
// configured region.
func (r *IdentityResolver) InvocationContext(
	ctx context.Context,
) (image.InvocationContext, error) {
	if entry, ok := r.cache.Get(invocationContextCacheKey); ok {
		return entry.(image.InvocationContext), nil // nolint: forcetypeassert
	}
	if r.region == "" {
		return image.InvocationContext{}, errors.New("no AWS region is configured")
	}
	if err := wait(ctx, r.limiter); err != nil {
		return image.InvocationContext{}, err
	}
	out, err := r.api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return image.InvocationContext{}, fmt.Errorf("error getting caller identity: %w", err)
	}
	ictx := image.InvocationContext{
		Account: aws.ToString(out.Account),
		Region:  r.region,
	}
	if ictx.Account == "" {
		return image.InvocationContext{}, errors.New("caller identity has no account")
	}
	r.cache.Set(invocationContextCacheKey, ictx, cache.NoExpiration)
	return ictx, nil
}
