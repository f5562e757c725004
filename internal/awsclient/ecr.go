package awsclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"go.uber.org/ratelimit"

	"github.com/akuity/redeployer/internal/image"
)

// ECRAPI is the subset of the ECR client used by ImageVerifier.
type ECRAPI interface {
	DescribeImages(
		ctx context.Context,
		params *ecr.DescribeImagesInput,
		optFns ...func(*ecr.Options),
	) (*ecr.DescribeImagesOutput, error)
}

// ImageVerifier checks that tagged images exist in ECR. It implements the
// redeploy.ImageVerifier interface.
type ImageVerifier struct {
	limiter ratelimit.Limiter

	// The following behaviors are overridable for testing purposes:

	newClientFn func(region string) ECRAPI
}

// NewImageVerifier returns an ImageVerifier that queries ECR in whatever
// region an image's registry lives in, using the credentials of cfg.
func NewImageVerifier(cfg aws.Config, limiter ratelimit.Limiter) *ImageVerifier {
	return &ImageVerifier{
		limiter: limiter,
		newClientFn: func(region string) ECRAPI {
			return ecr.NewFromConfig(cfg, func(o *ecr.Options) {
				o.Region = region
			})
		},
	}
}

// ImageExists returns true if ref is tagged in its ECR repository. An error is
// returned if ref does not point at an ECR registry.
func (v *ImageVerifier) ImageExists(
	ctx context.Context,
	ref image.Reference,
) (bool, error) {
	account, region, ok := image.ParseECRHost(ref.Host)
	if !ok {
		return false, fmt.Errorf("%q is not an ECR registry", ref.Host)
	}
	if err := wait(ctx, v.limiter); err != nil {
		return false, err
	}
	out, err := v.newClientFn(region).DescribeImages(ctx, &ecr.DescribeImagesInput{
		RegistryId:     aws.String(account),
		RepositoryName: aws.String(ref.Repository),
		ImageIds: []ecrtypes.ImageIdentifier{{
			ImageTag: aws.String(ref.Tag),
		}},
	})
	if err != nil {
		var imageNotFound *ecrtypes.ImageNotFoundException
		var repoNotFound *ecrtypes.RepositoryNotFoundException
		if errors.As(err, &imageNotFound) || errors.As(err, &repoNotFound) {
			return false, nil
		}
		return false, err
	}
	return len(out.ImageDetails) > 0, nil
}
