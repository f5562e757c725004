package redeploy

import (
	"context"
	"iter"

	"github.com/akuity/redeployer/internal/image"
	"github.com/akuity/redeployer/internal/logging"
)

var testRef = image.Reference{
	Host:       "111.dkr.ecr.us-east-1.amazonaws.com",
	Repository: "app",
	Tag:        "v2",
}

const (
	testImageV1 = "111.dkr.ecr.us-east-1.amazonaws.com/app:v1"
	testImageV2 = "111.dkr.ecr.us-east-1.amazonaws.com/app:v2"
)

func testContext() context.Context {
	return logging.ContextWithLogger(context.Background(), logging.NewDiscardLogger())
}

// seqOf returns an iterator over items followed, if err is non-nil, by err.
func seqOf[T any](items []T, err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
		if err != nil {
			var zero T
			yield(zero, err)
		}
	}
}
