package image

import (
	"errors"
	"fmt"
)

// Strategy selects which account and region an image pushed to ECR is
// expected to be pulled from by a class of workloads.
type Strategy string

const (
	// StrategyLocal assumes the image has been replicated into the account and
	// region the redeployer itself runs in.
	StrategyLocal Strategy = "local"
	// StrategyOrigin uses the account and region of the registry that emitted
	// the push event.
	StrategyOrigin Strategy = "origin"
)

// Decode implements envconfig.Decoder.
func (s *Strategy) Decode(value string) error {
	switch st := Strategy(value); st {
	case StrategyLocal, StrategyOrigin:
		*s = st
		return nil
	default:
		return fmt.Errorf(
			"invalid image resolution strategy %q; must be %q or %q",
			value, StrategyLocal, StrategyOrigin,
		)
	}
}

// InvocationContext is the account and region the redeployer is running in.
type InvocationContext struct {
	Account string `json:"account"`
	Region  string `json:"region"`
}

// Source describes a pushed image as reported by the registry that emitted
// the push notification.
type Source struct {
	RegistryAccount string
	RegistryRegion  string
	Repository      string
	Tag             string
}

// Resolve derives the canonical Reference that workloads resolved with this
// Strategy are expected to carry.
func (s Strategy) Resolve(src Source, ictx InvocationContext) (Reference, error) {
	var account, region string
	switch s {
	case StrategyLocal:
		account, region = ictx.Account, ictx.Region
	case StrategyOrigin:
		account, region = src.RegistryAccount, src.RegistryRegion
	default:
		return Reference{}, fmt.Errorf("unknown image resolution strategy %q", s)
	}
	if account == "" || region == "" {
		return Reference{}, fmt.Errorf(
			"cannot resolve image using %q strategy: account and region are required",
			s,
		)
	}
	if src.Repository == "" || src.Tag == "" {
		return Reference{}, errors.New(
			"cannot resolve image: repository and tag are required",
		)
	}
	return Reference{
		Host:       ECRHost(account, region),
		Repository: src.Repository,
		Tag:        src.Tag,
	}, nil
}
