package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akuity/redeployer/internal/image"
)

func TestConfigFromEnv(t *testing.T) {
	testCases := []struct {
		name       string
		setup      func(*testing.T)
		assertions func(*testing.T, Config, error)
	}{
		{
			name: "defaults",
			assertions: func(t *testing.T, cfg Config, err error) {
				require.NoError(t, err)
				require.Equal(t, "AutoDeploy", cfg.TagKey)
				require.Equal(t, "ECR Image Action", cfg.EventDetailType)
				require.Equal(t, "SUCCESS", cfg.EventSuccessResult)
				require.Equal(t, image.StrategyOrigin, cfg.ServiceImageStrategy)
				require.Equal(t, image.StrategyLocal, cfg.FunctionImageStrategy)
				require.Equal(t, FunctionTagSourceFunction, cfg.FunctionTagSource)
				require.Equal(t, int32(10), cfg.ServicePageSize)
				require.Equal(t, int32(50), cfg.FunctionPageSize)
				require.Equal(t, 10, cfg.MaxConcurrency)
				require.Equal(t, 20, cfg.APIRateLimit)
				require.Equal(t, 5, cfg.RetryMaxAttempts)
				require.Equal(t, 20*time.Second, cfg.RetryMaxBackoff)
				require.Empty(t, cfg.ServicesRoleARN)
				require.Empty(t, cfg.FunctionsRoleARN)
				require.True(t, cfg.NeedsInvocationContext())
			},
		},
		{
			name: "overrides",
			setup: func(t *testing.T) {
				t.Setenv("CONFIG_TAG_NAME", "Redeploy")
				t.Setenv("EVENT_SUCCESS_RESULT", "Success")
				t.Setenv("SERVICE_IMAGE_STRATEGY", "origin")
				t.Setenv("FUNCTION_IMAGE_STRATEGY", "origin")
				t.Setenv("FUNCTION_TAG_SOURCE", "tags")
				t.Setenv("SERVICE_PAGE_SIZE", "5")
				t.Setenv("MAX_CONCURRENCY", "3")
				t.Setenv("RETRY_MAX_BACKOFF", "5s")
				t.Setenv("FUNCTIONS_ROLE_ARN", "arn:aws:iam::222:role/redeployer")
			},
			assertions: func(t *testing.T, cfg Config, err error) {
				require.NoError(t, err)
				require.Equal(t, "Redeploy", cfg.TagKey)
				require.Equal(t, "Success", cfg.EventSuccessResult)
				require.Equal(t, image.StrategyOrigin, cfg.FunctionImageStrategy)
				require.Equal(t, FunctionTagSourceTags, cfg.FunctionTagSource)
				require.Equal(t, int32(5), cfg.ServicePageSize)
				require.Equal(t, 3, cfg.MaxConcurrency)
				require.Equal(t, 5*time.Second, cfg.RetryMaxBackoff)
				require.Equal(t, "arn:aws:iam::222:role/redeployer", cfg.FunctionsRoleARN)
				require.False(t, cfg.NeedsInvocationContext())
			},
		},
		{
			name: "invalid strategy",
			setup: func(t *testing.T) {
				t.Setenv("SERVICE_IMAGE_STRATEGY", "nearest")
			},
			assertions: func(t *testing.T, _ Config, err error) {
				require.ErrorContains(t, err, "invalid image resolution strategy")
			},
		},
		{
			name: "invalid tag source",
			setup: func(t *testing.T) {
				t.Setenv("FUNCTION_TAG_SOURCE", "describe")
			},
			assertions: func(t *testing.T, _ Config, err error) {
				require.ErrorContains(t, err, "invalid function tag source")
			},
		},
		{
			name: "service page size too large",
			setup: func(t *testing.T) {
				t.Setenv("SERVICE_PAGE_SIZE", "11")
			},
			assertions: func(t *testing.T, _ Config, err error) {
				require.ErrorContains(t, err, "SERVICE_PAGE_SIZE must be between 1 and 10")
			},
		},
		{
			name: "several invalid values",
			setup: func(t *testing.T) {
				t.Setenv("FUNCTION_PAGE_SIZE", "0")
				t.Setenv("MAX_CONCURRENCY", "500")
				t.Setenv("API_RATE_LIMIT", "0")
			},
			assertions: func(t *testing.T, _ Config, err error) {
				require.ErrorContains(t, err, "FUNCTION_PAGE_SIZE")
				require.ErrorContains(t, err, "MAX_CONCURRENCY")
				require.ErrorContains(t, err, "API_RATE_LIMIT")
			},
		},
		{
			name: "unparsable duration",
			setup: func(t *testing.T) {
				t.Setenv("RETRY_MAX_BACKOFF", "soon")
			},
			assertions: func(t *testing.T, _ Config, err error) {
				require.ErrorContains(t, err, "error processing configuration")
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if testCase.setup != nil {
				testCase.setup(t)
			}
			cfg, err := ConfigFromEnv()
			testCase.assertions(t, cfg, err)
		})
	}
}

func TestFunctionTagSourceDecode(t *testing.T) {
	var src FunctionTagSource
	require.NoError(t, src.Decode("tags"))
	require.Equal(t, FunctionTagSourceTags, src)
	require.Error(t, src.Decode("Tags"))
}
