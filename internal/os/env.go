package os

import (
	"os"
	"strings"
)

// GetEnv retrieves the value of an environment variable having the specified
// key. If the value is empty string, a specified default is returned instead.
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// IsLambda returns true if the process appears to be running inside the AWS
// Lambda execution environment.
func IsLambda() bool {
	return strings.HasPrefix(os.Getenv("AWS_EXECUTION_ENV"), "AWS_Lambda_") ||
		os.Getenv("AWS_LAMBDA_RUNTIME_API") != ""
}
