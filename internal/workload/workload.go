// Package workload describes the compute workloads the redeployer considers
// for redeployment, as read from the ECS and Lambda control planes.
package workload

import "strings"

// Service is a snapshot of an ECS service.
type Service struct {
	Cluster        string
	Name           string
	ARN            string
	TaskDefinition string
	Tags           map[string]string
	// Unavailable is the reason the service was listed but could not be
	// described. TaskDefinition and Tags are empty when it is set.
	Unavailable string
}

// TaskDefinition is the subset of an ECS task definition relevant to image
// matching. ContainerImages are in container definition order, exactly as
// written in the definition.
type TaskDefinition struct {
	Ref             string
	ContainerImages []string
}

// PackageType is the deployment package type of a Lambda function.
type PackageType string

const (
	PackageTypeImage PackageType = "Image"
	PackageTypeZip   PackageType = "Zip"
)

// Function is a snapshot of a Lambda function. Tags and ImageURI are only
// populated once the function has been described; an empty ImageURI means the
// function has no current image.
type Function struct {
	Name        string
	ARN         string
	PackageType PackageType
	Tags        map[string]string
	ImageURI    string
}

// OptedIn returns true if tags carries key with the value "true", compared
// case-insensitively. Other truthy spellings ("1", "yes") do not opt in.
func OptedIn(tags map[string]string, key string) bool {
	value, ok := tags[key]
	return ok && strings.EqualFold(value, "true")
}
