package event

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/akuity/redeployer/internal/image"
)

var (
	// ErrRejected is wrapped by every error that rejects an inbound event
	// before any remote call is made.
	ErrRejected = errors.New("event rejected")
	// ErrInvalidEventKind indicates the event is not a recognized image push
	// notification.
	ErrInvalidEventKind = fmt.Errorf("%w: invalid event kind", ErrRejected)
	// ErrUnsuccessfulOutcome indicates the event reports an image action that
	// did not succeed.
	ErrUnsuccessfulOutcome = fmt.Errorf("%w: unsuccessful outcome", ErrRejected)
)

// ImageActionDetail is the detail of an ECR image action event.
type ImageActionDetail struct {
	Result         string `json:"result"`
	RepositoryName string `json:"repository-name"`
	ImageDigest    string `json:"image-digest"`
	ActionType     string `json:"action-type"`
	ImageTag       string `json:"image-tag"`
}

// DeploymentEvent is a validated image push notification.
type DeploymentEvent struct {
	SourceType      string `json:"sourceType"`
	Outcome         string `json:"outcome"`
	RegistryAccount string `json:"registryAccount"`
	RegistryRegion  string `json:"registryRegion"`
	RepositoryName  string `json:"repositoryName"`
	ImageTag        string `json:"imageTag"`
	// ImageDigest and ActionType are informational only.
	ImageDigest string `json:"imageDigest,omitempty"`
	ActionType  string `json:"actionType,omitempty"`
}

// ImageSource returns the pushed image as described by the event.
func (d DeploymentEvent) ImageSource() image.Source {
	return image.Source{
		RegistryAccount: d.RegistryAccount,
		RegistryRegion:  d.RegistryRegion,
		Repository:      d.RepositoryName,
		Tag:             d.ImageTag,
	}
}

// Validator turns raw EventBridge events into DeploymentEvents.
type Validator struct {
	// DetailType is the detail-type of recognized events. Compared exactly.
	DetailType string
	// SuccessResult is the detail.result of successful image actions. Compared
	// exactly.
	SuccessResult string
}

// Validate returns a DeploymentEvent if raw is a successful image push
// notification. Otherwise the returned error wraps ErrInvalidEventKind or
// ErrUnsuccessfulOutcome.
func (v Validator) Validate(raw events.EventBridgeEvent) (DeploymentEvent, error) {
	if raw.DetailType != v.DetailType {
		return DeploymentEvent{}, fmt.Errorf(
			"%w: expected detail-type %q, got %q",
			ErrInvalidEventKind, v.DetailType, raw.DetailType,
		)
	}
	var detail ImageActionDetail
	if err := json.Unmarshal(raw.Detail, &detail); err != nil {
		return DeploymentEvent{}, fmt.Errorf(
			"%w: error decoding event detail: %w", ErrInvalidEventKind, err,
		)
	}
	if detail.Result != v.SuccessResult {
		return DeploymentEvent{}, fmt.Errorf(
			"%w: expected detail result %q, got %q",
			ErrUnsuccessfulOutcome, v.SuccessResult, detail.Result,
		)
	}
	if detail.RepositoryName == "" || detail.ImageTag == "" {
		return DeploymentEvent{}, fmt.Errorf(
			"%w: event detail is missing repository-name or image-tag",
			ErrInvalidEventKind,
		)
	}
	return DeploymentEvent{
		SourceType:      raw.DetailType,
		Outcome:         detail.Result,
		RegistryAccount: raw.AccountID,
		RegistryRegion:  raw.Region,
		RepositoryName:  detail.RepositoryName,
		ImageTag:        detail.ImageTag,
		ImageDigest:     detail.ImageDigest,
		ActionType:      detail.ActionType,
	}, nil
}

// ParseEventBridgeEvent decodes a raw EventBridge event from JSON.
func ParseEventBridgeEvent(data []byte) (events.EventBridgeEvent, error) {
	var raw events.EventBridgeEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return raw, fmt.Errorf("error decoding event: %w", err)
	}
	return raw, nil
}
