package redeploy

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/smithy-go"

	"github.com/akuity/redeployer/internal/event"
)

// TargetKind is the kind of workload an Outcome refers to.
type TargetKind string

const (
	TargetKindService  TargetKind = "Service"
	TargetKindFunction TargetKind = "Function"
)

// Status is the final disposition of a candidate.
type Status string

const (
	// StatusTriggered means a redeploy was issued for the candidate.
	StatusTriggered Status = "Triggered"
	// StatusSkippedNoMatch means the candidate is opted in but does not
	// currently reference the pushed image.
	StatusSkippedNoMatch Status = "SkippedNoMatch"
	// StatusSkippedNotOptedIn means the candidate does not carry the opt-in tag
	// with the value "true".
	StatusSkippedNotOptedIn Status = "SkippedNotOptedIn"
	// StatusFailed means a remote call for the candidate failed.
	StatusFailed Status = "Failed"
)

// FailureKind classifies a failed remote call.
type FailureKind string

const (
	RemoteReadFailure  FailureKind = "RemoteReadFailure"
	RemoteWriteFailure FailureKind = "RemoteWriteFailure"
)

// RemoteError is a remote call failure attributed to a single candidate. The
// SDK retries throttled calls itself; Throttled is set when the call was
// still being throttled once retries were exhausted.
type RemoteError struct {
	Kind      FailureKind
	Op        string
	Throttled bool
	Err       error
}

func (e *RemoteError) Error() string {
	if e.Throttled {
		return fmt.Sprintf("error %s (throttled): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("error %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func readFailure(op string, err error) *RemoteError {
	return &RemoteError{
		Kind:      RemoteReadFailure,
		Op:        op,
		Throttled: isThrottle(err),
		Err:       err,
	}
}

func writeFailure(op string, err error) *RemoteError {
	return &RemoteError{
		Kind:      RemoteWriteFailure,
		Op:        op,
		Throttled: isThrottle(err),
		Err:       err,
	}
}

func isThrottle(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	_, ok := retry.DefaultThrottleErrorCodes[apiErr.ErrorCode()]
	return ok
}

// Outcome records what happened to one candidate during reconciliation.
type Outcome struct {
	Kind     TargetKind
	TargetID string
	// Cluster is set for services only.
	Cluster string
	Status  Status
	// Revision is the ECS deployment ID or the published Lambda version
	// created by a trigger.
	Revision string
	Err      error
}

func (o *Outcome) fail(err *RemoteError) {
	o.Status = StatusFailed
	o.Err = err
}

// MarshalJSON implements json.Marshaler.
func (o Outcome) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind        TargetKind  `json:"kind"`
		TargetID    string      `json:"targetId"`
		Cluster     string      `json:"cluster,omitempty"`
		Status      Status      `json:"status"`
		Revision    string      `json:"revision,omitempty"`
		Error       string      `json:"error,omitempty"`
		FailureKind FailureKind `json:"failureKind,omitempty"`
	}{
		Kind:     o.Kind,
		TargetID: o.TargetID,
		Cluster:  o.Cluster,
		Status:   o.Status,
		Revision: o.Revision,
	}
	if o.Err != nil {
		out.Error = o.Err.Error()
		var remoteErr *RemoteError
		if errors.As(o.Err, &remoteErr) {
			out.FailureKind = remoteErr.Kind
		}
	}
	return json.Marshal(out)
}

// Result is the output of one invocation.
type Result struct {
	InvocationID string
	// Event is nil for manual invocations.
	Event *event.DeploymentEvent
	// ServiceImage and FunctionImage are the canonical references each
	// reconciler matched against. Empty if resolution failed or the
	// reconciler did not run.
	ServiceImage     string
	FunctionImage    string
	ServiceOutcomes  []Outcome
	FunctionOutcomes []Outcome
	// ServiceErr and FunctionErr report failures not attributable to a single
	// candidate, such as failing to resolve the image or to list clusters.
	// Outcomes recorded before such a failure are still reported.
	ServiceErr  error
	FunctionErr error
}

// Counts returns the number of outcomes per Status across both reconcilers.
func (r *Result) Counts() map[Status]int {
	counts := map[Status]int{}
	for _, o := range r.ServiceOutcomes {
		counts[o.Status]++
	}
	for _, o := range r.FunctionOutcomes {
		counts[o.Status]++
	}
	return counts
}

// Failed returns true if any candidate failed or either reconciler reported
// an error.
func (r *Result) Failed() bool {
	return r.ServiceErr != nil || r.FunctionErr != nil ||
		r.Counts()[StatusFailed] > 0
}

// MarshalJSON implements json.Marshaler.
func (r Result) MarshalJSON() ([]byte, error) {
	errString := func(err error) string {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	return json.Marshal(struct {
		InvocationID     string                 `json:"invocationId"`
		Event            *event.DeploymentEvent `json:"event,omitempty"`
		ServiceImage     string                 `json:"serviceImage,omitempty"`
		FunctionImage    string                 `json:"functionImage,omitempty"`
		ServiceOutcomes  []Outcome              `json:"serviceOutcomes"`
		FunctionOutcomes []Outcome              `json:"functionOutcomes"`
		ServiceError     string                 `json:"serviceError,omitempty"`
		FunctionError    string                 `json:"functionError,omitempty"`
	}{
		InvocationID:     r.InvocationID,
		Event:            r.Event,
		ServiceImage:     r.ServiceImage,
		FunctionImage:    r.FunctionImage,
		ServiceOutcomes:  nonNil(r.ServiceOutcomes),
		FunctionOutcomes: nonNil(r.FunctionOutcomes),
		ServiceError:     errString(r.ServiceErr),
		FunctionError:    errString(r.FunctionErr),
	})
}

func nonNil(outcomes []Outcome) []Outcome {
	if outcomes == nil {
		return []Outcome{}
	}
	return outcomes
}

// recorder collects Outcomes from concurrent workers.
type recorder struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (r *recorder) add(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

// sorted returns the recorded Outcomes ordered by cluster and then target.
func (r *recorder) sorted() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	outcomes := slices.Clone(r.outcomes)
	slices.SortFunc(outcomes, func(a, b Outcome) int {
		return cmp.Or(
			strings.Compare(a.Cluster, b.Cluster),
			strings.Compare(a.TargetID, b.TargetID),
		)
	})
	return outcomes
}
