package image

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
)

var ecrHostRegex = regexp.MustCompile(`^([0-9]+)\.dkr\.ecr\.([a-z0-9-]+)\.amazonaws\.com(\.cn)?$`)

// Reference identifies a tagged image in a registry. Two References are
// equal when their canonical String() forms are equal.
type Reference struct {
	Host       string `json:"host"`
	Repository string `json:"repository"`
	Tag        string `json:"tag"`
}

// String returns the canonical host/repository:tag form of the Reference.
func (r Reference) String() string {
	if r.Host == "" {
		return fmt.Sprintf("%s:%s", r.Repository, r.Tag)
	}
	return fmt.Sprintf("%s/%s:%s", r.Host, r.Repository, r.Tag)
}

// Matches returns true if the provided image string, as written in a task
// definition or function configuration, is exactly this Reference. No
// normalization is applied to the provided string.
func (r Reference) Matches(image string) bool {
	return image == r.String()
}

// ECRHost returns the ECR registry hostname for the given account and region.
func ECRHost(account, region string) string {
	return fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com", account, region)
}

// ParseECRHost extracts the account and region from an ECR registry hostname.
// ok is false if the host is not an ECR hostname.
func ParseECRHost(host string) (account, region string, ok bool) {
	matches := ecrHostRegex.FindStringSubmatch(host)
	if len(matches) < 3 {
		return "", "", false
	}
	return matches[1], matches[2], true
}

// ParseReference parses an image reference of the form host/repository:tag or
// repository:tag. In the latter case the returned Reference has an empty Host
// and must be completed with WithHost before it can be matched against
// workloads. Digest references are rejected because matching is by tag only.
func ParseReference(s string) (Reference, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Reference{}, errors.New("image reference is empty")
	}
	if strings.Contains(s, "@") {
		return Reference{}, fmt.Errorf(
			"image reference %q is a digest reference; a tag is required", s,
		)
	}
	host, rest := "", s
	if i := strings.Index(s, "/"); i > 0 && looksLikeHost(s[:i]) {
		host, rest = s[:i], s[i+1:]
	}
	i := strings.LastIndex(rest, ":")
	if i <= 0 || i == len(rest)-1 || strings.Contains(rest[i+1:], "/") {
		return Reference{}, fmt.Errorf(
			"error parsing image reference %q: a tag is required", s,
		)
	}
	repository, tag := rest[:i], rest[i+1:]
	// Components are kept exactly as written. The syntax check is
	// case-insensitive because registries such as GHCR accept mixed-case
	// repository paths that task definitions may carry verbatim.
	checkHost := host
	if checkHost == "" {
		checkHost = "registry.invalid"
	}
	if _, err := name.NewTag(
		strings.ToLower(checkHost+"/"+repository)+":"+tag,
		name.WeakValidation,
	); err != nil {
		return Reference{}, fmt.Errorf("error parsing image reference %q: %w", s, err)
	}
	return Reference{
		Host:       host,
		Repository: repository,
		Tag:        tag,
	}, nil
}

// WithHost returns a copy of the Reference with the provided host.
func (r Reference) WithHost(host string) Reference {
	r.Host = host
	return r
}

// looksLikeHost applies the Docker convention for deciding whether the first
// path component of an image reference names a registry.
func looksLikeHost(component string) bool {
	return strings.ContainsAny(component, ".:") || component == "localhost"
}
