package config

import "fmt"

// FunctionTagSource selects how the tags of a Lambda function are looked up.
type FunctionTagSource string

const (
	// FunctionTagSourceFunction reads tags from the GetFunction response, which
	// also carries the function's current image.
	FunctionTagSourceFunction FunctionTagSource = "function"
	// FunctionTagSourceTags reads tags with a separate ListTags call and only
	// describes functions that are opted in.
	FunctionTagSourceTags FunctionTagSource = "tags"
)

// Decode implements envconfig.Decoder.
func (f *FunctionTagSource) Decode(value string) error {
	switch src := FunctionTagSource(value); src {
	case FunctionTagSourceFunction, FunctionTagSourceTags:
		*f = src
		return nil
	default:
		return fmt.Errorf(
			"invalid function tag source %q; must be %q or %q",
			value, FunctionTagSourceFunction, FunctionTagSourceTags,
		)
	}
}
