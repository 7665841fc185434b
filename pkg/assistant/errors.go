package assistant

import "fmt"

// ConfigError means the responder was asked to run without a usable API
// key. No network call is made when it is returned.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("completion service not configured: %s", e.Reason)
}

// AuthError means the completion endpoint rejected the credential.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("completion auth failed (%d, check API key): %s", e.Status, e.Body)
}

// ProtocolError is any non-success response other than an auth failure.
type ProtocolError struct {
	Status int
	Body   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("completion request failed with status %d: %s", e.Status, e.Body)
}

// NetworkError is a transport failure before any response was obtained.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error contacting completion service: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// EmptyResponseError means the response was well-formed but carried no
// reply text at choices[0].message.content.
type EmptyResponseError struct{}

func (e *EmptyResponseError) Error() string {
	return "no response received from completion service"
}
