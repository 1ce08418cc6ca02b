package carrier

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrTrackingNumberRequired = errors.New("tracking number is required")

// ConfigurationError: провайдер не настроен, сетевой вызов не делался.
type ConfigurationError struct {
	Provider string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s API key is not configured", e.Provider)
}

// ProviderError covers non-2xx answers and transport failures (StatusCode 0).
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s request failed", e.Provider)
	}
	return fmt.Sprintf("%s returned HTTP %d", e.Provider, e.StatusCode)
}

// ParseError: тело ответа не удалось разобрать как JSON ожидаемой формы.
type ParseError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s response could not be parsed", e.Provider)
}

func (e *ParseError) Unwrap() error { return e.Err }

func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
