package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration matches every ConfigurationError via errors.Is
var ErrConfiguration = errors.New("graph configuration error")

// ConfigurationError is a fatal defect in the static question definition
type ConfigurationError struct {
	Reason  string
	NodeIDs []string
}

func (e *ConfigurationError) Error() string {
	if len(e.NodeIDs) == 0 {
		return fmt.Sprintf("%s: %s", ErrConfiguration, e.Reason)
	}
	return fmt.Sprintf("%s: %s [%s]", ErrConfiguration, e.Reason, strings.Join(e.NodeIDs, ", "))
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErr(reason string, ids ...string) error {
	return &ConfigurationError{Reason: reason, NodeIDs: ids}
}
