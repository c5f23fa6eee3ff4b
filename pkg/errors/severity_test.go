package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkuErrorMessage(t *testing.T) {
	err := NewSourceUnavailableError("azure-retail", stderrors.New("connection refused"))
	assert.Equal(t, "[error] SOURCE_UNAVAILABLE: catalog source unavailable (source: azure-retail): connection refused", err.Error())

	err = NewInvalidRequirementError("vcpu must be positive")
	assert.Equal(t, "[error] INVALID_REQUIREMENT: vcpu must be positive", err.Error())
}

func TestHasCodeThroughWrapping(t *testing.T) {
	cause := stderrors.New("timeout")
	wrapped := fmt.Errorf("loading aws catalog: %w", NewSourceUnavailableError("aws-pricing", cause))

	assert.True(t, IsSourceUnavailable(wrapped))
	assert.False(t, IsInvalidRequirement(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.False(t, IsSourceUnavailable(cause))
	assert.False(t, IsSourceUnavailable(nil))
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "fatal", SeverityFatal.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
