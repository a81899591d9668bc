package serverutils

import (
	"testing"

	"deepresearch-be/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest_RejectsShortQuery(t *testing.T) {
	err := ValidateRequest(dto.StartResearchRequest{Query: "hi", Mode: "quick"})
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, "validation_error", apiErr.Code)
	assert.Equal(t, 400, apiErr.Status)
}

func TestValidateRequest_AcceptsMinimumLengthQuery(t *testing.T) {
	err := ValidateRequest(dto.StartResearchRequest{Query: "abc", Mode: "quick"})
	assert.NoError(t, err)
}

func TestValidateRequest_RejectsOverlongQuery(t *testing.T) {
	overlong := make([]byte, 2001)
	for i := range overlong {
		overlong[i] = 'a'
	}
	err := ValidateRequest(dto.StartResearchRequest{Query: string(overlong), Mode: "standard"})
	require.Error(t, err)
}

func TestValidateRequest_RejectsUnknownMode(t *testing.T) {
	err := ValidateRequest(dto.StartResearchRequest{Query: "a valid research query", Mode: "exhaustive"})
	require.Error(t, err)
}

func TestValidateRequest_AllowsOmittedMode(t *testing.T) {
	err := ValidateRequest(dto.StartResearchRequest{Query: "a valid research query"})
	assert.NoError(t, err, "mode is optional at the validation layer; the controller fills in the default")
}

func TestValidateRequest_RejectsMissingQuery(t *testing.T) {
	err := ValidateRequest(dto.StartResearchRequest{Mode: "quick"})
	require.Error(t, err)
}
