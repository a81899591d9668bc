package serverutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessResponse_WrapsDataWithSuccessTrue(t *testing.T) {
	resp := SuccessResponse("session fetched", 42)
	assert.True(t, resp.Success)
	assert.Equal(t, "session fetched", resp.Message)
	assert.Equal(t, 42, resp.Data)
}

func TestErrorResponse_MapsStatusToTaxonomyCode(t *testing.T) {
	cases := []struct {
		status int
		code   string
	}{
		{400, "validation_error"},
		{404, "not_found"},
		{429, "rate_limit"},
		{500, "internal_error"},
		{503, "internal_error"},
	}
	for _, c := range cases {
		envelope := ErrorResponse(c.status, "boom")
		assert.Equal(t, c.code, envelope.Error, "status %d", c.status)
		assert.Equal(t, "boom", envelope.Message)
	}
}
