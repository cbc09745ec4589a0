// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package commons

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api2spec/apidesc/pkg/types"
)

func TestError_Name(t *testing.T) {
	tests := []struct {
		err  Error
		name string
		code int
	}{
		{BadRequest, "badRequest", 400},
		{NotFound, "notFound", 404},
		{ProxyAuthRequired, "proxyAuthRequired", 407},
		{VersionMismatch, "versionMismatch", 412},
		{PreconditionFailed, "preconditionFailed", 412},
		{RequestURITooLarge, "requestUriTooLarge", 414},
		{VersionRequired, "versionRequired", 428},
		{NotSupported, "notSupported", 501},
		{HTTPVersionNotSupported, "httpVersionNotSupported", 505},
	}

	for _, tt := range tests {
		t.Run(string(tt.err), func(t *testing.T) {
			assert.Equal(t, tt.name, tt.err.Name())
			assert.Equal(t, tt.code, tt.err.Code())
			assert.Equal(t, "frapi:common#/errors/"+tt.name, tt.err.Reference().Value)
		})
	}
}

func TestError_Description(t *testing.T) {
	assert.Equal(t, "Not Found", NotFound.Description())
	assert.Equal(t, "Request Entity Too Large", RequestEntityTooLarge.Description())
	assert.Equal(t, "HTTP Version Not Supported", HTTPVersionNotSupported.Description())
	assert.Equal(t, "Request URI Too Large", RequestURITooLarge.Description())
}

func TestLookup(t *testing.T) {
	e, ok := Lookup("gatewayTimeout")
	require.True(t, ok)
	assert.Equal(t, GatewayTimeout, e)

	_, ok = Lookup("GATEWAY_TIMEOUT")
	assert.False(t, ok)
	assert.True(t, Has("conflict"))
	assert.False(t, Has("teapot"))
}

func TestResolve(t *testing.T) {
	e, ok := Resolve(NotFound.Reference())
	require.True(t, ok)
	assert.Equal(t, NotFound, e)
	assert.Equal(t, 404, e.Code())

	_, ok = Resolve(types.CommonsErrorReference("teapot"))
	assert.False(t, ok)
	_, ok = Resolve(types.ErrorReference("notFound"))
	assert.False(t, ok)
}

func TestDescription(t *testing.T) {
	desc := Description()

	assert.Equal(t, ID, desc.ID)
	assert.Equal(t, Version, desc.Version)
	assert.Equal(t, 27, desc.Errors.Count())
	assert.Len(t, All(), 27)

	notFound, ok := desc.Errors.Get("notFound")
	require.True(t, ok)
	assert.Equal(t, 404, notFound.Code)
	assert.Nil(t, notFound.Reference)
	assert.NoError(t, desc.Validate())
}
