// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api2spec/apidesc/pkg/types"
)

const usersManifest = `
definitions:
  user:
    type: object
    required: [id]
    properties:
      id:
        type: string
      email:
        type: string
        format: email
errors:
  emailTaken:
    code: 409
    description: Email address already registered
types:
  - name: UserAccounts
    handler:
      id: users
      schema:
        ref: user
    members:
      - name: create
        create:
          errors:
            - name: emailTaken
      - name: read
        instance: true
        read:
          errors:
            - name: notFound
      - name: list
        query:
          type: FILTER
          pagingModes: [OFFSET]
  - name: Helper
mounts:
  - path: /users
    type: UserAccounts
    variant: collection
    sub:
      - path: /settings
        type: Helper
`

func TestParse(t *testing.T) {
	f, err := Parse("users.apidesc.yaml", []byte(usersManifest))
	require.NoError(t, err)

	assert.Equal(t, "users.apidesc.yaml", f.Path)
	require.Len(t, f.Types, 2)
	assert.Equal(t, "UserAccounts", f.Types[0].Name)
	require.NotNil(t, f.Types[0].Handler)
	assert.Equal(t, "users", f.Types[0].Handler.ID)
	assert.Equal(t, "user", f.Types[0].Handler.Schema.Ref)
	require.Len(t, f.Types[0].Members, 3)
	assert.Equal(t, types.QueryTypeFilter, f.Types[0].Members[2].Query.Type)
	assert.Nil(t, f.Types[1].Handler)

	require.Len(t, f.Mounts, 1)
	assert.Equal(t, VariantCollection, f.Mounts[0].VariantName())
	require.Len(t, f.Mounts[0].Sub, 1)
	assert.Equal(t, DefaultVariant, f.Mounts[0].Sub[0].VariantName())
	assert.Equal(t, "settings", f.Mounts[0].Sub[0].Name())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			content: "types: [",
			wantErr: "failed to parse manifest",
		},
		{
			name:    "type without name",
			content: "types:\n  - handler: {}\n",
			wantErr: "types[0].name: required",
		},
		{
			name:    "mount path without slash",
			content: "mounts:\n  - path: users\n    type: Users\n",
			wantErr: `mounts[0].path: must start with "/"`,
		},
		{
			name:    "unknown variant",
			content: "mounts:\n  - path: /users\n    type: Users\n    variant: bag\n",
			wantErr: "mounts[0].variant: must be one of",
		},
		{
			name:    "bad member declaration",
			content: "types:\n  - name: Users\n    handler: {}\n    members:\n      - name: read\n        read:\n          stability: SOLID\n",
			wantErr: "stability: must be one of",
		},
		{
			name:    "duplicate type",
			content: "types:\n  - name: Users\n  - name: Users\n",
			wantErr: "type Users declared twice",
		},
		{
			name:    "error without code",
			content: "errors:\n  gone:\n    description: Gone\n",
			wantErr: "code: required",
		},
		{
			name:    "bad definition",
			content: "definitions:\n  user:\n    type: thing\n",
			wantErr: "definition user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.apidesc.yaml", []byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.name != "malformed yaml" {
				assert.True(t, errors.Is(err, types.ErrInvalidDeclaration))
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.apidesc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(usersManifest), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.apidesc.yaml"))
	assert.Error(t, err)
}

func TestFile_HandlerTypes(t *testing.T) {
	f, err := Parse("users.apidesc.yaml", []byte(usersManifest))
	require.NoError(t, err)

	handlers := f.HandlerTypes()
	require.Len(t, handlers, 2)

	h, ok := handlers[0].Handler()
	require.True(t, ok)
	assert.Equal(t, "User Accounts", h.Title)
	assert.Len(t, handlers[0].Members(), 3)
	assert.Empty(t, f.Types[0].Handler.Title, "declaration is left untouched")

	_, ok = handlers[1].Handler()
	assert.False(t, ok)
}

func TestDefaultTitle(t *testing.T) {
	assert.Equal(t, "Users", DefaultTitle("Users"))
	assert.Equal(t, "User Accounts", DefaultTitle("UserAccounts"))
	assert.Equal(t, "Order Items", DefaultTitle("orderItems"))
}

func TestFile_Register(t *testing.T) {
	f, err := Parse("users.apidesc.yaml", []byte(usersManifest))
	require.NoError(t, err)

	root := types.NewAPIDescription("example:users", "1.0.0")
	require.NoError(t, f.Register(root))
	assert.True(t, root.Definitions.Has("user"))

	apiErr, ok := root.Errors.Get("emailTaken")
	require.True(t, ok)
	assert.Equal(t, 409, apiErr.Code)

	// Registering the same manifest again is accepted.
	assert.NoError(t, f.Register(root))

	other, err := Parse("other.apidesc.yaml", []byte("errors:\n  emailTaken:\n    code: 400\n"))
	require.NoError(t, err)
	err = other.Register(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrDuplicateError)
	assert.Contains(t, err.Error(), "other.apidesc.yaml")
}
