package permissions_test

import (
	"net/http"
	"slotkeeper/permissions"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEmbedded(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	assert.False(t, data.Skip)
	assert.True(t, data.FindPermissions("/health", http.MethodGet).Skip)
	assert.True(t, data.FindPermissions("/metrics", http.MethodGet).Skip)
}

func TestFindPermissions(t *testing.T) {
	data := &permissions.PermissionData{
		Endpoints: []permissions.Permission{
			{Path: "/v1/bookings/{id}", Method: http.MethodGet, Skip: true},
		},
	}

	assert.True(t, data.FindPermissions("/v1/bookings/{id}", http.MethodGet).Skip)
	assert.False(t, data.FindPermissions("/v1/bookings/{id}", http.MethodPost).Skip)
	assert.Equal(t, permissions.Permission{}, data.FindPermissions("/v1/bookings/bk-1", http.MethodGet))
}
