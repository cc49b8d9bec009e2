package dto_test

import (
	"net/http/httptest"
	"net/url"
	"slotkeeper/shared/constant"
	"slotkeeper/shared/dto"
	"slotkeeper/shared/model"
	"slotkeeper/shared/timezone"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	updatedAt := time.Date(2023, 1, 2, 12, 0, 0, 0, time.UTC)

	metadata := &dto.Metadata{}
	metadata.FromModel(model.Metadata{CreatedAt: createdAt, UpdatedAt: updatedAt})

	assert.Equal(t, timezone.Format(createdAt, constant.DateFormat), metadata.CreatedAt)
	assert.Equal(t, timezone.Format(updatedAt, constant.DateFormat), metadata.UpdatedAt)
}

func TestMetadata_Touch(t *testing.T) {
	first := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	var m model.Metadata
	m.Touch(first)
	m.Touch(second)

	assert.Equal(t, first, m.CreatedAt)
	assert.Equal(t, second, m.UpdatedAt)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    map[string]string
		defaultRequest bool
		expected       dto.QueryParams
	}{
		{
			name:        "with all valid parameters",
			queryParams: map[string]string{"page": "2", "limit": "20", "sort_by": "start_at", "sort_dir": "asc"},
			expected:    dto.QueryParams{Page: 2, Limit: 20, SortBy: "start_at", SortDir: dto.SortDirAsc},
		},
		{
			name:           "with default request enabled and no parameters",
			queryParams:    map[string]string{},
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:        "with default request disabled and no parameters",
			queryParams: map[string]string{},
		},
		{
			name:           "with invalid page parameter",
			queryParams:    map[string]string{"page": "invalid"},
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:           "with negative limit parameter",
			queryParams:    map[string]string{"limit": "-10"},
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:        "with limit above maximum",
			queryParams: map[string]string{"limit": "5000"},
			expected:    dto.QueryParams{Limit: constant.MaxValueLimit},
		},
		{
			name:        "with unknown sort direction",
			queryParams: map[string]string{"sort_dir": "sideways"},
			expected:    dto.QueryParams{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := url.Values{}
			for key, value := range tt.queryParams {
				query.Set(key, value)
			}

			req := httptest.NewRequest("GET", "/v1/bookings?"+query.Encode(), nil)

			queryParams := &dto.QueryParams{}
			queryParams.FromRequest(req, tt.defaultRequest)

			assert.Equal(t, tt.expected, *queryParams)
		})
	}
}

func TestQueryParams_Offset(t *testing.T) {
	assert.Equal(t, 0, (&dto.QueryParams{}).Offset())
	assert.Equal(t, 0, (&dto.QueryParams{Page: 1, Limit: 10}).Offset())
	assert.Equal(t, 20, (&dto.QueryParams{Page: 3, Limit: 10}).Offset())
	assert.True(t, (&dto.QueryParams{SortDir: dto.SortDirDesc}).Descending())
}
