package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMetadataDispatchesOnType(t *testing.T) {
	raw := []byte(`{"old_status": "draft", "new_status": "published"}`)

	meta, err := DecodeMetadata(NotificationCourseStatusChange, raw)
	require.NoError(t, err)

	status, ok := meta.(*CourseStatusMetadata)
	require.True(t, ok)
	assert.Equal(t, CourseStatusDraft, status.OldStatus)
	assert.Equal(t, CourseStatusPublished, status.NewStatus)
	assert.Equal(t, NotificationCourseStatusChange, meta.EventType())
}

func TestDecodeMetadataUnknownTypeIsNil(t *testing.T) {
	meta, err := DecodeMetadata("mystery_event", []byte(`{"x": 1}`))
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestDecodeMetadataEmptyPayloadIsNil(t *testing.T) {
	meta, err := DecodeMetadata(NotificationNewRating, nil)
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestDecodeMetadataRejectsMalformedPayload(t *testing.T) {
	_, err := DecodeMetadata(NotificationNewRating, []byte(`{`))
	assert.Error(t, err)
}

func TestPaginationNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       Pagination
		page     int
		pageSize int
	}{
		{"defaults", Pagination{}, 1, DefaultPageSize},
		{"negative page", Pagination{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page size", Pagination{Page: 2, PageSize: 1000}, 2, MaxPageSize},
		{"in bounds", Pagination{Page: 3, PageSize: 50}, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Normalize()
			assert.Equal(t, tt.page, tt.in.Page)
			assert.Equal(t, tt.pageSize, tt.in.PageSize)
		})
	}
}
