package model_test

import (
	"slotkeeper/internal/domains/settings/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentScan(t *testing.T) {
	var doc model.Document

	require.NoError(t, doc.Scan([]byte(`{"hours":{"monday":[["09:00","17:00"]]},"slot_interval":30}`)))
	assert.Equal(t, [][2]string{{"09:00", "17:00"}}, doc.Hours["monday"])
	assert.Equal(t, 30, doc.SlotInterval)

	require.NoError(t, doc.Scan(nil))
	assert.Zero(t, doc.SlotInterval)

	assert.Error(t, doc.Scan(42))
	assert.Error(t, doc.Scan("{"))
}
