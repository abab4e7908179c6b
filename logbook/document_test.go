package logbook_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwage/attendance-engine/engine"
	"github.com/shiftwage/attendance-engine/logbook"
)

func TestExportImport_RoundTrip(t *testing.T) {
	// GIVEN: A repository with tags and logs
	// WHEN: Its export is imported into a fresh repository
	// THEN: Logs, tags and computed wages survive unchanged

	source, _, _ := newTestRepo(t)
	tag := flatTag(t, source, "1200")
	source.SaveLog(logbook.LogInput{Date: "2025-03-10", Start: "09:00", End: "17:00", TagID: tag.ID})
	source.SaveLog(logbook.LogInput{Date: "2025-03-11", Start: "22:00", End: "23:00", TagID: tag.ID})

	exported, err := source.Export()
	require.NoError(t, err)

	target, _, _ := newTestRepo(t)
	require.NoError(t, target.Import(exported))

	assert.Len(t, target.AllLogsSorted(), 2)
	requireBucketInvariant(t, target)

	got, ok := target.GetByID(tag.ID)
	require.True(t, ok)
	assert.True(t, got.BaseRate.Equal(engine.MustDecimal("1200")))

	bucket := target.LogsByDate("2025-03-10")
	require.Len(t, bucket, 1)
	assert.True(t, bucket[0].DailyWage.Equal(engine.MustDecimal("9600")))
}

func TestExport_CarriesUsernameAndFlatLogs(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	tag := flatTag(t, repo, "1000")
	repo.SaveLog(logbook.LogInput{Date: "2025-03-10", Start: "09:00", End: "12:00", TagID: tag.ID})

	exported, err := repo.Export()
	require.NoError(t, err)

	var doc struct {
		Username string            `json:"username"`
		Logs     []json.RawMessage `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(exported, &doc))
	assert.Equal(t, "sawa", doc.Username)
	assert.Len(t, doc.Logs, 1, "export uses the flat list, not date buckets")
}

func TestImport_LegacyFlatDocument(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	err := repo.Import([]byte(`{
		"username": "sawa",
		"logs": [
			{"id": 1, "date": "2025-03-10", "start": "09:00", "end": "17:00", "tagId": 7},
			{"id": 2, "date": "2025-03-11", "start": "09:00", "end": "17:00", "tagId": 7}
		],
		"tags": [{"id": 7, "name": "cafe", "baseRate": "950", "payday": 99}]
	}`))
	require.NoError(t, err)

	assert.Len(t, repo.AllLogsSorted(), 2)
	requireBucketInvariant(t, repo)

	tag, ok := repo.GetByID(7)
	require.True(t, ok)
	assert.True(t, tag.BaseRate.Equal(engine.MustDecimal("950")))
	assert.Equal(t, engine.DefaultPayday, tag.Payday, "out-of-range payday sanitized on import")
}

func TestImport_BucketedDocument(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	err := repo.Import([]byte(`{
		"username": "sawa",
		"logs": {
			"2025-03-10": [{"id": 1, "date": "2025-03-10", "start": "09:00", "end": "17:00", "tagId": 7}]
		},
		"tags": [{"id": 7, "name": "cafe", "baseRate": "1000"}]
	}`))
	require.NoError(t, err)
	assert.Len(t, repo.LogsByDate("2025-03-10"), 1)
}

func TestImport_InvalidDocument_LeavesStateUntouched(t *testing.T) {
	// A failed import must not half-apply: existing data stays as it was.
	repo, _, _ := newTestRepo(t)
	tag := flatTag(t, repo, "1000")
	repo.SaveLog(logbook.LogInput{Date: "2025-03-10", Start: "09:00", End: "12:00", TagID: tag.ID})

	for name, payload := range map[string]string{
		"not json":       `{{{`,
		"malformed logs": `{"username": "sawa", "logs": 12, "tags": []}`,
	} {
		err := repo.Import([]byte(payload))
		assert.ErrorIs(t, err, logbook.ErrInvalidDocument, name)
	}

	assert.Len(t, repo.AllLogsSorted(), 1)
	assert.Len(t, repo.Tags(), 1)
}
