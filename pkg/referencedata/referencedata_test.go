package referencedata

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookupengine/lookupengine/pkg/lookuperr"
	"github.com/lookupengine/lookupengine/pkg/models"
)

type stubDataSourceRepo struct {
	rows []*models.DataSource
}

func (s stubDataSourceRepo) CreateNewVersion(context.Context, *models.DataSource) error { return nil }
func (s stubDataSourceRepo) Get(context.Context, string) (*models.DataSource, error)     { return nil, nil }
func (s stubDataSourceRepo) GetLatest(context.Context, string) (*models.DataSource, error) {
	return nil, nil
}
func (s stubDataSourceRepo) ListByProject(context.Context, string) ([]*models.DataSource, error) {
	return s.rows, nil
}
func (s stubDataSourceRepo) UpdateExtractionStatus(context.Context, string, models.ExtractionStatus, *string, *string) error {
	return nil
}

type stubBlobStore struct {
	content map[string]string
	errPath string
}

func (s stubBlobStore) Read(_ context.Context, path string) ([]byte, error) {
	if path == s.errPath {
		return nil, fmt.Errorf("permission denied")
	}
	return []byte(s.content[path]), nil
}

func ptr(s string) *string { return &s }

func TestLoad_ConcatenatesInUploadOrder(t *testing.T) {
	base := time.Now()
	repo := stubDataSourceRepo{rows: []*models.DataSource{
		{FileName: "b.txt", FilePath: "/b.txt", FileType: models.FileTypeTXT, IsLatest: true, VersionNumber: 1, CreatedAt: base.Add(time.Second), ExtractionStatus: models.ExtractionCompleted},
		{FileName: "a.txt", FilePath: "/a.txt", FileType: models.FileTypeTXT, IsLatest: true, VersionNumber: 1, CreatedAt: base, ExtractionStatus: models.ExtractionCompleted},
	}}
	blobs := stubBlobStore{content: map[string]string{"/a.txt": "first", "/b.txt": "second"}}

	loader := New(repo, blobs)
	result, err := loader.Load(context.Background(), "proj-1", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "b.txt"}, result.Files)
	assert.True(t, indexOf(result.Content, "first") < indexOf(result.Content, "second"))
	assert.Contains(t, result.Content, "=== File: a.txt ===")
}

func TestLoad_FailsWhenExtractionIncomplete(t *testing.T) {
	repo := stubDataSourceRepo{rows: []*models.DataSource{
		{FileName: "report.pdf", FilePath: "/report.pdf", FileType: models.FileTypePDF, IsLatest: true, ExtractionStatus: models.ExtractionProcessing},
	}}
	loader := New(repo, stubBlobStore{})

	_, err := loader.Load(context.Background(), "proj-1", nil)
	require.Error(t, err)
	var notComplete *lookuperr.ExtractionNotComplete
	require.ErrorAs(t, err, &notComplete)
	assert.Equal(t, []string{"report.pdf"}, notComplete.Files)
}

func TestLoad_TextNativeStillBlocksOnIncompleteExtraction(t *testing.T) {
	repo := stubDataSourceRepo{rows: []*models.DataSource{
		{FileName: "data.csv", FilePath: "/data.csv", FileType: models.FileTypeCSV, IsLatest: true, ExtractionStatus: models.ExtractionPending},
	}}
	blobs := stubBlobStore{content: map[string]string{"/data.csv": "a,b,c"}}
	loader := New(repo, blobs)

	_, err := loader.Load(context.Background(), "proj-1", nil)
	var notComplete *lookuperr.ExtractionNotComplete
	require.ErrorAs(t, err, &notComplete)
	assert.Equal(t, []string{"data.csv"}, notComplete.Files)
}

func TestLoad_UsesExtractedContentPathWhenPresent(t *testing.T) {
	repo := stubDataSourceRepo{rows: []*models.DataSource{
		{FileName: "report.pdf", FilePath: "/report.pdf", ExtractedContentPath: ptr("/extracted/report.txt"), FileType: models.FileTypePDF, IsLatest: true, ExtractionStatus: models.ExtractionCompleted},
	}}
	blobs := stubBlobStore{content: map[string]string{"/extracted/report.txt": "extracted text"}}
	loader := New(repo, blobs)

	result, err := loader.Load(context.Background(), "proj-1", nil)
	require.NoError(t, err)
	assert.Contains(t, result.Content, "extracted text")
}

func TestLoad_ReadFailureBecomesInlineMarkerNotError(t *testing.T) {
	repo := stubDataSourceRepo{rows: []*models.DataSource{
		{FileName: "a.txt", FilePath: "/a.txt", FileType: models.FileTypeTXT, IsLatest: true, ExtractionStatus: models.ExtractionCompleted},
		{FileName: "b.txt", FilePath: "/b.txt", FileType: models.FileTypeTXT, IsLatest: true, ExtractionStatus: models.ExtractionCompleted},
	}}
	blobs := stubBlobStore{content: map[string]string{"/b.txt": "ok"}, errPath: "/a.txt"}
	loader := New(repo, blobs)

	result, err := loader.Load(context.Background(), "proj-1", nil)
	require.NoError(t, err)
	assert.Contains(t, result.Content, "[Error loading file:")
	assert.Contains(t, result.Content, "ok")
}

func TestLoad_FiltersToRequestedVersion(t *testing.T) {
	repo := stubDataSourceRepo{rows: []*models.DataSource{
		{FileName: "old.txt", FilePath: "/old.txt", FileType: models.FileTypeTXT, IsLatest: false, VersionNumber: 1, ExtractionStatus: models.ExtractionCompleted},
		{FileName: "new.txt", FilePath: "/new.txt", FileType: models.FileTypeTXT, IsLatest: true, VersionNumber: 2, ExtractionStatus: models.ExtractionCompleted},
	}}
	blobs := stubBlobStore{content: map[string]string{"/old.txt": "v1", "/new.txt": "v2"}}
	loader := New(repo, blobs)

	v1 := 1
	result, err := loader.Load(context.Background(), "proj-1", &v1)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.txt"}, result.Files)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
