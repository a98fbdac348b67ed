// Package referencedata implements the Reference Data Loader (spec §4.2):
// it resolves a project's reference corpus to a single concatenated text
// blob, failing fast if any selected file's extraction is incomplete.
package referencedata

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lookupengine/lookupengine/pkg/lookuperr"
	"github.com/lookupengine/lookupengine/pkg/models"
	"github.com/lookupengine/lookupengine/pkg/storage"
)

// BlobStore reads the byte content of a stored file by its path. The
// default FileBlobStore reads from local disk; a future object-storage
// backend (S3, GCS) can satisfy the same interface without touching Loader.
type BlobStore interface {
	Read(ctx context.Context, path string) ([]byte, error)
}

// ReferenceData is the Load contract's return shape from spec §4.2.
type ReferenceData struct {
	Version   int
	Content   string
	Files     []string
	TotalSize int64
}

// Loader resolves a project's reference corpus to concatenated text.
type Loader struct {
	dataSources storage.DataSourceRepository
	blobs       BlobStore
}

// New builds a Loader over dataSources and blobs.
func New(dataSources storage.DataSourceRepository, blobs BlobStore) *Loader {
	return &Loader{dataSources: dataSources, blobs: blobs}
}

// Load resolves projectID's reference data. When version is nil, the
// current is_latest row set is used; otherwise the rows matching that
// version number. Rows are ordered by upload time (CreatedAt) before
// concatenation, per spec §4.2.
func (l *Loader) Load(ctx context.Context, projectID string, version *int) (*ReferenceData, error) {
	all, err := l.dataSources.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list data sources for project %s: %w", projectID, err)
	}

	selected := selectVersion(all, version)
	if len(selected) == 0 {
		return &ReferenceData{Version: versionOf(version, selected)}, nil
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].CreatedAt.Before(selected[j].CreatedAt) })

	if incomplete := incompleteFiles(selected); len(incomplete) > 0 {
		return nil, &lookuperr.ExtractionNotComplete{Files: incomplete}
	}

	var b strings.Builder
	files := make([]string, 0, len(selected))
	var totalSize int64
	for _, ds := range selected {
		files = append(files, ds.FileName)
		totalSize += ds.FileSize
		b.WriteString(fmt.Sprintf("=== File: %s ===\n\n%s\n\n", ds.FileName, l.readOne(ctx, ds)))
	}

	return &ReferenceData{
		Version:   versionOf(version, selected),
		Content:   b.String(),
		Files:     files,
		TotalSize: totalSize,
	}, nil
}

// selectVersion narrows all to the requested version, or to the current
// is_latest row set when version is nil.
func selectVersion(all []*models.DataSource, version *int) []*models.DataSource {
	var selected []*models.DataSource
	for _, ds := range all {
		switch {
		case version != nil && ds.VersionNumber == *version:
			selected = append(selected, ds)
		case version == nil && ds.IsLatest:
			selected = append(selected, ds)
		}
	}
	return selected
}

func versionOf(requested *int, selected []*models.DataSource) int {
	if requested != nil {
		return *requested
	}
	if len(selected) > 0 {
		return selected[0].VersionNumber
	}
	return 0
}

// incompleteFiles returns the file names of every row whose extraction has
// not finished. Every selected row is checked regardless of file type: a
// text-native row still owns an extraction_status, and a pending/failed one
// must still block loading.
func incompleteFiles(rows []*models.DataSource) []string {
	var names []string
	for _, ds := range rows {
		if !ds.IsExtractionComplete() {
			names = append(names, ds.FileName)
		}
	}
	return names
}

// readOne returns a row's text content, preferring extracted_content_path,
// falling back to file_path for text-native types, and never raising: a
// read failure for one file becomes an inline error marker rather than
// aborting the whole concatenation.
func (l *Loader) readOne(ctx context.Context, ds *models.DataSource) string {
	path := ds.FilePath
	if ds.ExtractedContentPath != nil && *ds.ExtractedContentPath != "" {
		path = *ds.ExtractedContentPath
	} else if !ds.FileType.IsTextNative() {
		return fmt.Sprintf("[Error loading file: no extracted content available for %s]", ds.FileName)
	}

	content, err := l.blobs.Read(ctx, path)
	if err != nil {
		return fmt.Sprintf("[Error loading file: %v]", err)
	}
	return string(content)
}
