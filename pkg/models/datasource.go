package models

import "time"

// FileType enumerates the reference-data file formats accepted by a project.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeXLSX FileType = "xlsx"
	FileTypeCSV  FileType = "csv"
	FileTypeDOCX FileType = "docx"
	FileTypeTXT  FileType = "txt"
	FileTypeJSON FileType = "json"
)

// textNativeFileTypes fall back to file_path directly when no
// extracted_content_path is present, per spec §4.2.
var textNativeFileTypes = map[FileType]bool{
	FileTypeCSV:  true,
	FileTypeTXT:  true,
	FileTypeJSON: true,
}

// IsTextNative reports whether the file type needs no extraction step.
func (t FileType) IsTextNative() bool {
	return textNativeFileTypes[t]
}

// ExtractionStatus is the lifecycle state of a data source's text extraction.
type ExtractionStatus string

const (
	ExtractionPending    ExtractionStatus = "pending"
	ExtractionProcessing ExtractionStatus = "processing"
	ExtractionCompleted  ExtractionStatus = "completed"
	ExtractionFailed     ExtractionStatus = "failed"
)

// DataSource is one uploaded reference file, versioned per project.
type DataSource struct {
	ID                   string           `db:"id" json:"id"`
	ProjectID            string           `db:"project_id" json:"project_id"`
	FileName             string           `db:"file_name" json:"file_name"`
	FilePath             string           `db:"file_path" json:"file_path"`
	FileSize             int64            `db:"file_size" json:"file_size"`
	FileType             FileType         `db:"file_type" json:"file_type"`
	ExtractedContentPath *string          `db:"extracted_content_path" json:"extracted_content_path,omitempty"`
	ExtractionStatus     ExtractionStatus `db:"extraction_status" json:"extraction_status"`
	ExtractionError      *string          `db:"extraction_error" json:"extraction_error,omitempty"`
	VersionNumber        int              `db:"version_number" json:"version_number"`
	IsLatest             bool             `db:"is_latest" json:"is_latest"`
	CreatedAt            time.Time        `db:"created_at" json:"created_at"`
}

// IsExtractionComplete reports whether this row is ready to be concatenated
// into reference data.
func (d *DataSource) IsExtractionComplete() bool {
	return d.ExtractionStatus == ExtractionCompleted
}
