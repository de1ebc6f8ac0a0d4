package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
}

// AllowedContentTypes maps sniffed MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf": FileTypePDF,
}

// SpreadsheetContentType is the MIME type of the generated workbook.
const SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DownloadFileName is the attachment name of every generated workbook.
const DownloadFileName = "campaign_output.xlsx"

// Stage names one step of the conversion pipeline.
type Stage string

const (
	StageSave    Stage = "save"
	StageExtract Stage = "extract"
	StageParse   Stage = "parse"
	StageRender  Stage = "render"
	StageArchive Stage = "archive"
)
