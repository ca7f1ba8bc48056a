package models

// SchemaVersion is written to every Document.
const SchemaVersion = "1.0"

// RootDirectoryPath is the DirectoryPath used for files directly under the scan root.
const RootDirectoryPath = "."

// Document is the result of one scan.
type Document struct {
	SchemaVersion string           `json:"schema_version"`
	LastUpdated   string           `json:"last_updated"`
	Directories   []DirectoryEntry `json:"directories"`
	Errors        []ErrorEntry     `json:"errors"`
}

// DirectoryEntry groups the files that share a parent directory.
type DirectoryEntry struct {
	DirectoryPath string      `json:"directory_path"`
	Files         []FileEntry `json:"files"`
}

// FileEntry holds the signatures extracted from one file.
type FileEntry struct {
	FileName         string   `json:"file_name"`
	RelativeFilePath string   `json:"relative_file_path"`
	LastScanned      string   `json:"last_scanned"`
	Signatures       []string `json:"signatures"`
	Summary          *string  `json:"summary,omitempty"`
}

// ErrorEntry records a file whose extraction failed.
type ErrorEntry struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// FileCount returns the number of files across all directories.
func (d *Document) FileCount() int {
	count := 0
	for _, dir := range d.Directories {
		count += len(dir.Files)
	}
	return count
}

// SignatureCount returns the number of signatures across all files.
func (d *Document) SignatureCount() int {
	count := 0
	for _, dir := range d.Directories {
		for _, file := range dir.Files {
			count += len(file.Signatures)
		}
	}
	return count
}
