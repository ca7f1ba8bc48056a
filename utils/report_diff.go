package utils

import (
	"encoding/json"
	"fmt"

	"github.com/meysamhadeli/talos/code_analyzer/models"
	"github.com/pmezard/go-difflib/difflib"
)

const diffContextLines = 3

// ParseDocument decodes a previously written scan document.
func ParseDocument(data []byte) (*models.Document, error) {
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

// SignatureListing flattens doc into one "path: signature" line per
// signature, in document order. A file without signatures contributes a bare
// "path:" line and a failed file an "path: error: message" line, so they show
// up in diffs too. Timestamps are left out.
func SignatureListing(doc *models.Document) []string {
	var lines []string
	for _, dir := range doc.Directories {
		for _, file := range dir.Files {
			if len(file.Signatures) == 0 {
				lines = append(lines, file.RelativeFilePath+":\n")
				continue
			}
			for _, signature := range file.Signatures {
				lines = append(lines, file.RelativeFilePath+": "+signature+"\n")
			}
		}
	}
	for _, entry := range doc.Errors {
		lines = append(lines, entry.Path+": error: "+entry.Error+"\n")
	}
	return lines
}

// DiffDocuments returns a unified diff between the signature listings of two
// documents. The result is empty when they carry the same signatures.
func DiffDocuments(fromName, toName string, from, to *models.Document) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        SignatureListing(from),
		B:        SignatureListing(to),
		FromFile: fromName,
		ToFile:   toName,
		Context:  diffContextLines,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("failed to build diff: %w", err)
	}
	return text, nil
}
