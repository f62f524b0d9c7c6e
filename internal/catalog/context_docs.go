package catalog

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Extensions treated as reference documents for the medical-question context.
var documentExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".docx": true,
}

// BuildDocumentContext concatenates every reference document in dir into a
// single context string, each file prefixed with a SOURCE header. Unreadable
// files are logged and skipped; a missing directory yields an empty context.
func BuildDocumentContext(dir string) string {
	fileEntries, err := os.ReadDir(dir)
	if err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("document context directory unavailable")
		return ""
	}

	var sb strings.Builder
	for _, entry := range fileEntries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !documentExtensions[ext] {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("skipping unreadable context document")
			continue
		}

		sb.WriteString("--- SOURCE: ")
		sb.WriteString(entry.Name())
		sb.WriteString(" ---\n")
		sb.Write(data)
		sb.WriteString("\n")
	}

	return sb.String()
}
