package dictionary

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents the kinds of candidate list files
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatText               // newline delimited strings
	FormatBinary             // anything with NUL bytes in its head
)

// sniffSize is how much of a file is inspected to detect its format.
const sniffSize = 1024

// FormatInfo contains metadata about a candidate list format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Word List",
		Extensions:  []string{"", ".txt", ".lst", ".words", ".dic"},
	},
}

// ValidateFile checks that filename is a regular, readable text list.
// The extension is only logged when unusual; content decides.
func ValidateFile(filename string) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("%s is a directory, expected a word list", filename)
	}

	format, err := DetectFileFormat(filename)
	if err != nil {
		return err
	}
	if format != FormatText {
		return fmt.Errorf("file %s does not look like a text word list", filename)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !hasExtension(supportedFormats[FormatText], ext) {
		log.Debugf("Unusual extension %q for word list %s", ext, filename)
	}
	return nil
}

// DetectFileFormat sniffs the head of filename.
func DetectFileFormat(filename string) (FileFormat, error) {
	file, err := os.Open(filename)
	if err != nil {
		return FormatUnknown, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	buffer := make([]byte, sniffSize)
	n, err := file.Read(buffer)
	if n == 0 {
		// empty lists are valid, they just index nothing
		if fileInfo, statErr := file.Stat(); statErr == nil && fileInfo.Size() == 0 {
			return FormatText, nil
		}
		return FormatUnknown, fmt.Errorf("failed to read from %s: %w", filename, err)
	}
	return detectFormat(buffer[:n]), nil
}

func detectFormat(head []byte) FileFormat {
	if bytes.IndexByte(head, 0) >= 0 {
		return FormatBinary
	}
	return FormatText
}

func hasExtension(info FormatInfo, ext string) bool {
	for _, e := range info.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
