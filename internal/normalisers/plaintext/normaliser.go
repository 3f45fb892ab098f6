// Package plaintext normalises plain text documents.
package plaintext

import (
	"strings"
	"unicode/utf8"
)

const bom = "\uFEFF"

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalise prepares raw file content for chunking. It drops a leading
// byte order mark, converts CRLF and lone CR line endings to LF, removes
// NUL bytes and replaces invalid UTF-8 with U+FFFD. Paragraph breaks are
// preserved, so blank-line chunking sees the same structure on every
// platform.
func Normalise(content string) string {
	content = strings.TrimPrefix(content, bom)
	content = lineEndings.Replace(content)
	content = strings.ReplaceAll(content, "\x00", "")
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, string(utf8.RuneError))
	}
	return content
}
