// Package frontmatter separates a `---` delimited YAML header from a
// Markdown body. Only reading is supported; authored pages are never
// rewritten in place.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a
// frontmatter delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("frontmatter opened but closing delimiter is missing")

// Split separates the raw YAML header (without delimiters) from the
// body. Documents without a header pass through whole with had false.
// Both LF and CRLF documents are accepted.
func Split(content []byte) (header, body []byte, had bool, err error) {
	nl := detectNewline(content)

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		// Empty header.
		return []byte{}, rest[len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
}

// Decode unmarshals the header into v and returns the body. A document
// without a header leaves v untouched.
func Decode(content []byte, v any) ([]byte, error) {
	header, body, had, err := Split(content)
	if err != nil {
		return nil, err
	}
	if !had || len(header) == 0 {
		return body, nil
	}
	if err := yaml.Unmarshal(header, v); err != nil {
		return nil, err
	}
	return body, nil
}

func detectNewline(content []byte) string {
	for i := 0; i < len(content); i++ {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
