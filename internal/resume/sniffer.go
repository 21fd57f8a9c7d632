package resume

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

type DocType string

const (
	TypePDF  DocType = "pdf"
	TypeDOCX DocType = "docx"
	TypeDOC  DocType = "doc"
	TypeTXT  DocType = "txt"
)

var ErrUnknownType = errors.New("unknown document type")

type Result struct {
	Type DocType
	MIME string
}

func Detect(r io.Reader) (Result, []byte, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, nil, err
	}
	head = head[:n]

	result, err := DetectHead(head)
	return result, head, err
}

func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	if isPDF(head) {
		return Result{Type: TypePDF, MIME: "application/pdf"}, nil
	}
	if isDOCX(head) {
		return Result{Type: TypeDOCX, MIME: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, nil
	}
	if isDOC(head) {
		return Result{Type: TypeDOC, MIME: "application/msword"}, nil
	}
	if isTXT(head) {
		return Result{Type: TypeTXT, MIME: "text/plain"}, nil
	}

	return Result{}, ErrUnknownType
}

func isPDF(head []byte) bool {
	return len(head) >= 5 && bytes.Equal(head[:5], []byte("%PDF-"))
}

// DOCX is a zip container. The docx/xlsx/pptx distinction needs the
// central directory, which the first 512 bytes do not hold; plain zip
// uploads are accepted as docx and rejected later by the reviewer.
func isDOCX(head []byte) bool {
	return len(head) >= 4 &&
		head[0] == 'P' && head[1] == 'K' &&
		head[2] == 0x03 && head[3] == 0x04
}

func isDOC(head []byte) bool {
	oleMagic := []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}
	return len(head) >= len(oleMagic) && bytes.Equal(head[:len(oleMagic)], oleMagic)
}

func isTXT(head []byte) bool {
	if !utf8.Valid(head) {
		return false
	}
	for _, b := range head {
		if b < 0x09 || (b > 0x0d && b < 0x20) {
			return false
		}
	}
	return true
}

func MimeTypeFromHTTP(header http.Header) string {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}
