package resume

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectHeadPDF(t *testing.T) {
	result, err := DetectHead([]byte("%PDF-1.7\n%binary"))
	require.NoError(t, err)
	require.Equal(t, TypePDF, result.Type)
	require.Equal(t, "application/pdf", result.MIME)
}

func TestDetectHeadDOCX(t *testing.T) {
	head := append([]byte{'P', 'K', 0x03, 0x04}, make([]byte, 60)...)
	result, err := DetectHead(head)
	require.NoError(t, err)
	require.Equal(t, TypeDOCX, result.Type)
}

func TestDetectHeadDOC(t *testing.T) {
	head := append([]byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}, make([]byte, 60)...)
	result, err := DetectHead(head)
	require.NoError(t, err)
	require.Equal(t, TypeDOC, result.Type)
	require.Equal(t, "application/msword", result.MIME)
}

func TestDetectHeadTXT(t *testing.T) {
	result, err := DetectHead([]byte("Jane Doe\nSenior Engineer\n\nExperience: ..."))
	require.NoError(t, err)
	require.Equal(t, TypeTXT, result.Type)
	require.Equal(t, "text/plain", result.MIME)
}

func TestDetectHeadRejectsBinaryJunk(t *testing.T) {
	_, err := DetectHead([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10})
	require.ErrorIs(t, err, ErrUnknownType)

	_, err = DetectHead(nil)
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestDetectReadsHead(t *testing.T) {
	payload := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 2048)...)

	result, head, err := Detect(bytes.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, TypePDF, result.Type)
	require.Len(t, head, 512)
}

func TestDetectShortFile(t *testing.T) {
	result, head, err := Detect(bytes.NewReader([]byte("%PDF-1.4")))
	require.NoError(t, err)
	require.Equal(t, TypePDF, result.Type)
	require.Equal(t, []byte("%PDF-1.4"), head)
}
