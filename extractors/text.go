package extractors

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// TextExtractor достает распознанный текст документа.
type TextExtractor interface {
	Extract(pdfPath string) (string, error)
}

// SidecarExtractor читает текст из файла-спутника рядом с PDF:
// для scan.pdf ожидается scan.txt с результатом распознавания.
// Распознаватели под Windows пишут текст в cp1251, поэтому файлы
// не в UTF-8 перекодируются.
type SidecarExtractor struct{}

// NewSidecarExtractor создает экстрактор текста из файлов-спутников.
func NewSidecarExtractor() *SidecarExtractor {
	return &SidecarExtractor{}
}

// Extract возвращает текст документа.
func (e *SidecarExtractor) Extract(pdfPath string) (string, error) {
	txtPath := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".txt"

	raw, err := os.ReadFile(txtPath)
	if err != nil {
		return "", fmt.Errorf("failed to read text for %q: %w", filepath.Base(pdfPath), err)
	}

	text, err := DecodeRussian(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode text for %q: %w", filepath.Base(pdfPath), err)
	}
	return text, nil
}

// DecodeRussian возвращает содержимое как UTF-8 строку.
// Валидный UTF-8 проходит как есть, остальное считается cp1251.
func DecodeRussian(raw []byte) (string, error) {
	raw = stripBOM(raw)
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, _, err := transform.Bytes(charmap.Windows1251.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("cp1251 decode: %w", err)
	}
	return string(decoded), nil
}

func stripBOM(raw []byte) []byte {
	if len(raw) >= 3 && raw[0] == 0xEF && raw[1] == 0xBB && raw[2] == 0xBF {
		return raw[3:]
	}
	return raw
}
