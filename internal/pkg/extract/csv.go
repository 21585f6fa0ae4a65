package extract

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yigit/photoalbum/internal/pkg/apperrors"
	"github.com/yigit/photoalbum/internal/pkg/logger"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 64 * 1024

type csvReader struct {
	path   string
	file   *os.File
	cr     *csv.Reader
	header *header
	line   int
	row    int
}

// openCSV streams a delimited file through a decoder. A leading BOM selects
// UTF-8/UTF-16; otherwise valid UTF-8 is kept as is and anything else is
// decoded with fallback.
func openCSV(path string, fallback encoding.Encoding) (*csvReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewMalformedSourceFileError(path, err)
	}

	br := bufio.NewReaderSize(f, sniffSize)
	peek, _ := br.Peek(sniffSize)
	enc := fallback
	if looksUTF8(peek) {
		enc = unicode.UTF8
	}

	cr := csv.NewReader(transform.NewReader(br, unicode.BOMOverride(enc.NewDecoder())))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	names, err := cr.Read()
	if err != nil {
		f.Close()
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewMalformedSourceFileError(path, errors.New("empty file: no header row found"))
		}
		return nil, apperrors.NewMalformedSourceFileError(path, fmt.Errorf("failed to read header row: %w", err))
	}
	for i, n := range names {
		names[i] = strings.TrimPrefix(strings.TrimSpace(n), "\uFEFF")
	}

	return &csvReader{
		path:   path,
		file:   f,
		cr:     cr,
		header: newHeader(names),
		line:   1,
	}, nil
}

func (c *csvReader) Fields() []string {
	return c.header.names
}

func (c *csvReader) Next() (Record, error) {
	width := len(c.header.names)
	for {
		fields, err := c.cr.Read()
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		c.line++
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				logger.Warn().Str("path", c.path).Int("line", c.line).Err(err).Msg("Skipping unparseable csv row")
				continue
			}
			return Record{}, apperrors.NewMalformedSourceFileError(c.path, err)
		}

		if blank(fields) {
			continue
		}

		values := make([]string, width)
		for i := 0; i < width && i < len(fields); i++ {
			values[i] = strings.TrimSpace(fields[i])
		}

		c.row++
		return Record{h: c.header, values: values, Row: c.row}, nil
	}
}

func (c *csvReader) Close() error {
	return c.file.Close()
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
