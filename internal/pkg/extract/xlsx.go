package extract

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yigit/photoalbum/internal/pkg/apperrors"
)

// xlsxReader reads the first worksheet; its first non-empty row is the header.
type xlsxReader struct {
	path   string
	book   *excelize.File
	rows   *excelize.Rows
	header *header
	row    int
}

func openXLSX(path string) (*xlsxReader, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewMalformedSourceFileError(path, err)
	}

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		book.Close()
		return nil, apperrors.NewMalformedSourceFileError(path, errors.New("workbook has no sheets"))
	}

	rows, err := book.Rows(sheets[0])
	if err != nil {
		book.Close()
		return nil, apperrors.NewMalformedSourceFileError(path, fmt.Errorf("reading sheet %q: %w", sheets[0], err))
	}

	x := &xlsxReader{path: path, book: book, rows: rows}
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			x.Close()
			return nil, apperrors.NewMalformedSourceFileError(path, err)
		}
		if blank(cols) {
			continue
		}
		x.header = newHeader(cols)
		return x, nil
	}

	x.Close()
	return nil, apperrors.NewMalformedSourceFileError(path, errors.New("empty sheet: no header row found"))
}

func (x *xlsxReader) Fields() []string {
	return x.header.names
}

func (x *xlsxReader) Next() (Record, error) {
	width := len(x.header.names)
	for x.rows.Next() {
		cols, err := x.rows.Columns()
		if err != nil {
			return Record{}, apperrors.NewMalformedSourceFileError(x.path, err)
		}
		if blank(cols) {
			continue
		}

		values := make([]string, width)
		for i := 0; i < width && i < len(cols); i++ {
			values[i] = strings.TrimSpace(cols[i])
		}

		x.row++
		return Record{h: x.header, values: values, Row: x.row}, nil
	}
	if err := x.rows.Error(); err != nil {
		return Record{}, apperrors.NewMalformedSourceFileError(x.path, err)
	}
	return Record{}, io.EOF
}

func (x *xlsxReader) Close() error {
	if x.rows != nil {
		_ = x.rows.Close()
	}
	return x.book.Close()
}
