package extract

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/yigit/photoalbum/internal/pkg/apperrors"
	"github.com/yigit/photoalbum/internal/pkg/logger"
	"golang.org/x/text/encoding"
)

const (
	dbfHeaderSize     = 32
	dbfDescriptorSize = 32
	dbfFieldTerm      = 0x0D
	dbfEOF            = 0x1A
	dbfDeleted        = '*'
)

type dbfField struct {
	name     string
	typ      byte
	length   int
	decimals int
	// hidden marks system columns such as the FoxPro _NullFlags field
	hidden bool
}

type dbfReader struct {
	path      string
	file      *os.File
	r         *bufio.Reader
	dec       *encoding.Decoder
	fields    []dbfField
	header    *header
	records   uint32
	recordLen int
	consumed  uint32
	row       int
	buf       []byte
}

func openDBF(path string, enc encoding.Encoding) (*dbfReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewMalformedSourceFileError(path, err)
	}

	d, err := readDBFHeader(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	d.dec = enc.NewDecoder()
	return d, nil
}

func readDBFHeader(path string, f *os.File) (*dbfReader, error) {
	var hdr [dbfHeaderSize]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return nil, apperrors.NewMalformedSourceFileError(path, fmt.Errorf("reading dbf header: %w", err))
	}

	records := binary.LittleEndian.Uint32(hdr[4:8])
	headerLen := int(binary.LittleEndian.Uint16(hdr[8:10]))
	recordLen := int(binary.LittleEndian.Uint16(hdr[10:12]))
	if headerLen < dbfHeaderSize+1 || recordLen < 1 {
		return nil, apperrors.NewMalformedSourceFileError(path,
			fmt.Errorf("invalid dbf header: header length %d, record length %d", headerLen, recordLen))
	}

	desc := make([]byte, headerLen-dbfHeaderSize)
	if _, err := io.ReadFull(f, desc); err != nil {
		return nil, apperrors.NewMalformedSourceFileError(path, fmt.Errorf("reading dbf field descriptors: %w", err))
	}

	var fields []dbfField
	terminated := false
	for off := 0; off < len(desc); off += dbfDescriptorSize {
		if desc[off] == dbfFieldTerm {
			terminated = true
			break
		}
		if off+dbfDescriptorSize > len(desc) {
			break
		}
		fd := desc[off : off+dbfDescriptorSize]
		name := fd[:11]
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		fields = append(fields, dbfField{
			name:     strings.TrimSpace(string(name)),
			typ:      fd[11],
			length:   int(fd[16]),
			decimals: int(fd[17]),
			hidden:   fd[11] == '0',
		})
	}
	if !terminated || len(fields) == 0 {
		return nil, apperrors.NewMalformedSourceFileError(path, errors.New("dbf field descriptor array is empty or unterminated"))
	}

	width := 1
	var names []string
	for _, fl := range fields {
		width += fl.length
		if !fl.hidden {
			names = append(names, fl.name)
		}
	}
	if width > recordLen {
		return nil, apperrors.NewMalformedSourceFileError(path,
			fmt.Errorf("dbf fields span %d bytes but records are %d bytes", width, recordLen))
	}

	// Records start at headerLen; the descriptor read above already ends there.
	return &dbfReader{
		path:      path,
		file:      f,
		r:         bufio.NewReaderSize(f, 64*1024),
		fields:    fields,
		header:    newHeader(names),
		records:   records,
		recordLen: recordLen,
		buf:       make([]byte, recordLen),
	}, nil
}

func (d *dbfReader) Fields() []string {
	return d.header.names
}

func (d *dbfReader) Next() (Record, error) {
	for {
		if d.consumed >= d.records {
			return Record{}, io.EOF
		}

		n, err := io.ReadFull(d.r, d.buf)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				if n > 0 && d.buf[0] != dbfEOF {
					logger.Warn().Str("path", d.path).Int("row", d.row+1).Int("bytes", n).
						Msg("Truncated trailing dbf record ignored")
				}
				return Record{}, io.EOF
			}
			return Record{}, apperrors.NewMalformedSourceFileError(d.path, err)
		}
		d.consumed++

		switch d.buf[0] {
		case dbfEOF:
			return Record{}, io.EOF
		case dbfDeleted:
			continue
		}

		values := make([]string, 0, len(d.header.names))
		off := 1
		for _, fl := range d.fields {
			raw := d.buf[off : off+fl.length]
			off += fl.length
			if fl.hidden {
				continue
			}
			values = append(values, d.value(fl, raw))
		}

		d.row++
		return Record{h: d.header, values: values, Row: d.row}, nil
	}
}

// value renders one field as text. Character data is decoded from the
// configured code page; everything else is ASCII in the dBase format.
func (d *dbfReader) value(fl dbfField, raw []byte) string {
	raw = bytes.TrimRight(raw, "\x00")
	switch fl.typ {
	case 'I':
		if len(raw) == 4 {
			return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(raw))), 10)
		}
		return ""
	case 'L':
		if len(raw) == 0 {
			return ""
		}
		switch raw[0] {
		case 'T', 't', 'Y', 'y':
			return "T"
		case 'F', 'f', 'N', 'n':
			return "F"
		}
		return ""
	case 'C', 'V', 'M':
		return strings.TrimSpace(decodeBytes(d.dec, raw))
	default:
		return strings.TrimSpace(strings.ToValidUTF8(string(raw), ""))
	}
}

func (d *dbfReader) Close() error {
	return d.file.Close()
}
