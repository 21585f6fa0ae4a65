package extract

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/photoalbum/internal/pkg/apperrors"
)

type dbfCol struct {
	name   string
	typ    byte
	length int
}

// writeDBF builds a dBase III file. Rows prefixed with '*' are written as deleted.
func writeDBF(t *testing.T, cols []dbfCol, rows [][]byte, trailer []byte) string {
	t.Helper()

	recordLen := 1
	for _, c := range cols {
		recordLen += c.length
	}
	headerLen := dbfHeaderSize + len(cols)*dbfDescriptorSize + 1

	buf := make([]byte, 0, headerLen+len(rows)*recordLen+1)
	hdr := make([]byte, dbfHeaderSize)
	hdr[0] = 0x03
	hdr[1], hdr[2], hdr[3] = 125, 1, 15
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(rows)))
	binary.LittleEndian.PutUint16(hdr[8:10], uint16(headerLen))
	binary.LittleEndian.PutUint16(hdr[10:12], uint16(recordLen))
	buf = append(buf, hdr...)

	for _, c := range cols {
		fd := make([]byte, dbfDescriptorSize)
		copy(fd[:11], c.name)
		fd[11] = c.typ
		fd[16] = byte(c.length)
		buf = append(buf, fd...)
	}
	buf = append(buf, dbfFieldTerm)

	for _, r := range rows {
		require.Len(t, r, recordLen, "fixture row has wrong width")
		buf = append(buf, r...)
	}
	buf = append(buf, trailer...)

	path := filepath.Join(t.TempDir(), "fixture.dbf")
	require.NoError(t, os.WriteFile(path, buf, 0o600))
	return path
}

// dbfRow pads each value to its column width behind a deletion flag.
func dbfRow(flag byte, cols []dbfCol, values ...string) []byte {
	row := []byte{flag}
	for i, c := range cols {
		cell := make([]byte, c.length)
		for j := range cell {
			cell[j] = ' '
		}
		copy(cell, values[i])
		row = append(row, cell...)
	}
	return row
}

func readAll(t *testing.T, r Reader) []Record {
	t.Helper()
	var out []Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

var stateCols = []dbfCol{
	{name: "CODE", typ: 'C', length: 4},
	{name: "STATE", typ: 'C', length: 12},
	{name: "SCHOOLS", typ: 'N', length: 5},
}

func TestDBF_ReadsRecordsAndSkipsDeleted(t *testing.T) {
	path := writeDBF(t, stateCols, [][]byte{
		dbfRow(' ', stateCols, "LA", "Lagos", "  120"),
		dbfRow('*', stateCols, "XX", "Deleted", "0"),
		dbfRow(' ', stateCols, "KN", "Kano", "45"),
	}, []byte{dbfEOF})

	r, err := Open(path, Options{})
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"CODE", "STATE", "SCHOOLS"}, r.Fields())

	recs := readAll(t, r)
	require.Len(t, recs, 2)
	assert.Equal(t, "LA", recs[0].Get("code"))
	assert.Equal(t, "Lagos", recs[0].Get("STATE", "NAME"))
	assert.Equal(t, "120", recs[0].Get("SCHOOLS"))
	assert.Equal(t, 1, recs[0].Row)
	assert.Equal(t, "Kano", recs[1].Get("state"))
	assert.Equal(t, 2, recs[1].Row)
}

func TestDBF_DecodesLatin1Text(t *testing.T) {
	cols := []dbfCol{{name: "CAND_NAME", typ: 'C', length: 10}}
	row := dbfRow(' ', cols, "Ren\xe9e")
	path := writeDBF(t, cols, [][]byte{row}, []byte{dbfEOF})

	r, err := Open(path, Options{Encoding: "latin1"})
	require.NoError(t, err)
	defer r.Close()

	recs := readAll(t, r)
	require.Len(t, recs, 1)
	assert.Equal(t, "Renée", recs[0].Get("cand_name"))
}

func TestDBF_TruncatedTrailingRecordEndsStream(t *testing.T) {
	full := dbfRow(' ', stateCols, "LA", "Lagos", "1")
	partial := dbfRow(' ', stateCols, "KN", "Kano", "2")[:6]
	path := writeDBF(t, stateCols, [][]byte{full}, partial)

	// Claim two records while only one and a half are present.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(data[4:8], 2)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	r, err := Open(path, Options{})
	require.NoError(t, err)
	defer r.Close()

	recs := readAll(t, r)
	require.Len(t, recs, 1)
	assert.Equal(t, "LA", recs[0].Get("CODE"))
}

func TestDBF_InvalidHeaderIsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.dbf")
	require.NoError(t, os.WriteFile(path, []byte{0x03, 0x01}, 0o600))

	_, err := Open(path, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMalformedSourceFile)
}

func TestDBF_MissingFileIsMalformed(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.dbf"), Options{})
	assert.ErrorIs(t, err, apperrors.ErrMalformedSourceFile)
}

func TestOpen_UnsupportedExtension(t *testing.T) {
	_, err := Open("states.parquet", Options{})
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)
	assert.ErrorIs(t, err, apperrors.ErrMalformedSourceFile)
	assert.False(t, Supported("states.parquet"))
	assert.True(t, Supported("MASTER.DBF"))
}

func TestOpen_UnknownEncoding(t *testing.T) {
	_, err := Open("states.dbf", Options{Encoding: "klingon-8"})
	assert.ErrorIs(t, err, apperrors.ErrMalformedSourceFile)
}
