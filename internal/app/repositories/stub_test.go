package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubDB struct {
	execFunc     func(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	queryFunc    func(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	queryRowFunc func(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (s *stubDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	if s.execFunc == nil {
		return pgconn.CommandTag{}, errors.New("exec not implemented")
	}
	return s.execFunc(ctx, sql, args...)
}

func (s *stubDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	if s.queryFunc == nil {
		return nil, errors.New("query not implemented")
	}
	return s.queryFunc(ctx, sql, args...)
}

func (s *stubDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	if s.queryRowFunc == nil {
		return stubRow{}
	}
	return s.queryRowFunc(ctx, sql, args...)
}

type stubRows struct {
	data [][]interface{}
	idx  int
	err  error
}

func (r *stubRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *stubRows) Scan(dest ...interface{}) error {
	if r.idx == 0 || r.idx > len(r.data) {
		return errors.New("no current row to scan")
	}
	return assign(r.data[r.idx-1], dest)
}

func (r *stubRows) Values() ([]interface{}, error) {
	if r.idx == 0 || r.idx > len(r.data) {
		return nil, errors.New("no current row")
	}
	return r.data[r.idx-1], nil
}

func (r *stubRows) RawValues() [][]byte { return nil }
func (r *stubRows) Err() error          { return r.err }
func (r *stubRows) Close()              {}
func (r *stubRows) CommandTag() pgconn.CommandTag {
	return pgconn.CommandTag{}
}
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

type stubRow struct {
	values []interface{}
	err    error
}

func (r stubRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	if r.values == nil {
		return errors.New("scan not implemented")
	}
	return assign(r.values, dest)
}

func assign(row []interface{}, dest []interface{}) error {
	if len(dest) != len(row) {
		return fmt.Errorf("destination length %d does not match row length %d", len(dest), len(row))
	}
	for i, target := range dest {
		switch v := target.(type) {
		case *string:
			*v = row[i].(string)
		case **string:
			*v, _ = row[i].(*string)
		case *int:
			*v = row[i].(int)
		case *int64:
			*v = row[i].(int64)
		case *uuid.UUID:
			*v = row[i].(uuid.UUID)
		case **uuid.UUID:
			*v, _ = row[i].(*uuid.UUID)
		default:
			return fmt.Errorf("unsupported scan target %T", target)
		}
	}
	return nil
}

var (
	insertRe   = regexp.MustCompile(`^INSERT INTO (\w+) \(([^)]*)\) VALUES `)
	conflictRe = regexp.MustCompile(`ON CONFLICT \((\w+)\) DO (NOTHING|UPDATE)`)
)

// memTable interprets the multi-row INSERT ... ON CONFLICT statements issued
// by bulkWrite into an in-memory table keyed by the conflict column.
type memTable struct {
	rows       map[string]map[string]interface{}
	order      []string
	statements int
	// failOn makes the n-th statement (1-based) fail.
	failOn int
}

func newMemTable() *memTable {
	return &memTable{rows: map[string]map[string]interface{}{}}
}

func (m *memTable) db() *stubDB {
	return &stubDB{execFunc: m.exec}
}

func (m *memTable) exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	m.statements++
	if m.failOn > 0 && m.statements == m.failOn {
		return pgconn.CommandTag{}, &pgconn.PgError{Code: "08006", Message: "connection lost"}
	}

	ins := insertRe.FindStringSubmatch(sql)
	conf := conflictRe.FindStringSubmatch(sql)
	if ins == nil || conf == nil {
		return pgconn.CommandTag{}, fmt.Errorf("unexpected statement: %s", sql)
	}
	cols := strings.Split(ins[2], ",")
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	if len(args)%len(cols) != 0 {
		return pgconn.CommandTag{}, fmt.Errorf("%d args do not fit %d columns", len(args), len(cols))
	}
	if len(args) > PostgresMaxParams {
		return pgconn.CommandTag{}, &pgconn.PgError{Code: "08P01", Message: "too many bind parameters"}
	}

	keyCol, update := conf[1], conf[2] == "UPDATE"
	affected := 0
	for off := 0; off < len(args); off += len(cols) {
		row := map[string]interface{}{}
		for i, c := range cols {
			row[c] = args[off+i]
		}
		key := fmt.Sprint(row[keyCol])
		existing, ok := m.rows[key]
		switch {
		case !ok:
			m.rows[key] = row
			m.order = append(m.order, key)
			affected++
		case update:
			for c, v := range row {
				if c != "id" {
					existing[c] = v
				}
			}
			affected++
		}
	}
	return pgconn.NewCommandTag(fmt.Sprintf("INSERT 0 %d", affected)), nil
}
