package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"
)

// Op is the kind of change a Row describes.
type Op int

const (
	OpInsert Op = iota
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Row is one resolved change to a table.
//
// Inserts carry every column of the table. Updates set Columns on the row
// whose primary key is Key. Deletes remove the row with primary key Key, or
// when Columns is set, every row matching all Columns/Values.
type Row struct {
	Op      Op
	Table   string
	Key     int64
	Columns []string
	Values  []any
}

// Batch accumulates the rows of one input record in order. A Batch is
// committed whole or discarded.
type Batch struct {
	rows []Row
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Insert appends the insert rows of entities.
func (b *Batch) Insert(entities ...Entity) {
	for _, e := range entities {
		b.rows = append(b.rows, e.Row())
	}
}

// Update appends an update of the given columns of the row with key.
func (b *Batch) Update(table string, key int64, columns []string, values ...any) {
	b.rows = append(b.rows, Row{Op: OpUpdate, Table: table, Key: key, Columns: columns, Values: values})
}

// Delete appends a delete of the row with key.
func (b *Batch) Delete(table string, key int64) {
	b.rows = append(b.rows, Row{Op: OpDelete, Table: table, Key: key})
}

// DeleteWhere appends a delete of every row whose columns equal values.
func (b *Batch) DeleteWhere(table string, columns []string, values ...any) {
	b.rows = append(b.rows, Row{Op: OpDelete, Table: table, Columns: columns, Values: values})
}

// Rows returns the accumulated rows.
func (b *Batch) Rows() []Row {
	return b.rows
}

// Len returns the number of accumulated rows.
func (b *Batch) Len() int {
	return len(b.rows)
}

// Count returns the number of rows of op on table.
func (b *Batch) Count(table string, op Op) int {
	n := 0
	for _, r := range b.rows {
		if r.Table == table && r.Op == op {
			n++
		}
	}
	return n
}

// statement renders a row as SQL with "?" placeholders.
func (r Row) statement() (string, []any, error) {
	t, err := lookupTable(r.Table)
	if err != nil {
		return "", nil, err
	}
	if len(r.Columns) != len(r.Values) {
		return "", nil, fmt.Errorf("%s %s: %d columns, %d values", r.Op, r.Table, len(r.Columns), len(r.Values))
	}

	switch r.Op {
	case OpInsert:
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(r.Columns)), ", ")
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.Table, strings.Join(r.Columns, ", "), marks)
		return q, r.Values, nil
	case OpUpdate:
		sets := make([]string, len(r.Columns))
		for i, c := range r.Columns {
			sets[i] = c + " = ?"
		}
		q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", r.Table, strings.Join(sets, ", "), t.key)
		return q, append(append([]any{}, r.Values...), r.Key), nil
	case OpDelete:
		if len(r.Columns) == 0 {
			return fmt.Sprintf("DELETE FROM %s WHERE %s = ?", r.Table, t.key), []any{r.Key}, nil
		}
		conds := make([]string, len(r.Columns))
		for i, c := range r.Columns {
			conds[i] = c + " = ?"
		}
		return fmt.Sprintf("DELETE FROM %s WHERE %s", r.Table, strings.Join(conds, " AND ")), r.Values, nil
	default:
		return "", nil, fmt.Errorf("unknown op %d", int(r.Op))
	}
}

// Commit writes a batch. In transactional mode every row is executed in
// order inside one transaction. In bulk mode updates and deletes run first,
// then inserts are appended table by table and flushed.
func (s *Store) Commit(ctx context.Context, b *Batch) error {
	if b == nil || len(b.rows) == 0 {
		return nil
	}
	if s.bulk {
		return s.commitBulk(ctx, b)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := s.execRows(ctx, tx, b.rows); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execRows(ctx context.Context, ex execer, rows []Row) error {
	for _, r := range rows {
		q, args, err := r.statement()
		if err != nil {
			return err
		}
		if _, err := ex.ExecContext(ctx, s.rebind(q), args...); err != nil {
			return fmt.Errorf("%s %s: %w", r.Op, r.Table, err)
		}
	}
	return nil
}

func (s *Store) commitBulk(ctx context.Context, b *Batch) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var inserts []Row
	var changes []Row
	for _, r := range b.rows {
		if r.Op == OpInsert {
			inserts = append(inserts, r)
		} else {
			changes = append(changes, r)
		}
	}
	if err := s.execRows(ctx, conn, changes); err != nil {
		return err
	}

	// Group inserts per table, keeping first-seen table order.
	var order []string
	byTable := make(map[string][]Row)
	for _, r := range inserts {
		if _, ok := byTable[r.Table]; !ok {
			order = append(order, r.Table)
		}
		byTable[r.Table] = append(byTable[r.Table], r)
	}

	for _, name := range order {
		if err := appendRows(conn, name, byTable[name]); err != nil {
			return err
		}
	}
	return nil
}

// appendRows writes insert rows through the DuckDB Appender API.
func appendRows(conn *sql.Conn, table string, rows []Row) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender for %s: %w", table, err)
	}
	defer appender.Close()

	for _, r := range rows {
		values := make([]driver.Value, len(r.Values))
		for i, v := range r.Values {
			values[i] = v
		}
		if err := appender.AppendRow(values...); err != nil {
			return fmt.Errorf("append %s: %w", table, err)
		}
	}
	return appender.Flush()
}
