package sqlite

import (
	"fmt"
	"strings"

	"github.com/ciscoruiz/coffee-sub002/datatype"
	"github.com/ciscoruiz/coffee-sub002/persistence"
)

// Query builds a SELECT whose conditions are positional parameters, in the
// order they were added.
type Query struct {
	table   string
	columns []string
	where   []string
	order   Orderer
	limit   int
	offset  int
	paged   bool
}

func Select(table string, columns ...string) *Query {
	return &Query{table: table, columns: columns}
}

// Where adds an equality condition per column.
func (q *Query) Where(columns ...string) *Query {
	q.where = append(q.where, columns...)
	return q
}

// OrderBy appends a column to the ordering. An Orderer set with Order that
// is neither an Order nor an Ordering is replaced.
func (q *Query) OrderBy(column string, dir OrderDirection) *Query {
	switch o := q.order.(type) {
	case Ordering:
		q.order = o.Then(column, dir)
	case Order:
		q.order = Ordering{o}.Then(column, dir)
	default:
		q.order = OrderBy(column, dir)
	}
	return q
}

func (q *Query) Order(order Orderer) *Query {
	q.order = order
	return q
}

func (q *Query) Limit(count int) *Query {
	q.limit = count
	return q
}

func (q *Query) Offset(from int) *Query {
	q.offset = from
	return q
}

// Paged takes limit and offset as the last two parameters of the query.
func (q *Query) Paged() *Query {
	q.paged = true
	return q
}

func (q *Query) String() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(q.columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(quoteAll(q.columns))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(quote(q.table))
	if len(q.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(conditions(q.where, " AND "))
	}
	if q.order != nil {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(q.order.OrderString())
	}
	switch {
	case q.paged:
		sb.WriteString(" LIMIT ? OFFSET ?")
	case q.limit > 0 || q.offset > 0:
		limit := q.limit
		if limit <= 0 {
			limit = -1
		}
		fmt.Fprintf(&sb, " LIMIT %d OFFSET %d", limit, q.offset)
	}
	return sb.String()
}

func InsertInto(table string, columns ...string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quote(table), quoteAll(columns), placeholders(len(columns)))
}

// Upsert inserts a row or, when keys already exist, updates its columns.
func Upsert(table string, keys, columns []string) string {
	all := append(append([]string{}, keys...), columns...)
	sql := InsertInto(table, all...)
	if len(columns) == 0 {
		return sql + fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", quoteAll(keys))
	}
	sets := make([]string, 0, len(columns))
	for _, c := range columns {
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", quote(c), quote(c)))
	}
	return sql + fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", quoteAll(keys), strings.Join(sets, ", "))
}

func Update(table string, keys, columns []string) string {
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s", quote(table), conditions(columns, ", "), conditions(keys, " AND "))
}

func DeleteFrom(table string, keys ...string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", quote(table), conditions(keys, " AND "))
}

// CreateTable returns the DDL of a table holding objects of class.
func CreateTable(table string, class *persistence.Class) string {
	pk := class.PrimaryKey()
	defs := make([]string, 0, pk.Size()+class.MemberSize()+1)
	for _, c := range pk.Components() {
		defs = append(defs, columnDefinition(c))
	}
	for _, m := range class.Members() {
		defs = append(defs, columnDefinition(m))
	}
	keys := make([]string, 0, pk.Size())
	for _, c := range pk.Components() {
		keys = append(keys, c.Name())
	}
	defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", quoteAll(keys)))
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(table), strings.Join(defs, ", "))
}

func DropTable(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", quote(table))
}

// ColumnType is the declared SQLite type for cells of typ. Dates are
// declared so that go-sqlite3 hands them back as time.Time.
func ColumnType(typ datatype.Type) string {
	switch typ {
	case datatype.TypeInteger:
		return "INTEGER"
	case datatype.TypeFloat:
		return "REAL"
	case datatype.TypeDate:
		return "DATE"
	case datatype.TypeTimeStamp:
		return "TIMESTAMP"
	case datatype.TypeShortBlock, datatype.TypeLongBlock:
		return "BLOB"
	}
	return "TEXT"
}

func columnDefinition(cell datatype.Abstract) string {
	def := quote(cell.Name()) + " " + ColumnType(cell.Type())
	if !cell.IsNullable() {
		def += " NOT NULL"
	}
	return def
}

func quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func quoteAll(names []string) string {
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		quoted = append(quoted, quote(n))
	}
	return strings.Join(quoted, ", ")
}

func conditions(columns []string, sep string) string {
	conds := make([]string, 0, len(columns))
	for _, c := range columns {
		conds = append(conds, quote(c)+" = ?")
	}
	return strings.Join(conds, sep)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
