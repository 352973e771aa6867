package sqlite

import (
	"fmt"
	"sync"

	"github.com/ciscoruiz/coffee-sub002/datatype"
	"github.com/ciscoruiz/coffee-sub002/dbms"
	"github.com/ciscoruiz/coffee-sub002/persistence"
)

// Table maps the objects of a class onto one SQLite table: one column per key
// component and member, named after them.
//
// Every accessor is built over a statement of its own, so an accessor must not
// be shared between goroutines. Keep it around to reuse it from one.
type Table struct {
	db    *dbms.Database
	class *persistence.Class
	name  string

	mu   sync.Mutex
	seq  int
	keys *keyLister
}

func NewTable(db *dbms.Database, class *persistence.Class, name string) *Table {
	if name == "" {
		name = class.Name()
	}
	return &Table{db: db, class: class, name: name}
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) Class() *persistence.Class {
	return t.class
}

func (t *Table) Loader() (*persistence.ClassLoader, error) {
	query := Select(t.name, t.class.MemberNames()...).Where(t.keyNames()...)
	stmt, err := t.statement("loader", query.String(), dbms.StatementParameters{ActionOnError: dbms.Ignore})
	if err != nil {
		return nil, err
	}
	return persistence.NewClassLoader(stmt.Name(), stmt, t.class)
}

// Recorder writes the whole object, inserting it when its key is new.
func (t *Table) Recorder() (*persistence.ClassRecorder, error) {
	stmt, err := t.statement("recorder", Upsert(t.name, t.keyNames(), t.class.MemberNames()), writer())
	if err != nil {
		return nil, err
	}
	return persistence.NewClassRecorder(stmt.Name(), stmt, t.class)
}

func (t *Table) Eraser() (*persistence.ClassEraser, error) {
	stmt, err := t.statement("eraser", DeleteFrom(t.name, t.keyNames()...), writer())
	if err != nil {
		return nil, err
	}
	return persistence.NewClassEraser(stmt.Name(), stmt, t.class)
}

// Creator inserts a new row; it fails when the key is already taken.
func (t *Table) Creator() (*persistence.ClassCreator, error) {
	columns := append(t.keyNames(), t.class.MemberNames()...)
	stmt, err := t.statement("creator", InsertInto(t.name, columns...), writer())
	if err != nil {
		return nil, err
	}
	return persistence.NewClassCreator(stmt.Name(), stmt, t.class)
}

func (t *Table) CreateSQL() string {
	return CreateTable(t.name, t.class)
}

// Migration creates the table on the way up and drops it on the way down.
func (t *Table) Migration() Migration {
	return Migration{Up: t.CreateSQL(), Down: DropTable(t.name)}
}

// ListKeys returns up to limit keys ordered by key components, skipping the
// first offset ones.
func (t *Table) ListKeys(conn *dbms.Connection, offset, limit int) ([]*persistence.PrimaryKey, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.keys == nil {
		lister, err := t.newKeyLister()
		if err != nil {
			return nil, err
		}
		t.keys = lister
	}
	return t.keys.list(conn, offset, limit)
}

func (t *Table) keyNames() []string {
	return keyColumns(t.class)
}

func keyColumns(class *persistence.Class) []string {
	components := class.PrimaryKey().Components()
	names := make([]string, 0, len(components))
	for _, c := range components {
		names = append(names, c.Name())
	}
	return names
}

func (t *Table) statement(use, expression string, params dbms.StatementParameters) (*dbms.Statement, error) {
	t.mu.Lock()
	t.seq++
	name := fmt.Sprintf("%s.%s.%d", t.name, use, t.seq)
	t.mu.Unlock()
	return t.db.CreateStatement(name, expression, params)
}

func writer() dbms.StatementParameters {
	return dbms.StatementParameters{ActionOnError: dbms.Rollback, RequiresCommit: true}
}

type keyLister struct {
	stmt   *dbms.Statement
	key    *persistence.PrimaryKey
	offset *datatype.Integer
	limit  *datatype.Integer
}

// newKeyLister must be called with mu held.
func (t *Table) newKeyLister() (*keyLister, error) {
	query := Select(t.name, t.keyNames()...).Order(KeyOrder(t.class, ASC))
	t.seq++
	stmt, err := t.db.CreateStatement(fmt.Sprintf("%s.keys.%d", t.name, t.seq), query.Paged().String(), dbms.StatementParameters{ActionOnError: dbms.Ignore})
	if err != nil {
		return nil, err
	}
	l := &keyLister{
		stmt:   stmt,
		key:    t.class.PrimaryKey(),
		limit:  datatype.NewInteger("limit", datatype.CanNotBeNull),
		offset: datatype.NewInteger("offset", datatype.CanNotBeNull),
	}
	if err := stmt.BindInput(l.limit); err != nil {
		return nil, err
	}
	if err := stmt.BindInput(l.offset); err != nil {
		return nil, err
	}
	for _, c := range l.key.Components() {
		if err := stmt.BindOutput(c); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *keyLister) list(conn *dbms.Connection, offset, limit int) ([]*persistence.PrimaryKey, error) {
	if limit <= 0 {
		limit = -1
	}
	l.limit.SetValue(int64(limit))
	l.offset.SetValue(int64(offset))

	var keys []*persistence.PrimaryKey
	err := dbms.WithConnection(conn, func(gc *dbms.GuardConnection) error {
		return gc.WithStatement(l.stmt, func(gs *dbms.GuardStatement) error {
			if _, err := gs.Execute(); err != nil {
				return err
			}
			for {
				found, err := gs.Fetch()
				if err != nil {
					return err
				}
				if !found {
					return nil
				}
				keys = append(keys, l.key.Clone())
			}
		})
	})
	return keys, err
}
