package persistence_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ciscoruiz/coffee-sub002/datatype"
	"github.com/ciscoruiz/coffee-sub002/dbms"
	"github.com/ciscoruiz/coffee-sub002/dbms/mock"
	"github.com/ciscoruiz/coffee-sub002/persistence"
)

const (
	selectPerson = "SELECT name FROM person WHERE id=?"
	upsertPerson = "UPSERT person (id, name)"
	insertPerson = "INSERT person (id, name)"
	deletePerson = "DELETE person WHERE id=?"
)

// fixture is a person table kept by the mock driver, with one connection
// and one storage in front of it.
type fixture struct {
	driver  *mock.Driver
	table   *mock.Table
	db      *dbms.Database
	conn    *dbms.Connection
	class   *persistence.Class
	storage *persistence.Storage
	seq     int
}

func newFixture(t *testing.T, maxCacheSize int) *fixture {
	t.Helper()
	f := &fixture{driver: mock.NewDriver(), table: mock.NewTable(1)}
	f.driver.Handle(selectPerson, 1, 1, f.table.Select)
	f.driver.Handle(upsertPerson, 2, 0, f.table.Upsert)
	f.driver.Handle(insertPerson, 2, 0, f.table.Insert)
	f.driver.Handle(deletePerson, 1, 0, f.table.Delete)

	f.db = dbms.NewDatabase("test", f.driver)
	t.Cleanup(func() { f.db.Close() })
	conn, err := f.db.CreateConnection("main", dbms.ConnectionParameters{})
	require.NoError(t, err)
	f.conn = conn
	f.class = personClass(t)
	f.storage = persistence.NewStorage("person", maxCacheSize)
	return f
}

func personClass(t *testing.T) *persistence.Class {
	t.Helper()
	pk, err := persistence.NewPrimaryKeyBuilder().
		Add(datatype.NewInteger("id", datatype.CanNotBeNull)).
		Build()
	require.NoError(t, err)
	class, err := persistence.NewClassBuilder("person").
		SetPrimaryKey(pk).
		AddMember(datatype.NewString("name", 64, datatype.CanBeNull)).
		Build()
	require.NoError(t, err)
	return class
}

func (f *fixture) statement(t *testing.T, use, expression string, params dbms.StatementParameters) *dbms.Statement {
	t.Helper()
	f.seq++
	stmt, err := f.db.CreateStatement(fmt.Sprintf("%s-%d", use, f.seq), expression, params)
	require.NoError(t, err)
	return stmt
}

func (f *fixture) loader(t *testing.T, id int64) *persistence.ClassLoader {
	t.Helper()
	stmt := f.statement(t, "load", selectPerson, dbms.StatementParameters{ActionOnError: dbms.Ignore})
	loader, err := persistence.NewClassLoader(stmt.Name(), stmt, f.class)
	require.NoError(t, err)
	setID(t, loader.PrimaryKey(), id)
	return loader
}

func (f *fixture) recorder(t *testing.T) *persistence.ClassRecorder {
	t.Helper()
	stmt := f.statement(t, "record", upsertPerson, dbms.StatementParameters{RequiresCommit: true})
	recorder, err := persistence.NewClassRecorder(stmt.Name(), stmt, f.class)
	require.NoError(t, err)
	return recorder
}

func (f *fixture) eraser(t *testing.T, id int64) *persistence.ClassEraser {
	t.Helper()
	stmt := f.statement(t, "erase", deletePerson, dbms.StatementParameters{RequiresCommit: true})
	eraser, err := persistence.NewClassEraser(stmt.Name(), stmt, f.class)
	require.NoError(t, err)
	setID(t, eraser.PrimaryKey(), id)
	return eraser
}

func (f *fixture) creator(t *testing.T, id int64, name string) *persistence.ClassCreator {
	t.Helper()
	stmt := f.statement(t, "create", insertPerson, dbms.StatementParameters{RequiresCommit: true})
	creator, err := persistence.NewClassCreator(stmt.Name(), stmt, f.class)
	require.NoError(t, err)
	setID(t, creator.PrimaryKey(), id)
	member, err := creator.Member("name")
	require.NoError(t, err)
	text, err := datatype.AsString(member)
	require.NoError(t, err)
	require.NoError(t, text.SetValue(name))
	return creator
}

// loads counts the backend executions of the person loaders.
func (f *fixture) loads() int {
	return f.driver.Executions(selectPerson)
}

func newKey(t *testing.T, id int64) *persistence.PrimaryKey {
	t.Helper()
	pk, err := persistence.NewPrimaryKeyBuilder().
		Add(datatype.NewInteger("id", datatype.CanNotBeNull)).
		Build()
	require.NoError(t, err)
	setID(t, pk, id)
	return pk
}

func setID(t *testing.T, pk *persistence.PrimaryKey, id int64) {
	t.Helper()
	component, err := pk.Component(0)
	require.NoError(t, err)
	integer, err := datatype.AsInteger(component)
	require.NoError(t, err)
	integer.SetValue(id)
}

func nameOf(t *testing.T, obj *persistence.Object) string {
	t.Helper()
	member, err := obj.Text("name")
	require.NoError(t, err)
	value, err := member.Value()
	require.NoError(t, err)
	return value
}

func setName(t *testing.T, obj *persistence.Object, name string) {
	t.Helper()
	member, err := obj.Text("name")
	require.NoError(t, err)
	require.NoError(t, member.SetValue(name))
}
