package sqlite_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciscoruiz/coffee-sub002/datatype"
	"github.com/ciscoruiz/coffee-sub002/dbms"
	"github.com/ciscoruiz/coffee-sub002/dbms/sqlite"
	"github.com/ciscoruiz/coffee-sub002/persistence"
)

var (
	born = time.Date(1815, time.December, 10, 0, 0, 0, 0, time.UTC)
	seen = time.Date(2026, time.March, 3, 14, 15, 9, 265358979, time.UTC)
)

// fixture is a migrated person table in a file database of its own.
type fixture struct {
	driver *sqlite.Driver
	db     *dbms.Database
	conn   *dbms.Connection
	class  *persistence.Class
	table  *sqlite.Table
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	driver, err := sqlite.Open(filepath.Join(t.TempDir(), "coffee.db"))
	require.NoError(t, err)
	t.Cleanup(func() { driver.Close() })

	f := &fixture{driver: driver, db: dbms.NewDatabase("test", driver)}
	t.Cleanup(func() { f.db.Close() })
	f.conn, err = f.db.CreateConnection("main", dbms.ConnectionParameters{})
	require.NoError(t, err)

	f.class = personClass(t)
	f.table = sqlite.NewTable(f.db, f.class, "person")
	require.NoError(t, sqlite.NewMigratorWithMigrations([]sqlite.Migration{f.table.Migration()}).Update(driver.DB()))
	return f
}

// personClass keys people by (id, code) and has a member of each type.
func personClass(t *testing.T) *persistence.Class {
	t.Helper()
	pk, err := persistence.NewPrimaryKeyBuilder().
		Add(datatype.NewInteger("id", datatype.CanNotBeNull)).
		Add(datatype.NewString("code", 8, datatype.CanNotBeNull)).
		Build()
	require.NoError(t, err)
	class, err := persistence.NewClassBuilder("person").
		SetPrimaryKey(pk).
		AddMember(datatype.NewString("name", 64, datatype.CanBeNull)).
		AddMember(datatype.NewFloat("score", datatype.CanNotBeNull)).
		AddMember(datatype.NewDate("born", datatype.CanBeNull)).
		AddMember(datatype.NewTimeStamp("seen", datatype.CanBeNull)).
		AddMember(datatype.NewShortBlock("avatar", 16, datatype.CanBeNull)).
		AddMember(datatype.NewLongBlock("notes", datatype.CanBeNull)).
		AddMember(datatype.NewMultiString("tags", datatype.CanBeNull)).
		Build()
	require.NoError(t, err)
	return class
}

func setKey(t *testing.T, pk *persistence.PrimaryKey, id int64, code string) {
	t.Helper()
	c, err := pk.Find("id")
	require.NoError(t, err)
	integer, err := datatype.AsInteger(c)
	require.NoError(t, err)
	integer.SetValue(id)

	c, err = pk.Find("code")
	require.NoError(t, err)
	text, err := datatype.AsString(c)
	require.NoError(t, err)
	require.NoError(t, text.SetValue(code))
}

func newKey(t *testing.T, id int64, code string) *persistence.PrimaryKey {
	t.Helper()
	pk := personClass(t).PrimaryKey()
	setKey(t, pk, id, code)
	return pk
}

type memberFunc func(name string) (datatype.Abstract, error)

// fill gives every member of a person a value.
func fill(t *testing.T, member memberFunc, name string) {
	t.Helper()
	get := func(n string) datatype.Abstract {
		cell, err := member(n)
		require.NoError(t, err)
		return cell
	}
	text, err := datatype.AsString(get("name"))
	require.NoError(t, err)
	require.NoError(t, text.SetValue(name))

	score, err := datatype.AsFloat(get("score"))
	require.NoError(t, err)
	score.SetValue(97.5)

	date, err := datatype.AsDate(get("born"))
	require.NoError(t, err)
	date.SetValue(born)

	ts, err := datatype.AsTimeStamp(get("seen"))
	require.NoError(t, err)
	ts.SetValue(seen)

	avatar, err := datatype.AsShortBlock(get("avatar"))
	require.NoError(t, err)
	require.NoError(t, avatar.SetValue([]byte{0xca, 0xfe}))

	notes, err := datatype.AsLongBlock(get("notes"))
	require.NoError(t, err)
	notes.SetValue([]byte("first program"))

	tags, err := datatype.AsMultiString(get("tags"))
	require.NoError(t, err)
	tags.SetValues([]string{"math", "poetry"})
}

// checkFilled asserts the values written by fill.
func checkFilled(t *testing.T, obj *persistence.Object, name string) {
	t.Helper()
	text, err := obj.Text("name")
	require.NoError(t, err)
	v, err := text.Value()
	require.NoError(t, err)
	assert.Equal(t, name, v)

	score, err := obj.Float("score")
	require.NoError(t, err)
	f, err := score.Value()
	require.NoError(t, err)
	assert.Equal(t, 97.5, f)

	date, err := obj.Date("born")
	require.NoError(t, err)
	d, err := date.Value()
	require.NoError(t, err)
	assert.True(t, born.Equal(d), "born %v", d)

	ts, err := obj.TimeStamp("seen")
	require.NoError(t, err)
	s, err := ts.Value()
	require.NoError(t, err)
	assert.True(t, seen.Equal(s), "seen %v", s)

	avatar, err := obj.ShortBlock("avatar")
	require.NoError(t, err)
	b, err := avatar.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xca, 0xfe}, b)

	notes, err := obj.LongBlock("notes")
	require.NoError(t, err)
	b, err = notes.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("first program"), b)

	tags, err := obj.MultiString("tags")
	require.NoError(t, err)
	values, err := tags.Values()
	require.NoError(t, err)
	assert.Equal(t, []string{"math", "poetry"}, values)
}

func (f *fixture) create(t *testing.T, storage *persistence.Storage, id int64, code, name string) *persistence.Object {
	t.Helper()
	creator, err := f.table.Creator()
	require.NoError(t, err)
	setKey(t, creator.PrimaryKey(), id, code)
	fill(t, creator.Member, name)
	obj, err := storage.Create(f.conn, creator)
	require.NoError(t, err)
	return obj
}

func (f *fixture) load(t *testing.T, storage *persistence.Storage, id int64, code string) (*persistence.Object, error) {
	t.Helper()
	loader, err := f.table.Loader()
	require.NoError(t, err)
	setKey(t, loader.PrimaryKey(), id, code)
	return storage.Load(f.conn, loader)
}
