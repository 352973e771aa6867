package datatype_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/datatype"
)

func TestNullability(t *testing.T) {
	notNull := datatype.NewInteger("id", datatype.CanNotBeNull)
	assert.False(t, notNull.IsNull())
	assert.False(t, notNull.IsNullable())
	err := notNull.SetNull(true)
	require.Error(t, err)
	assert.ErrorIs(t, err, coffee.ErrInvalidData)
	assert.False(t, notNull.IsNull())

	nullable := datatype.NewString("name", 16, datatype.CanBeNull)
	assert.True(t, nullable.IsNull(), "nullable cells start as null")
	_, err = nullable.Value()
	assert.ErrorIs(t, err, coffee.ErrInvalidData)

	require.NoError(t, nullable.SetValue("Ada"))
	assert.False(t, nullable.IsNull())
	value, err := nullable.Value()
	require.NoError(t, err)
	assert.Equal(t, "Ada", value)

	require.NoError(t, nullable.SetNull(true))
	assert.True(t, nullable.IsNull())
}

func TestClear(t *testing.T) {
	notNull := datatype.NewInteger("id", datatype.CanNotBeNull)
	notNull.SetValue(42)
	notNull.Clear()
	value, err := notNull.Value()
	require.NoError(t, err)
	assert.Equal(t, int64(0), value)

	nullable := datatype.NewFloat("ratio", datatype.CanBeNull)
	nullable.SetValue(1.5)
	nullable.Clear()
	assert.True(t, nullable.IsNull())

	multi := datatype.NewMultiString("mail", datatype.CanNotBeNull)
	multi.Add("a@example.com")
	multi.Clear()
	assert.Equal(t, 0, multi.Len())
	assert.False(t, multi.IsNull())
}

func TestMaxSize(t *testing.T) {
	str := datatype.NewString("code", 3, datatype.CanNotBeNull)
	assert.NoError(t, str.SetValue("abc"))
	assert.ErrorIs(t, str.SetValue("abcd"), coffee.ErrInvalidData)
	value, _ := str.Value()
	assert.Equal(t, "abc", value, "a rejected value leaves the previous one")

	block := datatype.NewShortBlock("digest", 2, datatype.CanNotBeNull)
	assert.NoError(t, block.SetValue([]byte{1, 2}))
	assert.ErrorIs(t, block.SetValue([]byte{1, 2, 3}), coffee.ErrInvalidData)

	unlimited := datatype.NewString("text", 0, datatype.CanNotBeNull)
	assert.NoError(t, unlimited.SetValue(string(make([]byte, 4096))))
}

func TestCompare(t *testing.T) {
	a := datatype.NewInteger("a", datatype.CanBeNull)
	b := datatype.NewInteger("b", datatype.CanBeNull)

	r, err := a.Compare(b)
	require.NoError(t, err)
	assert.Equal(t, 0, r, "two nulls are equal")

	b.SetValue(-10)
	r, _ = a.Compare(b)
	assert.Equal(t, -1, r, "null sorts before a value")
	r, _ = b.Compare(a)
	assert.Equal(t, 1, r)

	a.SetValue(5)
	r, _ = a.Compare(b)
	assert.Equal(t, 1, r)
	b.SetValue(5)
	r, _ = a.Compare(b)
	assert.Equal(t, 0, r)

	_, err = a.Compare(datatype.NewString("s", 0, datatype.CanNotBeNull))
	assert.ErrorIs(t, err, coffee.ErrInvalidData)
	_, err = a.Compare(nil)
	assert.ErrorIs(t, err, coffee.ErrInvalidData)
}

func TestCompareEveryType(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		less, great func() datatype.Abstract
	}{
		{"integer", func() datatype.Abstract {
			v := datatype.NewInteger("v", datatype.CanNotBeNull)
			v.SetValue(1)
			return v
		}, func() datatype.Abstract {
			v := datatype.NewInteger("v", datatype.CanNotBeNull)
			v.SetValue(2)
			return v
		}},
		{"string", func() datatype.Abstract {
			v := datatype.NewString("v", 0, datatype.CanNotBeNull)
			_ = v.SetValue("Ada")
			return v
		}, func() datatype.Abstract {
			v := datatype.NewString("v", 0, datatype.CanNotBeNull)
			_ = v.SetValue("Lovelace")
			return v
		}},
		{"float", func() datatype.Abstract {
			v := datatype.NewFloat("v", datatype.CanNotBeNull)
			v.SetValue(-0.5)
			return v
		}, func() datatype.Abstract {
			v := datatype.NewFloat("v", datatype.CanNotBeNull)
			v.SetValue(0.5)
			return v
		}},
		{"date", func() datatype.Abstract {
			v := datatype.NewDate("v", datatype.CanNotBeNull)
			v.SetValue(now)
			return v
		}, func() datatype.Abstract {
			v := datatype.NewDate("v", datatype.CanNotBeNull)
			v.SetValue(now.Add(time.Second))
			return v
		}},
		{"timestamp", func() datatype.Abstract {
			v := datatype.NewTimeStamp("v", datatype.CanNotBeNull)
			v.SetValue(now)
			return v
		}, func() datatype.Abstract {
			v := datatype.NewTimeStamp("v", datatype.CanNotBeNull)
			v.SetValue(now.Add(time.Millisecond))
			return v
		}},
		{"short block", func() datatype.Abstract {
			v := datatype.NewShortBlock("v", 8, datatype.CanNotBeNull)
			_ = v.SetValue([]byte{1})
			return v
		}, func() datatype.Abstract {
			v := datatype.NewShortBlock("v", 8, datatype.CanNotBeNull)
			_ = v.SetValue([]byte{2})
			return v
		}},
		{"long block", func() datatype.Abstract {
			v := datatype.NewLongBlock("v", datatype.CanNotBeNull)
			v.SetValue([]byte("a"))
			return v
		}, func() datatype.Abstract {
			v := datatype.NewLongBlock("v", datatype.CanNotBeNull)
			v.SetValue([]byte("b"))
			return v
		}},
		{"multi string", func() datatype.Abstract {
			v := datatype.NewMultiString("v", datatype.CanNotBeNull)
			v.SetValues([]string{"a", "b"})
			return v
		}, func() datatype.Abstract {
			v := datatype.NewMultiString("v", datatype.CanNotBeNull)
			v.SetValues([]string{"a", "c"})
			return v
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			less, great := tt.less(), tt.great()
			r, err := less.Compare(great)
			require.NoError(t, err)
			assert.Equal(t, -1, r)
			r, err = great.Compare(less)
			require.NoError(t, err)
			assert.Equal(t, 1, r)

			twin := tt.less()
			r, err = less.Compare(twin)
			require.NoError(t, err)
			assert.Equal(t, 0, r)
			assert.Equal(t, less.Hash(), twin.Hash(), "equal values hash alike")

			clone := less.Clone()
			r, err = clone.Compare(less)
			require.NoError(t, err)
			assert.Equal(t, 0, r)
			assert.NotSame(t, less, clone)
		})
	}
}

func TestHashFloatZeroAndNaN(t *testing.T) {
	pos := datatype.NewFloat("v", datatype.CanNotBeNull)
	neg := datatype.NewFloat("v", datatype.CanNotBeNull)
	pos.SetValue(0)
	neg.SetValue(math.Copysign(0, -1))
	assert.Equal(t, pos.Hash(), neg.Hash())

	nan1 := datatype.NewFloat("v", datatype.CanNotBeNull)
	nan2 := datatype.NewFloat("v", datatype.CanNotBeNull)
	nan1.SetValue(math.NaN())
	nan2.SetValue(-math.NaN())
	assert.Equal(t, nan1.Hash(), nan2.Hash())
}

func TestHashDependsOnType(t *testing.T) {
	i := datatype.NewInteger("v", datatype.CanBeNull)
	f := datatype.NewFloat("v", datatype.CanBeNull)
	assert.NotEqual(t, i.Hash(), f.Hash(), "null cells of different types")
}

func TestAppendKeyFollowsCompare(t *testing.T) {
	key := func(c datatype.Abstract) string {
		return string(datatype.AppendKey(nil, c))
	}
	block := func(name string, value []byte) datatype.Abstract {
		b := datatype.NewLongBlock(name, datatype.CanBeNull)
		b.SetValue(value)
		return b
	}
	float := func(value float64) datatype.Abstract {
		f := datatype.NewFloat("ratio", datatype.CanNotBeNull)
		f.SetValue(value)
		return f
	}
	multi := func(values ...string) datatype.Abstract {
		m := datatype.NewMultiString("tags", datatype.CanBeNull)
		m.SetValues(values)
		return m
	}

	assert.Equal(t, key(block("a", []byte{1, 2})), key(block("b", []byte{1, 2})), "the name is not part of the key")
	assert.NotEqual(t, key(block("a", []byte{1, 2})), key(block("a", []byte{3, 4})), "same length, other bytes")
	assert.Equal(t, key(float(0)), key(float(math.Copysign(0, -1))))
	assert.Equal(t, key(float(math.NaN())), key(float(math.NaN())))
	assert.NotEqual(t, key(multi("ab")), key(multi("a", "b")))
	assert.NotEqual(t, key(multi()), key(datatype.NewMultiString("tags", datatype.CanBeNull)), "empty is not null")

	i := datatype.NewInteger("v", datatype.CanNotBeNull)
	i.SetValue(1)
	d := datatype.NewDate("v", datatype.CanNotBeNull)
	d.SetValue(time.Unix(1, 0))
	assert.NotEqual(t, key(i), key(d), "types are told apart")

	local := datatype.NewTimeStamp("at", datatype.CanNotBeNull)
	at := time.Date(2024, 5, 1, 10, 0, 0, 5, time.UTC)
	local.SetValue(at.In(time.FixedZone("CEST", 2*60*60)))
	utc := datatype.NewTimeStamp("at", datatype.CanNotBeNull)
	utc.SetValue(at)
	assert.Equal(t, key(utc), key(local), "one instant in two zones")

	composite := datatype.AppendKey(datatype.AppendKey(nil, multi("a")), multi("b"))
	assert.NotEqual(t, string(composite), key(multi("a", "b")))
}

func TestDateTruncatesToSeconds(t *testing.T) {
	d := datatype.NewDate("created", datatype.CanNotBeNull)
	d.SetValue(time.Date(2024, 5, 1, 10, 0, 0, 999, time.UTC))
	value, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, 0, value.Nanosecond())

	ts := datatype.NewTimeStamp("updated", datatype.CanNotBeNull)
	ts.SetValue(time.Date(2024, 5, 1, 10, 0, 0, 999, time.UTC))
	value, err = ts.Value()
	require.NoError(t, err)
	assert.Equal(t, 999, value.Nanosecond())
}

func TestCloneIsDeep(t *testing.T) {
	block := datatype.NewLongBlock("data", datatype.CanNotBeNull)
	block.SetValue([]byte{1, 2, 3})
	clone, err := datatype.AsLongBlock(block.Clone())
	require.NoError(t, err)
	block.SetValue([]byte{9})
	value, _ := clone.Value()
	assert.Equal(t, []byte{1, 2, 3}, value)

	multi := datatype.NewMultiString("alias", datatype.CanNotBeNull)
	multi.Add("one")
	multiClone, err := datatype.AsMultiString(multi.Clone())
	require.NoError(t, err)
	multi.Add("two")
	assert.Equal(t, 1, multiClone.Len())
}

func TestDowncast(t *testing.T) {
	var cell datatype.Abstract = datatype.NewInteger("id", datatype.CanNotBeNull)

	integer, err := datatype.AsInteger(cell)
	require.NoError(t, err)
	assert.Equal(t, "id", integer.Name())

	_, err = datatype.AsString(cell)
	assert.ErrorIs(t, err, coffee.ErrInvalidData)
	_, err = datatype.AsFloat(cell)
	assert.ErrorIs(t, err, coffee.ErrInvalidData)
	_, err = datatype.AsDate(cell)
	assert.ErrorIs(t, err, coffee.ErrInvalidData)
	_, err = datatype.AsTimeStamp(cell)
	assert.ErrorIs(t, err, coffee.ErrInvalidData)
	_, err = datatype.AsShortBlock(cell)
	assert.ErrorIs(t, err, coffee.ErrInvalidData)
	_, err = datatype.AsLongBlock(cell)
	assert.ErrorIs(t, err, coffee.ErrInvalidData)
	_, err = datatype.AsMultiString(cell)
	assert.ErrorIs(t, err, coffee.ErrInvalidData)
	_, err = datatype.AsInteger(nil)
	assert.ErrorIs(t, err, coffee.ErrInvalidData)
}

func TestString(t *testing.T) {
	name := datatype.NewString("name", 0, datatype.CanBeNull)
	assert.Equal(t, "String{name=<null>}", name.String())
	_ = name.SetValue("Ada")
	assert.Equal(t, `String{name="Ada"}`, name.String())

	id := datatype.NewInteger("id", datatype.CanNotBeNull)
	id.SetValue(42)
	assert.Equal(t, "Integer{id=42}", id.String())
	assert.Equal(t, "Integer", id.Type().String())
}

func TestAssign(t *testing.T) {
	src := datatype.NewString("name", 0, datatype.CanBeNull)
	dst := datatype.NewString("other", 3, datatype.CanBeNull)

	require.NoError(t, src.SetValue("Ada"))
	require.NoError(t, datatype.Assign(dst, src))
	value, err := dst.Value()
	require.NoError(t, err)
	assert.Equal(t, "Ada", value)

	require.NoError(t, src.SetNull(true))
	require.NoError(t, datatype.Assign(dst, src))
	assert.True(t, dst.IsNull())

	require.NoError(t, src.SetValue("Lovelace"))
	assert.ErrorIs(t, datatype.Assign(dst, src), coffee.ErrInvalidData, "max size of dst applies")

	notNull := datatype.NewString("id", 0, datatype.CanNotBeNull)
	require.NoError(t, src.SetNull(true))
	assert.ErrorIs(t, datatype.Assign(notNull, src), coffee.ErrInvalidData)

	assert.ErrorIs(t, datatype.Assign(datatype.NewInteger("id", datatype.CanNotBeNull), src), coffee.ErrInvalidData)

	multi := datatype.NewMultiString("alias", datatype.CanNotBeNull)
	multi.Add("one")
	multiCopy := datatype.NewMultiString("alias", datatype.CanNotBeNull)
	require.NoError(t, datatype.Assign(multiCopy, multi))
	multi.Add("two")
	assert.Equal(t, 1, multiCopy.Len())
}

func TestParseTypeAndNew(t *testing.T) {
	for name, want := range map[string]datatype.Type{
		"integer":      datatype.TypeInteger,
		"String":       datatype.TypeString,
		"float":        datatype.TypeFloat,
		"date":         datatype.TypeDate,
		"timestamp":    datatype.TypeTimeStamp,
		"short_block":  datatype.TypeShortBlock,
		"long_block":   datatype.TypeLongBlock,
		"multi_string": datatype.TypeMultiString,
	} {
		typ, err := datatype.ParseType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, typ, name)

		cell, err := datatype.New(typ, "field", 8, datatype.CanBeNull)
		require.NoError(t, err, name)
		assert.Equal(t, want, cell.Type())
		assert.True(t, cell.IsNull())
	}

	_, err := datatype.ParseType("decimal")
	assert.ErrorIs(t, err, coffee.ErrConfiguration)
	_, err = datatype.New(datatype.Type(99), "field", 0, datatype.CanBeNull)
	assert.ErrorIs(t, err, coffee.ErrConfiguration)
}
