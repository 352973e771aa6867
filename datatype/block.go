package datatype

import (
	"bytes"
	"encoding/hex"
	"strconv"

	"github.com/ciscoruiz/coffee-sub002"
)

// ShortBlock is a binary value with a maximum size, stored inline by most
// backends.
type ShortBlock struct {
	cell
	maxSize int
	value   []byte
}

func NewShortBlock(name string, maxSize int, constraint Constraint) *ShortBlock {
	return &ShortBlock{cell: newCell(name, TypeShortBlock, constraint), maxSize: maxSize}
}

func (b *ShortBlock) MaxSize() int {
	return b.maxSize
}

// Value returns a copy of the stored bytes.
func (b *ShortBlock) Value() ([]byte, error) {
	if err := b.checkValue(); err != nil {
		return nil, err
	}
	return bytes.Clone(b.value), nil
}

func (b *ShortBlock) SetValue(value []byte) error {
	if b.maxSize > 0 && len(value) > b.maxSize {
		return coffee.InvalidDataError("%s: %d bytes exceeds the max size %d", b.name, len(value), b.maxSize)
	}
	b.value = bytes.Clone(value)
	b.isNull = false
	return nil
}

func (b *ShortBlock) Clear() {
	b.value = nil
	b.reset()
}

func (b *ShortBlock) Clone() Abstract {
	clone := *b
	clone.value = bytes.Clone(b.value)
	return &clone
}

func (b *ShortBlock) Compare(other Abstract) (int, error) {
	o, ok := other.(*ShortBlock)
	if !ok {
		return 0, mismatch(b, other)
	}
	if r, done := compareNulls(b, o); done {
		return r, nil
	}
	return bytes.Compare(b.value, o.value), nil
}

func (b *ShortBlock) Hash() uint64 {
	return hashOf(b, b.value)
}

func (b *ShortBlock) canonical() []byte {
	return b.value
}

func (b *ShortBlock) String() string {
	if b.isNull {
		return nullString(b)
	}
	return "ShortBlock{" + b.name + "=" + hex.EncodeToString(b.value) + "}"
}

// LongBlock is a binary value without size limit.
type LongBlock struct {
	cell
	value []byte
}

func NewLongBlock(name string, constraint Constraint) *LongBlock {
	return &LongBlock{cell: newCell(name, TypeLongBlock, constraint)}
}

// Value returns a copy of the stored bytes.
func (b *LongBlock) Value() ([]byte, error) {
	if err := b.checkValue(); err != nil {
		return nil, err
	}
	return bytes.Clone(b.value), nil
}

func (b *LongBlock) SetValue(value []byte) {
	b.value = bytes.Clone(value)
	b.isNull = false
}

func (b *LongBlock) Clear() {
	b.value = nil
	b.reset()
}

func (b *LongBlock) Clone() Abstract {
	clone := *b
	clone.value = bytes.Clone(b.value)
	return &clone
}

func (b *LongBlock) Compare(other Abstract) (int, error) {
	o, ok := other.(*LongBlock)
	if !ok {
		return 0, mismatch(b, other)
	}
	if r, done := compareNulls(b, o); done {
		return r, nil
	}
	return bytes.Compare(b.value, o.value), nil
}

func (b *LongBlock) Hash() uint64 {
	return hashOf(b, b.value)
}

func (b *LongBlock) canonical() []byte {
	return b.value
}

// String does not dump the content, only its size.
func (b *LongBlock) String() string {
	if b.isNull {
		return nullString(b)
	}
	return "LongBlock{" + b.name + "=" + strconv.Itoa(len(b.value)) + " bytes}"
}
