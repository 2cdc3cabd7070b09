package minter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lwi-gis/nhdlabel/digitenc"
	"github.com/lwi-gis/nhdlabel/minter"
)

func TestNextMainstemSequence(t *testing.T) {
	m := minter.New(digitenc.Hex)
	first, err := m.NextMainstem()
	assert.NoError(t, err)
	assert.Equal(t, "01", first)

	second, err := m.NextMainstem()
	assert.NoError(t, err)
	assert.Equal(t, "02", second)
}

func TestNextFirstOrder(t *testing.T) {
	m := minter.New(digitenc.Hex)
	ms, err := m.NextMainstem()
	assert.NoError(t, err)

	fo, err := m.NextFirstOrder(ms)
	assert.NoError(t, err)
	assert.Equal(t, "0101", fo)

	fo2, err := m.NextFirstOrder(ms)
	assert.NoError(t, err)
	assert.Equal(t, "0102", fo2)
}

func TestNextNthOrder(t *testing.T) {
	m := minter.New(digitenc.Hex)
	label, err := m.NextNthOrder("0101-1")
	assert.NoError(t, err)
	assert.Equal(t, "0101-1", label)

	label2, err := m.NextNthOrder("0101-1")
	assert.NoError(t, err)
	assert.Equal(t, "0101-2", label2)
}

func TestNextForNextLevel(t *testing.T) {
	m := minter.New(digitenc.Hex)
	ms, _ := m.NextMainstem()
	fo, err := m.NextForNextLevel(1, ms)
	assert.NoError(t, err)
	assert.Equal(t, "0101", fo)

	deeper, err := m.NextForNextLevel(2, fo)
	assert.NoError(t, err)
	assert.Equal(t, "0101-1", deeper)

	deeper2, err := m.NextForNextLevel(3, deeper)
	assert.NoError(t, err)
	assert.Equal(t, "0101-1-1", deeper2)
}

func TestCounterOverflow(t *testing.T) {
	m := minter.New(digitenc.Hex)
	ms, _ := m.NextMainstem()
	for i := 0; i < 255; i++ {
		_, err := m.NextFirstOrder(ms)
		assert.NoError(t, err)
	}
	// 255 first-order labels minted; the 256th must fail.
	_, err := m.NextFirstOrder(ms)
	assert.ErrorIs(t, err, minter.ErrCounterOverflow)
}

func TestNextForPreviousLevelToMainstem(t *testing.T) {
	m := minter.New(digitenc.Hex)
	label, err := m.NextForPreviousLevel(0, "0101-1")
	assert.NoError(t, err)
	assert.Equal(t, "01", label)
}
