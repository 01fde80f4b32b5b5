package cat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBorrowReturnsLowestFreeRegister(t *testing.T) {
	a := newAllocator()
	reg, preserve := a.borrow(noExclusion)
	assert.Equal(t, 0, reg)
	assert.False(t, preserve)
}

func TestBorrowExcludesRequestedRegister(t *testing.T) {
	a := newAllocator()
	reg, preserve := a.borrow(0)
	assert.Equal(t, 1, reg)
	assert.False(t, preserve)
}

func TestBorrowSetsPreserveWhenExhausted(t *testing.T) {
	a := newAllocator()
	for i := 0; i < numRegisters; i++ {
		reg, preserve := a.borrow(noExclusion)
		assert.Equal(t, i, reg)
		assert.False(t, preserve)
	}
	_, preserve := a.borrow(noExclusion)
	assert.True(t, preserve)
}

func TestGiveFreesUnpreservedRegister(t *testing.T) {
	a := newAllocator()
	reg, _ := a.borrow(noExclusion)
	a.give(reg, false)
	again, preserve := a.borrow(noExclusion)
	assert.Equal(t, reg, again)
	assert.False(t, preserve)
}

func TestGiveKeepsPreservedRegisterBorrowed(t *testing.T) {
	a := newAllocator()
	a.borrowed[2] = true
	preserve := a.borrowSpecific(2)
	assert.True(t, preserve)
	a.give(2, true)
	assert.True(t, a.borrowed[2])
}

func TestBorrowSpecificFreeRegister(t *testing.T) {
	a := newAllocator()
	preserve := a.borrowSpecific(3)
	assert.False(t, preserve)
	assert.True(t, a.borrowed[3])
}

func TestRegName(t *testing.T) {
	assert.Equal(t, "r0", regName(0))
	assert.Equal(t, "r6", regName(6))
}
