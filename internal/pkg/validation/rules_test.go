package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPassport(t *testing.T) {
	assert.True(t, IsPassport("A12345"))
	assert.True(t, IsPassport("AB1234567890123"))
	assert.False(t, IsPassport("A123"))
	assert.False(t, IsPassport("a12345"))
	assert.False(t, IsPassport("AB-12345"))
	assert.False(t, IsPassport("AB12345678901234"))
}

func TestIsIATA(t *testing.T) {
	assert.True(t, IsIATA("DSS"))
	assert.True(t, IsIATA("JED"))
	assert.False(t, IsIATA("dss"))
	assert.False(t, IsIATA("DS"))
	assert.False(t, IsIATA("D5S"))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("awa@bmvt.sn"))
	assert.False(t, IsEmail("awa"))
	assert.False(t, IsEmail(""))
}

func TestNormalizePassport(t *testing.T) {
	assert.Equal(t, "AB123456", NormalizePassport("  ab123456 "))
}
