package llvmgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertAsmPlaceholders(t *testing.T) {
	assert.Equal(t, "mov ${0}, ${1}", convertAsmPlaceholders("mov $0, $1"))
	assert.Equal(t, "nop", convertAsmPlaceholders("nop"))
	assert.Equal(t, "mov ${12}, 3", convertAsmPlaceholders("mov $12, 3"))
}

func TestBuildConstraintString(t *testing.T) {
	got := buildConstraintString([]string{"r"}, []string{"r", "i"}, []string{"eax"})
	assert.Equal(t, "=r,r,i,~{eax}", got)
}

func TestBuildConstraintStringNoClobbers(t *testing.T) {
	got := buildConstraintString(nil, []string{"r"}, nil)
	assert.Equal(t, "r", got)
}

func TestParseIntText(t *testing.T) {
	assert.EqualValues(t, 42, parseIntText("42"))
	assert.EqualValues(t, 0, parseIntText("not-a-number"))
	assert.EqualValues(t, 3, parseIntText("3.14"))
}
