package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultType_String(t *testing.T) {
	assert.Equal(t, "any", ResultAny.String())
	assert.Equal(t, "nodeset", ResultNodeSet.String())
	assert.Equal(t, "ResultType(9)", ResultType(9).String())
	assert.Equal(t, "unsupported result type: ResultType(200)",
		fmt.Errorf("%w: %v", ErrUnsupportedResult, ResultType(200)).Error())
}
