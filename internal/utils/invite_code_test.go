package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateInviteCode(t *testing.T) {
	code, err := GenerateInviteCode()
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`), code)
	require.Equal(t, code, NormalizeInviteCode(" "+code+" "))
}

func TestNewPaginationParams(t *testing.T) {
	p := NewPaginationParams(3, 10)
	require.Equal(t, 20, p.Offset)

	p = NewPaginationParams(0, 1000)
	require.Equal(t, 1, p.Page)
	require.Equal(t, 20, p.Limit)
	require.Equal(t, int64(7), p.Response(7).Total)
}
