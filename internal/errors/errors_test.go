package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewAppError(ErrTypeParsing, "bad cell", nil),
			want: "[PARSING] bad cell",
		},
		{
			name: "with cause",
			err:  NewAppError(ErrTypeStorage, "write failed", fmt.Errorf("disk full")),
			want: "[STORAGE] write failed: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NewAppError(ErrTypeConfig, "config load failed", cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestIsType(t *testing.T) {
	err := NewSourceNotFoundError("data", "Import *.xlsx")
	assert.True(t, IsType(err, ErrTypeSourceNotFound))
	assert.False(t, IsType(err, ErrTypeAmbiguousYear))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrTypeSourceNotFound))

	wrapped := fmt.Errorf("pipeline: %w", err)
	assert.True(t, IsType(wrapped, ErrTypeSourceNotFound))
}

func TestLayoutMismatchContext(t *testing.T) {
	err := NewLayoutMismatchError("Import 2025.xlsx", "enrollment", "D1", "Studiengang", "Program")
	require.NotNil(t, err.Context)
	assert.Equal(t, "Import 2025.xlsx", err.Context["file"])
	assert.Equal(t, "enrollment", err.Context["category"])
	assert.Equal(t, "D1", err.Context["cell"])
	assert.Contains(t, err.Error(), "Studiengang")
}

func TestAmbiguousYearContext(t *testing.T) {
	err := NewAmbiguousYearError(2025, []string{"Import 2025.xlsx", "Import 2025.xls"})
	assert.Equal(t, 2025, err.Context["year"])
	assert.Len(t, err.Context["files"], 2)
}
