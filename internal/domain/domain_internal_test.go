package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr string
	}{
		{"Empty", "", "at least 50"},
		{"Short whitespace", strings.Repeat(" ", 10), "at least 50"},
		{"Whitespace in range", strings.Repeat(" ", 60), ""},
		{"Forty characters", strings.Repeat("a", 40), "at least 50"},
		{"Lower bound", strings.Repeat("a", MinInputLength), ""},
		{"Upper bound", strings.Repeat("a", MaxInputLength), ""},
		{"Too long", strings.Repeat("a", MaxInputLength+1), "too long"},
		{"Multibyte counted as characters", strings.Repeat("é", MinInputLength), ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ValidateInput(test.text)
			if test.wantErr == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			require.Equal(t, KindValidation, KindOf(err))
			require.Contains(t, err.Error(), test.wantErr)
		})
	}
}

func TestExcerpt(t *testing.T) {
	require.Equal(t, "short", Excerpt("short"))

	long := strings.Repeat("ж", ExcerptLength+20)
	excerpt := Excerpt(long)
	require.Equal(t, ExcerptLength, TextLength(excerpt))
	require.True(t, strings.HasPrefix(long, excerpt))
}

func TestCompressionRatio(t *testing.T) {
	require.Equal(t, 25, CompressionRatio(400, 100))
	require.Equal(t, 33, CompressionRatio(300, 100))
	require.Equal(t, 67, CompressionRatio(300, 200))
	require.Equal(t, 0, CompressionRatio(0, 10))
}

func TestKindOf(t *testing.T) {
	require.Equal(t, ErrorKind(""), KindOf(nil))
	require.Equal(t, KindInternal, KindOf(errors.New("boom")))

	wrapped := fmt.Errorf("save history: %w", NewStorageError("write failed", errors.New("disk full")))
	require.Equal(t, KindStorage, KindOf(wrapped))
	require.Contains(t, wrapped.Error(), "disk full")
}
