package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeReceiveCode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "simple", in: "alice", want: "alice"},
		{name: "uppercase folded", in: "ALICE", want: "alice"},
		{name: "trimmed", in: "  alice  ", want: "alice"},
		{name: "invalid chars stripped", in: "my phone!", want: "myphone"},
		{name: "hyphen and underscore kept", in: "my-phone_2", want: "my-phone_2"},
		{name: "empty", in: "", wantErr: ErrNoCode},
		{name: "too short", in: "ab", wantErr: ErrCodeTooShort},
		{name: "too short after stripping", in: "a!!b", wantErr: ErrCodeTooShort},
		{name: "too long", in: strings.Repeat("a", 31), wantErr: ErrCodeTooLong},
		{name: "max length ok", in: strings.Repeat("a", 30), want: strings.Repeat("a", 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeReceiveCode(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
