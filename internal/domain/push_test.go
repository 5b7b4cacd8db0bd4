package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "true", "TRUE", "yes", "Y", "y"} {
		t.Run(s, func(t *testing.T) {
			v, err := ParseBool(s)
			require.NoError(t, err)
			assert.True(t, v)
		})
	}
	for _, s := range []string{"0", "false", "No", "n"} {
		t.Run(s, func(t *testing.T) {
			v, err := ParseBool(s)
			require.NoError(t, err)
			assert.False(t, v)
		})
	}
	for _, s := range []string{"maybe", "2", "on", ""} {
		t.Run("invalid "+s, func(t *testing.T) {
			_, err := ParseBool(s)
			assert.ErrorIs(t, err, ErrInvalidBool)
			assert.ErrorIs(t, err, ErrUsage)
		})
	}
}

func TestParsePushChoice(t *testing.T) {
	tests := []struct {
		input string
		want  PushChoice
	}{
		{"", PushAsk},
		{"yes", PushYes},
		{"0", PushNo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePushChoice(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParsePushChoice("sometimes")
	assert.ErrorIs(t, err, ErrInvalidBool)
}

func TestHTTPSRemoteURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"git@github.com:owner/repo.git", "https://github.com/owner/repo.git"},
		{"ssh://git@gitlab.com:2222/group/repo.git", "https://gitlab.com/group/repo.git"},
		{"ssh://git@example.org/repo", "https://example.org/repo"},
		{"https://github.com/owner/repo.git", "https://github.com/owner/repo.git"},
		{"/srv/repos/project", "/srv/repos/project"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPSRemoteURL(tt.input))
		})
	}
}
