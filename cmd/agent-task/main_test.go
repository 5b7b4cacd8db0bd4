package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanRunWithoutRepo(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{nil, true},
		{[]string{"help"}, true},
		{[]string{"create", "--help"}, true},
		{[]string{"--version"}, true},
		{[]string{"config", "show"}, true},
		{[]string{"config", "init", "--global"}, true},
		{[]string{"create", "feat"}, false},
		{[]string{"start-work", "--task-description", "x"}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canRunWithoutRepo(tt.args), "%v", tt.args)
	}
}
