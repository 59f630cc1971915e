package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLICommands(t *testing.T) {
	cliApp := newCLI()

	want := map[string][]string{
		"serve":    nil,
		"migrate":  {"init", "up", "down", "status"},
		"targets":  {"generate"},
		"ratings":  {"recalculate"},
		"rankings": nil,
		"stats":    {"reset"},
	}
	for name, subs := range want {
		cmd := cliApp.Command(name)
		if !assert.NotNil(t, cmd, name) {
			continue
		}
		var got []string
		for _, sub := range cmd.Subcommands {
			got = append(got, sub.Name)
		}
		assert.Equal(t, subs, got, name)
	}
}

func TestJoinOrNone(t *testing.T) {
	assert.Equal(t, "none", joinOrNone(nil))
	assert.Equal(t, "a, b", joinOrNone([]string{"a", "b"}))
}
