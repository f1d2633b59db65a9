// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package xdg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestConfigDir(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"xdg config home wins", map[string]string{"XDG_CONFIG_HOME": "/custom/config", "HOME": "/home/u"}, "/custom/config/lireddit"},
		{"falls back to home", map[string]string{"HOME": "/home/testuser"}, "/home/testuser/.config/lireddit"},
		{"nothing set", map[string]string{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigDir(envOf(tt.env)))
		})
	}
}

func TestConfigFile(t *testing.T) {
	assert.Equal(t, "/custom/config/lireddit/config.yaml",
		ConfigFile(envOf(map[string]string{"XDG_CONFIG_HOME": "/custom/config"})))
	assert.Empty(t, ConfigFile(envOf(nil)))
}
