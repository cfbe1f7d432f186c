package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCmd_SetUseView(t *testing.T) {
	isolateEnv(t)

	code, out := runCLI(t, "-o", "json", "config", "set-profile",
		"--name", "ci", "--default-output", "json", "--workers", "4", "--parse-policy", "score-generated-as-miss")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, `"profile": "ci"`)

	code, out = runCLI(t, "config", "set-profile", "--name", "local", "--output-dir", "out")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, `Profile "local" saved`)

	code, out = runCLI(t, "config", "use-profile", "ci")
	require.Equal(t, 0, code, out)
	assert.Equal(t, "Active profile set to \"ci\"\n", out)

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "ci", cfg.CurrentProfile)
	assert.Equal(t, Profile{Output: "json", Workers: 4, ParsePolicy: "score-generated-as-miss"}, cfg.Profiles["ci"])
	assert.Equal(t, Profile{OutputDir: "out"}, cfg.Profiles["local"])

	t.Run("view json", func(t *testing.T) {
		// The active profile selects JSON output on its own.
		code, out := runCLI(t, "config", "view")
		require.Equal(t, 0, code, out)
		var got struct {
			CurrentProfile string             `json:"current_profile"`
			Profiles       map[string]Profile `json:"profiles"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "ci", got.CurrentProfile)
		assert.Len(t, got.Profiles, 2)
	})

	t.Run("view table", func(t *testing.T) {
		code, out := runCLI(t, "-o", "table", "config", "view")
		require.Equal(t, 0, code, out)
		assert.Contains(t, out, "PROFILE")
		assert.Contains(t, out, "ci")
		assert.Contains(t, out, "local")
	})
}

func TestConfigCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing name", []string{"config", "set-profile", "--workers", "2"}},
		{"bad output", []string{"config", "set-profile", "--name", "x", "--default-output", "yaml"}},
		{"bad policy", []string{"config", "set-profile", "--name", "x", "--parse-policy", "lenient"}},
		{"bad workers", []string{"config", "set-profile", "--name", "x", "--workers", "0"}},
		{"use unknown", []string{"config", "use-profile", "nope"}},
		{"view without file", []string{"config", "view"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			code, _ := runCLI(t, tt.args...)
			assert.Equal(t, 1, code)
		})
	}
}
