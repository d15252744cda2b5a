package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClient(t *testing.T) {
	cfg, err := LoadClient(newFlagSet(), []string{"posts", "2"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, "feedhub-client.db", cfg.DBPath)

	t.Setenv("FEEDHUB_SERVER", "https://feed.example.com")
	t.Setenv("FEEDHUB_CLIENT_DB", "/tmp/env.db")

	fs := newFlagSet()
	cfg, err = LoadClient(fs, []string{"-db", "/tmp/flag.db", "post", "abc"})
	require.NoError(t, err)
	assert.Equal(t, "https://feed.example.com", cfg.ServerURL)
	assert.Equal(t, "/tmp/flag.db", cfg.DBPath)
	assert.Equal(t, []string{"post", "abc"}, fs.Args())
}

func TestLoadClient_Errors(t *testing.T) {
	for _, server := range []string{"localhost:8080", "ftp://host", "http://"} {
		_, err := LoadClient(newFlagSet(), []string{"-server", server})
		assert.Error(t, err, server)
	}

	t.Setenv("FEEDHUB_CLIENT_LOG_LEVEL", "loud")
	_, err := LoadClient(newFlagSet(), nil)
	assert.Error(t, err)
}
