package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadChunkingDefaults(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "")
	t.Setenv("CHUNK_OVERLAP", "")

	cfg := Load()

	assert.Equal(t, 1200, cfg.Upload.ChunkSize)
	assert.Equal(t, 150, cfg.Upload.ChunkOverlap)
}

func TestLoadChunkingOverrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "800")
	t.Setenv("CHUNK_OVERLAP", "80")

	cfg := Load()

	assert.Equal(t, 800, cfg.Upload.ChunkSize)
	assert.Equal(t, 80, cfg.Upload.ChunkOverlap)
}
