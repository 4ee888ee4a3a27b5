package export

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/deliberate/internal/record"
)

func TestJSONFileExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	rec := sampleRecord()

	require.NoError(t, JSONFile{Path: path}.Export(context.Background(), rec))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "exp-123", parsed["id"])
	assert.NotEmpty(t, parsed["utterances"])

	// Snake-case fields keep the file loadable as a replay fixture.
	utterances := parsed["utterances"].([]any)
	first := utterances[0].(map[string]any)
	assert.Equal(t, "alice", first["actor_id"])
	choice := first["choice"].(map[string]any)
	assert.Equal(t, 1.0, choice["principle_id"])
}

type stubExporter struct {
	called bool
	err    error
}

func (s *stubExporter) Export(context.Context, *record.ExperimentRecord) error {
	s.called = true
	return s.err
}

func TestMultiExport(t *testing.T) {
	t.Run("all run", func(t *testing.T) {
		a, b := &stubExporter{}, &stubExporter{}
		require.NoError(t, Multi{a, b}.Export(context.Background(), sampleRecord()))
		assert.True(t, a.called)
		assert.True(t, b.called)
	})

	t.Run("first error stops the chain", func(t *testing.T) {
		a := &stubExporter{err: errors.New("disk full")}
		b := &stubExporter{}
		err := Multi{a, b}.Export(context.Background(), sampleRecord())
		assert.Error(t, err)
		assert.False(t, b.called)
	})
}
