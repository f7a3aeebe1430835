package file_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/vine/pkg/adapters/file"
	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/ports"
	contract "github.com/aretw0/vine/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.ScriptSource = (*file.Source)(nil)

func TestFileSource_Contract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gui.lua")
	contract.ScriptSourceContractTest(t, contract.SourceFixture{
		Source: file.NewSource(path),
		Write: func(t *testing.T, content string) {
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		},
		Remove: func(t *testing.T) {
			require.NoError(t, os.Remove(path))
		},
	})
}

func TestFileSource_StampFollowsModTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gui.lua")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0644))
	src := file.NewSource(path)

	before, err := src.Stat()
	require.NoError(t, err)

	// Same size, newer mtime
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	after, err := src.Stat()
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
	assert.Equal(t, int64(5), after.Size)
}

func TestFileSource_Directory(t *testing.T) {
	src := file.NewSource(t.TempDir())
	_, err := src.Stat()
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrScriptNotFound, "a directory is a query failure, not a missing script")
}
