package memory_test

import (
	"errors"
	"testing"

	"github.com/aretw0/vine/pkg/adapters/memory"
	contract "github.com/aretw0/vine/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySource_Contract(t *testing.T) {
	src := memory.NewSource("gui.lua")
	contract.ScriptSourceContractTest(t, contract.SourceFixture{
		Source: src,
		Write:  func(t *testing.T, content string) { src.Write(content) },
		Remove: func(t *testing.T) { src.Remove() },
	})
}

func TestMemorySource_RecreateIsAChange(t *testing.T) {
	src := memory.NewSourceWith("gui.lua", "x = 1")
	before, err := src.Stat()
	require.NoError(t, err)

	src.Remove()
	src.Write("x = 1")

	after, err := src.Stat()
	require.NoError(t, err)
	assert.NotEqual(t, before, after, "same content written again must still change the stamp")
}

func TestMemorySource_FailStat(t *testing.T) {
	src := memory.NewSourceWith("gui.lua", "x = 1")
	boom := errors.New("disk on fire")
	src.FailStat(boom)

	_, err := src.Stat()
	assert.ErrorIs(t, err, boom)

	// Read is unaffected
	content, _, err := src.Read()
	require.NoError(t, err)
	assert.Equal(t, "x = 1", string(content))

	src.FailStat(nil)
	_, err = src.Stat()
	assert.NoError(t, err)
}
