package cmd

import (
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/molang/cli/cmd/repl"
)

func TestRepl_HistoryPath(t *testing.T) {
	dir := t.TempDir()

	var cli struct {
		Repl Repl `cmd:""`
	}

	parser, err := kong.New(&cli,
		kong.Vars{CacheIdentifier: dir}.CloneWith(Vars()),
	)
	require.NoError(t, err)

	ktx, err := parser.Parse([]string{"repl", "-c", "scale=2"})
	require.NoError(t, err)

	ctx := WithContext(t.Context(), ktx)

	assert.Equal(t, filepath.Join(dir, repl.HistoryFile), cli.Repl.historyPath(ctx))
	assert.Empty(t, cli.Repl.historyPath(t.Context()), "history without a kong context")

	cli.Repl.NoHistory = true
	assert.Empty(t, cli.Repl.historyPath(ctx))

	set, err := cli.Repl.load()
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
}
