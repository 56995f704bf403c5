package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"landing/internal/config"
	"landing/internal/storage"
)

func rootCommand(configPath string) *cli.Command {
	return &cli.Command{
		Name: "landing",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug"},
			&cli.StringFlag{Name: "config", Value: configPath},
		},
		Commands: []*cli.Command{
			InitCommand(),
			PagesCommand(),
			TemplatesCommand(),
			ApprovalsCommand(),
			AssistCommand(),
		},
	}
}

func writeConfig(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`data_dir = "`+filepath.ToSlash(dir)+`"`+"\n"), 0o644))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	return path, cfg
}

func TestInitCommandRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "landing", "config.toml")
	ctx := context.Background()
	require.NoError(t, rootCommand(path).Run(ctx, []string{"landing", "init"}))
	require.FileExists(t, path)
	require.Error(t, rootCommand(path).Run(ctx, []string{"landing", "init"}))
	require.NoError(t, rootCommand(path).Run(ctx, []string{"landing", "init", "--force"}))
}

func TestPagesCommands(t *testing.T) {
	path, cfg := writeConfig(t)
	ctx := context.Background()

	require.NoError(t, rootCommand(path).Run(ctx, []string{"landing", "pages", "new", "--template", "coaching", "Coaching Milano"}))
	require.NoError(t, rootCommand(path).Run(ctx, []string{"landing", "pages", "list"}))
	require.Error(t, rootCommand(path).Run(ctx, []string{"landing", "pages", "show"}))

	st, err := storage.Open(ctx, cfg.Storage.Driver, cfg.DSN(), "")
	require.NoError(t, err)
	pages, err := st.Pages.ListPages(ctx)
	require.NoError(t, err)
	require.NoError(t, st.Close())
	require.Len(t, pages, 1)
	id := pages[0].ID
	hero := pages[0].Document.Blocks[0].ID

	require.NoError(t, rootCommand(path).Run(ctx, []string{"landing", "pages", "publish", id}))
	require.NoError(t, rootCommand(path).Run(ctx, []string{"landing", "assist", "--page", id,
		"--response", `{"action":"update_block","blockId":"` + hero + `","changes":{"title":"Cambia vita"}}`}))
	require.NoError(t, rootCommand(path).Run(ctx, []string{"landing", "pages", "history", id}))

	st, err = storage.Open(ctx, cfg.Storage.Driver, cfg.DSN(), "")
	require.NoError(t, err)
	defer st.Close()
	p, err := st.Pages.GetPage(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "published", string(p.Status))
	require.Equal(t, "Cambia vita", p.Document.Blocks[0].Settings["title"])
}

func TestApprovalsDecide(t *testing.T) {
	path, cfg := writeConfig(t)
	ctx := context.Background()

	st, err := storage.Open(ctx, cfg.Storage.Driver, cfg.DSN(), "")
	require.NoError(t, err)
	require.NoError(t, st.Approvals.InsertApproval(ctx, &storage.Approval{ID: "ap1", Tool: "delete_page"}))
	require.NoError(t, st.Close())

	require.NoError(t, rootCommand(path).Run(ctx, []string{"landing", "approvals", "list"}))
	require.NoError(t, rootCommand(path).Run(ctx, []string{"landing", "approvals", "reject", "ap1"}))
	require.Error(t, rootCommand(path).Run(ctx, []string{"landing", "approvals", "approve", "ap1"}))

	st, err = storage.Open(ctx, cfg.Storage.Driver, cfg.DSN(), "")
	require.NoError(t, err)
	defer st.Close()
	status, err := st.Approvals.ApprovalStatus(ctx, "ap1")
	require.NoError(t, err)
	require.Equal(t, storage.ApprovalRejected, status)
}
