package deploy

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	target := Target{
		Dir:    "site",
		Bucket: "seanbowman.me",
		Args:   []string{"--acl-public", "--cf-invalidate", "--no-mime-magic", "-M"},
	}
	require.Equal(t, []string{
		"sync", "site/", "s3://seanbowman.me/",
		"--acl-public", "--cf-invalidate", "--no-mime-magic", "-M",
	}, target.Command())

	target.DryRun = true
	target.Dir = "site/"
	cmd := target.Command()
	require.Equal(t, "site/", cmd[1])
	require.Equal(t, "--dry-run", cmd[len(cmd)-1])
}

func fakeExec(t *testing.T, script string) *[]string {
	t.Helper()
	var got []string
	orig := execCommandContext
	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		got = append([]string{name}, args...)
		return exec.CommandContext(ctx, "sh", "-c", script)
	}
	t.Cleanup(func() { execCommandContext = orig })
	return &got
}

func TestSync(t *testing.T) {
	got := fakeExec(t, "echo upload: index.html")
	var out bytes.Buffer

	err := Sync(context.Background(), Target{Dir: t.TempDir(), Bucket: "example.org", DryRun: true}, &out)
	require.NoError(t, err)
	require.Equal(t, "s3cmd", (*got)[0])
	require.Equal(t, "s3://example.org/", (*got)[3])
	require.Equal(t, "--dry-run", (*got)[len(*got)-1])
	require.Equal(t, "upload: index.html\n", out.String())
}

func TestSync_Failure(t *testing.T) {
	fakeExec(t, "echo 'ERROR: access denied' >&2; exit 2")

	err := Sync(context.Background(), Target{Dir: t.TempDir(), Bucket: "example.org"}, &bytes.Buffer{})
	require.ErrorContains(t, err, "ERROR: access denied")
}

func TestSync_Validation(t *testing.T) {
	require.ErrorContains(t, Sync(context.Background(), Target{Dir: t.TempDir()}, nil), "no bucket")
	require.Error(t, Sync(context.Background(), Target{Dir: "/does/not/exist", Bucket: "b"}, nil))
}
