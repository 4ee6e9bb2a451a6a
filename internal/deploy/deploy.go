// Package deploy publishes the built site to S3 with s3cmd.
package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

const s3cmd = "s3cmd"

var execCommandContext = exec.CommandContext

// Target describes where the site goes.
type Target struct {
	// Dir is the built site.
	Dir    string
	Bucket string
	// Args are passed to s3cmd after the source and destination.
	Args   []string
	DryRun bool
}

// Command returns the s3cmd arguments that sync Dir into the bucket.
func (t Target) Command() []string {
	args := []string{"sync", strings.TrimSuffix(t.Dir, "/") + "/", "s3://" + strings.Trim(t.Bucket, "/") + "/"}
	args = append(args, t.Args...)
	if t.DryRun {
		args = append(args, "--dry-run")
	}
	return args
}

// Sync runs s3cmd, streaming its output to out.
func Sync(ctx context.Context, t Target, out io.Writer) error {
	if t.Bucket == "" {
		return errors.New("deploy: no bucket configured")
	}
	if _, err := os.Stat(t.Dir); err != nil {
		return fmt.Errorf("deploy: %w", err)
	}
	if out == nil {
		out = os.Stdout
	}

	args := t.Command()
	slog.Info("Deploying site", "command", s3cmd+" "+strings.Join(args, " "), "dry_run", t.DryRun)

	cmd := execCommandContext(ctx, s3cmd, args...)
	var stderr bytes.Buffer
	cmd.Stdout = out
	cmd.Stderr = io.MultiWriter(out, &stderr)

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return fmt.Errorf("deploy: %v not found: ensure it is installed and in PATH", s3cmd)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("deploy: s3cmd failed: %v: %w", msg, err)
	}
	return nil
}
