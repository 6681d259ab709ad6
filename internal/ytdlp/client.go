package ytdlp

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"
)

// OutputTemplate groups every single-video submission into its own
// subdirectory and playlist members into a playlist-titled subdirectory
// with ordinal filename prefixes.
const OutputTemplate = "%(playlist_title,title)s/%(playlist_index&{} - |)s%(title)s [%(id)s].%(ext)s"

// LineFunc receives each line of the tool's combined output stream, in the
// order the process emitted it.
type LineFunc func(line string)

// Runner is the external download capability: it fetches a URL into a
// directory and streams human-oriented progress text through onLine.
type Runner interface {
	Run(ctx context.Context, url, dir string, onLine LineFunc) error
}

// Client invokes the yt-dlp binary as an opaque subprocess.
type Client struct {
	// Path is the yt-dlp executable.
	Path string
	// ConfigPath is passed as --config-location when non-empty.
	ConfigPath string
	// ExtraArgs are prepended before the URL, after the defaults.
	ExtraArgs []string
}

// NewClient returns a Client for the given binary path.
func NewClient(path, configPath string) *Client {
	return &Client{Path: path, ConfigPath: configPath}
}

// Args builds the full argument vector for one download.
func (c *Client) Args(url, dir string) []string {
	args := []string{
		"-S", "res:1080",
		"-f", "bestvideo+bestaudio",
		"--remux-video", "mp4",
		"--newline",
		"--progress",
		"-o", filepath.Join(dir, OutputTemplate),
	}
	if c.ConfigPath != "" {
		args = append(args, "--config-location", c.ConfigPath)
	}
	args = append(args, c.ExtraArgs...)
	return append(args, url)
}

// Run executes the tool and feeds its combined stdout/stderr to onLine one
// line at a time. The process is killed when ctx is cancelled and reaped on
// every exit path. Returns the process exit error, if any.
func (c *Client) Run(ctx context.Context, url, dir string, onLine LineFunc) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args(url, dir)...)
	// A surviving child (ffmpeg) can hold the pipe open after the tool is
	// killed; force the pipes closed so the line loop cannot block forever.
	cmd.WaitDelay = 5 * time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.Path, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		onLine(scanner.Text())
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w", c.Path, err)
	}
	return nil
}
