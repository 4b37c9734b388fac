package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Streams are the input and outputs of a command.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process's standard streams.
func StdStreams() *Streams {
	return &Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// Input selects the scripts a command reads: the script argument, each
// --file, and standard input when neither is given or a file is "-".
type Input struct {
	Script string   `arg:"" help:"Script text. Read from --file or standard input when omitted." name:"script" optional:""`
	Files  []string `       help:"Script file(s) or '-' for standard input."                   name:"file"   placeholder:"PATH" short:"f" type:"existingfile"`
}

// source is one script and the name it was read from.
type source struct {
	name string
	text string
}

// sources reads every script selected by in. Files are read in order with
// duplicates removed, and standard input is always read last.
func (in *Input) sources(streams *Streams) ([]source, error) {
	var out []source

	if in.Script != "" {
		out = append(out, source{name: "script", text: in.Script})
	}

	files, stdin, err := uniqueFiles(in.Files)
	if err != nil {
		return nil, err
	}

	for _, path := range files {
		text, err := readFile(path)
		if err != nil {
			return nil, err
		}

		out = append(out, source{name: path, text: text})
	}

	if stdin || (in.Script == "" && len(in.Files) == 0) {
		text, err := lang.ReadSource(streams.In)
		if err != nil {
			return nil, ErrOpenInput.Wrap(err).With(slog.String("file", stdinSource))
		}

		out = append(out, source{name: stdinSource, text: text})
	}

	if len(out) == 0 {
		return nil, ErrNoInput
	}

	return out, nil
}

func readFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", ErrOpenInput.Wrap(err).With(slog.String("file", path))
	}
	defer file.Close()

	text, err := lang.ReadSource(file)
	if err != nil {
		return "", ErrOpenInput.Wrap(err).With(slog.String("file", path))
	}

	return text, nil
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
// Files without a device and inode are identified by path.
type fileKey struct {
	path string
	dev  uint64
	ino  uint64
}

// uniqueFiles resolves paths to the distinct files they name, in order of
// first appearance. Every "-", and any path naming the same file as
// standard input, is reported through stdin instead.
func uniqueFiles(paths []string) (files []string, stdin bool, err error) {
	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, hasStdinKey := makeFileKey(stdinInfo)

	for _, path := range paths {
		if path == stdinSource {
			stdin = true

			continue
		}

		resolved, key, err := resolveFile(path)
		if err != nil {
			return nil, false, ErrOpenInput.Wrap(err).With(slog.String("file", path))
		}

		if hasStdinKey && key == stdinKey {
			stdin = true

			continue
		}

		if _, dup := seen[key]; dup {
			log.Debug("skipping duplicate script file",
				slog.String("file", path),
				slog.String("resolved", resolved),
			)

			continue
		}

		seen[key] = struct{}{}
		files = append(files, resolved)
	}

	return files, stdin, nil
}

// resolveFile returns the absolute, symlink-free path of the file at path
// and its identity.
func resolveFile(path string) (string, fileKey, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fileKey{}, err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fileKey{}, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fileKey{}, err
	}

	if info.IsDir() {
		return "", fileKey{}, fmt.Errorf("%s is a directory", path)
	}

	key, ok := makeFileKey(info)
	if !ok {
		key = fileKey{path: resolved}
	}

	return resolved, key, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}, true //nolint:unconvert
}

// reportSnippet writes the source excerpt of a script error to w.
func reportSnippet(w io.Writer, name string, err error) {
	var le *lang.Error
	if !errors.As(err, &le) {
		return
	}

	snippet := le.Snippet()
	if snippet == "" {
		return
	}

	pos, _ := le.Position()
	fmt.Fprintf(w, "%s:%s: %s\n%s", name, pos, err, snippet)
}
