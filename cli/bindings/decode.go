package bindings

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"
)

// Format identifies the encoding of a bindings file.
type Format uint8

const (
	FormatYAML Format = iota // yaml
	FormatHCL                // hcl
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatHCL:
		return "hcl"
	default:
		return "unknown"
	}
}

// FormatOf selects the format from the extension of path. JSON is decoded
// as YAML.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return 0, ErrFormat.With(
			slog.String("file", path),
			slog.String("extension", ext),
		)
	}
}

// Load reads the bindings file at path.
func Load(path string) (Set, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Set{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return Set{}, ErrDecode.Wrap(err).With(slog.String("file", path))
	}
	defer file.Close()

	return Decode(file, format, path)
}

// Decode reads bindings encoded as format from r. The name identifies the
// input in diagnostics.
func Decode(r io.Reader, format Format, name string) (Set, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return Set{}, ErrDecode.Wrap(err).With(slog.String("file", name))
	}

	switch format {
	case FormatYAML:
		return decodeYAML(data, name)
	case FormatHCL:
		return decodeHCL(data, name)
	default:
		return Set{}, ErrFormat.With(slog.String("format", format.String()))
	}
}

func decodeYAML(data []byte, name string) (Set, error) {
	var doc document

	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.DisallowUnknownField()); err != nil {
		return Set{}, ErrDecode.Wrap(err).With(slog.String("file", name))
	}

	return doc.set()
}
