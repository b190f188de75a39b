package report

import (
	"fmt"
	"os"
	"path/filepath"

	"madison/internal/config"
	"madison/internal/logger"
)

// BaseName is the file name, without extension, of every written report.
const BaseName = "madison_report"

// Writer saves rendered reports under a directory.
type Writer struct {
	log     *logger.Logger
	dir     string
	formats []string
}

// NewWriter writes the formats enabled in cfg under cfg.BasePath.
func NewWriter(cfg config.OutputConfig, log *logger.Logger) *Writer {
	if log == nil {
		log = logger.Nop()
	}

	return &Writer{dir: cfg.BasePath, formats: cfg.Formats, log: log}
}

// WriteAll renders and writes every enabled format, returning the paths
// written in order.
func (w *Writer) WriteAll(in Input) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(w.formats))

	for _, format := range w.formats {
		data, ext, err := render(format, in)
		if err != nil {
			return paths, err
		}

		path := filepath.Join(w.dir, BaseName+ext)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, fmt.Errorf("failed to write %s report: %w", format, err)
		}

		w.log.Info("report written", "format", format, "path", path, "bytes", len(data))
		paths = append(paths, path)
	}

	return paths, nil
}

func render(format string, in Input) ([]byte, string, error) {
	switch format {
	case config.FormatJSON:
		data, err := RenderJSON(in)
		if err != nil {
			return nil, "", fmt.Errorf("render json report: %w", err)
		}

		return data, ".json", nil
	case config.FormatHTML:
		data, err := RenderHTML(in)

		return data, ".html", err
	case config.FormatMarkdown:
		md, err := RenderMarkdown(in)

		return []byte(md), ".md", err
	default:
		return nil, "", fmt.Errorf("%w: %s", config.ErrInvalidOutputFormat, format)
	}
}
