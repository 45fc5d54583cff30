package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dstanley/viewport/internal/comparison"
	"github.com/dstanley/viewport/internal/filelock"
	"github.com/dstanley/viewport/internal/logger"
	"github.com/dstanley/viewport/internal/runner"
)

// htmlShell wraps rendered report HTML in a minimal standalone page.
const htmlShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; }
img { max-width: 100%%; border: 1px solid #ddd; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: left; }
code { background: #f4f4f4; padding: 0.1rem 0.3rem; }
</style>
</head>
<body>
%s</body>
</html>
`

// Writer persists report artifacts into run directories. All writes are
// atomic so a report is never observed half-written.
type Writer struct {
	Logger logger.Logger
}

// WriteRun writes report.md, report.html, and run.json into the run's
// output directory. The Markdown and JSON artifacts are required; a failed
// HTML conversion only logs a warning since the Markdown remains authoritative.
func (w *Writer) WriteRun(result *runner.RunResult) error {
	markdown := RenderRun(result)

	mdPath := filepath.Join(result.OutputDir, "report.md")
	if err := filelock.AtomicWrite(mdPath, []byte(markdown)); err != nil {
		return fmt.Errorf("failed to write report.md: %w", err)
	}

	w.writeHTML(filepath.Join(result.OutputDir, "report.html"), "Responsive Design Report", markdown)

	if err := w.writeJSON(filepath.Join(result.OutputDir, "run.json"), result); err != nil {
		return err
	}

	w.logger().LogInfo(fmt.Sprintf("Report written to %s", mdPath))
	return nil
}

// WriteComparison writes the comparison report plus both runs' JSON snapshots
// into dir, which is usually the after run's output directory.
func (w *Writer) WriteComparison(result *comparison.Result, dir string) error {
	markdown := RenderComparison(result)

	mdPath := filepath.Join(dir, "comparison.md")
	if err := filelock.AtomicWrite(mdPath, []byte(markdown)); err != nil {
		return fmt.Errorf("failed to write comparison.md: %w", err)
	}

	w.writeHTML(filepath.Join(dir, "comparison.html"), "Before/After Comparison", markdown)

	if err := w.writeJSON(filepath.Join(dir, "before.json"), result.Before); err != nil {
		return err
	}
	if err := w.writeJSON(filepath.Join(dir, "after.json"), result.After); err != nil {
		return err
	}

	w.logger().LogInfo(fmt.Sprintf("Comparison written to %s", mdPath))
	return nil
}

func (w *Writer) writeHTML(path, title, markdown string) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		w.logger().LogWarn(fmt.Sprintf("HTML report rendering failed: %v", err))
		return
	}

	page := fmt.Sprintf(htmlShell, title, body.String())
	if err := filelock.AtomicWrite(path, []byte(page)); err != nil {
		w.logger().LogWarn(fmt.Sprintf("HTML report write failed: %v", err))
	}
}

func (w *Writer) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := filelock.AtomicWrite(path, append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (w *Writer) logger() logger.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return logger.NewNoOpLogger()
}
