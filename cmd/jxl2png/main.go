// Command jxl2png converts JPEG XL files to PNG or APNG from the command
// line. A single input converts directly; multiple inputs run through an
// interactive batch progress view.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zsiec/rasterize/internal/convert"
	"github.com/zsiec/rasterize/internal/convert/jxl"
	"github.com/zsiec/rasterize/pkg/version"
)

func main() {
	var (
		outPath     string
		probe       bool
		probeJSON   bool
		minDelay    int
		maxPixels   uint64
		showVersion bool
	)

	flag.StringVar(&outPath, "o", "", "Output path (single input only; default: input with .png extension)")
	flag.BoolVar(&probe, "probe", false, "Print stream metadata instead of converting")
	flag.BoolVar(&probeJSON, "json", false, "Emit probe output as JSON")
	flag.IntVar(&minDelay, "min-delay", convert.MinFrameDelayMS, "Minimum frame delay in milliseconds for animated output")
	flag.Uint64Var(&maxPixels, "max-pixels", 1<<28, "Maximum pixels per frame (width*height)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Println(version.Get().String())
		os.Exit(0)
	}

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: jxl2png [flags] input.jxl [input2.jxl ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if outPath != "" && len(files) > 1 {
		fmt.Fprintln(os.Stderr, "jxl2png: -o cannot be combined with multiple inputs")
		os.Exit(2)
	}

	conv := convert.New(jxl.Factory(),
		convert.WithMinFrameDelay(minDelay),
		convert.WithMaxPixels(maxPixels),
	)

	switch {
	case probe:
		os.Exit(runProbe(conv, files, probeJSON))
	case len(files) == 1:
		res := convertFile(conv, files[0], outPath)
		printResult(res)
		if res.err != nil {
			os.Exit(1)
		}
	default:
		if err := runBatch(conv, files); err != nil {
			fmt.Fprintf(os.Stderr, "jxl2png: %v\n", err)
			os.Exit(1)
		}
	}
}

// runProbe prints metadata for each input without decoding pixels.
func runProbe(conv *convert.Converter, files []string, asJSON bool) int {
	exit := 0
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jxl2png: %v\n", err)
			exit = 1
			continue
		}

		result, err := conv.Probe(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jxl2png: %s: %v\n", path, err)
			exit = 1
			continue
		}

		if asJSON {
			out, _ := json.Marshal(result)
			fmt.Println(string(out))
			continue
		}
		printProbe(path, result)
	}
	return exit
}

// fileResult is the outcome of converting one input file.
type fileResult struct {
	path     string
	outPath  string
	frames   int
	animated bool
	size     int
	duration time.Duration
	err      error
}

// convertFile reads, converts and writes one file.
func convertFile(conv *convert.Converter, path, outPath string) fileResult {
	res := fileResult{path: path}
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		res.err = err
		return res
	}

	out, err := conv.Convert(data)
	if err != nil {
		res.err = err
		res.duration = time.Since(start)
		return res
	}

	if outPath == "" {
		outPath = outputPath(path)
	}
	if err := os.WriteFile(outPath, out.Data, 0644); err != nil {
		res.err = err
		return res
	}

	res.outPath = outPath
	res.frames = out.Frames
	res.animated = out.Animated
	res.size = len(out.Data)
	res.duration = time.Since(start)
	return res
}

// outputPath swaps the input extension for .png.
func outputPath(path string) string {
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, ".png") {
		return path + ".png"
	}
	return strings.TrimSuffix(path, ext) + ".png"
}

// runBatch converts multiple files under the interactive progress view.
func runBatch(conv *convert.Converter, files []string) error {
	model := newBatchModel(conv, files)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return err
	}

	if m, ok := final.(batchModel); ok && m.failed() > 0 {
		return fmt.Errorf("%d of %d conversions failed", m.failed(), len(files))
	}
	return nil
}
