// Command figterm renders banner text using FIGlet fonts, with optional
// control-file remapping and terminal colors.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/figterm/figterm"
	"github.com/figterm/figterm/colorize"
	"github.com/figterm/figterm/internal/diag"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		fontPath     string
		fontDir      string
		controlPaths []string
		colorName    string
		trimTrailing bool
		showVersion  bool
		showHelp     bool
		debugMode    bool
		debugFile    string
		debugPretty  bool
	)

	pflag.StringVarP(&fontPath, "font", "f", "standard", "Path to FIGfont file or font name")
	pflag.StringVarP(&fontDir, "fontdir", "d", "", "Directory searched for fonts and control files")
	pflag.StringArrayVarP(&controlPaths, "control", "C", nil, "Control file to apply (repeatable, applied in order)")
	pflag.StringVarP(&colorName, "color", "c", "", "Color scheme (rainbow or a color name)")
	pflag.BoolVar(&trimTrailing, "trim-whitespace", false, "Trim trailing whitespace from each line")
	pflag.BoolVarP(&showVersion, "version", "v", false, "Show version information")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help message")
	pflag.BoolVar(&debugMode, "debug", false, "Enable debug mode (outputs to stderr)")
	pflag.StringVar(&debugFile, "debug-file", "", "Write debug output to file instead of stderr")
	pflag.BoolVar(&debugPretty, "debug-pretty", false, "Use pretty format for debug output (default: JSON)")
	pflag.Parse()

	if showHelp {
		printHelp()
		return 0
	}

	if showVersion {
		fmt.Printf("figterm version %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	}

	args := pflag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no text provided")
		printHelp()
		return 1
	}

	// Setup debug if enabled
	var session *diag.Session
	if debugMode || debugFile != "" || os.Getenv("FIGTERM_DEBUG") == "1" {
		diag.SetEnabled(true)
		diag.InitFromEnv()

		var output io.Writer = os.Stderr
		if debugFile != "" {
			file, err := os.Create(debugFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating debug file: %v\n", err)
				return 1
			}
			defer file.Close()
			output = file
		}

		var sink diag.Sink
		if debugPretty || os.Getenv("FIGTERM_DEBUG_PRETTY") == "1" {
			sink = diag.NewPrettySink(output)
		} else {
			sink = diag.NewJSONSink(output)
		}

		session = diag.NewSession(sink)
		if session != nil {
			defer session.Close()
		}
	}

	font, err := figterm.LoadFont(resolvePath(fontPath, fontDir, ".flf"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading font: %v\n", err)
		return 1
	}
	if session != nil {
		session.Emit("load", "Font", diag.FontLoadedData{
			Name:        font.Name,
			Height:      font.Height,
			Hardblank:   string(font.Hardblank),
			GlyphCount:  font.Glyphs(),
			CommentRows: font.CommentLines,
		})
	}

	var controls []*figterm.ControlFile
	for _, cp := range controlPaths {
		cf, err := figterm.LoadControl(resolvePath(cp, fontDir, ".flc"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading control file: %v\n", err)
			return 1
		}
		if session != nil {
			session.Emit("load", "Control", diag.ControlParsedData{
				Name:        cf.Name,
				Stages:      cf.Stages(),
				Diagnostics: len(cf.Diagnostics),
			})
		}
		// Non-fatal parse issues are reported but never stop the run
		for _, d := range cf.Diagnostics {
			fmt.Fprintf(os.Stderr, "Warning: %s line %d: %s: %s\n", cf.Name, d.Line, d.Kind, d.Message)
			if session != nil {
				session.Emit("load", "Directive", diag.DirectiveData{
					Kind: d.Kind,
					Line: d.Line,
					Text: d.Message,
				})
			}
		}
		controls = append(controls, cf)
	}

	renderOpts := []figterm.Option{
		figterm.WithControlFiles(controls...),
	}
	if trimTrailing {
		renderOpts = append(renderOpts, figterm.WithTrimWhitespace(true))
	}
	if session != nil {
		renderOpts = append(renderOpts, figterm.WithDebug(session))
	}

	text := strings.Join(args, " ")
	output, err := figterm.Render(text, font, renderOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering text: %v\n", err)
		return 1
	}

	rows := strings.Split(output, "\n")
	if colorName != "" {
		scheme, err := colorize.ParseScheme(colorName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v (known schemes: %s)\n", err, strings.Join(colorize.Names(), ", "))
			return 1
		}
		rows = colorize.Lines(rows, scheme)
	}

	for _, row := range rows {
		fmt.Println(row)
	}
	return 0
}

// resolvePath resolves a font or control file reference: a path that
// exists is used as is, then the name with the conventional extension is
// tried, in the current directory and in the font directory.
func resolvePath(name, dir, ext string) string {
	if filepath.Ext(name) == ext {
		if dir != "" && !filepath.IsAbs(name) {
			if _, err := os.Stat(name); os.IsNotExist(err) {
				inDir := filepath.Join(dir, name)
				if _, err := os.Stat(inDir); err == nil {
					return inDir
				}
			}
		}
		return name
	}

	if _, err := os.Stat(name); err == nil {
		return name
	}

	withExt := name + ext
	if _, err := os.Stat(withExt); err == nil {
		return withExt
	}

	if dir != "" {
		inDir := filepath.Join(dir, name+ext)
		if _, err := os.Stat(inDir); err == nil {
			return inDir
		}
	}

	// Default to original path (will fail with a better error later)
	return name
}

func printHelp() {
	fmt.Println("figterm - FIGlet banner generator")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  figterm [flags] <text>")
	fmt.Println()
	fmt.Println("Flags:")
	pflag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  figterm hello")
	fmt.Println("  figterm -f big -c rainbow hello world")
	fmt.Println("  figterm -f standard -C upper.flc hello")
}
