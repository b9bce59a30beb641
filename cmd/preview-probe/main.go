package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"media-preview/internal/database"
	"media-preview/internal/media"
	"media-preview/internal/mediatypes"
	"media-preview/internal/preview"
	"media-preview/internal/providers"
	"media-preview/internal/startup"
)

const (
	// Default timeout for database operations
	defaultTimeout = 30 * time.Second
	// Default database directory path
	defaultDatabaseDir = "/database"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	values, err := startup.LoadValues(startup.LoaderOptions{
		ConfigFile: os.Getenv("CONFIG_FILE"),
		EnvFile:    os.Getenv("ENV_FILE"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctx, os.Stdout, values, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, values *startup.Values, command string, args []string) error {
	switch command {
	case "features":
		if err := media.InitVips(); err != nil {
			fmt.Fprintf(out, "libvips: failed to start: %v\n", err)
		}
		defer media.ShutdownVips()
		showFeatures(out, media.NewProbe())
		return nil
	case "providers":
		if err := media.InitVips(); err != nil {
			fmt.Fprintf(out, "libvips: failed to start: %v\n", err)
		}
		defer media.ShutdownVips()
		showProviders(out, values, media.NewProbe())
		return nil
	case "detect":
		if len(args) != 1 {
			return fmt.Errorf("usage: preview-probe detect <file>")
		}
		if err := media.InitVips(); err != nil {
			fmt.Fprintf(out, "libvips: failed to start: %v\n", err)
		}
		defer media.ShutdownVips()
		return detect(out, values, media.NewProbe(), args[0])
	case "mounts", "mount-previews":
		db, err := openDatabase(ctx, values)
		if err != nil {
			return err
		}
		defer db.Close()

		if command == "mounts" {
			return listMounts(ctx, out, db)
		}
		return setMountPreviews(ctx, out, db, args)
	default:
		printUsage(out)
		return fmt.Errorf("unknown command: %s", sanitizeCommand(command))
	}
}

// sanitizeCommand returns a safe representation of a command string for display.
// It uses an allowlist approach, replacing any character that is not alphanumeric,
// a hyphen, or an underscore with '_'.
func sanitizeCommand(cmd string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, cmd)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Media Preview diagnostics")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: preview-probe <command> [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  features                       - Show libvips formats and converter binaries")
	fmt.Fprintln(w, "  providers                      - Show which built-in providers would be registered")
	fmt.Fprintln(w, "  detect <file>                  - Show mimetype and preview availability of a file")
	fmt.Fprintln(w, "  mounts                         - List mounts")
	fmt.Fprintln(w, "  mount-previews <name> on|off   - Toggle previews for a mount")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  DATABASE_DIR - Path to database directory (default: %s)\n", defaultDatabaseDir)
}

// catalogueFormats lists the image library formats the catalogue asks about.
func catalogueFormats() []string {
	seen := make(map[string]bool)
	var formats []string
	for _, c := range providers.Catalogue() {
		if c.Requires == preview.RequiresImageLibrary && !seen[c.Format] {
			seen[c.Format] = true
			formats = append(formats, c.Format)
		}
	}
	sort.Strings(formats)
	return formats
}

func yesNo(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}

func showFeatures(out io.Writer, probe preview.FeatureProbe) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "libvips\t%s\n", yesNo(probe.Available()))
	for _, format := range catalogueFormats() {
		fmt.Fprintf(tw, "  %s\t%s\n", format, yesNo(probe.Available() && probe.SupportsFormat(format)))
	}

	binaries := append(append([]string{}, preview.OfficeBinaries...), preview.MovieBinaries...)
	for _, name := range binaries {
		path, ok := probe.FindBinaryPath(name)
		if !ok {
			path = "not found"
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, path)
	}
}

func bootstrap(values preview.Config, probe preview.FeatureProbe) (*preview.Manager, preview.BootstrapReport) {
	core := preview.NewCoreBootstrapper(values, probe, providers.Catalogue())
	manager := preview.NewManager(values, core, nil)
	return manager, manager.Bootstrap()
}

func showProviders(out io.Writer, values preview.Config, probe preview.FeatureProbe) {
	manager, report := bootstrap(values, probe)
	if !manager.Enabled() {
		fmt.Fprintln(out, "Previews are disabled (enable_previews=false)")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "PROVIDER\tSTATUS")
	for _, id := range report.Registered {
		fmt.Fprintf(tw, "%s\tregistered\n", id)
	}

	skipped := make([]string, 0, len(report.Skipped))
	for id := range report.Skipped {
		skipped = append(skipped, id)
	}
	sort.Strings(skipped)
	for _, id := range skipped {
		fmt.Fprintf(tw, "%s\tskipped: %s\n", id, report.Skipped[id])
	}

	fmt.Fprintln(tw, "")
	fmt.Fprintln(tw, "PATTERN\tFACTORIES")
	for _, e := range manager.Providers() {
		fmt.Fprintf(tw, "%s\t%d\n", e.Pattern, len(e.Factories))
	}
}

func detect(out io.Writer, values preview.Config, probe preview.FeatureProbe, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	mimeType := mediatypes.Detect(abs)
	manager, _ := bootstrap(values, probe)

	var patterns []string
	for _, e := range manager.Providers() {
		if e.Matches(mimeType) {
			patterns = append(patterns, e.Pattern)
		}
	}

	file := preview.File{Name: info.Name(), Path: abs, MimeType: mimeType, Size: info.Size(), ModTime: info.ModTime()}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintf(tw, "file\t%s\n", abs)
	fmt.Fprintf(tw, "mimetype\t%s\n", mimeType)
	fmt.Fprintf(tw, "type\t%s\n", mediatypes.GetFileType(mimeType))
	fmt.Fprintf(tw, "patterns\t%s\n", strings.Join(patterns, ", "))
	fmt.Fprintf(tw, "available\t%s\n", yesNo(manager.IsAvailable(file)))
	return nil
}

func openDatabase(ctx context.Context, values *startup.Values) (*database.Database, error) {
	databaseDir := values.String("DATABASE_DIR", defaultDatabaseDir)
	db, err := database.New(ctx, filepath.Join(databaseDir, "media-preview.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database in %s (set DATABASE_DIR): %w", databaseDir, err)
	}
	return db, nil
}

func listMounts(ctx context.Context, out io.Writer, db *database.Database) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	mounts, err := db.ListMounts(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "NAME\tROOT\tPREVIEWS")
	for _, m := range mounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name, m.Root, yesNo(m.PreviewsEnabled))
	}
	return nil
}

func setMountPreviews(ctx context.Context, out io.Writer, db *database.Database, args []string) error {
	if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
		return fmt.Errorf("usage: preview-probe mount-previews <name> on|off")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	enabled := args[1] == "on"
	if err := db.SetPreviewsEnabled(ctx, args[0], enabled); err != nil {
		return err
	}
	fmt.Fprintf(out, "Previews on mount %s: %s\n", args[0], args[1])
	return nil
}
