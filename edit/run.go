package edit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"docmark/state"
)

func prepare(ctx context.Context, name string) (*Editor, *zap.Logger, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	env := state.FromContext(ctx)
	log := env.Logger("edit")
	return New(env.Editing(), env.Rpt, log), log.With(zap.String("command", name)), nil
}

// sourceArg returns absolute path of the required SOURCE argument.
func sourceArg(cmd *cli.Command) (string, error) {
	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return "", errors.New("no input source has been specified")
	}
	return filepath.Abs(src)
}

// destinationArg returns output path: DESTINATION if it names a file, file
// with source name inside DESTINATION if it is a directory, file with source
// name in the current directory if it is absent.
func destinationArg(cmd *cli.Command, src string, log *zap.Logger) (string, error) {
	dst := cmd.Args().Get(1)
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	if len(dst) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("unable to get working directory: %w", err)
		}
		dst = wd
	}
	dst, err := filepath.Abs(dst)
	if err != nil {
		return "", err
	}
	if fi, err := os.Stat(dst); err == nil && fi.IsDir() {
		dst = filepath.Join(dst, filepath.Base(src))
	}
	return dst, nil
}

func requiredFlag(cmd *cli.Command, name string) (string, error) {
	v := cmd.String(name)
	if len(v) == 0 {
		return "", fmt.Errorf("--%s must be specified", name)
	}
	return v, nil
}

func timed(log *zap.Logger, src, dst string) func() {
	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	start := time.Now()
	return func() {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}
}

// Insert is "insert" command action.
func Insert(ctx context.Context, cmd *cli.Command) error {
	e, log, err := prepare(ctx, "insert")
	if err != nil {
		return err
	}
	src, err := sourceArg(cmd)
	if err != nil {
		return err
	}
	dst, err := destinationArg(cmd, src, log)
	if err != nil {
		return err
	}
	target, err := requiredFlag(cmd, "before")
	if err != nil {
		return err
	}
	name, err := requiredFlag(cmd, "name")
	if err != nil {
		return err
	}
	defer timed(log, src, dst)()

	if err := e.InsertMarkerBefore(src, dst, target, name); err != nil {
		return fmt.Errorf("unable to insert marker: %w", err)
	}
	log.Info("Marker inserted", zap.String("name", name), zap.String("before", target))
	return nil
}

// Copy is "copy" command action.
func Copy(ctx context.Context, cmd *cli.Command) error {
	e, log, err := prepare(ctx, "copy")
	if err != nil {
		return err
	}
	src, err := sourceArg(cmd)
	if err != nil {
		return err
	}
	dst, err := destinationArg(cmd, src, log)
	if err != nil {
		return err
	}
	from, err := requiredFlag(cmd, "from")
	if err != nil {
		return err
	}
	to, err := requiredFlag(cmd, "to")
	if err != nil {
		return err
	}
	if cmd.IsSet("keep-numerals") {
		e.cfg.StripNumerals = !cmd.Bool("keep-numerals")
	}
	defer timed(log, src, dst)()

	if err := e.CopyMarkerContent(src, dst, from, to); err != nil {
		return fmt.Errorf("unable to copy marker content: %w", err)
	}
	log.Info("Marker content copied", zap.String("from", from), zap.String("to", to))
	return nil
}

// Replicate is "replicate" command action.
func Replicate(ctx context.Context, cmd *cli.Command) error {
	e, log, err := prepare(ctx, "replicate")
	if err != nil {
		return err
	}
	src, err := sourceArg(cmd)
	if err != nil {
		return err
	}
	dst, err := destinationArg(cmd, src, log)
	if err != nil {
		return err
	}
	name, err := requiredFlag(cmd, "marker")
	if err != nil {
		return err
	}
	defer timed(log, src, dst)()

	names, err := e.CopyMarkerContentNTimes(src, dst, name, int(cmd.Int("count")))
	if err != nil {
		return fmt.Errorf("unable to replicate marker: %w", err)
	}
	log.Info("Marker replicated", zap.String("marker", name), zap.Strings("copies", names))
	return nil
}

// Show is "show" command action, it prints everything known about a marker.
func Show(ctx context.Context, cmd *cli.Command) error {
	e, _, err := prepare(ctx, "show")
	if err != nil {
		return err
	}
	src, err := sourceArg(cmd)
	if err != nil {
		return err
	}
	name, err := requiredFlag(cmd, "marker")
	if err != nil {
		return err
	}
	return e.show(os.Stdout, src, name)
}

func (e *Editor) show(w io.Writer, src, name string) error {
	info, found, err := e.Describe(src, name)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("marker %q was not found in %s", name, src)
	}
	fmt.Fprintf(w, "marker:   %s\nposition: %d\nspan:     [%d, %d]\nnumbered: %t\ncontent:\n%s\n",
		info.Name, info.Position, info.Span.Start, info.Span.End, info.Numbered, info.Content)
	return nil
}

// List is "list" command action.
func List(ctx context.Context, cmd *cli.Command) error {
	e, _, err := prepare(ctx, "list")
	if err != nil {
		return err
	}
	src, err := sourceArg(cmd)
	if err != nil {
		return err
	}
	markers, err := e.ListMarkers(src)
	if err != nil {
		return err
	}
	for _, m := range markers {
		if m.Err != nil {
			fmt.Fprintf(os.Stdout, "%s\tid=%s\tunresolved: %v\n", m.Name, m.ID, m.Err)
			continue
		}
		fmt.Fprintf(os.Stdout, "%s\tid=%s\t[%d, %d]\n", m.Name, m.ID, m.Start, m.End)
	}
	return nil
}

// Compare is "compare" command action.
func Compare(ctx context.Context, cmd *cli.Command) error {
	e, log, err := prepare(ctx, "compare")
	if err != nil {
		return err
	}
	src, err := sourceArg(cmd)
	if err != nil {
		return err
	}
	a, b := cmd.Args().Get(1), cmd.Args().Get(2)
	if len(a) == 0 || len(b) == 0 {
		return errors.New("two marker names must be specified")
	}
	eq, err := e.StylesEqual(src, a, b)
	if err != nil {
		return err
	}
	log.Info("Marker block styles compared", zap.String("a", a), zap.String("b", b), zap.Bool("equal", eq))
	fmt.Fprintln(os.Stdout, strconv.FormatBool(eq))
	return nil
}

// Dump is "dump" command action.
func Dump(ctx context.Context, cmd *cli.Command) error {
	e, _, err := prepare(ctx, "dump")
	if err != nil {
		return err
	}
	src, err := sourceArg(cmd)
	if err != nil {
		return err
	}
	tree, err := e.Dump(src)
	if err != nil {
		return err
	}
	_, err = io.WriteString(os.Stdout, tree)
	return err
}

// MakeSample is "sample" command action.
func MakeSample(ctx context.Context, cmd *cli.Command) error {
	e, log, err := prepare(ctx, "sample")
	if err != nil {
		return err
	}
	dst := cmd.Args().Get(0)
	if len(dst) == 0 {
		dst = "sample.docx"
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if err := e.WriteSample(dst); err != nil {
		return fmt.Errorf("unable to write sample document: %w", err)
	}
	log.Info("Sample document created", zap.String("file", dst))
	return nil
}
