// Package main provides the layergraph CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"k8s.io/klog/v2"

	"github.com/born-ml/layergraph/internal/serialization"
	"github.com/born-ml/layergraph/nn"
)

const version = "v0.1.0-dev"

var errUsage = errors.New("usage")

func main() {
	klog.InitFlags(nil)
	flag.Usage = func() { usage(flag.CommandLine.Output()) }
	flag.Parse()

	if err := run(context.Background(), flag.Args(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			usage(os.Stderr)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "layergraph %s - neural network layer graphs\n\n", version)
	fmt.Fprintln(w, "Usage: layergraph [klog flags] <command> [flags] [file]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version              Show version")
	fmt.Fprintln(w, "  summary <file>       Print the layer table of a model description")
	fmt.Fprintln(w, "  validate <file>      Resolve a model description and report problems")
	fmt.Fprintln(w, "  describe <file>      Re-emit a model description in canonical form")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Description files are .json, .yaml or .yml.")
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case "version":
		fmt.Fprintf(stdout, "layergraph %s\n", version)
		return nil
	case "summary":
		return runSummary(ctx, args, stdout)
	case "validate":
		return runValidate(ctx, args, stdout)
	case "describe":
		return runDescribe(ctx, args, stdout)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func runSummary(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	strict := fs.Bool("strict", false, "treat unused inputs as errors")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m, err := loadModel(ctx, fs.Args(), *strict)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, m.Summary())
	return nil
}

func runValidate(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	strict := fs.Bool("strict", false, "treat unused inputs as errors")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m, err := loadModel(ctx, fs.Args(), *strict)
	if err != nil {
		return err
	}
	for _, w := range m.Warnings() {
		fmt.Fprintf(stdout, "warning: %v\n", w)
	}
	d, err := m.Describe()
	if err != nil {
		return err
	}
	sum, err := serialization.Fingerprint(d)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "ok: %s\n", m)
	fmt.Fprintf(stdout, "fingerprint: %s\n", sum)
	return nil
}

func runDescribe(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	format := fs.String("o", "yaml", "output format: json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := serialization.ParseFormat(*format)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	m, err := loadModel(ctx, fs.Args(), false)
	if err != nil {
		return err
	}
	d, err := m.Describe()
	if err != nil {
		return err
	}
	return serialization.Encode(stdout, d, f)
}

func loadModel(ctx context.Context, args []string, strict bool) (*nn.Model, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one description file", errUsage)
	}
	path := args[0]
	log := klog.FromContext(ctx).WithValues("file", path)

	d, err := serialization.ReadFile(path)
	if err != nil {
		return nil, err
	}

	opts := nn.DefaultResolveOptions()
	opts.Name = d.Name
	opts.StrictUnusedInputs = strict
	opts.Logger = &log
	m, err := nn.FromDescription(d, opts)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", path, err)
	}
	log.V(2).Info("loaded model", "name", m.Name(), "layers", m.Len())
	return m, nil
}
