package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vango-dev/ripple"
	"github.com/vango-dev/ripple/internal/markup"
	"github.com/vango-dev/ripple/pkg/dom"
	"github.com/vango-dev/ripple/pkg/hydration"
	"github.com/vango-dev/ripple/pkg/scheduler"
)

type hydrateOptions struct {
	have   string
	want   string
	anchor string
	prefix string
	print  bool
}

func hydrateCmd() *cobra.Command {
	var opts hydrateOptions

	cmd := &cobra.Command{
		Use:   "hydrate",
		Short: "Hydrate server markup against a generated tree",
		Long: `Hydrate a document against the markup a component generates and
report how much of the existing markup had to change.

Sources may be local paths, file://, http(s):// or s3://bucket/key URLs.

Examples:
  ripple hydrate --have page.html --want app.html
  ripple hydrate --have https://example.com/ --want app.html --anchor root
  ripple hydrate --have s3://site/index.html --want app.html --print`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHydrate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.have, "have", "", "Document markup produced by the server")
	cmd.Flags().StringVar(&opts.want, "want", "", "Markup of the generated root")
	cmd.Flags().StringVarP(&opts.anchor, "anchor", "a", "app", "ID of the element to hydrate into")
	cmd.Flags().StringVar(&opts.prefix, "reserved-prefix", hydration.DefaultReservedPrefix, "Attribute prefix left untouched by hydration")
	cmd.Flags().BoolVarP(&opts.print, "print", "p", false, "Print the hydrated anchor markup")
	cmd.MarkFlagRequired("have")
	cmd.MarkFlagRequired("want")

	return cmd
}

func runHydrate(cmd *cobra.Command, opts hydrateOptions) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()
	loader := markup.NewLoader()

	have, err := loader.Load(ctx, opts.have)
	if err != nil {
		return err
	}
	want, err := loader.Load(ctx, opts.want)
	if err != nil {
		return err
	}

	doc, err := dom.Parse(bytes.NewReader(have))
	if err != nil {
		return fmt.Errorf("parse %s: %w", opts.have, err)
	}

	// The command is the UI goroutine; frames are never delivered.
	app := ripple.New(
		ripple.WithDocument(doc),
		ripple.WithFrameSource(scheduler.NewManualFrames()),
		ripple.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		ripple.WithReservedPrefix(opts.prefix),
	)
	root, err := markup.BuildString(app.Env(), string(want))
	if err != nil {
		return fmt.Errorf("parse %s: %w", opts.want, err)
	}

	stats, err := app.HydrateNow(ctx, opts.anchor, root)
	if err != nil {
		return err
	}

	switch {
	case stats.ExactMatch():
		success(w, "Markup matches exactly")
	case stats.OnlyWhitespaceDiffs():
		success(w, "Markup matches except for whitespace")
	default:
		warn(w, "Markup was repaired")
	}
	fmt.Fprintln(w, stats.String())

	if opts.print {
		fmt.Fprintln(w)
		fmt.Fprintln(w, dom.InnerHTML(doc.GetElementByID(opts.anchor)))
	}
	return nil
}
