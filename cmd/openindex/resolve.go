package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"openindex/internal/config"
	"openindex/internal/infrastructure"
	"openindex/internal/negotiation"
	"openindex/internal/records"
	"openindex/internal/services"
	handlers "openindex/internal/transport/http"
	"openindex/internal/views"
)

func newResolveCmd(opts *rootOptions) *cobra.Command {
	var accept string

	cmd := &cobra.Command{
		Use:   "resolve <namespace>[/<slug>]",
		Short: "Print a namespace or record as the server would serve it",
		Long: `Resolve a namespace or record from the records directory and print the
representation selected by --accept. An empty --accept selects HTML, as a
request without an Accept header would.`,
		Example: `  openindex resolve earthpress
  openindex resolve earthpress/tartarian-world --accept application/ld+json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			paths, err := config.ResolvePaths(cfg.Paths)
			if err != nil {
				return err
			}

			logger := infrastructure.NewLoggerWithWriter(cfg.Logging, cmd.ErrOrStderr())
			renderer, err := views.NewRenderer(paths.TemplatesDir, logger)
			if err != nil {
				return err
			}

			r := &resolver{
				service:  services.NewResolverService(records.NewStore(paths.RecordsDir, logger, nil), logger),
				renderer: renderer,
			}
			return r.resolve(cmd.Context(), cmd.OutOrStdout(), args[0], negotiation.Select(accept))
		},
	}

	cmd.Flags().StringVarP(&accept, "accept", "a", "", "Accept header to negotiate with")
	return cmd
}

// resolver renders resolutions to a writer instead of a response
type resolver struct {
	service  handlers.ResolverServiceInterface
	renderer *views.Renderer
}

func (r *resolver) resolve(ctx context.Context, out io.Writer, target string, rep negotiation.Representation) error {
	namespace, slug, _ := strings.Cut(strings.Trim(target, "/"), "/")

	var (
		tmpl string
		page any
		doc  any
	)
	if slug == "" {
		view, err := r.service.ResolveNamespace(ctx, namespace)
		if err != nil {
			return err
		}
		tmpl, doc = views.NamespaceTemplate, view.Document(rep)
		page = views.NamespacePage{Base: "/" + namespace, Namespace: view.Namespace, Records: view.Records}
	} else {
		view, err := r.service.ResolveRecord(ctx, namespace, slug)
		if err != nil {
			return err
		}
		tmpl, doc = views.RecordTemplate, view.Document(rep)
		page = views.RecordPage{Namespace: namespace, Slug: slug, Record: view.Record}
	}

	if rep == negotiation.HTML {
		return r.renderer.Render(out, tmpl, page)
	}

	var buf bytes.Buffer
	if err := handlers.EncodeJSON(&buf, doc); err != nil {
		return fmt.Errorf("failed to encode %s: %w", target, err)
	}
	_, err := buf.WriteTo(out)
	return err
}
