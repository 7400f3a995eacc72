package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/quill/pkg/cli/config"
	githubcontroller "github.com/m-mizutani/quill/pkg/controller/github"
	controller "github.com/m-mizutani/quill/pkg/controller/http"
	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"github.com/m-mizutani/quill/pkg/infra/watcher"
	"github.com/m-mizutani/quill/pkg/usecase"
	"github.com/m-mizutani/quill/pkg/utils/async"
	"github.com/m-mizutani/quill/pkg/utils/metrics"
)

func cmdServe(f *dictionaryFlags) *cli.Command {
	var (
		serverCfg    config.Server
		geminiCfg    config.Gemini
		firestoreCfg config.Firestore
		sentryCfg    config.Sentry
	)

	flags := serverCfg.Flags()
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting quill server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("server", serverCfg),
				slog.Any("github", f.github),
				slog.Any("sentry", sentryCfg),
			)

			sentryEnabled, flush, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flush()

			recorder := metrics.New()

			catalog, err := f.dict.Load()
			if err != nil {
				return err
			}
			catalogUC, closeCatalog, err := f.newCatalog(ctx, catalog, recorder)
			if err != nil {
				return err
			}
			defer closeCatalog()

			if err := catalogUC.Load(ctx); err != nil {
				return goerr.Wrap(err, "failed to load dictionaries")
			}

			repo, closeRepo, err := firestoreCfg.Repository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			reranker, err := geminiCfg.Reranker(ctx)
			if err != nil {
				return err
			}

			spellOpts := []usecase.SpellOption{usecase.WithSpellMetrics(recorder)}
			if reranker != nil {
				spellOpts = append(spellOpts, usecase.WithReranker(reranker))
			}
			spellUC := usecase.NewSpell(catalogUC, repo, spellOpts...)

			var webhookUC interfaces.WebhookUseCase
			if f.github.WebhookSecret != "" {
				webhookUC = usecase.NewWebhook(
					usecase.WithEventProcessor(githubcontroller.NewEventProcessor(catalogUC)),
				)
			}

			serverOpts := []controller.Option{
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(f.github.WebhookSecret),
				controller.WithMetrics(recorder),
			}
			if serverCfg.JWTSecret != "" {
				serverOpts = append(serverOpts, controller.WithJWTSecret([]byte(serverCfg.JWTSecret)))
			}
			if sentryEnabled {
				serverOpts = append(serverOpts, controller.WithSentry())
			}

			server, err := controller.NewServer(ctx, spellUC, webhookUC, serverOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			runCtx, stop := context.WithCancel(ctx)
			defer stop()

			if serverCfg.Watch {
				if err := startWatcher(runCtx, catalogUC, serverCfg); err != nil {
					return err
				}
			}

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
					stop()
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-runCtx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}
			stop()

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}
			if err := async.Wait(shutdownCtx); err != nil {
				logger.Warn("Pending background work dropped", "error", err)
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

// startWatcher reloads a local dictionary whenever its files change
func startWatcher(ctx context.Context, catalogUC interfaces.CatalogUseCase, cfg config.Server) error {
	logger := ctxlog.From(ctx)

	targets := catalogUC.WatchTargets()
	if len(targets) == 0 {
		logger.Warn("--watch given but no dictionary is read from local files")
		return nil
	}

	w, err := watcher.New(targets, watcher.WithDebounce(cfg.WatchDebounce))
	if err != nil {
		return err
	}

	go func() {
		err := w.Run(ctx, func(ctx context.Context, name string) {
			if err := catalogUC.Reload(ctx, name); err != nil {
				// The previous speller stays in service
				ctxlog.From(ctx).Error("Failed to reload dictionary", "dictionary", name, "error", err)
				return
			}
			ctxlog.From(ctx).Info("Dictionary reloaded", "dictionary", name)
		})
		if err != nil {
			logger.Error("File watcher stopped", "error", err)
		}
	}()

	logger.Info("Watching dictionary files", "files", len(targets))
	return nil
}
