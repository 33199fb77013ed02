package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docmark/state"
)

const shutdownTimeout = 10 * time.Second

// Run is "serve" command action. Server stops when context is cancelled.
func Run(ctx context.Context, cmd *cli.Command) error {
	env := state.FromContext(ctx)
	log := env.Logger("serve")

	listen := env.Cfg.Server.Listen
	if cmd.IsSet("listen") {
		listen = cmd.String("listen")
	}
	root := env.Cfg.Server.Root
	if dir := cmd.Args().Get(0); len(dir) > 0 {
		root = dir
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return fmt.Errorf("unable to serve %s: not a directory", root)
	}
	if len(env.Cfg.Server.Token) == 0 {
		log.Warn("Authentication is disabled, anyone who can reach the server can read documents")
	}

	h := newHandler(root, env.Editing(), log)
	srv := &http.Server{
		Addr:              listen,
		Handler:           h.router(env.Cfg.Server.Token),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log = log.With(zap.String("root", root), zap.Stringer("token", env.Cfg.Server.Token))
	return serve(ctx, srv, log, func(ctx context.Context) error {
		if err := watch(ctx, root, h.cache, nil, log); err != nil {
			log.Warn("Unable to watch documents, changes are detected on request only", zap.Error(err))
		}
		return nil
	})
}

// serve runs HTTP server along with background tasks until ctx is cancelled
// or any of them fails.
func serve(ctx context.Context, srv *http.Server, log *zap.Logger, tasks ...func(context.Context) error) error {
	g, gCtx := errgroup.WithContext(ctx)

	for _, task := range tasks {
		g.Go(func() error { return task(gCtx) })
	}

	g.Go(func() error {
		log.Info("Starting HTTP server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}
