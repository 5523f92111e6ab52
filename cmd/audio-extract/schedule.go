package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/suPer8Hu/audios-sac-extract/internal/httpapi"
	"github.com/suPer8Hu/audios-sac-extract/internal/httpapi/handlers"
	"github.com/suPer8Hu/audios-sac-extract/internal/scheduler"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	var noServer bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Stay up and run the extraction on SCHEDULE, serving the status API on HTTP_ADDR",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			sched, err := scheduler.New(a.cfg.Schedule, a.loc, a.log)
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				sched.Run(gctx, a.runAndPush)
				return nil
			})
			if !noServer {
				srv := &http.Server{
					Addr:              a.cfg.HTTPAddr,
					Handler:           httpapi.NewRouter(handlers.NewHandler(a.db), a.reg, a.log),
					ReadHeaderTimeout: 10 * time.Second,
				}
				g.Go(func() error {
					a.log.Info("status api listening", zap.String("addr", a.cfg.HTTPAddr))
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return err
					}
					return nil
				})
				g.Go(func() error {
					<-gctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer cancel()
					return srv.Shutdown(shutdownCtx)
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&noServer, "no-server", false, "do not start the status API")
	return cmd
}
