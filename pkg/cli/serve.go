package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/kairos/pkg/cli/config"
	httpctrl "github.com/secmon-lab/kairos/pkg/controller/http"
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/service/classifier"
	"github.com/secmon-lab/kairos/pkg/service/eventbus"
	"github.com/secmon-lab/kairos/pkg/service/nlu"
	slacksvc "github.com/secmon-lab/kairos/pkg/service/slack"
	"github.com/secmon-lab/kairos/pkg/service/worker"
	"github.com/secmon-lab/kairos/pkg/usecase"
	"github.com/secmon-lab/kairos/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var slackCfg config.Slack
	var llmCfg config.LLM

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("KAIROS_ADDR"),
			Destination: &addr,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start Slack hooks, event consumer, delivery scheduler and todo digest",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to load app configuration")
			}

			repos, closeRepos, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer closeRepos()

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return err
			}
			if slackSvc == nil {
				return goerr.Wrap(config.ErrMissingRequired, "slack-bot-token is required for serve", goerr.V(config.FieldKey, "slack-bot-token"))
			}

			llmClient, err := llmCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize LLM client")
			}
			if llmClient == nil {
				return goerr.Wrap(config.ErrMissingRequired, "llm-provider is required for serve", goerr.V(config.FieldKey, "llm-provider"))
			}

			nluClient, err := nlu.New(llmClient, nlu.WithTimezone(appCfg.Notify.Timezone))
			if err != nil {
				return goerr.Wrap(err, "failed to initialize NLU client")
			}

			var intentClassifier interfaces.Classifier = classifier.NewHeuristic()
			if appCfg.Router.Mode == config.RouterModeLLM {
				intentClassifier = classifier.NewLLM(nluClient)
			}

			presenter := slacksvc.NewPresenter(slackSvc)
			bus := eventbus.New(appCfg.Bus.Buffer)

			uc := usecase.New(repos,
				usecase.WithNLU(nluClient),
				usecase.WithClassifier(intentClassifier),
				usecase.WithPresenter(presenter),
				usecase.WithMessenger(presenter),
				usecase.WithEmitter(bus),
			)

			logging.Default().Info("Services configured",
				"app", &appCfg,
				"repository", repoCfg,
				"slack", slackCfg,
				"llm", llmCfg,
			)

			scheduler := worker.NewDeliveryScheduler(repos.Notifications, uc.Notification, presenter, appCfg.SchedulerInterval())
			if err := scheduler.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start delivery scheduler")
			}
			defer scheduler.Stop()

			digest := worker.NewTodoDigestWorker(uc.Todo, appCfg.Location(), appCfg.Todo.DigestHour)
			if err := digest.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start todo digest worker")
			}
			defer digest.Stop()

			var httpOpts []httpctrl.Options
			if slackCfg.IsWebhookConfigured() {
				httpOpts = append(httpOpts, httpctrl.WithSlack(httpctrl.NewSlackHandler(uc, slackSvc), slackCfg.SigningSecret()))
				logging.Default().Info("Slack hooks enabled")
			} else {
				logging.Default().Warn("Slack signing secret not configured, Slack hooks are disabled")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, ctx := errgroup.WithContext(ctx)

			// the consumer outlives ctx so queued events drain after Close
			eg.Go(func() error {
				return bus.Consume(context.WithoutCancel(ctx), uc.Workflow.HandleEvent)
			})

			eg.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})

			eg.Go(func() error {
				<-ctx.Done()
				logging.Default().Info("Shutting down")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// stop intake before draining the bus
				if err := server.Shutdown(shutdownCtx); err != nil {
					bus.Close()
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				bus.Close()
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}

			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}
