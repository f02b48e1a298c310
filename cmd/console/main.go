package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rfp-insight/console/internal/api"
	"github.com/rfp-insight/console/internal/classify"
	"github.com/rfp-insight/console/internal/config"
	"github.com/rfp-insight/console/internal/export"
	"github.com/rfp-insight/console/internal/journal"
	"github.com/rfp-insight/console/internal/models"
	"github.com/rfp-insight/console/internal/progress"
	"github.com/rfp-insight/console/internal/stream"
	"github.com/rfp-insight/console/internal/ui"
	"github.com/rfp-insight/console/internal/uploader"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	var (
		serveMode = flag.Bool("serve", false, "run the report export gateway instead of analysing a file")
		outPath   = flag.String("out", "", "where to write the final report PDF (default <rfp name>-analysis.pdf)")
		email     = flag.String("email", "", "email address to send the final report to")
		noExport  = flag.Bool("no-export", false, "skip PDF export after the analysis completes")
		wait      = flag.Duration("wait", 30*time.Minute, "maximum time to wait for the analysis to finish")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *serveMode {
		runGateway(cfg, log)
		return
	}

	if flag.NArg() != 1 {
		fmt.Println("Usage: console [flags] <rfp.pdf>")
		fmt.Println("       console -serve")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelWait := context.WithTimeout(ctx, *wait)
	defer cancelWait()

	if err := runAnalysis(ctx, cfg, log, flag.Arg(0), *outPath, *email, *noExport); err != nil {
		fmt.Printf("Analysis failed: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	if lvl, err := zapcore.ParseLevel(cfg.App.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	// Keep stdout clean for the progress view.
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// runGateway hosts the local report export service.
func runGateway(cfg *config.Config, log *zap.Logger) {
	exporter := export.New(cfg.Export, cfg.API, log)
	e := api.NewServer(&api.Dependencies{
		Exporter: exporter,
		Version:  Version,
		Log:      log,
	})

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════╗\n")
	fmt.Printf("║           RFP Insight Export Gateway              ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-37s║\n", Version)
	fmt.Printf("║  Build Time: %-37s║\n", BuildTime)
	fmt.Printf("║  Listen:     http://%-30s║\n", cfg.Export.ListenAddr)
	fmt.Printf("╚═══════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	e.Logger.Fatal(e.Start(cfg.Export.ListenAddr))
}

// streamMsg carries one event or connection-state change from the stream
// callbacks into the single-threaded driver loop.
type streamMsg struct {
	session string
	ev      *models.StepEvent
	conn    *models.ConnectionState
}

func runAnalysis(ctx context.Context, cfg *config.Config, log *zap.Logger, rfpPath, outPath, email string, noExport bool) error {
	catalog, err := config.LoadCatalog()
	if err != nil {
		return fmt.Errorf("load step catalog: %w", err)
	}

	tracker := progress.NewTracker(catalog, log)
	classifier := classify.New(log)
	orch := uploader.New(cfg.API, log)
	exporter := export.New(cfg.Export, cfg.API, log)

	fmt.Printf("Uploading %s ...\n", rfpPath)
	lastPct := -1
	resp, err := orch.Upload(ctx, rfpPath, func(sent, total int64) {
		pct := int(sent * 100 / total)
		if pct != lastPct && pct%10 == 0 {
			fmt.Printf("  %d%%\n", pct)
			lastPct = pct
		}
	})
	if err != nil {
		return err
	}
	sessionID := orch.SessionID()
	fmt.Printf("Upload accepted (session %s)\n\n", sessionID)

	var jw *journal.Writer
	if cfg.Journal.Enabled {
		jw, err = journal.Open(cfg.Journal.Dir, sessionID, log)
		if err != nil {
			log.Warn("journal disabled", zap.Error(err))
		} else {
			defer jw.Close()
		}
	}

	tracker.Reset()
	tracker.BindSession(sessionID)

	msgs := make(chan streamMsg, 128)
	cb := stream.Callbacks{
		OnStep: func(sid string, ev models.StepEvent) {
			msgs <- streamMsg{session: sid, ev: &ev}
		},
		OnFatalError: func(sid string, ev models.StepEvent) {
			msgs <- streamMsg{session: sid, ev: &ev}
		},
		OnConnectionState: func(st models.ConnectionState) {
			msgs <- streamMsg{conn: &st}
		},
		OnHeartbeat: func(at time.Time) {
			log.Debug("heartbeat", zap.Time("at", at))
		},
	}
	client := stream.NewClient(cfg.Stream, cb, nil, log)
	client.Open(ctx, sessionID)
	defer client.Close()

	if err := orch.TriggerAnalysis(ctx); err != nil {
		return err
	}
	tracker.StartPreparation()

	conn := models.ConnDisconnected
	retried := make(map[models.StepID]bool)
	render := func() {
		fmt.Println(ui.Render(tracker.Snapshot(), conn, orch.FileName()))
	}
	render()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("analysis did not finish: %w", ctx.Err())
		case m := <-msgs:
			if m.conn != nil {
				conn = *m.conn
				render()
				continue
			}
			if jw != nil {
				jw.Append(m.session, *m.ev)
			}
			u := classifier.Classify(m.session, *m.ev)
			if !tracker.Apply(u) {
				continue
			}
			render()

			switch u.Kind {
			case models.UpdateFatal:
				client.Close()
				return fmt.Errorf("analysis aborted by server: %s", u.FatalMessage)
			case models.UpdateStepError:
				if u.Failure != nil && u.Failure.Retryable && !retried[u.StepID] {
					retried[u.StepID] = true
					log.Info("retrying failed step", zap.String("step", string(u.StepID)))
					if tracker.Retry(u.StepID) {
						if err := orch.TriggerAnalysis(ctx); err != nil {
							log.Warn("retry trigger failed", zap.Error(err))
						}
						render()
					}
				}
			}

			if tracker.IsComplete() {
				client.Close()
				if noExport {
					return nil
				}
				return exportReport(ctx, tracker, exporter, resp.FileName, outPath, email)
			}
		}
	}
}

func exportReport(ctx context.Context, tracker *progress.Tracker, exporter *export.Exporter, rfpName, outPath, email string) error {
	final, ok := tracker.Step(models.StepFinalReport)
	if !ok || final.Details == "" {
		return fmt.Errorf("final report is empty")
	}

	opts := export.Options{
		RFPFileName:       rfpName,
		IncludeBackground: true,
	}
	pdf, err := exporter.RenderPDF(ctx, final.Details, opts)
	if err != nil {
		return fmt.Errorf("export report: %w", err)
	}

	if outPath == "" {
		outPath = export.PDFFileName(opts)
	}
	if err := os.WriteFile(outPath, pdf, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("Report written to %s\n", outPath)

	if email != "" {
		if err := exporter.Email(ctx, email, pdf, export.PDFFileName(opts)); err != nil {
			return fmt.Errorf("send report: %w", err)
		}
		fmt.Printf("Report sent to %s\n", email)
	}
	return nil
}
