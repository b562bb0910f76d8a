// Command taskmill replays a producer script through the dispatch engine
// and prints per-processor timing statistics.
//
// The script is a string of task letters and pause digits: each letter
// A-D submits one task of that kind, each digit 0-9 pauses the producer
// for that many delay units before the next event.
//
//	taskmill -input "ABCD5AB5CD5A9B9CDABCD" -processors 4 -unit 1s
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/skalidindi/taskmill/pkg/dispatch"
	"github.com/skalidindi/taskmill/pkg/engine"
	"github.com/skalidindi/taskmill/pkg/feed"
	"github.com/skalidindi/taskmill/pkg/metrics"
	"github.com/skalidindi/taskmill/pkg/task"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

// cronList collects repeated -cron flags of the form KIND@EXPR,
// e.g. -cron "A@*/5 * * * * *".
type cronList []engine.CronEntry

func (c *cronList) String() string {
	parts := make([]string, len(*c))
	for i, e := range *c {
		parts[i] = e.Kind.String() + "@" + e.Expr
	}
	return strings.Join(parts, ",")
}

func (c *cronList) Set(value string) error {
	kindStr, expr, ok := strings.Cut(value, "@")
	if !ok || len(kindStr) != 1 {
		return fmt.Errorf("cron entry %q: want KIND@EXPR", value)
	}
	kind, ok := task.ParseKind(kindStr[0])
	if !ok {
		return fmt.Errorf("cron entry %q: unknown task kind %q", value, kindStr)
	}
	*c = append(*c, engine.CronEntry{Expr: expr, Kind: kind})
	return nil
}

func main() {
	var (
		input       = flag.String("input", "ABCD5AB5CD5A9B9CDABCD", "producer script: task letters A-D and pause digits 0-9")
		processors  = flag.Int("processors", 4, "number of processors in the pool")
		unitDelay   = flag.Duration("unit", time.Second, "real duration of one producer pause unit")
		bodyUnit    = flag.Duration("body-unit", time.Second, "real duration of one simulated work unit")
		router      = flag.String("router", "round-robin", "routing policy: round-robin or kind-affinity")
		rateLimit   = flag.Float64("rate", 0, "maximum task submissions per second (0 = unlimited)")
		burst       = flag.Int("burst", 1, "submission burst size when -rate is set")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
		verbose     = flag.Bool("v", false, "enable verbose runtime logging")
		noProgress  = flag.Bool("no-progress", false, "suppress the progress spinner")
	)
	var cron cronList
	flag.Var(&cron, "cron", "recurring task source as KIND@EXPR (repeatable)")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			fail("logger: %v", err)
		}
		logger = dev
	}
	defer func() { _ = logger.Sync() }()

	events, err := feed.Parse(*input)
	if err != nil {
		fail("invalid input: %v", err)
	}

	cfg := engine.Config{
		Processors: *processors,
		UnitDelay:  *unitDelay,
		BodyUnit:   *bodyUnit,
		Cron:       cron,
		Logger:     logger,
	}
	switch *router {
	case "round-robin":
		cfg.Router = dispatch.NewRoundRobin()
	case "kind-affinity":
		cfg.Router = dispatch.KindAffinity{}
	default:
		fail("unknown router %q: want round-robin or kind-affinity", *router)
	}
	if *rateLimit > 0 {
		cfg.Limiter = rate.NewLimiter(rate.Limit(*rateLimit), *burst)
	}
	if *metricsAddr != "" {
		cfg.Metrics = metrics.DefaultConfig()
		go serveMetrics(*metricsAddr, logger)
	}

	eng, err := engine.New(cfg)
	if err != nil {
		fail("configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var bar *progressbar.ProgressBar
	spinDone := make(chan struct{})
	if !*noProgress {
		bar = makeSpinner(len(events))
		go spin(spinDone, bar)
	}

	report, runErr := eng.Run(ctx, events)
	if bar != nil {
		close(spinDone)
		_ = bar.Finish()
		_ = bar.Clear()
	}
	if report == nil {
		fail("run: %v", runErr)
	}

	renderReport(report)

	if runErr != nil {
		_, _ = yellow.Fprintf(os.Stderr, "run interrupted: %v\n", runErr)
		os.Exit(1)
	}
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics server stopped", zap.Error(err))
	}
}

func makeSpinner(events int) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("dispatching %d events", events)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func spin(done <-chan struct{}, bar *progressbar.ProgressBar) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = bar.Add(1)
		case <-done:
			return
		}
	}
}

func renderReport(report *engine.Report) {
	_, _ = bold.Println("Processor statistics")

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Processor", "Tasks", "Skipped", "Work", "Idle", "Lifetime", "Busy")

	for i, p := range report.Processors {
		busy := 0.0
		if p.Lifetime > 0 {
			busy = float64(p.WorkTime) / float64(p.Lifetime) * 100
		}
		_ = table.Append(
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", p.TasksRun),
			fmt.Sprintf("%d", p.Skipped),
			p.WorkTime.Round(time.Millisecond).String(),
			p.IdleTime.Round(time.Millisecond).String(),
			p.Lifetime.Round(time.Millisecond).String(),
			fmt.Sprintf("%.1f%%", busy),
		)
	}

	if err := table.Render(); err != nil {
		_, _ = red.Fprintln(os.Stderr, "rendering statistics failed:", err)
	}

	_, _ = green.Printf("%d tasks executed across %d processors in %s\n",
		report.TotalTasks(), len(report.Processors), report.Elapsed.Round(time.Millisecond))
}

func fail(format string, a ...any) {
	_, _ = red.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
