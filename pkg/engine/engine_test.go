package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skalidindi/taskmill/internal/testutil"
	tmerrors "github.com/skalidindi/taskmill/pkg/common/errors"
	"github.com/skalidindi/taskmill/pkg/dispatch"
	"github.com/skalidindi/taskmill/pkg/feed"
	"github.com/skalidindi/taskmill/pkg/queue"
	"github.com/skalidindi/taskmill/pkg/task"
)

// fastConfig runs bodies and delays in milliseconds so tests stay quick.
func fastConfig(processors int) Config {
	return Config{
		Processors: processors,
		UnitDelay:  time.Millisecond,
		BodyUnit:   time.Millisecond,
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name       string
		processors int
	}{
		{"zero processors", 0},
		{"negative processors", -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{Processors: tt.processors})
			testutil.AssertError(t, err)
			if !errors.Is(err, tmerrors.ErrInvalidConfiguration) {
				t.Errorf("want validation error, got %v", err)
			}
		})
	}
}

func TestRunEmptyInput(t *testing.T) {
	eng, err := New(fastConfig(3))
	testutil.AssertNoError(t, err)

	report, err := eng.Run(context.Background(), nil)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(report.Processors), 3)
	testutil.AssertEqual(t, report.TotalTasks(), 0)
}

func TestRunDispatchesAllTasks(t *testing.T) {
	eng, err := New(fastConfig(4))
	testutil.AssertNoError(t, err)

	events, err := feed.Parse("ABCD5AB5CD5A9B9CDABCD")
	testutil.AssertNoError(t, err)

	report, err := eng.Run(context.Background(), events)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, report.TotalTasks(), 15)

	for i, p := range report.Processors {
		if p.Lifetime <= 0 {
			t.Errorf("processor %d: lifetime %v, want > 0", i, p.Lifetime)
		}
	}
}

func TestRunCanceledContext(t *testing.T) {
	eng, err := New(Config{
		Processors: 2,
		UnitDelay:  time.Hour, // the pause would block forever without cancel
		BodyUnit:   time.Millisecond,
	})
	testutil.AssertNoError(t, err)

	events, err := feed.Parse("A9B")
	testutil.AssertNoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	var report *Report
	var runErr error
	go func() {
		report, runErr = eng.Run(ctx, events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(testutil.TestTimeout):
		t.Fatal("engine did not shut down after cancel")
	}

	if !errors.Is(runErr, context.DeadlineExceeded) {
		t.Errorf("want deadline error, got %v", runErr)
	}
	if report == nil {
		t.Fatal("report should still be produced on cancel")
	}
	// Only the task before the pause ran.
	testutil.AssertEqual(t, report.TotalTasks(), 1)
}

// TestRunCanceledStopsCronSources cancels a run mid-pause while recurring
// sources are active: the replay aborts, the sources stop, and the full
// shutdown protocol still completes with a report.
func TestRunCanceledStopsCronSources(t *testing.T) {
	eng, err := New(Config{
		Processors: 2,
		UnitDelay:  time.Hour, // the pause would block forever without cancel
		BodyUnit:   time.Millisecond,
		Cron:       []CronEntry{{Expr: "* * * * * *", Kind: task.KindB}},
	})
	testutil.AssertNoError(t, err)

	events := []feed.Event{{Type: feed.EventPause, Units: 9}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	var report *Report
	var runErr error
	go func() {
		report, runErr = eng.Run(ctx, events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(testutil.TestTimeout):
		t.Fatal("engine did not shut down after cancel")
	}

	if !errors.Is(runErr, context.DeadlineExceeded) {
		t.Errorf("want deadline error, got %v", runErr)
	}
	if report == nil {
		t.Fatal("report should still be produced on cancel")
	}
}

// TestReleaseAllUnblocksProcessors exercises the fatal-path teardown: every
// processor blocked on its private queue must be woken and joined, and the
// queues must reject further use.
func TestReleaseAllUnblocksProcessors(t *testing.T) {
	inbound := queue.NewInstrumented(queue.New[*task.Record](), "inbound", nil)

	queues := make([]*queue.Instrumented[*task.Record], 2)
	procs := make([]*dispatch.Processor, 2)
	for i := range procs {
		queues[i] = queue.NewInstrumented(queue.New[*task.Record](), "processor", nil)
		p, err := dispatch.NewProcessor(dispatch.ProcessorConfig{
			ID:     i,
			Queue:  queues[i],
			Bodies: task.SimulatedBodies(time.Millisecond),
		})
		testutil.AssertNoError(t, err)
		procs[i] = p
		go func(p *dispatch.Processor) { _ = p.Run() }(p)
	}

	done := make(chan struct{})
	go func() {
		releaseAll(inbound, queues, procs)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(testutil.TestTimeout):
		t.Fatal("teardown never released the processors")
	}

	if err := inbound.Put(task.NewRecord(task.KindA)); !errors.Is(err, tmerrors.ErrClosed) {
		t.Errorf("inbound should reject puts after teardown, got %v", err)
	}
}

func TestRunKindAffinityRouting(t *testing.T) {
	cfg := fastConfig(4)
	cfg.Router = dispatch.KindAffinity{}
	eng, err := New(cfg)
	testutil.AssertNoError(t, err)

	events, err := feed.Parse("AABBBCD")
	testutil.AssertNoError(t, err)

	report, err := eng.Run(context.Background(), events)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, report.Processors[0].TasksRun, 2) // A
	testutil.AssertEqual(t, report.Processors[1].TasksRun, 3) // B
	testutil.AssertEqual(t, report.Processors[2].TasksRun, 1) // C
	testutil.AssertEqual(t, report.Processors[3].TasksRun, 1) // D
}

func TestRunStatsConsistency(t *testing.T) {
	cfg := fastConfig(2)
	cfg.BodyUnit = 2 * time.Millisecond
	eng, err := New(cfg)
	testutil.AssertNoError(t, err)

	events, err := feed.Parse("ABAB")
	testutil.AssertNoError(t, err)

	report, err := eng.Run(context.Background(), events)
	testutil.AssertNoError(t, err)

	for i, p := range report.Processors {
		sum := p.WorkTime + p.IdleTime
		diff := p.Lifetime - sum
		if diff < 0 {
			diff = -diff
		}
		if diff > 50*time.Millisecond {
			t.Errorf("processor %d: lifetime %v vs work+idle %v", i, p.Lifetime, sum)
		}
	}
}

func TestRunWithCronSource(t *testing.T) {
	eng, err := New(Config{
		Processors: 2,
		UnitDelay:  time.Second,
		BodyUnit:   time.Millisecond,
		Cron:       []CronEntry{{Expr: "* * * * * *", Kind: task.KindA}},
	})
	testutil.AssertNoError(t, err)

	// A pause long enough for at least one cron tick to land.
	events := []feed.Event{{Type: feed.EventPause, Units: 2}}

	report, err := eng.Run(context.Background(), events)
	testutil.AssertNoError(t, err)

	if report.TotalTasks() < 1 {
		t.Errorf("cron source injected %d tasks, want at least 1", report.TotalTasks())
	}
}

func TestRunInvalidCronEntry(t *testing.T) {
	cfg := fastConfig(1)
	cfg.Cron = []CronEntry{{Expr: "bogus", Kind: task.KindA}}
	eng, err := New(cfg)
	testutil.AssertNoError(t, err)

	_, err = eng.Run(context.Background(), nil)
	testutil.AssertError(t, err)
}
