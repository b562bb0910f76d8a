package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/skalidindi/taskmill/internal/testutil"
	tmerrors "github.com/skalidindi/taskmill/pkg/common/errors"
	"github.com/skalidindi/taskmill/pkg/queue"
	"github.com/skalidindi/taskmill/pkg/task"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Event
		wantErr bool
	}{
		{
			name:  "tasks only",
			input: "ABCD",
			want: []Event{
				{Type: EventSubmit, Kind: task.KindA},
				{Type: EventSubmit, Kind: task.KindB},
				{Type: EventSubmit, Kind: task.KindC},
				{Type: EventSubmit, Kind: task.KindD},
			},
		},
		{
			name:  "tasks and delays",
			input: "AB5A",
			want: []Event{
				{Type: EventSubmit, Kind: task.KindA},
				{Type: EventSubmit, Kind: task.KindB},
				{Type: EventPause, Units: 5},
				{Type: EventSubmit, Kind: task.KindA},
			},
		},
		{
			name:  "zero delay",
			input: "A0B",
			want: []Event{
				{Type: EventSubmit, Kind: task.KindA},
				{Type: EventPause, Units: 0},
				{Type: EventSubmit, Kind: task.KindB},
			},
		},
		{name: "empty input", input: "", wantErr: true},
		{name: "unknown letter", input: "ABE", wantErr: true},
		{name: "sentinel byte rejected", input: "AKB", wantErr: true},
		{name: "punctuation", input: "A B", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				testutil.AssertError(t, err)
				if !errors.Is(err, tmerrors.ErrInvalidConfiguration) {
					t.Errorf("want validation error, got %v", err)
				}
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, len(got), len(tt.want))
			for i := range tt.want {
				testutil.AssertEqual(t, got[i], tt.want[i])
			}
		})
	}
}

func TestFeederSubmitsInOrderThenSentinel(t *testing.T) {
	q := queue.New[*task.Record]()
	f, err := New(Config{Queue: q, UnitDelay: time.Millisecond})
	testutil.AssertNoError(t, err)

	events, err := Parse("AB1C")
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, f.Run(context.Background(), events))

	wantKinds := []task.Kind{task.KindA, task.KindB, task.KindC, task.KindShutdown}
	for _, want := range wantKinds {
		rec, err := q.Get()
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, rec.Kind, want)
		if want.Schedulable() && rec.EnqueuedAt.IsZero() {
			t.Errorf("task %s missing enqueue timestamp", want)
		}
	}
	testutil.AssertEqual(t, q.Len(), 0)
}

func TestFeederHonorsDelays(t *testing.T) {
	q := queue.New[*task.Record]()
	f, err := New(Config{Queue: q, UnitDelay: 10 * time.Millisecond})
	testutil.AssertNoError(t, err)

	events, err := Parse("A5B")
	testutil.AssertNoError(t, err)

	start := time.Now()
	testutil.AssertNoError(t, f.Run(context.Background(), events))
	elapsed := time.Since(start)

	if elapsed < 50*time.Millisecond {
		t.Errorf("feeder finished in %v, want at least 50ms of delay", elapsed)
	}
}

func TestFeederCancelStillAppendsSentinel(t *testing.T) {
	q := queue.New[*task.Record]()
	f, err := New(Config{Queue: q, UnitDelay: time.Hour})
	testutil.AssertNoError(t, err)

	events, err := Parse("A9B")
	testutil.AssertNoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- f.Run(ctx, events) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-runErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("want context.Canceled, got %v", err)
		}
	case <-time.After(testutil.TestTimeout):
		t.Fatal("feeder did not stop on cancel")
	}

	// The first task went through; B was abandoned; the sentinel landed.
	rec, err := q.Get()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, rec.Kind, task.KindA)

	rec, err = q.Get()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, rec.Kind, task.KindShutdown)
}

func TestFeederWithLimiter(t *testing.T) {
	q := queue.New[*task.Record]()
	f, err := New(Config{
		Queue:     q,
		UnitDelay: time.Millisecond,
		Limiter:   rate.NewLimiter(rate.Every(10*time.Millisecond), 1),
	})
	testutil.AssertNoError(t, err)

	events, err := Parse("AAA")
	testutil.AssertNoError(t, err)

	start := time.Now()
	testutil.AssertNoError(t, f.Run(context.Background(), events))

	// Three submissions at one per 10ms with burst 1 take at least 20ms.
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("feeder finished in %v, want pacing of at least 20ms", elapsed)
	}
	testutil.AssertEqual(t, q.Len(), 4) // 3 tasks + sentinel
}

func TestNewFeederValidation(t *testing.T) {
	_, err := New(Config{Queue: nil})
	testutil.AssertError(t, err)
}

func TestCronSourceEmit(t *testing.T) {
	q := queue.New[*task.Record]()
	src, err := NewCronSource(q, nil)
	testutil.AssertNoError(t, err)

	src.emit(task.KindB)
	testutil.AssertEqual(t, q.Len(), 1)

	rec, err := q.Get()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, rec.Kind, task.KindB)
	testutil.AssertEqual(t, rec.EnqueuedAt.IsZero(), false)
}

func TestCronSourceEmitAfterCloseIsDiscarded(t *testing.T) {
	q := queue.New[*task.Record]()
	src, err := NewCronSource(q, nil)
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, q.Close())
	src.emit(task.KindA) // must not panic or error
	testutil.AssertEqual(t, q.Len(), 0)
}

func TestCronSourceAddValidation(t *testing.T) {
	q := queue.New[*task.Record]()
	src, err := NewCronSource(q, nil)
	testutil.AssertNoError(t, err)

	if _, err := src.Add("* * * * * *", task.KindShutdown); err == nil {
		t.Error("sentinel kind must not be schedulable via cron")
	}
	if _, err := src.Add("not a cron expr", task.KindA); err == nil {
		t.Error("invalid cron expression should be rejected")
	}
	if _, err := src.Add("*/5 * * * * *", task.KindA); err != nil {
		t.Errorf("valid entry rejected: %v", err)
	}
}

func TestCronSourceDeliversTicks(t *testing.T) {
	q := queue.New[*task.Record]()
	src, err := NewCronSource(q, nil)
	testutil.AssertNoError(t, err)

	_, err = src.Add("* * * * * *", task.KindA) // every second
	testutil.AssertNoError(t, err)

	src.Start()
	defer src.Stop()

	testutil.Eventually(t, 3*time.Second, func() bool {
		return q.Len() >= 1
	}, "cron source never delivered a tick")
}
