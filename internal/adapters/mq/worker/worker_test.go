package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hooplab/shotform/internal/adapters/mq/queue"
	"github.com/hooplab/shotform/internal/adapters/mq/worker"
	"github.com/hooplab/shotform/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeRunner struct {
	mu   sync.Mutex
	runs []uuid.UUID
	fail bool
}

func (r *fakeRunner) Run(_ context.Context, job worker.Job) (model.AnalysisResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return model.AnalysisResult{}, errors.New("pipeline exploded")
	}
	r.runs = append(r.runs, job.RunID)
	return model.AnalysisResult{RunID: job.RunID, Outcome: model.OutcomeNoShots}, nil
}

type fakeSaver struct {
	mu    sync.Mutex
	saved []model.AnalysisResult
}

func (s *fakeSaver) Save(_ context.Context, result model.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, result)
	return nil
}

func (s *fakeSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

type fakeForgetter struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeForgetter) Unrecord(_ context.Context, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
}

func (f *fakeForgetter) forgotten() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ids...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition not met in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestPool(t *testing.T) {
	ctx := context.Background()

	Convey("Given a pool over a queue of jobs", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		runner := &fakeRunner{}
		saver := &fakeSaver{}
		pool := worker.NewPool(3, q, runner, saver)

		So(pool.Size(), ShouldEqual, 3)

		Convey("All enqueued jobs are run and saved", func() {
			for i := 0; i < 8; i++ {
				So(q.Enqueue(ctx, model.AnalysisJob{RunID: uuid.New()}), ShouldBeTrue)
			}
			pool.Start(ctx)

			waitFor(t, func() bool { return saver.count() == 8 })
			So(pool.Shutdown(ctx), ShouldBeNil)
			So(q.IsClosed(), ShouldBeTrue)
		})

		Convey("A failing run is logged, not saved", func() {
			runner.fail = true
			So(q.Enqueue(ctx, model.AnalysisJob{RunID: uuid.New()}), ShouldBeTrue)
			pool.Start(ctx)

			waitFor(t, func() bool { return q.Len(ctx) == 0 })
			So(pool.Shutdown(ctx), ShouldBeNil)
			So(saver.count(), ShouldEqual, 0)
		})
	})

	Convey("Given a pool wired to the duplicate tracker", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		runner := &fakeRunner{fail: true}
		saver := &fakeSaver{}
		forgetter := &fakeForgetter{}
		pool := worker.NewPool(1, q, runner, saver, worker.WithForgetter(forgetter))

		Convey("A terminally failed run id is unrecorded for resubmission", func() {
			job := model.AnalysisJob{RunID: uuid.New()}
			So(q.Enqueue(ctx, job), ShouldBeTrue)
			pool.Start(ctx)

			waitFor(t, func() bool { return len(forgetter.forgotten()) == 1 })
			So(pool.Shutdown(ctx), ShouldBeNil)
			So(forgetter.forgotten(), ShouldResemble, []string{job.RunID.String()})
			So(saver.count(), ShouldEqual, 0)
		})

		Convey("A successful run id stays recorded", func() {
			runner.fail = false
			So(q.Enqueue(ctx, model.AnalysisJob{RunID: uuid.New()}), ShouldBeTrue)
			pool.Start(ctx)

			waitFor(t, func() bool { return saver.count() == 1 })
			So(pool.Shutdown(ctx), ShouldBeNil)
			So(forgetter.forgotten(), ShouldBeEmpty)
		})
	})

	Convey("A non-positive worker count falls back to a sane default", t, func() {
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(0, q, &fakeRunner{}, &fakeSaver{})
		So(pool.Size(), ShouldBeGreaterThan, 0)
		So(pool.Shutdown(ctx), ShouldBeNil)
	})
}
