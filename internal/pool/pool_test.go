package pool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const timeoutMsg = "Test timed out waiting for job result"

func await(t *testing.T, ch chan Value) Value {
	t.Helper()
	select {
	case <-time.After(2 * time.Second):
		t.Fatal(timeoutMsg)
	case v := <-ch:
		return v
	}
	return Value{}
}

func TestPool(t *testing.T) {
	Convey("Given a new pool", t, func() {
		q := NewQ(context.Background(), 2, nil)

		Reset(func() {
			q.Close()
		})

		Convey("When scheduling a simple job", func() {
			value := await(t, q.Schedule("test-job", func() (any, error) {
				return "success", nil
			}))

			So(value.Error, ShouldBeNil)
			So(value.Value, ShouldEqual, "success")
		})

		Convey("When scheduling a job with retries", func() {
			var attempts int32
			value := await(t, q.Schedule("retry-job", func() (any, error) {
				if atomic.AddInt32(&attempts, 1) < 3 {
					return nil, errors.New("temporary error")
				}
				return "success after retry", nil
			}, WithRetry(3, &ExponentialBackoff{Initial: time.Millisecond})))

			So(value.Error, ShouldBeNil)
			So(value.Value, ShouldEqual, "success after retry")
			So(atomic.LoadInt32(&attempts), ShouldEqual, 3)
		})

		Convey("When every retry fails", func() {
			cause := errors.New("permanent error")
			value := await(t, q.Schedule("failing-job", func() (any, error) {
				return nil, cause
			}, WithRetry(2, nil)))

			So(value.Error, ShouldNotBeNil)
			So(errors.Is(value.Error, cause), ShouldBeTrue)
			So(value.Error.Error(), ShouldContainSubstring, "all retries failed")
		})

		Convey("When the retry filter rejects the error", func() {
			var attempts int32
			value := await(t, q.Schedule("filtered-job", func() (any, error) {
				atomic.AddInt32(&attempts, 1)
				return nil, context.Canceled
			},
				WithRetry(5, nil),
				WithRetryFilter(func(err error) bool { return !errors.Is(err, context.Canceled) }),
			))

			So(errors.Is(value.Error, context.Canceled), ShouldBeTrue)
			So(atomic.LoadInt32(&attempts), ShouldEqual, 1)
		})

		Convey("When scheduling more jobs than workers", func() {
			channels := make([]chan Value, 20)
			for i := range channels {
				n := i
				channels[i] = q.Schedule(fmt.Sprintf("batch-%d", i), func() (any, error) {
					return n * n, nil
				}, WithRetry(1, nil))
			}

			for i, ch := range channels {
				v := await(t, ch)
				So(v.Error, ShouldBeNil)
				So(v.Value, ShouldEqual, i*i)
			}

			snapshot := q.Metrics().ExportMetrics()
			So(snapshot["job_count"], ShouldEqual, int64(20))
			So(snapshot["worker_count"], ShouldEqual, 2)
			So(snapshot["success_rate"], ShouldEqual, 1.0)
		})
	})
}

func TestPoolCapacity(t *testing.T) {
	Convey("Given a single busy worker and a short scheduling timeout", t, func() {
		q := NewQ(context.Background(), 1, &Config{SchedulingTimeout: 20 * time.Millisecond})
		release := make(chan struct{})

		Reset(func() {
			q.Close()
		})

		Convey("The queue holds ten jobs per worker", func() {
			So(q.Capacity(), ShouldEqual, 10)
		})

		Convey("Capacity unfinished jobs never time out", func() {
			results := make([]chan Value, q.Capacity())
			for i := range results {
				results[i] = q.Schedule(fmt.Sprintf("blocked-%d", i), func() (any, error) {
					<-release
					return "done", nil
				}, WithRetry(1, nil))
			}

			close(release)

			for _, ch := range results {
				value := await(t, ch)
				So(value.Error, ShouldBeNil)
				So(value.Value, ShouldEqual, "done")
			}
			So(q.Metrics().ExportMetrics()["scheduling_failures"], ShouldEqual, int64(0))
		})
	})
}

func TestPoolClose(t *testing.T) {
	Convey("Given a closed pool", t, func() {
		q := NewQ(context.Background(), 1, &Config{SchedulingTimeout: 50 * time.Millisecond})
		q.Close()

		Convey("Close should be idempotent", func() {
			So(func() { q.Close() }, ShouldNotPanic)
		})

		Convey("Scheduled jobs never yield a successful value", func() {
			v, ok := <-q.Schedule("late", func() (any, error) { return "never", nil })
			if ok {
				So(v.Error, ShouldNotBeNil)
			}
		})
	})
}

func TestExponentialBackoff(t *testing.T) {
	Convey("Given an exponential backoff", t, func() {
		eb := &ExponentialBackoff{Initial: 10 * time.Millisecond}

		Convey("Delays should double per attempt", func() {
			So(eb.NextDelay(1), ShouldEqual, 10*time.Millisecond)
			So(eb.NextDelay(2), ShouldEqual, 20*time.Millisecond)
			So(eb.NextDelay(4), ShouldEqual, 80*time.Millisecond)
		})
	})
}
