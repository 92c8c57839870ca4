package history

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStore(t *testing.T) {
	Convey("Given an in-memory history", t, func() {
		store, err := Open(":memory:")
		So(err, ShouldBeNil)
		Reset(func() { store.Close() })

		ctx := context.Background()

		Convey("An empty store lists nothing", func() {
			records, err := store.List(ctx, 10)
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 0)
		})

		Convey("Saved runs round-trip with their counts", func() {
			first := &Record{
				Circuit: "bell",
				Shots:   1000,
				Seed:    math.MaxUint64,
				PReset:  0.03,
				PMeas:   0.1,
				PGate1:  0.05,
				Noisy:   true,
				Counts:  map[string]int{"00": 470, "11": 450, "01": 40, "10": 40},
			}
			id, err := store.Save(ctx, first)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, first.ID)
			So(first.CreatedAt.IsZero(), ShouldBeFalse)

			second := &Record{
				CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
				Circuit:   "bell",
				Shots:     10,
				Seed:      7,
				Counts:    map[string]int{"00": 10},
			}
			_, err = store.Save(ctx, second)
			So(err, ShouldBeNil)

			records, err := store.List(ctx, 0)
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 2)

			So(records[0].ID, ShouldEqual, second.ID)
			So(records[0].CreatedAt.Equal(second.CreatedAt), ShouldBeTrue)
			So(records[0].Noisy, ShouldBeFalse)

			So(records[1].Seed, ShouldEqual, uint64(math.MaxUint64))
			So(records[1].PMeas, ShouldEqual, 0.1)
			So(records[1].Noisy, ShouldBeTrue)
			So(records[1].Counts, ShouldResemble, first.Counts)

			Convey("A limit keeps only the newest runs", func() {
				records, err := store.List(ctx, 1)
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 1)
				So(records[0].Shots, ShouldEqual, 10)
			})
		})
	})

	Convey("Given a history file in a missing directory", t, func() {
		path := filepath.Join(t.TempDir(), "nested", "history.db")

		store, err := Open(path)
		So(err, ShouldBeNil)
		So(store.Path(), ShouldEqual, path)

		_, err = store.Save(context.Background(), &Record{Circuit: "bell", Shots: 1, Counts: map[string]int{"11": 1}})
		So(err, ShouldBeNil)
		So(store.Close(), ShouldBeNil)

		Convey("Reopening it keeps earlier runs", func() {
			store, err := Open(path)
			So(err, ShouldBeNil)
			defer store.Close()

			records, err := store.List(context.Background(), 5)
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 1)
			So(records[0].Counts["11"], ShouldEqual, 1)
		})
	})
}
