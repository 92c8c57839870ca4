package main

import (
	"strings"
	"testing"

	"github.com/acarl005/stripansi"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/qsim/internal/history"
)

func TestRenderRuns(t *testing.T) {
	Convey("Given runs with long noise and count cells", t, func() {
		noisy := history.Record{Noisy: true, PReset: 0.03, PMeas: 0.1, PGate1: 0.05}
		counts := countsSummary(map[string]int{"00": 437, "01": 16, "10": 8, "11": 539})

		out := stripansi.Strip(renderRuns([][]string{
			{"12", "2024-01-02 03:04:05", "1000", "18446744073709551615", noiseSummary(noisy), counts},
			{"3", "2024-01-01 00:00:00", "10", "7", noiseSummary(history.Record{}), "00:10"},
		}))
		lines := strings.Split(out, "\n")

		Convey("Every cell is printed in full", func() {
			So(len(lines), ShouldEqual, 3)
			So(out, ShouldNotContainSubstring, "…")
			So(lines[0], ShouldStartWith, "ID  WHEN")
			So(lines[0], ShouldContainSubstring, "SHOTS")
			So(lines[1], ShouldContainSubstring, "18446744073709551615")
			So(lines[1], ShouldContainSubstring, "0.03/0.1/0.05")
			So(lines[1], ShouldEndWith, "00:437 01:16 10:8 11:539")
			So(lines[2], ShouldContainSubstring, "ideal")
		})

		Convey("Columns line up across rows", func() {
			So(strings.Index(lines[1], "0.03"), ShouldEqual, strings.Index(lines[0], "NOISE"))
			So(strings.Index(lines[2], "ideal"), ShouldEqual, strings.Index(lines[0], "NOISE"))
		})
	})
}
