package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/acarl005/stripansi"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/qsim/internal/history"
)

// execute runs the CLI with an isolated HOME and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Setenv("HOME", t.TempDir())

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	Convey("Given the ideal Bell run as JSON", t, func() {
		out, err := execute(t, "run", "--ideal", "--seed", "42", "--shots", "500", "--workers", "2", "--format", "json")
		So(err, ShouldBeNil)

		var result struct {
			Circuit string         `json:"circuit"`
			Shots   int            `json:"shots"`
			Seed    uint64         `json:"seed"`
			Noisy   bool           `json:"noisy"`
			Counts  map[string]int `json:"counts"`
		}
		So(json.Unmarshal([]byte(out), &result), ShouldBeNil)

		Convey("Only correlated outcomes appear", func() {
			So(result.Circuit, ShouldEqual, "bell")
			So(result.Shots, ShouldEqual, 500)
			So(result.Seed, ShouldEqual, uint64(42))
			So(result.Noisy, ShouldBeFalse)
			So(result.Counts["00"]+result.Counts["11"], ShouldEqual, 500)
			So(len(result.Counts), ShouldEqual, 2)
		})
	})

	Convey("Given the default command with text output", t, func() {
		out, err := execute(t, "--seed", "1", "--shots", "200")
		So(err, ShouldBeNil)

		plain := stripansi.Strip(out)

		Convey("It draws the circuit and then the histogram", func() {
			So(plain, ShouldContainSubstring, "q_0:")
			So(plain, ShouldContainSubstring, "bell (noisy, seed 1)")
			So(plain, ShouldContainSubstring, "200 shots")
			So(strings.Index(plain, "q_0:"), ShouldBeLessThan, strings.Index(plain, "bell (noisy"))
		})
	})

	Convey("Given invalid settings", t, func() {
		_, err := execute(t, "run", "--shots", "0")
		So(err, ShouldNotBeNil)

		_, err = execute(t, "run", "--p-meas", "2")
		So(err, ShouldNotBeNil)
	})
}

func TestRecordAndHistory(t *testing.T) {
	Convey("Given a recorded run", t, func() {
		path := filepath.Join(t.TempDir(), "runs", "history.db")

		_, err := execute(t, "run", "--seed", "9", "--shots", "100", "--format", "yaml", "--record", "--history-path", path)
		So(err, ShouldBeNil)

		Convey("The history command lists it", func() {
			out, err := execute(t, "history", "--history-path", path, "--format", "json")
			So(err, ShouldBeNil)

			var records []history.Record
			So(json.Unmarshal([]byte(out), &records), ShouldBeNil)
			So(len(records), ShouldEqual, 1)
			So(records[0].Seed, ShouldEqual, uint64(9))
			So(records[0].Shots, ShouldEqual, 100)
			So(records[0].Noisy, ShouldBeTrue)
			So(records[0].PMeas, ShouldEqual, 0.1)
		})

		Convey("The text listing shows the seed", func() {
			out, err := execute(t, "history", "--history-path", path)
			So(err, ShouldBeNil)
			So(stripansi.Strip(out), ShouldContainSubstring, "9")
			So(stripansi.Strip(out), ShouldContainSubstring, "0.03/0.1/0.05")
			So(stripansi.Strip(out), ShouldNotContainSubstring, "…")
		})
	})

	Convey("Given an empty history", t, func() {
		out, err := execute(t, "history", "--history-path", filepath.Join(t.TempDir(), "h.db"))
		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "No recorded runs.")
	})
}

func TestInspectionCommands(t *testing.T) {
	Convey("The noise command prints every registered instruction", t, func() {
		out, err := execute(t, "noise", "--p-gate1", "0.2")
		So(err, ShouldBeNil)
		for _, name := range []string{"reset", "measure", "u1", "u2", "u3", "cx"} {
			So(out, ShouldContainSubstring, "instruction: "+name)
		}
		So(out, ShouldContainSubstring, "XX")
		So(out, ShouldContainSubstring, "0.2")
	})

	Convey("The qasm command prints OpenQASM", t, func() {
		out, err := execute(t, "qasm")
		So(err, ShouldBeNil)
		So(out, ShouldStartWith, "OPENQASM 2.0;")
		So(out, ShouldContainSubstring, "cx q[0],q[1];")

		drawn, err := execute(t, "qasm", "--draw")
		So(err, ShouldBeNil)
		So(drawn, ShouldContainSubstring, "q_1:")
	})

	Convey("The help text explains the noise default and log scope", t, func() {
		out, err := execute(t, "run", "--help")
		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "--ideal")
		So(out, ShouldContainSubstring, "noiseless")
		So(out, ShouldContainSubstring, "CLI log level")

		root, err := execute(t, "--help")
		So(err, ShouldBeNil)
		So(root, ShouldContainSubstring, "Pass --ideal")
	})

	Convey("The version command prints the version", t, func() {
		out, err := execute(t, "version")
		So(err, ShouldBeNil)
		So(out, ShouldStartWith, "qsim version "+version)
	})
}
