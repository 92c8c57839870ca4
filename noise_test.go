package qsim

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func TestNewBitFlipNoiseModel(t *testing.T) {
	Convey("Given the sandbox probabilities", t, func() {
		model, err := NewBitFlipNoiseModel(0.03, 0.1, 0.05)
		So(err, ShouldBeNil)

		Convey("It registers reset, measure, u1/u2/u3 and cx", func() {
			So(model.Instructions(), ShouldResemble, []string{"cx", "measure", "reset", "u1", "u2", "u3"})
		})

		Convey("Each channel carries its own probability on every qubit", func() {
			for _, q := range []int{0, 1, 7} {
				So(model.ErrorFor("reset", []int{q}).Probability("X"), ShouldAlmostEqual, 0.03)
				So(model.ErrorFor("measure", []int{q}).Probability("X"), ShouldAlmostEqual, 0.1)
				for _, gate := range []string{"u1", "u2", "u3"} {
					So(model.ErrorFor(gate, []int{q}).Probability("X"), ShouldAlmostEqual, 0.05)
				}
			}
		})

		Convey("The cx channel is the gate channel tensored with itself", func() {
			cx := model.ErrorFor("cx", []int{0, 1})
			So(cx.NumQubits(), ShouldEqual, 2)
			So(cx.Probability("XX"), ShouldAlmostEqual, 0.05*0.05)
			So(cx.Probability("XI"), ShouldAlmostEqual, cx.Probability("IX"))
			So(cx.Probability("II"), ShouldAlmostEqual, 0.95*0.95)
		})

		Convey("Named gates fall back to their noise family", func() {
			h := model.lookup(Instruction{Name: "h", Qubits: []int{0}})
			So(h, ShouldNotBeNil)
			So(h.Probability("X"), ShouldAlmostEqual, 0.05)
			So(model.lookup(Instruction{Name: "id", Qubits: []int{0}}), ShouldBeNil)
		})

		Convey("The model is not ideal", func() {
			So(model.IsIdeal(), ShouldBeFalse)
		})
	})

	Convey("Given all probabilities at zero", t, func() {
		model, err := NewBitFlipNoiseModel(0, 0, 0)
		So(err, ShouldBeNil)
		So(model.IsIdeal(), ShouldBeTrue)
	})

	Convey("Given an out-of-range probability", t, func() {
		_, err := NewBitFlipNoiseModel(0, 1.2, 0)
		So(errors.Is(err, ErrInvalidProbability), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "measure error")
	})
}

func TestNoiseModelRegistration(t *testing.T) {
	Convey("Given an empty noise model", t, func() {
		model := NewNoiseModel()
		flip, _ := BitFlipError(0.5)

		Convey("Attaching a one-qubit error to cx fails", func() {
			err := model.AddAllQubitQuantumError(flip, "cx")
			So(errors.Is(err, ErrArityMismatch), ShouldBeTrue)
		})

		Convey("Registering twice composes the errors", func() {
			So(model.AddAllQubitQuantumError(flip, "x"), ShouldBeNil)
			So(model.AddAllQubitQuantumError(flip, "x"), ShouldBeNil)
			So(model.ErrorFor("x", []int{0}).Probability("X"), ShouldAlmostEqual, 0.5)
		})

		Convey("Qubit-local errors override the all-qubit entry", func() {
			always, _ := BitFlipError(1)
			So(model.AddAllQubitQuantumError(flip, "measure"), ShouldBeNil)
			So(model.AddQuantumError(always, "measure", []int{1}), ShouldBeNil)

			So(model.ErrorFor("measure", []int{0}).Probability("X"), ShouldAlmostEqual, 0.5)
			So(model.ErrorFor("measure", []int{1}).Probability("X"), ShouldEqual, 1)

			err := model.AddQuantumError(always, "measure", []int{0, 1})
			So(errors.Is(err, ErrArityMismatch), ShouldBeTrue)
		})

		Convey("Custom instruction names are accepted", func() {
			So(model.AddAllQubitQuantumError(flip, "my_gate"), ShouldBeNil)
			So(model.Instructions(), ShouldContain, "my_gate")
		})

		Convey("An empty model is ideal", func() {
			So(model.IsIdeal(), ShouldBeTrue)
			var nilModel *NoiseModel
			So(nilModel.IsIdeal(), ShouldBeTrue)
		})
	})
}

func TestNoiseModelYAML(t *testing.T) {
	Convey("Given the sandbox noise model", t, func() {
		model, err := NewBitFlipNoiseModel(0.03, 0.1, 0.05)
		So(err, ShouldBeNil)

		Convey("It marshals to one entry per instruction", func() {
			out, err := yaml.Marshal(model)
			So(err, ShouldBeNil)

			var entries []NoiseEntry
			So(yaml.Unmarshal(out, &entries), ShouldBeNil)
			So(len(entries), ShouldEqual, 6)
			So(entries[0].Instruction, ShouldEqual, "cx")
			So(len(entries[0].Terms), ShouldEqual, 4)
			So(string(out), ShouldContainSubstring, "label: X")
		})
	})
}
