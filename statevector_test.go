package qsim

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStateVector(t *testing.T) {
	Convey("Given a fresh two-qubit register", t, func() {
		s := NewStateVector(2)
		So(s.Probabilities(), ShouldResemble, []float64{1, 0, 0, 0})

		Convey("X on qubit 0 sets the least significant bit", func() {
			s.ApplyPauli('X', 0)
			So(s.Probabilities()[1], ShouldAlmostEqual, 1)
		})

		Convey("H followed by CX prepares a Bell state", func() {
			h, _ := gates["h"].Unitary(nil)
			s.Apply(h, 0)
			s.ApplyCX(0, 1)

			probs := s.Probabilities()
			So(probs[0], ShouldAlmostEqual, 0.5)
			So(probs[3], ShouldAlmostEqual, 0.5)
			So(probs[1]+probs[2], ShouldAlmostEqual, 0)

			Convey("Measuring one qubit fixes the other", func() {
				So(s.Measure(0, 0.1), ShouldEqual, 1)
				So(s.ProbabilityOne(1), ShouldAlmostEqual, 1)

				total := 0.0
				for _, p := range s.Probabilities() {
					total += p
				}
				So(total, ShouldAlmostEqual, 1)
			})
		})

		Convey("Swap exchanges the qubits", func() {
			s.ApplyPauli('X', 0)
			s.ApplySwap(0, 1)
			So(s.ProbabilityOne(0), ShouldAlmostEqual, 0)
			So(s.ProbabilityOne(1), ShouldAlmostEqual, 1)
		})

		Convey("CZ flips the phase of |11>", func() {
			s.ApplyPauli('X', 0)
			s.ApplyPauli('X', 1)
			s.ApplyCZ(0, 1)
			So(real(s.Amplitudes()[3]), ShouldAlmostEqual, -1)
		})

		Convey("Reset returns an excited qubit to zero", func() {
			s.ApplyPauli('X', 1)
			s.Reset(1, 0.5)
			So(s.ProbabilityOne(1), ShouldAlmostEqual, 0)
		})

		Convey("Pauli strings apply right to left over the qubit list", func() {
			s.ApplyPauliString("XI", []int{0, 1})
			So(s.ProbabilityOne(0), ShouldAlmostEqual, 0)
			So(s.ProbabilityOne(1), ShouldAlmostEqual, 1)
		})

		Convey("Rotations match their matrices", func() {
			rx, _ := gates["rx"].Unitary([]float64{math.Pi})
			s.Apply(rx, 0)
			So(s.ProbabilityOne(0), ShouldAlmostEqual, 1)

			u2, _ := gates["u2"].Unitary([]float64{0, math.Pi})
			h, _ := gates["h"].Unitary(nil)
			for i := 0; i < 2; i++ {
				for j := 0; j < 2; j++ {
					So(real(u2[i][j]), ShouldAlmostEqual, real(h[i][j]))
					So(imag(u2[i][j]), ShouldAlmostEqual, imag(h[i][j]))
				}
			}
		})
	})
}
