package synth

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"

	"qpiler/circuit"
)

// product1 multiplies an op list into one matrix, applied order.
func product1(t *testing.T, ops []circuit.Operation) Mat2 {
	t.Helper()
	acc := I2
	for _, op := range ops {
		u, ok := Gate1(op.Name, op.Params)
		require.True(t, ok, "no matrix for %s", op.Name)
		acc = Mul2(u, acc)
	}
	return acc
}

func TestZYZReconstructs(t *testing.T) {
	cases := []struct {
		name string
		u    Mat2
	}{
		{"h", matH},
		{"x", matX},
		{"s", matS},
		{"sx", matSX},
		{"rz", RZ(0.7)},
		{"ry", RY(-1.3)},
		{"generic", U3(0.3, 0.7, -1.1)},
		{"id", I2},
	}
	for _, tc := range cases {
		theta, phi, lambda, phase := ZYZ(tc.u)
		require.GreaterOrEqual(t, theta, 0.0, tc.name)
		require.LessOrEqual(t, theta, math.Pi+1e-9, tc.name)
		got := Mul2(RZ(phi), Mul2(RY(theta), RZ(lambda)))
		got = Scale2(got, cmplx.Exp(complex(0, phase)))
		require.True(t, AllClose2(tc.u, got, 1e-9), tc.name)
	}
}

func TestZYZReconstructsOnDeterminantBranchCut(t *testing.T) {
	// a determinant a hair below the negative real axis flips the
	// sign of the SU(2) lift
	for _, u := range []Mat2{
		Scale2(matH, cmplx.Exp(complex(0, 1e-12))),
		Scale2(matX, cmplx.Exp(complex(0, 1e-12))),
		Scale2(matY, cmplx.Exp(complex(0, 1e-12))),
	} {
		theta, phi, lambda, phase := ZYZ(u)
		got := Mul2(RZ(phi), Mul2(RY(theta), RZ(lambda)))
		got = Scale2(got, cmplx.Exp(complex(0, phase)))
		require.True(t, AllClose2(u, got, 1e-9))
	}
}

func TestZSXOps(t *testing.T) {
	cases := []struct {
		name string
		u    Mat2
	}{
		{"h", matH},
		{"x", matX},
		{"z", matZ},
		{"t", Phase(math.Pi / 4)},
		{"generic", U3(1.1, -0.4, 2.2)},
		{"id", I2},
	}
	for _, tc := range cases {
		for _, haveX := range []bool{true, false} {
			ops := ZSXOps(tc.u, 3, haveX)
			for _, op := range ops {
				require.Contains(t, []string{"rz", "sx", "x"}, op.Name, tc.name)
				require.Equal(t, []int{3}, op.Qubits, tc.name)
				if op.Name == "x" {
					require.True(t, haveX, tc.name)
				}
			}
			got := product1(t, ops)
			require.True(t, EqualUpToPhase2(tc.u, got, 1e-9), "%s haveX=%v", tc.name, haveX)
		}
	}
}

func TestZSXOpsIdentityEmitsNothing(t *testing.T) {
	require.Empty(t, ZSXOps(I2, 0, true))
	// global phase only
	require.Empty(t, ZSXOps(Scale2(I2, cmplx.Exp(complex(0, 0.4))), 0, true))
}

func TestZYZOps(t *testing.T) {
	for _, u := range []Mat2{matH, matY, U3(0.9, 0.2, -0.7), RZ(1.9)} {
		ops := ZYZOps(u, 1)
		for _, op := range ops {
			require.Contains(t, []string{"rz", "ry"}, op.Name)
		}
		got := product1(t, ops)
		require.True(t, EqualUpToPhase2(u, got, 1e-9))
	}
}

func TestSU2Phase(t *testing.T) {
	su, phase := SU2(matH)
	require.InDelta(t, 1.0, real(Det2(su)), 1e-12)
	require.InDelta(t, 0.0, imag(Det2(su)), 1e-12)
	back := Scale2(su, cmplx.Exp(complex(0, phase)))
	require.True(t, AllClose2(matH, back, 1e-12))
}
