package rotation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func assertOrthonormal(t *testing.T, m Mat3) {
	t.Helper()
	for r := 0; r < 3; r++ {
		row := Vec3(m[r])
		assert.InDelta(t, 1, row.norm(), epsilon, "row %d must be unit length", r)
	}
	for r := 0; r < 3; r++ {
		for c := r + 1; c < 3; c++ {
			dot := m[r][0]*m[c][0] + m[r][1]*m[c][1] + m[r][2]*m[c][2]
			assert.InDelta(t, 0, dot, epsilon, "rows %d and %d must be orthogonal", r, c)
		}
	}
}

func TestBasisAllConfigsOrthonormal(t *testing.T) {
	p1 := Vec3{0.1, 0.2, 0.3}
	p2 := Vec3{1.4, 0.1, 0.5}
	p3 := Vec3{0.3, 1.2, 0.2}
	for _, config := range []Config{ConfigA, ConfigB, ConfigC, ConfigD} {
		basis, centroid, err := Basis(config, p1, p2, p3)
		require.NoError(t, err, "config %s", config)
		assertOrthonormal(t, basis)
		for axis := 0; axis < 3; axis++ {
			expected := (p1[axis] + p2[axis] + p3[axis]) / 3
			assert.InDelta(t, expected, centroid[axis], epsilon)
		}
	}
}

func TestBasisUnknownConfig(t *testing.T) {
	_, _, err := Basis("E", Vec3{}, Vec3{1, 0, 0}, Vec3{0, 1, 0})
	assert.ErrorIs(t, err, ErrUnknownConfig)
}

func TestBasisConfigCKnownLayout(t *testing.T) {
	// markers in the xy plane: the anteroposterior axis comes out of plane
	basis, _, err := Basis(ConfigC, Vec3{0, 0, 0}, Vec3{1, 0, 0}, Vec3{0, 1, 0})
	require.NoError(t, err)
	assertOrthonormal(t, basis)
	invSqrt2 := 1 / math.Sqrt2
	assert.InDelta(t, invSqrt2, basis[2][0], epsilon)
	assert.InDelta(t, invSqrt2, basis[2][1], epsilon)
	assert.InDelta(t, 0, basis[2][2], epsilon)
}

func TestBasisTrunkAndPelvis(t *testing.T) {
	strn := Vec3{0.05, -0.10, 1.20}
	clav := Vec3{0.02, -0.05, 1.45}
	c7 := Vec3{0.00, 0.08, 1.48}
	t10 := Vec3{0.01, 0.10, 1.15}
	basis, pm := BasisTrunk(strn, clav, c7, t10)
	assertOrthonormal(t, basis)
	assert.InDelta(t, (0.05+0.02+0.00+0.01)/4, pm[0], epsilon)

	rasi := Vec3{0.15, -0.05, 1.00}
	lasi := Vec3{-0.15, -0.05, 1.00}
	rpsi := Vec3{0.08, 0.12, 1.02}
	lpsi := Vec3{-0.08, 0.12, 1.02}
	basis, pm = BasisPelvis(rasi, lasi, rpsi, lpsi)
	assertOrthonormal(t, basis)
	assert.InDelta(t, 0, pm[0], epsilon)
}

func TestRotationBetweenCanonical(t *testing.T) {
	basis := Mat3{{0, 1, 0}, {-1, 0, 0}, {0, 0, 1}}
	r := RotationBetween(basis, Canonical())
	// against the canonical target the rotation is the transposed basis
	assert.Equal(t, basis.Transposed(), r)
}

func TestRotationSeries(t *testing.T) {
	bases := []Mat3{Canonical(), {{0, 1, 0}, {-1, 0, 0}, {0, 0, 1}}}
	rotations := RotationSeries(bases, Canonical())
	require.Len(t, rotations, 2)
	assert.Equal(t, Canonical(), rotations[0])
	assert.Equal(t, bases[1], rotations[1])
}

func TestEulerXYZPureRotations(t *testing.T) {
	rz, err := axisRotation('z', 30)
	require.NoError(t, err)
	x, y, z := EulerXYZ(rz)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
	assert.InDelta(t, 30, z, 1e-9)

	rx, err := axisRotation('x', -45)
	require.NoError(t, err)
	x, y, z = EulerXYZ(rx)
	assert.InDelta(t, -45, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
	assert.InDelta(t, 0, z, 1e-9)

	ry, err := axisRotation('y', 60)
	require.NoError(t, err)
	x, y, z = EulerXYZ(ry)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 60, y, 1e-9)
	assert.InDelta(t, 0, z, 1e-9)
}

func TestEulerXYZComposition(t *testing.T) {
	// extrinsic x-y-z: R = Rz·Ry·Rx
	rx, _ := axisRotation('x', 10)
	ry, _ := axisRotation('y', 20)
	rz, _ := axisRotation('z', 30)
	r := rz.Mul(ry.Mul(rx))
	x, y, z := EulerXYZ(r)
	assert.InDelta(t, 10, x, 1e-9)
	assert.InDelta(t, 20, y, 1e-9)
	assert.InDelta(t, 30, z, 1e-9)
}

func TestQuaternion(t *testing.T) {
	q := Quaternion(Canonical())
	assert.InDelta(t, 0, q[0], epsilon)
	assert.InDelta(t, 0, q[1], epsilon)
	assert.InDelta(t, 0, q[2], epsilon)
	assert.InDelta(t, 1, q[3], epsilon)

	rz, _ := axisRotation('z', 90)
	q = Quaternion(rz)
	assert.InDelta(t, 0, q[0], epsilon)
	assert.InDelta(t, 0, q[1], epsilon)
	assert.InDelta(t, math.Sqrt2/2, q[2], epsilon)
	assert.InDelta(t, math.Sqrt2/2, q[3], epsilon)
}

func TestQuaternionRoundTripSign(t *testing.T) {
	rx, _ := axisRotation('x', 170)
	q := Quaternion(rx)
	norm := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	assert.InDelta(t, 1, norm, epsilon)
	assert.InDelta(t, math.Sin(170*math.Pi/360), q[0], epsilon)
}

func TestRotateSeries(t *testing.T) {
	rotated, err := RotateSeries([]Vec3{{1, 0, 0}}, 0, 0, 90, "xyz")
	require.NoError(t, err)
	require.Len(t, rotated, 1)
	assert.InDelta(t, 0, rotated[0][0], epsilon)
	assert.InDelta(t, 1, rotated[0][1], epsilon)
	assert.InDelta(t, 0, rotated[0][2], epsilon)
}

func TestRotateSeriesOrderMatters(t *testing.T) {
	point := []Vec3{{1, 0, 0}}
	xyz, err := RotateSeries(point, 90, 0, 90, "xyz")
	require.NoError(t, err)
	zyx, err := RotateSeries(point, 90, 0, 90, "zyx")
	require.NoError(t, err)
	assert.NotEqual(t, xyz[0], zyx[0])
}

func TestRotateSeriesBadOrder(t *testing.T) {
	_, err := RotateSeries(nil, 0, 0, 0, "xy")
	assert.Error(t, err)
	_, err = RotateSeries(nil, 0, 0, 0, "xyq")
	assert.Error(t, err)
}
