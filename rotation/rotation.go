// Package rotation builds orthonormal bases from anatomical landmark
// points and converts between rotation matrices, Euler angles and
// quaternions, for segment-orientation analysis of motion capture data.
package rotation

import (
	"math"

	"go.trai.ch/zerr"
)

// Vec3 is one 3D point or direction.
type Vec3 [3]float64

// Mat3 is a 3x3 matrix. Bases store their x, y and z axes as rows.
type Mat3 [3][3]float64

// Config selects the landmark layout for a three-point basis.
//
//	     (A)               (B)
//
//	     * P2              * P3
//	    / |                | \
//	P3 *  |                |  * P2
//	    \ |                | /
//	    * P1               * P1
//
//	     (C)               (D)
//
//	P3 *-----* P2          * P2
//	    \   /            /   \
//	    * P1         P3 *-----* P1
type Config string

const (
	ConfigA Config = "A"
	ConfigB Config = "B"
	ConfigC Config = "C"
	ConfigD Config = "D"
)

var ErrUnknownConfig = zerr.New("unknown basis configuration")

func (v Vec3) add(w Vec3) Vec3  { return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]} }
func (v Vec3) sub(w Vec3) Vec3  { return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]} }
func (v Vec3) scale(s float64) Vec3 { return Vec3{v[0] * s, v[1] * s, v[2] * s} }

func (v Vec3) norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func (v Vec3) normalized() Vec3 {
	return v.scale(1 / v.norm())
}

func cross(a, b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Canonical is the world basis.
func Canonical() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Transposed returns the matrix transpose.
func (m Mat3) Transposed() Mat3 {
	var t Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			t[c][r] = m[r][c]
		}
	}
	return t
}

// Mul returns the matrix product m·n.
func (m Mat3) Mul(n Mat3) Mat3 {
	var p Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			for k := 0; k < 3; k++ {
				p[r][c] += m[r][k] * n[k][c]
			}
		}
	}
	return p
}

// Apply rotates a vector: m·v.
func (m Mat3) Apply(v Vec3) Vec3 {
	var out Vec3
	for r := 0; r < 3; r++ {
		out[r] = m[r][0]*v[0] + m[r][1]*v[1] + m[r][2]*v[2]
	}
	return out
}

// Basis builds an orthonormal basis from three points, following the
// selected landmark configuration. The second return value is the
// centroid (p1+p2+p3)/3. Configurations A and B share the construction
// of the up direction; A normalizes its first two edges by the P3-P2
// distance.
func Basis(config Config, p1, p2, p3 Vec3) (Mat3, Vec3, error) {
	var xAxis, yAxis, zAxis Vec3
	switch config {
	case ConfigA:
		scale := 1 / p3.sub(p2).norm()
		v1 := p1.sub(p3).scale(scale)
		v2 := p2.sub(p3).scale(scale)
		up := p2.sub(p1).normalized()
		ap := cross(v2, v1).normalized()
		ml := cross(ap, up).normalized()
		zAxis = cross(ml, ap).normalized()
		yAxis = cross(zAxis, ml).normalized()
		xAxis = cross(yAxis, zAxis).normalized()
	case ConfigB:
		v1 := p3.sub(p2).normalized()
		v2 := p1.sub(p2).normalized()
		up := p3.sub(p1).normalized()
		ap := cross(v2, v1).normalized()
		ml := cross(ap, up).normalized()
		zAxis = cross(ml, ap).normalized()
		yAxis = cross(zAxis, ml).normalized()
		xAxis = cross(yAxis, zAxis).normalized()
	case ConfigC:
		v1 := p2.sub(p1).normalized()
		v2 := p3.sub(p1).normalized()
		ml := p2.sub(p3).normalized()
		ap := cross(v2, v1).normalized()
		zAxis = cross(ml, ap).normalized()
		xAxis = cross(ap, zAxis).normalized()
		yAxis = cross(zAxis, xAxis).normalized()
	case ConfigD:
		v1 := p1.sub(p2).normalized()
		v2 := p3.sub(p2).normalized()
		ml := p1.sub(p3).normalized()
		ap := cross(v1, v2).normalized()
		zAxis = cross(ml, ap).normalized()
		xAxis = cross(ap, zAxis).normalized()
		yAxis = cross(zAxis, xAxis).normalized()
	default:
		return Mat3{}, Vec3{}, zerr.With(ErrUnknownConfig, "config", string(config))
	}
	centroid := p1.add(p2).add(p3).scale(1.0 / 3.0)
	return Mat3{xAxis, yAxis, zAxis}, centroid, nil
}

// BasisTrunk builds the trunk basis from the STRN, CLAV, C7 and T10
// markers. The centroid is the mean of the four points.
func BasisTrunk(strn, clav, c7, t10 Vec3) (Mat3, Vec3) {
	pm := strn.add(clav).add(c7).add(t10).scale(0.25)
	v1 := clav.sub(pm).normalized()
	v2 := strn.sub(pm).normalized()
	ml := cross(v2, v1).normalized()
	proximal := clav.add(c7).scale(0.5)
	up := proximal.sub(pm).normalized()
	yAxis := cross(up, ml).normalized()
	zAxis := cross(ml, yAxis).normalized()
	xAxis := cross(yAxis, zAxis).normalized()
	return Mat3{xAxis, yAxis, zAxis}, pm
}

// BasisPelvis builds the pelvis basis from the RASI, LASI, RPSI and LPSI
// markers. The centroid is the mean of the four points.
func BasisPelvis(rasi, lasi, rpsi, lpsi Vec3) (Mat3, Vec3) {
	pm := rasi.add(lasi).add(rpsi).add(lpsi).scale(0.25)
	v1 := lasi.sub(pm).normalized()
	v2 := rasi.sub(pm).normalized()
	up := cross(v2, v1).normalized()
	anterior := rasi.add(lasi).scale(0.5)
	ap := anterior.sub(pm).normalized()
	xAxis := cross(ap, up).normalized()
	yAxis := cross(up, xAxis).normalized()
	zAxis := cross(xAxis, yAxis).normalized()
	return Mat3{xAxis, yAxis, zAxis}, pm
}

// RotationBetween returns the rotation matrix from basis b1 to basis b2:
// b2·b1ᵀ. Pass Canonical() as b2 to express b1 in world coordinates.
func RotationBetween(b1, b2 Mat3) Mat3 {
	return b2.Mul(b1.Transposed())
}

// RotationSeries returns, per frame, the rotation bᵢ·targetᵀ of a basis
// time series against a fixed target basis.
func RotationSeries(bases []Mat3, target Mat3) []Mat3 {
	targetT := target.Transposed()
	out := make([]Mat3, len(bases))
	for i, basis := range bases {
		out[i] = basis.Mul(targetT)
	}
	return out
}

// EulerXYZ decomposes a rotation matrix into extrinsic x-y-z Euler angles
// in degrees.
func EulerXYZ(m Mat3) (x, y, z float64) {
	sy := -m[2][0]
	if sy > 1 {
		sy = 1
	} else if sy < -1 {
		sy = -1
	}
	y = math.Asin(sy)
	if math.Abs(sy) < 1-1e-9 {
		x = math.Atan2(m[2][1], m[2][2])
		z = math.Atan2(m[1][0], m[0][0])
	} else {
		// gimbal lock: x and z are coupled, put everything into x
		x = math.Atan2(-m[1][2], m[1][1])
		z = 0
	}
	const toDeg = 180 / math.Pi
	return x * toDeg, y * toDeg, z * toDeg
}

// Quaternion converts a rotation matrix to a unit quaternion in
// (x, y, z, w) order, scalar last.
func Quaternion(m Mat3) [4]float64 {
	trace := m[0][0] + m[1][1] + m[2][2]
	var q [4]float64
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q[3] = 0.25 * s
		q[0] = (m[2][1] - m[1][2]) / s
		q[1] = (m[0][2] - m[2][0]) / s
		q[2] = (m[1][0] - m[0][1]) / s
	case m[0][0] > m[1][1] && m[0][0] > m[2][2]:
		s := math.Sqrt(1+m[0][0]-m[1][1]-m[2][2]) * 2
		q[3] = (m[2][1] - m[1][2]) / s
		q[0] = 0.25 * s
		q[1] = (m[0][1] + m[1][0]) / s
		q[2] = (m[0][2] + m[2][0]) / s
	case m[1][1] > m[2][2]:
		s := math.Sqrt(1+m[1][1]-m[0][0]-m[2][2]) * 2
		q[3] = (m[0][2] - m[2][0]) / s
		q[0] = (m[0][1] + m[1][0]) / s
		q[1] = 0.25 * s
		q[2] = (m[1][2] + m[2][1]) / s
	default:
		s := math.Sqrt(1+m[2][2]-m[0][0]-m[1][1]) * 2
		q[3] = (m[1][0] - m[0][1]) / s
		q[0] = (m[0][2] + m[2][0]) / s
		q[1] = (m[1][2] + m[2][1]) / s
		q[2] = 0.25 * s
	}
	return q
}

// axisRotation builds the rotation matrix for an angle (degrees) about a
// single axis.
func axisRotation(axis byte, degrees float64) (Mat3, error) {
	rad := degrees * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	switch axis {
	case 'x':
		return Mat3{{1, 0, 0}, {0, c, -s}, {0, s, c}}, nil
	case 'y':
		return Mat3{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}, nil
	case 'z':
		return Mat3{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}, nil
	}
	return Mat3{}, zerr.With(ErrUnknownConfig, "axis", string(axis))
}

// RotateSeries rotates every point of a series by the given angles, in
// degrees. The angles are taken positionally against the axis order
// string ("xyz", "zyx", ...), and the axis rotations compose
// extrinsically in that order.
func RotateSeries(data []Vec3, xdeg, ydeg, zdeg float64, order string) ([]Vec3, error) {
	if len(order) != 3 {
		return nil, zerr.With(ErrUnknownConfig, "order", order)
	}
	angles := [3]float64{xdeg, ydeg, zdeg}
	rotation := Canonical()
	for i := 0; i < 3; i++ {
		axis, err := axisRotation(order[i], angles[i])
		if err != nil {
			return nil, err
		}
		rotation = axis.Mul(rotation)
	}
	out := make([]Vec3, len(data))
	for i, point := range data {
		out[i] = rotation.Apply(point)
	}
	return out, nil
}
