package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// RotateAlongZ rotates 2D points about the origin by angle radians.
// The input is not modified.
func RotateAlongZ(points [][2]float64, angle float64) [][2]float64 {
	out := make([][2]float64, len(points))
	if len(points) == 0 {
		return out
	}

	flat := make([]float64, 0, 2*len(points))
	for _, p := range points {
		flat = append(flat, p[0], p[1])
	}
	RotateStrided(flat, 2, 0, angle)

	for i := range out {
		out[i] = [2]float64{flat[2*i], flat[2*i+1]}
	}
	return out
}

// RotationMatrix returns the 2x2 counter-clockwise rotation matrix for angle.
func RotationMatrix(angle float64) *mat.Dense {
	c, s := math.Cos(angle), math.Sin(angle)
	return mat.NewDense(2, 2, []float64{
		c, -s,
		s, c,
	})
}

// RotatePoint rotates a single (x, y) pair by angle radians.
func RotatePoint(x, y, angle float64) (float64, float64) {
	var out mat.VecDense
	out.MulVec(RotationMatrix(angle), mat.NewVecDense(2, []float64{x, y}))
	return out.AtVec(0), out.AtVec(1)
}

// RotateStrided rotates, in place, the (x, y) pair starting at offset in
// every stride-sized record of data. It is the flat-buffer form used by
// tensor code where each record carries more channels than x and y.
func RotateStrided(data []float64, stride, offset int, angle float64) {
	n := 0
	for base := 0; base+offset+1 < len(data); base += stride {
		n++
	}
	if n == 0 {
		return
	}

	src := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		src.Set(i, 0, data[i*stride+offset])
		src.Set(i, 1, data[i*stride+offset+1])
	}

	// Row vectors: p' = p · Rᵀ
	var dst mat.Dense
	dst.Mul(src, RotationMatrix(angle).T())

	for i := 0; i < n; i++ {
		data[i*stride+offset] = dst.At(i, 0)
		data[i*stride+offset+1] = dst.At(i, 1)
	}
}
