package math3d

import "math"

// Refract bends the unit incident vector v through a surface with unit normal n.
// refIdx is the relative refractive index n_out/n_in, so the returned vector
// satisfies sin(incident)/sin(transmitted) == refIdx. The caller must rule out
// total internal reflection first (see CannotRefract).
func Refract(v, n Vec3, refIdx float64) Vec3 {
	cosTheta := math.Min(v.Negate().Dot(n), 1.0)
	perp := v.Add(n.Scale(cosTheta)).Scale(1 / refIdx)
	parallel := n.Scale(-math.Sqrt(math.Abs(1.0 - perp.LenSq())))
	return perp.Add(parallel)
}

// CannotRefract reports whether light arriving at sinTheta undergoes total
// internal reflection for the relative index refIdx.
func CannotRefract(sinTheta, refIdx float64) bool {
	return sinTheta/refIdx > 1.0
}

// Schlick approximates the Fresnel reflectance for an incidence cosine and a
// relative refractive index: r0 + (1-r0)(1-cos)^5 with r0 = ((1-η)/(1+η))^2.
func Schlick(cosine, refIdx float64) float64 {
	r0 := (1 - refIdx) / (1 + refIdx)
	r0 *= r0
	m := 1 - cosine
	return r0 + (1-r0)*m*m*m*m*m
}
