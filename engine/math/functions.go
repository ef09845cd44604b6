package math

import (
	m "math"
	"sync"
	"time"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/rand"
)

const (
	/** @brief Smallest positive number where 1.0 + FLOAT_EPSILON != 0 */
	K_FLOAT_EPSILON float32 = 1.192092896e-07
)

var (
	randOnce sync.Once
	rng      *rand.Rand
	rngMutex sync.Mutex
)

func source() *rand.Rand {
	randOnce.Do(func() {
		rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	})
	return rng
}

// Seed makes the package random sequence reproducible.
func Seed(seed uint64) {
	rngMutex.Lock()
	defer rngMutex.Unlock()
	source().Seed(seed)
}

// RandRange returns a random integer in [min, max). max <= min returns min.
func RandRange[T constraints.Integer](min, max T) T {
	if max <= min {
		return min
	}
	rngMutex.Lock()
	defer rngMutex.Unlock()
	return min + T(source().Uint64n(uint64(max-min)))
}

// RandFloat returns a random float32 in [0, 1).
func RandFloat() float32 {
	rngMutex.Lock()
	defer rngMutex.Unlock()
	return source().Float32()
}

func kabs(x float32) float32 {
	return float32(m.Abs(float64(x)))
}

// ------------------------------------------
// Vector 2
// ------------------------------------------

/**
 * @brief Creates and returns a new 2-element vector using the supplied values.
 *
 * @param x The x value.
 * @param y The y value.
 * @return A new 2-element vector.
 */
func NewVec2(x, y float32) Vec2 {
	return Vec2{
		X: x,
		Y: y,
	}
}

func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{
		X: v.X + other.X,
		Y: v.Y + other.Y,
	}
}

func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{
		X: v.X - other.X,
		Y: v.Y - other.Y,
	}
}

/**
 * @brief Compares all elements of vector_0 and vector_1 and ensures the difference
 * is less than tolerance.
 */
func (v Vec2) Compare(other Vec2, tolerance float32) bool {
	if kabs(v.X-other.X) > tolerance {
		return false
	}
	if kabs(v.Y-other.Y) > tolerance {
		return false
	}
	return true
}

// ------------------------------------------
// Vector 4
// ------------------------------------------

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{
		X: x,
		Y: y,
		Z: z,
		W: w,
	}
}

// ------------------------------------------
// Extents
// ------------------------------------------

// NewExtents2D builds the rectangle spanning (x, y) to (x+w, y+h).
func NewExtents2D(x, y, w, h float32) Extents2D {
	return Extents2D{
		Min: NewVec2(x, y),
		Max: NewVec2(x+w, y+h),
	}
}

func (e Extents2D) Width() float32 {
	return e.Max.X - e.Min.X
}

func (e Extents2D) Height() float32 {
	return e.Max.Y - e.Min.Y
}
