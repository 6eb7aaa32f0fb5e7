// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Stack is an ordered sequence of T square p×p matrices stored contiguously.
//
// Invariants:
//   - len(data) == t·p·p at all times; a Stack is never resized.
//   - Views returned by At and Slice alias data; writes through them are
//     visible in the parent.
type Stack struct {
	t, p int
	data []float64
}

// NewStack allocates a zero-filled stack of t matrices of size p×p.
// Returns ErrBadShape if t<=0 or p<=0.
func NewStack(t, p int) (*Stack, error) {
	if t <= 0 || p <= 0 {
		return nil, fmt.Errorf("NewStack(%d,%d): %w", t, p, ErrBadShape)
	}

	return &Stack{t: t, p: p, data: make([]float64, t*p*p)}, nil
}

// NewStackFrom copies data (row-major, slice after slice) into a new stack.
// Returns ErrBadShape if the length does not match t·p·p.
func NewStackFrom(t, p int, data []float64) (*Stack, error) {
	s, err := NewStack(t, p)
	if err != nil {
		return nil, err
	}
	if len(data) != len(s.data) {
		return nil, fmt.Errorf("NewStackFrom: len=%d want %d: %w", len(data), len(s.data), ErrBadShape)
	}
	copy(s.data, data)

	return s, nil
}

// StackOf copies a list of square matrices of equal size into a new stack.
func StackOf(ms ...mat.Matrix) (*Stack, error) {
	if len(ms) == 0 {
		return nil, fmt.Errorf("StackOf: empty: %w", ErrBadShape)
	}
	r, c := ms[0].Dims()
	if r != c {
		return nil, fmt.Errorf("StackOf: %dx%d: %w", r, c, ErrBadShape)
	}
	s, err := NewStack(len(ms), r)
	if err != nil {
		return nil, err
	}
	for t, m := range ms {
		mr, mc := m.Dims()
		if mr != r || mc != c {
			return nil, fmt.Errorf("StackOf: slice %d is %dx%d: %w", t, mr, mc, ErrDimensionMismatch)
		}
		s.At(t).Copy(m)
	}

	return s, nil
}

// Len returns the number of slices T.
func (s *Stack) Len() int { return s.t }

// Dim returns the side p of every slice.
func (s *Stack) Dim() int { return s.p }

// Size returns the total number of entries T·p·p.
func (s *Stack) Size() int { return len(s.data) }

// Raw exposes the backing buffer. Callers must not change its length.
func (s *Stack) Raw() []float64 { return s.data }

// slab returns the backing range of slice t.
func (s *Stack) slab(t int) []float64 {
	pp := s.p * s.p

	return s.data[t*pp : (t+1)*pp : (t+1)*pp]
}

// SliceData returns the row-major backing range of slice t.
func (s *Stack) SliceData(t int) []float64 { return s.slab(t) }

// At returns slice t as a *mat.Dense sharing the stack's memory.
// Panics if t is out of range, like slice indexing.
func (s *Stack) At(t int) *mat.Dense {
	return mat.NewDense(s.p, s.p, s.slab(t))
}

// Get returns entry (i,j) of slice t.
func (s *Stack) Get(t, i, j int) float64 { return s.data[(t*s.p+i)*s.p+j] }

// Set writes entry (i,j) of slice t.
func (s *Stack) Set(t, i, j int, v float64) { s.data[(t*s.p+i)*s.p+j] = v }

// Slice returns the sub-stack of slices [from, to) as a view.
// Panics on an empty or out-of-range window.
func (s *Stack) Slice(from, to int) *Stack {
	if from < 0 || to > s.t || from >= to {
		panic(fmt.Sprintf("matrix: Slice[%d:%d] of %d slices", from, to, s.t))
	}
	pp := s.p * s.p

	return &Stack{t: to - from, p: s.p, data: s.data[from*pp : to*pp : to*pp]}
}

// Head returns the view of all but the last m slices (K[:-m]).
func (s *Stack) Head(m int) *Stack { return s.Slice(0, s.t-m) }

// Tail returns the view of all but the first m slices (K[m:]).
func (s *Stack) Tail(m int) *Stack { return s.Slice(m, s.t) }

// Clone returns a deep copy with its own storage.
func (s *Stack) Clone() *Stack {
	out := &Stack{t: s.t, p: s.p, data: make([]float64, len(s.data))}
	copy(out.data, s.data)

	return out
}

// ZerosLike allocates a zero stack with the same shape as s.
func (s *Stack) ZerosLike() *Stack {
	return &Stack{t: s.t, p: s.p, data: make([]float64, len(s.data))}
}

// SameShape reports whether o has the same T and p as s.
func (s *Stack) SameShape(o *Stack) bool {
	return o != nil && s.t == o.t && s.p == o.p
}

// mustSameShape panics when operands disagree; this is a programmer error
// inside the solvers, never a user input condition.
func (s *Stack) mustSameShape(op string, o *Stack) {
	if !s.SameShape(o) {
		panic(fmt.Sprintf("matrix: %s: %v", op, ErrDimensionMismatch))
	}
}

// CopyFrom overwrites s with src.
func (s *Stack) CopyFrom(src *Stack) {
	s.mustSameShape("CopyFrom", src)
	copy(s.data, src.data)
}

// Zero resets every entry to 0.
func (s *Stack) Zero() {
	for i := range s.data {
		s.data[i] = 0
	}
}

// Scale multiplies every entry by c.
func (s *Stack) Scale(c float64) { floats.Scale(c, s.data) }

// AddScaled performs s += alpha·x.
func (s *Stack) AddScaled(alpha float64, x *Stack) {
	s.mustSameShape("AddScaled", x)
	floats.AddScaled(s.data, alpha, x.data)
}

// AddScaledTo stores y + alpha·x into s.
func (s *Stack) AddScaledTo(y *Stack, alpha float64, x *Stack) {
	s.mustSameShape("AddScaledTo", y)
	s.mustSameShape("AddScaledTo", x)
	floats.AddScaledTo(s.data, y.data, alpha, x.data)
}

// Add performs s += x.
func (s *Stack) Add(x *Stack) {
	s.mustSameShape("Add", x)
	floats.Add(s.data, x.data)
}

// Sub performs s -= x.
func (s *Stack) Sub(x *Stack) {
	s.mustSameShape("Sub", x)
	floats.Sub(s.data, x.data)
}

// SubTo stores a - b into s.
func (s *Stack) SubTo(a, b *Stack) {
	s.mustSameShape("SubTo", a)
	s.mustSameShape("SubTo", b)
	floats.SubTo(s.data, a.data, b.data)
}

// Dot returns the Frobenius inner product ⟨s, o⟩ over all slices.
func (s *Stack) Dot(o *Stack) float64 {
	s.mustSameShape("Dot", o)

	return floats.Dot(s.data, o.data)
}

// Norm returns the Frobenius norm of the whole stack.
func (s *Stack) Norm() float64 { return floats.Norm(s.data, 2) }

// SquaredNorm returns ‖s‖² over all slices.
func (s *Stack) SquaredNorm() float64 { return floats.Dot(s.data, s.data) }

// Distance returns ‖a - b‖ (Frobenius) without allocating.
func Distance(a, b *Stack) float64 {
	a.mustSameShape("Distance", b)

	return floats.Distance(a.data, b.data, 2)
}

// SquaredDistance returns ‖a - b‖².
func SquaredDistance(a, b *Stack) float64 {
	d := Distance(a, b)

	return d * d
}

// MaxAbs returns max |x| over all entries.
func (s *Stack) MaxAbs() float64 {
	var m float64
	for _, v := range s.data {
		if a := math.Abs(v); a > m {
			m = a
		}
	}

	return m
}

// Symmetrize replaces every slice with (A + Aᵀ)/2 in place.
func (s *Stack) Symmetrize() {
	p := s.p
	for t := 0; t < s.t; t++ {
		d := s.slab(t)
		for i := 0; i < p; i++ {
			for j := i + 1; j < p; j++ {
				v := 0.5 * (d[i*p+j] + d[j*p+i])
				d[i*p+j], d[j*p+i] = v, v
			}
		}
	}
}

// UpperNorm returns the Frobenius norm of the strictly upper triangles of
// every slice.
func (s *Stack) UpperNorm() float64 {
	var acc float64
	p := s.p
	for t := 0; t < s.t; t++ {
		d := s.slab(t)
		for i := 0; i < p; i++ {
			for j := i + 1; j < p; j++ {
				acc += d[i*p+j] * d[i*p+j]
			}
		}
	}

	return math.Sqrt(acc)
}

// UpperDistance returns ‖triu(a,1) - triu(b,1)‖.
func UpperDistance(a, b *Stack) float64 {
	a.mustSameShape("UpperDistance", b)
	var acc float64
	p := a.p
	for t := 0; t < a.t; t++ {
		da, db := a.slab(t), b.slab(t)
		for i := 0; i < p; i++ {
			for j := i + 1; j < p; j++ {
				d := da[i*p+j] - db[i*p+j]
				acc += d * d
			}
		}
	}

	return math.Sqrt(acc)
}

// Identity fills every slice with the identity matrix.
func (s *Stack) Identity() {
	s.Zero()
	for t := 0; t < s.t; t++ {
		d := s.slab(t)
		for i := 0; i < s.p; i++ {
			d[i*s.p+i] = 1
		}
	}
}

// Slices returns mat.Dense views of all slices, in order.
func (s *Stack) Slices() []*mat.Dense {
	out := make([]*mat.Dense, s.t)
	for t := range out {
		out[t] = s.At(t)
	}

	return out
}
