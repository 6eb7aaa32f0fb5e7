// SPDX-License-Identifier: MIT

package prox

// TV1D solves min_x ½‖x - y‖² + lambda·Σ|x_{i+1} - x_i| exactly.
//
// Implementation:
//
//	Condat's direct algorithm ("A Direct Algorithm for 1D Total Variation
//	Denoising", 2013). It scans y once, keeping the current segment's lower
//	and upper candidate levels (vmin, vmax) and their running slack
//	(umin, umax); a segment is emitted as soon as one of the slacks leaves
//	[-λ, λ], and the scan restarts right after it.
//
// Contract:
//   - len(dst) == len(y); dst may alias y (writes stay strictly behind reads).
//   - lambda <= 0 or len(y) <= 1 copies y.
//
// Complexity: O(n) typical, O(n²) worst case; no allocations.
func TV1D(dst, y []float64, lambda float64) {
	n := len(y)
	if n == 0 {
		return
	}
	if lambda <= 0 || n == 1 {
		copy(dst, y)

		return
	}

	var (
		k, k0, kplus, kminus int

		minlambda = -lambda
		twolambda = 2 * lambda
		umin      = lambda
		umax      = minlambda
		vmin      = y[0] - lambda
		vmax      = y[0] + lambda
	)
	for {
		for k == n-1 {
			switch {
			case umin < 0:
				for k0 <= kminus {
					dst[k0] = vmin
					k0++
				}
				k, kminus = k0, k0
				vmin = y[k0]
				umin = lambda
				umax = vmin + umin - vmax
			case umax > 0:
				for k0 <= kplus {
					dst[k0] = vmax
					k0++
				}
				k, kplus = k0, k0
				vmax = y[k0]
				umax = minlambda
				umin = vmax + umax - vmin
			default:
				vmin += umin / float64(k-k0+1)
				for k0 <= k {
					dst[k0] = vmin
					k0++
				}

				return
			}
		}

		umin += y[k+1] - vmin
		if umin < minlambda {
			// jump down: close the segment at vmin
			for k0 <= kminus {
				dst[k0] = vmin
				k0++
			}
			k, kminus, kplus = k0, k0, k0
			vmin = y[k0]
			vmax = vmin + twolambda
			umin, umax = lambda, minlambda

			continue
		}

		umax += y[k+1] - vmax
		if umax > lambda {
			// jump up: close the segment at vmax
			for k0 <= kplus {
				dst[k0] = vmax
				k0++
			}
			k, kminus, kplus = k0, k0, k0
			vmax = y[k0]
			vmin = vmax - twolambda
			umin, umax = lambda, minlambda

			continue
		}

		k++
		if umin >= lambda {
			kminus = k
			vmin += (umin - lambda) / float64(kminus-k0+1)
			umin = lambda
		}
		if umax <= minlambda {
			kplus = k
			vmax += (umax + lambda) / float64(kplus-k0+1)
			umax = minlambda
		}
	}
}
