// SPDX-License-Identifier: MIT

// Package prox implements the penalties and proximal maps used by the
// time-varying graphical lasso solvers.
//
// Contents:
//
//   - SoftThreshold / SoftThresholdStack / SoftThresholdOffDiagonal:
//     elementwise sign(x)·max(|x|-λ, 0). Soft thresholding is NOT idempotent
//     in general: applying it twice with the same λ shrinks by 2λ. Only a
//     second application with λ = 0 leaves the input unchanged.
//
//   - TV1D: exact one-dimensional total-variation denoising (Condat's direct
//     algorithm), the building block of the ℓ1 temporal prox.
//
//   - FusedLasso: proximal map of
//     α·Σ_t ‖K_t‖_od,1 + β·‖vec(K[1:] - K[:-1])‖_p for p ∈ {1, 2, ∞}.
//
//   - LogDet: proximal map of -λ·log det, used for the Gaussian data term.
//
//   - NuclearNorm: eigenvalue soft-thresholding with clipping at zero, i.e.
//     the prox of λ·tr(W) + indicator(W ⪰ 0).
//
//   - Penalty: the closed ψ/φ family (Laplacian, L1, L2, LInf, Node) used on
//     differences between lagged time points. Each variant has Value and
//     Prox. Tokens are resolved once with ParsePenalty.
//
// All operators write into a caller-provided destination that may alias the
// source unless noted otherwise.
package prox
