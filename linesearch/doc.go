// Package linesearch implements the backtracking step-size controllers of the
// forward-backward solver.
//
// Problem abstracts F = f + g with f smooth (Loss, Gradient) and g
// prox-friendly (Penalty, Prox). Two controllers act on it:
//
//	– ChooseGamma: shrink the forward step γ until the majorization test
//	  f(x + λd) - f(x) <= λ·(⟨d, ∇f(x)⟩ + δ/γ·‖d‖²),  d = prox_γg(x - γ∇f(x)) - x
//	  holds.
//	– ChooseLambda: shrink the relaxation weight λ along d = y - x under one of
//	  three acceptance criteria (Criterion A, B, C).
//
// Both controllers multiply the rejected parameter by Config.Eps and give up
// after Config.MaxIter rounds, returning the last value tried. Exhaustion is
// not an error: the caller keeps iterating with that value.
//
// Errors (sentinel):
//
//	– ErrUnknownCriterion  if a criterion token is not one of a, b, c.
//	– ErrInvalidConfig     if Delta, Eps or MaxIter is out of range.
package linesearch
