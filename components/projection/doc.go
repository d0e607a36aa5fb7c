// Package projection holds the financial projection engine behind the finance
// dashboard: closed-form ARR and valuation formulas, the user-count sweep that
// feeds the ARR/valuation charts, and the single-point KPI projector (burn,
// runway, net income).
//
// Everything in this package is pure and synchronous. Callers that need
// memoization wrap GenerateSweep with a SweepMemo.
package projection
