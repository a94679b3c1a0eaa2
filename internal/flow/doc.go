// Package flow implements the pillar-based scene-flow pipeline core:
// bounds filtering, pillarization, padded batch collation, the
// scatter/unscatter grid transforms, and the weighted flow loss.
//
// Everything in this package is a pure transform over immutable inputs.
// Callers may parallelise freely across frames and batch elements; no
// function here holds shared mutable state.
//
// Dependency rule: this package owns the numeric core and must not
// import storage, database, or rendering code.
package flow
