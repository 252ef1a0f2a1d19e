// Package compose builds objects and composite types out of ordered sources:
// behavior bundles (composite types and bare initializers) and property bags.
//
// Properties from every source are merged into one prototype. Method-name
// collisions are settled by an override lineage attached to each method
// value: a source's own declaration always wins, while two unrelated sources
// bringing in the same inherited name must prove ancestry or the key is bound
// to a placeholder that fails with ErrConflictedMethod when called.
//
// Decorators hook the merge itself instead of being copied. Around, Before and
// After layer advice onto an existing method; From aliases a method under a
// new key; DontEnum and ReadOnly control property visibility.
//
// Composite types run every distinct initializer found in the composition
// graph exactly once per instantiation, so diamond-shaped graphs initialize
// the shared base a single time.
//
// Lineage links live on method values and are shared by every type that
// reuses the value. Composition is not safe for concurrent use.
package compose
