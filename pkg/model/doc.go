// Package model is a dynamic, reflective object model.
//
// # Overview
//
// The codec in [github.com/matzehuels/graphwire/pkg/codec] serializes graphs of
// typed objects. This package supplies those objects and their metadata:
//
//   - [Package]: a named namespace of classifiers, identified by a namespace URI
//   - [Class]: a declared type with ordered features (inherited features first)
//   - [Feature]: a named property slot; either an attribute (typed by a
//     [DataType] or [Enum]) or a reference (typed by a [Class])
//   - [Object]: an instance of a class with generic, id-based property access
//   - [List] and [FeatureMap]: ordered, unique collections with move and
//     insert primitives
//   - [Resource] and [ResourceSet]: documents holding root objects, and the
//     set that resolves cross-document proxies between them
//
// # References
//
// References come in three flavors that the codec treats differently:
//
//   - Containment: the target's lifetime is owned by the source. An object has
//     at most one container.
//   - Container: the opposite end of a containment reference, pointing from a
//     child back to its owner.
//   - Cross reference: plain association, optionally bidirectional through an
//     opposite feature.
//
// Bidirectional references are kept consistent automatically: adding b to
// a.friends also adds a to b.friends. This is what makes list reconciliation
// in the codec necessary, since decoding one end populates the other.
//
// # Proxies
//
// An object with a proxy URI stands in for an object that lives in another
// document. [ResourceSet.Resolve] replaces a proxy with its target when the
// target document is loaded in the same set.
//
// # Concurrency
//
// Nothing in this package is safe for concurrent mutation. Metadata
// ([Package], [Class], [Feature]) may be shared between goroutines once it is
// no longer modified.
package model
