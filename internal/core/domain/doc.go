// Package domain contains the core entities of the library: canonical
// works, documents, chunks and summaries, plus the value types the
// retrieval and canonicalization services operate on. It has no
// dependencies on adapters or infrastructure.
package domain
