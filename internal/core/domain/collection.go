package domain

// Collection names a typed record collection in the library store.
type Collection string

const (
	// CollectionWorks holds canonical Work records keyed by WorkKey.
	CollectionWorks Collection = "works"

	// CollectionDocuments holds Document records keyed by SourceID.
	CollectionDocuments Collection = "documents"

	// CollectionChunks holds Chunk records keyed by chunk ID.
	CollectionChunks Collection = "chunks"

	// CollectionSummaries holds Summary records keyed by summary ID.
	CollectionSummaries Collection = "summaries"
)
