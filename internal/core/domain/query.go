package domain

// QueryOptions configures a retrieval query.
type QueryOptions struct {
	// TopK is the maximum number of results. Must be positive.
	TopK int

	// Filters restricts results to chunks whose Extra bag matches every
	// key with exact string equality. AND-combined; nil means no filter.
	Filters map[string]string
}
