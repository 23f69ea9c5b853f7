package entity

// Batch represents a course group the credential holder is subscribed to on
// the remote platform. Batch records are immutable within a poll cycle and
// re-fetched fresh every cycle; uniqueness over ID is guaranteed by the
// remote source.
type Batch struct {
	ID   string
	Name string
	Slug string

	// Optional lifecycle dates, kept as the remote's ISO-8601 strings.
	// Empty string means the remote did not report the field.
	StartDate  string
	EndDate    string
	ExpiryDate string
}

// SlugOrName returns the batch slug, falling back to the display name when
// the remote did not provide one. Used for ledger scopes and payload footers.
func (b *Batch) SlugOrName() string {
	if b.Slug != "" {
		return b.Slug
	}
	return b.Name
}

// Validate checks that the batch has the identifier required for tracking.
func (b *Batch) Validate() error {
	if b.ID == "" {
		return &ValidationError{Field: "ID", Message: "batch id must not be empty"}
	}
	return nil
}
