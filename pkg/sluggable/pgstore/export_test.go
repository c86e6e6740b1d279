package pgstore

var (
	SiblingsQuery = siblingsQuery
	PendingQuery  = pendingQuery
	UpdateQuery   = updateQuery
)

func (t Table) WithDefaults() Table { return t.withDefaults() }
