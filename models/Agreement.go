package models

import "time"

// Agreement is the backend-generated rental/sale agreement: structured text
// plus metadata. The app renders it verbatim, it never edits the clauses.
type Agreement struct {
	ID          string    `json:"ID"`
	Kind        string    `json:"kind"` // rental | sale
	Title       string    `json:"title"`
	Clauses     []string  `json:"clauses"`
	StampValue  int64     `json:"stampValue"`
	OwnerName   string    `json:"ownerName"`
	TenantName  string    `json:"tenantName"`
	PropertyRef string    `json:"propertyRef"`
	GeneratedAt time.Time `json:"generatedAt"`
}
