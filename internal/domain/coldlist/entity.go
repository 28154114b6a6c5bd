// internal/domain/coldlist/entity.go
package coldlist

import (
	"time"

	"github.com/lib/pq"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ColdList is a campaign: an ordered set of leads spread over vendors and days.
type ColdList struct {
	ID          int64  `json:"id" db:"id"`
	Reference   string `json:"reference" db:"reference"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
	ProjectID   int64  `json:"project_id" db:"project_id"`

	// Distribution parameters
	ClientsPerDay    int           `json:"clients_per_day" db:"clients_per_day"`
	ClientsPerVendor int           `json:"clients_per_vendor" db:"clients_per_vendor"`
	SelectedVendors  pq.Int64Array `json:"selected_vendors" db:"selected_vendors"`
	StartDate        time.Time     `json:"start_date" db:"start_date"`
	EndDate          time.Time     `json:"end_date" db:"end_date"`

	// Progress
	TotalClients   int    `json:"total_clients" db:"total_clients"`
	Status         Status `json:"status" db:"status"`
	TasksGenerated int    `json:"tasks_generated" db:"tasks_generated"`

	// Ownership
	OwnerID        int64  `json:"owner_id" db:"owner_id"`
	AssignedUserID *int64 `json:"assigned_user_id,omitempty" db:"assigned_user_id"`

	Clients []Client `json:"clients,omitempty" db:"-"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Client is a single imported lead, addressed by its position in the list.
type Client struct {
	Position int               `json:"position" db:"position"`
	Name     string            `json:"name" db:"name"`
	Phone    string            `json:"phone" db:"phone"`
	Extra    map[string]string `json:"extra,omitempty" db:"extra"`

	// Assignment
	AssignedVendorID *int64     `json:"assigned_vendor_id,omitempty" db:"assigned_vendor_id"`
	AssignedDate     *time.Time `json:"assigned_date,omitempty" db:"assigned_date"`

	// Contact tracking, always written together
	Contacted   bool       `json:"contacted" db:"contacted"`
	ContactDate *time.Time `json:"contact_date,omitempty" db:"contact_date"`
	ContactedBy *int64     `json:"contacted_by,omitempty" db:"contacted_by"`
}

// Assignment binds the lead at Position to a vendor and a day.
type Assignment struct {
	Position int       `json:"position"`
	VendorID int64     `json:"vendor_id"`
	Date     time.Time `json:"date"`
}

// ContactUpdate is the paired write of the contact fields of one lead.
type ContactUpdate struct {
	Contacted   bool
	ContactDate *time.Time
	ContactedBy *int64
}

// NewContactUpdate builds the update for a contacted flag, keeping the three fields consistent.
func NewContactUpdate(contacted bool, by int64, at time.Time) ContactUpdate {
	if !contacted {
		return ContactUpdate{}
	}
	return ContactUpdate{Contacted: true, ContactDate: &at, ContactedBy: &by}
}

// Apply copies the update onto the lead.
func (u ContactUpdate) Apply(c *Client) {
	c.Contacted = u.Contacted
	c.ContactDate = u.ContactDate
	c.ContactedBy = u.ContactedBy
}

// ClearDistribution removes assignment and contact state from the lead.
func (c *Client) ClearDistribution() {
	c.AssignedVendorID = nil
	c.AssignedDate = nil
	c.Contacted = false
	c.ContactDate = nil
	c.ContactedBy = nil
}

// EffectiveAssignee returns the delegate, defaulting to the owner.
func (l *ColdList) EffectiveAssignee() int64 {
	if l.AssignedUserID != nil {
		return *l.AssignedUserID
	}
	return l.OwnerID
}

// SelectsVendor reports whether vendorID is among the selected vendors.
func (l *ColdList) SelectsVendor(vendorID int64) bool {
	for _, id := range l.SelectedVendors {
		if id == vendorID {
			return true
		}
	}
	return false
}
