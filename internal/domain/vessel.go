package domain

import "time"

type VesselStatus string

const (
	VesselAvailable   VesselStatus = "Available"
	VesselOccupied    VesselStatus = "Occupied"
	VesselCleaning    VesselStatus = "Cleaning"
	VesselMaintenance VesselStatus = "Maintenance"
	VesselRetired     VesselStatus = "Retired"
)

// Vessel is a physical container with a fixed capacity. Which batch currently
// sits in it is owned by the ledger's occupancy records, not by the vessel row,
// so there is a single writer for that relation.
type Vessel struct {
	ID        uint
	Name      string
	Kind      string // "tank", "barrel", "tote"
	Capacity  Quantity
	Status    VesselStatus
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanTransition reports whether a status change is allowed. Retired is
// terminal. Skipping Cleaning between Occupied and Available is discouraged in
// the workflow but not rejected here; that is caller policy.
func (v Vessel) CanTransition(to VesselStatus) bool {
	if v.Status == VesselRetired {
		return false
	}
	if to == v.Status {
		return false
	}

	switch to {
	case VesselAvailable, VesselCleaning, VesselMaintenance, VesselRetired:
		return true
	case VesselOccupied:
		// Occupied is entered through assignment, never set directly.
		return false
	default:
		return false
	}
}

// Occupancy records which batch sits in which vessel. At most one active
// occupancy per vessel; a batch may transiently span two during a transfer.
type Occupancy struct {
	ID       uint
	VesselID uint
	BatchID  uint
	Volume   Quantity
	Since    time.Time
}
