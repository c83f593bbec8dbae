package types

import "time"

// AssetType categorizes the kind of hardware an asset record describes.
type AssetType string

const (
	AssetLaptop   AssetType = "laptop"
	AssetMonitor  AssetType = "monitor"
	AssetDock     AssetType = "dock"
	AssetHeadset  AssetType = "headset"
	AssetCamera   AssetType = "camera"
	AssetKeyboard AssetType = "keyboard"
	AssetMouse    AssetType = "mouse"
	AssetOther    AssetType = "other"
)

// AssetStatus represents the lifecycle state of an asset.
// Decommissioned is terminal: no transition leads out of it.
type AssetStatus string

const (
	StatusAvailable      AssetStatus = "available"
	StatusActive         AssetStatus = "active"
	StatusRepair         AssetStatus = "repair"
	StatusDecommissioned AssetStatus = "decommissioned"
)

// TagPrefix returns the asset-tag prefix used when generating tags for
// this asset type (e.g. "LAP" -> "LAP-042").
func (t AssetType) TagPrefix() string {
	switch t {
	case AssetLaptop:
		return "LAP"
	case AssetMonitor:
		return "MON"
	case AssetDock:
		return "DCK"
	case AssetHeadset:
		return "HEAD"
	case AssetCamera:
		return "CAM"
	case AssetKeyboard:
		return "KEY"
	case AssetMouse:
		return "MOU"
	case AssetOther:
		return "OTH"
	default:
		return "AST"
	}
}

// Asset is the core domain entity: one piece of IT hardware tracked through
// procurement, assignment, repair, and decommissioning.
//
// Invariant: AssignedTo is non-nil iff Status == active, with one intentional
// exception -- an asset sent to repair keeps its assignment so MarkFixed can
// return it to the same employee.
type Asset struct {
	ID        int64     `json:"id" db:"id"`
	AssetTag  string    `json:"asset_tag" db:"asset_tag"`
	AssetType AssetType `json:"asset_type" db:"asset_type"`
	Name      string    `json:"name" db:"name"`

	Manufacturer string `json:"manufacturer,omitempty" db:"manufacturer"`
	Model        string `json:"model,omitempty" db:"model"`
	SerialNumber string `json:"serial_number,omitempty" db:"serial_number"`

	// Purchase & warranty
	PurchaseDate  *time.Time `json:"purchase_date,omitempty" db:"purchase_date"`
	PurchasePrice *float64   `json:"purchase_price,omitempty" db:"purchase_price"`
	WarrantyEnd   *time.Time `json:"warranty_end,omitempty" db:"warranty_end"`
	Vendor        string     `json:"vendor,omitempty" db:"vendor"`
	PONumber      string     `json:"po_number,omitempty" db:"po_number"`

	// Assignment
	Status       AssetStatus `json:"status" db:"status"`
	AssignedTo   *int64      `json:"assigned_to,omitempty" db:"assigned_to"`
	AssignedDate *time.Time  `json:"assigned_date,omitempty" db:"assigned_date"`

	// Decommission
	DecommissionDate   *time.Time `json:"decommission_date,omitempty" db:"decommission_date"`
	DecommissionReason string     `json:"decommission_reason,omitempty" db:"decommission_reason"`

	Notes    string `json:"notes,omitempty" db:"notes"`
	Location string `json:"location,omitempty" db:"location"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Repair is one repair event in an asset's history.
type Repair struct {
	ID      int64 `json:"id" db:"id"`
	AssetID int64 `json:"asset_id" db:"asset_id"`

	RepairDate       time.Time `json:"repair_date" db:"repair_date"`
	IssueDescription string    `json:"issue_description" db:"issue_description"`
	Resolution       string    `json:"resolution,omitempty" db:"resolution"`
	Cost             float64   `json:"cost" db:"cost"`
	IsWarrantyRepair bool      `json:"is_warranty_repair" db:"is_warranty_repair"`
	Vendor           string    `json:"vendor,omitempty" db:"vendor"`
	TicketNumber     string    `json:"ticket_number,omitempty" db:"ticket_number"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AssetFilter narrows asset list queries. Nil/zero fields are ignored.
type AssetFilter struct {
	Type     *AssetType
	Status   *AssetStatus
	Assigned *bool // true: assigned_to IS NOT NULL; false: IS NULL
	Search   string
	Offset   int
	Limit    int
}

// AssetStats is the dashboard inventory snapshot: counts by status and
// type plus spend totals.
type AssetStats struct {
	Total              int                 `json:"total"`
	Assigned           int                 `json:"assigned"`
	ByStatus           map[AssetStatus]int `json:"by_status"`
	ByType             map[AssetType]int   `json:"by_type"`
	TotalPurchaseValue float64             `json:"total_purchase_value"`
	TotalRepairCost    float64             `json:"total_repair_cost"`
}
