package relations

import "fmt"

// Known vendor activation status codes.
const (
	CodeUnconnected int64 = -1
	CodeRejected    int64 = 0
	CodeActive      int64 = 1
	CodePending     int64 = 2
)

// Status is a vendor's activation status at one point of sale. Defined is
// false when the source value could not be coerced to an integer code.
type Status struct {
	Code    int64 `json:"code"`
	Defined bool  `json:"defined"`
}

// Relation links a vendor to a point of sale with its activation status.
type Relation struct {
	VendorID      int64
	PointOfSaleID int64
	Status        Status
}

// Key identifies a (vendor, point of sale) pair.
type Key struct {
	VendorID      int64
	PointOfSaleID int64
}

// Index resolves the activation status of a (vendor, point of sale) pair.
type Index map[Key]Status

// NewIndex builds an Index from relation rows. The input carries at most
// one status per pair; if it repeats a pair the last row wins.
func NewIndex(rows []Relation) Index {
	ix := make(Index, len(rows))
	for _, r := range rows {
		ix[Key{VendorID: r.VendorID, PointOfSaleID: r.PointOfSaleID}] = r.Status
	}
	return ix
}

// Lookup returns the status for the pair, or nil when no relation exists.
func (ix Index) Lookup(vendorID, posID int64) *Status {
	if s, ok := ix[Key{VendorID: vendorID, PointOfSaleID: posID}]; ok {
		return &s
	}
	return nil
}

// Label renders a status for display. A nil status means the vendor has no
// relation with the point of sale at all.
func Label(s *Status) string {
	if s == nil {
		return "Unconnected"
	}
	if !s.Defined {
		return "Undefined"
	}
	switch s.Code {
	case CodeUnconnected:
		return "Unconnected"
	case CodeRejected:
		return "Rejected"
	case CodeActive:
		return "Active"
	case CodePending:
		return "Pending"
	}
	return fmt.Sprintf("Status %d", s.Code)
}

// Labels returns the display label for every known status code.
func Labels() map[int64]string {
	return map[int64]string{
		CodeUnconnected: "Unconnected",
		CodeRejected:    "Rejected",
		CodeActive:      "Active",
		CodePending:     "Pending",
	}
}
