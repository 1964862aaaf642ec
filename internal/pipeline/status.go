package pipeline

import "github.com/abasto-labs/savings-api/internal/relations"

// AttachStatuses sets, in place, each candidate's activation status for
// the vendor at the order's point of sale. Candidates whose vendor has
// no relation row with that point of sale keep a nil status.
func AttachStatuses(offers []CandidateOffer, ix relations.Index) {
	for i := range offers {
		offers[i].Status = ix.Lookup(offers[i].VendorID, offers[i].PointOfSaleID)
	}
}
