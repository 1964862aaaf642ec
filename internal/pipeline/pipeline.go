// Package pipeline computes the procurement savings analysis: it pairs
// delivered order lines with every admissible vendor catalog offer,
// attaches vendor activation statuses, and classifies each pairing
// against the incumbent distributor's price.
package pipeline

import (
	"errors"

	"github.com/abasto-labs/savings-api/internal/catalog"
	"github.com/abasto-labs/savings-api/internal/geo"
	"github.com/abasto-labs/savings-api/internal/relations"
	"github.com/abasto-labs/savings-api/internal/snapshot"
)

// ErrNilSnapshot is returned by Compute when no snapshot is supplied.
var ErrNilSnapshot = errors.New("pipeline: nil snapshot")

// Compute runs the full analysis over one snapshot: catalog split, order
// enrichment, status attachment, classification. It is a pure function
// of the snapshot contents. RunID and ComputedAt are left zero; the
// caller that owns the run stamps them.
func Compute(snap *snapshot.Snapshot) (*Result, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}

	zones := geo.BuildZoneIndex(snap.Addresses)
	list := catalog.Split(snap.Catalog)
	candidates := Enrich(snap.Orders, zones, list)
	AttachStatuses(candidates, relations.NewIndex(snap.Relations))

	return &Result{
		Fingerprint: snap.Fingerprint,
		Offers:      Classify(candidates),
		Warnings:    snap.Warnings,
	}, nil
}
