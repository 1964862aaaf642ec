package analytics

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abasto-labs/savings-api/internal/common"
	"github.com/abasto-labs/savings-api/internal/geo"
	"github.com/abasto-labs/savings-api/internal/pipeline"
	"github.com/abasto-labs/savings-api/internal/relations"
	"github.com/abasto-labs/savings-api/internal/snapshot"
	"github.com/abasto-labs/savings-api/internal/summary"
)

const defaultOffersPerPage = 100

// Handler exposes the savings analysis read endpoints.
type Handler struct {
	Svc *Service
}

// analysis resolves the resident analysis or writes the error response.
func (h *Handler) analysis(w http.ResponseWriter, r *http.Request) (*Analysis, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "analytics service not configured", nil)
		return nil, false
	}
	a, err := h.Svc.Current(r.Context())
	if err != nil {
		writeLoadError(w, err)
		return nil, false
	}
	return a, true
}

func writeLoadError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := appErr.Code
		if code == "" {
			code = common.CodeInternal
		}
		common.JSONError(w, status, code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, err.Error(), nil)
}

// queryID parses an optional integer id parameter; absent means 0.
func queryID(q url.Values, name string) (int64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// posScoped resolves the analysis plus the offer rows narrowed to the
// optional pos query parameter.
func (h *Handler) posScoped(w http.ResponseWriter, r *http.Request) (*Analysis, []pipeline.ClassifiedOffer, bool) {
	a, ok := h.analysis(w, r)
	if !ok {
		return nil, nil, false
	}
	pos, err := queryID(r.URL.Query(), "pos")
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid pos", nil)
		return nil, nil, false
	}
	return a, summary.ForPos(a.Result.Offers, pos), true
}

// Offers lists classified offer rows, filterable by point of sale, order,
// product and classification, paginated.
func (h *Handler) Offers(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analysis(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	pos, err := queryID(q, "pos")
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid pos", nil)
		return
	}
	order, err := queryID(q, "order")
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid order", nil)
		return
	}
	product, err := queryID(q, "product")
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid product", nil)
		return
	}
	var class pipeline.Classification
	if raw := q.Get("classification"); raw != "" {
		class = pipeline.Classification(raw)
		if !class.Valid() {
			common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "unknown classification", nil)
			return
		}
	}

	rows := make([]pipeline.ClassifiedOffer, 0, len(a.Result.Offers))
	for _, o := range a.Result.Offers {
		if pos != 0 && o.PointOfSaleID != pos {
			continue
		}
		if order != 0 && o.OrderID != order {
			continue
		}
		if product != 0 && o.SuperCatalogID != product {
			continue
		}
		if class != "" && o.Classification != class {
			continue
		}
		rows = append(rows, o)
	}

	page, perPage := common.ParsePagination(r, defaultOffersPerPage)
	lo, hi := common.PageBounds(page, perPage, len(rows))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       rows[lo:hi],
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: len(rows)},
	})
}

// Vendors returns the per-vendor savings summary.
func (h *Handler) Vendors(w http.ResponseWriter, r *http.Request) {
	a, offers, ok := h.posScoped(w, r)
	if !ok {
		return
	}
	rows := summary.Vendors(offers, a.Snapshot.Vendors, a.Snapshot.MinPurchases)
	common.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

// Products returns the per-product savings summary plus the best-vendor
// frequency table derived from it.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	_, offers, ok := h.posScoped(w, r)
	if !ok {
		return
	}
	rows := summary.Products(offers)
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"rows":        rows,
		"top_vendors": summary.TopVendors(rows),
	}})
}

// Overview returns the executive savings indicators.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	_, offers, ok := h.posScoped(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": summary.ComputeOverview(offers)})
}

// Recommendations returns switch recommendations above the savings
// threshold, default a 10% fraction of current spend.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	_, offers, ok := h.posScoped(w, r)
	if !ok {
		return
	}
	minPct := summary.DefaultMinSavingsFraction
	if raw := r.URL.Query().Get("min_pct"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.IsNegative() {
			common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid min_pct", nil)
			return
		}
		minPct = parsed
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": summary.Recommendations(offers, minPct)})
}

// ActivationImpact returns the potential of pending and rejected vendors.
func (h *Handler) ActivationImpact(w http.ResponseWriter, r *http.Request) {
	_, offers, ok := h.posScoped(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": summary.ActivationImpact(offers)})
}

type posSummary struct {
	PointOfSaleID  int64           `json:"point_of_sale_id"`
	Zone           string          `json:"geo_zone"`
	Country        string          `json:"country"`
	OrderCount     int             `json:"order_count"`
	MeanOrderValue decimal.Decimal `json:"mean_order_value"`
	TotalSpend     decimal.Decimal `json:"total_spend"`
}

type posDetail struct {
	posSummary
	Vendors []summary.PosVendorTotal `json:"vendors"`
}

// posSummaries joins addresses with order statistics and vendor spend.
// Points of sale appearing in either table are listed, id ascending.
func posSummaries(snap *snapshot.Snapshot) []posSummary {
	byID := make(map[int64]*posSummary)
	ids := make([]int64, 0, len(snap.Addresses))
	get := func(id int64) *posSummary {
		if p, ok := byID[id]; ok {
			return p
		}
		p := &posSummary{PointOfSaleID: id}
		byID[id] = p
		ids = append(ids, id)
		return p
	}
	for _, addr := range snap.Addresses {
		p := get(addr.PointOfSaleID)
		p.Zone = geo.Resolve(addr.Address)
		p.Country = addr.Country
	}
	for _, st := range summary.OrderStats(snap.Orders) {
		p := get(st.PointOfSaleID)
		p.OrderCount = st.OrderCount
		p.MeanOrderValue = st.MeanOrderValue
	}
	for _, vt := range summary.PosPurchases(snap.Orders) {
		p := get(vt.PointOfSaleID)
		p.TotalSpend = p.TotalSpend.Add(vt.Total)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]posSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, *byID[id])
	}
	return out
}

// PosList lists every known point of sale with its resolved zone and
// purchase statistics.
func (h *Handler) PosList(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analysis(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": posSummaries(a.Snapshot)})
}

// PosDetail returns a single point of sale with its per-vendor spend.
func (h *Handler) PosDetail(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analysis(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "posID"), 10, 64)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid point of sale id", nil)
		return
	}
	for _, p := range posSummaries(a.Snapshot) {
		if p.PointOfSaleID != id {
			continue
		}
		detail := posDetail{posSummary: p, Vendors: []summary.PosVendorTotal{}}
		for _, vt := range summary.PosPurchases(a.Snapshot.Orders) {
			if vt.PointOfSaleID == id {
				detail.Vendors = append(detail.Vendors, vt)
			}
		}
		common.JSON(w, http.StatusOK, map[string]any{"data": detail})
		return
	}
	common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "point of sale not found", nil)
}

// Statuses returns the activation status code to label mapping shared by
// every summary view.
func (h *Handler) Statuses(w http.ResponseWriter, r *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{"data": relations.Labels()})
}

type snapshotInfo struct {
	Fingerprint string             `json:"fingerprint"`
	RunID       uuid.UUID          `json:"run_id"`
	ComputedAt  time.Time          `json:"computed_at"`
	Rows        map[string]int     `json:"rows"`
	Offers      int                `json:"offers"`
	Warnings    []snapshot.Warning `json:"warnings"`
}

func snapshotPayload(a *Analysis) snapshotInfo {
	info := snapshotInfo{
		Fingerprint: a.Snapshot.Fingerprint,
		RunID:       a.Result.RunID,
		ComputedAt:  a.Result.ComputedAt,
		Rows:        a.Snapshot.Counts(),
		Offers:      len(a.Result.Offers),
		Warnings:    a.Result.Warnings,
	}
	if info.Warnings == nil {
		info.Warnings = []snapshot.Warning{}
	}
	return info
}

// SnapshotInfo reports the provenance of the resident analysis.
func (h *Handler) SnapshotInfo(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analysis(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": snapshotPayload(a)})
}

// ReloadSnapshot forces a fresh read of the input directory and returns
// the provenance of the analysis now resident.
func (h *Handler) ReloadSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "analytics service not configured", nil)
		return
	}
	a, err := h.Svc.Reload(r.Context())
	if err != nil {
		writeLoadError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": snapshotPayload(a)})
}
