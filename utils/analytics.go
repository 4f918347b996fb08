package utils

import (
	"sort"

	"github.com/google/uuid"
	"p9e.in/transportpro/models"
)

// Totals are the whole-selection aggregates.
type Totals struct {
	Entries int     `json:"entries"`
	Cft     float64 `json:"cft"`
	Cost    float64 `json:"cost"`
	Cash    float64 `json:"cash"`
	Upi     float64 `json:"upi"`
}

// BranchStat aggregates entries of one branch.
type BranchStat struct {
	BranchID   string  `json:"branchId"`
	BranchName string  `json:"branchName"`
	Entries    int     `json:"entries"`
	Cft        float64 `json:"cft"`
	Cost       float64 `json:"cost"`
}

// NoVendorBucket collects entries carrying no vendor label at all.
const NoVendorBucket = "No Vendor"

// VendorStat aggregates entries by vendor. The CO vendor wins over
// the 1st-trip vendor label; unlabeled entries share one bucket.
type VendorStat struct {
	Vendor  string  `json:"vendor"`
	Entries int     `json:"entries"`
	Cost    float64 `json:"cost"`
}

// Analytics is the full report computed over a visible entry set.
type Analytics struct {
	Totals           Totals         `json:"totals"`
	Branches         []BranchStat   `json:"branches"`
	Vendors          []VendorStat   `json:"vendors"`
	TripDistribution map[string]int `json:"tripDistribution"`
	PaymentSplit     struct {
		Cash float64 `json:"cash"`
		Upi  float64 `json:"upi"`
	} `json:"paymentSplit"`
	COStatusCounts map[string]int `json:"coStatusCounts"`
}

// ComputeAnalytics reduces a set of entries into report aggregates.
// Pure over its inputs; branchNames maps branch IDs to display names
// and tolerates missing keys.
func ComputeAnalytics(entries []models.Entry, branchNames map[uuid.UUID]string) Analytics {
	a := Analytics{
		TripDistribution: map[string]int{},
		COStatusCounts: map[string]int{
			models.COStatusPending:  0,
			models.COStatusApplied:  0,
			models.COStatusUploaded: 0,
		},
	}

	byBranch := map[uuid.UUID]*BranchStat{}
	byVendor := map[string]*VendorStat{}

	for i := range entries {
		e := &entries[i]

		a.Totals.Entries++
		a.Totals.Cft += e.Cft
		a.Totals.Cost += e.Cost
		a.Totals.Cash += e.Cash
		a.Totals.Upi += e.Upi

		bs, ok := byBranch[e.BranchID]
		if !ok {
			bs = &BranchStat{BranchID: e.BranchID.String(), BranchName: branchNames[e.BranchID]}
			byBranch[e.BranchID] = bs
		}
		bs.Entries++
		bs.Cft += e.Cft
		bs.Cost += e.Cost

		vendor := e.COVendor
		if vendor == "" {
			vendor = e.Vendor
		}
		if vendor == "" {
			vendor = NoVendorBucket
		}
		vs, ok := byVendor[vendor]
		if !ok {
			vs = &VendorStat{Vendor: vendor}
			byVendor[vendor] = vs
		}
		vs.Entries++
		vs.Cost += e.Cost

		a.TripDistribution[e.Trip]++
		a.COStatusCounts[e.COStatus()]++
	}

	a.PaymentSplit.Cash = a.Totals.Cash
	a.PaymentSplit.Upi = a.Totals.Upi

	a.Branches = make([]BranchStat, 0, len(byBranch))
	for _, bs := range byBranch {
		a.Branches = append(a.Branches, *bs)
	}
	sort.Slice(a.Branches, func(i, j int) bool {
		return a.Branches[i].BranchName < a.Branches[j].BranchName
	})

	a.Vendors = make([]VendorStat, 0, len(byVendor))
	for _, vs := range byVendor {
		a.Vendors = append(a.Vendors, *vs)
	}
	sort.Slice(a.Vendors, func(i, j int) bool {
		return a.Vendors[i].Vendor < a.Vendors[j].Vendor
	})

	return a
}
