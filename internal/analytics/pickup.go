package analytics

import (
	"sort"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/kpi"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

// Pickup compares recent against previous on the dates both define. When both datasets come
// from the same snapshot the result lists every date of recent with zero deltas.
func Pickup(recent, previous *domain.ConsolidatedDataset) *domain.ComparisonResult {
	res := &domain.ComparisonResult{
		Kind:           domain.ComparisonPickup,
		RecentSource:   recent.Identity(),
		PreviousSource: previous.Identity(),
		Entries:        []domain.ComparisonEntry{},
	}
	if recent != nil {
		res.Property, res.Year = recent.Property, recent.Year
	}
	if recent.IsEmpty() {
		return res
	}

	if id := recent.Identity(); id != "" && id == previous.Identity() {
		for _, r := range recent.Records {
			res.Entries = append(res.Entries, compareRecords(r, r))
		}
		return res
	}

	prev := previous.ByDate()
	for _, r := range recent.Records {
		p, ok := prev[r.Key()]
		if !ok {
			continue
		}
		res.Entries = append(res.Entries, compareRecords(r, p))
	}
	return res
}

func compareRecords(recent, previous domain.DailyRecord) domain.ComparisonEntry {
	return domain.ComparisonEntry{
		Date:         recent.Date,
		PreviousDate: previous.Date,
		Revenue:      domain.Compare(recent.Revenue, previous.Revenue),
		RoomsSold:    domain.Compare(float64(recent.RoomsSold), float64(previous.RoomsSold)),
		ADR:          domain.Compare(recent.ADR, previous.ADR),
		RevPAR:       domain.Compare(recent.RevPAR, previous.RevPAR),
		OccupancyPct: domain.Compare(recent.OccupancyPct, previous.OccupancyPct),
	}
}

// PickupTotals sums revenue and rooms over all matched dates
func PickupTotals(res *domain.ComparisonResult) domain.ComparisonTotals {
	var recentRev, prevRev, recentRooms, prevRooms float64
	if res != nil {
		for _, e := range res.Entries {
			recentRev += e.Revenue.Recent
			prevRev += e.Revenue.Previous
			recentRooms += e.RoomsSold.Recent
			prevRooms += e.RoomsSold.Previous
		}
	}
	totals := domain.ComparisonTotals{
		Revenue:   domain.Compare(kpi.Round2(recentRev), kpi.Round2(prevRev)),
		RoomsSold: domain.Compare(recentRooms, prevRooms),
	}
	totals.Revenue.Delta = kpi.Round2(totals.Revenue.Delta)
	if res != nil {
		totals.Dates = len(res.Entries)
	}
	return totals
}

// TopMovers returns up to n dates with the largest revenue gain and the largest revenue loss.
// Dates without a change are in neither list.
func TopMovers(res *domain.ComparisonResult, n int) (gainers, losers []domain.ComparisonEntry) {
	if res == nil || n <= 0 {
		return nil, nil
	}
	for _, e := range res.Entries {
		switch {
		case e.Revenue.Delta > 0:
			gainers = append(gainers, e)
		case e.Revenue.Delta < 0:
			losers = append(losers, e)
		}
	}
	sort.SliceStable(gainers, func(i, j int) bool { return gainers[i].Revenue.Delta > gainers[j].Revenue.Delta })
	sort.SliceStable(losers, func(i, j int) bool { return losers[i].Revenue.Delta < losers[j].Revenue.Delta })
	if len(gainers) > n {
		gainers = gainers[:n]
	}
	if len(losers) > n {
		losers = losers[:n]
	}
	return gainers, losers
}
