package analytics

import (
	"sort"
	"time"

	"github.com/haid/charityconnect/core"
	"github.com/haid/charityconnect/core/donor"
	"github.com/haid/charityconnect/core/needy"
)

// TrendMonths is the number of calendar months covered by Summary.MonthlyTrend.
const TrendMonths = 6

type (
	// Snapshot is the current content of every store the Summary is computed from.
	Snapshot struct {
		Donors            []donor.Donor
		ItemDonations     []donor.ItemDonation
		MonetaryDonations []donor.MonetaryDonation
		NeedyPersons      []needy.Person
	}

	MonthTrend struct {
		Month  string  `json:"month"`
		Count  int     `json:"count"`
		Amount float64 `json:"amount"`
	}

	CategoryCount struct {
		Category string `json:"category"`
		Count    int    `json:"count"`
	}

	RegionCount struct {
		Region string `json:"region"`
		Count  int    `json:"count"`
	}

	Summary struct {
		TotalDonations      int             `json:"totalDonations"`
		TotalMonetaryAmount float64         `json:"totalMonetaryAmount"`
		TotalItemDonations  int             `json:"totalItemDonations"`
		PeopleHelped        int             `json:"peopleHelped"`
		ActiveCases         int             `json:"activeCases"`
		MonthlyTrend        []MonthTrend    `json:"monthlyTrend"`
		DonationsByCategory []CategoryCount `json:"donationsByCategory"`
		NeedsByCategory     []CategoryCount `json:"needsByCategory"`
		DonationsByRegion   []RegionCount   `json:"donationsByRegion"`
	}
)

// Compute aggregates `snap`. It only depends on its arguments.
// Calendar months are evaluated in the location of `now`.
func Compute(snap Snapshot, now time.Time) Summary {
	s := Summary{
		TotalDonations:     len(snap.ItemDonations) + len(snap.MonetaryDonations),
		TotalItemDonations: len(snap.ItemDonations),
	}

	for _, md := range snap.MonetaryDonations {
		if md.Status == donor.MoneyCompleted {
			s.TotalMonetaryAmount += core.ParseAmount(md.Amount)
		}
	}

	// peopleHelped counts verified persons, whatever their status
	for _, p := range snap.NeedyPersons {
		if p.Verified {
			s.PeopleHelped++
		}
		if p.Status == needy.StatusPending {
			s.ActiveCases++
		}
	}

	s.MonthlyTrend = monthlyTrend(snap, now)

	categories := make(map[string]int)
	for _, it := range snap.ItemDonations {
		categories[it.Category]++
	}
	s.DonationsByCategory = sortedCounts(categories)

	needs := make(map[string]int)
	for _, p := range snap.NeedyPersons {
		for _, need := range p.Needs {
			needs[need]++
		}
	}
	s.NeedsByCategory = sortedCounts(needs)

	regions := make(map[string]int)
	for _, d := range snap.Donors {
		if d.City.Valid && d.City.String != "" {
			regions[d.City.String]++
		}
	}
	s.DonationsByRegion = make([]RegionCount, 0, len(regions))
	for _, c := range sortedCounts(regions) {
		s.DonationsByRegion = append(s.DonationsByRegion, RegionCount{Region: c.Category, Count: c.Count})
	}

	return s
}

type monthKey struct {
	year  int
	month time.Month
}

func keyOf(t time.Time, loc *time.Location) monthKey {
	t = t.In(loc)
	return monthKey{year: t.Year(), month: t.Month()}
}

// monthlyTrend buckets donations into the trailing calendar months, oldest first, current month last.
func monthlyTrend(snap Snapshot, now time.Time) []MonthTrend {
	loc := now.Location()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	trend := make([]MonthTrend, TrendMonths)
	index := make(map[monthKey]int, TrendMonths)
	for i := 0; i < TrendMonths; i++ {
		m := first.AddDate(0, i-(TrendMonths-1), 0)
		trend[i] = MonthTrend{Month: m.Format("Jan")}
		index[monthKey{year: m.Year(), month: m.Month()}] = i
	}

	for _, it := range snap.ItemDonations {
		if i, ok := index[keyOf(it.CreatedAt, loc)]; ok {
			trend[i].Count++
		}
	}
	for _, md := range snap.MonetaryDonations {
		i, ok := index[keyOf(md.CreatedAt, loc)]
		if !ok {
			continue
		}
		trend[i].Count++
		if md.Status == donor.MoneyCompleted {
			trend[i].Amount += core.ParseAmount(md.Amount)
		}
	}
	return trend
}

// sortedCounts orders groups by count desc, then key asc.
func sortedCounts(counts map[string]int) []CategoryCount {
	res := make([]CategoryCount, 0, len(counts))
	for k, c := range counts {
		res = append(res, CategoryCount{Category: k, Count: c})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Count != res[j].Count {
			return res[i].Count > res[j].Count
		}
		return res[i].Category < res[j].Category
	})
	return res
}
