package analytics

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/haid/charityconnect/core/donor"
	"github.com/haid/charityconnect/core/needy"
)

type Service struct {
	donorRepo donor.Repository
	needyRepo needy.Repository
	loc       *time.Location
	NowFunc   func() time.Time
}

func NewService(donorRepo donor.Repository, needyRepo needy.Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		donorRepo: donorRepo,
		needyRepo: needyRepo,
		loc:       loc,
		NowFunc:   time.Now,
	}
}

// TakeSnapshot reads the current content of every store.
func (svc *Service) TakeSnapshot(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)

	if snap.Donors, err = svc.donorRepo.QueryDonors(ctx); err != nil {
		return Snapshot{}, errors.Wrap(err, "querying donors")
	}

	items, err := svc.donorRepo.QueryItemDonations(ctx, donor.DonationFilter{})
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "querying item donations")
	}
	snap.ItemDonations = make([]donor.ItemDonation, 0, len(items))
	for _, it := range items {
		snap.ItemDonations = append(snap.ItemDonations, it.ItemDonation)
	}

	monetary, err := svc.donorRepo.QueryMonetaryDonations(ctx, donor.DonationFilter{})
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "querying monetary donations")
	}
	snap.MonetaryDonations = make([]donor.MonetaryDonation, 0, len(monetary))
	for _, md := range monetary {
		snap.MonetaryDonations = append(snap.MonetaryDonations, md.MonetaryDonation)
	}

	if snap.NeedyPersons, err = svc.needyRepo.QueryAllPersons(ctx); err != nil {
		return Snapshot{}, errors.Wrap(err, "querying needy persons")
	}
	return snap, nil
}

// Summarize recomputes the Summary from the current content of the stores.
func (svc *Service) Summarize(ctx context.Context) (Summary, error) {
	snap, err := svc.TakeSnapshot(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Compute(snap, svc.NowFunc().In(svc.loc)), nil
}
