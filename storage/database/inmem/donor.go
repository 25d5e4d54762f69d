package inmemdb

import (
	"context"
	"sort"

	"github.com/haid/charityconnect/core/donor"
)

type donorRepository struct {
	db *DB
}

var _ donor.Repository = (*donorRepository)(nil)

func NewDonorRepository(db *DB) donor.Repository {
	return &donorRepository{db: db}
}

func (repo *donorRepository) GetOrCreateDonor(_ context.Context, d donor.Donor) (donor.Donor, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if id, ok := repo.db.donorsByEmail[d.Email]; ok {
		return *repo.db.donors[id], nil
	}
	repo.db.donors[d.ID] = &d
	repo.db.donorsByEmail[d.Email] = d.ID
	return d, nil
}

func (repo *donorRepository) GetDonorByEmail(_ context.Context, email string) (donor.Donor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if id, ok := repo.db.donorsByEmail[email]; ok {
		return *repo.db.donors[id], nil
	}
	return donor.Donor{}, donor.ErrDonorNotFound
}

func (repo *donorRepository) QueryDonors(context.Context) ([]donor.Donor, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	donors := make([]donor.Donor, 0, len(repo.db.donors))
	for _, d := range repo.db.donors {
		donors = append(donors, *d)
	}
	sort.Slice(donors, func(i, j int) bool {
		return newerFirst(donors[i].CreatedAt, donors[j].CreatedAt, donors[i].ID, donors[j].ID)
	})
	return donors, nil
}

func (repo *donorRepository) CreateItemDonation(_ context.Context, d donor.ItemDonation) (donor.ItemDonation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.donors[d.DonorID]; !ok {
		return donor.ItemDonation{}, donor.ErrDonorNotFound
	}
	repo.db.itemDonations[d.ID] = &d
	return d, nil
}

func (repo *donorRepository) UpdateItemDonationStatus(_ context.Context, id, status string) (donor.ItemDonation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	d, ok := repo.db.itemDonations[id]
	if !ok {
		return donor.ItemDonation{}, donor.ErrItemNotFound
	}
	d.Status = status
	return *d, nil
}

func (repo *donorRepository) donorFields(donorID string) donor.DonorFields {
	if d, ok := repo.db.donors[donorID]; ok {
		return donor.NewDonorFields(*d)
	}
	return donor.DonorFields{}
}

func (repo *donorRepository) QueryItemDonations(_ context.Context, filter donor.DonationFilter) ([]donor.ItemDonationView, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	views := make([]donor.ItemDonationView, 0, len(repo.db.itemDonations))
	for _, d := range repo.db.itemDonations {
		if filter.DonorID != "" && d.DonorID != filter.DonorID {
			continue
		}
		if filter.Search != "" && !(containsFold(d.Category, filter.Search) || containsFold(d.Description, filter.Search)) {
			continue
		}
		views = append(views, donor.ItemDonationView{ItemDonation: *d, DonorFields: repo.donorFields(d.DonorID)})
	}
	sort.Slice(views, func(i, j int) bool {
		return newerFirst(views[i].CreatedAt, views[j].CreatedAt, views[i].ID, views[j].ID)
	})
	return views, nil
}

func (repo *donorRepository) CreateMonetaryDonation(_ context.Context, d donor.MonetaryDonation) (donor.MonetaryDonation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.donors[d.DonorID]; !ok {
		return donor.MonetaryDonation{}, donor.ErrDonorNotFound
	}
	if d.StripePaymentIntentID.Valid {
		for _, other := range repo.db.monetaryDonations {
			if other.StripePaymentIntentID == d.StripePaymentIntentID {
				return donor.MonetaryDonation{}, donor.ErrPaymentAlreadyRecorded
			}
		}
	}
	repo.db.monetaryDonations[d.ID] = &d
	return d, nil
}

func (repo *donorRepository) QueryMonetaryDonations(_ context.Context, filter donor.DonationFilter) ([]donor.MonetaryDonationView, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	views := make([]donor.MonetaryDonationView, 0, len(repo.db.monetaryDonations))
	for _, d := range repo.db.monetaryDonations {
		if filter.DonorID != "" && d.DonorID != filter.DonorID {
			continue
		}
		if filter.Search != "" && !containsFold(d.Purpose, filter.Search) {
			continue
		}
		views = append(views, donor.MonetaryDonationView{MonetaryDonation: *d, DonorFields: repo.donorFields(d.DonorID)})
	}
	sort.Slice(views, func(i, j int) bool {
		return newerFirst(views[i].CreatedAt, views[j].CreatedAt, views[i].ID, views[j].ID)
	})
	return views, nil
}
