package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/haid/charityconnect/core"
	"github.com/haid/charityconnect/core/donor"
)

const (
	donorColumns = `id, name, email, phone, address, city, state, pincode, pan, created_at`

	itemColumns = `id, donor_id, category, condition, description, quantity,
		pickup_date, pickup_time_slot, pickup_instructions, status, created_at`

	moneyColumns = `id, donor_id, amount, purpose, message, stripe_payment_intent_id, status, created_at`

	donorFieldsSelect = `dn.name AS donor_name, dn.email AS donor_email, dn.phone AS donor_phone, dn.city AS donor_city`
)

type donorRepository struct {
	db core.DB
}

var _ donor.Repository = (*donorRepository)(nil) // interface compliance check

func NewDonorRepository(db core.DB) donor.Repository {
	return &donorRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err, and ids Postgres cannot parse as UUIDs, to `notFound`
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows || isInvalidTextRepresentation(err) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo *donorRepository) GetOrCreateDonor(ctx context.Context, d donor.Donor) (donor.Donor, error) {
	var res donor.Donor
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO donors (`+donorColumns+`)
			VALUES (:id, :name, :email, :phone, :address, :city, :state, :pincode, :pan, :created_at)
			ON CONFLICT (email) DO NOTHING`, d)
		if err != nil {
			return errors.Wrap(err, "inserting donor")
		}
		err = tx.GetContext(ctx, &res, `SELECT `+donorColumns+` FROM donors WHERE email = $1`, d.Email)
		return errors.Wrap(err, "selecting donor")
	})
	if err != nil {
		return donor.Donor{}, err
	}
	return res, nil
}

func (repo *donorRepository) GetDonorByEmail(ctx context.Context, email string) (donor.Donor, error) {
	var d donor.Donor
	if err := repo.db.GetContext(ctx, &d, `SELECT `+donorColumns+` FROM donors WHERE email = $1`, email); err != nil {
		return donor.Donor{}, trapNoRowsErr(err, donor.ErrDonorNotFound, "getting donor by email")
	}
	return d, nil
}

func (repo *donorRepository) QueryDonors(ctx context.Context) ([]donor.Donor, error) {
	donors := make([]donor.Donor, 0)
	if err := repo.db.SelectContext(ctx, &donors, `SELECT `+donorColumns+` FROM donors ORDER BY created_at DESC, id`); err != nil {
		return nil, errors.Wrap(err, "querying donors")
	}
	return donors, nil
}

func (repo *donorRepository) CreateItemDonation(ctx context.Context, d donor.ItemDonation) (donor.ItemDonation, error) {
	_, err := sqlx.NamedExecContext(ctx, repo.db, `
		INSERT INTO item_donations (`+itemColumns+`)
		VALUES (:id, :donor_id, :category, :condition, :description, :quantity,
			:pickup_date, :pickup_time_slot, :pickup_instructions, :status, :created_at)`, d)
	if err != nil {
		if isForeignKeyViolation(err) {
			return donor.ItemDonation{}, donor.ErrDonorNotFound
		}
		return donor.ItemDonation{}, errors.Wrap(err, "inserting item donation")
	}
	return d, nil
}

func (repo *donorRepository) UpdateItemDonationStatus(ctx context.Context, id, status string) (donor.ItemDonation, error) {
	var d donor.ItemDonation
	err := repo.db.GetContext(ctx, &d,
		`UPDATE item_donations SET status = $2 WHERE id = $1 RETURNING `+itemColumns, id, status)
	if err != nil {
		return donor.ItemDonation{}, trapNoRowsErr(err, donor.ErrItemNotFound, "updating item donation status")
	}
	return d, nil
}

func (repo *donorRepository) QueryItemDonations(ctx context.Context, filter donor.DonationFilter) ([]donor.ItemDonationView, error) {
	var w where
	if filter.DonorID != "" {
		w.add("d.donor_id = ?", filter.DonorID)
	}
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		w.add("d.category ILIKE ? OR d.description ILIKE ?", val, val)
	}

	q := `SELECT d.id, d.donor_id, d.category, d.condition, d.description, d.quantity,
			d.pickup_date, d.pickup_time_slot, d.pickup_instructions, d.status, d.created_at, ` + donorFieldsSelect + `
		FROM item_donations d JOIN donors dn ON dn.id = d.donor_id` + w.String() + `
		ORDER BY d.created_at DESC, d.id`

	views := make([]donor.ItemDonationView, 0)
	if err := repo.db.SelectContext(ctx, &views, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying item donations")
	}
	return views, nil
}

func (repo *donorRepository) CreateMonetaryDonation(ctx context.Context, d donor.MonetaryDonation) (donor.MonetaryDonation, error) {
	q, args, err := repo.db.BindNamed(`
		INSERT INTO monetary_donations (`+moneyColumns+`)
		VALUES (:id, :donor_id, :amount, :purpose, :message, :stripe_payment_intent_id, :status, :created_at)
		RETURNING `+moneyColumns, d)
	if err != nil {
		return donor.MonetaryDonation{}, errors.Wrap(err, "binding monetary donation")
	}

	var res donor.MonetaryDonation
	if err = repo.db.GetContext(ctx, &res, q, args...); err != nil {
		switch {
		case isForeignKeyViolation(err):
			return donor.MonetaryDonation{}, donor.ErrDonorNotFound
		case isUniqueViolation(err, paymentIntentConstraint):
			return donor.MonetaryDonation{}, donor.ErrPaymentAlreadyRecorded
		}
		return donor.MonetaryDonation{}, errors.Wrap(err, "inserting monetary donation")
	}
	return res, nil
}

func (repo *donorRepository) QueryMonetaryDonations(ctx context.Context, filter donor.DonationFilter) ([]donor.MonetaryDonationView, error) {
	var w where
	if filter.DonorID != "" {
		w.add("d.donor_id = ?", filter.DonorID)
	}
	if filter.Search != "" {
		w.add("d.purpose ILIKE ?", "%"+filter.Search+"%")
	}

	q := `SELECT d.id, d.donor_id, d.amount, d.purpose, d.message, d.stripe_payment_intent_id,
			d.status, d.created_at, ` + donorFieldsSelect + `
		FROM monetary_donations d JOIN donors dn ON dn.id = d.donor_id` + w.String() + `
		ORDER BY d.created_at DESC, d.id`

	views := make([]donor.MonetaryDonationView, 0)
	if err := repo.db.SelectContext(ctx, &views, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying monetary donations")
	}
	return views, nil
}
