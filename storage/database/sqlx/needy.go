package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/haid/charityconnect/core"
	"github.com/haid/charityconnect/core/needy"
)

const personColumns = `id, name, age, gender, phone, family_size, address, city, state, pincode, needs,
	situation, income, reporter_name, reporter_phone, reporter_email, reporter_relationship,
	verified, status, created_at`

var personOrderingColumns = map[string]string{
	"created_at": "created_at",
	"name":       "LOWER(name)",
	"age":        "age",
	"city":       "LOWER(city)",
	"status":     "status",
}

// personRow maps the TEXT[] needs column.
type personRow struct {
	needy.Person
	Needs pq.StringArray `db:"needs"`
}

func toPersonRow(p needy.Person) personRow {
	return personRow{Person: p, Needs: pq.StringArray(p.Needs)}
}

func (r personRow) toPerson() needy.Person {
	p := r.Person
	p.Needs = []string(r.Needs)
	if p.Needs == nil {
		p.Needs = []string{}
	}
	return p
}

func toPersons(rows []personRow) []needy.Person {
	persons := make([]needy.Person, 0, len(rows))
	for _, r := range rows {
		persons = append(persons, r.toPerson())
	}
	return persons
}

type needyRepository struct {
	db core.DB
}

var _ needy.Repository = (*needyRepository)(nil) // interface compliance check

func NewNeedyRepository(db core.DB) needy.Repository {
	return &needyRepository{db: db}
}

func (repo *needyRepository) CreatePerson(ctx context.Context, p needy.Person) (needy.Person, error) {
	_, err := sqlx.NamedExecContext(ctx, repo.db, `
		INSERT INTO needy_persons (`+personColumns+`)
		VALUES (:id, :name, :age, :gender, :phone, :family_size, :address, :city, :state, :pincode, :needs,
			:situation, :income, :reporter_name, :reporter_phone, :reporter_email, :reporter_relationship,
			:verified, :status, :created_at)`, toPersonRow(p))
	if err != nil {
		return needy.Person{}, errors.Wrap(err, "inserting needy person")
	}
	return p, nil
}

func (repo *needyRepository) QueryPersons(ctx context.Context, filter needy.QueryFilter, ordering ...core.DBOrdering) ([]needy.Person, error) {
	var w where
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.Verified != nil {
		w.add("verified = ?", *filter.Verified)
	}
	if filter.City != "" {
		w.add("city ILIKE ?", filter.City)
	}
	// persons with Name, City or Situation matching the search keyword
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		w.add("name ILIKE ? OR city ILIKE ? OR situation ILIKE ?", val, val, val)
	}

	q := `SELECT ` + personColumns + ` FROM needy_persons` + w.String() +
		orderBy(ordering, personOrderingColumns, "created_at DESC, id")

	var rows []personRow
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying needy persons")
	}
	return toPersons(rows), nil
}

func (repo *needyRepository) QueryAllPersons(ctx context.Context) ([]needy.Person, error) {
	return repo.QueryPersons(ctx, needy.QueryFilter{})
}

func (repo *needyRepository) GetPerson(ctx context.Context, id string) (needy.Person, error) {
	var r personRow
	if err := repo.db.GetContext(ctx, &r, `SELECT `+personColumns+` FROM needy_persons WHERE id = $1`, id); err != nil {
		return needy.Person{}, trapNoRowsErr(err, needy.ErrNotFound, "getting needy person")
	}
	return r.toPerson(), nil
}

func (repo *needyRepository) UpdatePersonStatus(ctx context.Context, id string, verified bool, status string) (needy.Person, error) {
	var r personRow
	err := repo.db.GetContext(ctx, &r,
		`UPDATE needy_persons SET verified = $2, status = $3 WHERE id = $1 RETURNING `+personColumns,
		id, verified, status)
	if err != nil {
		return needy.Person{}, trapNoRowsErr(err, needy.ErrNotFound, "updating needy person status")
	}
	return r.toPerson(), nil
}
