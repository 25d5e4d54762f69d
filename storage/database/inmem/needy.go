package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/haid/charityconnect/core"
	"github.com/haid/charityconnect/core/needy"
)

type needyRepository struct {
	db *DB
}

var _ needy.Repository = (*needyRepository)(nil)

func NewNeedyRepository(db *DB) needy.Repository {
	return &needyRepository{db: db}
}

func clonePerson(p *needy.Person) needy.Person {
	c := *p
	c.Needs = append([]string(nil), p.Needs...)
	return c
}

func (repo *needyRepository) CreatePerson(_ context.Context, p needy.Person) (needy.Person, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored := clonePerson(&p)
	repo.db.needyPersons[p.ID] = &stored
	return clonePerson(&stored), nil
}

func matchesPerson(p *needy.Person, filter needy.QueryFilter) bool {
	if filter.Status != "" && p.Status != filter.Status {
		return false
	}
	if filter.Verified != nil && p.Verified != *filter.Verified {
		return false
	}
	if filter.City != "" && !strings.EqualFold(p.City, filter.City) {
		return false
	}
	if filter.Search != "" &&
		!(containsFold(p.Name, filter.Search) || containsFold(p.City, filter.Search) || containsFold(p.Situation, filter.Search)) {
		return false
	}
	return true
}

// comparePersons returns -1, 0 or 1 comparing a & b on `field`.
func comparePersons(a, b needy.Person, field string) int {
	cmpStr := func(x, y string) int { return strings.Compare(strings.ToLower(x), strings.ToLower(y)) }
	switch field {
	case "name":
		return cmpStr(a.Name, b.Name)
	case "city":
		return cmpStr(a.City, b.City)
	case "status":
		return strings.Compare(a.Status, b.Status)
	case "age":
		switch {
		case a.Age < b.Age:
			return -1
		case a.Age > b.Age:
			return 1
		}
	case "created_at":
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
	}
	return 0
}

func (repo *needyRepository) QueryPersons(_ context.Context, filter needy.QueryFilter, ordering ...core.DBOrdering) ([]needy.Person, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	persons := make([]needy.Person, 0, len(repo.db.needyPersons))
	for _, p := range repo.db.needyPersons {
		if filter.IsEmpty() || matchesPerson(p, filter) {
			persons = append(persons, clonePerson(p))
		}
	}

	sort.Slice(persons, func(i, j int) bool {
		for _, ord := range ordering {
			if c := comparePersons(persons[i], persons[j], ord.Field); c != 0 {
				if ord.Ascending {
					return c < 0
				}
				return c > 0
			}
		}
		return newerFirst(persons[i].CreatedAt, persons[j].CreatedAt, persons[i].ID, persons[j].ID)
	})
	return persons, nil
}

func (repo *needyRepository) QueryAllPersons(ctx context.Context) ([]needy.Person, error) {
	return repo.QueryPersons(ctx, needy.QueryFilter{})
}

func (repo *needyRepository) GetPerson(_ context.Context, id string) (needy.Person, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.needyPersons[id]; ok {
		return clonePerson(p), nil
	}
	return needy.Person{}, needy.ErrNotFound
}

func (repo *needyRepository) UpdatePersonStatus(_ context.Context, id string, verified bool, status string) (needy.Person, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	p, ok := repo.db.needyPersons[id]
	if !ok {
		return needy.Person{}, needy.ErrNotFound
	}
	p.Verified = verified
	p.Status = status
	return clonePerson(p), nil
}
