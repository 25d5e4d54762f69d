package needy

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{from: StatusPending, to: StatusPending, want: true},
		{from: StatusPending, to: StatusVerified, want: true},
		{from: StatusPending, to: StatusRejected, want: true},
		{from: StatusPending, to: StatusHelped},
		{from: StatusVerified, to: StatusVerified, want: true},
		{from: StatusVerified, to: StatusHelped, want: true},
		{from: StatusVerified, to: StatusPending, want: true},
		{from: StatusVerified, to: StatusRejected},
		{from: StatusHelped, to: StatusVerified, want: true},
		{from: StatusHelped, to: StatusRejected},
		{from: StatusHelped, to: StatusPending},
		{from: StatusRejected, to: StatusPending, want: true},
		{from: StatusRejected, to: StatusVerified},
		{from: "lol", to: StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueryFilter_Clean(t *testing.T) {
	qf := QueryFilter{Status: " Verified ", City: " Pune ", Search: "  lak "}
	qf.Clean()
	want := QueryFilter{Status: "verified", City: "Pune", Search: "lak"}
	if qf.Status != want.Status || qf.City != want.City || qf.Search != want.Search {
		t.Errorf("Clean() = %+v, want %+v", qf, want)
	}
	if qf.IsEmpty() {
		t.Error("IsEmpty() = true, want false")
	}
	if !(&QueryFilter{}).IsEmpty() {
		t.Error("IsEmpty() = false, want true")
	}
}
