package catalog

import (
	"errors"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	if r.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", r.Len())
	}

	s, ok := r.Lookup("sat-003")
	if !ok {
		t.Fatal("Lookup(sat-003) not found")
	}
	if s.Name != "CommRelay-7" || s.Status != StatusWarning {
		t.Errorf("Lookup(sat-003) = %+v", s)
	}

	if _, ok := r.Lookup("sat-999"); ok {
		t.Error("Lookup(sat-999) found a record")
	}
}

func TestRegistryPreservesOrder(t *testing.T) {
	all := Default().All()
	for i, want := range []string{"sat-001", "sat-002", "sat-003", "sat-004", "sat-005"} {
		if all[i].ID != want {
			t.Errorf("All()[%d].ID = %s, want %s", i, all[i].ID, want)
		}
	}
}

func TestRegistryAllIsCopy(t *testing.T) {
	r := Default()
	all := r.All()
	all[0].Name = "mutated"

	s, _ := r.Lookup("sat-001")
	if s.Name != "GlobalSat-1" {
		t.Errorf("registry record changed through All(): %q", s.Name)
	}
}

func TestNewRegistryRejectsBadIDs(t *testing.T) {
	tests := []struct {
		name string
		sats []Satellite
		want error
	}{
		{"missing", []Satellite{{ID: "a"}, {ID: " "}}, ErrMissingID},
		{"duplicate", []Satellite{{ID: "a"}, {ID: "b"}, {ID: "a"}}, ErrDuplicateID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.sats)
			if !errors.Is(err, tt.want) {
				t.Fatalf("NewRegistry() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMustRegistryPanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustRegistry did not panic on duplicate id")
		}
	}()
	MustRegistry([]Satellite{{ID: "x"}, {ID: "x"}})
}

func TestByName(t *testing.T) {
	s, ok := Default().ByName("oceanmonitor-3")
	if !ok || s.ID != "sat-002" {
		t.Errorf("ByName(oceanmonitor-3) = %+v, %v", s, ok)
	}
}

func TestExtend(t *testing.T) {
	r, err := Default().Extend([]Satellite{{ID: "tle-25544", Name: "ISS"}})
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}
	if r.Len() != 6 {
		t.Errorf("Len() = %d, want 6", r.Len())
	}

	if _, err := Default().Extend([]Satellite{{ID: "sat-001"}}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Extend() with clashing id error = %v, want ErrDuplicateID", err)
	}
}
