package seed

import (
	"testing"
	"time"

	"github.com/hitoshi/formdeck/internal/model"
)

func TestForms_ParsesAndValidates(t *testing.T) {
	forms, err := Forms()
	if err != nil {
		t.Fatalf("Forms failed: %v", err)
	}
	if len(forms) == 0 {
		t.Fatal("seed dataset is empty")
	}

	seen := make(map[int]bool)
	for _, f := range forms {
		if f.ID <= 0 {
			t.Errorf("form %q has non-positive id %d", f.Title, f.ID)
		}
		if seen[f.ID] {
			t.Errorf("duplicate seed id %d", f.ID)
		}
		seen[f.ID] = true

		if !model.ValidFormStatus(f.Status) {
			t.Errorf("form %d has invalid status %q", f.ID, f.Status)
		}
		if _, err := time.Parse(time.RFC3339, f.CreatedAt); err != nil {
			t.Errorf("form %d has unparseable createdAt %q", f.ID, f.CreatedAt)
		}
		if _, err := time.Parse(time.RFC3339, f.UpdatedAt); err != nil {
			t.Errorf("form %d has unparseable updatedAt %q", f.ID, f.UpdatedAt)
		}
	}
}

func TestForms_ReturnsFreshSliceEachCall(t *testing.T) {
	a, err := Forms()
	if err != nil {
		t.Fatalf("Forms failed: %v", err)
	}
	b, err := Forms()
	if err != nil {
		t.Fatalf("Forms failed: %v", err)
	}

	a[0].Title = "mutated"
	if b[0].Title == "mutated" {
		t.Error("Forms should return an independent slice on every call")
	}
}

func TestUsers_ContainsAdminAndIndividual(t *testing.T) {
	users, err := Users()
	if err != nil {
		t.Fatalf("Users failed: %v", err)
	}

	var hasAdmin, hasIndividual bool
	for _, u := range users {
		switch u.Role {
		case model.RoleAdmin:
			hasAdmin = true
		case model.RoleIndividual:
			hasIndividual = true
		}
	}

	if !hasAdmin {
		t.Error("user directory has no admin user")
	}
	if !hasIndividual {
		t.Error("user directory has no individual user")
	}
}
