//go:build !integration

package postgres

import (
	"sync"
	"testing"

	"gorm.io/gorm/schema"
)

// The snapshot row is private to this package, so main cannot list it in
// its domain AutoMigrate call; Migrate must carry it instead. This pins
// the model Migrate hands to gorm: the right table name and the composite
// segment key, so upserts keyed on (adapter_id, geo, ad_format) work on a
// freshly migrated database.
func TestExperimentRowSchema(t *testing.T) {
	s, err := schema.Parse(&floorExperimentRow{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("failed to parse snapshot row schema: %v", err)
	}

	if s.Table != "floor_experiments" {
		t.Fatalf("snapshot table is %q, want floor_experiments", s.Table)
	}

	want := map[string]bool{"adapter_id": true, "geo": true, "ad_format": true}
	if len(s.PrimaryFields) != len(want) {
		t.Fatalf("expected %d primary key columns, got %d", len(want), len(s.PrimaryFields))
	}
	for _, f := range s.PrimaryFields {
		if !want[f.DBName] {
			t.Fatalf("unexpected primary key column %q", f.DBName)
		}
	}
}
