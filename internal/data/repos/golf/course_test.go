package golf

import (
	"context"
	"testing"

	"github.com/yungbote/caddie-backend/internal/data/repos/testutil"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
)

func TestCourseRepoSearchAndTee(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	testutil.SeedCourse(t, ctx, db, "Pebble Creek", 9)
	seeded := testutil.SeedCourse(t, ctx, db, "Augusta Pines", 18)
	repo := NewCourseRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	found, err := repo.SearchByName(dbc, "PEBBLE", 10)
	if err != nil {
		t.Fatalf("SearchByName: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Pebble Creek" {
		t.Fatalf("SearchByName: unexpected %+v", found)
	}
	if len(found[0].Tees) != 1 || len(found[0].Tees[0].Holes) != 9 {
		t.Fatalf("SearchByName: expected tees with holes preloaded")
	}

	all, err := repo.SearchByName(dbc, "", 10)
	if err != nil || len(all) != 2 || all[0].Name != "Augusta Pines" {
		t.Fatalf("SearchByName empty query: len=%d err=%v", len(all), err)
	}

	tee, err := repo.GetTee(dbc, seeded.Tees[0].ID)
	if err != nil || tee == nil {
		t.Fatalf("GetTee: tee=%v err=%v", tee, err)
	}
	if len(tee.Holes) != 18 || tee.Holes[0].HoleNumber != 1 || tee.Holes[17].HoleNumber != 18 {
		t.Fatalf("GetTee: holes not ordered")
	}

	byName, err := repo.GetByName(dbc, "augusta pines")
	if err != nil || byName == nil || byName.ID != seeded.ID {
		t.Fatalf("GetByName: got=%v err=%v", byName, err)
	}
}
