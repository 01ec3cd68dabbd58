package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClubAddListUpdateDelete(t *testing.T) {
	f := newFixture(t)
	svc := NewClubService(f.log, f.clubs)

	created, err := svc.AddMany(f.ctx, []ClubInput{
		{Name: "Driver", DistanceMeter: 230, Preferred: true},
		{Name: " 7 Iron ", DistanceMeter: 140},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "7 Iron", created[1].Name)

	dist := 150
	clubs, err := svc.UpdateByName(f.ctx, "7 Iron", ClubPatch{DistanceMeter: &dist})
	require.NoError(t, err)
	require.Len(t, clubs, 2)
	assert.Equal(t, "Driver", clubs[0].Name)
	assert.Equal(t, 150, clubs[1].DistanceMeter)

	require.NoError(t, svc.DeleteByName(f.ctx, "Driver"))
	clubs, err = svc.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, clubs, 1)

	requireAPIStatus(t, svc.DeleteByName(f.ctx, "Driver"), http.StatusNotFound, "club_not_found")
	_, err = svc.UpdateByName(f.ctx, "Putter", ClubPatch{DistanceMeter: &dist})
	requireAPIStatus(t, err, http.StatusNotFound, "club_not_found")
}

func TestClubAddManyValidates(t *testing.T) {
	f := newFixture(t)
	svc := NewClubService(f.log, f.clubs)

	_, err := svc.AddMany(f.ctx, nil)
	requireAPIStatus(t, err, http.StatusBadRequest, "no_clubs")
	_, err = svc.AddMany(f.ctx, []ClubInput{{Name: "Driver", DistanceMeter: 230}, {Name: "driver", DistanceMeter: 220}})
	requireAPIStatus(t, err, http.StatusBadRequest, "duplicate_club")
	_, err = svc.AddMany(f.ctx, []ClubInput{{Name: "Cannon", DistanceMeter: 450}})
	requireAPIStatus(t, err, http.StatusBadRequest, "invalid_distance")
	_, err = svc.UpdateByName(f.ctx, "Driver", ClubPatch{})
	requireAPIStatus(t, err, http.StatusBadRequest, "no_updates")
}
