package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Billy-Davies-2/blt-leagues/internal/models"
)

// LeagueDAL is a testify mock of dal.LeagueDAL
type LeagueDAL struct {
	mock.Mock
}

func (d *LeagueDAL) ListLeagues(ctx context.Context) ([]models.League, error) {
	args := d.Called(ctx)

	var res []models.League
	if args.Get(0) != nil {
		res = args.Get(0).([]models.League)
	}

	return res, args.Error(1)
}

func (d *LeagueDAL) GetLeague(ctx context.Context, id string) (*models.League, error) {
	args := d.Called(ctx, id)

	var l *models.League
	if args.Get(0) != nil {
		// hand out a copy so callers cannot mutate the fixture
		c := args.Get(0).(*models.League).Clone()
		l = &c
	}

	return l, args.Error(1)
}

func (d *LeagueDAL) GetLeagueByCode(ctx context.Context, code string) (*models.League, error) {
	args := d.Called(ctx, code)

	var l *models.League
	if args.Get(0) != nil {
		c := args.Get(0).(*models.League).Clone()
		l = &c
	}

	return l, args.Error(1)
}

func (d *LeagueDAL) CreateLeague(ctx context.Context, league *models.League) error {
	args := d.Called(ctx, league)
	if args.Error(0) == nil {
		league.Version = 1
	}
	return args.Error(0)
}

func (d *LeagueDAL) SaveLeague(ctx context.Context, league *models.League, expectedVersion int64) error {
	args := d.Called(ctx, league, expectedVersion)
	if args.Error(0) == nil {
		league.Version = expectedVersion + 1
	}
	return args.Error(0)
}

func (d *LeagueDAL) Ping(ctx context.Context) error {
	args := d.Called(ctx)
	return args.Error(0)
}

func (d *LeagueDAL) Close() error {
	args := d.Called()
	return args.Error(0)
}
