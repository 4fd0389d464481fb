package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-chat-go/internal/footprint"
	"carbon-chat-go/internal/model"
)

type memFootprintRepo struct {
	records []model.FootprintRecord
	err     error
}

func (m *memFootprintRepo) Create(record *model.FootprintRecord) error {
	m.records = append(m.records, *record)
	return m.err
}

func (m *memFootprintRepo) FindBySessionID(sessionID string) ([]model.FootprintRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.FootprintRecord
	for _, r := range m.records {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestFootprintEstimate(t *testing.T) {
	svc := NewFootprintService(&memFootprintRepo{})

	e, err := svc.Estimate(" Flight ", 1000)
	require.NoError(t, err)
	assert.Equal(t, footprint.Flight, e.Activity)
	assert.Equal(t, 200.0, e.KgCO2)
	assert.Equal(t, footprint.Kilometer, e.Unit)

	_, err = svc.Estimate("rocket", 1)
	assert.ErrorIs(t, err, ErrUnknownActivity)

	for _, q := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err = svc.Estimate("car", q)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestFootprintActivities(t *testing.T) {
	got := NewFootprintService(&memFootprintRepo{}).Activities()
	require.Len(t, got, len(footprint.Activities()))
	assert.Equal(t, footprint.Car, got[0].Activity)
	assert.Equal(t, 0.2, got[0].Factor)
	assert.Equal(t, footprint.Car.Tip(), got[0].Tip)
}

func TestFootprintRecords(t *testing.T) {
	repo := &memFootprintRepo{records: []model.FootprintRecord{
		{SessionID: "s1", Activity: "flight", Quantity: 500, Unit: "km", KgCO2: 100},
		{SessionID: "s1", Activity: "car", Quantity: 250, Unit: "km", KgCO2: 50},
		{SessionID: "s2", Activity: "meat", Quantity: 1, Unit: "kg", KgCO2: 6},
	}}
	svc := NewFootprintService(repo)

	sum, err := svc.Records(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, sum.Records, 2)
	assert.Equal(t, 150.0, sum.TotalKgCO2)
	assert.False(t, sum.Equivalency.IsEmpty)
	assert.Equal(t, "Equivalent to driving ~781 miles or charging ~18,248 smartphones", sum.Equivalency.DisplayText)

	empty, err := svc.Records(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty.Records)
	assert.Zero(t, empty.TotalKgCO2)
	assert.True(t, empty.Equivalency.IsEmpty)
}

func TestFootprintRecordsRepoError(t *testing.T) {
	svc := NewFootprintService(&memFootprintRepo{err: errors.New("db down")})
	_, err := svc.Records(context.Background(), "s1")
	assert.Error(t, err)
}
