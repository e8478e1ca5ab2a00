package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sportsfest/registration-system/models"
)

func newExportFixture(t *testing.T) (*participantFixture, ExportService) {
	t.Helper()
	f := newParticipantFixture(t)
	svc := NewExportService(
		f.svc,
		NewSportService(f.sportRepo, nil),
		NewCommunityService(f.communityRepo, nil),
	)
	return f, svc
}

func TestExportParticipantsCSV(t *testing.T) {
	ctx := context.Background()
	f, svc := newExportFixture(t)

	team := "Riverside A"
	input := validRegistration()
	input.TeamName = &team
	input.NextOfKin = &models.NextOfKin{Name: "Ravi Nair", Phone: "+910000000000"}
	_, err := f.svc.Create(ctx, input)
	require.NoError(t, err)

	data, contentType, err := svc.ExportParticipants(ctx, Scope{Role: models.RoleAdmin}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeader, records[0])

	row := records[1]
	assert.Equal(t, "Asha", row[1])
	assert.Equal(t, "1995-03-12", row[4])
	assert.Equal(t, "Riverside", row[7])
	assert.Equal(t, string(models.ParticipantPending), row[8])
	assert.Equal(t, "100m, Chess", row[9])
	assert.Equal(t, "Riverside A", row[10])
	assert.Equal(t, "Ravi Nair", row[11])
}

func TestExportParticipantsScoped(t *testing.T) {
	ctx := context.Background()
	f, svc := newExportFixture(t)

	_, err := f.svc.Create(ctx, validRegistration())
	require.NoError(t, err)

	other := validRegistration()
	other.Email = "ben@example.com"
	other.CommunityID = 2
	_, err = f.svc.Create(ctx, other)
	require.NoError(t, err)

	scope := Scope{Role: models.RoleCommunityAdmin, CommunityID: intPtr(2)}
	data, _, err := svc.ExportParticipants(ctx, scope, "csv")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ben@example.com", records[1][5])
}

func TestExportParticipantsXLSX(t *testing.T) {
	ctx := context.Background()
	f, svc := newExportFixture(t)

	_, err := f.svc.Create(ctx, validRegistration())
	require.NoError(t, err)

	for _, format := range []string{"excel", "xlsx"} {
		data, contentType, err := svc.ExportParticipants(ctx, Scope{Role: models.RoleAdmin}, format)
		require.NoError(t, err)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", contentType)

		wb, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		rows, err := wb.GetRows("Participants")
		require.NoError(t, err)
		require.NoError(t, wb.Close())

		require.Len(t, rows, 2)
		assert.Equal(t, "Asha", rows[1][1])
	}
}

func TestExportParticipantsFormatValidation(t *testing.T) {
	ctx := context.Background()
	_, svc := newExportFixture(t)

	_, _, err := svc.ExportParticipants(ctx, Scope{Role: models.RoleAdmin}, "pdf")
	assert.ErrorIs(t, err, ErrValidationFailed)
}
