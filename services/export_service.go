package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/sportsfest/registration-system/models"
)

var exportHeader = []string{
	"ID", "First Name", "Last Name", "Gender", "Date of Birth", "Email", "Phone",
	"Community", "Status", "Sports", "Team Name", "Next of Kin", "Next of Kin Phone", "Notes",
}

// ExportService renders the caller's visible participants as a CSV file or
// a one-sheet XLSX workbook.
type ExportService interface {
	ExportParticipants(ctx context.Context, scope Scope, format string) (data []byte, contentType string, err error)
}

type exportService struct {
	participantService ParticipantService
	sportService       SportService
	communityService   CommunityService
}

func NewExportService(
	participantService ParticipantService,
	sportService SportService,
	communityService CommunityService,
) ExportService {
	return &exportService{
		participantService: participantService,
		sportService:       sportService,
		communityService:   communityService,
	}
}

func (s *exportService) ExportParticipants(ctx context.Context, scope Scope, format string) ([]byte, string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "csv" && format != "excel" && format != "xlsx" {
		return nil, "", fmt.Errorf("%w: unsupported export format %q", ErrValidationFailed, format)
	}

	participants, err := s.participantService.List(ctx, scope, nil)
	if err != nil {
		return nil, "", err
	}

	sportNames, err := s.sportNameIndex(ctx)
	if err != nil {
		return nil, "", err
	}
	communityNames, err := s.communityNameIndex(ctx)
	if err != nil {
		return nil, "", err
	}

	rows := make([][]string, 0, len(participants)+1)
	rows = append(rows, exportHeader)
	for _, p := range participants {
		rows = append(rows, exportRow(p, sportNames, communityNames))
	}

	if format == "csv" {
		data, err := renderCSV(rows)
		return data, "text/csv", err
	}
	data, err := renderXLSX(rows)
	return data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
}

func (s *exportService) sportNameIndex(ctx context.Context) (map[int]string, error) {
	sports, err := s.sportService.GetAllSports(ctx, false)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(sports))
	for _, sp := range sports {
		names[sp.ID] = sp.Name
	}
	return names, nil
}

func (s *exportService) communityNameIndex(ctx context.Context) (map[int]string, error) {
	communities, err := s.communityService.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(communities))
	for _, c := range communities {
		names[c.ID] = c.Name
	}
	return names, nil
}

func exportRow(p models.Participant, sportNames, communityNames map[int]string) []string {
	sports := make([]string, 0, len(p.Sports))
	for _, sel := range p.Sports {
		name := sportNames[sel.SportID]
		if name == "" {
			name = strconv.Itoa(sel.SportID)
		}
		sports = append(sports, name)
	}

	var kinName, kinPhone string
	if p.NextOfKin != nil {
		kinName = p.NextOfKin.Name
		kinPhone = p.NextOfKin.Phone
	}
	return []string{
		strconv.Itoa(p.ID),
		p.FirstName,
		p.LastName,
		p.Gender,
		p.DateOfBirth.Format("2006-01-02"),
		p.Email,
		p.Phone,
		communityNames[p.CommunityID],
		string(p.Status),
		strings.Join(sports, ", "),
		stringOrEmpty(p.TeamName),
		kinName,
		kinPhone,
		stringOrEmpty(p.Notes),
	}
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func renderCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func renderXLSX(rows [][]string) ([]byte, error) {
	wb := excelize.NewFile()
	defer wb.Close()

	sheet := "Participants"
	wb.SetSheetName(wb.GetSheetName(0), sheet)

	widths := make([]int, 0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write xlsx row: %w", err)
		}
		for col, value := range row {
			if col >= len(widths) {
				widths = append(widths, 0)
			}
			if n := utf8.RuneCountInString(value); n > widths[col] {
				widths[col] = n
			}
		}
	}

	for col, width := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if width < 8 {
			width = 8
		}
		if width > 60 {
			width = 60
		}
		if err := wb.SetColWidth(sheet, name, name, float64(width)+2); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
