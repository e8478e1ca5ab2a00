package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/sportsfest/registration-system/metrics"
	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/repositories"
	"github.com/sportsfest/registration-system/storage"
)

// headerSynonyms maps normalized header cells to canonical field names.
// Normalization lowercases, trims, strips asterisks and collapses
// separators, so "First Name *", "first_name" and "FIRSTNAME" all land on
// the same key.
var headerSynonyms = map[string]string{
	"firstname":     "first_name",
	"name":          "first_name",
	"participant":   "first_name",
	"lastname":      "last_name",
	"surname":       "last_name",
	"familyname":    "last_name",
	"gender":        "gender",
	"sex":           "gender",
	"dob":           "dob",
	"dateofbirth":   "dob",
	"birthdate":     "dob",
	"email":         "email",
	"emailid":       "email",
	"emailaddress":  "email",
	"phone":         "phone",
	"phoneno":       "phone",
	"phonenumber":   "phone",
	"mobile":        "phone",
	"mobileno":      "phone",
	"contact":       "phone",
	"sports":        "sports",
	"sport":         "sports",
	"events":        "sports",
	"event":         "sports",
	"teamname":      "team_name",
	"team":          "team_name",
	"notes":         "notes",
	"remarks":       "notes",
	"payment":       "notes",
	"paymentdetails": "notes",
	"nextofkin":     "next_of_kin_name",
	"nextofkinname": "next_of_kin_name",
	"kinname":       "next_of_kin_name",
	"nextofkinphone": "next_of_kin_phone",
	"kinphone":      "next_of_kin_phone",
	"emergencycontact": "next_of_kin_phone",
}

var dobLayouts = []string{"2006-01-02", "02/01/2006", "02-01-2006", "2 Jan 2006"}

type BulkRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type BulkRowSkip struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// BulkUploadResult reports per-row outcomes; partial success is the
// expected common case and never raises an HTTP error.
type BulkUploadResult struct {
	BatchID      string         `json:"batch_id"`
	SuccessCount int            `json:"successCount"`
	SkippedCount int            `json:"skippedCount"`
	ErrorCount   int            `json:"errorCount"`
	Errors       []BulkRowError `json:"errors"`
	Skipped      []BulkRowSkip  `json:"skipped"`
}

type BulkUploadService interface {
	// Process imports rows sequentially into the given community. Rows that
	// validate and resolve are created directly in accepted state. A failed
	// row never rolls back earlier rows.
	Process(ctx context.Context, communityID int, filename string, file io.Reader) (*BulkUploadResult, error)
}

type bulkUploadService struct {
	participantRepo repositories.ParticipantRepository
	communityRepo   repositories.CommunityRepository
	sportService    SportService
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewBulkUploadService(
	participantRepo repositories.ParticipantRepository,
	communityRepo repositories.CommunityRepository,
	sportService SportService,
	uploader storage.FileUploader,
	logger *slog.Logger,
) BulkUploadService {
	return &bulkUploadService{
		participantRepo: participantRepo,
		communityRepo:   communityRepo,
		sportService:    sportService,
		uploader:        uploader,
		logger:          logger,
	}
}

func (s *bulkUploadService) Process(ctx context.Context, communityID int, filename string, file io.Reader) (*BulkUploadResult, error) {
	if _, err := s.communityRepo.GetByID(ctx, communityID); err != nil {
		if errors.Is(err, repositories.ErrCommunityNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	rows, err := parseUpload(filename, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	result := &BulkUploadResult{
		BatchID: uuid.NewString(),
		Errors:  make([]BulkRowError, 0),
		Skipped: make([]BulkRowSkip, 0),
	}

	for i, row := range rows {
		rowNum := i + 2 // 1-based, after the header row
		if err := s.importRow(ctx, communityID, row); err != nil {
			var skip *skipRow
			if errors.As(err, &skip) {
				result.SkippedCount++
				result.Skipped = append(result.Skipped, BulkRowSkip{Row: rowNum, Reason: skip.reason})
				metrics.BulkUploadRows.WithLabelValues("skipped").Inc()
				continue
			}
			result.ErrorCount++
			result.Errors = append(result.Errors, BulkRowError{Row: rowNum, Message: err.Error()})
			metrics.BulkUploadRows.WithLabelValues("error").Inc()
			continue
		}
		result.SuccessCount++
		metrics.BulkUploadRows.WithLabelValues("success").Inc()
	}

	s.archive(ctx, result.BatchID, filename, raw)

	s.logger.Info("bulk upload processed",
		slog.String("batch_id", result.BatchID),
		slog.Int("community_id", communityID),
		slog.Int("success", result.SuccessCount),
		slog.Int("skipped", result.SkippedCount),
		slog.Int("errors", result.ErrorCount))
	return result, nil
}

// skipRow marks a duplicate that should count as skipped, not failed.
type skipRow struct{ reason string }

func (e *skipRow) Error() string { return e.reason }

func (s *bulkUploadService) importRow(ctx context.Context, communityID int, row map[string]string) error {
	missing := make([]string, 0, 4)
	for _, field := range []string{"first_name", "email", "phone", "sports"} {
		if strings.TrimSpace(row[field]) == "" {
			missing = append(missing, field+" is required")
		}
	}
	if len(missing) > 0 {
		return errors.New(strings.Join(missing, "; "))
	}

	email := strings.ToLower(strings.TrimSpace(row["email"]))
	if !isValidEmail(email) {
		return fmt.Errorf("invalid email address %q", email)
	}

	dob, err := parseDOB(row["dob"])
	if err != nil {
		return err
	}

	labels := strings.Split(row["sports"], ",")
	sportIDs, err := s.sportService.ResolveLabels(ctx, labels)
	if err != nil {
		return err
	}
	if err := s.sportService.CheckCompatibility(ctx, sportIDs); err != nil {
		return err
	}

	if _, err := s.participantRepo.FindByEmailAndCommunity(ctx, email, communityID); err == nil {
		return &skipRow{reason: fmt.Sprintf("participant %s already registered", email)}
	} else if !errors.Is(err, repositories.ErrParticipantNotFound) {
		return err
	}

	selection := make(models.SportSelectionList, 0, len(sportIDs))
	for _, id := range sportIDs {
		selection = append(selection, models.SportSelection{SportID: id})
	}

	participant := &models.Participant{
		FirstName:   strings.TrimSpace(row["first_name"]),
		LastName:    strings.TrimSpace(row["last_name"]),
		Gender:      strings.TrimSpace(row["gender"]),
		DateOfBirth: dob,
		Email:       email,
		Phone:       strings.TrimSpace(row["phone"]),
		CommunityID: communityID,
		// Bulk rows arrive pre-vetted by the community admin, so they skip
		// the review queue.
		Status: models.ParticipantAccepted,
		Sports: selection,
	}
	if teamName := strings.TrimSpace(row["team_name"]); teamName != "" {
		participant.TeamName = &teamName
	}
	if notes := strings.TrimSpace(row["notes"]); notes != "" {
		participant.Notes = &notes
	}
	if kinName := strings.TrimSpace(row["next_of_kin_name"]); kinName != "" {
		participant.NextOfKin = &models.NextOfKin{
			Name:  kinName,
			Phone: strings.TrimSpace(row["next_of_kin_phone"]),
		}
	}

	if err := s.participantRepo.Create(ctx, nil, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantEmailConflict) {
			return &skipRow{reason: fmt.Sprintf("participant %s already registered", email)}
		}
		return err
	}
	return nil
}

func (s *bulkUploadService) archive(ctx context.Context, batchID, filename string, raw []byte) {
	if s.uploader == nil {
		return
	}
	key := fmt.Sprintf("imports/%s/%s", batchID, filepath.Base(filename))
	if _, err := s.uploader.Upload(ctx, key, contentTypeFor(filename), bytes.NewReader(raw)); err != nil {
		s.logger.Warn("failed to archive bulk upload file",
			slog.String("batch_id", batchID), slog.Any("error", err))
	}
}

func contentTypeFor(filename string) string {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

func parseDOB(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("dob required")
	}
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date of birth %q", value)
}

// parseUpload reads a CSV or XLSX file into one map per data row, keyed by
// canonical field names.
func parseUpload(filename string, raw []byte) ([]map[string]string, error) {
	var records [][]string
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		wb, err := excelize.OpenReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid xlsx file: %w", err)
		}
		defer wb.Close()
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		records, err = wb.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
		}
	} else {
		reader := csv.NewReader(bytes.NewReader(raw))
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		var err error
		records, err = reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("invalid csv file: %w", err)
		}
	}

	if len(records) == 0 {
		return nil, errors.New("file has no header row")
	}

	fields := make([]string, len(records[0]))
	for i, cell := range records[0] {
		fields[i] = headerSynonyms[normalizeHeader(cell)]
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		row := make(map[string]string, len(fields))
		for i, field := range fields {
			if field == "" || i >= len(record) {
				continue
			}
			row[field] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeHeader(cell string) string {
	cell = strings.ToLower(strings.TrimSpace(cell))
	cell = strings.TrimRight(cell, "*")
	cell = strings.TrimSpace(cell)
	replacer := strings.NewReplacer(" ", "", "_", "", "-", "", ".", "", "*", "")
	return replacer.Replace(cell)
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
