// Package socrata fetches raw records from the Chicago open-data portal
// (a Socrata instance). Each fetch maps the dataset's rows into domain
// entities, dropping rows with missing or unparseable locations; a bad
// row never fails the batch.
package socrata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paulmach/orb"

	"airscout/config"
	"airscout/internal/domain/entity"
	"airscout/internal/domain/service"
	"airscout/internal/errors"
	"airscout/internal/geo"
)

const (
	requestTimeout = 30 * time.Second

	// floatingTimestamp is Socrata's timestamp layout (no zone).
	floatingTimestamp = "2006-01-02T15:04:05.000"
)

// Client implements service.CityDataSource against a Socrata portal.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	cfg        *config.DataPortalConfig
}

func NewClient(cfg *config.DataPortalConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
		cfg:        cfg,
	}
}

// get runs one SoQL query against a dataset and decodes the rows into out.
func (c *Client) get(ctx context.Context, dataset string, params url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/resource/%s.json", c.cfg.BaseURL, dataset)

	params.Set("$limit", strconv.Itoa(c.cfg.FetchLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "failed to build data portal request")
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.AppToken != "" {
		req.Header.Set("X-App-Token", c.cfg.AppToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "data portal request failed for dataset %s", dataset)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return errors.Errorf("data portal returned %d for dataset %s: %s", resp.StatusCode, dataset, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode dataset %s response", dataset)
	}

	return nil
}

type permitRow struct {
	PermitNumber    string `json:"permit_"`
	PermitType      string `json:"permit_type"`
	StreetNumber    string `json:"street_number"`
	StreetDirection string `json:"street_direction"`
	StreetName      string `json:"street_name"`
	Latitude        string `json:"latitude"`
	Longitude       string `json:"longitude"`
	IssueDate       string `json:"issue_date"`
}

// FetchPermits returns demolition permits issued since the given time.
func (c *Client) FetchPermits(ctx context.Context, since time.Time) ([]entity.Permit, service.FetchStats, error) {
	params := url.Values{}
	params.Set("$where", fmt.Sprintf(
		"issue_date >= '%s' AND latitude IS NOT NULL AND longitude IS NOT NULL"+
			" AND (permit_type LIKE '%%WRECKING%%' OR permit_type LIKE '%%DEMOLITION%%')",
		since.Format(floatingTimestamp)))
	params.Set("$select", "permit_, permit_type, street_number, street_direction, street_name, latitude, longitude, issue_date")

	var rows []permitRow
	if err := c.get(ctx, c.cfg.PermitsDataset, params, &rows); err != nil {
		return nil, service.FetchStats{}, err
	}

	stats := service.FetchStats{Fetched: len(rows)}
	permits := make([]entity.Permit, 0, len(rows))
	for _, row := range rows {
		location, ok := parsePoint(row.Longitude, row.Latitude)
		if !ok || row.PermitNumber == "" {
			stats.Dropped++
			c.logger.DebugContext(ctx, "dropping malformed permit row",
				slog.String("permitNumber", row.PermitNumber))

			continue
		}
		issueDate, _ := parseTimestamp(row.IssueDate)
		permits = append(permits, entity.Permit{
			PermitNumber: row.PermitNumber,
			PermitType:   row.PermitType,
			Address:      joinAddress(row.StreetNumber, row.StreetDirection, row.StreetName),
			Location:     location,
			IssueDate:    issueDate,
		})
	}

	return permits, stats, nil
}

type complaintRow struct {
	ServiceRequestID string `json:"sr_number"`
	ComplaintType    string `json:"sr_short_code"`
	Description      string `json:"sr_type"`
	Latitude         string `json:"latitude"`
	Longitude        string `json:"longitude"`
	CreatedDate      string `json:"created_date"`
}

// FetchComplaints returns service complaints created since the given time.
func (c *Client) FetchComplaints(ctx context.Context, since time.Time) ([]entity.Complaint, service.FetchStats, error) {
	params := url.Values{}
	params.Set("$where", fmt.Sprintf(
		"created_date >= '%s' AND latitude IS NOT NULL AND longitude IS NOT NULL",
		since.Format(floatingTimestamp)))
	params.Set("$select", "sr_number, sr_type, sr_short_code, latitude, longitude, created_date")

	var rows []complaintRow
	if err := c.get(ctx, c.cfg.ComplaintsDataset, params, &rows); err != nil {
		return nil, service.FetchStats{}, err
	}

	stats := service.FetchStats{Fetched: len(rows)}
	complaints := make([]entity.Complaint, 0, len(rows))
	for _, row := range rows {
		location, ok := parsePoint(row.Longitude, row.Latitude)
		createdDate, dateOK := parseTimestamp(row.CreatedDate)
		if !ok || !dateOK || row.ServiceRequestID == "" {
			stats.Dropped++
			c.logger.DebugContext(ctx, "dropping malformed complaint row",
				slog.String("serviceRequestId", row.ServiceRequestID))

			continue
		}
		complaints = append(complaints, entity.Complaint{
			ServiceRequestID: row.ServiceRequestID,
			ComplaintType:    row.ComplaintType,
			Description:      row.Description,
			Location:         location,
			CreatedDate:      createdDate,
		})
	}

	return complaints, stats, nil
}

type schoolRow struct {
	SchoolID   string `json:"school_id"`
	LongName   string `json:"long_name"`
	SchoolType string `json:"primary_category"`
	Address    string `json:"address"`
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
}

// FetchSchools returns the active school roster.
func (c *Client) FetchSchools(ctx context.Context) ([]entity.School, service.FetchStats, error) {
	params := url.Values{}
	params.Set("$where", "latitude IS NOT NULL AND longitude IS NOT NULL")

	var rows []schoolRow
	if err := c.get(ctx, c.cfg.SchoolsDataset, params, &rows); err != nil {
		return nil, service.FetchStats{}, err
	}

	stats := service.FetchStats{Fetched: len(rows)}
	schools := make([]entity.School, 0, len(rows))
	for _, row := range rows {
		location, ok := parsePoint(row.Longitude, row.Latitude)
		if !ok || row.SchoolID == "" {
			stats.Dropped++
			c.logger.DebugContext(ctx, "dropping malformed school row",
				slog.String("schoolId", row.SchoolID))

			continue
		}
		schools = append(schools, entity.School{
			SchoolID:         row.SchoolID,
			Name:             row.LongName,
			SchoolType:       row.SchoolType,
			Address:          row.Address,
			Location:         location,
			ZoneRadiusMeters: entity.DefaultSchoolZoneRadiusMeters,
			IsActive:         true,
		})
	}

	return schools, stats, nil
}

type trafficRow struct {
	SegmentID    string `json:"segmentid"`
	Street       string `json:"street"`
	Direction    string `json:"_direction"`
	FromStreet   string `json:"_fromst"`
	ToStreet     string `json:"_tost"`
	CurrentSpeed string `json:"current_speed"`
	StartLon     string `json:"start_lon"`
	StartLat     string `json:"start_lat"`
	Time         string `json:"time"`
}

// FetchTraffic returns the latest congestion estimate per segment.
func (c *Client) FetchTraffic(ctx context.Context) ([]entity.TrafficSegment, service.FetchStats, error) {
	params := url.Values{}
	params.Set("$order", "time DESC")

	var rows []trafficRow
	if err := c.get(ctx, c.cfg.TrafficDataset, params, &rows); err != nil {
		return nil, service.FetchStats{}, err
	}

	stats := service.FetchStats{Fetched: len(rows)}
	seen := make(map[string]struct{}, len(rows))
	segments := make([]entity.TrafficSegment, 0, len(rows))
	for _, row := range rows {
		location, ok := parsePoint(row.StartLon, row.StartLat)
		speed, speedErr := strconv.ParseFloat(row.CurrentSpeed, 64)
		if !ok || speedErr != nil || speed < 0 || row.SegmentID == "" {
			stats.Dropped++
			c.logger.DebugContext(ctx, "dropping malformed traffic row",
				slog.String("segmentId", row.SegmentID))

			continue
		}
		// rows are ordered newest first; keep the latest per segment
		if _, dup := seen[row.SegmentID]; dup {
			continue
		}
		seen[row.SegmentID] = struct{}{}

		observedAt, _ := parseTimestamp(row.Time)
		segments = append(segments, entity.TrafficSegment{
			SegmentID:    row.SegmentID,
			Street:       row.Street,
			Direction:    row.Direction,
			FromStreet:   row.FromStreet,
			ToStreet:     row.ToStreet,
			CurrentSpeed: speed,
			Location:     location,
			ObservedAt:   observedAt,
		})
	}

	return segments, stats, nil
}

func parsePoint(lonStr, latStr string) (orb.Point, bool) {
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return orb.Point{}, false
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return orb.Point{}, false
	}
	pt := orb.Point{lon, lat}
	if geo.ValidatePoint(pt) != nil {
		return orb.Point{}, false
	}

	return pt, true
}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range []string{floatingTimestamp, "2006-01-02T15:04:05", time.RFC3339} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}

	return time.Time{}, false
}

func joinAddress(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}

	return out
}
