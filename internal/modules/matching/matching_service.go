package matching

import (
	"context"
	"fmt"
	"sort"

	"foodbridge/internal/models"
)

// ServiceInterface defines the contract for the geospatial matcher.
type ServiceInterface interface {
	NearestVolunteers(ctx context.Context, donationID string, radiusKm float64) ([]models.VolunteerMatch, error)
}

// Service ranks candidate volunteers by great-circle distance from a
// donation's pickup point.
type Service struct {
	repo RepositoryInterface

	// defaultRadiusKm bounds the search when the caller passes no radius;
	// maxResults caps the fan-out.
	defaultRadiusKm float64
	maxResults      int
}

// NewService creates a new matching service with the configured radius and
// result cap defaults.
func NewService(repo RepositoryInterface, defaultRadiusKm float64, maxResults int) *Service {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = 20
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Service{repo: repo, defaultRadiusKm: defaultRadiusKm, maxResults: maxResults}
}

// NearestVolunteers returns volunteers within radiusKm of the donation's
// pickup point, nearest first, ties broken by volunteer id ascending, at
// most maxResults entries. Zero matches is an empty slice, not an error.
func (s *Service) NearestVolunteers(ctx context.Context, donationID string, radiusKm float64) ([]models.VolunteerMatch, error) {
	if radiusKm <= 0 {
		radiusKm = s.defaultRadiusKm
	}

	lat, lon, err := s.repo.GetDonationPoint(ctx, donationID)
	if err != nil {
		return nil, fmt.Errorf("service.NearestVolunteers: %w", err)
	}

	candidates, err := s.repo.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.NearestVolunteers: %w", err)
	}

	matches := make([]models.VolunteerMatch, 0, len(candidates))
	for _, c := range candidates {
		d := haversineKm(lat, lon, c.Latitude, c.Longitude)
		if d > radiusKm {
			continue
		}
		matches = append(matches, models.VolunteerMatch{
			VolunteerID: c.VolunteerID,
			Name:        c.Name,
			Email:       c.Email,
			Latitude:    c.Latitude,
			Longitude:   c.Longitude,
			DistanceKm:  d,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DistanceKm != matches[j].DistanceKm {
			return matches[i].DistanceKm < matches[j].DistanceKm
		}
		return matches[i].VolunteerID < matches[j].VolunteerID
	})

	if len(matches) > s.maxResults {
		matches = matches[:s.maxResults]
	}
	return matches, nil
}
