package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ttf-construction/ai-takeoff-api/internal/models"
	appErrors "github.com/ttf-construction/ai-takeoff-api/pkg/errors"
)

// DirectoryClient lists companies and jobsites from the external directory.
type DirectoryClient interface {
	Companies(ctx context.Context) ([]models.Company, error)
	Jobsites(ctx context.Context, company string) ([]models.Jobsite, error)
}

// DirectoryService serves the company and jobsite pickers. Upstream rows are
// noisy, so listings are trimmed, de-blanked and sorted before they reach the
// client. Results are cached when a cache service is wired.
type DirectoryService struct {
	client   DirectoryClient
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDirectoryService constructs the service. cache may be nil.
func NewDirectoryService(client DirectoryClient, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{client: client, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

const (
	companiesCacheKey  = "directory:companies"
	jobsitesCachePref  = "directory:jobsites:"
	directoryCacheGlob = "directory:*"
)

// Companies returns the cleaned, sorted company list.
func (s *DirectoryService) Companies(ctx context.Context) ([]models.Company, error) {
	var cached []models.Company
	if hit, _ := s.cache.Get(ctx, companiesCacheKey, &cached); hit {
		return cached, nil
	}

	companies, err := s.client.Companies(ctx)
	if err != nil {
		return nil, err
	}

	cleaned := make([]models.Company, 0, len(companies))
	for _, c := range companies {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		cleaned = append(cleaned, models.Company{ID: c.ID, Name: name})
	}
	sort.Slice(cleaned, func(i, j int) bool {
		return strings.ToLower(cleaned[i].Name) < strings.ToLower(cleaned[j].Name)
	})

	if err := s.cache.Set(ctx, companiesCacheKey, cleaned, s.cacheTTL); err != nil && s.logger != nil {
		s.logger.Warn("cache companies failed", zap.Error(err))
	}
	return cleaned, nil
}

// Jobsites returns the jobsites of a company with resolved labels, sorted.
func (s *DirectoryService) Jobsites(ctx context.Context, company string) ([]models.Jobsite, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "company is required")
	}

	cacheKey := jobsitesCachePref + strings.ToLower(company)
	var cached []models.Jobsite
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	jobsites, err := s.client.Jobsites(ctx, company)
	if err != nil {
		return nil, err
	}

	cleaned := make([]models.Jobsite, 0, len(jobsites))
	for _, j := range jobsites {
		// Rows without any resolvable identity are dropped rather than
		// rendered as empty picker entries.
		if strings.TrimSpace(j.Jobsite) == "" && strings.TrimSpace(j.Code) == "" && j.ID == "" {
			continue
		}
		cleaned = append(cleaned, j)
	}
	sort.Slice(cleaned, func(i, j int) bool {
		return strings.ToLower(cleaned[i].Label()) < strings.ToLower(cleaned[j].Label())
	})

	if err := s.cache.Set(ctx, cacheKey, cleaned, s.cacheTTL); err != nil && s.logger != nil {
		s.logger.Warn("cache jobsites failed", zap.String("company", company), zap.Error(err))
	}
	return cleaned, nil
}

// Invalidate drops all cached directory listings.
func (s *DirectoryService) Invalidate(ctx context.Context) error {
	if err := s.cache.Invalidate(ctx, directoryCacheGlob); err != nil {
		return fmt.Errorf("invalidate directory cache: %w", err)
	}
	return nil
}
