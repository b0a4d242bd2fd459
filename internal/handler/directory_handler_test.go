package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ttf-construction/ai-takeoff-api/internal/models"
	"github.com/ttf-construction/ai-takeoff-api/internal/service"
)

type directoryClientMock struct {
	companies []models.Company
	jobsites  []models.Jobsite
}

func (m *directoryClientMock) Companies(ctx context.Context) ([]models.Company, error) {
	return m.companies, nil
}

func (m *directoryClientMock) Jobsites(ctx context.Context, company string) ([]models.Jobsite, error) {
	return m.jobsites, nil
}

func TestDirectoryHandlerCompanies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &directoryClientMock{companies: []models.Company{{ID: "1", Name: "TTF Construction"}}}
	handler := NewDirectoryHandler(service.NewDirectoryService(mock, nil, time.Minute, nil))

	c, w := newGinContext(http.MethodGet, "/companies", nil)
	handler.Companies(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "TTF Construction")
}

func TestDirectoryHandlerJobsites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &directoryClientMock{jobsites: []models.Jobsite{{ID: "7", Company: "TTF Construction", Jobsite: "Yard 1"}}}
	handler := NewDirectoryHandler(service.NewDirectoryService(mock, nil, time.Minute, nil))

	c, w := newGinContext(http.MethodGet, "/jobsites", nil)
	c.Request.URL.RawQuery = url.Values{"company": {"TTF Construction"}}.Encode()
	handler.Jobsites(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Yard 1")
}

func TestDirectoryHandlerJobsitesRequiresCompany(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDirectoryHandler(service.NewDirectoryService(&directoryClientMock{}, nil, time.Minute, nil))

	c, w := newGinContext(http.MethodGet, "/jobsites", nil)
	handler.Jobsites(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
