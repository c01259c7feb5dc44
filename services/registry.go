package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pulsedeck/backend/apperr"
	"github.com/pulsedeck/backend/metrics"
	"github.com/pulsedeck/backend/models"
	"github.com/pulsedeck/backend/store"
)

const defaultHealthEndpoint = "/health"

// RegistryService manages registered monitoring targets and runs synchronous
// health probes against them.
type RegistryService struct {
	store  store.Store
	client *http.Client
}

func NewRegistryService(st store.Store, probeTimeout time.Duration) *RegistryService {
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	return &RegistryService{
		store: st,
		client: &http.Client{
			Timeout: probeTimeout,
		},
	}
}

func (s *RegistryService) List(ctx context.Context, filter models.ServiceFilter) ([]*models.Service, error) {
	const op = "registry.List"
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, apperr.New(apperr.Validation, op, "invalid category filter: "+string(filter.Category))
	}
	services, err := s.store.ListServices(ctx, filter)
	if err != nil {
		return nil, err
	}
	if services == nil {
		services = []*models.Service{}
	}
	return services, nil
}

func (s *RegistryService) Get(ctx context.Context, id string) (*models.Service, error) {
	return s.store.GetService(ctx, id)
}

func (s *RegistryService) Create(ctx context.Context, req *models.CreateServiceRequest) (*models.Service, error) {
	const op = "registry.Create"

	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.New(apperr.Validation, op, "name is required")
	}
	if err := validateURL(req.URL); err != nil {
		return nil, apperr.Wrap(apperr.Validation, op, "invalid url", err)
	}
	category := req.Category
	if category == "" {
		category = models.ServiceAPI
	}
	if !category.Valid() {
		return nil, apperr.New(apperr.Validation, op, "invalid category: "+string(req.Category))
	}
	endpoint := req.HealthEndpoint
	if endpoint == "" {
		endpoint = defaultHealthEndpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	now := time.Now()
	svc := &models.Service{
		ID:             uuid.New().String(),
		Name:           req.Name,
		URL:            strings.TrimRight(req.URL, "/"),
		HealthEndpoint: endpoint,
		Description:    req.Description,
		Category:       category,
		Enabled:        true,
		Metadata:       req.Metadata,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	log.Printf("[RegistryService] registered service id=%s name=%q", svc.ID, svc.Name)
	return svc, nil
}

func (s *RegistryService) Update(ctx context.Context, id string, req *models.UpdateServiceRequest) (*models.Service, error) {
	const op = "registry.Update"

	svc, err := s.store.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperr.New(apperr.Validation, op, "name cannot be empty")
		}
		svc.Name = *req.Name
	}
	if req.URL != nil {
		if err := validateURL(*req.URL); err != nil {
			return nil, apperr.Wrap(apperr.Validation, op, "invalid url", err)
		}
		svc.URL = strings.TrimRight(*req.URL, "/")
	}
	if req.HealthEndpoint != nil {
		endpoint := *req.HealthEndpoint
		if endpoint == "" {
			endpoint = defaultHealthEndpoint
		}
		if !strings.HasPrefix(endpoint, "/") {
			endpoint = "/" + endpoint
		}
		svc.HealthEndpoint = endpoint
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			return nil, apperr.New(apperr.Validation, op, "invalid category: "+string(*req.Category))
		}
		svc.Category = *req.Category
	}
	if req.Enabled != nil {
		svc.Enabled = *req.Enabled
	}
	if req.Metadata != nil {
		svc.Metadata = req.Metadata
	}
	svc.UpdatedAt = time.Now()

	if err := s.store.PutService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *RegistryService) Delete(ctx context.Context, id string) error {
	// No cascade: incidents keep their denormalized service name.
	return s.store.DeleteService(ctx, id)
}

// Test probes the service's health endpoint once. Upstream failures come back
// as an unhealthy result, not an error; the stored record is never touched.
func (s *RegistryService) Test(ctx context.Context, id string) (*models.ProbeResult, error) {
	svc, err := s.store.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &models.ProbeResult{Service: svc.Name}
	target := svc.URL + svc.HealthEndpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		result.Error = fmt.Sprintf("invalid probe target: %v", err)
		metrics.ObserveProbe(false)
		return result, nil
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		log.Printf("[RegistryService] probe failed service=%s: %v", svc.Name, err)
		result.Error = err.Error()
		metrics.ObserveProbe(false)
		return result, nil
	}
	defer resp.Body.Close()

	result.ResponseTime = &elapsed
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result.Healthy = true
	} else {
		result.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	metrics.ObserveProbe(result.Healthy)
	return result, nil
}

func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url must be http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("url must include a host")
	}
	return nil
}
