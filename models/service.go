package models

import "time"

type ServiceCategory string

const (
	ServiceAPI        ServiceCategory = "api"
	ServiceDatabase   ServiceCategory = "database"
	ServiceCache      ServiceCategory = "cache"
	ServiceQueue      ServiceCategory = "queue"
	ServiceStorage    ServiceCategory = "storage"
	ServiceMonitoring ServiceCategory = "monitoring"
	ServiceOther      ServiceCategory = "other"
)

func (c ServiceCategory) Valid() bool {
	switch c {
	case ServiceAPI, ServiceDatabase, ServiceCache, ServiceQueue, ServiceStorage, ServiceMonitoring, ServiceOther:
		return true
	}
	return false
}

type Environment string

const (
	EnvProduction  Environment = "production"
	EnvStaging     Environment = "staging"
	EnvDevelopment Environment = "development"
)

// ServiceMetadata holds optional ownership and placement info.
type ServiceMetadata struct {
	Tags        []string    `firestore:"tags,omitempty" json:"tags,omitempty"`
	Owner       string      `firestore:"owner,omitempty" json:"owner,omitempty"`
	Team        string      `firestore:"team,omitempty" json:"team,omitempty"`
	Environment Environment `firestore:"environment,omitempty" json:"environment,omitempty"`
}

// Service is a registered monitoring target.
type Service struct {
	ID             string           `firestore:"id" json:"id"`
	Name           string           `firestore:"name" json:"name"`
	URL            string           `firestore:"url" json:"url"`
	HealthEndpoint string           `firestore:"health_endpoint" json:"healthEndpoint"`
	Description    string           `firestore:"description,omitempty" json:"description,omitempty"`
	Category       ServiceCategory  `firestore:"category" json:"category"`
	Enabled        bool             `firestore:"enabled" json:"enabled"`
	Metadata       *ServiceMetadata `firestore:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt      time.Time        `firestore:"created_at" json:"createdAt"`
	UpdatedAt      time.Time        `firestore:"updated_at" json:"updatedAt"`
}

// ServiceFilter narrows service list queries.
type ServiceFilter struct {
	Enabled     *bool
	Category    ServiceCategory
	Environment Environment
}

// CreateServiceRequest is the request body for registering a service.
type CreateServiceRequest struct {
	Name           string           `json:"name" binding:"required"`
	URL            string           `json:"url" binding:"required"`
	HealthEndpoint string           `json:"healthEndpoint"`
	Description    string           `json:"description"`
	Category       ServiceCategory  `json:"category"`
	Metadata       *ServiceMetadata `json:"metadata"`
}

// UpdateServiceRequest carries partial field updates. Pointer fields distinguish
// "leave alone" from "set to zero value".
type UpdateServiceRequest struct {
	Name           *string          `json:"name"`
	URL            *string          `json:"url"`
	HealthEndpoint *string          `json:"healthEndpoint"`
	Description    *string          `json:"description"`
	Category       *ServiceCategory `json:"category"`
	Enabled        *bool            `json:"enabled"`
	Metadata       *ServiceMetadata `json:"metadata"`
}

// ProbeResult is the outcome of a synchronous health probe. It is diagnostic
// only and never stored.
type ProbeResult struct {
	Healthy      bool   `json:"healthy"`
	Service      string `json:"service"`
	ResponseTime *int64 `json:"responseTime"` // milliseconds; nil when the probe never connected
	Error        string `json:"error,omitempty"`
}

// SystemStats is the aggregate dashboard payload.
type SystemStats struct {
	Summary    StatsSummary   `json:"summary"`
	ByCategory map[string]int `json:"byCategory,omitempty"`
	BySeverity map[string]int `json:"bySeverity,omitempty"`
}

type StatsSummary struct {
	TotalIncidents    int `json:"totalIncidents"`
	OpenIncidents     int `json:"openIncidents"`
	ResolvedIncidents int `json:"resolvedIncidents"`
	TotalLogs         int `json:"totalLogs"`
}
