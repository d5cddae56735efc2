// Package alerts raises, lists and resolves risk alerts and fans notable
// ones out to the notification channel.
package alerts

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

// ErrInvalidAlert marks a Raise rejected for a malformed alert
var ErrInvalidAlert = errors.New("invalid alert")

// Store is the persistence surface the service needs
type Store interface {
	CreateRiskAlert(a *models.RiskAlert) error
	GetRiskAlertByID(id string) (*models.RiskAlert, error)
	GetActiveAlerts(userID string) ([]*models.RiskAlert, error)
	GetActiveAlertsByPortfolio(portfolioID string) ([]*models.RiskAlert, error)
	AcknowledgeAlert(id string) error
	ResolveAlert(id string) error
}

// Publisher delivers alert events to the notification channel
type Publisher interface {
	PublishAlertEvent(event models.AlertEvent) error
}

// Service coordinates alert persistence and notification. Persistence is the
// source of truth: an alert is raised once the row exists, and notification
// delivery is best-effort and never blocks or fails the raise.
type Service struct {
	store     Store
	publisher Publisher
}

// NewService creates an alert service. publisher may be nil, in which case
// raised alerts are persisted but never fanned out.
func NewService(store Store, publisher Publisher) *Service {
	return &Service{store: store, publisher: publisher}
}

// Raise validates and persists a new alert, then asynchronously publishes a
// notification event when the severity warrants one.
func (s *Service) Raise(alert *models.RiskAlert) error {
	if alert.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidAlert)
	}
	if alert.AlertType == "" {
		return fmt.Errorf("%w: alert_type is required", ErrInvalidAlert)
	}
	if models.SeverityRank(alert.Severity) == 5 {
		return fmt.Errorf("%w: unknown severity %s", ErrInvalidAlert, alert.Severity)
	}

	if err := s.store.CreateRiskAlert(alert); err != nil {
		return fmt.Errorf("failed to raise alert: %w", err)
	}

	s.notify(alert, models.EventTypeAlertRaised)
	return nil
}

// Get returns one alert by id
func (s *Service) Get(id string) (*models.RiskAlert, error) {
	return s.store.GetRiskAlertByID(id)
}

// ActiveForUser returns the user's unresolved alerts, most severe first
func (s *Service) ActiveForUser(userID string) ([]*models.RiskAlert, error) {
	return s.store.GetActiveAlerts(userID)
}

// ActiveForPortfolio returns a portfolio's unresolved alerts, most severe first
func (s *Service) ActiveForPortfolio(portfolioID string) ([]*models.RiskAlert, error) {
	return s.store.GetActiveAlertsByPortfolio(portfolioID)
}

// Acknowledge stamps the alert as seen without resolving it
func (s *Service) Acknowledge(id string) error {
	return s.store.AcknowledgeAlert(id)
}

// Resolve closes the alert and removes it from active views. Resolving a
// critical or high alert publishes a resolved event so notification
// consumers can clear what they surfaced on the raise.
func (s *Service) Resolve(id string) error {
	alert, err := s.store.GetRiskAlertByID(id)
	if err != nil {
		return err
	}
	if err := s.store.ResolveAlert(id); err != nil {
		return err
	}

	s.notify(alert, models.EventTypeAlertResolved)
	return nil
}

// notify fans the alert out on a goroutine when its severity warrants it.
// Delivery failures are logged and swallowed.
func (s *Service) notify(alert *models.RiskAlert, eventType string) {
	if s.publisher == nil || !models.NotifiableSeverity(alert.Severity) {
		return
	}

	event := models.AlertEvent{
		EventType:   eventType,
		AlertID:     alert.ID,
		UserID:      alert.UserID,
		PortfolioID: alert.PortfolioID,
		AlertType:   alert.AlertType,
		Severity:    alert.Severity,
		Message:     alert.Message,
		Timestamp:   time.Now(),
	}
	go func() {
		if err := s.publisher.PublishAlertEvent(event); err != nil {
			log.Printf("Failed to publish %s event for %s: %v", event.EventType, event.AlertID, err)
		}
	}()
}
