package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brightkatongo/learn-hub/internal/config"
	"github.com/brightkatongo/learn-hub/internal/models"
	"github.com/brightkatongo/learn-hub/internal/repositories"
	"github.com/brightkatongo/learn-hub/internal/utils"
	"github.com/brightkatongo/learn-hub/pkg/smsgateway"
)

// Compile-time check to ensure SMSNotificationService implements NotificationService
var _ NotificationService = (*SMSNotificationService)(nil)

// SMSNotificationService renders payment SMS from the configured
// templates, records every attempt, and dispatches through the gateway.
type SMSNotificationService struct {
	notificationRepo repositories.NotificationRepository
	gateway          smsgateway.Gateway
	cfg              config.PaymentConfig
}

// NewSMSNotificationService creates a new SMSNotificationService
func NewSMSNotificationService(notificationRepo repositories.NotificationRepository, gateway smsgateway.Gateway, cfg config.PaymentConfig) *SMSNotificationService {
	return &SMSNotificationService{
		notificationRepo: notificationRepo,
		gateway:          gateway,
		cfg:              cfg,
	}
}

// SendPaymentInstructions sends the templated USSD payment instructions
func (s *SMSNotificationService) SendPaymentInstructions(ctx context.Context, tx *models.Transaction, course *models.Course, provider *models.Provider) error {
	message := utils.RenderTemplate(s.cfg.InstructionsTemplate, map[string]string{
		"amount":         formatAmount(tx.Amount),
		"currency":       tx.Currency,
		"course_title":   course.Title,
		"ussd_code":      provider.UssdCode,
		"reference_code": tx.ReferenceCode,
	})
	return s.send(ctx, tx, message, models.NotificationInstructions)
}

// SendPaymentConfirmation sends the payment confirmed SMS
func (s *SMSNotificationService) SendPaymentConfirmation(ctx context.Context, tx *models.Transaction, course *models.Course) error {
	message := utils.RenderTemplate(s.cfg.ConfirmedTemplate, map[string]string{
		"course_title":   course.Title,
		"reference_code": tx.ReferenceCode,
	})
	return s.send(ctx, tx, message, models.NotificationConfirmed)
}

// SendPaymentReminder sends a reminder for a payment still awaiting
// confirmation
func (s *SMSNotificationService) SendPaymentReminder(ctx context.Context, tx *models.Transaction, course *models.Course) error {
	message := utils.RenderTemplate(s.cfg.ReminderTemplate, map[string]string{
		"amount":         formatAmount(tx.Amount),
		"currency":       tx.Currency,
		"course_title":   course.Title,
		"reference_code": tx.ReferenceCode,
	})
	return s.send(ctx, tx, message, models.NotificationReminder)
}

// SendPaymentFailed tells the payer their payment could not be confirmed
func (s *SMSNotificationService) SendPaymentFailed(ctx context.Context, tx *models.Transaction, course *models.Course) error {
	message := utils.RenderTemplate(s.cfg.FailedTemplate, map[string]string{
		"course_title":   course.Title,
		"reference_code": tx.ReferenceCode,
	})
	return s.send(ctx, tx, message, models.NotificationFailed)
}

// send records the outbound message, dispatches it and stores the
// delivery outcome. The notification record is created before dispatch
// so a gateway failure still leaves an audit trail.
func (s *SMSNotificationService) send(ctx context.Context, tx *models.Transaction, message, notificationType string) error {
	notification := &models.Notification{
		TransactionID:    tx.ID,
		PhoneNumber:      tx.PhoneNumber,
		Message:          message,
		NotificationType: notificationType,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}

	messageID, err := s.gateway.SendSMS(tx.PhoneNumber, message)
	if err != nil {
		if updateErr := s.notificationRepo.UpdateDelivery(ctx, notification.ID, false, "failed", ""); updateErr != nil {
			slog.Error("failed to record delivery failure", "error", updateErr, "notificationId", notification.ID)
		}
		return &DispatchError{Cause: err}
	}

	if err := s.notificationRepo.UpdateDelivery(ctx, notification.ID, true, "sent", messageID); err != nil {
		slog.Error("failed to record delivery status", "error", err, "notificationId", notification.ID)
	}
	return nil
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
