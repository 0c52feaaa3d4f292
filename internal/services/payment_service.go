package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/brightkatongo/learn-hub/internal/config"
	"github.com/brightkatongo/learn-hub/internal/models"
	"github.com/brightkatongo/learn-hub/internal/phone"
	"github.com/brightkatongo/learn-hub/internal/repositories"
	"github.com/brightkatongo/learn-hub/internal/utils"
)

// referencePattern extracts the reference code from a provider SMS. The
// networks quote it as "Reference: 12345678" in their confirmations.
var referencePattern = regexp.MustCompile(`(?i)reference[:\s]+(\d{8})`)

// successKeywords mark an inbound SMS as a successful payment report.
var successKeywords = []string{"successful", "confirmed", "completed", "received"}

// Compile-time check to ensure PaymentServiceImpl implements PaymentService
var _ PaymentService = (*PaymentServiceImpl)(nil)

// PaymentServiceImpl owns the mobile money transaction lifecycle:
// initiation, confirmation, cancellation, expiry and SMS-driven status
// updates. All payment configuration is injected at construction time.
type PaymentServiceImpl struct {
	txRepo           repositories.TransactionRepository
	providerRepo     repositories.ProviderRepository
	verificationRepo repositories.VerificationRepository
	enrollmentRepo   repositories.EnrollmentRepository
	courseRepo       repositories.CourseRepository
	notifier         NotificationService
	refgen           *utils.ReferenceGenerator
	cfg              config.PaymentConfig
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	txRepo repositories.TransactionRepository,
	providerRepo repositories.ProviderRepository,
	verificationRepo repositories.VerificationRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	courseRepo repositories.CourseRepository,
	notifier NotificationService,
	refgen *utils.ReferenceGenerator,
	cfg config.PaymentConfig,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		txRepo:           txRepo,
		providerRepo:     providerRepo,
		verificationRepo: verificationRepo,
		enrollmentRepo:   enrollmentRepo,
		courseRepo:       courseRepo,
		notifier:         notifier,
		refgen:           refgen,
		cfg:              cfg,
	}
}

// InitiatePayment creates a transaction for (user, course), dispatches
// the payment instructions SMS and returns the transaction with its
// USSD dial sequence. The transaction is created in initiated status
// and promoted to pending only once the instructions SMS has been
// accepted by the gateway; a dispatch failure is logged and swallowed
// so the caller can retry dispatch later.
func (s *PaymentServiceImpl) InitiatePayment(ctx context.Context, userID primitive.ObjectID, course *models.Course, providerName, rawPhone string) (*models.Transaction, *USSDInstructions, error) {
	provider, err := s.providerRepo.FindByName(ctx, providerName)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, &ProviderUnavailableError{Provider: providerName}
		}
		return nil, nil, fmt.Errorf("failed to look up provider: %w", err)
	}
	if !provider.IsActive {
		return nil, nil, &ProviderUnavailableError{Provider: providerName}
	}

	clean := phone.Clean(rawPhone)
	if len(clean) != phone.LocalNumberLength {
		return nil, nil, &ValidationError{Message: "invalid Zambian phone number format"}
	}
	if !provider.ClaimsPrefix(phone.Prefix(rawPhone)) {
		msg := fmt.Sprintf("phone number doesn't match %s network", providerName)
		if detected := phone.DetectProvider(rawPhone); detected != "" {
			msg += fmt.Sprintf(" (detected: %s)", detected)
		} else {
			msg += " (detected: unknown)"
		}
		return nil, nil, &ValidationError{Message: msg}
	}

	now := time.Now()
	tx := &models.Transaction{
		UserID:       userID,
		CourseID:     course.ID,
		ProviderName: provider.Name,
		PhoneNumber:  phone.Format(clean),
		Amount:       course.Price,
		Currency:     s.cfg.Currency,
		Status:       models.StatusInitiated,
		ExpiresAt:    now.Add(s.cfg.Timeout()),
		CreatedAt:    now,
	}

	if err := s.createWithUniqueReference(ctx, tx); err != nil {
		return nil, nil, err
	}
	instructions := BuildUSSDInstructions(provider, tx)

	if err := s.notifier.SendPaymentInstructions(ctx, tx, course, provider); err != nil {
		// Non-fatal: transaction stays initiated for a later retry.
		slog.Warn("payment instructions dispatch failed",
			"referenceCode", tx.ReferenceCode, "phone", tx.PhoneNumber, "error", err)
		return tx, instructions, nil
	}

	ok, err := s.txRepo.MarkPending(ctx, tx.ID, time.Now())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to mark transaction pending: %w", err)
	}
	if ok {
		tx.Status = models.StatusPending
	}

	slog.Info("payment initiated",
		"referenceCode", tx.ReferenceCode, "provider", provider.Name,
		"amount", tx.Amount, "currency", tx.Currency)
	return tx, instructions, nil
}

// createWithUniqueReference draws reference codes until one inserts
// cleanly. The existence pre-check keeps collisions rare; the unique
// index rejects the losing side of a true race and the loop re-draws.
func (s *PaymentServiceImpl) createWithUniqueReference(ctx context.Context, tx *models.Transaction) error {
	for {
		code, err := s.refgen.Generate()
		if err != nil {
			return fmt.Errorf("failed to generate reference code: %w", err)
		}

		exists, err := s.txRepo.ExistsByReferenceCode(ctx, code)
		if err != nil {
			return fmt.Errorf("failed to check reference code: %w", err)
		}
		if exists {
			continue
		}

		tx.ReferenceCode = code
		err = s.txRepo.Create(ctx, tx)
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		return nil
	}
}

// ActiveTransaction returns the unexpired initiated or pending
// transaction for (user, course), or nil when none exists. Callers use
// it to make initiation an idempotent retry.
func (s *PaymentServiceImpl) ActiveTransaction(ctx context.Context, userID, courseID primitive.ObjectID) (*models.Transaction, error) {
	tx, err := s.txRepo.FindActiveByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	if tx.IsExpired(time.Now()) {
		return nil, nil
	}
	return tx, nil
}

// ConfirmPayment transitions a pending transaction to confirmed and
// finalizes the purchase. Only the first caller observing pending status
// performs the transition; everyone else gets false with no side
// effects. On success it appends the verification record, creates the
// enrollment at most once, and sends the confirmation SMS.
func (s *PaymentServiceImpl) ConfirmPayment(ctx context.Context, tx *models.Transaction, method string, verifiedBy *primitive.ObjectID, notes string) (bool, error) {
	now := time.Now()
	ok, err := s.txRepo.Confirm(ctx, tx.ID, now)
	if err != nil {
		return false, fmt.Errorf("failed to confirm transaction: %w", err)
	}
	if !ok {
		return false, nil
	}
	tx.Status = models.StatusConfirmed
	tx.ConfirmedAt = &now

	verification := &models.Verification{
		TransactionID: tx.ID,
		Method:        method,
		VerifiedBy:    verifiedBy,
		IsSuccessful:  true,
		Notes:         notes,
		VerifiedAt:    now,
	}
	if err := s.verificationRepo.Create(ctx, verification); err != nil {
		// The status change is already durable; the audit gap is logged.
		slog.Error("failed to record verification", "referenceCode", tx.ReferenceCode, "error", err)
	}

	created, err := s.enrollmentRepo.GetOrCreate(ctx, &models.Enrollment{
		UserID:        tx.UserID,
		CourseID:      tx.CourseID,
		AmountPaid:    tx.Amount,
		PaymentStatus: models.EnrollmentCompleted,
		PaymentMethod: models.PaymentMethodMobileMoney,
		EnrolledAt:    now,
	})
	if err != nil {
		slog.Error("failed to create enrollment", "referenceCode", tx.ReferenceCode, "error", err)
	}

	course, err := s.courseRepo.FindByID(ctx, tx.CourseID)
	if err != nil {
		slog.Error("failed to load course for confirmation SMS", "referenceCode", tx.ReferenceCode, "error", err)
	} else if err := s.notifier.SendPaymentConfirmation(ctx, tx, course); err != nil {
		slog.Warn("confirmation dispatch failed", "referenceCode", tx.ReferenceCode, "error", err)
	}

	slog.Info("payment confirmed",
		"referenceCode", tx.ReferenceCode, "method", method, "enrollmentCreated", created)
	return true, nil
}

// CancelPayment cancels an initiated or pending transaction owned by
// the user. No notification is sent.
func (s *PaymentServiceImpl) CancelPayment(ctx context.Context, referenceCode string, userID primitive.ObjectID) error {
	tx, err := s.txRepo.FindByReferenceCodeAndUser(ctx, referenceCode, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &NotFoundError{Resource: "transaction"}
		}
		return fmt.Errorf("failed to look up transaction: %w", err)
	}

	ok, err := s.txRepo.Cancel(ctx, tx.ID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to cancel transaction: %w", err)
	}
	if !ok {
		// Settled transactions are not cancellable; callers see the
		// same answer as for an unknown reference.
		return &NotFoundError{Resource: "cancellable transaction"}
	}
	slog.Info("payment cancelled", "referenceCode", referenceCode)
	return nil
}

// ExpirePending sweeps pending transactions whose payment window has
// closed. Idempotent: re-running with nothing newly expired is a no-op.
func (s *PaymentServiceImpl) ExpirePending(ctx context.Context) (int64, error) {
	count, err := s.txRepo.ExpirePending(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire pending transactions: %w", err)
	}
	if count > 0 {
		slog.Info("expired pending payments", "count", count)
	}
	return count, nil
}

// ProcessInboundSMS matches a provider SMS against pending transactions.
// Three outcomes: no match at all, a matched message that reads as a
// failure (the transaction is marked failed), or a matched success (the
// transaction is confirmed).
func (s *PaymentServiceImpl) ProcessInboundSMS(ctx context.Context, body, sender string) (SMSOutcome, error) {
	match := referencePattern.FindStringSubmatch(body)
	if match == nil {
		return SMSNoMatch, nil
	}
	referenceCode := match[1]

	tx, err := s.txRepo.FindPendingByReferenceCode(ctx, referenceCode)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return SMSNoMatch, nil
		}
		return SMSNoMatch, fmt.Errorf("failed to look up transaction: %w", err)
	}

	lower := strings.ToLower(body)
	for _, keyword := range successKeywords {
		if strings.Contains(lower, keyword) {
			ok, err := s.ConfirmPayment(ctx, tx, models.VerificationSMS, nil, "SMS confirmation: "+truncate(body, 100))
			if err != nil {
				return SMSNoMatch, err
			}
			if !ok {
				// Lost a race against another confirmation or the sweep.
				return SMSNoMatch, nil
			}
			return SMSMatchedSuccess, nil
		}
	}

	// Matched reference without a success keyword: the provider is
	// reporting a failed payment, so the transaction fails now instead
	// of lingering pending until the sweep.
	now := time.Now()
	ok, err := s.txRepo.MarkFailed(ctx, tx.ID, truncate(body, 200), now)
	if err != nil {
		return SMSNoMatch, fmt.Errorf("failed to mark transaction failed: %w", err)
	}
	if !ok {
		return SMSNoMatch, nil
	}
	tx.Status = models.StatusFailed

	if err := s.verificationRepo.Create(ctx, &models.Verification{
		TransactionID: tx.ID,
		Method:        models.VerificationSMS,
		IsSuccessful:  false,
		Notes:         "SMS failure report: " + truncate(body, 100),
		VerifiedAt:    now,
	}); err != nil {
		slog.Error("failed to record verification", "referenceCode", referenceCode, "error", err)
	}

	if course, err := s.courseRepo.FindByID(ctx, tx.CourseID); err == nil {
		if err := s.notifier.SendPaymentFailed(ctx, tx, course); err != nil {
			slog.Warn("failure notice dispatch failed", "referenceCode", referenceCode, "error", err)
		}
	}

	slog.Info("payment marked failed from SMS", "referenceCode", referenceCode)
	return SMSMatchedFailure, nil
}

// TransactionStatus returns the public status view for a reference code.
func (s *PaymentServiceImpl) TransactionStatus(ctx context.Context, referenceCode string) (*TransactionStatus, error) {
	tx, err := s.txRepo.FindByReferenceCode(ctx, referenceCode)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{Resource: "transaction"}
		}
		return nil, fmt.Errorf("failed to look up transaction: %w", err)
	}

	providerName := tx.ProviderName
	if provider, err := s.providerRepo.FindByName(ctx, tx.ProviderName); err == nil {
		providerName = provider.DisplayName
	}

	courseTitle := ""
	if course, err := s.courseRepo.FindByID(ctx, tx.CourseID); err == nil {
		courseTitle = course.Title
	}

	return &TransactionStatus{
		ReferenceCode: tx.ReferenceCode,
		Status:        tx.Status,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		Provider:      providerName,
		CourseTitle:   courseTitle,
		ExpiresAt:     tx.ExpiresAt,
		IsExpired:     tx.IsExpired(time.Now()),
		CreatedAt:     tx.CreatedAt,
	}, nil
}

// PaymentInstructions returns the transaction and its USSD dial
// sequence for the owning user.
func (s *PaymentServiceImpl) PaymentInstructions(ctx context.Context, referenceCode string, userID primitive.ObjectID) (*models.Transaction, *USSDInstructions, error) {
	tx, err := s.txRepo.FindByReferenceCodeAndUser(ctx, referenceCode, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, &NotFoundError{Resource: "transaction"}
		}
		return nil, nil, fmt.Errorf("failed to look up transaction: %w", err)
	}

	provider, err := s.providerRepo.FindByName(ctx, tx.ProviderName)
	if err != nil {
		return nil, nil, &ProviderUnavailableError{Provider: tx.ProviderName}
	}

	return tx, BuildUSSDInstructions(provider, tx), nil
}

// SendReminder re-contacts the payer about an unfinished payment. For a
// transaction stuck in initiated (instructions dispatch failed at
// initiation) it re-sends the instructions and promotes to pending;
// for a pending transaction it sends the reminder template.
func (s *PaymentServiceImpl) SendReminder(ctx context.Context, referenceCode string) error {
	tx, err := s.txRepo.FindByReferenceCode(ctx, referenceCode)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &NotFoundError{Resource: "transaction"}
		}
		return fmt.Errorf("failed to look up transaction: %w", err)
	}

	if tx.Status != models.StatusInitiated && tx.Status != models.StatusPending {
		return &ConflictError{Message: "transaction is not awaiting payment"}
	}

	course, err := s.courseRepo.FindByID(ctx, tx.CourseID)
	if err != nil {
		return fmt.Errorf("failed to load course: %w", err)
	}

	if tx.Status == models.StatusInitiated {
		provider, err := s.providerRepo.FindByName(ctx, tx.ProviderName)
		if err != nil {
			return &ProviderUnavailableError{Provider: tx.ProviderName}
		}
		if err := s.notifier.SendPaymentInstructions(ctx, tx, course, provider); err != nil {
			return err
		}
		if _, err := s.txRepo.MarkPending(ctx, tx.ID, time.Now()); err != nil {
			return fmt.Errorf("failed to mark transaction pending: %w", err)
		}
		return nil
	}

	return s.notifier.SendPaymentReminder(ctx, tx, course)
}

// TransactionByReference returns a user's transaction by reference code.
func (s *PaymentServiceImpl) TransactionByReference(ctx context.Context, referenceCode string, userID primitive.ObjectID) (*models.Transaction, error) {
	tx, err := s.txRepo.FindByReferenceCodeAndUser(ctx, referenceCode, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{Resource: "transaction"}
		}
		return nil, fmt.Errorf("failed to look up transaction: %w", err)
	}
	return tx, nil
}

// FindByReference returns a transaction by reference code without an
// ownership check. For staff tooling.
func (s *PaymentServiceImpl) FindByReference(ctx context.Context, referenceCode string) (*models.Transaction, error) {
	tx, err := s.txRepo.FindByReferenceCode(ctx, referenceCode)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{Resource: "transaction"}
		}
		return nil, fmt.Errorf("failed to look up transaction: %w", err)
	}
	return tx, nil
}

// UserTransactions lists a user's transactions with pagination.
func (s *PaymentServiceImpl) UserTransactions(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Transaction, error) {
	return s.txRepo.FindByUser(ctx, userID, page, limit)
}

// ActiveProviders lists the providers currently accepting payments.
func (s *PaymentServiceImpl) ActiveProviders(ctx context.Context) ([]*models.Provider, error) {
	return s.providerRepo.FindActive(ctx)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
