package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sophia-kim26/koreanschool-attendance/internal/core/domain"
	"github.com/sophia-kim26/koreanschool-attendance/internal/core/port"
	"github.com/sophia-kim26/koreanschool-attendance/internal/infra/config"
	"github.com/sophia-kim26/koreanschool-attendance/internal/infra/security"
	"github.com/sophia-kim26/koreanschool-attendance/internal/repository"
)

var (
	// ErrInvalidCredential indicates the email or PIN is incorrect. The two
	// cases are deliberately indistinguishable to the caller.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrDuplicateAccount indicates the email is already registered.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrWorkerNotFound indicates no worker exists with the given id.
	ErrWorkerNotFound = errors.New("worker not found")
	// ErrWorkerInactive indicates the worker account has been deactivated.
	// Sign-in never returns it (a deactivated account answers like a bad
	// credential); clock-in does, since the caller there is already
	// authenticated.
	ErrWorkerInactive = errors.New("worker is not active")
)

// CredentialService owns account lifecycle and PIN verification. Plaintext
// PINs exist only in the return values of CreateAccount and ResetCredential;
// nothing else ever sees or logs them.
type CredentialService struct {
	cfg     *config.AppConfig
	workers port.WorkerRepository
}

// NewCredentialService constructs a CredentialService instance.
func NewCredentialService(cfg *config.AppConfig, workers port.WorkerRepository) *CredentialService {
	return &CredentialService{cfg: cfg, workers: workers}
}

// CreateAccountInput carries the attributes for a new worker account.
type CreateAccountInput struct {
	FirstName  string
	LastName   string
	KoreanName *string
	Email      string
	SessionDay domain.SessionDay
	Classroom  *string
}

// CreateAccount registers a worker and returns the generated plaintext PIN
// exactly once. The stored record holds only the bcrypt hash.
func (s *CredentialService) CreateAccount(ctx context.Context, input CreateAccountInput) (domain.Worker, string, error) {
	if strings.TrimSpace(input.FirstName) == "" {
		return domain.Worker{}, "", fmt.Errorf("first name is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		return domain.Worker{}, "", fmt.Errorf("last name is required")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return domain.Worker{}, "", fmt.Errorf("email is required")
	}
	if !domain.ValidSessionDay(input.SessionDay) {
		return domain.Worker{}, "", fmt.Errorf("session day must be friday, saturday, or sunday")
	}

	pin, err := security.GeneratePIN()
	if err != nil {
		return domain.Worker{}, "", fmt.Errorf("generate pin: %w", err)
	}

	hash, err := security.HashPIN(pin, s.cfg.Auth.PINBcryptCost)
	if err != nil {
		return domain.Worker{}, "", fmt.Errorf("hash pin: %w", err)
	}

	created, err := s.workers.Create(ctx, domain.Worker{
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		KoreanName: input.KoreanName,
		Email:      email,
		PINHash:    hash,
		SessionDay: input.SessionDay,
		Active:     true,
		Classroom:  input.Classroom,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.Worker{}, "", ErrDuplicateAccount
		}
		return domain.Worker{}, "", fmt.Errorf("create worker: %w", err)
	}

	return created.Sanitized(), pin, nil
}

// VerifyCredential checks an email/PIN pair against the active workers and
// returns the match with the credential hash blanked. Unknown email, wrong
// PIN, and deactivated account all produce the same ErrInvalidCredential;
// the answer never confirms which part failed or that the account exists.
func (s *CredentialService) VerifyCredential(ctx context.Context, email, pin string) (domain.Worker, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || pin == "" {
		return domain.Worker{}, ErrInvalidCredential
	}

	worker, err := s.workers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Worker{}, ErrInvalidCredential
		}
		return domain.Worker{}, fmt.Errorf("lookup worker: %w", err)
	}

	// The compare runs even for deactivated accounts so the two rejections
	// cost the same.
	if !security.VerifyPIN(pin, worker.PINHash) {
		return domain.Worker{}, ErrInvalidCredential
	}
	if !worker.Active {
		return domain.Worker{}, ErrInvalidCredential
	}

	return worker.Sanitized(), nil
}

// Authenticate verifies the credential and issues a bearer token for the
// worker's clock-in/out calls.
func (s *CredentialService) Authenticate(ctx context.Context, email, pin string) (domain.Worker, string, time.Time, error) {
	worker, err := s.VerifyCredential(ctx, email, pin)
	if err != nil {
		return domain.Worker{}, "", time.Time{}, err
	}

	token, expiresAt, err := security.IssueAccessToken(
		worker.ID,
		s.cfg.Auth.TokenIssuer,
		s.cfg.Auth.TokenSigningKey,
		s.cfg.Auth.AccessTokenTTL,
	)
	if err != nil {
		return domain.Worker{}, "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}

	return worker, token, expiresAt, nil
}

// ResetCredential draws a fresh PIN and overwrites the stored hash
// unconditionally. The previous PIN stops working the moment this returns.
func (s *CredentialService) ResetCredential(ctx context.Context, workerID int64) (string, error) {
	if _, err := s.workers.GetByID(ctx, workerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrWorkerNotFound
		}
		return "", fmt.Errorf("lookup worker: %w", err)
	}

	pin, err := security.GeneratePIN()
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}

	hash, err := security.HashPIN(pin, s.cfg.Auth.PINBcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}

	if err := s.workers.UpdatePINHash(ctx, workerID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrWorkerNotFound
		}
		return "", fmt.Errorf("update pin hash: %w", err)
	}

	return pin, nil
}

// Deactivate soft-deletes a worker. Historical shifts stay queryable; the
// account can no longer sign in or clock in.
func (s *CredentialService) Deactivate(ctx context.Context, workerID int64) error {
	if err := s.workers.Deactivate(ctx, workerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkerNotFound
		}
		return fmt.Errorf("deactivate worker: %w", err)
	}
	return nil
}

// GetWorker returns a single worker without the credential hash.
func (s *CredentialService) GetWorker(ctx context.Context, workerID int64) (domain.Worker, error) {
	worker, err := s.workers.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Worker{}, ErrWorkerNotFound
		}
		return domain.Worker{}, fmt.Errorf("lookup worker: %w", err)
	}
	return worker.Sanitized(), nil
}

// ListWorkers returns every worker, active and inactive, without hashes.
func (s *CredentialService) ListWorkers(ctx context.Context) ([]domain.Worker, error) {
	workers, err := s.workers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	for i := range workers {
		workers[i] = workers[i].Sanitized()
	}
	return workers, nil
}
