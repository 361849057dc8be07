package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/salonluxe/SalonLuxe/internal/pkg/billing"
	"github.com/salonluxe/SalonLuxe/internal/pkg/database"
	"github.com/salonluxe/SalonLuxe/internal/pkg/mail"
)

const syncJobTimeout = 30 * time.Second

// processPlanSyncJob synchronizes one plan's product and prices with Stripe.
// Sync is resumable, so a retried job continues where the failed run stopped.
func (q *Queue) processPlanSyncJob(ctx context.Context, job *Job) error {
	payload, err := PlanSyncJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid plan sync payload: %w", err)
	}
	if payload.PlanID == 0 {
		return fmt.Errorf("plan sync payload is missing plan_id")
	}

	jobCtx, cancel := context.WithTimeout(ctx, syncJobTimeout)
	defer cancel()

	svc := billing.NewServiceFromDB(database.GetDB(), billing.NewStripeGatewayFromEnv())
	_, err = svc.SyncPlan(jobCtx, payload.PlanID)
	return err
}

// processPackageSyncJob synchronizes one credit package price with Stripe.
func (q *Queue) processPackageSyncJob(ctx context.Context, job *Job) error {
	payload, err := PackageSyncJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid package sync payload: %w", err)
	}
	if payload.PackageID == 0 {
		return fmt.Errorf("package sync payload is missing package_id")
	}

	jobCtx, cancel := context.WithTimeout(ctx, syncJobTimeout)
	defer cancel()

	svc := billing.NewServiceFromDB(database.GetDB(), billing.NewStripeGatewayFromEnv())
	_, err = svc.SyncCreditPackage(jobCtx, payload.PackageID)
	return err
}

// processBillingEmailJob sends one billing notification email.
func (q *Queue) processBillingEmailJob(job *Job) error {
	payload, err := BillingEmailJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid billing email payload: %w", err)
	}
	if payload.To == "" || payload.Subject == "" {
		return fmt.Errorf("billing email payload is missing recipient or subject")
	}
	return mail.SendMail(payload.To, payload.Subject, payload.Body)
}
