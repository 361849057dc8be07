package jobqueue

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/salonluxe/SalonLuxe/app/models"
	"github.com/salonluxe/SalonLuxe/internal/pkg/database"
)

const (
	defaultWorkerCount  = 3
	catalogSweepDefault = 15 * time.Minute
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue              *Queue
	catalogSweepTicker *time.Ticker
	stopCh             chan struct{}
	wg                 sync.WaitGroup
	mu                 sync.Mutex
	running            bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			queue:  NewQueue(defaultWorkerCount),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	// Start the job queue
	m.queue.Start()

	// Catalog sweeper re-enqueues sync jobs for plans and packages that are
	// still missing Stripe references (e.g. after a partial sync failure).
	m.catalogSweepTicker = time.NewTicker(catalogSweepDefault)
	m.wg.Add(1)
	go m.catalogSweepWorker()

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.catalogSweepTicker != nil {
		m.catalogSweepTicker.Stop()
	}

	// Signal workers to stop
	close(m.stopCh)
	m.stopCh = nil
	m.running = false

	// Wait for background workers to finish
	m.wg.Wait()

	// Stop the job queue
	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// catalogSweepWorker periodically re-enqueues sync jobs for unsynced catalog rows
func (m *Manager) catalogSweepWorker() {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Started catalog sweep worker (interval: %s)", catalogSweepDefault)

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Catalog sweep worker stopping")
			return
		case <-m.catalogSweepTicker.C:
			if err := m.RunCatalogSweepOnce(); err != nil {
				log.Errorf("[JobQueue Manager] Catalog sweep error: %v", err)
			}
		}
	}
}

// RunCatalogSweepOnce enqueues sync jobs for every active plan and credit
// package that is still missing a Stripe reference. Also used as a manual
// admin trigger.
func (m *Manager) RunCatalogSweepOnce() error {
	db := database.GetDB()
	if db == nil {
		return nil
	}

	var plans []models.Plan
	if err := db.Where("is_active = ?", true).
		Where("stripe_product_id = ''"+
			" OR (price_monthly_cents > 0 AND stripe_price_monthly_id = '')"+
			" OR (price_quarterly_cents > 0 AND stripe_price_quarterly_id = '')"+
			" OR (price_six_months_cents > 0 AND stripe_price_six_months_id = '')"+
			" OR (price_yearly_cents > 0 AND stripe_price_yearly_id = '')").
		Find(&plans).Error; err != nil {
		return err
	}
	for _, plan := range plans {
		if _, err := m.queue.EnqueueJob(JobTypePlanSync, PlanSyncJobPayload{PlanID: plan.ID}.ToMap()); err != nil {
			log.Errorf("[JobQueue Manager] Failed to enqueue plan sync for plan %d: %v", plan.ID, err)
		}
	}

	var packages []models.CreditPackage
	if err := db.Where("stripe_price_id = ''").Find(&packages).Error; err != nil {
		return err
	}
	for _, pkg := range packages {
		if _, err := m.queue.EnqueueJob(JobTypePackageSync, PackageSyncJobPayload{PackageID: pkg.ID}.ToMap()); err != nil {
			log.Errorf("[JobQueue Manager] Failed to enqueue package sync for package %d: %v", pkg.ID, err)
		}
	}

	if len(plans) > 0 || len(packages) > 0 {
		log.Infof("[JobQueue Manager] Catalog sweep enqueued %d plan syncs and %d package syncs", len(plans), len(packages))
	}
	return nil
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
