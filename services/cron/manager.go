package cron

import (
	"log"
	"time"

	"github.com/edusphere/internship-api/model"
	"github.com/edusphere/internship-api/services"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron         *cron.Cron
	db           *gorm.DB
	certificates *services.CertificateService
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, certificates *services.CertificateService) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:         c,
		db:           db,
		certificates: certificates,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// 1. Every hour: issue internship certificates whose window has elapsed
	_, err := m.cron.AddFunc("0 0 * * * *", func() {
		m.logJobStart("issue_due_internship_certificates")
		m.IssueDueInternshipCertificates()
	})
	if err != nil {
		return err
	}

	// 2. Daily at 2 AM: cleanup expired tokens and old logs
	_, err = m.cron.AddFunc("0 0 2 * * *", func() {
		m.logJobStart("cleanup_old_data")
		m.CleanupOldData()
	})
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

// logJobStart logs the start of a cron job
func (m *CronManager) logJobStart(jobName string) {
	log.Printf("[CRON] Starting job: %s at %s", jobName, time.Now().Format(time.RFC3339))

	cronLog := model.CronJobLog{
		JobName:   jobName,
		Status:    "started",
		StartedAt: time.Now(),
	}
	m.db.Create(&cronLog)
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(jobName string, message string) {
	log.Printf("[CRON] Completed job: %s - %s", jobName, message)

	m.finishJobLog(jobName, "completed", message, "")
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(jobName string, err error) {
	log.Printf("[CRON] Error in job: %s - %v", jobName, err)

	m.finishJobLog(jobName, "failed", "", err.Error())
}

func (m *CronManager) finishJobLog(jobName, status, message, errorMsg string) {
	now := time.Now()

	var cronLog model.CronJobLog
	err := m.db.Where("job_name = ? AND status = ?", jobName, "started").
		Order("started_at DESC").
		First(&cronLog).Error
	if err != nil {
		return
	}

	m.db.Model(&cronLog).Updates(map[string]interface{}{
		"status":       status,
		"completed_at": now,
		"duration":     int(now.Sub(cronLog.StartedAt).Milliseconds()),
		"message":      message,
		"error_msg":    errorMsg,
	})
}
