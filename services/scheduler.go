// services/scheduler.go
package services

import (
	"log"
	"time"

	"esports-arena/models"

	"github.com/go-co-op/gocron/v2"
)

// StartCleanupScheduler sweeps expired OTP records. Expiry is also checked
// lazily on read; the sweep just keeps abandoned codes from piling up.
func (s *OTPService) StartCleanupScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			res := s.DB.Where("expires_at < ?", time.Now()).Delete(&models.EmailOTP{})
			if res.Error != nil {
				log.Printf("[Scheduler] OTP sweep failed: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("🧹 Swept %d expired OTP records", res.RowsAffected)
			}
		}),
	)
}
