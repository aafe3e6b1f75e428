package calendarsync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const reconcileTimeout = 5 * time.Minute

// StartScheduler runs the reconciler on a fixed interval. Each run gets
// its own timeout so a hung provider call cannot pile runs up.
func StartScheduler(svc *Service, intervalMinutes int) *cron.Cron {
	c := cron.New()
	spec := fmt.Sprintf("@every %dm", intervalMinutes)

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()

		if err := svc.Reconcile(ctx); err != nil {
			log.Printf("⚠️ calendar reconciliation failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("❌ failed to schedule calendar reconciliation: %v", err)
		return c
	}

	c.Start()
	log.Printf("✅ Calendar reconciliation scheduled every %d minutes", intervalMinutes)
	return c
}
