package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const sweepTimeout = time.Minute

// CouponExpirer removes coupons whose expiration date has passed.
type CouponExpirer interface {
	ExpireCoupons(ctx context.Context) (int64, error)
}

// CouponExpiryScheduler periodically sweeps expired coupons.
type CouponExpiryScheduler struct {
	cron    *cron.Cron
	expirer CouponExpirer
	spec    string
}

// NewCouponExpiryScheduler builds a scheduler running on spec, a standard
// five-field cron expression or a descriptor such as "@hourly".
func NewCouponExpiryScheduler(expirer CouponExpirer, spec string) *CouponExpiryScheduler {
	return &CouponExpiryScheduler{
		cron:    cron.New(),
		expirer: expirer,
		spec:    spec,
	}
}

// RunOnce performs a single sweep.
func (s *CouponExpiryScheduler) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := s.expirer.ExpireCoupons(ctx)
	if err != nil {
		logger.Error("Coupon expiry sweep failed", err)
		return 0, err
	}
	logger.Debug("Coupon expiry sweep finished", map[string]interface{}{
		"expired": n,
	})
	return n, nil
}

func (s *CouponExpiryScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		_, _ = s.RunOnce(context.Background())
	})
	if err != nil {
		logger.Error("Failed to add cron job for coupon expiry", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Coupon expiry scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *CouponExpiryScheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Coupon expiry scheduler stopped")
}
