package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/saajjewels/storefront/internal/domain"
)

// StalePendingOrderAge is how long an unpaid order may stay pending
const StalePendingOrderAge = 48 * time.Hour

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedExpireOffers(time.Now())
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@hourly", func() {
		a.SchedCancelStaleOrders(time.Now())
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}
}

// StartBackgroundJobs runs the scheduler until ctx is done
func (a *Application) StartBackgroundJobs(ctx context.Context) error {
	a.sched.Start()
	<-ctx.Done()
	<-a.sched.Stop().Done()
	return nil
}

// SchedExpireOffers deactivates offers whose validity ended before now
func (a *Application) SchedExpireOffers(now time.Time) int64 {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	res := a.gormDB.Model(&domain.Offer{}).
		Where("active = ? AND valid_until IS NOT NULL AND valid_until < ?", true, now).
		Updates(map[string]interface{}{"active": false, "updated_at": now})
	if res.Error != nil {
		zap.L().Error("expire offers failed", zap.Error(res.Error))
		return 0
	}
	if res.RowsAffected > 0 {
		zap.L().Info("expired offers", zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected
}

// SchedCancelStaleOrders cancels orders left pending for too long
func (a *Application) SchedCancelStaleOrders(now time.Time) int64 {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	res := a.gormDB.Model(&domain.Order{}).
		Where("status = ? AND created_at < ?", domain.OrderPending, now.Add(-StalePendingOrderAge)).
		Updates(map[string]interface{}{"status": domain.OrderCancelled, "updated_at": now})
	if res.Error != nil {
		zap.L().Error("cancel stale orders failed", zap.Error(res.Error))
		return 0
	}
	if res.RowsAffected > 0 {
		zap.L().Info("cancelled stale pending orders", zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected
}
