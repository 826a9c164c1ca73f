package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/comptoirlabs/comptoir/internal/domain"
	"github.com/comptoirlabs/comptoir/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@hourly", func() {
		a.SchedLowStockScan()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedClearExpireData()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	// Collect CPU usage
	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.SetGauge("system_cpuuse", int64(_cpuuse[0]*100)) // Store as percentage * 100
	}

	// Collect memory usage
	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge("system_memuse", int64(_meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge("comptoir_cpuuse", int64(cpuuse*100))
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge("comptoir_memuse", int64(meminfo.RSS/1024/1024))
	}
}

// SchedLowStockScan records how many products sit at or below their minimum
// and mails the alert recipient when SMTP is configured.
func (a *Application) SchedLowStockScan() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	if !a.GetSettingsBoolValue("alerts", "low_stock_enabled") {
		return
	}

	low, err := a.products.LowStock(context.Background())
	if err != nil {
		zap.L().Warn("low stock scan failed", zap.Error(err))
		return
	}
	metrics.SetGauge("inventory_low_stock_count", int64(len(low)))
	if len(low) == 0 {
		return
	}

	for _, p := range low {
		zap.L().Warn("product below minimum stock",
			zap.String("name", p.Name),
			zap.Int("stock", p.Stock),
			zap.Int("min_stock", p.MinStock))
	}

	dialer := a.mailDialer()
	if dialer == nil || a.appConfig.Smtp.AlertTo == "" {
		return
	}

	var body strings.Builder
	body.WriteString("Products below minimum stock:\n\n")
	for _, p := range low {
		fmt.Fprintf(&body, "- %s: %d left (minimum %d)\n", p.Name, p.Stock, p.MinStock)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", a.appConfig.Smtp.From)
	m.SetHeader("To", a.appConfig.Smtp.AlertTo)
	m.SetHeader("Subject", fmt.Sprintf("[%s] Low stock alert: %d products",
		a.GetSettingsStringValue("company", "name"), len(low)))
	m.SetBody("text/plain", body.String())

	if err := dialer.DialAndSend(m); err != nil {
		zap.L().Error("failed to send low stock alert", zap.Error(err))
	}
}

// SchedClearExpireData prunes inventory movements past the retention window.
func (a *Application) SchedClearExpireData() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	idays := a.settings.GetInt("inventory", "movement_retention_days")
	if idays == 0 {
		idays = 365
	}
	a.gormDB.
		Where("created_at < ? ", time.Now().
			Add(-time.Hour*24*time.Duration(idays))).Delete(&domain.InventoryMovement{})
}
