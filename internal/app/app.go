package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/alert"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/audit"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/device"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/hotel"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/maintenance"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/mutation"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/report"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/repo"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/staff"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/user"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/utilities"
)

type Config struct {
	Dispatch dispatch.Config
	Session  session.Config
}

func ConfigFromEnv() Config {
	return Config{
		Dispatch: dispatch.ConfigFromEnv(),
		Session:  session.ConfigFromEnv(),
	}
}

// App is the assembled data access layer shared by the gateway and the CLI.
type App struct {
	Logger *zap.SugaredLogger
	Client *dispatch.Client
	Store  *session.Store
	Auth   *session.AuthClient
	Alerts *alert.Aggregate
	Runner *mutation.Runner

	Devices      *device.DeviceService
	Maintenances *maintenance.MaintenanceService
	Users        *user.UserService
	Staff        *staff.StaffService
	Audit        *audit.AuditService
	Hotels       *hotel.HotelService
	Reports      *report.ReportService

	closeRepo func()
	unbind    []func()
}

// New opens the configured state repo, restores the persisted session and
// wires every component.
func New(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (*App, error) {
	r, closeRepo, err := session.OpenRepo(ctx, cfg.Session, logger)
	if err != nil {
		return nil, fmt.Errorf("open session repo: %w", err)
	}
	a, err := NewWithRepo(ctx, cfg, r, logger)
	if err != nil {
		closeRepo()
		return nil, err
	}
	a.closeRepo = closeRepo
	return a, nil
}

// NewWithRepo is New with an explicit repo.
func NewWithRepo(ctx context.Context, cfg Config, r repo.Repo, logger *zap.SugaredLogger) (*App, error) {
	logger = utilities.OrNop(logger)

	// The client reads credentials from the store, and the store's tenant
	// fetcher needs the client, so the store is attached afterwards.
	client := dispatch.New(cfg.Dispatch, nil, dispatch.WithLogger(logger.Named("dispatch")))
	auth := session.NewAuthClient(client)
	store := session.NewStore(r, auth,
		session.WithLogger(logger.Named("session")),
		session.WithTenantTTL(cfg.Session.TenantTTL),
	)
	client.SetCredentials(store)
	if err := store.Restore(ctx); err != nil {
		logger.Warnw("starting without a restored session", "err", err)
	}

	alerts := alert.New(client, alert.WithLogger(logger.Named("alert")))
	runner := mutation.New(client, alerts, mutation.WithLogger(logger.Named("mutation")))

	return &App{
		Logger:       logger,
		Client:       client,
		Store:        store,
		Auth:         auth,
		Alerts:       alerts,
		Runner:       runner,
		Devices:      device.NewDeviceService(client, runner, logger.Named("devices")),
		Maintenances: maintenance.NewMaintenanceService(client, runner, logger.Named("maintenances")),
		Users:        user.NewUserService(client, runner, store, logger.Named("users")),
		Staff:        staff.NewStaffService(client, runner, logger.Named("staff")),
		Audit:        audit.NewAuditService(client, logger.Named("audit")),
		Hotels:       hotel.NewHotelService(client, runner, store, logger.Named("hotels")),
		Reports:      report.NewReportService(client),
		closeRepo:    func() {},
	}, nil
}

// Bind ties every primary list and the alert aggregate to scope changes.
// Long-lived views (the gateway) call it once; one-shot commands do not.
func (a *App) Bind(ctx context.Context) {
	a.unbind = append(a.unbind,
		a.Alerts.Bind(ctx, a.Store),
		a.Devices.Resource().Bind(ctx, a.Store),
		a.Maintenances.Resource().Bind(ctx, a.Store),
		a.Users.Resource().Bind(ctx, a.Store),
		a.Staff.Resource().Bind(ctx, a.Store),
		a.Audit.Resource().Bind(ctx, a.Store),
		a.Hotels.Resource().Bind(ctx, a.Store),
	)
}

// Wait blocks until refetches started by a scope change have finished.
func (a *App) Wait() {
	a.Alerts.Wait()
	a.Devices.List().Wait()
	a.Maintenances.List().Wait()
	a.Users.List().Wait()
	a.Staff.List().Wait()
	a.Audit.List().Wait()
	a.Hotels.List().Wait()
}

func (a *App) Close() {
	for _, u := range a.unbind {
		u()
	}
	a.unbind = nil
	a.Wait()
	a.closeRepo()
}

// Login authenticates against the backend and starts a session.
func (a *App) Login(ctx context.Context, username, password string) error {
	_, err := session.Login(ctx, a.Auth, a.Store, username, password)
	return err
}
