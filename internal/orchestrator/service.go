package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/eagraf/habitat-store/core/state/catalog"
	"github.com/eagraf/habitat-store/core/state/library"
	"github.com/eagraf/habitat-store/internal/installer"
	"github.com/eagraf/habitat-store/internal/pubsub"
	"github.com/eagraf/habitat-store/internal/worker"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// FinishedEvent is published once per finished attempt, after the library has been
// reconciled with its outcome.
type FinishedEvent struct {
	AppID     string
	Operation worker.Operation
	Version   string
	Outcome   installer.Outcome
}

// Service runs at most one install or uninstall per app at a time and keeps the
// library consistent with how each one ended.
type Service struct {
	installer installer.Installer
	store     library.Store
	publisher pubsub.Publisher[FinishedEvent]

	mu    sync.Mutex
	tasks map[string]*installer.Task

	active atomic.Int64
}

type Option func(*Service)

// WithPublisher replaces the publisher finished events go through.
func WithPublisher(publisher pubsub.Publisher[FinishedEvent]) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func NewService(inst installer.Installer, store library.Store, opts ...Option) *Service {
	s := &Service{
		installer: inst,
		store:     store,
		publisher: pubsub.NewSimplePublisher[FinishedEvent](),
		tasks:     make(map[string]*installer.Task),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartInstall resolves the version and variant of app to install and starts a task
// for it. The returned task is already running.
func (s *Service) StartInstall(ctx context.Context, app *catalog.App, opts StartOptions) (*installer.Task, error) {
	version, err := s.resolveVersion(ctx, app, opts)
	if err != nil {
		return nil, err
	}
	variant, err := s.resolveVariant(ctx, app, version, opts)
	if err != nil {
		return nil, err
	}

	task, err := s.installer.Install(app.ID, variant)
	if err != nil {
		return nil, err
	}
	if err := s.start(ctx, task, version.Number); err != nil {
		return nil, err
	}

	// Show the attempt in the library straight away, whatever happens to it.
	if _, err := s.store.Add(ctx, app.ID); err != nil {
		log.Error().Err(err).Msgf("Error adding %s to the library", app.ID)
	}
	return task, nil
}

// StartUninstall starts removing an installed app, using the variant it was installed
// with.
func (s *Service) StartUninstall(ctx context.Context, appID string) (*installer.Task, error) {
	entry, ok, err := s.store.TryGet(ctx, appID)
	if err != nil {
		return nil, err
	}
	if !ok || !entry.Data.Installed() {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, appID)
	}
	record := entry.Data.Install

	task, err := s.installer.Uninstall(appID, record.Variant)
	if err != nil {
		return nil, err
	}
	if err := s.start(ctx, task, record.VersionNumber); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) resolveVersion(ctx context.Context, app *catalog.App, opts StartOptions) (*catalog.Version, error) {
	if opts.Version != "" {
		version, ok := app.Version(opts.Version)
		if !ok {
			return nil, fmt.Errorf("%w: %s %s", ErrVersionNotFound, app.ID, opts.Version)
		}
		return version, nil
	}

	latest, ok := app.Latest()
	if !ok {
		return nil, fmt.Errorf("%w: %s has no versions", ErrVersionNotFound, app.ID)
	}
	if !opts.ConfirmVersion {
		return latest, nil
	}

	entry, ok, err := s.store.TryGet(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	if !ok || !entry.Data.Installed() || entry.Data.Install.VersionNumber == latest.Number {
		return latest, nil
	}
	if opts.Prompter == nil {
		return nil, fmt.Errorf("%w: version of %s", ErrChoiceRequired, app.ID)
	}

	chosen, err := opts.Prompter.ChooseVersion(ctx, app, entry.Data.Install.VersionNumber, latest.Number)
	if err != nil {
		return nil, err
	}
	version, ok := app.Version(chosen)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrVersionNotFound, app.ID, chosen)
	}
	return version, nil
}

func (s *Service) resolveVariant(ctx context.Context, app *catalog.App, version *catalog.Version, opts StartOptions) (library.Variant, error) {
	var installable []library.Variant
	for _, v := range version.Variants {
		if v.Installable() && s.installer.Supported(v) {
			installable = append(installable, v)
		}
	}

	switch {
	case len(installable) == 0:
		return library.Variant{}, fmt.Errorf("%w: %s %s", ErrInstallNotSupported, app.ID, version.Number)
	case len(installable) == 1 && !opts.ForceChooser:
		return installable[0], nil
	case opts.Prompter == nil:
		return library.Variant{}, fmt.Errorf("%w: variant of %s %s", ErrChoiceRequired, app.ID, version.Number)
	}

	chosen, err := opts.Prompter.ChooseVariant(ctx, app, version, installable)
	if err != nil {
		return library.Variant{}, err
	}
	for _, v := range installable {
		if v == chosen {
			return chosen, nil
		}
	}
	return library.Variant{}, fmt.Errorf("%w: chosen %s variant of %s", ErrInstallNotSupported, chosen.Kind, app.ID)
}

// register puts task in the registry unless the app already has a task that has not
// finished. A registered task that has not started yet is about to be, so it counts as
// live too. A finished task for the same app is evicted.
func (s *Service) register(task *installer.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.tasks[task.AppID()]; ok {
		if existing.State() != installer.StateFinished {
			return fmt.Errorf("%w: %s", ErrAlreadyInstalling, task.AppID())
		}
		if err := existing.Close(); err != nil {
			log.Warn().Err(err).Msgf("Error closing stale task for %s", task.AppID())
		}
	}
	s.tasks[task.AppID()] = task
	return nil
}

func (s *Service) unregister(task *installer.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks[task.AppID()] == task {
		delete(s.tasks, task.AppID())
	}
}

func (s *Service) start(ctx context.Context, task *installer.Task, version string) error {
	if err := s.register(task); err != nil {
		return err
	}

	task.OnStarted(func(*installer.Task) {
		s.active.Add(1)
	})
	task.OnFinished(func(t *installer.Task, outcome installer.Outcome) {
		s.reconcile(t, version, outcome)
	})

	return s.startRegistered(ctx, task)
}

func (s *Service) startRegistered(ctx context.Context, task *installer.Task) error {
	if err := task.Start(ctx); err != nil {
		s.unregister(task)
		if errors.Is(err, ErrStartFailure) {
			return fmt.Errorf("error starting %s of %s: %w", task.Operation(), task.AppID(), err)
		}
		return fmt.Errorf("%w: %s of %s: %w", ErrStartFailure, task.Operation(), task.AppID(), err)
	}
	return nil
}

// RestartInstall starts a new attempt of the registered task for appID after it
// finished unsuccessfully. It returns false if the last attempt succeeded. The new
// attempt reports through the same listeners as the first.
func (s *Service) RestartInstall(ctx context.Context, appID string) (bool, error) {
	s.mu.Lock()
	task, ok := s.tasks[appID]
	if !ok {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrNoTask, appID)
	}
	if task.State() != installer.StateFinished {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrAlreadyInstalling, appID)
	}
	// Reset while holding the registry lock, so no other start can slip in between.
	reset, err := task.Reset()
	s.mu.Unlock()
	if err != nil || !reset {
		return false, err
	}

	if err := s.startRegistered(ctx, task); err != nil {
		return false, err
	}
	return true, nil
}

// reconcile brings the library in line with how an attempt ended.
func (s *Service) reconcile(task *installer.Task, version string, outcome installer.Outcome) {
	ctx := context.Background()
	appID := task.AppID()

	var err error
	switch {
	case outcome.Kind == installer.OutcomeSuccess && task.Operation() == worker.OperationInstall:
		record := &library.InstallRecord{VersionNumber: version, Variant: task.Variant()}
		_, err = s.store.Update(ctx, appID, func(d library.Data) library.Data {
			d.Install = record
			return d
		})
	case outcome.Kind == installer.OutcomeSuccess:
		err = s.clearInstall(ctx, appID)
	case task.Unsafe():
		// The worker got far enough to touch files, so the old install can no longer
		// be trusted.
		err = s.clearInstall(ctx, appID)
	}
	if err != nil {
		log.Error().Err(err).Msgf("Error reconciling library for %s", appID)
	}

	s.active.Add(-1)

	event := &FinishedEvent{
		AppID:     appID,
		Operation: task.Operation(),
		Version:   version,
		Outcome:   outcome,
	}
	if err := s.publisher.PublishEvent(event); err != nil {
		log.Error().Err(err).Msgf("Error publishing finished event for %s", appID)
	}
}

func (s *Service) clearInstall(ctx context.Context, appID string) error {
	entry, ok, err := s.store.TryGet(ctx, appID)
	if err != nil {
		return err
	}
	if !ok || !entry.Data.Installed() {
		return nil
	}
	_, err = s.store.Update(ctx, appID, func(d library.Data) library.Data {
		d.Install = nil
		return d
	})
	return err
}

func (s *Service) IsInstalling(appID string) bool {
	task, ok := s.TryGetInstall(appID)
	return ok && task.Running()
}

func (s *Service) TryGetInstall(appID string) (*installer.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[appID]
	return task, ok
}

// TryRemoveInstall drops a finished task from the registry. A task that has not
// finished is never removed.
func (s *Service) TryRemoveInstall(appID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[appID]
	if !ok || task.State() != installer.StateFinished {
		return false
	}
	delete(s.tasks, appID)
	_ = task.Close()
	return true
}

// ActiveInstalls is the number of attempts whose worker is currently running.
func (s *Service) ActiveInstalls() int64 {
	return s.active.Load()
}

func (s *Service) Subscribe(sub pubsub.Subscriber[FinishedEvent]) {
	s.publisher.AddSubscriber(sub)
}

func (s *Service) Unsubscribe(sub pubsub.Subscriber[FinishedEvent]) {
	s.publisher.RemoveSubscriber(sub)
}

// Close cancels every running task, waits for each to finish, then closes the
// installer.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	var running []*installer.Task
	for _, task := range s.tasks {
		if task.Running() {
			running = append(running, task)
		}
	}
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range running {
		task := task
		g.Go(func() error {
			task.RequestCancel()
			_, err := task.WaitForResult(gctx)
			return err
		})
	}
	err := g.Wait()
	if closeErr := s.installer.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}
