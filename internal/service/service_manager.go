package service

import (
	"fmt"
	"os"

	"github.com/gajzzs/devtree/internal/logging"
	"github.com/kardianos/service"
)

// DaemonFactory builds the daemon when the service actually runs, along
// with a cleanup function for the resources it holds.
type DaemonFactory func() (*Daemon, func() error, error)

type ServiceManager struct {
	service service.Service
}

type program struct {
	factory DaemonFactory
	daemon  *Daemon
	cleanup func() error
}

func (p *program) Start(s service.Service) error {
	logging.Info("starting devtree service")
	daemon, cleanup, err := p.factory()
	if err != nil {
		return err
	}
	p.daemon, p.cleanup = daemon, cleanup
	return p.daemon.Start()
}

func (p *program) Stop(s service.Service) error {
	logging.Info("stopping devtree service")
	if p.daemon == nil {
		return nil
	}
	err := p.daemon.Stop()
	if p.cleanup != nil {
		if cerr := p.cleanup(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func NewServiceManager(factory DaemonFactory, configFile string) (*ServiceManager, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	args := []string{"service", "run"}
	if configFile != "" {
		args = append(args, "--config", configFile)
	}

	svcConfig := &service.Config{
		Name:        "devtree",
		DisplayName: "devtree device watcher",
		Description: "Records a snapshot of every portable device tree as devices are connected",
		Executable:  execPath,
		Arguments:   args,
		Option: service.KeyValue{
			"UserService": true,
			"RunAtLoad":   true,
		},
	}

	svc, err := service.New(&program{factory: factory}, svcConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %v", err)
	}

	return &ServiceManager{service: svc}, nil
}

func (sm *ServiceManager) Install() error {
	return sm.service.Install()
}

func (sm *ServiceManager) Uninstall() error {
	return sm.service.Uninstall()
}

func (sm *ServiceManager) Start() error {
	return sm.service.Start()
}

func (sm *ServiceManager) Stop() error {
	return sm.service.Stop()
}

func (sm *ServiceManager) Status() (string, error) {
	status, err := sm.service.Status()
	if err != nil {
		return "Unknown", err
	}

	switch status {
	case service.StatusRunning:
		return "Running", nil
	case service.StatusStopped:
		return "Stopped", nil
	case service.StatusUnknown:
		return "Unknown", nil
	default:
		return fmt.Sprintf("Status(%d)", int(status)), nil
	}
}

// Run blocks until the service manager stops the service (or, when run
// interactively, until interrupted).
func (sm *ServiceManager) Run() error {
	return sm.service.Run()
}

// GetServiceConfigPath returns platform-specific service config path
func GetServiceConfigPath() string {
	switch service.Platform() {
	case "linux-systemd":
		return "~/.config/systemd/user/devtree.service"
	case "darwin-launchd":
		return "~/Library/LaunchAgents/devtree.plist"
	case "windows-service":
		return "Registry: HKEY_LOCAL_MACHINE\\SYSTEM\\CurrentControlSet\\Services\\devtree"
	default:
		return "Unknown platform"
	}
}
