package remotelog

import (
	"errors"
	"fmt"
)

// TopicEvents carries remote log events between the logger and the forwarder.
const TopicEvents = "remote.log"

// Stack names the tier an event originates from.
type Stack string

const (
	StackFrontend Stack = "frontend"
	StackBackend  Stack = "backend"
)

// Level is the severity of an event.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// Package tags the part of the application that produced an event.
type Package string

const (
	PackageAPI        Package = "api"
	PackageComponent  Package = "component"
	PackageHook       Package = "hook"
	PackagePage       Package = "page"
	PackageState      Package = "state"
	PackageStyle      Package = "style"
	PackageCache      Package = "cache"
	PackageController Package = "controller"
	PackageCronJob    Package = "cron_job"
	PackageDB         Package = "db"
	PackageRepository Package = "repository"
	PackageRoute      Package = "route"
	PackageService    Package = "service"
)

var (
	ErrInvalidStack   = errors.New("invalid stack")
	ErrInvalidLevel   = errors.New("invalid level")
	ErrInvalidPackage = errors.New("invalid package")
	ErrEmptyMessage   = errors.New("empty message")
)

var (
	stacks = map[Stack]struct{}{StackFrontend: {}, StackBackend: {}}
	levels = map[Level]struct{}{
		LevelDebug: {}, LevelInfo: {}, LevelWarn: {}, LevelError: {}, LevelFatal: {},
	}
	packages = map[Package]struct{}{
		PackageAPI: {}, PackageComponent: {}, PackageHook: {}, PackagePage: {},
		PackageState: {}, PackageStyle: {}, PackageCache: {}, PackageController: {},
		PackageCronJob: {}, PackageDB: {}, PackageRepository: {}, PackageRoute: {},
		PackageService: {},
	}
)

// Event is the JSON body the collector accepts.
type Event struct {
	Stack   Stack   `json:"stack"`
	Level   Level   `json:"level"`
	Package Package `json:"package"`
	Message string  `json:"message"`
}

// Validate checks every field against the tags the collector understands.
func (e *Event) Validate() error {
	if _, ok := stacks[e.Stack]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidStack, e.Stack)
	}

	if _, ok := levels[e.Level]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, e.Level)
	}

	if _, ok := packages[e.Package]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPackage, e.Package)
	}

	if e.Message == "" {
		return ErrEmptyMessage
	}

	return nil
}

// ParseStack converts s to a Stack, rejecting unknown values.
func ParseStack(s string) (Stack, error) {
	stack := Stack(s)
	if _, ok := stacks[stack]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStack, s)
	}

	return stack, nil
}
