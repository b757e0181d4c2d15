// Package dispatch implements the backend command router. A record arriving
// from the transport carries a reserved "cmd" key of the form
// "Service.method"; the router resolves the named service instance, picks
// the method by name, and invokes it with the record as sole payload.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/leapstack-labs/datalink/pkg/grid"
)

// CommandKey is the reserved record key naming the command to dispatch.
const CommandKey = "cmd"

// Dispatch errors.
var (
	ErrNoCommand      = errors.New("record carries no command")
	ErrBadCommand     = errors.New("command is not of the form Service.method")
	ErrUnknownService = errors.New("unknown service")
	ErrUnknownMethod  = errors.New("unknown method")
	ErrBadSignature   = errors.New("method signature not dispatchable")
	ErrDuplicate      = errors.New("service already registered")
)

// Method signatures accepted for dispatch, tried strictly in this order.
// The precedence is part of the wire contract: a method matching an
// earlier shape is always invoked through that shape.
//
//  1. func(context.Context, *grid.Record) (*grid.Record, error)
//  2. func(context.Context, *grid.Record) error
//  3. func(*grid.Record) (*grid.Record, error)
//  4. func(*grid.Record) error
var signatures = []reflect.Type{
	reflect.TypeOf((func(context.Context, *grid.Record) (*grid.Record, error))(nil)),
	reflect.TypeOf((func(context.Context, *grid.Record) error)(nil)),
	reflect.TypeOf((func(*grid.Record) (*grid.Record, error))(nil)),
	reflect.TypeOf((func(*grid.Record) error)(nil)),
}

// Registry maps service names to service instances and dispatches commands
// to their methods. Registration normally happens once at startup; the
// lock only guards against a late Register racing concurrent Calls.
type Registry struct {
	mu       sync.RWMutex
	services map[string]any
	logger   *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger discards logs.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		services: make(map[string]any),
		logger:   logger,
	}
}

// Register adds a service instance under name. Method sets are fixed by
// the instance's type; only exported methods matching a dispatch signature
// are callable.
func (r *Registry) Register(name string, svc any) error {
	if name == "" || svc == nil {
		return fmt.Errorf("%w: empty name or nil service", ErrUnknownService)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	r.services[name] = svc
	return nil
}

// Services returns the registered service names.
func (r *Registry) Services() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	return names
}

// Call dispatches the record's command and returns the method's reply,
// which may be nil for methods that return nothing.
func (r *Registry) Call(ctx context.Context, rec *grid.Record) (*grid.Record, error) {
	if rec == nil || !rec.ContainsKey(CommandKey) {
		return nil, ErrNoCommand
	}
	cmd, err := rec.GetString(CommandKey)
	if err != nil || cmd == "" {
		return nil, ErrNoCommand
	}

	serviceName, methodName, ok := strings.Cut(cmd, ".")
	if !ok || serviceName == "" || methodName == "" || strings.Contains(methodName, ".") {
		return nil, fmt.Errorf("%w: %q", ErrBadCommand, cmd)
	}

	r.mu.RLock()
	svc, found := r.services[serviceName]
	r.mu.RUnlock()
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, serviceName)
	}

	method := reflect.ValueOf(svc).MethodByName(methodName)
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: %q has no method %q", ErrUnknownMethod, serviceName, methodName)
	}

	r.logger.Debug("dispatching command", "cmd", cmd)
	return invoke(ctx, method, rec)
}

// invoke matches the method against the signature list in order and calls
// it through the first matching shape.
func invoke(ctx context.Context, method reflect.Value, rec *grid.Record) (*grid.Record, error) {
	mt := method.Type()
	for _, sig := range signatures {
		if mt != sig {
			continue
		}
		var args []reflect.Value
		if sig.NumIn() == 2 {
			args = []reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(rec)}
		} else {
			args = []reflect.Value{reflect.ValueOf(rec)}
		}
		results := method.Call(args)

		// The error is always the last result.
		if errVal := results[len(results)-1]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}
		if sig.NumOut() == 2 {
			reply, _ := results[0].Interface().(*grid.Record)
			return reply, nil
		}
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrBadSignature, mt)
}
