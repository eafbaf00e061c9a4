package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/ocnotify/internal/adapter/input"
	"github.com/jmylchreest/ocnotify/internal/model"
)

const (
	// DBusInterface is the ocnotify interface name.
	DBusInterface = "io.github.jmylchreest.OCNotify"
	// DBusPath is the ocnotify object path.
	DBusPath = "/io/github/jmylchreest/OCNotify"
	// DBusBusName is the bus name to claim.
	DBusBusName = "io.github.jmylchreest.OCNotify"
)

// queueSize bounds events accepted over D-Bus but not yet dispatched.
const queueSize = 16

// Server exposes an object on the session bus that hosts call to report
// events. It is an input.Source.
type Server struct {
	logger     *slog.Logger
	mechanisms func() []string
	incoming   chan input.Event

	mu      sync.Mutex
	conn    *dbus.Conn
	running bool
}

// NewServer creates a new Server. mechanisms reports the detected
// mechanism order for the Mechanisms method and may be nil.
func NewServer(mechanisms func() []string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if mechanisms == nil {
		mechanisms = func() []string { return nil }
	}
	return &Server{
		logger:     logger,
		mechanisms: mechanisms,
		incoming:   make(chan input.Event, queueSize),
	}
}

// Name returns the source identifier.
func (s *Server) Name() string {
	return "dbus"
}

// Run connects to the session bus, exports the object and forwards calls as
// events until ctx is done.
func (s *Server) Run(ctx context.Context, events chan<- input.Event) error {
	if err := s.start(); err != nil {
		return &input.AdapterError{Source: s.Name(), Message: "failed to start D-Bus server", Err: err}
	}
	defer s.stop()

	return s.serve(ctx, events)
}

func (s *Server) serve(ctx context.Context, events chan<- input.Event) error {
	for {
		select {
		case ev := <-s.incoming:
			select {
			case events <- ev:
			case <-ctx.Done():
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Server) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server already running")
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(&object{s}, DBusPath, DBusInterface); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to export object: %w", err)
	}
	if err := conn.Export(introspect.NewIntrospectable(introspectNode()), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		_ = conn.Close()
		return fmt.Errorf("bus name %s already taken", DBusBusName)
	}

	s.conn = conn
	s.running = true
	s.logger.Info("D-Bus server started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

func (s *Server) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
		s.logger.Warn("failed to release bus name", "error", err)
	}
	if err := s.conn.Close(); err != nil {
		s.logger.Debug("failed to close D-Bus connection", "error", err)
	}
	s.conn = nil
	s.logger.Info("D-Bus server stopped")
}

// accept queues a host event. It reports whether the event triggers a
// notification; other event types are accepted and ignored downstream.
func (s *Server) accept(eventType string) (bool, *dbus.Error) {
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return false, dbus.MakeFailedError(fmt.Errorf("event type must not be empty"))
	}

	ev := input.Event{Type: eventType}
	select {
	case s.incoming <- ev:
	default:
		s.logger.Warn("D-Bus event queue full, dropping event", "type", eventType)
		return false, dbus.MakeFailedError(fmt.Errorf("event queue full"))
	}

	_, ok := ev.Kind()
	s.logger.Debug("D-Bus event received", "type", eventType, "notifies", ok)
	return ok, nil
}

// object holds the methods exported on the bus.
type object struct {
	s *Server
}

// Emit reports a host event by type.
// D-Bus method: Emit(s) -> b
func (o *object) Emit(eventType string) (bool, *dbus.Error) {
	return o.s.accept(eventType)
}

// Permission reports a permission request.
// D-Bus method: Permission()
func (o *object) Permission() *dbus.Error {
	_, err := o.s.accept(model.HostEventPermissionUpdated)
	return err
}

// Completion reports that the session went idle.
// D-Bus method: Completion()
func (o *object) Completion() *dbus.Error {
	_, err := o.s.accept(model.HostEventSessionIdle)
	return err
}

// Mechanisms returns the detected mechanisms, best first.
// D-Bus method: Mechanisms() -> as
func (o *object) Mechanisms() ([]string, *dbus.Error) {
	return o.s.mechanisms(), nil
}

func introspectNode() *introspect.Node {
	return &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: serverMethods(),
			},
		},
	}
}

// serverMethods returns the D-Bus method introspection data.
func serverMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "Emit",
			Args: []introspect.Arg{
				{Name: "event_type", Type: "s", Direction: "in"},
				{Name: "notifies", Type: "b", Direction: "out"},
			},
		},
		{Name: "Permission"},
		{Name: "Completion"},
		{
			Name: "Mechanisms",
			Args: []introspect.Arg{
				{Name: "mechanisms", Type: "as", Direction: "out"},
			},
		},
	}
}
