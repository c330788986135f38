package engine

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"eaisdo/config"
	"eaisdo/messaging"
	"eaisdo/nodes"
	"eaisdo/registry"
	"eaisdo/registry/registrytest"
	"eaisdo/session"
	"eaisdo/store"
)

type EngineTestSuite struct {
	suite.Suite
	registry *registrytest.Server
	db       *store.DB
	engine   *Engine
	ctx      context.Context
}

func (s *EngineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.registry = registrytest.NewServer()

	cfg := config.Defaults()
	cfg.Registry.BaseURL = s.registry.BaseURL()
	cfg.Database.SQLite.Path = filepath.Join(s.T().TempDir(), "engine.db")

	db, err := store.Open(&cfg.Database)
	s.Require().NoError(err)
	s.db = db

	s.engine = New(Config{
		AppConfig: cfg,
		DB:        db,
		Registry:  registry.NewClient(cfg.Registry.BaseURL, RegistryOptions(&cfg.Registry)),
		MsgClient: messaging.NewClient(&cfg.Messaging),
		LogFunc:   func(string, ...any) {},
	})
	s.engine.Start()
}

func (s *EngineTestSuite) TearDownTest() {
	s.engine.Stop()
	s.db.Close()
	s.registry.Close()
}

func (s *EngineTestSuite) form(name string) nodes.Form {
	return nodes.Form{
		RegionCode:        "77",
		Region:            "Москва",
		District:          "Центральный",
		NodeName:          name,
		TechnicalSolution: "ТР",
		Status:            "active",
	}
}

func (s *EngineTestSuite) TestRegistryHealthOnStart() {
	up, detail := s.engine.RegistryStatus()
	s.True(up)
	s.Equal(s.registry.BaseURL(), detail)
	s.False(s.engine.MessagingConnected())
}

func (s *EngineTestSuite) TestScreenChangesAreAudited() {
	screen := s.engine.NewScreen("admin")
	s.Require().NoError(screen.Create(s.ctx, s.form("msk")))

	n, err := screen.Find("1")
	s.Require().NoError(err)
	s.Require().NoError(screen.Edit(s.ctx, n, s.form("msk-2")))
	s.Require().NoError(screen.Delete(s.ctx, "1", true))

	entries, err := s.db.ListAuditLog(10)
	s.Require().NoError(err)
	var actions []string
	for _, e := range entries {
		if e.EntityType == "node" {
			actions = append(actions, e.Action)
			s.Equal("admin", e.Actor)
		}
	}
	s.Equal([]string{"deleted", "updated", "created"}, actions)
}

func (s *EngineTestSuite) TestRegistryErrorIsAudited() {
	s.registry.Fail(503)
	screen := s.engine.NewScreen("admin")
	s.Error(screen.Load(s.ctx))

	entries, err := s.db.ListEntityAudit("registry", "", 10)
	s.Require().NoError(err)
	s.Require().NotEmpty(entries)
	s.Equal("list_failed", entries[0].Action)
}

func (s *EngineTestSuite) TestHealthTransitionEmitsDisconnect() {
	var got []EventType
	s.engine.Events.SubscribeTypes(func(evt Event) {
		got = append(got, evt.Type)
	}, EventRegistryConnected, EventRegistryDisconnected)

	s.registry.Fail(500)
	s.engine.checkConnectionStatus()
	s.registry.Fail(0)
	s.engine.checkConnectionStatus()

	s.Equal([]EventType{EventRegistryDisconnected, EventRegistryConnected}, got)
}

func (s *EngineTestSuite) TestLoginEventsAudited() {
	s.engine.EmitLogin("admin", "127.0.0.1", true)
	s.engine.EmitLogin("eve", "127.0.0.1", false)
	s.engine.EmitLogout("admin", "127.0.0.1")

	entries, err := s.db.ListEntityAudit("session", "", 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("logout", entries[0].Action)
	s.Equal("login_failed", entries[1].Action)
	s.Equal("eve", entries[1].Actor)
	s.Equal("login", entries[2].Action)
}

func (s *EngineTestSuite) TestTokenStorageFallsBackToCookie() {
	s.engine.cfg.Session.Backend = "redis"
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	_, ok := s.engine.TokenStorage(w, r).(*session.CookieStorage)
	s.True(ok)
}

func (s *EngineTestSuite) TestNewSessionResolves() {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	sess := s.engine.NewSession(w, r)
	<-sess.Ready()
	s.Equal(session.State{}, sess.Status())
}

func (s *EngineTestSuite) TestReconfigureRegistry() {
	s.engine.cfg.Registry.BaseURL = "http://127.0.0.1:1/eaisUsers"
	s.engine.ReconfigureRegistry()
	up, _ := s.engine.RegistryStatus()
	s.False(up)
	s.Equal("http://127.0.0.1:1/eaisUsers", s.engine.Registry().BaseURL())
}

func (s *EngineTestSuite) TestApplyConfigWhilePublishing() {
	next := config.Defaults()
	next.Registry.BaseURL = "http://127.0.0.1:1/eaisUsers"
	next.Messaging.Topic = "eaisdo.reloaded"

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			s.engine.Events.Emit(Event{Type: EventNodeDeleted, Payload: NodeDeletedEvent{NodeID: "42", Actor: "admin"}})
		}
	}()
	s.engine.ApplyConfig(next)
	<-done

	s.Equal("eaisdo.reloaded", s.engine.MessagingConfig().Topic)
	s.Equal("http://127.0.0.1:1/eaisUsers", s.engine.RegistryConfig().BaseURL)
	s.Equal("http://127.0.0.1:1/eaisUsers", s.engine.Registry().BaseURL())
	up, _ := s.engine.RegistryStatus()
	s.False(up)
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func TestEventBusFiltersAndUnsubscribes(t *testing.T) {
	bus := NewEventBus()
	var all, typed int
	id := bus.Subscribe(func(Event) { all++ })
	bus.SubscribeTypes(func(Event) { typed++ }, EventLogout)

	bus.Emit(Event{Type: EventLogout})
	bus.Emit(Event{Type: EventNodeDeleted})
	bus.Unsubscribe(id)
	bus.Emit(Event{Type: EventLogout})

	assert.Equal(t, 2, all)
	assert.Equal(t, 2, typed)
}

func TestNewSessionStoreOptions(t *testing.T) {
	cs := NewSessionStore(&config.WebConfig{CookieSecure: true}, 0)
	assert.True(t, cs.Options.HttpOnly)
	assert.True(t, cs.Options.Secure)
	assert.Equal(t, "/", cs.Options.Path)
}
