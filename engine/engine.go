package engine

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"

	"eaisdo/config"
	"eaisdo/log"
	"eaisdo/messaging"
	"eaisdo/nodes"
	"eaisdo/registry"
	"eaisdo/session"
	"eaisdo/store"
)

type LogFunc func(format string, args ...any)

const healthInterval = 30 * time.Second

type Config struct {
	AppConfig    *config.Config
	ConfigPath   string
	DB           *store.DB
	Registry     *registry.Client
	MsgClient    *messaging.Client
	SessionStore sessions.Store
	Redis        redis.Cmdable // nil when Redis is unavailable
	LogFunc      LogFunc
}

type Engine struct {
	cfg          *config.Config
	configPath   string
	db           *store.DB
	registry     *registry.Client
	msgClient    *messaging.Client
	sessionStore sessions.Store
	redis        redis.Cmdable
	Events       *EventBus
	logFn        LogFunc
	stopChan     chan struct{}
	stopOnce     sync.Once

	cfgMu sync.RWMutex // guards cfg.Registry and cfg.Messaging

	mu                sync.RWMutex
	registryConnected bool
	registryDetail    string
	msgConnected      bool
}

func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = log.Printf
	}
	ss := c.SessionStore
	if ss == nil {
		ss = NewSessionStore(&c.AppConfig.Web, c.AppConfig.Session.TTL)
	}
	return &Engine{
		cfg:          c.AppConfig,
		configPath:   c.ConfigPath,
		db:           c.DB,
		registry:     c.Registry,
		msgClient:    c.MsgClient,
		sessionStore: ss,
		redis:        c.Redis,
		Events:       NewEventBus(),
		logFn:        logFn,
		stopChan:     make(chan struct{}),
	}
}

// NewSessionStore builds the signed cookie store. An empty secret gets a
// random key, so sessions do not survive a restart.
func NewSessionStore(web *config.WebConfig, ttl time.Duration) *sessions.CookieStore {
	secret := []byte(web.SessionSecret)
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
	}
	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   web.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	return cs
}

func (e *Engine) Start() {
	e.wireEventHandlers()

	// Emit initial connection status
	e.checkConnectionStatus()

	go e.connectionHealthLoop()

	e.logFn("engine: started")
}

func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopChan) })
	e.logFn("engine: stopped")
}

// Accessors
func (e *Engine) DB() *store.DB                { return e.db }
func (e *Engine) AppConfig() *config.Config    { return e.cfg }
func (e *Engine) ConfigPath() string           { return e.configPath }
func (e *Engine) Registry() *registry.Client   { return e.registry }
func (e *Engine) MsgClient() *messaging.Client { return e.msgClient }
func (e *Engine) SessionStore() sessions.Store { return e.sessionStore }
func (e *Engine) SessionWait() time.Duration   { return e.cfg.Web.SessionWait }

// RegistryConfig returns a copy of the live registry section.
func (e *Engine) RegistryConfig() config.RegistryConfig {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.cfg.Registry
}

// MessagingConfig returns a copy of the live messaging section.
func (e *Engine) MessagingConfig() config.MessagingConfig {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.cfg.Messaging
}

// ApplyConfig swaps in the registry and messaging sections of next and
// reconnects both. Other sections need a restart.
func (e *Engine) ApplyConfig(next *config.Config) {
	e.cfgMu.Lock()
	e.cfg.Registry = next.Registry
	e.cfg.Messaging = next.Messaging
	e.cfgMu.Unlock()

	e.ReconfigureRegistry()
	e.ReconfigureMessaging()
}

// Credentials is the single console login from config.
func (e *Engine) Credentials() session.Credentials {
	return session.Credentials{
		Username:     e.cfg.Auth.Username,
		Password:     e.cfg.Auth.Password,
		PasswordHash: e.cfg.Auth.PasswordHash,
	}
}

// TokenStorage returns the token store for one request. The redis backend
// falls back to the cookie when no Redis client is configured.
func (e *Engine) TokenStorage(w http.ResponseWriter, r *http.Request) session.TokenStorage {
	if e.cfg.Session.Backend == "redis" && e.redis != nil {
		return session.NewRedisStorage(e.redis, e.sessionStore, w, r, e.cfg.Session.TTL)
	}
	return session.NewCookieStorage(e.sessionStore, w, r)
}

// NewSession builds and starts resolving the session for one request.
func (e *Engine) NewSession(w http.ResponseWriter, r *http.Request) *session.Session {
	s := session.New(e.TokenStorage(w, r), e.Credentials())
	s.Initialize(r.Context())
	return s
}

// NewScreen builds a node list screen whose changes are attributed to actor.
func (e *Engine) NewScreen(actor string) *nodes.Screen {
	return nodes.NewScreen(e.registry, &screenEmitter{bus: e.Events, actor: actor})
}

// RegistryStatus reports the last health check result.
func (e *Engine) RegistryStatus() (connected bool, detail string) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registryConnected, e.registryDetail
}

func (e *Engine) MessagingConnected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.msgConnected
}

func (e *Engine) checkConnectionStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Registry
	err := e.registry.Ping(ctx)
	e.mu.Lock()
	wasUp := e.registryConnected
	e.registryConnected = err == nil
	if err == nil {
		e.registryDetail = e.registry.BaseURL()
	} else {
		e.registryDetail = err.Error()
	}
	e.mu.Unlock()
	switch {
	case err == nil && !wasUp:
		e.Events.Emit(Event{Type: EventRegistryConnected, Payload: ConnectionEvent{Detail: "registry connected"}})
	case err != nil && wasUp:
		e.Events.Emit(Event{Type: EventRegistryDisconnected, Payload: ConnectionEvent{Detail: err.Error()}})
	}

	// Messaging
	if e.msgClient == nil {
		return
	}
	up := e.msgClient.IsConnected()
	e.mu.Lock()
	wasUp = e.msgConnected
	e.msgConnected = up
	e.mu.Unlock()
	switch {
	case up && !wasUp:
		e.Events.Emit(Event{Type: EventMessagingConnected, Payload: ConnectionEvent{Detail: "messaging connected"}})
	case !up && wasUp:
		e.Events.Emit(Event{Type: EventMessagingDisconnected, Payload: ConnectionEvent{Detail: "messaging disconnected"}})
	}
}

func (e *Engine) connectionHealthLoop() {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.checkConnectionStatus()
		}
	}
}

// ReconfigureRegistry applies registry config changes live.
func (e *Engine) ReconfigureRegistry() {
	rc := e.RegistryConfig()
	e.registry.Reconfigure(rc.BaseURL, RegistryOptions(&rc))
	e.logFn("engine: registry reconfigured (%s)", rc.BaseURL)
	e.checkConnectionStatus()
}

// ReconfigureMessaging reconnects messaging with current config.
func (e *Engine) ReconfigureMessaging() {
	if e.msgClient == nil {
		return
	}
	mc := e.MessagingConfig()
	if err := e.msgClient.Reconfigure(&mc); err != nil {
		e.logFn("engine: messaging reconfigure error: %v", err)
	} else {
		e.logFn("engine: messaging reconfigured (%s)", e.msgClient.Backend())
	}
	e.checkConnectionStatus()
}

// RegistryOptions maps the config section onto client options.
func RegistryOptions(rc *config.RegistryConfig) registry.Options {
	return registry.Options{
		Timeout:      rc.Timeout,
		RetryMax:     rc.RetryMax,
		RetryWaitMin: rc.RetryWaitMin,
		RetryWaitMax: rc.RetryWaitMax,
	}
}
