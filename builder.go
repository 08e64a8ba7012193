package authgate

import (
	"errors"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/alon-poshil/authgate/hooks"
	"github.com/alon-poshil/authgate/internal/audit"
	"github.com/alon-poshil/authgate/internal/rate"
	"github.com/alon-poshil/authgate/internal/stores"
	"github.com/alon-poshil/authgate/jwt"
	"github.com/alon-poshil/authgate/mail"
	"github.com/alon-poshil/authgate/objectstore"
	"github.com/alon-poshil/authgate/password"
	"github.com/alon-poshil/authgate/secondary"
	"github.com/alon-poshil/authgate/session"
)

const tracerName = "github.com/alon-poshil/authgate"

// Builder assembles an [Engine]. A Builder is single-use.
type Builder struct {
	config Config

	storage      secondary.Storage
	objectStore  objectstore.Deleter
	mailer       mail.Sender
	userProvider UserProvider
	auditSink    AuditSink
	logger       log.Logger
	listeners    []hooks.Listener
	now          func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSecondaryStorage sets the key-value backend for sessions, verification
// tokens and rate counters.
func (b *Builder) WithSecondaryStorage(s secondary.Storage) *Builder {
	b.storage = s
	return b
}

// WithRedis is shorthand for a [secondary.RedisStorage] under [secondary.DefaultPrefix].
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	if client != nil {
		b.storage = secondary.NewRedisStorage(client, secondary.DefaultPrefix)
	}
	return b
}

// WithObjectStore enables profile image cleanup on user deletion.
func (b *Builder) WithObjectStore(store objectstore.Deleter) *Builder {
	b.objectStore = store
	return b
}

// WithMailer sets the production email sender. Development environments never call it.
func (b *Builder) WithMailer(sender mail.Sender) *Builder {
	b.mailer = sender
	return b
}

func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithLogger(logger log.Logger) *Builder {
	b.logger = logger
	return b
}

// WithListener appends a lifecycle listener after the built-in ones.
func (b *Builder) WithListener(l hooks.Listener) *Builder {
	b.listeners = append(b.listeners, l)
	return b
}

// WithClock overrides time.Now for every time-dependent component.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.TrustedOrigins) == 0 {
		cfg.TrustedOrigins = []string{strings.TrimRight(cfg.BaseURL, "/")}
	}
	if b.storage == nil {
		return nil, errors.New("secondary storage required")
	}
	if b.userProvider == nil {
		return nil, errors.New("user provider required")
	}

	now := b.now
	if now == nil {
		now = time.Now
	}
	logger := b.logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	engine := &Engine{
		config:        cfg,
		logger:        log.With(logger, "component", "authgate"),
		now:           now,
		users:         b.userProvider,
		sessions:      session.NewStore(b.storage, now),
		verifications: stores.NewVerificationStore(b.storage, now),
		metrics:       NewMetrics(cfg.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		tracer: otel.Tracer(tracerName),
	}

	// -------- RATE LIMITER --------
	if cfg.RateLimit.Enabled {
		limiter, err := rate.New(b.storage, rate.Config{
			Window: cfg.RateLimit.Window,
			Max:    cfg.RateLimit.Max,
		}, now)
		if err != nil {
			return nil, err
		}
		engine.limiter = limiter
	}

	// -------- CREDENTIALS --------
	pcfg := password.DefaultConfig()
	pcfg.MinPasswordBytes = cfg.EmailAndPassword.MinPasswordLength
	pcfg.MaxPasswordBytes = cfg.EmailAndPassword.MaxPasswordLength
	ph, err := password.NewArgon2(pcfg)
	if err != nil {
		return nil, err
	}
	engine.passwords = ph

	tm, err := jwt.NewManager(jwt.Config{
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    cloneBytes(cfg.Secret),
		Issuer:        cfg.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	engine.tokens = tm.WithClock(now)

	// -------- LIFECYCLE HOOKS --------
	listeners := make([]hooks.Listener, 0, len(b.listeners)+2)
	if b.objectStore != nil {
		listeners = append(listeners, hooks.AssetCleanup{Store: b.objectStore, Logger: logger})
	}
	listeners = append(listeners, hooks.Mailer{
		Sender:      b.mailer,
		Development: cfg.IsDevelopment(),
		Logger:      logger,
	})
	listeners = append(listeners, b.listeners...)
	engine.hooks = hooks.NewDispatcher(logger, listeners...)

	engine.social = buildSocialProviders(cfg)

	b.built = true
	return engine, nil
}
