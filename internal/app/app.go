// Package app opens the backing stores and builds the services shared by the
// API server and the admin CLI.
package app

import (
	"context"
	"time"

	"github.com/newsdesk/newsdesk/handlers"
	"github.com/newsdesk/newsdesk/internal/ads"
	"github.com/newsdesk/newsdesk/internal/authors"
	"github.com/newsdesk/newsdesk/internal/config"
	"github.com/newsdesk/newsdesk/internal/database"
	"github.com/newsdesk/newsdesk/internal/events"
	"github.com/newsdesk/newsdesk/internal/improve"
	"github.com/newsdesk/newsdesk/internal/newsletter"
	"github.com/newsdesk/newsdesk/internal/oidc"
	"github.com/newsdesk/newsdesk/internal/pages"
	"github.com/newsdesk/newsdesk/internal/posts"
	"github.com/newsdesk/newsdesk/internal/search"
	"github.com/newsdesk/newsdesk/internal/sections"
	"github.com/newsdesk/newsdesk/internal/sessions"
	"github.com/newsdesk/newsdesk/internal/storage"
	"github.com/newsdesk/newsdesk/internal/tokens"
	"github.com/newsdesk/newsdesk/pkg/logger"
	"github.com/newsdesk/newsdesk/pkg/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const mongoAttempts = 5

// App holds the connections and services. Optional backends are nil when
// not configured or unreachable.
type App struct {
	Config *config.Config
	Mongo  *mongo.Client
	Redis  *redis.Client
	Events events.Publisher
	Blob   storage.Blob

	Authors    *authors.Service
	Posts      *posts.Service
	Sections   *sections.Service
	Pages      *pages.Service
	Ads        *ads.Service
	Newsletter *newsletter.Service
	Search     *search.Service
	Sessions   *sessions.Service
	Blacklist  *sessions.Blacklist
	Uploader   *storage.Uploader
	Improve    *improve.Client
	Providers  *oidc.Registry
	Verifier   middleware.Verifier
}

type repos struct {
	authors    authors.Repository
	posts      posts.Repository
	sections   sections.Repository
	pages      pages.Repository
	composer   func(*sections.Service, *posts.Service, *authors.Service) pages.Composer
	ads        ads.Repository
	newsletter newsletter.Repository
}

func memoryRepos() repos {
	return repos{
		authors:    authors.NewMemoryRepository(),
		posts:      posts.NewMemoryRepository(),
		sections:   sections.NewMemoryRepository(),
		pages:      pages.NewMemoryRepository(),
		ads:        ads.NewMemoryRepository(),
		newsletter: newsletter.NewMemoryRepository(),
		composer: func(s *sections.Service, p *posts.Service, a *authors.Service) pages.Composer {
			return pages.NewLookupComposer(s, p, a)
		},
	}
}

func mongoRepos(db *mongo.Database) repos {
	return repos{
		authors:    authors.NewMongoRepository(db.Collection(database.AuthorsCollection)),
		posts:      posts.NewMongoRepository(db.Collection(database.PostsCollection)),
		sections:   sections.NewMongoRepository(db.Collection(database.SectionsCollection)),
		pages:      pages.NewMongoRepository(db.Collection(database.PagesCollection)),
		ads:        ads.NewMongoRepository(db.Collection(database.AdsCollection)),
		newsletter: newsletter.NewMongoRepository(db.Collection(database.SubscribersCollection)),
		composer: func(*sections.Service, *posts.Service, *authors.Service) pages.Composer {
			return pages.NewMongoComposer(db)
		},
	}
}

// New connects to the configured backends and wires the services. Redis and
// Mongo failures degrade to in-memory stores; withProviders controls OIDC
// discovery, which only the API server needs.
func New(ctx context.Context, cfg *config.Config, withProviders bool) (*App, error) {
	a := &App{Config: cfg}

	if cfg.Redis.Host != "" {
		rc := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rc.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", cfg.Redis.Addr(), err)
			_ = rc.Close()
		} else {
			a.Redis = rc
			logger.Infof("connected to Redis: %s", cfg.Redis.Addr())
		}
	}

	r := memoryRepos()
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoAttempts, func(attempt int, err error) {
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, mongoAttempts, err)
		})
		if err != nil {
			logger.Warnf("could not connect to MongoDB, using in-memory repositories: %v", err)
		} else {
			a.Mongo = client
			db := client.Database(cfg.MongoDB.Database)
			if err := database.EnsureIndexes(ctx, db); err != nil {
				a.Close(ctx)
				return nil, err
			}
			r = mongoRepos(db)
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		a.Events = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, 0)
		logger.Infof("publishing events to kafka topic %s", cfg.Kafka.Topic)
	} else {
		a.Events = events.LogPublisher{}
	}

	a.Authors = authors.NewService(r.authors, a.Events)
	a.Posts = posts.NewService(r.posts, nil, a.Events)
	a.Sections = sections.NewService(r.sections, a.Posts)
	a.Posts.SetSectionLinker(a.Sections)
	a.Pages = pages.NewService(r.pages, r.composer(a.Sections, a.Posts, a.Authors), a.Sections)
	a.Sections.SetPageLookup(a.Pages)
	a.Ads = ads.NewService(r.ads)
	a.Newsletter = newsletter.NewService(r.newsletter, a.Events)
	a.Search = search.NewService(a.Posts, a.Sections)

	a.Sessions, a.Blacklist = a.sessionStore()
	if cfg.JWT.Secret != "" {
		a.Verifier = tokens.NewVerifier(cfg)
	} else if cfg.OAuth.AllowInsecureTokens {
		logger.Warnf("enabling insecure bearer token verifier (integration mode)")
		a.Verifier = oidc.NewInsecureVerifier()
	}

	if cfg.MinIO.Endpoint != "" {
		blob, err := storage.NewMinIOStorage(ctx, cfg.MinIO, cfg.Uploads.PresignTTL)
		if err != nil {
			logger.Warnf("object storage unavailable, uploads disabled: %v", err)
		} else {
			a.Blob = blob
		}
	}
	a.Uploader = storage.NewUploader(a.Blob, cfg.Uploads.MaxBytes)
	a.Improve = improve.NewClient(cfg.Improve, nil)

	if withProviders {
		a.Providers = oidc.LoadRegistry(ctx, cfg.OAuth)
	} else {
		a.Providers = oidc.NewRegistry()
	}
	return a, nil
}

// sessionStore prefers Redis, then Mongo, then memory.
func (a *App) sessionStore() (*sessions.Service, *sessions.Blacklist) {
	ttl := a.Config.Session.TTL
	switch {
	case a.Redis != nil:
		logger.Infof("using Redis for session storage")
		return sessions.NewService(sessions.NewRedisRepository(a.Redis, "session:"), ttl), sessions.NewBlacklist(a.Redis)
	case a.Mongo != nil:
		db := a.Mongo.Database(a.Config.MongoDB.Database)
		return sessions.NewService(sessions.NewMongoRepository(db.Collection(database.SessionsCollection)), ttl),
			sessions.NewMongoBlacklist(db.Collection(database.RevokedCollection))
	}
	logger.Warnf("sessions are kept in memory and lost on restart")
	return sessions.NewService(sessions.NewMemoryRepository(), ttl), sessions.NewMemoryBlacklist()
}

// Deps returns the handler dependencies.
func (a *App) Deps() handlers.Deps {
	return handlers.Deps{
		Config:     a.Config,
		Authors:    a.Authors,
		Posts:      a.Posts,
		Sections:   a.Sections,
		Pages:      a.Pages,
		Ads:        a.Ads,
		Newsletter: a.Newsletter,
		Search:     a.Search,
		Uploader:   a.Uploader,
		Improve:    a.Improve,
		Sessions:   a.Sessions,
		Blacklist:  a.Blacklist,
		Providers:  a.Providers,
		Verifier:   a.Verifier,
		Redis:      a.Redis,
	}
}

// Ready reports the state of each dependency and whether the required
// ones are up. Mongo and Redis are required only when configured.
func (a *App) Ready(ctx context.Context) (map[string]bool, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	deps := map[string]bool{}
	ready := true
	if a.Config.MongoDB.URI != "" {
		deps["mongo"] = a.Mongo != nil && a.Mongo.Ping(ctx, nil) == nil
		ready = ready && deps["mongo"]
	}
	if a.Config.Redis.Host != "" {
		deps["redis"] = a.Redis != nil && a.Redis.Ping(ctx).Err() == nil
		ready = ready && deps["redis"]
	}
	deps["storage"] = a.Blob != nil
	deps["improve"] = a.Improve.Configured()
	deps["events"] = len(a.Config.Kafka.Brokers) > 0
	return deps, ready
}

// Close flushes events and closes the connections.
func (a *App) Close(ctx context.Context) {
	if a.Events != nil {
		if err := a.Events.Close(); err != nil {
			logger.Warnf("close event publisher: %v", err)
		}
	}
	if a.Mongo != nil {
		_ = a.Mongo.Disconnect(ctx)
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}
