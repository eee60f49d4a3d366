package services

import (
	"os"

	appcontext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/edforge-labs/coursegen_api/localstore"
)

// DraftStoreService owns the sqlite-backed local draft store. Wizard state
// survives restarts and backend outages through this store; the relational
// sync is best-effort on top of it.
type DraftStoreService struct {
	appcontext.DefaultService

	store *localstore.Store
	path  string
}

const DRAFT_STORE_SVC = "draft_store_svc"

func (svc DraftStoreService) Id() string {
	return DRAFT_STORE_SVC
}

func (svc *DraftStoreService) Configure(ctx *appcontext.Context) error {
	svc.path = os.Getenv("DRAFT_DB")
	if svc.path == "" {
		svc.path = "drafts.db"
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *DraftStoreService) Start() error {
	backend, err := localstore.NewSqliteBackend(svc.path)
	if err != nil {
		// The session still works from memory; drafts just won't survive a
		// restart.
		log.WithError(err).Warn("draft sqlite unavailable, using in-memory backend")
		svc.store = localstore.New(localstore.NewMemoryBackend())
		return nil
	}
	svc.store = localstore.New(backend)
	return nil
}

func (svc *DraftStoreService) Store() *localstore.Store {
	return svc.store
}
