package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dario.cat/mergo"

	"github.com/starford/workbench/internal/linkmeta"
	"github.com/starford/workbench/internal/models"
)

// LinkSaver creates links immediately with locally derived metadata and
// enriches them in the background. Each fetch has its own cancellation; it is
// cancelled when the link is deleted and its result is dropped when the link
// URL changed in the meantime.
type LinkSaver struct {
	store   *Store
	fetcher linkmeta.Fetcher
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]context.CancelFunc
	closed  bool
	wg      sync.WaitGroup

	unsubscribe func()
}

// NewLinkSaver wires a saver to store. A nil fetcher disables enrichment.
func NewLinkSaver(store *Store, fetcher linkmeta.Fetcher, timeout time.Duration, logger *slog.Logger) *LinkSaver {
	if logger == nil {
		logger = slog.Default()
	}
	ls := &LinkSaver{
		store:   store,
		fetcher: fetcher,
		timeout: timeout,
		logger:  logger,
		pending: make(map[string]context.CancelFunc),
	}
	ls.unsubscribe = store.Subscribe(func(ev Event) {
		if ev.Collection == CollectionLinks && ev.Kind == KindDeleted {
			ls.cancel(ev.ID)
		}
	})
	return ls
}

// Save normalizes the URL, stores the link with fallback title and favicon
// for any field the caller left empty, and starts the metadata fetch.
func (ls *LinkSaver) Save(in models.LinkInput) (models.Link, error) {
	url, err := linkmeta.NormalizeURL(in.URL)
	if err != nil {
		return models.Link{}, err
	}
	in.URL = url

	given := linkmeta.Metadata{
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		Favicon:     in.Favicon,
	}
	fb := linkmeta.Fallback(url)
	if in.Title == "" {
		in.Title = fb.Title
	}
	if in.Favicon == "" {
		in.Favicon = fb.Favicon
	}

	link, err := ls.store.CreateLink(in)
	if err != nil {
		return models.Link{}, err
	}
	if ls.fetcher != nil {
		saved := linkmeta.Metadata{
			Title:       link.Title,
			Description: link.Description,
			Image:       link.Image,
			Favicon:     link.Favicon,
		}
		ls.start(link.ID, url, saved, given)
	}
	return link, nil
}

// Update applies p to the link. A new URL is normalized the same way Save
// does and cancels a fetch still running for the old one; the link keeps its
// video classification. It reports whether the link exists.
func (ls *LinkSaver) Update(id string, p models.LinkPatch) (bool, error) {
	if p.URL != nil {
		url, err := linkmeta.NormalizeURL(*p.URL)
		if err != nil {
			return false, err
		}
		p.URL = &url
	}
	if !ls.store.UpdateLink(id, p) {
		return false, nil
	}
	if p.URL != nil {
		ls.cancel(id)
	}
	return true, nil
}

func (ls *LinkSaver) start(id, url string, saved, given linkmeta.Metadata) {
	ls.mu.Lock()
	if ls.closed {
		ls.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), ls.timeout)
	ls.pending[id] = cancel
	ls.wg.Add(1)
	ls.mu.Unlock()

	go func() {
		defer ls.wg.Done()
		defer ls.cancel(id)

		m, err := linkmeta.Resolve(ctx, ls.fetcher, url)
		if err != nil {
			// The link already carries the fallback.
			ls.logger.Debug("links: metadata fetch failed",
				slog.String("url", url),
				slog.String("error", err.Error()),
			)
			return
		}
		if err := mergo.Merge(&given, m); err != nil {
			ls.logger.Warn("links: merge metadata", slog.String("error", err.Error()))
			return
		}
		if !ls.store.ApplyLinkMetadata(id, url, saved, given) {
			ls.logger.Debug("links: metadata not applied", slog.String("id", id))
		}
	}()
}

func (ls *LinkSaver) cancel(id string) {
	ls.mu.Lock()
	cancel, ok := ls.pending[id]
	delete(ls.pending, id)
	ls.mu.Unlock()
	if ok {
		cancel()
	}
}

// Wait blocks until every started fetch has finished.
func (ls *LinkSaver) Wait() {
	ls.wg.Wait()
}

// Close cancels outstanding fetches and waits for them.
func (ls *LinkSaver) Close() {
	ls.mu.Lock()
	ls.closed = true
	for id, cancel := range ls.pending {
		cancel()
		delete(ls.pending, id)
	}
	ls.mu.Unlock()
	ls.unsubscribe()
	ls.wg.Wait()
}
