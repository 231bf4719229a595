package server

import (
	"context"
	"fmt"
	"time"
)

// verifySectionRef checks that a standards section reference exists, consulting
// the LRU cache before the database. Only confirmed refs are cached, so a
// section seeded after a miss is still picked up on the next request.
func (h AppServer) verifySectionRef(ctx context.Context, refCode string) *AppError {

	if cacheItem := h.SectionsLruCache.Get(refCode); cacheItem != nil && !cacheItem.Expired() {
		return nil
	}

	// Not found in cache, look up from database
	dao := DAOFromContext(ctx)
	exists, err := dao.SectionExists(refCode)
	if err != nil {
		return appErrorFromDAO(err, "error checking section reference")
	}
	if !exists {
		return NewAppError(404, fmt.Errorf("section %s is not in the standards catalog", refCode), "section reference not found")
	}

	// Finally, add this ref to this server's cache
	h.SectionsLruCache.Set(refCode, true, time.Minute*10)
	return nil
}
