package algolia

import (
	"context"
	"errors"
	"net/http"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/errs"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"

	"github.com/tutorbook/tutorbook/internal/db"
)

// GetObject decodes a record into dest. A missing record yields db.ErrKeyNotFound.
func (s *Store) GetObject(ctx context.Context, indexName, objectID string, dest any) error {
	if err := s.wait(ctx, db.OpAlgoliaGetObject); err != nil {
		return err
	}
	if err := s.open(indexName).GetObject(objectID, dest, ctx); err != nil {
		if isNotFound(err) {
			return db.ErrKeyNotFound
		}
		return &db.Error{Op: db.OpAlgoliaGetObject, Err: err}
	}
	return nil
}

// SaveObject replaces a record. The record must carry its objectID.
func (s *Store) SaveObject(ctx context.Context, indexName string, record any) error {
	if err := s.wait(ctx, db.OpAlgoliaSaveObject); err != nil {
		return err
	}
	if _, err := s.open(indexName).SaveObject(record, ctx); err != nil {
		return &db.Error{Op: db.OpAlgoliaSaveObject, Err: err}
	}
	return nil
}

// DeleteObject removes a record by object id.
func (s *Store) DeleteObject(ctx context.Context, indexName, objectID string) error {
	if err := s.wait(ctx, db.OpAlgoliaDelete); err != nil {
		return err
	}
	if _, err := s.open(indexName).DeleteObject(objectID, ctx); err != nil {
		return &db.Error{Op: db.OpAlgoliaDelete, Err: err}
	}
	return nil
}

// SetFilterableAttributes declares the attributes filters may reference.
func (s *Store) SetFilterableAttributes(ctx context.Context, indexName string, attrs []string) error {
	if err := s.wait(ctx, db.OpAlgoliaSetSettings); err != nil {
		return err
	}
	settings := search.Settings{
		AttributesForFaceting: opt.AttributesForFaceting(attrs...),
	}
	if _, err := s.open(indexName).SetSettings(settings, ctx); err != nil {
		return &db.Error{Op: db.OpAlgoliaSetSettings, Err: err}
	}
	return nil
}

func isNotFound(err error) bool {
	var ae *errs.AlgoliaErr
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}
