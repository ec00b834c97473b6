// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"errors"
	"fmt"

	"github.com/luxfi/cache"
	"github.com/luxfi/cache/lru"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/PastaPastaPasta/dash-evo-tool/model"
)

const contestCacheSize = 512

var (
	contestPrefix  = []byte("contest")
	identityPrefix = []byte("identity")

	// ErrNotCached is returned when a contest or identity has never been
	// stored locally.
	ErrNotCached = errors.New("not cached")

	errRecordVersion = errors.New("wrong record version")

	_ Store = (*dbStore)(nil)
)

// Store is the local cache of contest snapshots and locally held identities.
// It exclusively owns both record sets; callers receive copies. Reads never
// touch the network, so cached state stays readable while the platform is
// unreachable.
type Store interface {
	GetContests() ([]model.ContestedResource, error)
	GetContest(key string) (model.ContestedResource, error)

	// ReplaceContest overwrites the whole cached record for the snapshot's
	// key. Partial field merges are not supported so readers never observe
	// values mixed from different query rounds.
	ReplaceContest(model.ContestedResource) error
	DeleteContest(key string) error

	// GetVotingIdentities returns identities eligible to cast votes.
	GetVotingIdentities() ([]model.VotingIdentity, error)
	// GetUserIdentities returns identities eligible to register new names.
	GetUserIdentities() ([]model.VotingIdentity, error)
	PutIdentity(model.VotingIdentity) error
	DeleteIdentity(ids.ID) error

	Close() error
}

type dbStore struct {
	log log.Logger

	baseDB     database.Database
	contestDB  database.Database
	identityDB database.Database

	// Caches contest key -> snapshot. A nil entry means the key is known
	// to be absent from storage.
	contestCache cache.Cacher[string, *model.ContestedResource]
}

func New(db database.Database, logger log.Logger) Store {
	return &dbStore{
		log:          logger,
		baseDB:       db,
		contestDB:    prefixdb.New(contestPrefix, db),
		identityDB:   prefixdb.New(identityPrefix, db),
		contestCache: lru.NewCache[string, *model.ContestedResource](contestCacheSize),
	}
}

func (s *dbStore) GetContests() ([]model.ContestedResource, error) {
	iter := s.contestDB.NewIterator()
	defer iter.Release()

	var contests []model.ContestedResource
	for iter.Next() {
		record := &contestRecord{}
		if _, err := Codec.Unmarshal(iter.Value(), record); err != nil {
			// A malformed record degrades to "not cached" rather
			// than failing the whole read path.
			s.log.Warn("skipping malformed contest record",
				log.String("key", string(iter.Key())),
				log.Err(err),
			)
			continue
		}
		contests = append(contests, record.contest())
	}
	return contests, iter.Error()
}

func (s *dbStore) GetContest(key string) (model.ContestedResource, error) {
	if contest, found := s.contestCache.Get(key); found {
		if contest == nil {
			return model.ContestedResource{}, ErrNotCached
		}
		return *contest, nil
	}

	recordBytes, err := s.contestDB.Get([]byte(key))
	if err == database.ErrNotFound {
		s.contestCache.Put(key, nil)
		return model.ContestedResource{}, ErrNotCached
	}
	if err != nil {
		return model.ContestedResource{}, err
	}

	record := &contestRecord{}
	version, err := Codec.Unmarshal(recordBytes, record)
	if err != nil {
		return model.ContestedResource{}, err
	}
	if version != CodecVersion {
		return model.ContestedResource{}, errRecordVersion
	}

	contest := record.contest()
	s.contestCache.Put(key, &contest)
	return contest, nil
}

func (s *dbStore) ReplaceContest(contest model.ContestedResource) error {
	if err := contest.Verify(); err != nil {
		return err
	}

	recordBytes, err := Codec.Marshal(CodecVersion, recordFromContest(contest))
	if err != nil {
		return fmt.Errorf("failed to serialize contest %q: %w", contest.NormalizedName, err)
	}
	if err := s.contestDB.Put([]byte(contest.NormalizedName), recordBytes); err != nil {
		return err
	}

	s.contestCache.Put(contest.NormalizedName, &contest)
	return nil
}

func (s *dbStore) DeleteContest(key string) error {
	if err := s.contestDB.Delete([]byte(key)); err != nil {
		return err
	}
	s.contestCache.Put(key, nil)
	return nil
}

func (s *dbStore) GetVotingIdentities() ([]model.VotingIdentity, error) {
	return s.identities(func(identity model.VotingIdentity) bool {
		return identity.Type.CanVote()
	})
}

func (s *dbStore) GetUserIdentities() ([]model.VotingIdentity, error) {
	return s.identities(func(identity model.VotingIdentity) bool {
		return identity.Type.CanRegister()
	})
}

func (s *dbStore) identities(include func(model.VotingIdentity) bool) ([]model.VotingIdentity, error) {
	iter := s.identityDB.NewIterator()
	defer iter.Release()

	var identities []model.VotingIdentity
	for iter.Next() {
		record := &identityRecord{}
		if _, err := Codec.Unmarshal(iter.Value(), record); err != nil {
			s.log.Warn("skipping malformed identity record",
				log.String("key", string(iter.Key())),
				log.Err(err),
			)
			continue
		}
		if identity := record.identity(); include(identity) {
			identities = append(identities, identity)
		}
	}
	return identities, iter.Error()
}

func (s *dbStore) PutIdentity(identity model.VotingIdentity) error {
	recordBytes, err := Codec.Marshal(CodecVersion, recordFromIdentity(identity))
	if err != nil {
		return fmt.Errorf("failed to serialize identity %s: %w", identity.Identity, err)
	}
	return s.identityDB.Put(identity.Identity[:], recordBytes)
}

func (s *dbStore) DeleteIdentity(identity ids.ID) error {
	return s.identityDB.Delete(identity[:])
}

func (s *dbStore) Close() error {
	s.contestCache.Flush()
	return s.baseDB.Close()
}
