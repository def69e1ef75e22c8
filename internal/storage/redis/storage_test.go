package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/storage"
	"github.com/mcoot/connections-go/internal/storage/storagetest"
)

func newTestStorage(t *testing.T, cfg Config) (*Storage, *miniredis.Miniredis) {
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	s := NewWithClient(client, cfg)
	t.Cleanup(func() { _ = s.Close() })
	return s, mini
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage {
			s, _ := newTestStorage(t, DefaultConfig())
			return s
		},
	})
}

type RedisSpecificSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestRedisSpecificSuite(t *testing.T) {
	suite.Run(t, new(RedisSpecificSuite))
}

func (s *RedisSpecificSuite) SetupTest() {
	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour
	s.storage, s.mini = newTestStorage(s.T(), cfg)
	s.ctx = context.Background()
}

func (s *RedisSpecificSuite) TestRoomTTLApplied() {
	s.Require().NoError(s.storage.CreateRoom(s.ctx, &model.Room{Code: "AB12CD", CreatedAt: time.Now()}))
	round := &model.Round{ID: "round-1", RoomCode: "AB12CD", Puzzle: storagetest.SamplePuzzle("r1")}
	s.Require().NoError(s.storage.AppendRound(s.ctx, round))

	s.Equal(time.Hour, s.mini.TTL(roomKey("AB12CD")))
	s.Equal(time.Hour, s.mini.TTL(roundKey("round-1")))
	s.Equal(time.Hour, s.mini.TTL(roundSeqKey("AB12CD")))
}

func (s *RedisSpecificSuite) TestExpiredRoomSkippedInList() {
	s.Require().NoError(s.storage.CreateRoom(s.ctx, &model.Room{Code: "AB12CD", CreatedAt: time.Now()}))
	s.Require().NoError(s.storage.CreateRoom(s.ctx, &model.Room{Code: "ZZ99ZZ", CreatedAt: time.Now()}))

	s.mini.FastForward(2 * time.Hour)

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *RedisSpecificSuite) TestUpstreamErrorWrapped() {
	s.mini.Close()

	_, err := s.storage.GetRoom(s.ctx, "AB12CD")
	s.ErrorIs(err, model.ErrUpstream)
	s.Error(s.storage.Ping(s.ctx))
}

func TestConfigNewClient(t *testing.T) {
	mini := miniredis.RunT(t)

	cfg := DefaultConfig()
	cfg.URL = "redis://" + mini.Addr() + "/0"
	cfg.PoolSize = 3

	client, err := cfg.NewClient()
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.Equal(t, 3, client.Options().PoolSize)
	assert.Equal(t, 2, client.Options().MinIdleConns)
	assert.NoError(t, client.Ping(context.Background()).Err())

	s, err := New(cfg)
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestConfigNewClient_InvalidURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URL = "not-a-url"

	_, err := cfg.NewClient()
	assert.ErrorContains(t, err, "invalid redis URL")
}
