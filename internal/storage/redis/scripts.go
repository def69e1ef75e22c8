package redis

import "github.com/redis/go-redis/v9"

// Every script takes the TTL in milliseconds as its last argument and, when
// positive, refreshes it on all keys it was given.
const expireKeys = `
local ttl = tonumber(ARGV[#ARGV])
if ttl > 0 then
	for i = 1, #KEYS do
		redis.call('PEXPIRE', KEYS[i], ttl)
	end
end
`

// KEYS: room, room index. ARGV: body, created-at score, code, ttl.
var createRoomScript = redis.NewScript(`
if redis.call('SETNX', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[3])
local ttl = tonumber(ARGV[4])
if ttl > 0 then
	redis.call('PEXPIRE', KEYS[1], ttl)
end
return 1
`)

// KEYS: room, round seq, room rounds, round. ARGV: round id, body, ttl.
// Returns the assigned number, or -1 if the room does not exist.
var appendRoundScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
local n = redis.call('INCR', KEYS[2])
redis.call('HSET', KEYS[3], n, ARGV[1])
redis.call('HSET', KEYS[4], 'number', n, 'body', ARGV[2])
` + expireKeys + `
return n
`)

// KEYS: room, name index, player, room players. ARGV: name key, player id, body, ttl.
// Returns 1 on success, 0 on duplicate name, -1 if the room does not exist.
var createPlayerScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if redis.call('HSETNX', KEYS[2], ARGV[1], ARGV[2]) == 0 then
	return 0
end
redis.call('SET', KEYS[3], ARGV[3])
redis.call('RPUSH', KEYS[4], ARGV[2])
` + expireKeys + `
return 1
`)

// KEYS: score, player scores, points, rounds played.
// ARGV: body, round number, round id, player id, points, ttl.
// Returns 1 on success, 0 if a score already exists.
var recordScoreScript = redis.NewScript(`
if redis.call('SETNX', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[3])
redis.call('HINCRBY', KEYS[3], ARGV[4], ARGV[5])
redis.call('HINCRBY', KEYS[4], ARGV[4], 1)
` + expireKeys + `
return 1
`)
